package summarizer

import (
	"fmt"
	"strings"
)

// Prompt is the provider-independent request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
}

const systemPrompt = `You are a methodical music and guitar teacher. You pick out the lesson results, ` +
	`the student's mistakes and the homework in a short, structured way. Write in %s, concisely and clearly.`

const userPrompt = `Write lesson notes from the lesson transcript.

Context:
- Student: %s
- Topic: %s

Required:
1) Lesson results: 5-8 items.
2) Mistakes and recommendations: 5-10 items, each as [mistake] → [how to fix it].
3) Homework: a clear checklist with items and goals, under a "Homework" heading.

Transcript (fragments):
%s
`

const placeholder = "—"

var languageNames = map[string]string{
	"ru": "Russian",
	"en": "English",
	"uk": "Ukrainian",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
}

// BuildPrompt embeds the transcript, cut to maxChars characters, and the lesson metadata
func BuildPrompt(transcript, student, topic string, opts Options) Prompt {
	return Prompt{
		System:      fmt.Sprintf(systemPrompt, languageName(opts.Language)),
		User:        fmt.Sprintf(userPrompt, orPlaceholder(student), orPlaceholder(topic), Truncate(transcript, opts.MaxTranscriptChars)),
		Temperature: opts.Temperature,
	}
}

// Truncate keeps the first n characters of s. Multi-byte characters are never split.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func orPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return placeholder
	}
	return s
}

func languageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return "the language of the transcript"
}
