package publisher

import (
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
)

// MaxTextLength is Notion's limit for one rich text object.
const MaxTextLength = 2000

type blockKind int

const (
	kindParagraph blockKind = iota
	kindHeading1
	kindHeading2
	kindHeading3
	kindBullet
)

type textBlock struct {
	kind blockKind
	text string
}

// Blocks converts markdown into Notion blocks. Headings and bullet items map to their
// block types, everything else becomes paragraphs. No block text exceeds MaxTextLength.
func Blocks(markdown string) []notionapi.Block {
	var out []notionapi.Block
	for _, tb := range parseMarkdown(markdown) {
		for _, chunk := range SplitText(tb.text, MaxTextLength) {
			out = append(out, toBlock(tb.kind, chunk))
		}
	}
	return out
}

func parseMarkdown(markdown string) []textBlock {
	var (
		blocks []textBlock
		para   []string
	)
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, textBlock{kind: kindParagraph, text: strings.Join(para, "\n")})
			para = nil
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "### "):
			flush()
			blocks = append(blocks, textBlock{kind: kindHeading3, text: strings.TrimSpace(trimmed[4:])})
		case strings.HasPrefix(trimmed, "## "):
			flush()
			blocks = append(blocks, textBlock{kind: kindHeading2, text: strings.TrimSpace(trimmed[3:])})
		case strings.HasPrefix(trimmed, "# "):
			flush()
			blocks = append(blocks, textBlock{kind: kindHeading1, text: strings.TrimSpace(trimmed[2:])})
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			flush()
			blocks = append(blocks, textBlock{kind: kindBullet, text: strings.TrimSpace(trimmed[2:])})
		default:
			para = append(para, strings.TrimRight(line, " \t"))
		}
	}
	flush()

	return blocks
}

// SplitText cuts s into pieces of at most limit runes, preferring line breaks and
// then spaces as cut points.
func SplitText(s string, limit int) []string {
	if s == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var parts []string
	for utf8.RuneCountInString(s) > limit {
		// byte offset of the rune right after the limit
		cut := len(s)
		n := 0
		for i := range s {
			if n == limit {
				cut = i
				break
			}
			n++
		}

		window := s[:cut]
		at := strings.LastIndexByte(window, '\n')
		if at <= 0 {
			at = strings.LastIndexByte(window, ' ')
		}
		if at <= 0 {
			at = cut
		}

		parts = append(parts, s[:at])
		s = strings.TrimLeft(s[at:], "\n ")
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

func textRun(content string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}
}

func toBlock(kind blockKind, text string) notionapi.Block {
	rich := []notionapi.RichText{textRun(text)}

	switch kind {
	case kindHeading1:
		return &notionapi.Heading1Block{
			BasicBlock: basic(notionapi.BlockTypeHeading1),
			Heading1:   notionapi.Heading{RichText: rich},
		}
	case kindHeading2:
		return &notionapi.Heading2Block{
			BasicBlock: basic(notionapi.BlockTypeHeading2),
			Heading2:   notionapi.Heading{RichText: rich},
		}
	case kindHeading3:
		return &notionapi.Heading3Block{
			BasicBlock: basic(notionapi.BlockTypeHeading3),
			Heading3:   notionapi.Heading{RichText: rich},
		}
	case kindBullet:
		return &notionapi.BulletedListItemBlock{
			BasicBlock:       basic(notionapi.BlockTypeBulletedListItem),
			BulletedListItem: notionapi.ListItem{RichText: rich},
		}
	default:
		return &notionapi.ParagraphBlock{
			BasicBlock: basic(notionapi.BlockTypeParagraph),
			Paragraph:  notionapi.Paragraph{RichText: rich},
		}
	}
}

func basic(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
}
