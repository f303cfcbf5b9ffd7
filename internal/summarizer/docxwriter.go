package summarizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	docFont   = "Times New Roman"
	bodySize  = 13
	titleSize = 16
	textColor = "000000"
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reStrong   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[-*]\s+(.+)$`)
	reTask     = regexp.MustCompile(`^\[([ xX])\]\s+(.+)$`)
	reSpan     = regexp.MustCompile(`^\d+(?:\.\d+)?-\d+(?:\.\d+)?:\s*`)
)

// lessonDoc is a DOCX document with one font and a bold title line.
type lessonDoc struct {
	addParagraph func(text string) *docx.Paragraph
	saveTo       func(path string) error
}

func newLessonDoc(title string) (*lessonDoc, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	d := &lessonDoc{addParagraph: doc.AddParagraph, saveTo: doc.SaveTo}
	d.run(d.addParagraph(""), title, titleSize, true)
	return d, nil
}

func (d *lessonDoc) save(path string) error {
	return d.saveTo(path)
}

func (d *lessonDoc) run(p *docx.Paragraph, text string, size uint64, bold bool) {
	r := p.AddText(stripInline(text)).Font(docFont).Size(size).Color(textColor)
	if bold {
		r.Bold(true)
	}
}

// heading sizes: # 16pt, ## 15pt, ### 14pt, deeper levels body size
func (d *lessonDoc) heading(level int, text string) {
	size := uint64(bodySize)
	if level <= 3 {
		size = uint64(titleSize - level + 1)
	}
	d.run(d.addParagraph(""), text, size, true)
}

// paragraph renders **strong** spans in bold and the rest plain
func (d *lessonDoc) paragraph(text string) {
	p := d.addParagraph("")
	last := 0
	for _, m := range reStrong.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			d.run(p, text[last:m[0]], bodySize, false)
		}
		d.run(p, text[m[2]:m[3]], bodySize, true)
		last = m[1]
	}
	if last < len(text) {
		d.run(p, text[last:], bodySize, false)
	}
}

// markdownLine writes one line of lesson notes. Homework tasks become check boxes.
func (d *lessonDoc) markdownLine(line string) {
	if line == "" || line == "---" {
		return
	}
	if m := reHeading.FindStringSubmatch(line); m != nil {
		d.heading(len(m[1]), m[2])
		return
	}
	if m := reBullet.FindStringSubmatch(line); m != nil {
		item := m[1]
		if t := reTask.FindStringSubmatch(item); t != nil {
			box := "☐ "
			if t[1] != " " {
				box = "☑ "
			}
			d.paragraph(box + t[2])
			return
		}
		d.paragraph("• " + item)
		return
	}
	// numbered items keep their own numbers
	d.paragraph(line)
}

// markdownToDocx converts the summary markdown to a styled docx file.
func markdownToDocx(title, markdown, outputPath string) error {
	d, err := newLessonDoc(title)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(markdown, "\n") {
		d.markdownLine(strings.TrimSpace(line))
	}
	return d.save(outputPath)
}

// transcriptToDocx writes the transcript as plain dialogue. Segment time spans are
// dropped and consecutive repeats, a common recognition artifact, are kept once.
func transcriptToDocx(title, transcript, outputPath string) error {
	d, err := newLessonDoc(title)
	if err != nil {
		return err
	}
	d.addParagraph("")

	prev := ""
	for _, line := range strings.Split(transcript, "\n") {
		text := strings.TrimSpace(reSpan.ReplaceAllString(strings.TrimSpace(line), ""))
		if text == "" || text == prev {
			continue
		}
		prev = text
		d.run(d.addParagraph(""), text, bodySize, false)
	}
	return d.save(outputPath)
}

func stripInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}
