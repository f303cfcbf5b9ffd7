package transcriber

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Segment is one timed piece of recognized speech.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

var srtTiming = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d+):(\d{2}):(\d{2})[,.](\d{3})`)

// ParseSRT reads SubRip cues separated by blank lines. Cue text lines are joined with a space.
func ParseSRT(r io.Reader) ([]Segment, error) {
	var (
		segs []Segment
		cur  *Segment
		text []string
	)

	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(strings.Join(text, " "))
			segs = append(segs, *cur)
		}
		cur = nil
		text = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))

		if m := srtTiming.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Segment{
				Start: srtTimestamp(m[1], m[2], m[3], m[4]),
				End:   srtTimestamp(m[5], m[6], m[7], m[8]),
			}
			continue
		}

		if cur == nil {
			continue
		}
		if line == "" {
			flush()
			continue
		}
		text = append(text, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	flush()

	return segs, nil
}

// FormatSegments renders one "start-end: text" line per segment, seconds with two decimals
func FormatSegments(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "%.2f-%.2f: %s\n", s.Start.Seconds(), s.End.Seconds(), s.Text)
	}
	return b.String()
}

func srtTimestamp(h, m, s, ms string) time.Duration {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	mss, _ := strconv.Atoi(ms)
	return time.Duration(hh)*time.Hour +
		time.Duration(mm)*time.Minute +
		time.Duration(ss)*time.Second +
		time.Duration(mss)*time.Millisecond
}
