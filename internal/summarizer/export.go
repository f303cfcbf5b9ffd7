package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Export writes <name>.summary.docx and <name>.transcript.docx for whichever inputs are set
func (s *implSummarizer) Export(ctx context.Context, req ExportRequest) ([]string, error) {
	if req.SummaryPath == "" && req.TranscriptPath == "" {
		return nil, errors.New("nothing to export: summary and transcript paths are empty")
	}
	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var written []string

	if req.SummaryPath != "" {
		md, err := os.ReadFile(req.SummaryPath)
		if err != nil {
			return written, fmt.Errorf("read summary: %w", err)
		}
		name := PageTitle(req.SummaryPath)
		out := filepath.Join(req.OutDir, name+".summary.docx")
		if err := markdownToDocx(name, string(md), out); err != nil {
			return written, fmt.Errorf("write summary docx: %w", err)
		}
		s.logger.Info(ctx, "Exported summary: %s", out)
		written = append(written, out)
	}

	if req.TranscriptPath != "" {
		txt, err := os.ReadFile(req.TranscriptPath)
		if err != nil {
			return written, fmt.Errorf("read transcript: %w", err)
		}
		name := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(req.TranscriptPath), ".txt"), ".wav")
		out := filepath.Join(req.OutDir, name+".transcript.docx")
		if err := transcriptToDocx(name+" (transcript)", string(txt), out); err != nil {
			return written, fmt.Errorf("write transcript docx: %w", err)
		}
		s.logger.Info(ctx, "Exported transcript: %s", out)
		written = append(written, out)
	}

	return written, nil
}
