package processor

import (
	"context"
	"fmt"
	"strconv"
)

// convertAudio re-encodes any ffmpeg-readable audio to the session WAV format
func (p *implProcessor) convertAudio(ctx context.Context, srcPath, dstPath string) error {
	p.logger.Info(ctx, "Converting audio to wav: %s", srcPath)

	// -vn drops cover art and video streams, pcm_s16le matches what the recorder writes
	args := []string{
		"-hide_banner",
		"-i", srcPath,
		"-vn",
		"-ar", strconv.Itoa(p.cfg.FFmpeg.SampleRate),
		"-ac", strconv.Itoa(p.cfg.FFmpeg.Channels),
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		dstPath,
	}

	if _, err := p.executor.Execute(ctx, p.cfg.FFmpeg.BinaryPath, args...); err != nil {
		return fmt.Errorf("ffmpeg convert audio: %w", err)
	}

	p.logger.Info(ctx, "Audio converted successfully: %s", dstPath)
	return nil
}
