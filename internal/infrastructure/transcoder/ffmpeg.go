// Package transcoder wraps ffmpeg for the shrink endpoint.
package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/shrink"
)

const maxStderrBytes = 16 * 1024

// Ffmpeg compresses a video to 720p H.264 with faststart for web playback.
type Ffmpeg struct {
	bin string
	log zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Ffmpeg {
	return &Ffmpeg{
		bin: cfg.FfmpegPath,
		log: log.With().Str("component", "ffmpeg").Logger(),
	}
}

var _ shrink.Transcoder = (*Ffmpeg)(nil)

// Transcode runs ffmpeg with fixed quality/scale parameters. The subprocess
// is killed when ctx is cancelled.
func (f *Ffmpeg) Transcode(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-i", inputPath,
		"-c:v", "libx264",
		"-crf", "28",
		"-preset", "medium",
		"-vf", "scale=-2:720",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, f.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &capWriter{buf: &stderr, max: maxStderrBytes}

	if err := cmd.Run(); err != nil {
		f.log.Debug().Err(err).Str("stderr", lastLine(stderr.String())).Msg("ffmpeg exited non-zero")
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

type capWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *capWriter) Write(p []byte) (int, error) {
	if remaining := w.max - w.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			w.buf.Write(p[:remaining])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}

// ffmpeg reports the actual failure on its final stderr line.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
