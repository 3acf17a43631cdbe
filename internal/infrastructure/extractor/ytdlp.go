// Package extractor shells out to yt-dlp and adapts its output to the
// resolve domain model.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/resolve"
	"cosmovid/media-api/internal/infrastructure/metrics"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxOutput = 2 * 1024 * 1024
	maxStderrBytes   = 16 * 1024
)

// Shared flags: structured output, no media download, no playlist expansion,
// relaxed TLS. The tool's noise on stderr is suppressed so error
// classification sees only real failures.
var baseArgs = []string{
	"--no-warnings",
	"--no-playlist",
	"--no-check-certificate",
}

// YtDlp invokes the yt-dlp binary as a subprocess.
type YtDlp struct {
	bin string
	log zerolog.Logger
}

// New builds the extractor from configuration.
func New(cfg *config.Config, log zerolog.Logger) *YtDlp {
	return &YtDlp{
		bin: cfg.YtDlpPath,
		log: log.With().Str("component", "ytdlp").Logger(),
	}
}

var _ resolve.Extractor = (*YtDlp)(nil)

// Metadata runs a --dump-json extraction bounded by the given limits.
func (y *YtDlp) Metadata(ctx context.Context, pageURL string, limits resolve.ExtractLimits) (*resolve.ExtractorOutput, error) {
	timeout := limits.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxOutput := limits.MaxOutput
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutput
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"--dump-json", "--no-download"}, baseArgs...)
	args = append(args, pageURL)

	cmd := exec.CommandContext(ctx, y.bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", resolve.ErrExtractionFailed, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &capWriter{buf: &stderr, max: maxStderrBytes}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		y.log.Error().Err(err).Str("bin", y.bin).Msg("failed to start extractor")
		return nil, fmt.Errorf("%w: %v", resolve.ErrExtractionFailed, err)
	}

	// Read one byte past the cap so oversize output is detectable.
	raw, readErr := io.ReadAll(io.LimitReader(stdout, maxOutput+1))
	waitErr := cmd.Wait()
	metrics.RecordExtraction("metadata", time.Since(start).Seconds())

	if waitErr != nil {
		text := stderr.String()
		if text == "" {
			text = waitErr.Error()
		}
		classified := resolve.ClassifyExtractorError(text)
		y.log.Debug().Err(waitErr).Str("stderr", text).Msg("extractor exited non-zero")
		return nil, fmt.Errorf("%w: %s", classified, firstLine(text))
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: read output: %v", resolve.ErrExtractionFailed, readErr)
	}
	if int64(len(raw)) > maxOutput {
		return nil, fmt.Errorf("%w: output exceeds %d bytes", resolve.ErrExtractionFailed, maxOutput)
	}

	var out resolve.ExtractorOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: parse output: %v", resolve.ErrExtractionFailed, err)
	}
	return &out, nil
}

// Stream re-extracts the page URL and pipes the chosen variant to the caller.
// The subprocess is torn down when ctx is cancelled; callers must invoke the
// returned wait func once done with the reader.
func (y *YtDlp) Stream(ctx context.Context, pageURL string, variant resolve.StreamVariant) (io.ReadCloser, func() error, error) {
	var selection []string
	switch variant {
	case resolve.VariantAudio:
		selection = []string{"-x", "--audio-format", "mp3", "-o", "-"}
	case resolve.VariantNoWatermark:
		selection = []string{"-f", "best[format_note*='No watermark']/best[format_note*='no watermark']/best", "-o", "-"}
	default:
		selection = []string{"-f", "best", "-o", "-"}
	}

	args := append([]string{}, baseArgs...)
	args = append(args, selection...)
	args = append(args, pageURL)

	cmd := exec.CommandContext(ctx, y.bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stdout pipe: %v", resolve.ErrExtractionFailed, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &capWriter{buf: &stderr, max: maxStderrBytes}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		y.log.Error().Err(err).Str("bin", y.bin).Msg("failed to start extractor")
		return nil, nil, fmt.Errorf("%w: %v", resolve.ErrExtractionFailed, err)
	}

	wait := func() error {
		err := cmd.Wait()
		metrics.RecordExtraction("stream", time.Since(start).Seconds())
		if err != nil {
			text := stderr.String()
			if text == "" {
				text = err.Error()
			}
			y.log.Debug().Err(err).Str("stderr", firstLine(text)).Msg("stream extractor exited non-zero")
			return fmt.Errorf("%w: %s", resolve.ClassifyExtractorError(text), firstLine(text))
		}
		return nil
	}
	return stdout, wait, nil
}

// capWriter keeps the first max bytes and drops the rest, so a chatty
// subprocess cannot grow the stderr buffer without bound.
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

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
