package resolve

import (
	"context"
	"io"
	"time"
)

// StreamVariant names a selection policy outcome for re-extraction streaming.
type StreamVariant string

const (
	VariantNoWatermark StreamVariant = "no_watermark"
	VariantWatermark   StreamVariant = "watermark"
	VariantAudio       StreamVariant = "mp3"
)

// Extractor is the external metadata/extraction tool. The real implementation
// spawns a subprocess; tests substitute canned outputs.
type Extractor interface {
	// Metadata runs a structured, no-download extraction against the page URL.
	// Limits bound how long the subprocess may run and how much output it may
	// produce. Failures are classified into the resolve error taxonomy.
	Metadata(ctx context.Context, pageURL string, limits ExtractLimits) (*ExtractorOutput, error)

	// Stream re-extracts the page URL and delivers the chosen variant as a
	// byte stream. The returned wait func must be called after the stream is
	// drained (or abandoned) to reap the subprocess.
	Stream(ctx context.Context, pageURL string, variant StreamVariant) (io.ReadCloser, func() error, error)
}

// ExtractLimits bounds one extractor invocation.
type ExtractLimits struct {
	Timeout   time.Duration // wall clock cap; zero means the implementation default
	MaxOutput int64         // stdout byte cap; zero means the implementation default
}
