package extractor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/resolve"
)

// fakeTool writes a shell script standing in for the external binary.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newYtDlp(t *testing.T, script string) *YtDlp {
	t.Helper()
	cfg := &config.Config{YtDlpPath: fakeTool(t, script)}
	return New(cfg, zerolog.Nop())
}

func limits() resolve.ExtractLimits {
	return resolve.ExtractLimits{Timeout: 10 * time.Second, MaxOutput: 1 << 20}
}

func TestMetadataParsesDumpJSON(t *testing.T) {
	y := newYtDlp(t, `cat <<'EOF'
{"id":"123","title":"clip","uploader":"someone","duration":9.5,
 "formats":[{"url":"https://cdn.example/v.mp4","vcodec":"h264","height":720}]}
EOF`)

	out, err := y.Metadata(context.Background(), "https://www.tiktok.com/@u/video/123", limits())
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != "123" || out.Title != "clip" || len(out.Formats) != 1 {
		t.Fatalf("parsed output = %+v", out)
	}
	if out.Formats[0].Height != 720 {
		t.Fatalf("format = %+v", out.Formats[0])
	}
}

func TestMetadataClassifiesStderr(t *testing.T) {
	cases := []struct {
		name   string
		script string
		want   error
	}{
		{
			"private video",
			`echo "ERROR: This video is private" >&2; exit 1`,
			resolve.ErrPrivateOrUnavailable,
		},
		{
			"stale extractor",
			`echo "ERROR: Unable to extract video data" >&2; exit 1`,
			resolve.ErrExtractorIncompatible,
		},
		{
			"unknown failure",
			`echo "segfault" >&2; exit 1`,
			resolve.ErrExtractionFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			y := newYtDlp(t, tc.script)
			_, err := y.Metadata(context.Background(), "https://www.tiktok.com/@u/video/1", limits())
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMetadataRejectsOversizedOutput(t *testing.T) {
	y := newYtDlp(t, `head -c 2048 /dev/zero | tr '\0' 'a'`)
	_, err := y.Metadata(context.Background(), "https://www.tiktok.com/@u/video/1",
		resolve.ExtractLimits{Timeout: 10 * time.Second, MaxOutput: 1024})
	if !errors.Is(err, resolve.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestMetadataRejectsMalformedJSON(t *testing.T) {
	y := newYtDlp(t, `echo "not json"`)
	_, err := y.Metadata(context.Background(), "https://www.tiktok.com/@u/video/1", limits())
	if !errors.Is(err, resolve.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestMetadataTimeout(t *testing.T) {
	y := newYtDlp(t, `sleep 5`)
	start := time.Now()
	_, err := y.Metadata(context.Background(), "https://www.tiktok.com/@u/video/1",
		resolve.ExtractLimits{Timeout: 100 * time.Millisecond, MaxOutput: 1 << 20})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("timeout did not kill the subprocess promptly")
	}
}

func TestStreamPipesStdout(t *testing.T) {
	y := newYtDlp(t, `printf 'streamed bytes'`)
	body, wait, err := y.Stream(context.Background(), "https://www.tiktok.com/@u/video/1", resolve.VariantNoWatermark)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "streamed bytes" {
		t.Fatalf("data = %q", data)
	}
	if err := wait(); err != nil {
		t.Fatal(err)
	}
}

func TestStreamWaitSurfacesFailure(t *testing.T) {
	y := newYtDlp(t, `echo "ERROR: video unavailable" >&2; exit 1`)
	body, wait, err := y.Stream(context.Background(), "https://www.tiktok.com/@u/video/1", resolve.VariantWatermark)
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, body)
	if err := wait(); !errors.Is(err, resolve.ErrPrivateOrUnavailable) {
		t.Fatalf("wait err = %v, want ErrPrivateOrUnavailable", err)
	}
}

func TestCapWriterBoundsStderr(t *testing.T) {
	y := newYtDlp(t, `head -c 100000 /dev/zero | tr '\0' 'e' >&2; exit 1`)
	_, err := y.Metadata(context.Background(), "https://www.tiktok.com/@u/video/1", limits())
	if err == nil {
		t.Fatal("expected failure")
	}
	if len(err.Error()) > maxStderrBytes+128 {
		t.Fatalf("error text not capped: %d bytes", len(err.Error()))
	}
}
