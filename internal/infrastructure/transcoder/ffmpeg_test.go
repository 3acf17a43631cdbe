package transcoder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
)

func fakeFfmpeg(t *testing.T, script string) *Ffmpeg {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return New(&config.Config{FfmpegPath: path}, zerolog.Nop())
}

func TestTranscodeWritesOutput(t *testing.T) {
	// The fixture copies input to the last argument, mimicking a successful run.
	f := fakeFfmpeg(t, `
for last; do true; done
cp "$2" "$last"`)

	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	output := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(input, []byte("source"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := f.Transcode(context.Background(), input, output); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "source" {
		t.Fatalf("output = %q", data)
	}
}

func TestTranscodeFailure(t *testing.T) {
	f := fakeFfmpeg(t, `echo "in.mp4: Invalid data found when processing input" >&2; exit 1`)
	if err := f.Transcode(context.Background(), "in.mp4", "out.mp4"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestLastLine(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"single", "single"},
		{"first\nsecond\nthird\n", "third"},
		{"first\n  padded last  \n", "padded last"},
	}
	for _, tc := range cases {
		if got := lastLine(tc.in); got != tc.want {
			t.Errorf("lastLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
