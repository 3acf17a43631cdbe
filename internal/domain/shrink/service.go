// Package shrink compresses uploaded videos through an external transcoder.
package shrink

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
)

var (
	// ErrNotVideo means the upload did not look like a video file.
	ErrNotVideo = errors.New("only video files are allowed")
	// ErrTooLarge means the upload exceeded the configured byte limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrTranscodeFailed means the external tool could not process the file.
	ErrTranscodeFailed = errors.New("transcode failed")
)

var videoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true, ".avi": true, ".mkv": true,
}

// Transcoder is the external compression tool, treated as a black box that
// maps an input file to an output file.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// Service owns temp-file lifecycle around one transcode.
type Service struct {
	cfg        *config.Config
	transcoder Transcoder
	log        zerolog.Logger
}

func NewService(cfg *config.Config, transcoder Transcoder, log zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		transcoder: transcoder,
		log:        log.With().Str("component", "shrink-service").Logger(),
	}
}

// MaxBytes reports the upload size limit.
func (s *Service) MaxBytes() int64 { return s.cfg.ShrinkMaxBytes }

// MaxMB reports the limit in whole megabytes for display.
func (s *Service) MaxMB() int64 { return s.cfg.ShrinkMaxMB() }

// AcceptUpload validates the claimed name/type before any bytes are spooled.
func AcceptUpload(filename, contentType string) error {
	if strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil
	}
	if videoExtensions[strings.ToLower(filepath.Ext(filename))] {
		return nil
	}
	return ErrNotVideo
}

// Process spools the upload to a uniquely named temp file, transcodes it and
// returns the output path plus a cleanup func that must run on every exit
// path. The input temp file never outlives this call.
func (s *Service) Process(ctx context.Context, upload io.Reader, filename string) (string, func(), error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}

	inputPath := filepath.Join(s.cfg.TempDir, "shrink-in-"+randomHex(8)+ext)
	outputPath := filepath.Join(s.cfg.TempDir, "shrink-out-"+randomHex(8)+".mp4")

	in, err := os.Create(inputPath)
	if err != nil {
		return "", nil, fmt.Errorf("create temp input: %w", err)
	}

	written, err := io.Copy(in, io.LimitReader(upload, s.cfg.ShrinkMaxBytes+1))
	closeErr := in.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(inputPath)
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	if written > s.cfg.ShrinkMaxBytes {
		os.Remove(inputPath)
		return "", nil, ErrTooLarge
	}

	err = s.transcoder.Transcode(ctx, inputPath, outputPath)
	os.Remove(inputPath)
	if err != nil {
		os.Remove(outputPath)
		s.log.Warn().Err(err).Str("input", filename).Msg("transcode failed")
		return "", nil, fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}

	cleanup := func() { os.Remove(outputPath) }
	return outputPath, cleanup, nil
}

// OutputName derives the download filename from the original upload name.
func OutputName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "video"
	}
	return "shrunk-" + base + ".mp4"
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is not survivable in any useful way here
		panic(err)
	}
	return hex.EncodeToString(buf)
}
