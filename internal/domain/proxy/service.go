// Package proxy re-streams resolved media through this origin, either by
// re-extracting from the original page URL or by fetching a direct media URL
// from an allow-listed CDN host.
package proxy

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/resolve"
)

// Taxonomy errors surfaced to the handler layer.
var (
	// ErrInvalidParam means a query parameter failed decoding or validation.
	ErrInvalidParam = errors.New("invalid or disallowed media url")
	// ErrUpstreamFailed means retrieval produced no usable stream.
	ErrUpstreamFailed = errors.New("upstream retrieval failed")
)

// Known CDN host suffixes per platform. A bare media URL is only fetched when
// its host matches one of these, so the proxy cannot relay arbitrary hosts.
var platformHosts = map[resolve.Platform][]string{
	resolve.PlatformTikTok: {
		"tiktok.com", "tiktokv.com", "tiktokcdn.com", "byteoversea.com",
		"musical.ly", "snssdk.com", "byteimg.com",
	},
	resolve.PlatformX: {
		"twimg.com", "x.com", "twitter.com",
	},
	resolve.PlatformIG: {
		"cdninstagram.com", "fbcdn.net", "instagram.com",
	},
}

// Spoofed desktop browser headers. CDNs reject cross-origin fetches without a
// matching Referer/Origin pair.
var platformOrigins = map[resolve.Platform]string{
	resolve.PlatformTikTok: "https://www.tiktok.com",
	resolve.PlatformX:      "https://x.com",
	resolve.PlatformIG:     "https://www.instagram.com",
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Stream is one retrieval in progress. Leading holds the bytes already read
// to prove the upstream produced output; callers must write it before copying
// the rest of Body, then call Wait.
type Stream struct {
	Body        io.ReadCloser
	Leading     []byte
	ContentType string
	wait        func() error
}

// Wait reaps the underlying subprocess or closes the fetch, and must be
// called on every exit path.
func (s *Stream) Wait() error {
	if s.wait != nil {
		return s.wait()
	}
	return nil
}

// Service owns no state; every call is a per-request pass-through.
type Service struct {
	cfg       *config.Config
	extractor resolve.Extractor
	client    *http.Client
	log       zerolog.Logger
}

func NewService(cfg *config.Config, extractor resolve.Extractor, log zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		extractor: extractor,
		client: &http.Client{
			Timeout: cfg.StreamTimeout,
		},
		log: log.With().Str("component", "proxy-service").Logger(),
	}
}

// DecodeParam reverses the transport encoding of URL parameters:
// base64 of a percent-encoded UTF-8 string. Malformed input fails closed.
func DecodeParam(encoded string) (string, error) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return "", ErrInvalidParam
	}
	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	decoded, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return decoded, nil
}

// AllowedMediaURL reports whether the URL's host matches the platform's CDN
// allow-list (exact host or dot-separated suffix), plus any extra hosts from
// configuration.
func (s *Service) AllowedMediaURL(platform resolve.Platform, raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, suffix := range platformHosts[platform] {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	for _, suffix := range s.cfg.ExtraMediaHosts {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix != "" && (host == suffix || strings.HasSuffix(host, "."+suffix)) {
			return true
		}
	}
	return false
}

// StreamExtract retrieves media by re-invoking the extractor against the
// original page URL, piping its stdout. Preferred over a cached direct URL
// because CDN links expire quickly.
func (s *Service) StreamExtract(ctx context.Context, pageURL string, variant resolve.StreamVariant) (*Stream, error) {
	body, wait, err := s.extractor.Stream(ctx, pageURL, variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	leading, err := readLeading(body)
	if err != nil || len(leading) == 0 {
		body.Close()
		waitErr := wait()
		s.log.Warn().AnErr("read", err).AnErr("wait", waitErr).Str("url", pageURL).Msg("extractor produced no stream")
		return nil, ErrUpstreamFailed
	}

	return &Stream{Body: body, Leading: leading, wait: wait}, nil
}

// FetchDirect retrieves a bare media URL with spoofed browser headers. The
// caller is responsible for the allow-list check beforehand.
func (s *Service) FetchDirect(ctx context.Context, platform resolve.Platform, mediaURL string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	origin := platformOrigins[platform]
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "*/*")
	if origin != "" {
		req.Header.Set("Referer", origin+"/")
		req.Header.Set("Origin", origin)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: upstream status %s", ErrUpstreamFailed, resp.Status)
	}

	leading, err := readLeading(resp.Body)
	if err != nil || len(leading) == 0 {
		resp.Body.Close()
		return nil, ErrUpstreamFailed
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if detected := mimetype.Detect(leading); detected != nil {
			contentType = detected.String()
		}
	}

	return &Stream{
		Body:        resp.Body,
		Leading:     leading,
		ContentType: contentType,
	}, nil
}

// readLeading pulls the first chunk so success/failure is known before any
// response headers are committed.
func readLeading(r io.Reader) ([]byte, error) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
	}
}

// SanitizeFilename strips path and shell-hostile characters from a user
// supplied download name, falling back when nothing printable remains.
func SanitizeFilename(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	replacer := strings.NewReplacer(
		"/", "", "\\", "", ":", "", "*", "", "?", "",
		"\"", "", "<", "", ">", "", "|", "", "\n", " ", "\r", " ",
	)
	safe := strings.TrimSpace(replacer.Replace(raw))
	safe = strings.Join(strings.Fields(safe), " ")
	if len(safe) > 100 {
		safe = safe[:100]
	}
	if safe == "" {
		return fallback
	}
	return safe
}
