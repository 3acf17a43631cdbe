package proxy

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/domain/resolve"
)

type stubExtractor struct {
	streamFunc func(ctx context.Context, pageURL string, variant resolve.StreamVariant) (io.ReadCloser, func() error, error)
}

func (s *stubExtractor) Metadata(context.Context, string, resolve.ExtractLimits) (*resolve.ExtractorOutput, error) {
	return nil, errors.New("not implemented")
}

func (s *stubExtractor) Stream(ctx context.Context, pageURL string, variant resolve.StreamVariant) (io.ReadCloser, func() error, error) {
	return s.streamFunc(ctx, pageURL, variant)
}

func newTestService(extractor resolve.Extractor, extraHosts ...string) *Service {
	cfg := &config.Config{
		StreamTimeout:   5 * time.Second,
		FetchTimeout:    5 * time.Second,
		ExtraMediaHosts: extraHosts,
	}
	return NewService(cfg, extractor, zerolog.Nop())
}

func encodeParam(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(url.PathEscape(raw)))
}

func TestDecodeParamRoundTrip(t *testing.T) {
	original := "https://v16.tiktokcdn.com/video.mp4?tk=abc&expire=123"
	decoded, err := DecodeParam(encodeParam(original))
	if err != nil {
		t.Fatal(err)
	}
	if decoded != original {
		t.Fatalf("decoded = %q, want %q", decoded, original)
	}
}

func TestDecodeParamFailsClosed(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("%zz-bad-escape")),
	} {
		if _, err := DecodeParam(input); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("DecodeParam(%q) err = %v, want ErrInvalidParam", input, err)
		}
	}
}

func TestAllowedMediaURL(t *testing.T) {
	svc := newTestService(nil)
	cases := []struct {
		platform resolve.Platform
		url      string
		want     bool
	}{
		{resolve.PlatformTikTok, "https://v16-webapp.tiktokcdn.com/abc.mp4", true},
		{resolve.PlatformTikTok, "https://sf16-sg.tiktokcdn.com/obj/x", true},
		{resolve.PlatformTikTok, "http://p16-sign.byteimg.com/img.jpeg", true},
		{resolve.PlatformTikTok, "https://evil.com/tiktokcdn.com/abc.mp4", false},
		{resolve.PlatformTikTok, "https://eviltiktokcdn.com/abc.mp4", false},
		{resolve.PlatformTikTok, "https://video.twimg.com/a.mp4", false},
		{resolve.PlatformX, "https://video.twimg.com/a.mp4", true},
		{resolve.PlatformX, "https://pbs.twimg.com/media/a.jpg", true},
		{resolve.PlatformIG, "https://scontent.cdninstagram.com/v/a.mp4", true},
		{resolve.PlatformIG, "https://instagram.fxyz1-1.fna.fbcdn.net/v/a.jpg", true},
		{resolve.PlatformIG, "https://cdninstagram.com.evil.net/a.mp4", false},
		{resolve.PlatformTikTok, "ftp://v.tiktokcdn.com/a.mp4", false},
		{resolve.PlatformTikTok, "not a url", false},
		{resolve.PlatformTikTok, "", false},
	}
	for _, tc := range cases {
		if got := svc.AllowedMediaURL(tc.platform, tc.url); got != tc.want {
			t.Errorf("AllowedMediaURL(%s, %q) = %v, want %v", tc.platform, tc.url, got, tc.want)
		}
	}
}

func TestAllowedMediaURLExtraHosts(t *testing.T) {
	svc := newTestService(nil, "cdn.example.org")
	if !svc.AllowedMediaURL(resolve.PlatformTikTok, "https://media.cdn.example.org/a.mp4") {
		t.Fatal("configured extra host rejected")
	}
	if svc.AllowedMediaURL(resolve.PlatformTikTok, "https://cdn.example.com/a.mp4") {
		t.Fatal("unlisted host accepted")
	}
}

type recordingCloser struct {
	io.Reader
	closed bool
}

func (r *recordingCloser) Close() error {
	r.closed = true
	return nil
}

func TestStreamExtractReturnsLeadingBytes(t *testing.T) {
	body := &recordingCloser{Reader: strings.NewReader("fake mp4 bytes")}
	waited := false
	svc := newTestService(&stubExtractor{
		streamFunc: func(_ context.Context, _ string, _ resolve.StreamVariant) (io.ReadCloser, func() error, error) {
			return body, func() error { waited = true; return nil }, nil
		},
	})

	stream, err := svc.StreamExtract(context.Background(), "https://www.tiktok.com/@u/video/1", resolve.VariantNoWatermark)
	if err != nil {
		t.Fatal(err)
	}
	if string(stream.Leading) != "fake mp4 bytes" {
		t.Fatalf("leading = %q", stream.Leading)
	}
	if err := stream.Wait(); err != nil {
		t.Fatal(err)
	}
	if !waited {
		t.Fatal("Wait did not reach the subprocess reaper")
	}
}

func TestStreamExtractEmptyOutputFails(t *testing.T) {
	body := &recordingCloser{Reader: strings.NewReader("")}
	svc := newTestService(&stubExtractor{
		streamFunc: func(_ context.Context, _ string, _ resolve.StreamVariant) (io.ReadCloser, func() error, error) {
			return body, func() error { return errors.New("exit status 1") }, nil
		},
	})

	if _, err := svc.StreamExtract(context.Background(), "https://www.tiktok.com/@u/video/1", resolve.VariantWatermark); !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("err = %v, want ErrUpstreamFailed", err)
	}
	if !body.closed {
		t.Fatal("failed stream left the pipe open")
	}
}

func TestFetchDirectSpoofedHeadersAndSniffing(t *testing.T) {
	var gotUA, gotReferer, gotOrigin string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotOrigin = r.Header.Get("Origin")
		// No content type: the service must sniff from leading bytes.
		w.Write([]byte("\xff\xd8\xff\xe0" + strings.Repeat("j", 64)))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	svc := newTestService(nil, host)

	stream, err := svc.FetchDirect(context.Background(), resolve.PlatformIG, server.URL+"/img")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Body.Close()

	if !strings.Contains(gotUA, "Chrome") {
		t.Errorf("user agent = %q, want a browser UA", gotUA)
	}
	if gotReferer != "https://www.instagram.com/" || gotOrigin != "https://www.instagram.com" {
		t.Errorf("referer/origin = %q / %q", gotReferer, gotOrigin)
	}
	if stream.ContentType != "image/jpeg" {
		t.Errorf("sniffed content type = %q, want image/jpeg", stream.ContentType)
	}
	if len(stream.Leading) == 0 {
		t.Error("leading bytes missing")
	}
}

func TestFetchDirectNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer server.Close()

	svc := newTestService(nil)
	if _, err := svc.FetchDirect(context.Background(), resolve.PlatformTikTok, server.URL); !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("err = %v, want ErrUpstreamFailed", err)
	}
}

func TestFetchDirectEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := newTestService(nil)
	if _, err := svc.FetchDirect(context.Background(), resolve.PlatformTikTok, server.URL); !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("err = %v, want ErrUpstreamFailed", err)
	}
}

func TestFetchDirectKeepsUpstreamContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("mp4data"))
	}))
	defer server.Close()

	svc := newTestService(nil)
	stream, err := svc.FetchDirect(context.Background(), resolve.PlatformX, server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Body.Close()
	if stream.ContentType != "video/mp4" {
		t.Fatalf("content type = %q, want the upstream header untouched", stream.ContentType)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		raw      string
		fallback string
		want     string
	}{
		{"", "video.mp4", "video.mp4"},
		{"my clip.mp4", "video.mp4", "my clip.mp4"},
		{`evil/../../etc/passwd`, "video.mp4", "evil....etcpasswd"},
		{`a:b*c?d"e<f>g|h.mp4`, "video.mp4", "abcdefgh.mp4"},
		{"   spaced\n\nname.mp4  ", "video.mp4", "spaced name.mp4"},
		{`////`, "video.mp4", "video.mp4"},
		{strings.Repeat("x", 300) + ".mp4", "video.mp4", strings.Repeat("x", 100)},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.raw, tc.fallback); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
