package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/config"
	"cosmovid/media-api/internal/infrastructure/metrics"
)

// User-facing error copy, one message set per platform.
const (
	msgTikTokInvalid  = "Invalid TikTok URL. Use a link like https://www.tiktok.com/@user/video/123456789"
	msgTikTokPrivate  = "Video not found or is private. Please check the URL."
	msgTikTokStale    = "yt-dlp could not extract this video. Update yt-dlp (yt-dlp -U) and try again."
	msgTikTokGeneric  = "Unable to fetch video. Please try again or use a different TikTok URL."
	msgXInvalid       = "Invalid X/Twitter URL. Use a link like https://x.com/user/status/123456789"
	msgXNoVideo       = "No video found. The post may be text-only or the video is unavailable."
	msgXPrivate       = "Video not found or is private. Please check the URL."
	msgXGeneric       = "Unable to fetch video. Please try again or use a different X/Twitter URL."
	msgIGInvalid      = "Invalid Instagram URL. Use a link like https://www.instagram.com/p/ABC123 or https://www.instagram.com/reel/ABC123"
	msgIGPrivate      = "Media not found or is private. Please check the URL."
	msgIGGeneric      = "Unable to fetch media. Please try again or use a different Instagram URL."
	msgStoriesInvalid = "Invalid Instagram stories URL. Use a link like https://www.instagram.com/stories/username/"
	msgStoriesAuth    = "Stories require login or are private. Instagram stories often need authentication. Try our Instagram post/Reel downloader for public content."
	msgStoriesGeneric = "Unable to fetch stories. Please try again or use a different URL."
)

// Service runs the resolution pipeline: classify, consult the cache, invoke
// the extractor, select variants, cache the outcome.
type Service struct {
	cfg       *config.Config
	extractor Extractor
	cache     *Cache
	log       zerolog.Logger
}

func NewService(cfg *config.Config, extractor Extractor, cache *Cache, log zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		extractor: extractor,
		cache:     cache,
		log:       log.With().Str("component", "resolve-service").Logger(),
	}
}

func (s *Service) fastLimits() ExtractLimits {
	return ExtractLimits{Timeout: s.cfg.ExtractTimeout, MaxOutput: s.cfg.ExtractMaxOutput}
}

func (s *Service) slowLimits() ExtractLimits {
	return ExtractLimits{Timeout: s.cfg.ExtractTimeoutSlow, MaxOutput: s.cfg.ExtractMaxOutputBig}
}

// ResolveTikTok resolves a TikTok video URL into download links. Failures are
// reported inside the result, never as an error.
func (s *Service) ResolveTikTok(ctx context.Context, rawURL string) *TikTokResult {
	trimmed := strings.TrimSpace(rawURL)
	id, err := ClassifyTikTok(trimmed)
	if err != nil {
		return &TikTokResult{Error: msgTikTokInvalid}
	}

	if cached, ok := s.cache.Get(id); ok {
		if result, ok := cached.(*TikTokResult); ok {
			metrics.RecordCacheLookup(string(PlatformTikTok), true)
			return result
		}
	}
	metrics.RecordCacheLookup(string(PlatformTikTok), false)

	out, err := s.extractor.Metadata(ctx, trimmed, s.fastLimits())
	if err != nil {
		return &TikTokResult{Error: s.tiktokMessage(err)}
	}

	result, err := SelectTikTok(out)
	if err != nil {
		return &TikTokResult{Error: msgTikTokPrivate}
	}

	s.cache.Put(id, result)
	return result
}

// ResolveX resolves an X/Twitter status URL into a video link.
func (s *Service) ResolveX(ctx context.Context, rawURL string) *XResult {
	trimmed := strings.TrimSpace(rawURL)
	id, err := ClassifyX(trimmed)
	if err != nil {
		return &XResult{Error: msgXInvalid}
	}

	if cached, ok := s.cache.Get(id); ok {
		if result, ok := cached.(*XResult); ok {
			metrics.RecordCacheLookup(string(PlatformX), true)
			return result
		}
	}
	metrics.RecordCacheLookup(string(PlatformX), false)

	out, err := s.extractor.Metadata(ctx, trimmed, s.fastLimits())
	if err != nil {
		return &XResult{Error: s.xMessage(err)}
	}

	result, err := SelectX(out)
	if err != nil {
		return &XResult{Error: msgXNoVideo}
	}

	s.cache.Put(id, result)
	return result
}

// ResolveInstagram resolves an Instagram post/reel URL, including carousels.
func (s *Service) ResolveInstagram(ctx context.Context, rawURL string) *InstagramResult {
	trimmed := strings.TrimSpace(rawURL)
	id, err := ClassifyInstagram(trimmed)
	if err != nil {
		return &InstagramResult{Error: msgIGInvalid}
	}

	if cached, ok := s.cache.Get(id); ok {
		if result, ok := cached.(*InstagramResult); ok {
			metrics.RecordCacheLookup(string(PlatformIG), true)
			return result
		}
	}
	metrics.RecordCacheLookup(string(PlatformIG), false)

	out, err := s.extractor.Metadata(ctx, trimmed, s.slowLimits())
	if err != nil {
		return &InstagramResult{Error: s.instagramMessage(err)}
	}

	result, err := SelectInstagram(out)
	if err != nil {
		return &InstagramResult{Error: msgIGPrivate}
	}

	s.cache.Put(id, result)
	return result
}

// ResolveStories resolves an Instagram stories URL. Missing items are the
// common case (stories usually require authentication) and map to a
// login-specific message rather than a generic failure.
func (s *Service) ResolveStories(ctx context.Context, rawURL string) *StoriesResult {
	trimmed := strings.TrimSpace(rawURL)
	id, err := ClassifyStories(trimmed)
	if err != nil {
		return &StoriesResult{Error: msgStoriesInvalid}
	}

	if cached, ok := s.cache.Get(id); ok {
		if result, ok := cached.(*StoriesResult); ok {
			metrics.RecordCacheLookup(string(PlatformStories), true)
			return result
		}
	}
	metrics.RecordCacheLookup(string(PlatformStories), false)

	out, err := s.extractor.Metadata(ctx, trimmed, s.slowLimits())
	if err != nil {
		return &StoriesResult{Error: s.storiesMessage(err)}
	}

	result, err := SelectStories(out)
	if err != nil {
		return &StoriesResult{Error: msgStoriesAuth}
	}

	s.cache.Put(id, result)
	return result
}

func (s *Service) tiktokMessage(err error) string {
	switch {
	case errors.Is(err, ErrPrivateOrUnavailable):
		return msgTikTokPrivate
	case errors.Is(err, ErrExtractorIncompatible):
		return msgTikTokStale
	default:
		s.log.Warn().Err(err).Str("platform", string(PlatformTikTok)).Msg("extraction failed")
		return msgTikTokGeneric
	}
}

func (s *Service) xMessage(err error) string {
	if errors.Is(err, ErrPrivateOrUnavailable) {
		return msgXPrivate
	}
	s.log.Warn().Err(err).Str("platform", string(PlatformX)).Msg("extraction failed")
	return msgXGeneric
}

func (s *Service) instagramMessage(err error) string {
	if errors.Is(err, ErrPrivateOrUnavailable) {
		return msgIGPrivate
	}
	s.log.Warn().Err(err).Str("platform", string(PlatformIG)).Msg("extraction failed")
	return msgIGGeneric
}

func (s *Service) storiesMessage(err error) string {
	if errors.Is(err, ErrPrivateOrUnavailable) {
		return msgStoriesAuth
	}
	s.log.Warn().Err(err).Str("platform", string(PlatformStories)).Msg("extraction failed")
	return msgStoriesGeneric
}
