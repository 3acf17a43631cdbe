package resolve

import (
	"regexp"
	"strings"
)

// URL patterns tolerate a missing scheme, www./mobile subdomains, trailing
// slashes and query strings. Each captures the canonical identifier.
var (
	tiktokPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|vm\.|vt\.)?tiktok\.com/(?:@[\w.-]+/video/|[\w.-]+)(\d+)`)
	xPattern      = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/(?:\w+/status/|status/)(\d+)`)
	igPattern     = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
	storyPattern  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/stories/([^/?#]+)(?:/(\d+))?/?`)
)

// Classify determines the platform and canonical identifier of a raw user
// supplied URL. Returns ErrInvalidURL when no platform pattern matches.
func Classify(raw string) (ContentID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ContentID{}, ErrInvalidURL
	}
	for _, fn := range []func(string) (ContentID, error){
		ClassifyTikTok, ClassifyX, ClassifyStories, ClassifyInstagram,
	} {
		if id, err := fn(trimmed); err == nil {
			return id, nil
		}
	}
	return ContentID{}, ErrInvalidURL
}

// ClassifyTikTok extracts the numeric video id from a TikTok URL.
func ClassifyTikTok(raw string) (ContentID, error) {
	m := tiktokPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ContentID{}, ErrInvalidURL
	}
	return ContentID{Platform: PlatformTikTok, ID: m[1]}, nil
}

// ClassifyX extracts the numeric status id from an X/Twitter URL.
func ClassifyX(raw string) (ContentID, error) {
	m := xPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ContentID{}, ErrInvalidURL
	}
	return ContentID{Platform: PlatformX, ID: m[1]}, nil
}

// ClassifyInstagram extracts the shortcode from a post/reel/tv URL.
func ClassifyInstagram(raw string) (ContentID, error) {
	m := igPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ContentID{}, ErrInvalidURL
	}
	return ContentID{Platform: PlatformIG, ID: m[1]}, nil
}

// ClassifyStories extracts username (and optional numeric story id) from an
// Instagram stories URL. The identifier is "username" or "username/storyID".
func ClassifyStories(raw string) (ContentID, error) {
	m := storyPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ContentID{}, ErrInvalidURL
	}
	id := m[1]
	if m[2] != "" {
		id += "/" + m[2]
	}
	return ContentID{Platform: PlatformStories, ID: id}, nil
}
