package resolve

import "strings"

// Platform identifies a supported source site.
type Platform string

const (
	PlatformTikTok  Platform = "tiktok"
	PlatformX       Platform = "x"
	PlatformIG      Platform = "instagram"
	PlatformStories Platform = "instagram-stories"
)

// ContentID is the canonical identity of one piece of content. Two different
// URL spellings of the same post must map to the same ContentID so they share
// a cache entry.
type ContentID struct {
	Platform Platform
	ID       string
}

// CacheKey returns the namespaced cache key for this content.
func (c ContentID) CacheKey() string {
	return string(c.Platform) + ":" + c.ID
}

// MediaFormat is one candidate asset row from the extractor's format list.
type MediaFormat struct {
	FormatID   string  `json:"format_id"`
	URL        string  `json:"url"`
	Ext        string  `json:"ext"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	FormatNote string  `json:"format_note"`
}

// IsVideo reports whether the format carries a video track.
func (f MediaFormat) IsVideo() bool {
	v := strings.ToLower(f.VCodec)
	return v != "" && v != "none"
}

// IsAudioOnly reports whether the format is audio with no video track.
func (f MediaFormat) IsAudioOnly() bool {
	if f.IsVideo() {
		return false
	}
	a := strings.ToLower(f.ACodec)
	return a != "" && a != "none"
}

// IsImage reports whether the format is a still frame (no codec on either
// track); Instagram carousels report images this way.
func (f MediaFormat) IsImage() bool {
	return !f.IsVideo()
}

// ExtractorEntry is one sub-item of a multi-item post (carousel or story set).
type ExtractorEntry struct {
	ID      string        `json:"id"`
	URL     string        `json:"url"`
	Formats []MediaFormat `json:"formats"`
}

// ExtractorOutput is the parsed structured output of one extractor run.
type ExtractorOutput struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Uploader   string           `json:"uploader"`
	UploaderID string           `json:"uploader_id"`
	Thumbnail  string           `json:"thumbnail"`
	Duration   float64          `json:"duration"`
	Formats    []MediaFormat    `json:"formats"`
	Entries    []ExtractorEntry `json:"entries"`
}

// MediaItemType distinguishes carousel/story items.
type MediaItemType string

const (
	ItemVideo MediaItemType = "video"
	ItemImage MediaItemType = "image"
)

// MediaItem is one element of a carousel or story set, in post order.
type MediaItem struct {
	URL       string        `json:"url"`
	Type      MediaItemType `json:"type"`
	Thumbnail string        `json:"thumbnail,omitempty"`
}

// TikTokLinks is the TikTok link bundle.
type TikTokLinks struct {
	Mp4HdWatermark   string `json:"mp4HdWatermark,omitempty"`
	Mp4HdNoWatermark string `json:"mp4HdNoWatermark,omitempty"`
	Mp3              string `json:"mp3,omitempty"`
}

// XLinks is the X (Twitter) link bundle.
type XLinks struct {
	Video string `json:"video,omitempty"`
}

// InstagramLinks covers single posts (video and/or image) and carousels.
type InstagramLinks struct {
	Video string      `json:"video,omitempty"`
	Image string      `json:"image,omitempty"`
	Items []MediaItem `json:"items,omitempty"`
}

// StoriesLinks holds the resolved story items.
type StoriesLinks struct {
	Items []MediaItem `json:"items,omitempty"`
}

// TikTokResult is the resolve payload for TikTok content.
type TikTokResult struct {
	Success  bool        `json:"success"`
	Title    string      `json:"title,omitempty"`
	Author   string      `json:"author,omitempty"`
	Cover    string      `json:"cover,omitempty"`
	Duration float64     `json:"duration,omitempty"`
	Quality  string      `json:"quality,omitempty"`
	Links    TikTokLinks `json:"links"`
	Error    string      `json:"error,omitempty"`
}

// XResult is the resolve payload for X content.
type XResult struct {
	Success  bool    `json:"success"`
	Title    string  `json:"title,omitempty"`
	Author   string  `json:"author,omitempty"`
	Cover    string  `json:"cover,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Quality  string  `json:"quality,omitempty"`
	FPS      float64 `json:"fps,omitempty"`
	Links    XLinks  `json:"links"`
	Error    string  `json:"error,omitempty"`
}

// InstagramResult is the resolve payload for Instagram posts and reels.
type InstagramResult struct {
	Success  bool           `json:"success"`
	Title    string         `json:"title,omitempty"`
	Author   string         `json:"author,omitempty"`
	Cover    string         `json:"cover,omitempty"`
	Duration float64        `json:"duration,omitempty"`
	Quality  string         `json:"quality,omitempty"`
	Links    InstagramLinks `json:"links"`
	Error    string         `json:"error,omitempty"`
}

// StoriesResult is the resolve payload for Instagram stories.
type StoriesResult struct {
	Success bool         `json:"success"`
	Title   string       `json:"title,omitempty"`
	Author  string       `json:"author,omitempty"`
	Cover   string       `json:"cover,omitempty"`
	Links   StoriesLinks `json:"links"`
	Error   string       `json:"error,omitempty"`
}

// author picks the uploader id when present, matching the extractor's habit of
// reporting a display name in Uploader and a handle in UploaderID.
func (o *ExtractorOutput) author() string {
	if o.UploaderID != "" {
		return o.UploaderID
	}
	return o.Uploader
}
