package resolve

import (
	"fmt"
	"math"
	"strings"
)

// hasNoWatermarkNote reports whether the format advertises an unwatermarked
// encode in its note or format id.
func hasNoWatermarkNote(f MediaFormat) bool {
	note := strings.ToLower(f.FormatNote)
	if note == "" {
		note = strings.ToLower(f.FormatID)
	}
	return strings.Contains(note, "no watermark") || strings.Contains(note, "without watermark")
}

// qualityLabel derives the human readable quality string: height wins, then
// the format note unless it would leak watermark labeling into the UI.
func qualityLabel(f MediaFormat) string {
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	note := f.FormatNote
	if note != "" && !strings.Contains(strings.ToLower(note), "watermark") {
		return note
	}
	return ""
}

// xQualityLabel is the X variant: the extractor reports "unknown" notes for
// some renditions, which are not worth surfacing.
func xQualityLabel(f MediaFormat) string {
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	note := f.FormatNote
	if note != "" && !strings.Contains(strings.ToLower(note), "unknown") {
		return note
	}
	return ""
}

// SelectTikTok picks the watermarked/no-watermark video pair and the audio
// track from a raw format list.
//
// Bucketing is by format note: anything mentioning "no watermark"/"without
// watermark" is the clean encode, everything else counts as watermarked. When
// only one bucket exists both links resolve to it; one field is never left
// empty while the other is populated.
func SelectTikTok(out *ExtractorOutput) (*TikTokResult, error) {
	var videos, audios []MediaFormat
	for _, f := range out.Formats {
		switch {
		case f.URL == "":
		case f.IsVideo():
			videos = append(videos, f)
		case f.IsAudioOnly():
			audios = append(audios, f)
		}
	}
	if len(videos) == 0 {
		return nil, ErrNoUsableMedia
	}

	watermarked := firstMatch(videos, func(f MediaFormat) bool { return !hasNoWatermarkNote(f) })
	if watermarked == nil {
		watermarked = &videos[0]
	}
	clean := firstMatch(videos, hasNoWatermarkNote)
	if clean == nil {
		clean = watermarked
	}

	links := TikTokLinks{
		Mp4HdWatermark:   watermarked.URL,
		Mp4HdNoWatermark: clean.URL,
	}
	if len(audios) > 0 {
		links.Mp3 = audios[0].URL
	}

	return &TikTokResult{
		Success:  true,
		Title:    out.Title,
		Author:   out.Uploader,
		Cover:    out.Thumbnail,
		Duration: out.Duration,
		Quality:  qualityLabel(*clean),
		Links:    links,
	}, nil
}

// SelectX picks the single video link for an X post, surfacing frame rate
// when the extractor reports a finite value.
func SelectX(out *ExtractorOutput) (*XResult, error) {
	best := firstMatch(out.Formats, func(f MediaFormat) bool { return f.URL != "" && f.IsVideo() })
	if best == nil {
		return nil, ErrNoUsableMedia
	}

	result := &XResult{
		Success:  true,
		Title:    out.Title,
		Author:   out.author(),
		Cover:    out.Thumbnail,
		Duration: out.Duration,
		Quality:  xQualityLabel(*best),
		Links:    XLinks{Video: best.URL},
	}
	if best.FPS > 0 && !math.IsInf(best.FPS, 0) && !math.IsNaN(best.FPS) {
		result.FPS = best.FPS
	}
	return result, nil
}

// SelectInstagram handles both carousels (multiple entries) and single
// posts/reels (one format list that may hold a video and a poster image).
func SelectInstagram(out *ExtractorOutput) (*InstagramResult, error) {
	if len(out.Entries) > 0 {
		items := entryItems(out.Entries, out.Thumbnail)
		if len(items) == 0 {
			return nil, ErrNoUsableMedia
		}
		return &InstagramResult{
			Success: true,
			Title:   out.Title,
			Author:  out.author(),
			Cover:   out.Thumbnail,
			Links:   InstagramLinks{Items: items},
		}, nil
	}

	video := firstMatch(out.Formats, func(f MediaFormat) bool { return f.URL != "" && f.IsVideo() })
	image := firstMatch(out.Formats, func(f MediaFormat) bool { return f.URL != "" && f.IsImage() })
	if video == nil && image == nil {
		return nil, ErrNoUsableMedia
	}

	result := &InstagramResult{
		Success:  true,
		Title:    out.Title,
		Author:   out.author(),
		Cover:    out.Thumbnail,
		Duration: out.Duration,
	}
	if video != nil {
		result.Quality = xQualityLabel(*video)
		result.Links.Video = video.URL
	}
	if image != nil {
		result.Links.Image = image.URL
	}
	return result, nil
}

// SelectStories collects story items. Stories frequently require
// authentication, so an empty result is the expected failure mode and the
// caller maps ErrNoUsableMedia to a login-specific message.
func SelectStories(out *ExtractorOutput) (*StoriesResult, error) {
	var items []MediaItem
	if len(out.Entries) > 0 {
		items = entryItems(out.Entries, out.Thumbnail)
	} else if item, ok := singleItem(out.Formats, out.Thumbnail); ok {
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrNoUsableMedia
	}
	return &StoriesResult{
		Success: true,
		Title:   out.Title,
		Author:  out.author(),
		Cover:   out.Thumbnail,
		Links:   StoriesLinks{Items: items},
	}, nil
}

// entryItems maps carousel/story entries to ordered media items, preferring a
// video-capable format over a still frame within each entry.
func entryItems(entries []ExtractorEntry, thumbnail string) []MediaItem {
	items := make([]MediaItem, 0, len(entries))
	for _, entry := range entries {
		video := firstMatch(entry.Formats, func(f MediaFormat) bool { return f.URL != "" && f.IsVideo() })
		image := firstMatch(entry.Formats, func(f MediaFormat) bool { return f.URL != "" && f.IsImage() })

		url := entry.URL
		kind := ItemImage
		switch {
		case video != nil:
			url = video.URL
			kind = ItemVideo
		case image != nil:
			url = image.URL
		}
		if url == "" {
			continue
		}
		items = append(items, MediaItem{URL: url, Type: kind, Thumbnail: thumbnail})
	}
	return items
}

func singleItem(formats []MediaFormat, thumbnail string) (MediaItem, bool) {
	video := firstMatch(formats, func(f MediaFormat) bool { return f.URL != "" && f.IsVideo() })
	if video != nil {
		return MediaItem{URL: video.URL, Type: ItemVideo, Thumbnail: thumbnail}, true
	}
	image := firstMatch(formats, func(f MediaFormat) bool { return f.URL != "" && f.IsImage() })
	if image != nil {
		return MediaItem{URL: image.URL, Type: ItemImage, Thumbnail: thumbnail}, true
	}
	return MediaItem{}, false
}

func firstMatch(formats []MediaFormat, match func(MediaFormat) bool) *MediaFormat {
	for i := range formats {
		if match(formats[i]) {
			return &formats[i]
		}
	}
	return nil
}
