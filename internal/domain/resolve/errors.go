package resolve

import (
	"errors"
	"strings"
)

// Closed error taxonomy for the resolution pipeline. Handlers map these to
// user-facing messages; nothing else leaks past the service boundary.
var (
	// ErrInvalidURL means the input never matched a known platform pattern.
	ErrInvalidURL = errors.New("invalid url")
	// ErrPrivateOrUnavailable means the content exists but is restricted or gone.
	ErrPrivateOrUnavailable = errors.New("content private or unavailable")
	// ErrExtractorIncompatible means the external tool could not parse the page,
	// usually because its site support is stale.
	ErrExtractorIncompatible = errors.New("extractor incompatible")
	// ErrExtractionFailed covers timeouts, malformed output and everything else.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrNoUsableMedia means extraction succeeded but no acceptable format was found.
	ErrNoUsableMedia = errors.New("no usable media")
)

var privateTerms = []string{
	"private", "unavailable", "sign in", "login", "restricted",
	"blocked", "404", "not found", "suspended",
}

var authTerms = []string{
	"authentication", "cookie", "login required",
}

var incompatibleTerms = []string{
	"unable to extract", "extract webpage",
}

// ClassifyExtractorError translates opaque extractor stderr/error text into
// one of the taxonomy errors. The substring matching is best effort; anything
// unrecognized degrades to ErrExtractionFailed.
func ClassifyExtractorError(text string) error {
	lower := strings.ToLower(text)
	for _, term := range privateTerms {
		if strings.Contains(lower, term) {
			return ErrPrivateOrUnavailable
		}
	}
	for _, term := range authTerms {
		if strings.Contains(lower, term) {
			return ErrPrivateOrUnavailable
		}
	}
	for _, term := range incompatibleTerms {
		if strings.Contains(lower, term) {
			return ErrExtractorIncompatible
		}
	}
	return ErrExtractionFailed
}
