// Package ai provides the dream-analysis clients. Both backends share the
// localized prompt templates and return the cleaned analysis text, a sentinel
// rejection, or a transport error - the three outcomes callers must tell apart.
package ai

import (
	"context"
	"errors"
)

// Analyst defines the interface contract for dream analysis services.
type Analyst interface {
	// Analyze returns the cleaned analysis text for the given dream content.
	// An empty string with a nil error means the model produced no usable
	// text; callers substitute the localized fallback (see FallbackAnalysis).
	Analyze(ctx context.Context, content string, lang Language) (string, error)
	// Provider returns the backend identifier for health reporting.
	Provider() string
}

var (
	// ErrNotConfigured indicates the analysis backend has no API key.
	ErrNotConfigured = errors.New("analysis API key not configured")

	// ErrRejected indicates the model explicitly flagged the dream content
	// as unanalyzable by returning the localized "failed" sentinel.
	ErrRejected = errors.New("dream content rejected by the analyst")
)
