// Package image provides the dream illustration client.
package image

import "context"

// Illustrator defines the interface contract for image generation services.
type Illustrator interface {
	// Illustrate returns a self-contained data URI for an image derived
	// from the dream content.
	Illustrate(ctx context.Context, content string) (string, error)
}
