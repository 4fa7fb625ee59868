package overlay

import (
	"context"

	"screen-region-select/src/geom"
	"screen-region-select/src/render"
)

// Selector defines a synchronous region-selection API.
// The call is blocking and MUST be invoked only from one goroutine.
// Returns (region, cancelled, error). If cancelled is true, region is undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (geom.Rect, bool, error)
}

// Options configures the overlay look and its registration with the
// compositor.
type Options struct {
	Style      render.Style
	Namespace  string
	CursorSize int
}

// NewSelector returns the platform implementation.
// Implementation is provided in a platform-specific file.
func NewSelector(opts Options) Selector {
	return newPlatformSelector(opts)
}
