//go:build !linux

package overlay

import (
	"context"
	"errors"

	"screen-region-select/src/geom"
)

var errUnsupported = errors.New("region selection needs a Wayland session on Linux")

type unsupportedSelector struct{}

func newPlatformSelector(Options) Selector { return unsupportedSelector{} }

func (unsupportedSelector) Select(context.Context) (geom.Rect, bool, error) {
	return geom.Rect{}, false, errUnsupported
}
