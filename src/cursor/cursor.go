// Package cursor provides the pointer image shown over the overlay.
package cursor

import (
	"fmt"

	"screen-region-select/src/geom"
	"screen-region-select/src/render"
)

// Asset is a fixed-size premultiplied BGRA image with a hotspot. It is
// read-only once built.
type Asset struct {
	Pixels  []byte
	Width   int
	Height  int
	Hotspot geom.Point
}

// Stride returns the length of one row in bytes.
func (a Asset) Stride() int { return a.Width * render.BytesPerPixel }

// Canvas wraps the asset pixels for drawing.
func (a Asset) Canvas() (render.Canvas, error) {
	return render.NewCanvas(a.Pixels, a.Width, a.Height, a.Stride())
}

var (
	outline = render.RGBA(0, 0, 0, 0xff)
	stroke  = render.RGBA(0xff, 0xff, 0xff, 0xff)
)

// Crosshair draws a size x size crosshair: a white plus sign with a black
// outline and a gap around the hotspot. size is rounded up to an odd
// number so the hotspot is the exact centre pixel.
func Crosshair(size int) (Asset, error) {
	if size < 7 {
		return Asset{}, fmt.Errorf("cursor size %d too small, need at least 7", size)
	}
	if size%2 == 0 {
		size++
	}
	a := Asset{
		Pixels:  make([]byte, size*size*render.BytesPerPixel),
		Width:   size,
		Height:  size,
		Hotspot: geom.Point{X: size / 2, Y: size / 2},
	}
	c, err := a.Canvas()
	if err != nil {
		return Asset{}, err
	}

	mid := size / 2
	gap := 2
	arm := mid - gap

	// outline first, one pixel wider on every side of each arm
	for _, r := range arms(mid, gap, arm, 1) {
		render.Fill(c, r, outline)
	}
	for _, r := range arms(mid, gap, arm, 0) {
		render.Fill(c, r, stroke)
	}
	return a, nil
}

// arms returns the four crosshair strokes around (mid, mid), each grown
// by pad.
func arms(mid, gap, length, pad int) []geom.Rect {
	return []geom.Rect{
		{X: mid - pad, Y: 0, Width: 1 + 2*pad, Height: length + pad},
		{X: mid - pad, Y: mid + gap + 1 - pad, Width: 1 + 2*pad, Height: length + pad},
		{X: 0, Y: mid - pad, Width: length + pad, Height: 1 + 2*pad},
		{X: mid + gap + 1 - pad, Y: mid - pad, Width: length + pad, Height: 1 + 2*pad},
	}
}
