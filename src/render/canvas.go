package render

import (
	"fmt"

	"screen-region-select/src/geom"
)

// BytesPerPixel is the size of one BGRA pixel.
const BytesPerPixel = 4

// Canvas is a row-major BGRA pixel buffer with a fixed stride. It does not
// own Pix; the memory usually lives in a shared-memory mapping.
type Canvas struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// NewCanvas validates the geometry of pix and wraps it.
func NewCanvas(pix []byte, width, height, stride int) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return Canvas{}, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if stride < width*BytesPerPixel {
		return Canvas{}, fmt.Errorf("stride %d too small for width %d", stride, width)
	}
	if len(pix) < stride*height {
		return Canvas{}, fmt.Errorf("pixel buffer holds %d bytes, need %d", len(pix), stride*height)
	}
	return Canvas{Pix: pix[:stride*height], Width: width, Height: height, Stride: stride}, nil
}

// Bounds returns the canvas rectangle.
func (c Canvas) Bounds() geom.Rect { return geom.Bounds(c.Width, c.Height) }

func (c Canvas) offset(x, y int) int { return y*c.Stride + x*BytesPerPixel }

// At returns the pixel at (x, y). Out-of-range reads return the zero Color.
func (c Canvas) At(x, y int) Color {
	if !c.Bounds().ContainsPoint(geom.Point{X: x, Y: y}) {
		return Color{}
	}
	i := c.offset(x, y)
	return Color{B: c.Pix[i], G: c.Pix[i+1], R: c.Pix[i+2], A: c.Pix[i+3]}
}

// ByteRange maps r (clipped to the canvas) to the half-open byte span
// [start, end) of Pix that contains every pixel of r.
func (c Canvas) ByteRange(r geom.Rect) (start, end int) {
	r = r.Intersect(c.Bounds())
	if r.Empty() {
		return 0, 0
	}
	return c.offset(r.X, r.Y), c.offset(r.Right(), r.Bottom()-1)
}

// Fill paints r (clipped to the canvas) with col.
func Fill(c Canvas, r geom.Rect, col Color) { c.fill(r, col) }

// fill paints r with col, one contiguous row at a time. The first row is
// built by doubling copies; the remaining rows are copies of the first.
func (c Canvas) fill(r geom.Rect, col Color) {
	r = r.Intersect(c.Bounds())
	if r.Empty() {
		return
	}
	rowBytes := r.Width * BytesPerPixel
	first := c.Pix[c.offset(r.X, r.Y):][:rowBytes]
	first[0], first[1], first[2], first[3] = col.B, col.G, col.R, col.A
	for n := BytesPerPixel; n < rowBytes; n *= 2 {
		copy(first[n:], first[:n])
	}
	for y := r.Y + 1; y < r.Bottom(); y++ {
		copy(c.Pix[c.offset(r.X, y):][:rowBytes], first)
	}
}
