// Package render paints the selection overlay into a BGRA canvas.
//
// Drawing is always restricted to a dirty rectangle: pixels outside it are
// never touched, so a buffer that already shows the right content there
// keeps it.
package render

import "screen-region-select/src/geom"

// Style holds the overlay colours and the border width.
type Style struct {
	Overlay     Color
	Selection   Color
	Border      Color
	BorderWidth int
}

// DefaultStyle dims the screen, leaves the selection clear and outlines it
// with a 2 pixel white border.
func DefaultStyle() Style {
	return Style{
		Overlay:     DefaultOverlay,
		Selection:   Transparent,
		Border:      DefaultBorder,
		BorderWidth: 2,
	}
}

// Draw repaints dirty (clipped to the canvas) with the overlay, then cuts
// out sel and draws its border. It returns the rectangle that was actually
// modified; the caller must declare it as damage.
func Draw(c Canvas, dirty geom.Rect, style Style, sel *geom.Rect) geom.Rect {
	clip := dirty.Intersect(c.Bounds())
	if clip.Empty() {
		return geom.Rect{}
	}

	c.fill(clip, style.Overlay)
	if sel == nil {
		return clip
	}

	bw := max(style.BorderWidth, 0)
	if !sel.Expand(bw).Overlaps(clip) {
		return clip
	}

	c.fill(sel.Intersect(clip), style.Selection)
	for _, band := range borderBands(*sel, bw) {
		c.fill(band.Intersect(clip), style.Border)
	}
	return clip
}

// borderBands splits the border ring around sel into at most four
// rectangles: full-width rows above and below, and the two side columns
// without the corners the rows already cover.
func borderBands(sel geom.Rect, bw int) []geom.Rect {
	if bw <= 0 {
		return nil
	}
	outer := sel.Expand(bw)
	return []geom.Rect{
		{X: outer.X, Y: outer.Y, Width: outer.Width, Height: bw},
		{X: outer.X, Y: sel.Bottom(), Width: outer.Width, Height: bw},
		{X: outer.X, Y: sel.Y, Width: bw, Height: sel.Height},
		{X: sel.Right(), Y: sel.Y, Width: bw, Height: sel.Height},
	}
}
