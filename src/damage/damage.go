// Package damage computes the part of the overlay that has to be repainted
// when the selection moves.
package damage

import "screen-region-select/src/geom"

// Compute returns the region covering the rendered extent of previous and
// current, each grown by borderWidth on every side, clipped to bounds.
//
// ok is false when nothing has to be drawn: both selections are identical,
// or the clipped union is empty. An empty result never means "repaint
// everything"; callers must skip the draw.
func Compute(previous, current *geom.Rect, borderWidth int, bounds geom.Rect) (r geom.Rect, ok bool) {
	if same(previous, current) {
		return geom.Rect{}, false
	}

	var u geom.Rect
	if previous != nil {
		u = u.Union(extent(*previous, borderWidth))
	}
	if current != nil {
		u = u.Union(extent(*current, borderWidth))
	}

	u = u.Intersect(bounds)
	if u.Empty() {
		return geom.Rect{}, false
	}
	return u, true
}

// extent is the area a selection touches on screen: the cut-out plus its
// border ring. A zero-size selection still owns its border.
func extent(sel geom.Rect, borderWidth int) geom.Rect {
	e := sel.Expand(borderWidth)
	if e.Empty() {
		// zero-size selection and no border: nothing on screen
		return geom.Rect{}
	}
	return e
}

func same(a, b *geom.Rect) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Tracker binds Compute to one surface.
type Tracker struct {
	bounds      geom.Rect
	borderWidth int
}

// NewTracker returns a tracker for a width x height surface.
func NewTracker(width, height, borderWidth int) *Tracker {
	return &Tracker{bounds: geom.Bounds(width, height), borderWidth: max(borderWidth, 0)}
}

// Full is the dirty region of a surface that has never been painted.
func (t *Tracker) Full() geom.Rect { return t.bounds }

// Bounds returns the surface rectangle.
func (t *Tracker) Bounds() geom.Rect { return t.bounds }

// Resize updates the surface size after a reconfigure.
func (t *Tracker) Resize(width, height int) {
	t.bounds = geom.Bounds(width, height)
}

// Compute is Compute with the tracker's border width and bounds.
func (t *Tracker) Compute(previous, current *geom.Rect) (geom.Rect, bool) {
	return Compute(previous, current, t.borderWidth, t.bounds)
}
