package geom

import "fmt"

// Point is a position in surface-local pixel coordinates.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle. Width and Height are never negative.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Normalize builds the rectangle spanned by two arbitrary corners.
// The result does not depend on the drag direction.
func Normalize(a, b Point) Rect {
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(a.X - b.X),
		Height: abs(a.Y - b.Y),
	}
}

// Bounds returns the rectangle covering a width x height surface.
func Bounds(width, height int) Rect {
	return Rect{Width: max(width, 0), Height: max(height, 0)}
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Expand grows r by n pixels on every side.
func (r Rect) Expand(n int) Rect {
	if n <= 0 {
		return r
	}
	return Rect{X: r.X - n, Y: r.Y - n, Width: r.Width + 2*n, Height: r.Height + 2*n}
}

// Intersect returns the overlap of r and s. The zero Rect is returned when
// they do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	x0 := max(r.X, s.X)
	y0 := max(r.Y, s.Y)
	x1 := min(r.Right(), s.Right())
	y1 := min(r.Bottom(), s.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Overlaps reports whether r and s share at least one pixel.
func (r Rect) Overlaps(s Rect) bool {
	return !r.Intersect(s).Empty()
}

// Union returns the smallest rectangle containing both r and s. Empty
// operands are ignored.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	x0 := min(r.X, s.X)
	y0 := min(r.Y, s.Y)
	x1 := max(r.Right(), s.Right())
	y1 := max(r.Bottom(), s.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Contains reports whether s lies entirely inside r.
func (r Rect) Contains(s Rect) bool {
	if s.Empty() {
		return true
	}
	return s.X >= r.X && s.Y >= r.Y && s.Right() <= r.Right() && s.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether p is one of the pixels covered by r.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Clamp moves p to the nearest pixel inside r. r must not be empty.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: clampInt(p.X, r.X, r.Right()-1),
		Y: clampInt(p.Y, r.Y, r.Bottom()-1),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
