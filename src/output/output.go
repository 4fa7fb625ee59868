// Package output renders a selected region for other programs.
package output

import (
	"encoding/json"
	"strconv"
	"strings"

	"screen-region-select/src/geom"
)

// Format expands the directives %x, %y, %w, %h and %% in layout. Unknown
// directives are copied through unchanged.
func Format(layout string, r geom.Rect) string {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		ch := layout[i]
		if ch != '%' || i+1 == len(layout) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch layout[i] {
		case 'x':
			b.WriteString(strconv.Itoa(r.X))
		case 'y':
			b.WriteString(strconv.Itoa(r.Y))
		case 'w':
			b.WriteString(strconv.Itoa(r.Width))
		case 'h':
			b.WriteString(strconv.Itoa(r.Height))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(layout[i])
		}
	}
	return b.String()
}

// Region is the JSON shape of a selection.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// JSON encodes r as a single-line object.
func JSON(r geom.Rect) ([]byte, error) {
	return json.Marshal(Region{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
}
