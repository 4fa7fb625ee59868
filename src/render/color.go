package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is one pixel in memory order for wl_shm ARGB8888 on little-endian
// hosts: blue, green, red, alpha. Channels are premultiplied by alpha.
type Color struct {
	B, G, R, A uint8
}

var (
	Transparent = Color{}
	// DefaultOverlay is half-transparent black.
	DefaultOverlay = Color{A: 0x80}
	DefaultBorder  = Color{B: 0xff, G: 0xff, R: 0xff, A: 0xff}
)

// RGBA builds a premultiplied Color from straight (non-premultiplied) channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{
		B: premultiply(b, a),
		G: premultiply(g, a),
		R: premultiply(r, a),
		A: a,
	}
}

func premultiply(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 127) / 255)
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" (leading '#' optional).
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGBA(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func (c Color) String() string {
	return fmt.Sprintf("bgra(%d,%d,%d,%d)", c.B, c.G, c.R, c.A)
}
