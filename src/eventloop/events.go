package eventloop

import (
	"fmt"

	"screen-region-select/src/geom"
)

// Kind tags an Event. The set is closed; the loop switches over it.
type Kind int

const (
	PointerMotion Kind = iota
	PointerButton
	Key
	BufferRelease
	FrameReady
	SurfaceReady
	SurfaceClosed
)

var kindNames = [...]string{
	PointerMotion: "pointer-motion",
	PointerButton: "pointer-button",
	Key:           "key",
	BufferRelease: "buffer-release",
	FrameReady:    "frame-ready",
	SurfaceReady:  "surface-ready",
	SurfaceClosed: "surface-closed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Linux input event codes used by the dispatcher.
const (
	ButtonLeft uint32 = 0x110
	KeyEscape  uint32 = 1
)

// Event is one notification from the display connection. Only the fields
// of its Kind are set:
//
//	PointerMotion  Pos
//	PointerButton  Pos, Code (button), Pressed
//	Key            Code (evdev key), Pressed
//	BufferRelease  Buffer
//	SurfaceReady   Width, Height
type Event struct {
	Kind    Kind
	Pos     geom.Point
	Code    uint32
	Pressed bool
	Buffer  int
	Width   int
	Height  int
}

func (e Event) String() string {
	switch e.Kind {
	case PointerMotion:
		return fmt.Sprintf("%s %d,%d", e.Kind, e.Pos.X, e.Pos.Y)
	case PointerButton:
		return fmt.Sprintf("%s %#x pressed=%t at %d,%d", e.Kind, e.Code, e.Pressed, e.Pos.X, e.Pos.Y)
	case Key:
		return fmt.Sprintf("%s %d pressed=%t", e.Kind, e.Code, e.Pressed)
	case BufferRelease:
		return fmt.Sprintf("%s %d", e.Kind, e.Buffer)
	case SurfaceReady:
		return fmt.Sprintf("%s %dx%d", e.Kind, e.Width, e.Height)
	default:
		return e.Kind.String()
	}
}
