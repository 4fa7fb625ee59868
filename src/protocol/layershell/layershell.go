// Package layershell is a client binding for the wlr-layer-shell-unstable-v1
// protocol, in the shape of the go-wayland scanner output.
//
// Only the requests and events needed for a full-screen overlay are
// bound; popups are not.
package layershell

import (
	"encoding/binary"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

var _ client.Dispatcher = (*ZwlrLayerSurfaceV1)(nil)

// ZwlrLayerShellV1InterfaceName is the registry name of the layer shell
// global.
const ZwlrLayerShellV1InterfaceName = "zwlr_layer_shell_v1"

// ZwlrLayerShellV1Layer : available layers for surfaces
type ZwlrLayerShellV1Layer uint32

const (
	ZwlrLayerShellV1LayerBackground ZwlrLayerShellV1Layer = 0
	ZwlrLayerShellV1LayerBottom     ZwlrLayerShellV1Layer = 1
	ZwlrLayerShellV1LayerTop        ZwlrLayerShellV1Layer = 2
	ZwlrLayerShellV1LayerOverlay    ZwlrLayerShellV1Layer = 3
)

// ZwlrLayerSurfaceV1Anchor : edges a surface is anchored to
type ZwlrLayerSurfaceV1Anchor uint32

const (
	ZwlrLayerSurfaceV1AnchorTop    ZwlrLayerSurfaceV1Anchor = 1
	ZwlrLayerSurfaceV1AnchorBottom ZwlrLayerSurfaceV1Anchor = 2
	ZwlrLayerSurfaceV1AnchorLeft   ZwlrLayerSurfaceV1Anchor = 4
	ZwlrLayerSurfaceV1AnchorRight  ZwlrLayerSurfaceV1Anchor = 8

	// ZwlrLayerSurfaceV1AnchorAll stretches the surface over the output.
	ZwlrLayerSurfaceV1AnchorAll = ZwlrLayerSurfaceV1AnchorTop | ZwlrLayerSurfaceV1AnchorBottom |
		ZwlrLayerSurfaceV1AnchorLeft | ZwlrLayerSurfaceV1AnchorRight
)

// ZwlrLayerSurfaceV1KeyboardInteractivity : types of keyboard interaction possible
type ZwlrLayerSurfaceV1KeyboardInteractivity uint32

const (
	ZwlrLayerSurfaceV1KeyboardInteractivityNone      ZwlrLayerSurfaceV1KeyboardInteractivity = 0
	ZwlrLayerSurfaceV1KeyboardInteractivityExclusive ZwlrLayerSurfaceV1KeyboardInteractivity = 1
	ZwlrLayerSurfaceV1KeyboardInteractivityOnDemand  ZwlrLayerSurfaceV1KeyboardInteractivity = 2
)

// ZwlrLayerShellV1 : create surfaces that are layers of the desktop
type ZwlrLayerShellV1 struct {
	client.BaseProxy
}

// NewZwlrLayerShellV1 : create surfaces that are layers of the desktop
func NewZwlrLayerShellV1(ctx *client.Context) *ZwlrLayerShellV1 {
	zwlrLayerShellV1 := &ZwlrLayerShellV1{}
	ctx.Register(zwlrLayerShellV1)
	return zwlrLayerShellV1
}

// GetLayerSurface : create a layer_surface from a surface
//
// output may be nil to let the compositor pick one.
func (i *ZwlrLayerShellV1) GetLayerSurface(surface *client.Surface, output *client.Output, layer uint32, namespace string) (*ZwlrLayerSurfaceV1, error) {
	id := NewZwlrLayerSurfaceV1(i.Context())
	var outputID uint32
	if output != nil {
		outputID = output.ID()
	}

	m := newMessage(i.ID(), 0)
	m.putUint32(id.ID())
	m.putUint32(surface.ID())
	m.putUint32(outputID)
	m.putUint32(layer)
	m.putString(namespace)
	return id, i.Context().WriteMsg(m.bytes(), nil)
}

// Destroy : destroy the layer_shell object
func (i *ZwlrLayerShellV1) Destroy() error {
	defer i.Context().Unregister(i)
	return i.Context().WriteMsg(newMessage(i.ID(), 1).bytes(), nil)
}

// ZwlrLayerSurfaceV1 : layer metadata interface
type ZwlrLayerSurfaceV1 struct {
	client.BaseProxy
	configureHandler ZwlrLayerSurfaceV1ConfigureHandlerFunc
	closedHandler    ZwlrLayerSurfaceV1ClosedHandlerFunc
}

// NewZwlrLayerSurfaceV1 : layer metadata interface
func NewZwlrLayerSurfaceV1(ctx *client.Context) *ZwlrLayerSurfaceV1 {
	zwlrLayerSurfaceV1 := &ZwlrLayerSurfaceV1{}
	ctx.Register(zwlrLayerSurfaceV1)
	return zwlrLayerSurfaceV1
}

// SetSize : sets the size of the surface
func (i *ZwlrLayerSurfaceV1) SetSize(width, height uint32) error {
	m := newMessage(i.ID(), 0)
	m.putUint32(width)
	m.putUint32(height)
	return i.Context().WriteMsg(m.bytes(), nil)
}

// SetAnchor : configures the anchor point of the surface
func (i *ZwlrLayerSurfaceV1) SetAnchor(anchor uint32) error {
	m := newMessage(i.ID(), 1)
	m.putUint32(anchor)
	return i.Context().WriteMsg(m.bytes(), nil)
}

// SetExclusiveZone : configures the exclusive geometry of this surface
func (i *ZwlrLayerSurfaceV1) SetExclusiveZone(zone int32) error {
	m := newMessage(i.ID(), 2)
	m.putUint32(uint32(zone))
	return i.Context().WriteMsg(m.bytes(), nil)
}

// SetMargin : sets a margin from the anchor point
func (i *ZwlrLayerSurfaceV1) SetMargin(top, right, bottom, left int32) error {
	m := newMessage(i.ID(), 3)
	m.putUint32(uint32(top))
	m.putUint32(uint32(right))
	m.putUint32(uint32(bottom))
	m.putUint32(uint32(left))
	return i.Context().WriteMsg(m.bytes(), nil)
}

// SetKeyboardInteractivity : requests keyboard events
func (i *ZwlrLayerSurfaceV1) SetKeyboardInteractivity(keyboardInteractivity uint32) error {
	m := newMessage(i.ID(), 4)
	m.putUint32(keyboardInteractivity)
	return i.Context().WriteMsg(m.bytes(), nil)
}

// AckConfigure : ack a configure event
func (i *ZwlrLayerSurfaceV1) AckConfigure(serial uint32) error {
	m := newMessage(i.ID(), 6)
	m.putUint32(serial)
	return i.Context().WriteMsg(m.bytes(), nil)
}

// Destroy : destroy the layer_surface
func (i *ZwlrLayerSurfaceV1) Destroy() error {
	defer i.Context().Unregister(i)
	return i.Context().WriteMsg(newMessage(i.ID(), 7).bytes(), nil)
}

// ZwlrLayerSurfaceV1ConfigureEvent : suggest a surface change
type ZwlrLayerSurfaceV1ConfigureEvent struct {
	Serial uint32
	Width  uint32
	Height uint32
}
type ZwlrLayerSurfaceV1ConfigureHandlerFunc func(ZwlrLayerSurfaceV1ConfigureEvent)

// SetConfigureHandler : sets handler for ZwlrLayerSurfaceV1ConfigureEvent
func (i *ZwlrLayerSurfaceV1) SetConfigureHandler(f ZwlrLayerSurfaceV1ConfigureHandlerFunc) {
	i.configureHandler = f
}

// ZwlrLayerSurfaceV1ClosedEvent : surface should be closed
type ZwlrLayerSurfaceV1ClosedEvent struct{}
type ZwlrLayerSurfaceV1ClosedHandlerFunc func(ZwlrLayerSurfaceV1ClosedEvent)

// SetClosedHandler : sets handler for ZwlrLayerSurfaceV1ClosedEvent
func (i *ZwlrLayerSurfaceV1) SetClosedHandler(f ZwlrLayerSurfaceV1ClosedHandlerFunc) {
	i.closedHandler = f
}

func (i *ZwlrLayerSurfaceV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case 0:
		if i.configureHandler == nil || len(data) < 12 {
			return
		}
		i.configureHandler(ZwlrLayerSurfaceV1ConfigureEvent{
			Serial: binary.NativeEndian.Uint32(data[0:4]),
			Width:  binary.NativeEndian.Uint32(data[4:8]),
			Height: binary.NativeEndian.Uint32(data[8:12]),
		})
	case 1:
		if i.closedHandler == nil {
			return
		}
		i.closedHandler(ZwlrLayerSurfaceV1ClosedEvent{})
	}
}

// message builds one request: object id, size<<16|opcode, arguments.
type message struct {
	buf []byte
}

func newMessage(sender uint32, opcode uint32) *message {
	m := &message{buf: make([]byte, 8, 64)}
	binary.NativeEndian.PutUint32(m.buf[0:4], sender)
	binary.NativeEndian.PutUint32(m.buf[4:8], opcode)
	return m
}

func (m *message) putUint32(v uint32) {
	m.buf = binary.NativeEndian.AppendUint32(m.buf, v)
}

// putString writes a length-prefixed, NUL-terminated string padded to 32
// bits.
func (m *message) putString(s string) {
	n := len(s) + 1
	m.putUint32(uint32(n))
	m.buf = append(m.buf, s...)
	m.buf = append(m.buf, 0)
	for len(m.buf)%4 != 0 {
		m.buf = append(m.buf, 0)
	}
}

func (m *message) bytes() []byte {
	opcode := binary.NativeEndian.Uint32(m.buf[4:8]) & 0xffff
	binary.NativeEndian.PutUint32(m.buf[4:8], uint32(len(m.buf))<<16|opcode)
	return m.buf
}
