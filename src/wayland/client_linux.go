//go:build linux

// Package wayland connects the selection loop to a wlroots-style Wayland
// compositor: a full-screen layer-shell overlay backed by shared-memory
// buffers, with pointer and keyboard input from the first seat.
package wayland

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"screen-region-select/src/cursor"
	"screen-region-select/src/eventloop"
	"screen-region-select/src/geom"
	"screen-region-select/src/protocol/layershell"
	"screen-region-select/src/shm"
	"screen-region-select/src/surface"
)

// Registry interface names of the core globals.
const (
	compositorInterface = "wl_compositor"
	shmInterface        = "wl_shm"
	seatInterface       = "wl_seat"
)

// Options configures the overlay.
type Options struct {
	// Namespace is the layer-shell namespace compositors match rules on.
	Namespace  string
	CursorSize int
}

// Client is one connection with one overlay surface. It implements
// eventloop.Source and surface.Display. Not safe for concurrent use.
type Client struct {
	display  *client.Display
	registry *client.Registry
	wctx     *client.Context

	compositor *client.Compositor
	shm        *client.Shm
	seat       *client.Seat
	layerShell *layershell.ZwlrLayerShellV1
	pointer    *client.Pointer
	keyboard   *client.Keyboard

	surface      *client.Surface
	layerSurface *layershell.ZwlrLayerSurfaceV1

	pool     *shm.Pool
	wlPool   *client.ShmPool
	buffers  []*frameBuffer
	retired  []*frameBuffer
	attached int

	cursor        cursor.Asset
	cursorPool    *shm.Pool
	cursorWlPool  *client.ShmPool
	cursorBuffer  *client.Buffer
	cursorSurface *client.Surface

	queue      []eventloop.Event
	pointerPos geom.Point
}

// bufferProxy is the part of a wl_buffer the bookkeeping needs.
type bufferProxy interface {
	Destroy() error
}

// frameBuffer is one wl_buffer of the current set. A buffer is busy from
// the commit that attaches it until the compositor releases it; a busy
// buffer freed by a resize is retired and destroyed on that release, so
// the release never reaches an unregistered proxy.
type frameBuffer struct {
	wl      *client.Buffer
	proxy   bufferProxy
	index   int
	busy    bool
	retired bool
}

var (
	_ eventloop.Source = (*Client)(nil)
	_ surface.Display  = (*Client)(nil)
)

// Open connects to the compositor named by WAYLAND_DISPLAY and maps the
// overlay. Everything acquired so far is released if a step fails.
func Open(opts Options) (*Client, error) {
	c := &Client{attached: -1}
	if err := c.open(opts); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) open(opts Options) error {
	if err := c.connect(); err != nil {
		return err
	}

	registry, err := c.display.GetRegistry()
	if err != nil {
		return fmt.Errorf("get registry: %w", err)
	}
	c.registry = registry
	registry.SetGlobalHandler(c.handleGlobal)

	if err := c.roundtrip(); err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	if err := c.checkGlobals(); err != nil {
		return err
	}

	if err := c.createOverlay(opts.Namespace); err != nil {
		return err
	}

	if err := c.createCursor(opts.CursorSize); err != nil {
		log.Warn().Err(err).Msg("cursor unavailable, using compositor default")
	}

	// seat capabilities and the first configure
	if err := c.roundtrip(); err != nil {
		return fmt.Errorf("roundtrip after surface: %w", err)
	}
	return nil
}

func (c *Client) connect() error {
	display, err := client.Connect("")
	if err != nil {
		return fmt.Errorf("connect to wayland display: %w", err)
	}
	c.display = display
	c.wctx = display.Context()
	return nil
}

func (c *Client) handleGlobal(e client.RegistryGlobalEvent) {
	var err error
	switch e.Interface {
	case compositorInterface:
		comp := client.NewCompositor(c.wctx)
		if err = c.registry.Bind(e.Name, e.Interface, min(e.Version, 4), comp); err == nil {
			c.compositor = comp
		}
	case shmInterface:
		s := client.NewShm(c.wctx)
		if err = c.registry.Bind(e.Name, e.Interface, 1, s); err == nil {
			c.shm = s
		}
	case seatInterface:
		if c.seat != nil {
			return
		}
		seat := client.NewSeat(c.wctx)
		if err = c.registry.Bind(e.Name, e.Interface, min(e.Version, 5), seat); err == nil {
			c.seat = seat
			seat.SetCapabilitiesHandler(c.handleCapabilities)
		}
	case layershell.ZwlrLayerShellV1InterfaceName:
		ls := layershell.NewZwlrLayerShellV1(c.wctx)
		if err = c.registry.Bind(e.Name, e.Interface, min(e.Version, 4), ls); err == nil {
			c.layerShell = ls
		}
	default:
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("interface", e.Interface).Msg("bind global")
	}
}

func (c *Client) checkGlobals() error {
	var missing []string
	if c.compositor == nil {
		missing = append(missing, compositorInterface)
	}
	if c.shm == nil {
		missing = append(missing, shmInterface)
	}
	if c.layerShell == nil {
		missing = append(missing, layershell.ZwlrLayerShellV1InterfaceName)
	}
	if c.seat == nil {
		missing = append(missing, seatInterface)
	}
	if len(missing) > 0 {
		return fmt.Errorf("compositor does not provide %v", missing)
	}
	return nil
}

func (c *Client) createOverlay(namespace string) error {
	s, err := c.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	c.surface = s

	ls, err := c.layerShell.GetLayerSurface(s, nil, uint32(layershell.ZwlrLayerShellV1LayerOverlay), namespace)
	if err != nil {
		return fmt.Errorf("get layer surface: %w", err)
	}
	c.layerSurface = ls

	if err := ls.SetAnchor(uint32(layershell.ZwlrLayerSurfaceV1AnchorAll)); err != nil {
		return fmt.Errorf("set anchor: %w", err)
	}
	if err := ls.SetExclusiveZone(-1); err != nil {
		return fmt.Errorf("set exclusive zone: %w", err)
	}
	if err := ls.SetKeyboardInteractivity(uint32(layershell.ZwlrLayerSurfaceV1KeyboardInteractivityExclusive)); err != nil {
		return fmt.Errorf("set keyboard interactivity: %w", err)
	}

	ls.SetConfigureHandler(func(e layershell.ZwlrLayerSurfaceV1ConfigureEvent) {
		if err := ls.AckConfigure(e.Serial); err != nil {
			log.Error().Err(err).Msg("ack configure")
			return
		}
		c.push(eventloop.Event{Kind: eventloop.SurfaceReady, Width: int(e.Width), Height: int(e.Height)})
	})
	ls.SetClosedHandler(func(layershell.ZwlrLayerSurfaceV1ClosedEvent) {
		c.push(eventloop.Event{Kind: eventloop.SurfaceClosed})
	})

	if err := s.Commit(); err != nil {
		return fmt.Errorf("surface commit: %w", err)
	}
	return nil
}

func (c *Client) handleCapabilities(e client.SeatCapabilitiesEvent) {
	if e.Capabilities&uint32(client.SeatCapabilityPointer) != 0 && c.pointer == nil {
		p, err := c.seat.GetPointer()
		if err != nil {
			log.Warn().Err(err).Msg("get pointer")
		} else {
			c.pointer = p
			c.setupPointer(p)
		}
	}
	if e.Capabilities&uint32(client.SeatCapabilityKeyboard) != 0 && c.keyboard == nil {
		k, err := c.seat.GetKeyboard()
		if err != nil {
			log.Warn().Err(err).Msg("get keyboard")
		} else {
			c.keyboard = k
			c.setupKeyboard(k)
		}
	}
}

func (c *Client) setupPointer(p *client.Pointer) {
	p.SetEnterHandler(func(e client.PointerEnterEvent) {
		if c.cursorSurface != nil {
			hs := c.cursor.Hotspot
			if err := p.SetCursor(e.Serial, c.cursorSurface, int32(hs.X), int32(hs.Y)); err != nil {
				log.Debug().Err(err).Msg("set cursor")
			}
		}
		c.pointerMoved(e.SurfaceX, e.SurfaceY)
	})
	p.SetMotionHandler(func(e client.PointerMotionEvent) {
		c.pointerMoved(e.SurfaceX, e.SurfaceY)
	})
	p.SetButtonHandler(func(e client.PointerButtonEvent) {
		c.pointerButton(e.Button, e.State)
	})
}

// pointerMoved converts surface-local fixed-point coordinates to pixels.
func (c *Client) pointerMoved(x, y float64) {
	c.pointerPos = geom.Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
	c.push(eventloop.Event{Kind: eventloop.PointerMotion, Pos: c.pointerPos})
}

// pointerButton reports a button at the last known pointer position;
// wl_pointer.button carries no coordinates.
func (c *Client) pointerButton(button, state uint32) {
	c.push(eventloop.Event{
		Kind:    eventloop.PointerButton,
		Code:    button,
		Pressed: state == uint32(client.PointerButtonStatePressed),
		Pos:     c.pointerPos,
	})
}

func (c *Client) key(key, state uint32) {
	c.push(eventloop.Event{
		Kind:    eventloop.Key,
		Code:    key,
		Pressed: state == uint32(client.KeyboardKeyStatePressed),
	})
}

func (c *Client) setupKeyboard(k *client.Keyboard) {
	k.SetKeymapHandler(func(e client.KeyboardKeymapEvent) {
		// raw evdev codes are enough; the keymap is not needed
		if err := unix.Close(e.Fd); err != nil {
			log.Debug().Err(err).Msg("close keymap fd")
		}
	})
	k.SetKeyHandler(func(e client.KeyboardKeyEvent) {
		c.key(e.Key, e.State)
	})
}

func (c *Client) createCursor(size int) error {
	a, err := cursor.Crosshair(size)
	if err != nil {
		return err
	}
	c.cursor = a

	pool, err := shm.Create("region-select-cursor", len(a.Pixels))
	if err != nil {
		return err
	}
	c.cursorPool = pool
	copy(pool.Data(), a.Pixels)

	wlPool, err := c.shm.CreatePool(pool.Fd(), int32(pool.Size()))
	if err != nil {
		return fmt.Errorf("create cursor pool: %w", err)
	}
	c.cursorWlPool = wlPool

	buf, err := wlPool.CreateBuffer(0, int32(a.Width), int32(a.Height), int32(a.Stride()), uint32(client.ShmFormatArgb8888))
	if err != nil {
		return fmt.Errorf("create cursor buffer: %w", err)
	}
	c.cursorBuffer = buf

	s, err := c.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("create cursor surface: %w", err)
	}
	c.cursorSurface = s

	if err := s.Attach(buf, 0, 0); err != nil {
		return fmt.Errorf("attach cursor: %w", err)
	}
	if err := s.DamageBuffer(0, 0, int32(a.Width), int32(a.Height)); err != nil {
		return fmt.Errorf("damage cursor: %w", err)
	}
	if err := s.Commit(); err != nil {
		return fmt.Errorf("commit cursor: %w", err)
	}
	return nil
}

func (c *Client) roundtrip() error {
	cb, err := c.display.Sync()
	if err != nil {
		return err
	}
	done := false
	c.onDone(cb, func() { done = true })
	for !done {
		if err := c.wctx.Dispatch(); err != nil {
			return err
		}
	}
	return nil
}

// onDone runs f when cb fires. A callback fires once, so it is
// unregistered first.
func (c *Client) onDone(cb *client.Callback, f func()) {
	cb.SetDoneHandler(func(client.CallbackDoneEvent) {
		c.wctx.Unregister(cb)
		f()
	})
}

func (c *Client) push(ev eventloop.Event) {
	c.queue = append(c.queue, ev)
}

// Next returns the next queued notification, reading from the socket
// until one is available. Cancelling ctx closes the connection to unblock
// the read.
func (c *Client) Next(ctx context.Context) (eventloop.Event, error) {
	if len(c.queue) == 0 {
		stop := context.AfterFunc(ctx, func() { _ = c.wctx.Close() })
		defer stop()
	}
	for len(c.queue) == 0 {
		if err := ctx.Err(); err != nil {
			return eventloop.Event{}, err
		}
		if err := c.wctx.Dispatch(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return eventloop.Event{}, ctxErr
			}
			return eventloop.Event{}, fmt.Errorf("dispatch: %w", err)
		}
	}
	ev := c.queue[0]
	c.queue = c.queue[1:]
	return ev, nil
}

// Buffered returns the number of notifications already decoded.
func (c *Client) Buffered() int { return len(c.queue) }

// AllocateBuffers creates one shared-memory pool holding every frame
// buffer back to back.
func (c *Client) AllocateBuffers(width, height, stride int) ([][]byte, error) {
	frame := stride * height
	pool, err := shm.Create("region-select", frame*surface.BufferCount)
	if err != nil {
		return nil, err
	}
	c.pool = pool

	wlPool, err := c.shm.CreatePool(pool.Fd(), int32(pool.Size()))
	if err != nil {
		_ = c.FreeBuffers()
		return nil, fmt.Errorf("create shm pool: %w", err)
	}
	c.wlPool = wlPool

	for i := range surface.BufferCount {
		wl, err := wlPool.CreateBuffer(int32(i*frame), int32(width), int32(height), int32(stride), uint32(client.ShmFormatArgb8888))
		if err != nil {
			_ = c.FreeBuffers()
			return nil, fmt.Errorf("create buffer %d: %w", i, err)
		}
		b := &frameBuffer{wl: wl, proxy: wl, index: i}
		wl.SetReleaseHandler(func(client.BufferReleaseEvent) { c.released(b) })
		c.buffers = append(c.buffers, b)
	}
	return splitFrames(pool.Data(), frame, surface.BufferCount), nil
}

// splitFrames cuts n back-to-back frames of frame bytes out of data.
func splitFrames(data []byte, frame, n int) [][]byte {
	mem := make([][]byte, n)
	for i := range mem {
		mem[i] = data[i*frame : (i+1)*frame : (i+1)*frame]
	}
	return mem
}

func (c *Client) released(b *frameBuffer) {
	if b.retired {
		c.destroyRetired(b)
		return
	}
	b.busy = false
	c.push(eventloop.Event{Kind: eventloop.BufferRelease, Buffer: b.index})
}

func (c *Client) destroyRetired(b *frameBuffer) {
	if err := b.proxy.Destroy(); err != nil {
		log.Debug().Err(err).Int("buffer", b.index).Msg("destroy retired buffer")
	}
	for i, r := range c.retired {
		if r == b {
			c.retired = append(c.retired[:i], c.retired[i+1:]...)
			break
		}
	}
}

// FreeBuffers drops the current buffer set, its pool and the mapping.
// Buffers still held by the compositor are destroyed once released.
func (c *Client) FreeBuffers() error {
	var errs []error
	for _, b := range c.buffers {
		if b.busy {
			b.retired = true
			c.retired = append(c.retired, b)
			continue
		}
		errs = append(errs, b.proxy.Destroy())
	}
	c.buffers = nil
	c.attached = -1
	if c.wlPool != nil {
		errs = append(errs, c.wlPool.Destroy())
		c.wlPool = nil
	}
	if c.pool != nil {
		errs = append(errs, c.pool.Close())
		c.pool = nil
	}
	return errors.Join(errs...)
}

func (c *Client) Attach(index int) error {
	if index < 0 || index >= len(c.buffers) {
		return surface.ErrBadIndex
	}
	if err := c.surface.Attach(c.buffers[index].wl, 0, 0); err != nil {
		return err
	}
	c.attached = index
	return nil
}

func (c *Client) DamageBuffer(r geom.Rect) error {
	return c.surface.DamageBuffer(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
}

func (c *Client) RequestFrame() error {
	cb, err := c.surface.Frame()
	if err != nil {
		return err
	}
	c.onDone(cb, func() {
		c.push(eventloop.Event{Kind: eventloop.FrameReady})
	})
	return nil
}

func (c *Client) Commit() error {
	if err := c.surface.Commit(); err != nil {
		return err
	}
	c.committed()
	return nil
}

// committed marks the attached buffer as held by the compositor.
func (c *Client) committed() {
	if c.attached >= 0 && c.attached < len(c.buffers) {
		c.buffers[c.attached].busy = true
	}
	c.attached = -1
}

// Close releases every protocol object and the connection. It is safe to
// call on a partially opened client.
func (c *Client) Close() {
	if err := c.FreeBuffers(); err != nil {
		log.Debug().Err(err).Msg("free buffers")
	}
	for _, b := range c.retired {
		_ = b.proxy.Destroy()
	}

	if c.cursorBuffer != nil {
		_ = c.cursorBuffer.Destroy()
	}
	if c.cursorWlPool != nil {
		_ = c.cursorWlPool.Destroy()
	}
	if c.cursorSurface != nil {
		_ = c.cursorSurface.Destroy()
	}
	if c.cursorPool != nil {
		_ = c.cursorPool.Close()
	}

	if c.layerSurface != nil {
		_ = c.layerSurface.Destroy()
	}
	if c.surface != nil {
		_ = c.surface.Destroy()
	}
	if c.pointer != nil {
		_ = c.pointer.Release()
	}
	if c.keyboard != nil {
		_ = c.keyboard.Release()
	}
	if c.layerShell != nil {
		_ = c.layerShell.Destroy()
	}
	if c.wctx != nil {
		_ = c.wctx.Close()
	}
	*c = Client{attached: -1}
}
