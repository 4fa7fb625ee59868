// Package surface owns the two shared-memory frame buffers of the overlay
// and their hand-off to the display server.
//
// A buffer is either free (the client may write it) or in flight (the
// compositor may read it at any time). Commit moves a buffer to in flight,
// Release moves it back. Acquire only ever hands out free buffers.
package surface

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"screen-region-select/src/geom"
	"screen-region-select/src/render"
)

// BufferCount is the number of frame buffers per surface.
const BufferCount = 2

var (
	ErrNoFreeBuffer = errors.New("no free frame buffer")
	ErrInFlight     = errors.New("frame buffer is in flight")
	ErrBadIndex     = errors.New("frame buffer index out of range")
)

// Display is the display-server side of the overlay surface.
type Display interface {
	// AllocateBuffers creates BufferCount presentable buffers of the given
	// geometry and returns the pixel memory of each, in index order.
	AllocateBuffers(width, height, stride int) ([][]byte, error)
	// FreeBuffers destroys the buffers created by AllocateBuffers.
	FreeBuffers() error
	Attach(index int) error
	DamageBuffer(r geom.Rect) error
	// RequestFrame asks for a frame-ready notification after the next commit.
	RequestFrame() error
	Commit() error
}

// FrameBuffer is one BGRA pixel buffer plus its ownership state.
type FrameBuffer struct {
	render.Canvas

	inFlight bool
	painted  bool
	content  *geom.Rect
}

// InFlight reports whether the compositor owns the buffer.
func (b *FrameBuffer) InFlight() bool { return b.inFlight }

// Content returns the selection the pixels currently show. painted is
// false while the buffer has never held a complete frame.
func (b *FrameBuffer) Content() (sel *geom.Rect, painted bool) {
	return b.content, b.painted
}

// MarkPainted records that the buffer now shows sel everywhere.
func (b *FrameBuffer) MarkPainted(sel *geom.Rect) {
	b.painted = true
	b.content = clone(sel)
}

// Manager is the double-buffered overlay surface.
type Manager struct {
	display Display
	width   int
	height  int
	stride  int
	buffers [BufferCount]FrameBuffer

	commits int
	last    int
	shown   *geom.Rect
}

// New allocates both buffers for a width x height surface. An error here is
// fatal: no frame can be produced without buffers.
func New(display Display, width, height int) (*Manager, error) {
	m := &Manager{display: display, last: -1}
	if err := m.allocate(width, height); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) allocate(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	stride := width * render.BytesPerPixel
	mem, err := m.display.AllocateBuffers(width, height, stride)
	if err != nil {
		return fmt.Errorf("allocate frame buffers: %w", err)
	}
	if len(mem) != BufferCount {
		return fmt.Errorf("allocate frame buffers: got %d buffers, want %d", len(mem), BufferCount)
	}

	for i := range m.buffers {
		canvas, err := render.NewCanvas(mem[i], width, height, stride)
		if err != nil {
			return fmt.Errorf("frame buffer %d: %w", i, err)
		}
		m.buffers[i] = FrameBuffer{Canvas: canvas}
	}
	m.width, m.height, m.stride = width, height, stride
	m.commits = 0
	m.last = -1
	m.shown = nil

	log.Debug().
		Int("width", width).
		Int("height", height).
		Str("per_buffer", humanize.IBytes(uint64(stride*height))).
		Msg("frame buffers allocated")
	return nil
}

// Size returns the surface size in pixels.
func (m *Manager) Size() (width, height int) { return m.width, m.height }

// Buffer returns the buffer at index i.
func (m *Manager) Buffer(i int) (*FrameBuffer, error) {
	if i < 0 || i >= BufferCount {
		return nil, ErrBadIndex
	}
	return &m.buffers[i], nil
}

// Acquire returns the index of a free buffer. The most recently committed
// buffer is preferred when it is free again, since it already matches the
// screen.
func (m *Manager) Acquire() (int, error) {
	if m.last >= 0 && !m.buffers[m.last].inFlight {
		return m.last, nil
	}
	for i := range m.buffers {
		if !m.buffers[i].inFlight {
			return i, nil
		}
	}
	return -1, ErrNoFreeBuffer
}

// Commit presents buffer index. Damage covers dirty, or the whole surface
// on the first commit. The buffer is in flight afterwards.
func (m *Manager) Commit(index int, dirty geom.Rect) error {
	if index < 0 || index >= BufferCount {
		return ErrBadIndex
	}
	buf := &m.buffers[index]
	if buf.inFlight {
		return fmt.Errorf("commit buffer %d: %w", index, ErrInFlight)
	}

	damage := dirty.Intersect(geom.Bounds(m.width, m.height))
	if m.commits == 0 {
		damage = geom.Bounds(m.width, m.height)
	}

	if err := m.display.Attach(index); err != nil {
		return fmt.Errorf("attach buffer %d: %w", index, err)
	}
	if !damage.Empty() {
		if err := m.display.DamageBuffer(damage); err != nil {
			return fmt.Errorf("damage buffer %d: %w", index, err)
		}
	}
	if err := m.display.RequestFrame(); err != nil {
		return fmt.Errorf("request frame: %w", err)
	}
	if err := m.display.Commit(); err != nil {
		return fmt.Errorf("commit buffer %d: %w", index, err)
	}

	buf.inFlight = true
	m.commits++
	m.last = index
	m.shown = clone(buf.content)

	log.Trace().Int("buffer", index).Stringer("damage", damage).Msg("committed")
	return nil
}

// Release marks buffer index free again. Releases for a free buffer or an
// unknown index are ignored; it reports whether anything changed.
func (m *Manager) Release(index int) bool {
	if index < 0 || index >= BufferCount {
		log.Debug().Int("buffer", index).Msg("release for unknown buffer ignored")
		return false
	}
	if !m.buffers[index].inFlight {
		log.Debug().Int("buffer", index).Msg("release for free buffer ignored")
		return false
	}
	m.buffers[index].inFlight = false
	return true
}

// Shown returns the selection visible on screen. committed is false until
// the first frame has been presented.
func (m *Manager) Shown() (sel *geom.Rect, committed bool) {
	return m.shown, m.commits > 0
}

// Commits returns the number of frames presented so far.
func (m *Manager) Commits() int { return m.commits }

// Resize replaces both buffers with buffers of the new size. The next
// commit repaints and damages the whole surface.
func (m *Manager) Resize(width, height int) error {
	if width == m.width && height == m.height {
		return nil
	}
	if err := m.display.FreeBuffers(); err != nil {
		return fmt.Errorf("free frame buffers: %w", err)
	}
	return m.allocate(width, height)
}

// Close destroys the buffers. The Manager must not be used afterwards.
func (m *Manager) Close() error {
	m.buffers = [BufferCount]FrameBuffer{}
	return m.display.FreeBuffers()
}

func clone(r *geom.Rect) *geom.Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
