package eventloop

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-region-select/src/geom"
	"screen-region-select/src/render"
	"screen-region-select/src/selection"
)

type fakeDisplay struct {
	allocErr error
	mem      [][]byte
	attached int
	commits  int
	frees    int
	damage   []geom.Rect
}

func (d *fakeDisplay) AllocateBuffers(width, height, stride int) ([][]byte, error) {
	if d.allocErr != nil {
		return nil, d.allocErr
	}
	d.mem = [][]byte{make([]byte, stride*height), make([]byte, stride*height)}
	return d.mem, nil
}

func (d *fakeDisplay) FreeBuffers() error { d.frees++; return nil }

func (d *fakeDisplay) Attach(index int) error { d.attached = index; return nil }

func (d *fakeDisplay) DamageBuffer(r geom.Rect) error {
	d.damage = append(d.damage, r)
	return nil
}

func (d *fakeDisplay) RequestFrame() error { return nil }

func (d *fakeDisplay) Commit() error { d.commits++; return nil }

// scriptSource replays batches of events. Events of one batch are all
// buffered at once, like a burst read from the socket. seen records the
// number of commits when each batch starts.
type scriptSource struct {
	display *fakeDisplay
	batches [][]Event
	cur     []Event
	seen    []int
}

func (s *scriptSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if len(s.cur) == 0 {
		if len(s.batches) == 0 {
			return Event{}, io.EOF
		}
		s.seen = append(s.seen, s.display.commits)
		s.cur, s.batches = s.batches[0], s.batches[1:]
	}
	ev := s.cur[0]
	s.cur = s.cur[1:]
	return ev, nil
}

func (s *scriptSource) Buffered() int { return len(s.cur) }

func ready(w, h int) Event { return Event{Kind: SurfaceReady, Width: w, Height: h} }
func frame() Event { return Event{Kind: FrameReady} }
func release(i int) Event { return Event{Kind: BufferRelease, Buffer: i} }
func move(x, y int) Event { return Event{Kind: PointerMotion, Pos: geom.Point{X: x, Y: y}} }
func escape() Event { return Event{Kind: Key, Code: KeyEscape, Pressed: true} }
func press(x, y int) Event { return button(x, y, true) }
func buttonUp(x, y int) Event { return button(x, y, false) }

func button(x, y int, pressed bool) Event {
	return Event{Kind: PointerButton, Code: ButtonLeft, Pressed: pressed, Pos: geom.Point{X: x, Y: y}}
}

func run(t *testing.T, batches ...[]Event) (selection.State, *scriptSource, *Loop, error) {
	t.Helper()
	d := &fakeDisplay{}
	src := &scriptSource{display: d, batches: batches}
	l := New(src, d, render.DefaultStyle())
	st, err := l.Run(context.Background())
	return st, src, l, err
}

func TestRunFinishesWithNormalizedRect(t *testing.T) {
	st, _, _, err := run(t,
		[]Event{ready(800, 600)},
		[]Event{press(100, 100)},
		[]Event{move(100, 100)},
		[]Event{move(300, 400)},
		[]Event{buttonUp(300, 400)},
	)
	require.NoError(t, err)
	assert.Equal(t, selection.Finished, st.Kind)

	r, ok := Rect(st)
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 300}, r)
}

func TestRunCancelProducesNoRect(t *testing.T) {
	st, _, l, err := run(t,
		[]Event{ready(800, 600)},
		[]Event{press(50, 50)},
		[]Event{escape()},
		[]Event{buttonUp(70, 70)},
	)
	require.NoError(t, err)
	assert.Equal(t, selection.Cancelled, st.Kind)
	_, ok := Rect(st)
	assert.False(t, ok)
	assert.Nil(t, l.Session().Surface, "buffers freed on exit")
}

func TestRunPacesDrawsOnFrameReady(t *testing.T) {
	st, src, l, err := run(t,
		// first frame is drawn at once
		[]Event{ready(200, 100)},
		// pending, but no frame-ready yet
		[]Event{press(10, 10)},
		[]Event{frame()},
		// both buffers are in flight
		[]Event{move(50, 40), frame()},
		[]Event{release(0)},
		[]Event{release(1), move(120, 80), frame()},
		[]Event{release(0), move(90, 90), move(30, 20)},
		[]Event{frame()},
		// nothing changed
		[]Event{move(30, 20), frame()},
		[]Event{escape()},
	)
	require.NoError(t, err)
	assert.Equal(t, selection.Cancelled, st.Kind)
	assert.Equal(t, []int{0, 1, 1, 2, 2, 3, 4, 4, 5, 5}, src.seen)
	assert.Equal(t, 5, l.Session().Draws())

	d := src.display
	assert.Equal(t, geom.Bounds(200, 100), d.damage[0], "first commit damages everything")
	for _, r := range d.damage[2:] {
		assert.NotEqual(t, geom.Bounds(200, 100), r, "once both buffers are painted frames are partial")
	}

	// buffer 0 missed two frames; it must still show exactly the final
	// selection everywhere
	require.Equal(t, 0, d.attached)
	ref, err := render.NewCanvas(make([]byte, 200*100*4), 200, 100, 200*4)
	require.NoError(t, err)
	sel := geom.Rect{X: 10, Y: 10, Width: 20, Height: 10}
	render.Draw(ref, ref.Bounds(), render.DefaultStyle(), &sel)
	assert.Equal(t, ref.Pix, d.mem[0])
}

func TestRunCompletesDueRedrawOnCancel(t *testing.T) {
	st, src, l, err := run(t,
		[]Event{ready(200, 100)},
		[]Event{press(10, 10)},
		[]Event{frame()},
		// redraw due in the same burst as Escape
		[]Event{release(0), frame(), move(50, 40), escape(), move(60, 60)},
	)
	require.NoError(t, err)
	assert.Equal(t, selection.Cancelled, st.Kind)
	assert.Equal(t, []int{0, 1, 1, 2}, src.seen)
	assert.Equal(t, 3, l.Session().Draws())
	assert.Equal(t, 3, src.display.commits)
}

func TestRunDrawsNothingAfterCancelWithoutDueRedraw(t *testing.T) {
	_, src, l, err := run(t,
		[]Event{ready(200, 100)},
		[]Event{press(10, 10), escape()},
	)
	require.NoError(t, err)
	// the first frame is still in flight, so the redraw is not due
	assert.Equal(t, 1, l.Session().Draws())
	assert.Equal(t, 1, src.display.commits)
}

func TestRunIgnoresReleaseOfFreeBuffer(t *testing.T) {
	st, src, _, err := run(t,
		[]Event{ready(100, 100)},
		[]Event{release(1), release(1), release(7)},
		[]Event{press(5, 5), frame()},
		[]Event{buttonUp(20, 30)},
	)
	require.NoError(t, err)
	assert.Equal(t, selection.Finished, st.Kind)
	assert.Equal(t, []int{0, 1, 1, 2}, src.seen)
}

func TestRunSurfaceClosedCancels(t *testing.T) {
	st, _, _, err := run(t,
		[]Event{ready(100, 100)},
		[]Event{press(5, 5)},
		[]Event{{Kind: SurfaceClosed}},
	)
	assert.ErrorIs(t, err, ErrSurfaceClosed)
	assert.Equal(t, selection.Cancelled, st.Kind)
}

func TestRunAllocationFailureIsFatal(t *testing.T) {
	d := &fakeDisplay{allocErr: errors.New("out of memory")}
	src := &scriptSource{display: d, batches: [][]Event{{ready(100, 100)}, {press(1, 1)}}}
	_, err := New(src, d, render.DefaultStyle()).Run(context.Background())
	assert.ErrorContains(t, err, "out of memory")
	assert.Zero(t, d.commits)
}

func TestRunReturnsSourceErrorAndFreesBuffers(t *testing.T) {
	st, src, _, err := run(t, []Event{ready(100, 100)})
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, selection.Idle, st.Kind)
	assert.Equal(t, 1, src.display.frees)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d := &fakeDisplay{}
	src := &scriptSource{display: d, batches: [][]Event{{ready(100, 100)}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(src, d, render.DefaultStyle()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReconfigureRepaintsEverything(t *testing.T) {
	_, src, _, err := run(t,
		[]Event{ready(200, 100)},
		[]Event{ready(300, 200)},
		[]Event{frame()},
	)
	assert.ErrorIs(t, err, io.EOF)
	d := src.display
	assert.Equal(t, []int{0, 1, 1}, src.seen)
	require.Len(t, d.damage, 2)
	assert.Equal(t, geom.Bounds(300, 200), d.damage[1])
	assert.Len(t, d.mem[0], 300*200*4)
}

func TestRunInputBeforeConfigure(t *testing.T) {
	st, _, _, err := run(t,
		[]Event{press(5, 5), move(10, 10)},
		[]Event{escape()},
	)
	require.NoError(t, err)
	assert.Equal(t, selection.Cancelled, st.Kind)
}
