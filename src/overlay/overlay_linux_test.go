//go:build linux

package overlay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-region-select/src/eventloop"
	"screen-region-select/src/geom"
	"screen-region-select/src/render"
)

type stubDisplay struct{}

func (stubDisplay) AllocateBuffers(w, h, stride int) ([][]byte, error) {
	return [][]byte{make([]byte, stride*h), make([]byte, stride*h)}, nil
}
func (stubDisplay) FreeBuffers() error { return nil }
func (stubDisplay) Attach(int) error { return nil }
func (stubDisplay) DamageBuffer(geom.Rect) error { return nil }
func (stubDisplay) RequestFrame() error { return nil }
func (stubDisplay) Commit() error { return nil }

type listSource struct{ events []eventloop.Event }

func (s *listSource) Next(context.Context) (eventloop.Event, error) {
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *listSource) Buffered() int { return len(s.events) }

func selectWith(t *testing.T, events ...eventloop.Event) (geom.Rect, bool, error) {
	t.Helper()
	src := &listSource{events: append([]eventloop.Event{{Kind: eventloop.SurfaceReady, Width: 640, Height: 480}}, events...)}
	return run(context.Background(), eventloop.New(src, stubDisplay{}, render.DefaultStyle()))
}

func TestRunFinished(t *testing.T) {
	r, cancelled, err := selectWith(t,
		eventloop.Event{Kind: eventloop.PointerButton, Code: eventloop.ButtonLeft, Pressed: true, Pos: geom.Point{X: 40, Y: 30}},
		eventloop.Event{Kind: eventloop.PointerButton, Code: eventloop.ButtonLeft, Pos: geom.Point{X: 10, Y: 20}},
	)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, Width: 30, Height: 10}, r)
}

func TestRunCancelled(t *testing.T) {
	_, cancelled, err := selectWith(t, eventloop.Event{Kind: eventloop.Key, Code: eventloop.KeyEscape, Pressed: true})
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestRunClosedIsCancel(t *testing.T) {
	_, cancelled, err := selectWith(t, eventloop.Event{Kind: eventloop.SurfaceClosed})
	require.NoError(t, err)
	assert.True(t, cancelled)
}
