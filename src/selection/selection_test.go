package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-region-select/src/geom"
)

func TestPressStartsSelecting(t *testing.T) {
	m := New()
	require.Equal(t, Idle, m.State().Kind)

	changed := m.Press(geom.Point{X: 10, Y: 20})
	assert.True(t, changed)
	assert.Equal(t, State{Kind: Selecting, Start: geom.Point{X: 10, Y: 20}, Current: geom.Point{X: 10, Y: 20}}, m.State())
	require.NotNil(t, m.Visible())
	assert.Equal(t, geom.Rect{X: 10, Y: 20}, *m.Visible())
}

func TestMotionOnlyChangesWhenMoved(t *testing.T) {
	m := New()
	assert.False(t, m.Motion(geom.Point{X: 5, Y: 5}), "motion while idle is ignored")
	assert.Equal(t, Idle, m.State().Kind)

	m.Press(geom.Point{X: 100, Y: 100})
	assert.False(t, m.Motion(geom.Point{X: 100, Y: 100}), "same position must not schedule a redraw")
	assert.True(t, m.Motion(geom.Point{X: 300, Y: 400}))
	assert.False(t, m.Motion(geom.Point{X: 300, Y: 400}))
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 300}, *m.Visible())
}

func TestReleaseFinishesWithNormalizedRect(t *testing.T) {
	p1 := geom.Point{X: 400, Y: 50}
	p3 := geom.Point{X: 120, Y: 310}
	for _, p2 := range []geom.Point{{X: 0, Y: 0}, {X: 999, Y: 999}, p1, p3} {
		m := New()
		m.Press(p1)
		m.Motion(p2)
		m.Release(p3)

		got, ok := m.Result()
		require.True(t, ok)
		assert.Equal(t, geom.Normalize(p1, p3), got, "intermediate motion %v must not matter", p2)
		assert.Equal(t, Finished, m.State().Kind)
		assert.Nil(t, m.Visible())
	}
}

func TestReleaseWithoutPressIsIgnored(t *testing.T) {
	m := New()
	m.Release(geom.Point{X: 1, Y: 1})
	assert.Equal(t, Idle, m.State().Kind)
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestCancel(t *testing.T) {
	t.Run("from idle", func(t *testing.T) {
		m := New()
		assert.True(t, m.Cancel())
		assert.Equal(t, Cancelled, m.State().Kind)
	})
	t.Run("while selecting", func(t *testing.T) {
		m := New()
		m.Press(geom.Point{X: 50, Y: 50})
		assert.True(t, m.Cancel())
		assert.True(t, m.Terminal())
		_, ok := m.Result()
		assert.False(t, ok)
	})
}

func TestTerminalStatesIgnoreEvents(t *testing.T) {
	finished := New()
	finished.Press(geom.Point{X: 1, Y: 2})
	finished.Release(geom.Point{X: 3, Y: 4})

	cancelled := New()
	cancelled.Cancel()

	for name, m := range map[string]*Machine{"finished": finished, "cancelled": cancelled} {
		t.Run(name, func(t *testing.T) {
			before := m.State()
			assert.False(t, m.Press(geom.Point{X: 9, Y: 9}))
			assert.False(t, m.Motion(geom.Point{X: 10, Y: 10}))
			assert.False(t, m.Release(geom.Point{X: 11, Y: 11}))
			assert.False(t, m.Cancel())
			assert.Equal(t, before, m.State())
		})
	}
}

func TestSecondPressWhileSelectingIsIgnored(t *testing.T) {
	m := New()
	m.Press(geom.Point{X: 1, Y: 1})
	assert.False(t, m.Press(geom.Point{X: 50, Y: 50}))
	assert.Equal(t, geom.Point{X: 1, Y: 1}, m.State().Start)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "selecting", Selecting.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
