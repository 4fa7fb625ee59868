// Package selection models one click-and-drag selection session.
//
// The machine starts Idle, moves to Selecting on the primary button press and
// ends either Finished (button released) or Cancelled. Terminal states are
// immutable: every later call is ignored.
package selection

import "screen-region-select/src/geom"

// Kind identifies the variant held by a State.
type Kind int

const (
	Idle Kind = iota
	Selecting
	Finished
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Start and Current are meaningful only
// while Selecting, Rect only once Finished.
type State struct {
	Kind    Kind
	Start   geom.Point
	Current geom.Point
	Rect    geom.Rect
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s.Kind == Finished || s.Kind == Cancelled
}

// Machine is the selection state machine. The zero value is Idle and ready
// to use. It is not safe for concurrent use; the event loop owns it.
type Machine struct {
	state State
}

// New returns a machine in the Idle state.
func New() *Machine {
	return &Machine{}
}

// State returns the current snapshot.
func (m *Machine) State() State { return m.state }

// Terminal reports whether the session has ended.
func (m *Machine) Terminal() bool { return m.state.Terminal() }

// Press handles the primary button going down at p.
// It returns true when the visible selection changed.
func (m *Machine) Press(p geom.Point) bool {
	if m.state.Kind != Idle {
		return false
	}
	m.state = State{Kind: Selecting, Start: p, Current: p}
	return true
}

// Motion handles pointer movement to p. Only a Selecting machine reacts,
// and only when p differs from the current corner.
func (m *Machine) Motion(p geom.Point) bool {
	if m.state.Kind != Selecting || m.state.Current == p {
		return false
	}
	m.state.Current = p
	return true
}

// Release handles the primary button going up at p and finishes the
// session. The selection is final; no redraw is requested for it.
func (m *Machine) Release(p geom.Point) bool {
	if m.state.Kind != Selecting {
		return false
	}
	m.state = State{Kind: Finished, Rect: geom.Normalize(m.state.Start, p)}
	return false
}

// Cancel ends the session without a result. It returns true if the call
// caused the transition.
func (m *Machine) Cancel() bool {
	if m.state.Terminal() {
		return false
	}
	m.state = State{Kind: Cancelled}
	return true
}

// Result returns the selected rectangle once Finished.
func (m *Machine) Result() (geom.Rect, bool) {
	if m.state.Kind != Finished {
		return geom.Rect{}, false
	}
	return m.state.Rect, true
}

// Visible returns the rectangle that should currently be drawn, or nil when
// nothing is being selected.
func (m *Machine) Visible() *geom.Rect {
	if m.state.Kind != Selecting {
		return nil
	}
	r := geom.Normalize(m.state.Start, m.state.Current)
	return &r
}
