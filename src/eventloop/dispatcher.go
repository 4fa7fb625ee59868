package eventloop

import (
	"github.com/rs/zerolog/log"

	"screen-region-select/src/geom"
	"screen-region-select/src/selection"
)

// Dispatcher turns input events into selection transitions and redraw
// requests.
type Dispatcher struct {
	machine   *selection.Machine
	scheduler *Scheduler
	bounds    geom.Rect
}

// NewDispatcher binds a dispatcher to machine and scheduler. Pointer input
// is dropped until Resize gives it a surface size.
func NewDispatcher(machine *selection.Machine, scheduler *Scheduler) *Dispatcher {
	return &Dispatcher{machine: machine, scheduler: scheduler}
}

// Resize sets the surface size pointer coordinates are clamped to.
func (d *Dispatcher) Resize(width, height int) {
	d.bounds = geom.Bounds(width, height)
}

// Dispatch applies one input event. Non-input kinds and events arriving in
// a terminal state are ignored. It reports whether the selection changed.
func (d *Dispatcher) Dispatch(ev Event) bool {
	if d.machine.Terminal() {
		return false
	}

	var changed bool
	switch ev.Kind {
	case PointerMotion:
		p, ok := d.clamp(ev.Pos)
		if !ok {
			return false
		}
		changed = d.machine.Motion(p)
	case PointerButton:
		if ev.Code != ButtonLeft {
			return false
		}
		p, ok := d.clamp(ev.Pos)
		if !ok {
			return false
		}
		if ev.Pressed {
			changed = d.machine.Press(p)
		} else {
			d.machine.Release(p)
		}
	case Key:
		if ev.Pressed && ev.Code == KeyEscape {
			d.machine.Cancel()
		}
	default:
		return false
	}

	if changed {
		d.scheduler.Request()
	}
	return changed
}

func (d *Dispatcher) clamp(p geom.Point) (geom.Point, bool) {
	if d.bounds.Empty() {
		log.Debug().Int("x", p.X).Int("y", p.Y).Msg("pointer input before configure dropped")
		return geom.Point{}, false
	}
	return d.bounds.Clamp(p), true
}
