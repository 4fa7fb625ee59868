// Package eventloop is the single-threaded coordinator of a selection
// session: it pulls notifications from the display connection, feeds input
// to the selection machine and paces redraws on frame-ready notifications.
package eventloop

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"screen-region-select/src/damage"
	"screen-region-select/src/geom"
	"screen-region-select/src/render"
	"screen-region-select/src/selection"
	"screen-region-select/src/surface"
)

// Source delivers notifications from the display connection in order.
type Source interface {
	// Next blocks until a notification is available or ctx is done.
	Next(ctx context.Context) (Event, error)
	// Buffered returns how many notifications Next can return without
	// blocking.
	Buffered() int
}

// ErrSurfaceClosed is returned when the compositor takes the overlay away.
var ErrSurfaceClosed = errors.New("overlay surface closed by compositor")

// Session is all mutable state of one selection. It is owned by the loop
// and only touched from Run.
type Session struct {
	Surface    *surface.Manager
	Machine    *selection.Machine
	Tracker    *damage.Tracker
	Scheduler  *Scheduler
	Dispatcher *Dispatcher
	Style      render.Style

	draws int
}

// Draws returns the number of frames committed in this session.
func (s *Session) Draws() int { return s.draws }

// Loop runs one session against a display.
type Loop struct {
	source  Source
	display surface.Display
	session *Session
}

// New creates a loop. The surface buffers are allocated on the first
// SurfaceReady notification.
func New(source Source, display surface.Display, style render.Style) *Loop {
	machine := selection.New()
	scheduler := NewScheduler()
	return &Loop{
		source:  source,
		display: display,
		session: &Session{
			Machine:    machine,
			Scheduler:  scheduler,
			Dispatcher: NewDispatcher(machine, scheduler),
			Tracker:    damage.NewTracker(0, 0, style.BorderWidth),
			Style:      style,
		},
	}
}

// Session exposes the loop state, mainly for inspection after Run.
func (l *Loop) Session() *Session { return l.session }

// Run processes notifications until the selection reaches a terminal state,
// the surface is closed, or ctx is cancelled. The frame buffers are freed
// on every exit path.
func (l *Loop) Run(ctx context.Context) (selection.State, error) {
	s := l.session
	defer func() {
		if s.Surface == nil {
			return
		}
		if err := s.Surface.Close(); err != nil {
			log.Warn().Err(err).Msg("free frame buffers")
		}
		s.Surface = nil
	}()

	for {
		ev, err := l.source.Next(ctx)
		if err != nil {
			return s.Machine.State(), err
		}
		if err := l.step(s, ev); err != nil {
			return s.Machine.State(), err
		}
		if s.Machine.Terminal() {
			// a redraw already due completes as the last frame; none is
			// scheduled after this
			if err := l.flush(s); err != nil {
				return s.Machine.State(), err
			}
			st := s.Machine.State()
			log.Debug().Stringer("state", st.Kind).Int("draws", s.draws).Msg("session ended")
			return st, nil
		}
		if l.source.Buffered() == 0 {
			if err := l.flush(s); err != nil {
				return s.Machine.State(), err
			}
		}
	}
}

func (l *Loop) step(s *Session, ev Event) error {
	log.Trace().Stringer("event", ev).Msg("event")

	switch ev.Kind {
	case PointerMotion, PointerButton, Key:
		s.Dispatcher.Dispatch(ev)
	case BufferRelease:
		if s.Surface != nil {
			s.Surface.Release(ev.Buffer)
		}
	case FrameReady:
		s.Scheduler.FrameReady()
	case SurfaceReady:
		return l.configure(s, ev.Width, ev.Height)
	case SurfaceClosed:
		s.Machine.Cancel()
		return ErrSurfaceClosed
	default:
		log.Debug().Int("kind", int(ev.Kind)).Msg("unknown event ignored")
	}
	return nil
}

func (l *Loop) configure(s *Session, width, height int) error {
	if s.Surface == nil {
		m, err := surface.New(l.display, width, height)
		if err != nil {
			return fmt.Errorf("create overlay surface: %w", err)
		}
		s.Surface = m
	} else if err := s.Surface.Resize(width, height); err != nil {
		return fmt.Errorf("resize overlay surface: %w", err)
	}

	s.Tracker.Resize(width, height)
	s.Dispatcher.Resize(width, height)
	s.Scheduler.Request()
	return nil
}

// flush draws and commits one frame if a redraw is due. A frame is drawn
// into a free buffer only; with both buffers in flight the redraw stays
// pending until a release arrives.
func (l *Loop) flush(s *Session) error {
	if s.Surface == nil || !s.Scheduler.Due() {
		return nil
	}

	cur := s.Machine.Visible()
	shown, committed := s.Surface.Shown()

	screen := s.Tracker.Full()
	if committed {
		var changed bool
		screen, changed = s.Tracker.Compute(shown, cur)
		if !changed {
			s.Scheduler.Skip()
			return nil
		}
	}

	idx, err := s.Surface.Acquire()
	if errors.Is(err, surface.ErrNoFreeBuffer) {
		log.Trace().Msg("no free buffer, redraw deferred")
		return nil
	}
	if err != nil {
		return err
	}
	buf, err := s.Surface.Buffer(idx)
	if err != nil {
		return err
	}

	// The buffer may be older than the frame on screen; repair whatever
	// changed since it was last painted as well.
	dirty := screen
	if content, painted := buf.Content(); !painted {
		dirty = s.Tracker.Full()
	} else if repair, ok := s.Tracker.Compute(content, cur); ok {
		dirty = dirty.Union(repair)
	}

	drawn := render.Draw(buf.Canvas, dirty, s.Style, cur)
	buf.MarkPainted(cur)

	if e := log.Trace(); e.Enabled() {
		start, end := buf.ByteRange(drawn)
		e.Int("buffer", idx).Stringer("dirty", drawn).Int("bytes_from", start).Int("bytes_to", end).Msg("drawn")
	}

	if err := s.Surface.Commit(idx, drawn); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	s.Scheduler.Drawn()
	s.draws++
	return nil
}

// Rect is a convenience for callers that only need the outcome.
func Rect(st selection.State) (geom.Rect, bool) {
	if st.Kind != selection.Finished {
		return geom.Rect{}, false
	}
	return st.Rect, true
}
