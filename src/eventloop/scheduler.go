package eventloop

// Scheduler coalesces redraw requests into at most one draw per
// presentation opportunity.
//
// pending is set by any change of the visible selection. ready is set by a
// frame-ready notification (and is true for the very first frame) and
// consumed by a draw.
type Scheduler struct {
	pending bool
	ready   bool
}

// NewScheduler returns a scheduler whose first frame may be drawn at once.
func NewScheduler() *Scheduler {
	return &Scheduler{ready: true}
}

// Request marks a redraw as pending.
func (s *Scheduler) Request() { s.pending = true }

// FrameReady records a presentation opportunity.
func (s *Scheduler) FrameReady() { s.ready = true }

// Pending reports whether a redraw has been requested and not yet drawn.
func (s *Scheduler) Pending() bool { return s.pending }

// Ready reports whether the display can take a new frame.
func (s *Scheduler) Ready() bool { return s.ready }

// Due reports whether a draw should happen now.
func (s *Scheduler) Due() bool { return s.pending && s.ready }

// Drawn consumes the pending request and the presentation opportunity.
func (s *Scheduler) Drawn() {
	s.pending = false
	s.ready = false
}

// Skip drops the pending request without using the opportunity; the
// screen already shows the requested state.
func (s *Scheduler) Skip() { s.pending = false }
