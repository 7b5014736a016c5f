package catalog

import (
	"sync"
	"time"
)

const (
	DefaultScrollStep  = 1
	DefaultScrollFrame = 16 * time.Millisecond
)

// NextScroll is one frame of the latest strip: advance by step, clamp to the
// bound, and wrap to 0 on the frame after the bound was reached.
func NextScroll(pos, step, bound int) int {
	if bound <= 0 || pos >= bound {
		return 0
	}
	pos += step
	if pos < 0 {
		pos = 0
	}
	if pos > bound {
		pos = bound
	}
	return pos
}

// Scroller auto-scrolls the latest strip. The browser reports the strip's
// extent through Measure and applies every position passed to onScroll.
type Scroller struct {
	step     int
	frame    time.Duration
	onScroll func(pos int)

	mu      sync.Mutex
	pos     int
	bound   int
	enabled bool
	hovered bool
	halted  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewScroller(step int, frame time.Duration, onScroll func(pos int)) *Scroller {
	if step <= 0 {
		step = DefaultScrollStep
	}
	if frame <= 0 {
		frame = DefaultScrollFrame
	}
	return &Scroller{step: step, frame: frame, onScroll: onScroll}
}

// Measure records scrollWidth and clientWidth of the strip.
func (s *Scroller) Measure(scrollWidth, clientWidth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = scrollWidth - clientWidth
	if s.bound < 0 {
		s.bound = 0
	}
	if s.pos > s.bound {
		s.pos = s.bound
	}
}

// Start arms the frame loop. A pause or halt in place stays in force.
func (s *Scroller) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	s.restartLocked()
}

// Stop tears the frame loop down for good.
func (s *Scroller) Stop() {
	s.mu.Lock()
	s.enabled = false
	s.stopLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

// Pause holds the strip while the pointer is over it.
func (s *Scroller) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = true
	s.stopLocked()
}

// Halt holds the strip after a card was selected, until Resume or Release.
func (s *Scroller) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halted = true
	s.stopLocked()
}

// Resume is the pointer leaving the strip; it lifts both holds.
func (s *Scroller) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = false
	s.halted = false
	s.restartLocked()
}

// Release lifts a selection halt. A hover pause stays.
func (s *Scroller) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halted = false
	s.restartLocked()
}

// Hover sets the pointer state without touching a selection halt. A page
// that just mounted reports it once, since it never saw the pointer enter.
func (s *Scroller) Hover(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = active
	s.restartLocked()
}

// Held reports whether a hover pause or selection halt is in force.
func (s *Scroller) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hovered || s.halted
}

// Reset rewinds to 0 after the movie list changed. Holds are kept.
func (s *Scroller) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.restartLocked()
}

// Step runs one frame and returns the new position.
func (s *Scroller) Step() int {
	s.mu.Lock()
	pos := s.stepLocked()
	s.mu.Unlock()
	if s.onScroll != nil {
		s.onScroll(pos)
	}
	return pos
}

func (s *Scroller) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *Scroller) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Scroller) stepLocked() int {
	s.pos = NextScroll(s.pos, s.step, s.bound)
	return s.pos
}

func (s *Scroller) restartLocked() {
	s.stopLocked()
	if !s.enabled || s.hovered || s.halted {
		return
	}
	done := make(chan struct{})
	s.done = done
	s.wg.Add(1)
	go s.loop(done)
}

func (s *Scroller) stopLocked() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

func (s *Scroller) loop(done chan struct{}) {
	defer s.wg.Done()
	t := time.NewTicker(s.frame)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			s.mu.Lock()
			if s.done != done {
				s.mu.Unlock()
				return
			}
			prev := s.pos
			pos := s.stepLocked()
			s.mu.Unlock()
			if pos != prev && s.onScroll != nil {
				s.onScroll(pos)
			}
		}
	}
}
