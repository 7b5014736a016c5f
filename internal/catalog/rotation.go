package catalog

import (
	"sync"
	"time"
)

const DefaultTrailerInterval = 7 * time.Second

// Rotator cycles the hero banner through the trailer-eligible movies. The
// ticker only runs between Start and Stop and while there is something to
// rotate.
type Rotator struct {
	interval time.Duration
	onChange func(index int)

	mu      sync.Mutex
	count   int
	index   int
	playing bool
	enabled bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewRotator(interval time.Duration, onChange func(index int)) *Rotator {
	if interval <= 0 {
		interval = DefaultTrailerInterval
	}
	return &Rotator{interval: interval, onChange: onChange, playing: true}
}

// Start arms the ticker.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
	r.restartLocked()
}

// Stop disarms the ticker and waits for its goroutine to exit.
func (r *Rotator) Stop() {
	r.mu.Lock()
	r.enabled = false
	r.stopLocked()
	r.mu.Unlock()
	r.wg.Wait()
}

// SetCount is called whenever the trailer list changes. The old ticker is
// stopped before a new one starts and the index is clamped into range.
func (r *Rotator) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = n
	if r.index >= n {
		r.index = 0
	}
	r.restartLocked()
}

// Advance moves to the next trailer, wrapping past the last one.
func (r *Rotator) Advance() int {
	r.mu.Lock()
	idx, ok := r.advanceLocked()
	r.mu.Unlock()
	if ok && r.onChange != nil {
		r.onChange(idx)
	}
	return idx
}

// Ended is the playback-ended signal of the current trailer.
func (r *Rotator) Ended() int {
	return r.Advance()
}

// TogglePlay flips playback of the current trailer without moving.
func (r *Rotator) TogglePlay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = !r.playing
	return r.playing
}

func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

func (r *Rotator) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Rotator) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// Running reports whether a ticker is armed.
func (r *Rotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

func (r *Rotator) advanceLocked() (int, bool) {
	if r.count == 0 {
		return 0, false
	}
	r.index = (r.index + 1) % r.count
	r.playing = true
	return r.index, true
}

func (r *Rotator) restartLocked() {
	r.stopLocked()
	if !r.enabled || r.count == 0 {
		return
	}
	done := make(chan struct{})
	r.done = done
	r.wg.Add(1)
	go r.loop(done)
}

func (r *Rotator) stopLocked() {
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
}

func (r *Rotator) loop(done chan struct{}) {
	defer r.wg.Done()
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			r.tick(done)
		}
	}
}

// tick advances only if done still belongs to the armed ticker, so a tick
// racing with Stop or SetCount is dropped.
func (r *Rotator) tick(done chan struct{}) {
	r.mu.Lock()
	if r.done != done {
		r.mu.Unlock()
		return
	}
	idx, ok := r.advanceLocked()
	r.mu.Unlock()
	if ok && r.onChange != nil {
		r.onChange(idx)
	}
}
