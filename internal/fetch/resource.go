// Package fetch loads a single remote resource keyed by path and tracks its
// loading/success/error state for a view.
package fetch

import (
	"context"
	"sync"
)

// ErrorMessage is the only failure text a view ever shows.
const ErrorMessage = "Error getting data."

type State[T any] struct {
	Data    *T
	Loading bool
	Err     string
}

type GetFunc[T any] func(ctx context.Context, path string) (T, error)

// Resource runs at most one load at a time. A load is superseded by a load
// of a different path or by Close; superseded results never touch state.
type Resource[T any] struct {
	get    GetFunc[T]
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	path     string
	started  bool
	gen      uint64
	state    State[T]
	inflight context.CancelFunc
	done     chan struct{}
	closed   bool
}

func New[T any](parent context.Context, get GetFunc[T]) *Resource[T] {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	close(done)
	return &Resource[T]{
		get:    get,
		ctx:    ctx,
		cancel: cancel,
		done:   done,
		state:  State[T]{Loading: true},
	}
}

// Load starts fetching path unless it is already the current path.
func (r *Resource[T]) Load(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || (r.started && r.path == path) {
		return
	}
	r.startLocked(path)
}

// Reload fetches the current path again.
func (r *Resource[T]) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.started {
		return
	}
	r.startLocked(r.path)
}

func (r *Resource[T]) startLocked(path string) {
	if r.inflight != nil {
		r.inflight()
	}
	r.path = path
	r.started = true
	r.gen++
	ctx, cancel := context.WithCancel(r.ctx)
	r.inflight = cancel
	done := make(chan struct{})
	r.done = done
	r.state = State[T]{Data: r.state.Data, Loading: true}
	go r.run(ctx, cancel, r.gen, path, done)
}

func (r *Resource[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, path string, done chan struct{}) {
	defer close(done)
	defer cancel()

	v, err := r.get(ctx, path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || gen != r.gen || ctx.Err() != nil {
		return
	}
	r.inflight = nil
	if err != nil {
		r.state = State[T]{Data: r.state.Data, Err: ErrorMessage}
		return
	}
	r.state = State[T]{Data: &v}
}

func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resource[T]) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Wait blocks until the current load settles or ctx is done, then returns
// the state at that point.
func (r *Resource[T]) Wait(ctx context.Context) (State[T], error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	select {
	case <-done:
		return r.State(), nil
	case <-ctx.Done():
		return r.State(), ctx.Err()
	}
}

// Close cancels any in-flight load. The resource keeps its last state.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
}
