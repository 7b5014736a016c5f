package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cinestream/internal/movieapi"
)

var ErrNoPendingDelete = errors.New("catalog: no delete awaiting confirmation")

type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeletePending
	DeleteDone
	DeleteCancelled
)

func (s DeleteState) String() string {
	switch s {
	case DeletePending:
		return "confirm-pending"
	case DeleteDone:
		return "deleted"
	case DeleteCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// DeleteFunc removes a movie on the backend.
type DeleteFunc func(ctx context.Context, id int) error

// DeleteFlow guards destructive deletes behind one confirmation at a time.
type DeleteFlow struct {
	mu      sync.Mutex
	state   DeleteState
	pending movieapi.Movie
}

// Request asks for confirmation, replacing any earlier pending request.
func (d *DeleteFlow) Request(m movieapi.Movie) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = DeletePending
	d.pending = m
}

func (d *DeleteFlow) Pending() (movieapi.Movie, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeletePending {
		return movieapi.Movie{}, false
	}
	return d.pending, true
}

func (d *DeleteFlow) State() DeleteState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *DeleteFlow) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeletePending {
		return ErrNoPendingDelete
	}
	d.state = DeleteCancelled
	d.pending = movieapi.Movie{}
	return nil
}

// Confirm runs del for the pending movie. The confirmation is consumed either
// way; a failed delete ends as cancelled.
func (d *DeleteFlow) Confirm(ctx context.Context, del DeleteFunc) (movieapi.Movie, error) {
	d.mu.Lock()
	if d.state != DeletePending {
		d.mu.Unlock()
		return movieapi.Movie{}, ErrNoPendingDelete
	}
	m := d.pending
	d.state = DeleteIdle
	d.pending = movieapi.Movie{}
	d.mu.Unlock()

	if err := del(ctx, m.ID); err != nil {
		d.settle(DeleteCancelled)
		return m, fmt.Errorf("delete movie %d: %w", m.ID, err)
	}
	d.settle(DeleteDone)
	return m, nil
}

// settle records the outcome unless a newer request is already pending.
func (d *DeleteFlow) settle(s DeleteState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeletePending {
		d.state = s
	}
}
