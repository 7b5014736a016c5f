// Package notice carries transient user-facing messages (toasts and alerts)
// from view models to the next rendered page.
package notice

import (
	"fmt"
	"sync"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Alert   Level = "alert"
)

type Notice struct {
	Level Level
	Text  string
}

func Successf(format string, args ...any) Notice {
	return Notice{Level: Success, Text: fmt.Sprintf(format, args...)}
}

func Failure(text string) Notice { return Notice{Level: Error, Text: text} }

// Queue buffers notices until a page drains them. The zero value is usable.
type Queue struct {
	mu    sync.Mutex
	items []Notice
}

func (q *Queue) Push(n Notice) {
	if n.Text == "" {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Drain returns the queued notices and empties the queue.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
