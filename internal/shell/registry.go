package shell

import (
	"sync"
	"time"

	"cinestream/internal/movieapi"
)

type registryEntry struct {
	shell     *Shell
	expiresAt time.Time
}

// Factory builds the shell of a new session.
type Factory func(id string, cred movieapi.Credential) *Shell

// Registry keeps one Shell per signed-in session and drops sessions that
// were idle for longer than ttl.
type Registry struct {
	ttl     time.Duration
	factory Factory

	mu    sync.Mutex
	items map[string]registryEntry
}

func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{ttl: ttl, factory: factory, items: make(map[string]registryEntry)}
}

// Get returns the session's shell, creating it on first use, and extends
// its lifetime.
func (r *Registry) Get(id string, cred movieapi.Credential, now time.Time) *Shell {
	var stale *Shell
	r.mu.Lock()
	entry, ok := r.items[id]
	if ok && now.After(entry.expiresAt) {
		stale = entry.shell
		ok = false
	}
	if !ok {
		entry = registryEntry{shell: r.factory(id, cred)}
	}
	entry.expiresAt = now.Add(r.ttl)
	r.items[id] = entry
	r.mu.Unlock()
	if stale != nil {
		stale.Dispose()
	}
	return entry.shell
}

// Lookup returns an existing shell without creating one.
func (r *Registry) Lookup(id string, now time.Time) (*Shell, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[id]
	if !ok || now.After(entry.expiresAt) {
		return nil, false
	}
	entry.expiresAt = now.Add(r.ttl)
	r.items[id] = entry
	return entry.shell, true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	entry, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()
	if ok {
		entry.shell.Dispose()
	}
}

// Sweep disposes expired sessions and returns how many were dropped.
func (r *Registry) Sweep(now time.Time) int {
	var expired []*Shell
	r.mu.Lock()
	for id, entry := range r.items {
		if now.After(entry.expiresAt) {
			expired = append(expired, entry.shell)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.Dispose()
	}
	return len(expired)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// CloseAll disposes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]registryEntry)
	r.mu.Unlock()
	for _, entry := range items {
		entry.shell.Dispose()
	}
}
