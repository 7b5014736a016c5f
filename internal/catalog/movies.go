package catalog

import (
	"sync"

	"cinestream/internal/movieapi"
)

// Movies is the page's copy of the catalog. Membership only changes after
// the backend acknowledged the mutation.
type Movies struct {
	mu   sync.RWMutex
	list []movieapi.Movie
}

func (s *Movies) Replace(list []movieapi.Movie) {
	cp := make([]movieapi.Movie, len(list))
	copy(cp, list)
	s.mu.Lock()
	s.list = cp
	s.mu.Unlock()
}

// Append adds a newly created movie. Records without an id, or already
// present, are ignored.
func (s *Movies) Append(m movieapi.Movie) bool {
	if m.ID == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(m.ID) >= 0 {
		return false
	}
	s.list = append(s.list, m)
	return true
}

// Merge replaces the record with the same id. The backend returns complete
// records, so the update wins field by field.
func (s *Movies) Merge(m movieapi.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(m.ID)
	if i < 0 {
		return false
	}
	s.list[i] = m
	return true
}

func (s *Movies) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.list = append(s.list[:i:i], s.list[i+1:]...)
	return true
}

func (s *Movies) Get(id int) (movieapi.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.list[i], true
	}
	return movieapi.Movie{}, false
}

func (s *Movies) Snapshot() []movieapi.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]movieapi.Movie, len(s.list))
	copy(cp, s.list)
	return cp
}

func (s *Movies) indexLocked(id int) int {
	for i, m := range s.list {
		if m.ID == id {
			return i
		}
	}
	return -1
}
