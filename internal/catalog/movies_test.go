package catalog

import (
	"reflect"
	"testing"

	"cinestream/internal/movieapi"
)

func TestMoviesReconciliation(t *testing.T) {
	var s Movies
	src := []movieapi.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}, {ID: 3, Title: "C"}}
	s.Replace(src)
	src[0].Title = "mutated"
	if m, _ := s.Get(1); m.Title != "A" {
		t.Fatalf("Replace must copy the input slice")
	}

	if s.Append(movieapi.Movie{Title: "no id"}) {
		t.Fatalf("records without id must not be appended")
	}
	if s.Append(movieapi.Movie{ID: 2, Title: "dup"}) {
		t.Fatalf("duplicate id appended")
	}
	if !s.Append(movieapi.Movie{ID: 4, Title: "D"}) {
		t.Fatalf("new record not appended")
	}

	if !s.Merge(movieapi.Movie{ID: 2, Title: "B2", AvgRating: 4}) {
		t.Fatalf("merge of known id failed")
	}
	if s.Merge(movieapi.Movie{ID: 99}) {
		t.Fatalf("merge of unknown id should report false")
	}
	if m, _ := s.Get(2); m.Title != "B2" || m.AvgRating != 4 {
		t.Fatalf("merged = %+v", m)
	}

	snap := s.Snapshot()
	if !s.Remove(1) || s.Remove(1) {
		t.Fatalf("Remove should succeed once")
	}
	if got := ids(s.Snapshot()); !reflect.DeepEqual(got, []int{2, 3, 4}) {
		t.Fatalf("after remove = %v", got)
	}
	if got := ids(snap); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Fatalf("snapshot changed under us: %v", got)
	}
}
