package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cinestream/internal/movieapi"
)

func sampleMovies() []movieapi.Movie {
	return []movieapi.Movie{
		{ID: 1, Title: "Heat", Category: "action", Trailer: "/media/heat.mp4", IsLatest: true},
		{ID: 2, Title: "Amelie", Category: "romantic", IsLatest: true},
		{ID: 3, Title: "Alien", Category: "thriller", Trailer: "/media/alien.mp4"},
		{ID: 4, Title: "Up", Category: ""},
		{ID: 5, Title: "Ronin", Category: "action"},
		{ID: 6, Title: "Drive", Category: "action"},
		{ID: 7, Title: "Speed", Category: "action"},
		{ID: 8, Title: "Taken", Category: "action"},
	}
}

func newTestView() *View {
	return NewView(Options{TrailerInterval: time.Hour, ScrollFrame: time.Hour, Logger: zerolog.Nop()})
}

func TestViewSnapshot(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())

	snap := v.Snapshot()
	if snap.Empty {
		t.Fatalf("snapshot should not be empty")
	}
	if snap.Hero == nil || snap.Hero.ID != 1 || snap.HeroCount != 2 {
		t.Fatalf("hero = %+v count = %d", snap.Hero, snap.HeroCount)
	}
	if len(snap.Latest) != 2 {
		t.Fatalf("latest = %d", len(snap.Latest))
	}
	if len(snap.Groups) != 4 || snap.Groups[0].Name != "action" || snap.Groups[0].Title != "Action" {
		t.Fatalf("groups = %+v", snap.Groups)
	}
	action := snap.Groups[0]
	if len(action.Movies) != 4 || !action.Collapsible || action.Expanded {
		t.Fatalf("action group = %+v", action)
	}
	if snap.Groups[3].Name != OtherCategory {
		t.Fatalf("blank category should group as Other, got %q", snap.Groups[3].Name)
	}

	v.ToggleCategory("action")
	if got := len(v.Snapshot().Groups[0].Movies); got != 5 {
		t.Fatalf("expanded action = %d", got)
	}
}

func TestViewEmptyHasNoHero(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(nil)
	unmount := v.Mount(func(Event) {})
	defer unmount()

	snap := v.Snapshot()
	if !snap.Empty || snap.Hero != nil || snap.HeroCount != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if v.rotator.Running() {
		t.Fatalf("rotation ticker armed without trailers")
	}
}

func TestViewSelectHaltsScroll(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())
	unmount := v.Mount(func(Event) {})
	defer unmount()

	if !v.scroller.Running() {
		t.Fatalf("scroller should run while mounted")
	}
	m, ok := v.Select(3)
	if !ok || m.Title != "Alien" {
		t.Fatalf("Select = %+v %v", m, ok)
	}
	if v.scroller.Running() {
		t.Fatalf("selection must stop auto-scroll")
	}
	if s := v.Snapshot().Selected; s == nil || s.ID != 3 {
		t.Fatalf("selected = %+v", s)
	}
	v.PointerLeave()
	if !v.scroller.Running() {
		t.Fatalf("pointer exit should resume auto-scroll")
	}
}

func TestViewDeleteKeepsListUntilAcknowledged(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())
	v.Select(2)

	if !v.RequestDelete(2) {
		t.Fatalf("RequestDelete failed")
	}
	if p := v.Snapshot().PendingDelete; p == nil || p.ID != 2 {
		t.Fatalf("pending = %+v", p)
	}

	_, err := v.ConfirmDelete(context.Background(), func(ctx context.Context, id int) error {
		return movieapi.ErrRequestFailed
	})
	if !errors.Is(err, movieapi.ErrRequestFailed) {
		t.Fatalf("ConfirmDelete err = %v", err)
	}
	if _, ok := v.Movie(2); !ok {
		t.Fatalf("failed delete removed the movie")
	}

	v.RequestDelete(2)
	if _, err := v.ConfirmDelete(context.Background(), func(ctx context.Context, id int) error { return nil }); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if _, ok := v.Movie(2); ok {
		t.Fatalf("movie still listed after delete")
	}
	if v.Snapshot().Selected != nil {
		t.Fatalf("deleting the selected movie must clear the selection")
	}
}

func TestViewMountStreamsEvents(t *testing.T) {
	v := NewView(Options{TrailerInterval: 10 * time.Millisecond, ScrollFrame: time.Millisecond, Logger: zerolog.Nop()})
	defer v.Close()
	v.SetMovies(sampleMovies())
	v.Measure(2000, 500)

	var mu sync.Mutex
	seen := map[EventKind]int{}
	var hero *movieapi.Movie
	unmount := v.Mount(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		seen[ev.Kind]++
		if ev.Kind == EventTrailer {
			hero = ev.Movie
		}
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := seen[EventTrailer] > 0 && seen[EventScroll] > 0
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	unmount()

	mu.Lock()
	defer mu.Unlock()
	if seen[EventTrailer] == 0 || seen[EventScroll] == 0 {
		t.Fatalf("events = %v", seen)
	}
	if hero == nil || !hero.HasTrailer() {
		t.Fatalf("trailer event without a trailer movie: %+v", hero)
	}
	if v.rotator.Running() || v.scroller.Running() {
		t.Fatalf("timers survived unmount")
	}
}

func TestViewStaleUnmountKeepsNewerMount(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())

	first := v.Mount(func(Event) {})
	second := v.Mount(func(Event) {})
	first()
	if !v.rotator.Running() {
		t.Fatalf("stale unmount stopped the newer mount")
	}
	second()
	if v.rotator.Running() {
		t.Fatalf("timers still running")
	}
}

func TestViewTogglePlayEmitsPlayback(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())
	events := make(chan Event, 4)
	unmount := v.Mount(func(ev Event) { events <- ev })
	defer unmount()

	if v.TogglePlay() {
		t.Fatalf("toggle should pause")
	}
	ev := <-events
	if ev.Kind != EventPlayback || ev.Playing || ev.Index != 0 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestViewSelectionHaltSurvivesRemount(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())

	first := v.Mount(func(Event) {})
	v.Select(3)
	first()

	second := v.Mount(func(Event) {})
	defer second()
	if v.scroller.Running() {
		t.Fatalf("reloaded page resumed auto-scroll under an open card")
	}

	v.Merge(movieapi.Movie{ID: 3, Title: "Alien", Category: "thriller", Trailer: "/media/alien.mp4", AvgRating: 4})
	if v.scroller.Running() {
		t.Fatalf("list change resumed auto-scroll under an open card")
	}

	v.ClearSelection()
	if !v.scroller.Running() {
		t.Fatalf("closing the card should resume auto-scroll")
	}
}

func TestViewHoverPauseSurvivesRemount(t *testing.T) {
	v := newTestView()
	defer v.Close()
	v.SetMovies(sampleMovies())

	first := v.Mount(func(Event) {})
	v.PointerEnter()
	first()

	second := v.Mount(func(Event) {})
	defer second()
	if v.scroller.Running() {
		t.Fatalf("remount resumed a hovered strip")
	}
	v.SetMovies(sampleMovies()[:3])
	if v.scroller.Running() {
		t.Fatalf("list change resumed a hovered strip")
	}

	v.PointerState(false)
	if !v.scroller.Running() {
		t.Fatalf("pointer away from the strip should resume")
	}
}
