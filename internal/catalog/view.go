package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cinestream/internal/movieapi"
)

type Options struct {
	TrailerInterval time.Duration
	ScrollStep      int
	ScrollFrame     time.Duration
	LatestLimit     int
	Preview         int
	Logger          zerolog.Logger
}

type EventKind string

const (
	EventTrailer  EventKind = "trailer"
	EventScroll   EventKind = "scroll"
	EventPlayback EventKind = "playback"
)

// Event is a timer-driven change the browser has to apply.
type Event struct {
	Kind     EventKind
	Index    int
	Position int
	Playing  bool
	Movie    *movieapi.Movie
}

type GroupView struct {
	Name        string
	Title       string
	Movies      []movieapi.Movie
	Expanded    bool
	Collapsible bool
}

// Snapshot is everything the catalog page renders.
type Snapshot struct {
	Hero          *movieapi.Movie
	HeroIndex     int
	HeroCount     int
	Playing       bool
	Latest        []movieapi.Movie
	ScrollPos     int
	Groups        []GroupView
	Categories    []string
	PendingDelete *movieapi.Movie
	Selected      *movieapi.Movie
	Empty         bool
}

// View is the catalog page model for one session: the movie list, its
// derivations and the two timers that animate it while a browser is attached.
type View struct {
	opts     Options
	log      zerolog.Logger
	movies   Movies
	deletes  DeleteFlow
	rotator  *Rotator
	scroller *Scroller

	mu        sync.Mutex
	expansion Expansion
	selected  int
	sink      func(Event)
	mounts    uint64
	closed    bool
}

func NewView(opts Options) *View {
	if opts.LatestLimit <= 0 {
		opts.LatestLimit = DefaultLatest
	}
	if opts.Preview <= 0 {
		opts.Preview = DefaultPreview
	}
	v := &View{opts: opts, log: opts.Logger.With().Str("component", "catalog").Logger()}
	v.rotator = NewRotator(opts.TrailerInterval, v.trailerChanged)
	v.scroller = NewScroller(opts.ScrollStep, opts.ScrollFrame, v.scrolled)
	return v
}

func (v *View) SetMovies(list []movieapi.Movie) {
	v.movies.Replace(list)
	v.listChanged()
}

// Append adds a created movie and reports whether the list changed.
func (v *View) Append(m movieapi.Movie) bool {
	if !v.movies.Append(m) {
		return false
	}
	v.listChanged()
	return true
}

func (v *View) Merge(m movieapi.Movie) bool {
	if !v.movies.Merge(m) {
		return false
	}
	v.listChanged()
	return true
}

func (v *View) Remove(id int) bool {
	if !v.movies.Remove(id) {
		return false
	}
	v.mu.Lock()
	released := v.selected == id
	if released {
		v.selected = 0
	}
	v.mu.Unlock()
	if released {
		v.scroller.Release()
	}
	v.listChanged()
	return true
}

func (v *View) Movie(id int) (movieapi.Movie, bool) {
	return v.movies.Get(id)
}

func (v *View) Movies() []movieapi.Movie {
	return v.movies.Snapshot()
}

func (v *View) listChanged() {
	v.rotator.SetCount(len(Trailers(v.movies.Snapshot())))
	v.scroller.Reset()
}

// Mount attaches a browser. Timers run until the returned func is called or
// another browser mounts and later unmounts.
func (v *View) Mount(sink func(Event)) (unmount func()) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return func() {}
	}
	v.mounts++
	id := v.mounts
	v.sink = sink
	v.mu.Unlock()

	v.rotator.Start()
	v.scroller.Start()
	v.log.Debug().Uint64("mount", id).Msg("live view mounted")

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			current := v.mounts == id
			if current {
				v.sink = nil
			}
			v.mu.Unlock()
			if current {
				v.rotator.Stop()
				v.scroller.Stop()
				v.log.Debug().Uint64("mount", id).Msg("live view unmounted")
			}
		})
	}
}

// Select opens a card. Auto-scroll holds until the pointer leaves the strip.
func (v *View) Select(id int) (movieapi.Movie, bool) {
	m, ok := v.movies.Get(id)
	if !ok {
		return movieapi.Movie{}, false
	}
	v.mu.Lock()
	v.selected = id
	v.mu.Unlock()
	v.scroller.Halt()
	return m, true
}

// ClearSelection closes the card and lifts its scroll halt.
func (v *View) ClearSelection() {
	v.mu.Lock()
	had := v.selected != 0
	v.selected = 0
	v.mu.Unlock()
	if had {
		v.scroller.Release()
	}
}

func (v *View) ToggleCategory(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expansion.Toggle(name)
}

func (v *View) RequestDelete(id int) bool {
	m, ok := v.movies.Get(id)
	if !ok {
		return false
	}
	v.deletes.Request(m)
	return true
}

func (v *View) CancelDelete() error {
	return v.deletes.Cancel()
}

// ConfirmDelete deletes the pending movie on the backend and drops it from
// the list only once the backend agreed.
func (v *View) ConfirmDelete(ctx context.Context, del DeleteFunc) (movieapi.Movie, error) {
	m, err := v.deletes.Confirm(ctx, del)
	if err != nil {
		return m, err
	}
	v.Remove(m.ID)
	return m, nil
}

func (v *View) PointerEnter() { v.scroller.Pause() }

func (v *View) PointerLeave() { v.scroller.Resume() }

// PointerState reports where the pointer is on a freshly mounted page.
func (v *View) PointerState(over bool) { v.scroller.Hover(over) }

func (v *View) Measure(scrollWidth, clientWidth int) { v.scroller.Measure(scrollWidth, clientWidth) }

func (v *View) TrailerEnded() { v.rotator.Ended() }

func (v *View) TogglePlay() bool {
	playing := v.rotator.TogglePlay()
	v.emit(Event{Kind: EventPlayback, Index: v.rotator.Index(), Playing: playing})
	return playing
}

func (v *View) Snapshot() Snapshot {
	list := v.movies.Snapshot()
	trailers := Trailers(list)

	v.mu.Lock()
	selected := v.selected
	expanded := make(map[string]bool)
	groups := GroupByCategory(list)
	for _, g := range groups {
		expanded[g.Name] = v.expansion.Expanded(g.Name)
	}
	v.mu.Unlock()

	snap := Snapshot{
		Latest:     Latest(list, v.opts.LatestLimit),
		ScrollPos:  v.scroller.Position(),
		Categories: Categories(list),
		Empty:      len(list) == 0,
		HeroCount:  len(trailers),
		Playing:    v.rotator.Playing(),
	}
	if len(trailers) > 0 {
		idx := v.rotator.Index()
		if idx >= len(trailers) {
			idx = 0
		}
		hero := trailers[idx]
		snap.Hero = &hero
		snap.HeroIndex = idx
	}
	for _, g := range groups {
		snap.Groups = append(snap.Groups, GroupView{
			Name:        g.Name,
			Title:       DisplayName(g.Name),
			Movies:      Visible(g, expanded[g.Name], v.opts.Preview),
			Expanded:    expanded[g.Name],
			Collapsible: Collapsible(g, v.opts.Preview),
		})
	}
	if m, ok := v.deletes.Pending(); ok {
		snap.PendingDelete = &m
	}
	if selected != 0 {
		for i := range list {
			if list[i].ID == selected {
				m := list[i]
				snap.Selected = &m
				break
			}
		}
	}
	return snap
}

// Close stops both timers and detaches any browser.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.sink = nil
	v.mounts++
	v.mu.Unlock()
	v.rotator.Stop()
	v.scroller.Stop()
}

func (v *View) trailerChanged(idx int) {
	trailers := Trailers(v.movies.Snapshot())
	ev := Event{Kind: EventTrailer, Index: idx, Playing: true}
	if idx < len(trailers) {
		m := trailers[idx]
		ev.Movie = &m
	}
	v.emit(ev)
}

func (v *View) scrolled(pos int) {
	v.emit(Event{Kind: EventScroll, Position: pos})
}

func (v *View) emit(ev Event) {
	v.mu.Lock()
	sink := v.sink
	v.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}
