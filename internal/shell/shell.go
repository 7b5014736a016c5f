// Package shell is the application shell of one signed-in browser: the
// catalog page plus at most one modal (movie details or the movie form).
package shell

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cinestream/internal/catalog"
	"cinestream/internal/detail"
	"cinestream/internal/fetch"
	"cinestream/internal/form"
	"cinestream/internal/movieapi"
	"cinestream/internal/notice"
)

const moviesPath = "/movies/"

type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalViewing
	ModalEditing
)

func (k ModalKind) String() string {
	switch k {
	case ModalViewing:
		return "viewing"
	case ModalEditing:
		return "editing"
	default:
		return "none"
	}
}

// Modal is what sits on top of the catalog. Movie is the zero value for
// ModalNone and for a blank create form.
type Modal struct {
	Kind  ModalKind
	Movie movieapi.Movie
}

type API interface {
	detail.API
	form.Saver
	GetJSON(ctx context.Context, cred movieapi.Credential, path string, out any) error
	DeleteMovie(ctx context.Context, cred movieapi.Credential, id int) error
}

type Config struct {
	Catalog        catalog.Options
	FormCloseDelay time.Duration
}

type Shell struct {
	id      string
	cred    movieapi.Credential
	api     API
	cfg     Config
	log     zerolog.Logger
	catalog *catalog.View
	movies  *fetch.Resource[[]movieapi.Movie]
	notices notice.Queue

	mu       sync.Mutex
	modal    Modal
	detail   *detail.View
	form     *form.Form
	applied  *[]movieapi.Movie
	disposed bool
}

func New(id string, cred movieapi.Credential, api API, cfg Config, log zerolog.Logger) *Shell {
	log = log.With().Str("session", id).Logger()
	cfg.Catalog.Logger = log
	s := &Shell{
		id:      id,
		cred:    cred,
		api:     api,
		cfg:     cfg,
		log:     log,
		catalog: catalog.NewView(cfg.Catalog),
	}
	s.movies = fetch.New(context.Background(), func(ctx context.Context, path string) ([]movieapi.Movie, error) {
		var out []movieapi.Movie
		err := api.GetJSON(ctx, cred, path, &out)
		return out, err
	})
	return s
}

func (s *Shell) ID() string { return s.id }

func (s *Shell) Credential() movieapi.Credential { return s.cred }

func (s *Shell) Catalog() *catalog.View { return s.catalog }

func (s *Shell) Notices() *notice.Queue { return &s.notices }

// Load fetches the movie list once and hands fresh data to the catalog. It
// returns the fetch state after waiting at most until ctx is done.
func (s *Shell) Load(ctx context.Context) (fetch.State[[]movieapi.Movie], error) {
	s.movies.Load(moviesPath)
	st, err := s.movies.Wait(ctx)
	if st.Data != nil {
		s.mu.Lock()
		fresh := s.applied != st.Data
		s.applied = st.Data
		s.mu.Unlock()
		if fresh {
			s.catalog.SetMovies(*st.Data)
		}
	}
	return st, err
}

// Reload refetches the list, e.g. after the user asked for a refresh.
func (s *Shell) Reload() {
	s.movies.Reload()
}

func (s *Shell) Modal() Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal
}

func (s *Shell) Detail() *detail.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

func (s *Shell) Form() *form.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// View opens the details of a listed movie.
func (s *Shell) View(id int) bool {
	m, ok := s.catalog.Select(id)
	if !ok {
		return false
	}
	d := detail.New(s.api, m, s.MovieUpdated, s.log)
	s.mu.Lock()
	s.closeFormLocked()
	s.modal = Modal{Kind: ModalViewing, Movie: m}
	s.detail = d
	s.mu.Unlock()
	return true
}

// Edit opens the form prefilled with a listed movie.
func (s *Shell) Edit(id int) bool {
	m, ok := s.catalog.Movie(id)
	if !ok {
		return false
	}
	s.openForm(m)
	return true
}

// New opens a blank create form.
func (s *Shell) New() {
	s.openForm(movieapi.Movie{})
}

func (s *Shell) openForm(m movieapi.Movie) {
	var f *form.Form
	f = form.New(s.api, m, form.Options{
		CloseDelay: s.cfg.FormCloseDelay,
		OnCreated:  s.MovieCreated,
		OnUpdated:  s.MovieUpdated,
		OnClose:    func() { s.formClosed(f) },
		Logger:     s.log,
	})
	s.mu.Lock()
	s.closeFormLocked()
	s.detail = nil
	s.modal = Modal{Kind: ModalEditing, Movie: m}
	s.form = f
	s.mu.Unlock()
	s.catalog.ClearSelection()
}

// Close dismisses whatever modal is open.
func (s *Shell) Close() {
	s.mu.Lock()
	s.closeFormLocked()
	s.detail = nil
	s.modal = Modal{}
	s.mu.Unlock()
	s.catalog.ClearSelection()
}

func (s *Shell) closeFormLocked() {
	if s.form != nil {
		s.form.Close()
		s.form = nil
	}
}

// formClosed runs from the form's delayed close and only dismisses the modal
// if that form is still the one on screen.
func (s *Shell) formClosed(f *form.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form != f {
		return
	}
	s.form = nil
	s.modal = Modal{}
}

// MovieUpdated merges a saved record into the list and the open modal.
func (s *Shell) MovieUpdated(m movieapi.Movie) {
	s.catalog.Merge(m)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal.Kind != ModalNone && s.modal.Movie.ID == m.ID {
		s.modal.Movie = m
	}
	if s.detail != nil {
		s.detail.Refresh(m)
	}
}

func (s *Shell) MovieCreated(m movieapi.Movie) {
	if !s.catalog.Append(m) {
		s.log.Warn().Int("movie_id", m.ID).Msg("created movie not appended")
	}
}

func (s *Shell) Rate(ctx context.Context, stars int) error {
	d := s.Detail()
	if d == nil {
		return errors.New("shell: no movie open")
	}
	n, err := d.Rate(ctx, s.cred, stars)
	if errors.Is(err, detail.ErrSuperseded) {
		return nil
	}
	s.notices.Push(n)
	return err
}

// Save submits the open form. Attachments are applied first; a rejected
// attachment is reported and skipped.
func (s *Shell) Save(ctx context.Context, fields form.Fields, image, trailer *movieapi.Attachment) error {
	f := s.Form()
	if f == nil {
		return errors.New("shell: no form open")
	}
	for _, a := range []struct {
		kind form.Kind
		att  *movieapi.Attachment
	}{{form.Poster, image}, {form.Trailer, trailer}} {
		if a.att == nil || len(a.att.Data) == 0 {
			continue
		}
		if err := f.Attach(a.kind, *a.att); err != nil {
			s.log.Info().Err(err).Str("file", a.att.Filename).Msg("attachment ignored")
		}
	}
	n, err := f.Submit(ctx, s.cred, fields)
	s.notices.Push(n)
	return err
}

func (s *Shell) RequestDelete(id int) bool {
	return s.catalog.RequestDelete(id)
}

func (s *Shell) CancelDelete() error {
	return s.catalog.CancelDelete()
}

func (s *Shell) ConfirmDelete(ctx context.Context) error {
	m, err := s.catalog.ConfirmDelete(ctx, func(ctx context.Context, id int) error {
		return s.api.DeleteMovie(ctx, s.cred, id)
	})
	if err != nil {
		if !errors.Is(err, catalog.ErrNoPendingDelete) {
			s.log.Warn().Err(err).Int("movie_id", m.ID).Msg("delete failed")
		}
		return err
	}
	s.mu.Lock()
	if s.modal.Movie.ID == m.ID && s.modal.Kind != ModalNone {
		s.closeFormLocked()
		s.detail = nil
		s.modal = Modal{}
	}
	s.mu.Unlock()
	return nil
}

// Categories feeds the navigation menu.
func (s *Shell) Categories() []string {
	return catalog.Categories(s.catalog.Movies())
}

// Dispose releases every timer and in-flight request of the session.
func (s *Shell) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.closeFormLocked()
	s.detail = nil
	s.mu.Unlock()
	s.movies.Close()
	s.catalog.Close()
}
