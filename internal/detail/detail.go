// Package detail is the single-movie modal: poster or trailer, description,
// gallery, current rating and the star picker.
package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cinestream/internal/movieapi"
	"cinestream/internal/notice"
)

var (
	ErrInvalidStars = errors.New("detail: stars must be between 1 and 5")
	// ErrSuperseded marks a rating whose response arrived after a newer
	// rating was submitted for the same movie.
	ErrSuperseded = errors.New("detail: superseded by a newer rating")
)

const (
	NoDescription   = "No description available."
	RatingFailed    = "Failed to submit rating"
	PosterFallback  = "https://via.placeholder.com/400x500?text=Movie+Poster"
	TrailerFallback = "https://www.youtube.com/embed/dQw4w9WgXcQ"
)

type API interface {
	RateMovie(ctx context.Context, cred movieapi.Credential, id, stars int) (*movieapi.RateResponse, error)
	GetMovie(ctx context.Context, cred movieapi.Credential, id int) (*movieapi.Movie, error)
}

type View struct {
	api       API
	log       zerolog.Logger
	onUpdated func(movieapi.Movie)

	mu          sync.Mutex
	movie       movieapi.Movie
	seq         uint64
	busy        bool
	showTrailer bool
}

func New(api API, movie movieapi.Movie, onUpdated func(movieapi.Movie), log zerolog.Logger) *View {
	return &View{
		api:       api,
		movie:     movie,
		onUpdated: onUpdated,
		log:       log.With().Str("component", "detail").Int("movie_id", movie.ID).Logger(),
	}
}

// Rate submits a rating, re-reads the movie and reports the fresh record.
// Only the latest submission for this view may report; older ones finish
// with ErrSuperseded.
func (v *View) Rate(ctx context.Context, cred movieapi.Credential, stars int) (notice.Notice, error) {
	if stars < 1 || stars > 5 {
		return notice.Failure(RatingFailed), ErrInvalidStars
	}

	v.mu.Lock()
	v.seq++
	seq := v.seq
	id := v.movie.ID
	v.busy = true
	v.mu.Unlock()

	reqID := uuid.NewString()
	log := v.log.With().Str("rating_id", reqID).Uint64("seq", seq).Logger()
	log.Debug().Int("stars", stars).Msg("submit rating")

	updated, err := v.submit(ctx, cred, id, stars)

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		log.Debug().Msg("discarding superseded rating response")
		return notice.Notice{}, ErrSuperseded
	}
	v.busy = false
	if err != nil {
		v.mu.Unlock()
		log.Warn().Err(err).Msg("rating failed")
		return notice.Failure(RatingFailed), err
	}
	v.movie = *updated
	v.mu.Unlock()

	if v.onUpdated != nil {
		v.onUpdated(*updated)
	}
	return notice.Successf("⭐ Rated %d stars successfully!", stars), nil
}

func (v *View) submit(ctx context.Context, cred movieapi.Credential, id, stars int) (*movieapi.Movie, error) {
	if _, err := v.api.RateMovie(ctx, cred, id, stars); err != nil {
		return nil, fmt.Errorf("rate movie %d: %w", id, err)
	}
	updated, err := v.api.GetMovie(ctx, cred, id)
	if err != nil {
		return nil, fmt.Errorf("reload movie %d: %w", id, err)
	}
	return updated, nil
}

// Refresh replaces the shown record, e.g. after the form saved it.
func (v *View) Refresh(m movieapi.Movie) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if m.ID == v.movie.ID {
		v.movie = m
	}
}

func (v *View) ToggleTrailer() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showTrailer = !v.showTrailer
	return v.showTrailer
}

func (v *View) Movie() movieapi.Movie {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.movie
}

// Model is the render data of the modal.
type Model struct {
	ID          int
	Title       string
	Category    string
	Description string
	Poster      string
	Trailer     string
	Gallery     []string
	Stars       [5]bool
	RatingLabel string
	ShowTrailer bool
	Busy        bool
}

// Render builds the modal model. media resolves backend-relative references.
func (v *View) Render(media func(string) string) Model {
	v.mu.Lock()
	m := v.movie
	show := v.showTrailer
	busy := v.busy
	v.mu.Unlock()

	if media == nil {
		media = func(s string) string { return s }
	}
	out := Model{
		ID:          m.ID,
		Title:       m.Title,
		Category:    m.Category,
		Description: m.Description,
		Poster:      media(m.Image),
		Trailer:     media(m.Trailer),
		Stars:       StarBar(m.AvgRating),
		RatingLabel: RatingLabel(m.AvgRating),
		ShowTrailer: show,
		Busy:        busy,
	}
	if out.Description == "" {
		out.Description = NoDescription
	}
	if out.Poster == "" {
		out.Poster = PosterFallback
	}
	if out.Trailer == "" {
		out.Trailer = TrailerFallback
	}
	for _, g := range m.Gallery {
		out.Gallery = append(out.Gallery, media(g))
	}
	return out
}
