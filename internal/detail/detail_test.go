package detail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"cinestream/internal/movieapi"
	"cinestream/internal/notice"
)

type stubAPI struct {
	mu      sync.Mutex
	rated   []int
	avg     map[int]float64
	rateErr error
	// gate, when set, holds the rate call for the given star value.
	gate map[int]chan struct{}
}

func (s *stubAPI) RateMovie(ctx context.Context, cred movieapi.Credential, id, stars int) (*movieapi.RateResponse, error) {
	s.mu.Lock()
	g := s.gate[stars]
	s.mu.Unlock()
	if g != nil {
		<-g
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rateErr != nil {
		return nil, s.rateErr
	}
	s.rated = append(s.rated, stars)
	return &movieapi.RateResponse{Message: "ok"}, nil
}

func (s *stubAPI) GetMovie(ctx context.Context, cred movieapi.Credential, id int) (*movieapi.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.rated[len(s.rated)-1]
	return &movieapi.Movie{ID: id, Title: "Heat", AvgRating: float64(last), NoOfRatings: len(s.rated)}, nil
}

func TestStarBarAndLabels(t *testing.T) {
	bar := StarBar(3.5)
	want := [5]bool{true, true, true, true, false}
	if bar != want {
		t.Fatalf("StarBar(3.5) = %v", bar)
	}
	if got := RatingLabel(3.5); got != "(3.5 / 5)" {
		t.Fatalf("RatingLabel = %q", got)
	}
	if got := RatingLabel(0); got != "(0.0 / 5)" {
		t.Fatalf("RatingLabel(0) = %q", got)
	}
	if got := CardLabel(4.25); got != "(4.2)" && got != "(4.3)" {
		t.Fatalf("CardLabel = %q", got)
	}
	if StarBar(0) != [5]bool{} {
		t.Fatalf("zero rating should have no filled stars")
	}
	if StarBar(9) != [5]bool{true, true, true, true, true} {
		t.Fatalf("bar must cap at five")
	}
}

func TestRateReportsRefreshedMovie(t *testing.T) {
	api := &stubAPI{}
	var reported []movieapi.Movie
	v := New(api, movieapi.Movie{ID: 4, Title: "Heat"}, func(m movieapi.Movie) { reported = append(reported, m) }, zerolog.Nop())

	n, err := v.Rate(context.Background(), "tok", 4)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if n.Level != notice.Success || n.Text != "⭐ Rated 4 stars successfully!" {
		t.Fatalf("notice = %+v", n)
	}
	if len(reported) != 1 || reported[0].AvgRating != 4 {
		t.Fatalf("reported = %+v", reported)
	}
	if v.Movie().AvgRating != 4 {
		t.Fatalf("view not refreshed: %+v", v.Movie())
	}
}

func TestRateRejectsOutOfRange(t *testing.T) {
	api := &stubAPI{}
	v := New(api, movieapi.Movie{ID: 1}, nil, zerolog.Nop())
	for _, stars := range []int{0, 6, -1} {
		if _, err := v.Rate(context.Background(), "tok", stars); !errors.Is(err, ErrInvalidStars) {
			t.Fatalf("Rate(%d) = %v", stars, err)
		}
	}
	if len(api.rated) != 0 {
		t.Fatalf("invalid stars reached the backend")
	}
}

func TestRateFailureNotice(t *testing.T) {
	api := &stubAPI{rateErr: movieapi.ErrRequestFailed}
	called := false
	v := New(api, movieapi.Movie{ID: 1}, func(movieapi.Movie) { called = true }, zerolog.Nop())
	n, err := v.Rate(context.Background(), "tok", 3)
	if !errors.Is(err, movieapi.ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
	if n.Level != notice.Error || n.Text != RatingFailed {
		t.Fatalf("notice = %+v", n)
	}
	if called {
		t.Fatalf("failure must not report an update")
	}
}

func TestRateDiscardsSupersededResponse(t *testing.T) {
	gate := make(chan struct{})
	api := &stubAPI{gate: map[int]chan struct{}{2: gate}}
	var mu sync.Mutex
	var reported []float64
	v := New(api, movieapi.Movie{ID: 9}, func(m movieapi.Movie) {
		mu.Lock()
		reported = append(reported, m.AvgRating)
		mu.Unlock()
	}, zerolog.Nop())

	firstErr := make(chan error, 1)
	go func() {
		_, err := v.Rate(context.Background(), "tok", 2)
		firstErr <- err
	}()

	// Wait until the first submission holds a sequence number.
	for {
		v.mu.Lock()
		started := v.seq == 1
		v.mu.Unlock()
		if started {
			break
		}
	}

	if _, err := v.Rate(context.Background(), "tok", 5); err != nil {
		t.Fatalf("second Rate: %v", err)
	}
	close(gate)
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first Rate err = %v, want ErrSuperseded", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != 5 {
		t.Fatalf("reported = %v, want only the latest rating", reported)
	}
	if v.Movie().AvgRating != 5 {
		t.Fatalf("stale response overwrote the view: %+v", v.Movie())
	}
}

func TestRenderFallbacks(t *testing.T) {
	v := New(&stubAPI{}, movieapi.Movie{ID: 1, Title: "Up", Gallery: []string{"/media/a.jpg"}, Trailer: "/media/up.mp4"}, nil, zerolog.Nop())
	media := func(s string) string {
		if s == "" {
			return ""
		}
		return "http://backend" + s
	}
	m := v.Render(media)
	if m.Description != NoDescription || m.Poster != PosterFallback {
		t.Fatalf("fallbacks = %+v", m)
	}
	if m.Trailer != "http://backend/media/up.mp4" || m.Gallery[0] != "http://backend/media/a.jpg" {
		t.Fatalf("media = %+v", m)
	}
	if m.RatingLabel != "(0.0 / 5)" || m.ShowTrailer {
		t.Fatalf("model = %+v", m)
	}
	v.ToggleTrailer()
	if !v.Render(nil).ShowTrailer {
		t.Fatalf("ToggleTrailer did not switch to trailer")
	}
}
