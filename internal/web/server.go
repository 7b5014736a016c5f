// Package web serves the browser: the login screen, the catalog page with its
// modals, and the live view websocket driving the timed parts of the page.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"cinestream/internal/authview"
	"cinestream/internal/metrics"
	"cinestream/internal/session"
	"cinestream/internal/shell"
	"cinestream/pkg/auth"
)

const (
	catalogPath     = "/movies"
	defaultLoadWait = 2 * time.Second
)

// API is the backend surface the pages need.
type API interface {
	authview.API
	shell.API
	MediaURL(ref string) string
}

type Options struct {
	API      API
	Sessions *session.Manager
	Shells   *shell.Registry
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer     prometheus.Gatherer
	MetricsToken string
	// LoadWait bounds how long a catalog request waits for the movie list
	// before answering with the loading page.
	LoadWait time.Duration
	Logger   zerolog.Logger
	Now      func() time.Time
}

type Server struct {
	api      API
	sessions *session.Manager
	shells   *shell.Registry
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	token    string
	loadWait time.Duration
	log      zerolog.Logger
	now      func() time.Time
	tpl      templates
}

func New(opts Options) *Server {
	if opts.LoadWait <= 0 {
		opts.LoadWait = defaultLoadWait
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		api:      opts.API,
		sessions: opts.Sessions,
		shells:   opts.Shells,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		token:    opts.MetricsToken,
		loadWait: opts.LoadWait,
		log:      opts.Logger.With().Str("component", "web").Logger(),
		now:      opts.Now,
		tpl:      parseTemplates(opts.API.MediaURL),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		h := metrics.Handler(s.gatherer)
		if s.token != "" {
			h = auth.TokenMiddleware(auth.MetricsHeader, s.token)(h)
		}
		r.Method(http.MethodGet, "/metrics", h)
	}

	r.With(s.sessions.RedirectIfAuthenticated(catalogPath)).Get("/", s.handleAuthPage)
	r.Post("/auth", s.handleAuth)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.RequireCredential)
		r.Get(catalogPath, s.handleCatalog)
		r.Get(catalogPath+"/live", s.handleLive)
		r.Post(catalogPath+"/new", s.handleNew)
		r.Post(catalogPath+"/{id}/view", s.handleView)
		r.Post(catalogPath+"/{id}/edit", s.handleEdit)
		r.Post(catalogPath+"/{id}/delete", s.handleRequestDelete)
		r.Post("/delete/confirm", s.handleConfirmDelete)
		r.Post("/delete/cancel", s.handleCancelDelete)
		r.Post("/modal/close", s.handleCloseModal)
		r.Post("/modal/trailer", s.handleToggleTrailer)
		r.Post("/modal/rate", s.handleRate)
		r.Post("/modal/save", s.handleSave)
		r.Post("/categories/toggle", s.handleToggleCategory)
	})
	return r
}

// shellFor returns the view state of the signed-in browser behind r.
func (s *Server) shellFor(r *http.Request) *shell.Shell {
	claims := session.ClaimsFromContext(r.Context())
	return s.shells.Get(claims.SessionID, claims.Credential, s.now())
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var err error
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	switch name {
	case "auth":
		err = s.tpl.auth.Execute(w, data)
	case "catalog":
		err = s.tpl.catalog.Execute(w, data)
	default:
		err = s.tpl.status.Execute(w, data)
	}
	if err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func backToCatalog(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, catalogPath, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
