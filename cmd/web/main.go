package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cinestream/internal/catalog"
	"cinestream/internal/config"
	"cinestream/internal/metrics"
	"cinestream/internal/movieapi"
	"cinestream/internal/session"
	"cinestream/internal/shell"
	"cinestream/internal/web"
	"cinestream/pkg/logger"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.LoadFromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	api := movieapi.New(movieapi.Options{
		BaseURL:  cfg.BackendURL,
		APIURL:   cfg.APIBaseURL(),
		LoginURL: cfg.LoginURL(),
		Timeout:  cfg.HTTPTimeout,
		Logger:   log,
		Metrics:  m,
	})
	shellCfg := shell.Config{
		Catalog: catalog.Options{
			TrailerInterval: cfg.UI.TrailerInterval,
			ScrollStep:      cfg.UI.ScrollStep,
			ScrollFrame:     cfg.UI.ScrollFrame,
			LatestLimit:     cfg.UI.LatestLimit,
			Preview:         cfg.UI.CategoryPreview,
		},
		FormCloseDelay: cfg.UI.FormCloseDelay,
	}
	shells := shell.NewRegistry(cfg.SessionIdle, func(id string, cred movieapi.Credential) *shell.Shell {
		return shell.New(id, cred, api, shellCfg, log)
	})
	defer shells.CloseAll()

	srv := web.New(web.Options{
		API:          api,
		Sessions:     session.NewManager(cfg.AppSecret, cfg.CookieSecure),
		Shells:       shells,
		Metrics:      m,
		Gatherer:     reg,
		MetricsToken: cfg.MetricsToken,
		Logger:       log,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", httpSrv.Addr).Str("backend", cfg.APIBaseURL()).Msg("web client listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweepSessions(ctx, shells, log)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Dur("timeout", cfg.ShutdownDrain).Msg("draining connections")
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDrain)
		defer cancel()
		return httpSrv.Shutdown(drainCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		shells.CloseAll()
		os.Exit(1)
	}
	log.Info().Msg("server stopped cleanly")
}

// sweepSessions drops idle sessions until ctx is done.
func sweepSessions(ctx context.Context, shells *shell.Registry, log zerolog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := shells.Sweep(now); n > 0 {
				log.Debug().Int("dropped", n).Int("live", shells.Len()).Msg("idle sessions swept")
			}
		}
	}
}
