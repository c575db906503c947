package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/supporthub/backend/internal/ai"
	"github.com/supporthub/backend/internal/auth"
	"github.com/supporthub/backend/internal/config"
	"github.com/supporthub/backend/internal/dashboard"
	"github.com/supporthub/backend/internal/db"
	httpapi "github.com/supporthub/backend/internal/http"
	"github.com/supporthub/backend/internal/realtime"
	"github.com/supporthub/backend/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "supporthub-backend").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	// The database may still be coming up alongside us.
	pingPolicy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(func() error {
		return store.Ping(ctx)
	}, backoff.WithContext(pingPolicy, ctx)); err != nil {
		logger.Fatal().Err(err).Msg("database unreachable")
	}

	var summarizer ai.Summarizer
	if cfg.AIURL == "" {
		summarizer = ai.MockSummarizer{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock AI summarizer")
	} else {
		summarizer = &ai.HTTPSummarizer{BaseURL: cfg.AIURL, Model: cfg.AIModel, APIKey: cfg.AIKey}
	}

	authSvc := &auth.Service{Store: store, Domain: cfg.AllowedDomain, SessionTTL: cfg.SessionTTL}

	bucketer, err := stats.NewBucketer(stats.DefaultBucketWidth)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid bucket width")
	}

	bus := realtime.NewBus()
	refresher := &dashboard.Refresher{
		Fetch:    dashboard.PhaseScopedFetch(store),
		Bucketer: bucketer,
		Interval: cfg.RefreshInterval,
		Logger:   logger,
	}
	invalidations, cancelSub := bus.Subscribe()
	defer cancelSub()
	go refresher.Run(ctx, invalidations)

	router := httpapi.Router(cfg, store, authSvc, summarizer, refresher, bus, bucketer, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
