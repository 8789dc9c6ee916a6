package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/perhapsishould/contract-processor/internal/config"
	"github.com/perhapsishould/contract-processor/internal/core/event"
	"github.com/perhapsishould/contract-processor/internal/core/extract"
	"github.com/perhapsishould/contract-processor/internal/core/job"
	"github.com/perhapsishould/contract-processor/internal/core/pipeline"
	"github.com/perhapsishould/contract-processor/internal/core/spool"
	"github.com/perhapsishould/contract-processor/internal/server/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run(ctx context.Context, cfg *config.Config) error {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Logging.Level).Msg("unknown log level, keeping default")
	} else {
		zerolog.SetGlobalLevel(level)
		log.Debug().Str("level", cfg.Logging.Level).Msg("log level configured")
	}

	sp, err := spool.New(cfg.Upload.Dir)
	if err != nil {
		return fmt.Errorf("upload spool: %w", err)
	}

	bus := event.NewBus()
	setupEventLogging(bus)

	registry := job.NewRegistry()

	texts := extract.NewPdftotextExtractor(
		cfg.Extraction.Pdftotext,
		config.ParseTimeout(cfg.Extraction.Timeout, 60*time.Second),
	)
	records := buildStructuredExtractor(cfg.Structured)
	publisher := buildPublisher(cfg.Publishing)

	pipe := pipeline.New(registry, sp, texts, records, publisher, bus)

	e := echo.New()
	e.HideBanner = true

	api.SetupRouter(e, api.RouterConfig{
		Pipeline:      pipe,
		MaxUploadSize: cfg.Upload.MaxSize,
		BaseURL:       cfg.Server.BaseURL,
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info().Str("addr", addr).Msg("HTTP server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}

// setupEventLogging subscribes structured logging for every job lifecycle
// transition so the pipeline itself stays free of presentation concerns.
func setupEventLogging(bus event.Bus) {
	bus.Subscribe(event.EventJobCreated, func(_ context.Context, evt event.JobEvent) {
		log.Info().Str("job_id", evt.JobID).Str("source", evt.SourceName).Msg("job created")
	})
	bus.Subscribe(event.EventJobStarted, func(_ context.Context, evt event.JobEvent) {
		log.Info().Str("job_id", evt.JobID).Msg("job started")
	})
	bus.Subscribe(event.EventJobCompleted, func(_ context.Context, evt event.JobEvent) {
		log.Info().Str("job_id", evt.JobID).Str("location", evt.Location).Msg("job completed")
	})
	bus.Subscribe(event.EventJobFailed, func(_ context.Context, evt event.JobEvent) {
		log.Warn().Str("job_id", evt.JobID).Str("error", evt.Error).Msg("job failed")
	})
}
