// Command server runs the call-digest backend: a webhook ingest service that
// claims call-completion events in a SQLite ledger, drives each fresh claim
// through download → transcribe → summarize → publish, and exposes inspection
// endpoints over HTTP.
//
//	@title			Call Digest Backend API
//	@version		1.0
//	@description	Webhook ingest and processing pipeline for support-call recordings.
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/nkhandel/go-call-digest-backend/docs"
	"github.com/nkhandel/go-call-digest-backend/internal/config"
	"github.com/nkhandel/go-call-digest-backend/internal/directory"
	httpapi "github.com/nkhandel/go-call-digest-backend/internal/http"
	"github.com/nkhandel/go-call-digest-backend/internal/observability"
	"github.com/nkhandel/go-call-digest-backend/internal/providers"
	"github.com/nkhandel/go-call-digest-backend/internal/repo"
	"github.com/nkhandel/go-call-digest-backend/internal/services"
	"github.com/nkhandel/go-call-digest-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op when disabled).
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Ledger.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open ledger")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate ledger")
	}

	// Agent directory, hot-reloaded on file change.
	dir := directory.New(cfg.AgentDirPath)
	if err := dir.Load(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.AgentDirPath).Msg("load agent directory")
	}
	log.Info().Int("agents", dir.Len()).Str("path", cfg.AgentDirPath).Msg("agent directory loaded")
	go func() {
		if err := dir.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("directory watcher stopped")
		}
	}()

	// Optional customer lookup.
	var customers services.CustomerNamer
	if cfg.CustomerDataPath != "" {
		cl := providers.NewCustomerLookup(cfg.CustomerDataPath)
		if err := cl.Load(); err != nil {
			log.Fatal().Err(err).Str("path", cfg.CustomerDataPath).Msg("load customer data")
		}
		log.Info().Int("customers", cl.Len()).Msg("customer lookup loaded")
		customers = cl
	}

	// Outbound collaborators.
	recordings := providers.NewRecordingClient(cfg.Providers.ExotelAPIKey, cfg.Providers.ExotelAPIToken, cfg.Pipeline.DownloadTimeout)
	transcriber := providers.NewTranscribeClient(cfg.Providers.DeepgramAPIKey, cfg.Pipeline.TranscribeTimeout)
	summarizer := providers.NewSummarizeClient(cfg.Providers.SummarizerURL, cfg.Providers.SummarizerAPIKey, cfg.Pipeline.SummarizeTimeout)
	notifier := providers.NewNotifyClient(cfg.Providers.SlackWebhookURL, cfg.Pipeline.PublishTimeout)

	coord := services.NewCoordinator(db, dir, recordings, transcriber, summarizer, notifier, customers, services.CoordinatorOpts{
		MaxConcurrent:     cfg.Pipeline.MaxConcurrent,
		MaxRetries:        cfg.Pipeline.MaxRetries,
		RetryInterval:     cfg.Pipeline.RetryInterval,
		DownloadTimeout:   cfg.Pipeline.DownloadTimeout,
		TranscribeTimeout: cfg.Pipeline.TranscribeTimeout,
		SummarizeTimeout:  cfg.Pipeline.SummarizeTimeout,
		PublishTimeout:    cfg.Pipeline.PublishTimeout,
	})

	// Background release of claims orphaned by a crash mid-pipeline.
	reaper := services.NewReaper(db)
	reaper.Cutoff = cfg.Pipeline.ReaperCutoff
	reaper.Interval = cfg.Pipeline.ReaperInterval
	go reaper.Run(ctx)

	// HTTP transport.
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, coord, dir, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Stop the listener first, then let claimed calls finish their pipelines.
	shCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := coord.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("pipelines did not drain in time")
	}
	log.Info().Msg("server stopped")
}
