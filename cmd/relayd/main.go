package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kemsio/relayd/internal/adapter/freesms"
	"github.com/kemsio/relayd/internal/adapter/githubactions"
	relayhttp "github.com/kemsio/relayd/internal/adapter/http"
	"github.com/kemsio/relayd/internal/adapter/notionapi"
	relayotel "github.com/kemsio/relayd/internal/adapter/otel"
	"github.com/kemsio/relayd/internal/adapter/stravaapi"
	"github.com/kemsio/relayd/internal/config"
	"github.com/kemsio/relayd/internal/logger"
	"github.com/kemsio/relayd/internal/port/workflow"
	"github.com/kemsio/relayd/internal/processor"
	"github.com/kemsio/relayd/internal/resilience"
	"github.com/kemsio/relayd/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded", "port", cfg.Server.Port, "log_level", cfg.Logging.Level)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownOtel, err := relayotel.Setup(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(flushCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := relayotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- External clients ---
	sms := freesms.NewGateway(cfg.SMS.URL, cfg.SMS.User, cfg.SMS.Pass)
	sms.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	actions := githubactions.NewClient()
	actions.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	notion := notionapi.NewClient(cfg.Notion.BaseURL, cfg.Notion.APIToken)
	strava := stravaapi.NewClient(cfg.Strava)

	// --- Processor registry ---
	registry := processor.Assemble(processor.Deps{
		Fitness:           strava,
		Pages:             notion,
		SimpleToken:       cfg.Simple.Token,
		NotionSecret:      cfg.Notion.WebhookSecret,
		StravaVerifyToken: cfg.Strava.VerifyToken,
		Triggers:          loadTriggers(),
	})
	slog.Info("processors registered", "order", registry.Names())

	dispatcher := service.NewDispatcher(registry, sms, actions, metrics)

	// --- HTTP ---
	handlers := &relayhttp.Handlers{Dispatcher: dispatcher}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(relayhttp.Logger)
	r.Use(relayotel.HTTPMiddleware(cfg.Logging.Service))

	relayhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// loadTriggers reads the per-source GitHub trigger settings. A source
// without complete settings simply runs without a CI trigger.
func loadTriggers() processor.Triggers {
	return processor.Triggers{
		Cal:    optionalTrigger("CAL_", 0),
		Strava: optionalTrigger("STRAVA_", 0),
		Notion: optionalTrigger("NOTION_", 5*time.Second),
		Gmail:  optionalTrigger("GMAIL_", 5*time.Minute),
	}
}

func optionalTrigger(prefix string, defaultCooldown time.Duration) *workflow.Settings {
	s, err := config.LoadTrigger(prefix, defaultCooldown)
	if err != nil {
		slog.Info("no CI trigger for source", "prefix", prefix, "reason", err)
		return nil
	}
	return s
}
