package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alkime/sonaris/internal/app"
	"github.com/alkime/sonaris/internal/config"
	"github.com/alkime/sonaris/internal/logger"
	"github.com/alkime/sonaris/internal/server"
	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logger := logger.SetupLogger(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{ //nolint:exhaustruct // defaults for the rest
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			Release:     "sonaris@" + releaseVersion,
			Debug:       cfg.Env != config.EnvProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					delete(event.Request.Headers, "Authorization")
					delete(event.Request.Headers, "Cookie")
				}

				return event
			},
		}); err != nil {
			logger.Error("Failed to initialize Sentry", "error", err)
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1) //nolint:gocritic // nothing to flush before startup
	}

	logger.Info("Starting Sonaris server",
		"env", cfg.Env,
		"port", cfg.Port,
		"data_dir", a.Dir,
		"release", releaseVersion,
	)

	srv := server.New(cfg, logger, server.Deps{
		Workflow:   a.Workflow(""),
		Session:    a.Session,
		Recordings: a.Recordings,
		Catalog:    a.Catalog,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		sentry.CaptureException(err)
		logger.Error("Server stopped with error", "error", err)
		stop()
		sentry.Flush(sentryFlushTimeout)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
