// Package server exposes the workflow, catalog and recording operations over
// a local HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alkime/sonaris/internal/audio"
	"github.com/alkime/sonaris/internal/catalog"
	"github.com/alkime/sonaris/internal/config"
	"github.com/alkime/sonaris/internal/workflow"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Deps are the components served by the API.
type Deps struct {
	Workflow   *workflow.Machine
	Session    *audio.Session
	Recordings *audio.Recordings
	Catalog    *catalog.Catalog
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	deps   Deps
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		deps:   deps,
	}

	setupSentryMiddleware(router, cfg)
	router.Use(requestLogger(logger))
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router returns the underlying gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "port", s.config.Port)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	// stored recordings are served as plain files
	s.router.Use(
		recordingContentType("/recordings", s.config.SampleRate),
		static.Serve("/recordings", static.LocalFile(s.deps.Recordings.Dir(), false)),
	)

	api := s.router.Group("/api/v1")
	{
		api.GET("/chords", s.handleChords)
		api.GET("/styles", s.handleStyles)

		api.GET("/workflow", s.handleWorkflow)
		api.GET("/workflow/events", s.handleWorkflowEvents)
		api.POST("/workflow/key", s.handleConfirmKey)
		api.POST("/workflow/submit", s.handleSubmit)
		api.DELETE("/workflow/keywords/:index", s.handleRemoveKeyword)
		api.POST("/workflow/reset", s.handleReset)

		api.GET("/recording", s.handleRecordingStatus)
		api.POST("/recording/start", s.handleRecordingStart)
		api.POST("/recording/stop", s.handleRecordingStop)
		api.POST("/recording/save", s.handleRecordingSave)

		api.GET("/recordings", s.handleListRecordings)
		api.GET("/recordings/:name/mp3", s.handleRecordingMP3)
		api.POST("/recordings/:name/play", s.handlePlay)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sonaris",
	})
}
