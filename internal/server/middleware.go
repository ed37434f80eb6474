package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/alkime/sonaris/internal/audio"
	"github.com/alkime/sonaris/internal/config"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sentryTimeout = 2 * time.Second

// setupSecurityMiddleware configures and applies security middleware to the router
func setupSecurityMiddleware(router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	// HSTS only makes sense behind TLS in production
	stsSeconds := int64(0)
	if cfg.Env == config.EnvProduction {
		stsSeconds = int64(cfg.HSTSMaxAge)
	}

	secureMiddleware := secure.New(secure.Config{
		STSSeconds:            stsSeconds,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: config.BuildCSP(cfg.CSPMode),
	})
	router.Use(secureMiddleware)

	logger.Debug("Configured security middleware",
		"hsts_enabled", stsSeconds > 0,
		"csp_mode", cfg.CSPMode,
	)
}

// setupSentryMiddleware attaches a Sentry hub to every request when error
// reporting is configured.
func setupSentryMiddleware(router *gin.Engine, cfg *config.Config) {
	if cfg.SentryDSN == "" {
		return
	}

	router.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryTimeout,
	}))
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= 500:
			logger.Error("Request failed", attrs...)
		case status >= 400:
			logger.Warn("Request rejected", attrs...)
		default:
			logger.Debug("Request completed", attrs...)
		}
	}
}

// recordingContentType labels files under prefix with the PCM media type
// instead of the one implied by their .webm extension.
func recordingContentType(prefix string, sampleRate int) gin.HandlerFunc {
	contentType := audio.ContentType(sampleRate)

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix+"/") {
			c.Header("Content-Type", contentType)
		}
		c.Next()
	}
}
