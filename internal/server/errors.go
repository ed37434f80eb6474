package server

import (
	"errors"
	"net/http"

	"github.com/alkime/sonaris/internal/apperr"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

type errorKind struct {
	err    error
	status int
	name   string
}

var errorKinds = []errorKind{
	{apperr.ErrAuth, http.StatusUnauthorized, "auth"},
	{apperr.ErrPermission, http.StatusForbidden, "permission"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrBusy, http.StatusConflict, "busy"},
	{apperr.ErrState, http.StatusConflict, "state"},
	{apperr.ErrProvider, http.StatusBadGateway, "provider"},
	{apperr.ErrIO, http.StatusInternalServerError, "io"},
}

// classify maps an error to its HTTP status and kind name.
func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.name
		}
	}

	return http.StatusInternalServerError, "internal"
}

// respondError writes err as JSON and reports server-side failures to Sentry.
func respondError(c *gin.Context, err error) {
	status, kind := classify(err)

	if status >= http.StatusInternalServerError {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"kind":  kind,
	})
}
