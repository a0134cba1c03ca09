package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/middleware"
	"print-order-service/internal/service"
	"print-order-service/internal/upload"
)

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// requestBaseURL prefers the configured public URL and otherwise rebuilds
// one from the request.
func requestBaseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}

// respondError maps service errors to status codes. Anything unrecognised
// is logged and reported as a 500 with a generic message.
func respondError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, service.ErrMissingIdentity):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyNote),
		errors.Is(err, service.ErrNothingSelected),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, upload.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context()).Error(internalMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
	}
}
