package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/pkg/errors"
)

// respondError maps the typed errors to HTTP statuses. Anything untyped is a
// gateway failure: 500 with the gateway's message, or fallback when it has none.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		body := gin.H{"error": e.Error()}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
	case *errors.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": e.Error()})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = fallback
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
