package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/api/middleware"
	"github.com/claydohscope/storefront/internal/auth"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleIssueToken handles POST /api/auth/token
func HandleIssueToken(gateway auth.Gateway, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
			return
		}
		email := strings.TrimSpace(req.Email)
		if email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}

		session, err := gateway.SignIn(c.Request.Context(), email, req.Password)
		if err != nil {
			respondError(c, logger, err, "Sign-in failed")
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// HandleSignOut handles POST /api/auth/logout
func HandleSignOut(gateway auth.Gateway, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gateway.SignOut(c.Request.Context(), middleware.GetTokenFromContext(c)); err != nil {
			respondError(c, logger, err, "Sign-out failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
