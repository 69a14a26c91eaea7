package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/config"
)

const (
	AdminCookieName   = "admin_auth"
	adminCookieValue  = "1"
	adminCookieMaxAge = 8 * 60 * 60
)

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// HandleAdminLogin handles POST /api/admin/login
func HandleAdminLogin(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
			return
		}

		if !cfg.Admin.CredentialsConfigured() {
			logger.Error("Admin login attempted but ADMIN_USER/ADMIN_PASS are not set")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Admin credentials not configured"})
			return
		}

		userOK := secureEqual(req.Username, cfg.Admin.Username)
		passOK := secureEqual(req.Password, cfg.Admin.Password)
		if !userOK || !passOK {
			logger.Info("Admin login rejected", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid credentials"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(AdminCookieName, adminCookieValue, adminCookieMaxAge, "/", "", cfg.Environment == "production", true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HandleAdminCheck handles GET /api/admin/check
func HandleAdminCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(AdminCookieName)
		if err != nil || value != adminCookieValue {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
