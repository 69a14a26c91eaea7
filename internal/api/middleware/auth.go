package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/auth"
	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/pkg/errors"
)

const (
	UserContextKey  = "user"
	TokenContextKey = "access_token"
)

// RequireUser admits any authenticated user. The header must use the Bearer
// scheme and every failure answers 401 "Unauthorized".
func RequireUser(authz *auth.Authorizer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := authz.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("Rejected request", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserContextKey, user)
		c.Set(TokenContextKey, token)
		c.Next()
	}
}

// RequireAdmin admits an authenticated user whose email matches the admin
// allowlist: 401 for a missing or invalid token, 403 for any other identity.
func RequireAdmin(authz *auth.Authorizer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.Replace(c.GetHeader("Authorization"), "Bearer ", "", 1))

		user, err := authz.AuthenticateAdmin(c.Request.Context(), token)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrForbidden:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": e.Error()})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
			}
			return
		}

		c.Set(UserContextKey, user)
		c.Set(TokenContextKey, token)
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	user, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}

	u, ok := user.(*domain.User)
	return u, ok
}

// GetTokenFromContext retrieves the validated access token
func GetTokenFromContext(c *gin.Context) string {
	return c.GetString(TokenContextKey)
}
