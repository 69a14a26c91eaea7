package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/api/handlers"
	"github.com/claydohscope/storefront/internal/api/middleware"
	"github.com/claydohscope/storefront/internal/auth"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/objectstore"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/internal/service"
)

// Deps are the components the handlers are built from
type Deps struct {
	Repos   *repository.Repositories
	Auth    *auth.Authorizer
	Orders  *service.OrderService
	Objects objectstore.Store
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Deps, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Claydohscope storefront API",
			"endpoints": []string{
				"GET /health",
				"GET /api/products",
				"POST /api/orders",
				"POST /api/auth/token",
				"POST /api/admin/login",
				"GET /api/admin/check",
				"POST /api/admin/products",
				"GET /api/admin/orders",
				"PATCH /api/admin/orders/:id",
				"GET /api/admin/media",
				"POST /api/admin/media",
				"POST /api/admin/uploads/:bucket",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.Storage.Provider == config.StorageProviderDisk && cfg.Storage.Dir != "" {
		router.Static("/media-files", cfg.Storage.Dir)
	}

	requireUser := middleware.RequireUser(deps.Auth, logger)
	requireAdmin := middleware.RequireAdmin(deps.Auth, logger)

	api := router.Group("/api")
	{
		// Storefront routes
		api.GET("/products", handlers.HandleListProducts(deps.Repos, logger))
		api.POST("/orders",
			middleware.IdempotencyMiddleware(deps.Repos.IdempotencyKey, logger),
			handlers.HandlePlaceOrder(deps.Orders, logger),
		)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/token", handlers.HandleIssueToken(deps.Auth.Gateway(), logger))
			authRoutes.POST("/logout", requireUser, handlers.HandleSignOut(deps.Auth.Gateway(), logger))
		}

		admin := api.Group("/admin")
		{
			// Cookie session, independent of the bearer token routes below
			admin.POST("/login", handlers.HandleAdminLogin(cfg, logger))
			admin.GET("/check", handlers.HandleAdminCheck())

			admin.POST("/products", requireAdmin, handlers.HandleCreateProduct(deps.Repos, logger))
			admin.GET("/orders", requireAdmin, handlers.HandleListOrders(deps.Repos, logger))
			admin.PATCH("/orders/:id", requireAdmin, handlers.HandleUpdateOrderStatus(deps.Orders, logger))
			admin.GET("/orders/:id/events", requireAdmin, handlers.HandleOrderHistory(deps.Orders, logger))

			admin.GET("/media", requireUser, handlers.HandleListMedia(deps.Repos, logger))
			admin.POST("/media", requireUser, handlers.HandleCreateMedia(deps.Repos, logger))
			admin.POST("/uploads/:bucket", requireUser, handlers.HandleUpload(deps.Objects, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
