package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/claydohscope/storefront/internal/api"
	"github.com/claydohscope/storefront/internal/auth"
	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/events"
	"github.com/claydohscope/storefront/internal/objectstore"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/internal/repository/postgres"
	"github.com/claydohscope/storefront/internal/service"
)

const sessionPurgeInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting storefront API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("auth_provider", cfg.AuthProvider),
		zap.String("storage_provider", cfg.Storage.Provider),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run migrations
	if err := postgres.RunMigrations(ctx, db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	gateway := newAuthGateway(ctx, cfg, repos, logger)
	objects, err := newObjectStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	publisher := events.New(cfg.Kafka.Brokers, logger)
	defer publisher.Close()
	if len(cfg.Kafka.Brokers) > 0 {
		logger.Info("Publishing order events to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	router := api.NewRouter(cfg, api.Deps{
		Repos:   repos,
		Auth:    auth.NewAuthorizer(gateway, cfg.Admin.AllowedEmail, logger),
		Orders:  service.NewOrderService(repos, publisher, logger),
		Objects: objects,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  2 * time.Minute, // media uploads
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func newAuthGateway(ctx context.Context, cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) auth.Gateway {
	if cfg.AuthProvider == config.AuthProviderSupabase {
		return auth.NewSupabaseGateway(cfg.Supabase.URL, cfg.Supabase.AnonKey, logger)
	}

	local := auth.NewLocalGateway(repos.AdminUser, repos.Session, logger)
	go runSessionPurgeLoop(ctx, local, logger)
	return local
}

// runSessionPurgeLoop deletes expired access tokens on startup and then every hour
func runSessionPurgeLoop(ctx context.Context, gateway *auth.LocalGateway, logger *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		if _, err := gateway.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Session purge failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func newObjectStore(cfg *config.Config, logger *zap.Logger) (objectstore.Store, error) {
	if cfg.Storage.Provider == config.StorageProviderSupabase {
		return objectstore.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, logger), nil
	}
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, err
	}
	return objectstore.NewDiskStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL, logger)
}
