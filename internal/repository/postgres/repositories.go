package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &repository.Repositories{
		Product:        NewProductRepository(db, logger),
		Order:          NewOrderRepository(db, logger),
		Media:          NewMediaRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
		OrderEvent:     NewOrderEventRepository(db, logger),
		AdminUser:      NewAdminUserRepository(db, logger),
		Session:        NewSessionRepository(db, logger),
	}
}
