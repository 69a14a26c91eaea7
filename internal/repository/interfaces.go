package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/claydohscope/storefront/internal/domain"
)

// ProductRepository defines catalog data access methods
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
}

// OrderRepository defines customer order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// List returns every order, newest first
	List(ctx context.Context) ([]*domain.Order, error)
	// FindByPaymentRef matches the bKash transaction ID case-insensitively, newest first
	FindByPaymentRef(ctx context.Context, ref string) ([]*domain.Order, error)
	// UpdateStatus returns *errors.ErrNotFound when no order has the id
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

// MediaRepository defines gallery media data access methods
type MediaRepository interface {
	Create(ctx context.Context, media *domain.Media) error
	// List returns every media item, newest first
	List(ctx context.Context) ([]*domain.Media, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// OrderEventRepository defines order event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error)
}

// AdminUserRepository defines local admin account data access methods
type AdminUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	Create(ctx context.Context, user *domain.AdminUser) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// SessionRepository defines access token data access methods
type SessionRepository interface {
	Create(ctx context.Context, session *domain.AdminSession) error
	// GetByLookup returns nil, nil when no unexpired session matches
	GetByLookup(ctx context.Context, lookup string, now time.Time) (*domain.AdminSession, error)
	DeleteByLookup(ctx context.Context, lookup string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Product        ProductRepository
	Order          OrderRepository
	Media          MediaRepository
	IdempotencyKey IdempotencyKeyRepository
	OrderEvent     OrderEventRepository
	AdminUser      AdminUserRepository
	Session        SessionRepository
}
