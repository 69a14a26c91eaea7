// Package memory implements the repository interfaces in process memory.
// Records are copied on the way in and out so callers never share state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/pkg/errors"
)

// NewRepositories returns an empty in-memory repository set
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Product:        &ProductRepository{},
		Order:          &OrderRepository{},
		Media:          &MediaRepository{},
		IdempotencyKey: &IdempotencyKeyRepository{},
		OrderEvent:     &OrderEventRepository{},
		AdminUser:      &AdminUserRepository{},
		Session:        &SessionRepository{},
	}
}

func now() time.Time { return time.Now().UTC() }

type ProductRepository struct {
	mu       sync.Mutex
	nextID   int64
	products []domain.Product
	// Err, when set, is returned by every call
	Err error
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*domain.Product, 0, len(r.products))
	for i := range r.products {
		p := r.products[i]
		out = append(out, &p)
	}
	return out, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: strconv.FormatInt(id, 10)}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	product.ID = r.nextID
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now()
	}
	r.products = append(r.products, *product)
	return nil
}

type OrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders []domain.Order
	Err    error
}

func copyOrder(o domain.Order) *domain.Order {
	o.Details.Items = append([]domain.OrderLine{}, o.Details.Items...)
	return &o
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	order.ID = r.nextID
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	r.orders = append(r.orders, *copyOrder(*order))
	return nil
}

func (r *OrderRepository) find(id int64) int {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.find(id)
	if i < 0 {
		return nil, &errors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(id, 10)}
	}
	return copyOrder(r.orders[i]), nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, copyOrder(o))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *OrderRepository) FindByPaymentRef(ctx context.Context, ref string) ([]*domain.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	out := []*domain.Order{}
	for _, o := range all {
		if strings.EqualFold(strings.TrimSpace(o.PaymentRef), ref) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.find(id)
	if i < 0 {
		return nil, &errors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(id, 10)}
	}
	r.orders[i].Status = status
	r.orders[i].UpdatedAt = now()
	return copyOrder(r.orders[i]), nil
}

type MediaRepository struct {
	mu    sync.Mutex
	items []domain.Media
	Err   error
}

func (r *MediaRepository) Create(ctx context.Context, media *domain.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = now()
	}
	r.items = append(r.items, *media)
	return nil
}

func (r *MediaRepository) List(ctx context.Context) ([]*domain.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*domain.Media, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		m := r.items[i]
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type IdempotencyKeyRepository struct {
	mu   sync.Mutex
	keys map[string]domain.IdempotencyKey
}

func (r *IdempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *IdempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keys == nil {
		r.keys = map[string]domain.IdempotencyKey{}
	}
	if _, ok := r.keys[key.Key]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint on idempotency_keys")
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now()
	}
	r.keys[key.Key] = *key
	return nil
}

type OrderEventRepository struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (r *OrderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *OrderEventRepository) GetByOrderID(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OrderEvent
	for _, e := range r.events {
		if e.OrderID == orderID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

type AdminUserRepository struct {
	mu    sync.Mutex
	users []domain.AdminUser
}

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "admin_user", ID: email}
}

func (r *AdminUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "admin_user", ID: id.String()}
}

func (r *AdminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == user.Email {
			return &errors.ErrConflict{Message: "admin user already exists: " + user.Email}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *AdminUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "admin_user", ID: id.String()}
}

type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.AdminSession
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions == nil {
		r.sessions = map[string]domain.AdminSession{}
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.sessions[session.TokenLookup] = *session
	return nil
}

func (r *SessionRepository) GetByLookup(ctx context.Context, lookup string, at time.Time) (*domain.AdminSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[lookup]
	if !ok || !s.ExpiresAt.After(at) {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepository) DeleteByLookup(ctx context.Context, lookup string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, lookup)
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, s := range r.sessions {
		if !s.ExpiresAt.After(at) {
			delete(r.sessions, k)
			n++
		}
	}
	return n, nil
}

var (
	_ repository.ProductRepository        = (*ProductRepository)(nil)
	_ repository.OrderRepository          = (*OrderRepository)(nil)
	_ repository.MediaRepository          = (*MediaRepository)(nil)
	_ repository.IdempotencyKeyRepository = (*IdempotencyKeyRepository)(nil)
	_ repository.OrderEventRepository     = (*OrderEventRepository)(nil)
	_ repository.AdminUserRepository      = (*AdminUserRepository)(nil)
	_ repository.SessionRepository        = (*SessionRepository)(nil)
)
