package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

// OrdersAPI is the order surface used by the orders view
type OrdersAPI interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

type OrdersView struct {
	api OrdersAPI
	inflight

	mu     sync.RWMutex
	orders []domain.Order
}

func NewOrdersView(api OrdersAPI) *OrdersView {
	return &OrdersView{api: api}
}

// Refresh refetches all orders, newest first
func (v *OrdersView) Refresh(ctx context.Context) ([]domain.Order, error) {
	orders, err := v.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.orders = orders
	v.mu.Unlock()
	return orders, nil
}

func (v *OrdersView) Orders() []domain.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Order, len(v.orders))
	copy(out, v.orders)
	return out
}

// SetStatus changes one order's status and refetches the list
func (v *OrdersView) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &pkgerrors.ErrValidation{Fields: map[string]string{"status": "must be one of pending, confirmed, shipped, delivered"}}
	}
	if err := v.begin(); err != nil {
		return nil, err
	}
	defer v.end()

	order, err := v.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if _, err := v.Refresh(ctx); err != nil {
		return order, fmt.Errorf("status updated but list refresh failed: %w", err)
	}
	return order, nil
}
