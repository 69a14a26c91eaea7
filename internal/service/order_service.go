package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/events"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/pkg/errors"
)

// Order event types
const (
	EventOrderCreated = "order_created"
	EventStatusChange = "status_change"
)

// OrderService places customer orders and applies admin status changes
type OrderService struct {
	repos     *repository.Repositories
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, publisher events.Publisher, logger *zap.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repos:     repos,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ValidateOrder reports every blank customer field and every bad line
func ValidateOrder(req OrderRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.CustomerName) == "" {
		fields["customer_name"] = "required"
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		fields["customer_phone"] = "required"
	}
	if strings.TrimSpace(req.CustomerAddress) == "" {
		fields["customer_address"] = "required"
	}
	if strings.TrimSpace(req.PaymentRef) == "" {
		fields["bkash_trxid"] = "required"
	}
	if len(req.Details.Items) == 0 {
		fields["order_details.items"] = "at least one item is required"
	}
	for i, item := range req.Details.Items {
		if item.Quantity <= 0 {
			fields["order_details.items["+strconv.Itoa(i)+"].quantity"] = "must be positive"
		}
		if item.Price.IsNegative() {
			fields["order_details.items["+strconv.Itoa(i)+"].price"] = "must not be negative"
		}
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Fields: fields}
	}
	return nil
}

// PlaceOrder stores a pending order. When idempotencyKey is set the key is
// recorded against the new order so a retry with the same key returns it.
func (s *OrderService) PlaceOrder(ctx context.Context, req OrderRequest, idempotencyKey, requestHash string) (*domain.Order, error) {
	if err := ValidateOrder(req); err != nil {
		return nil, err
	}

	lines := req.lines()
	total := domain.LinesTotal(lines)
	if !req.Details.Total.Equal(total) {
		s.logger.Warn("Order total differs from its lines, using computed total",
			zap.String("submitted", req.Details.Total.String()),
			zap.String("computed", total.String()),
		)
	}

	now := s.now()
	order := &domain.Order{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		PaymentRef:      strings.TrimSpace(req.PaymentRef),
		Details: domain.OrderDetails{
			Items: lines,
			Total: total,
			Notes: strings.TrimSpace(req.Details.Notes),
		},
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order in database", zap.Error(err))
		return nil, &errors.ErrUpstream{Service: "database", Message: err.Error()}
	}
	s.logger.Info("Order placed", zap.Int64("order_id", order.ID), zap.String("total", total.String()))

	if idempotencyKey != "" {
		if err := s.repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
			Key:         idempotencyKey,
			OrderID:     order.ID,
			RequestHash: requestHash,
		}); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	s.recordEvent(ctx, order.ID, EventOrderCreated, map[string]interface{}{
		"status": order.Status,
		"total":  total.String(),
	})
	s.publish(ctx, events.TopicOrderPlaced, order.ID, events.NewOrderPlaced(order))

	return order, nil
}

// GetOrder returns *errors.ErrNotFound for an unknown id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repos.Order.GetByID(ctx, id)
}

// UpdateStatus sets an order's status
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{
			Message: "Invalid status",
			Fields:  map[string]string{"status": "must be one of pending, confirmed, shipped, delivered"},
		}
	}

	current, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Order.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if current.Status != status {
		s.recordEvent(ctx, id, EventStatusChange, map[string]interface{}{
			"from": current.Status,
			"to":   status,
		})
		s.publish(ctx, events.TopicOrderStatusChanged, id, events.OrderStatusChanged{
			OrderID:   id,
			From:      current.Status,
			To:        status,
			ChangedAt: updated.UpdatedAt,
		})
	}

	return updated, nil
}

// History returns the audit trail of an order, oldest first
func (s *OrderService) History(ctx context.Context, id int64) ([]*domain.OrderEvent, error) {
	return s.repos.OrderEvent.GetByOrderID(ctx, id)
}

func (s *OrderService) recordEvent(ctx context.Context, orderID int64, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.Int64("order_id", orderID), zap.String("event_type", eventType), zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, topic string, orderID int64, event interface{}) {
	if err := s.publisher.Publish(ctx, topic, strconv.FormatInt(orderID, 10), event); err != nil {
		s.logger.Warn("Failed to publish order event", zap.String("topic", topic), zap.Int64("order_id", orderID), zap.Error(err))
	}
}
