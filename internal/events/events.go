package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
)

// Topics
const (
	TopicOrderPlaced        = "orders.placed"
	TopicOrderStatusChanged = "orders.status_changed"
)

// OrderPlaced is published after an order is stored
type OrderPlaced struct {
	OrderID      int64           `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"item_count"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// OrderStatusChanged is published after an admin changes an order's status
type OrderStatusChanged struct {
	OrderID   int64              `json:"order_id"`
	From      domain.OrderStatus `json:"from"`
	To        domain.OrderStatus `json:"to"`
	ChangedAt time.Time          `json:"changed_at"`
}

// NewOrderPlaced builds the event for a stored order
func NewOrderPlaced(order *domain.Order) OrderPlaced {
	count := 0
	for _, line := range order.Details.Items {
		count += line.Quantity
	}
	return OrderPlaced{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Total:        order.Details.Total,
		ItemCount:    count,
		PlacedAt:     order.CreatedAt,
	}
}

// Publisher sends domain events to a message broker
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes JSON events with kafka-go
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to brokers. The topic is set per message.
func NewKafkaPublisher(brokers []string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		p.logger.Error("Failed to publish event", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic, key string, event interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

// New returns a KafkaPublisher when brokers are configured, otherwise a NopPublisher
func New(brokers []string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, logger)
}
