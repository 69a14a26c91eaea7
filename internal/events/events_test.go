package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: zap.NewNop()}

	order := &domain.Order{
		ID:           42,
		CustomerName: "Nadia",
		Details: domain.OrderDetails{
			Items: []domain.OrderLine{
				{ID: 1, Name: "Bunny", Price: decimal.NewFromInt(500), Quantity: 2},
				{ID: 2, Name: "Frog", Price: decimal.NewFromInt(200), Quantity: 1},
			},
			Total: decimal.NewFromInt(1200),
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, p.Publish(t.Context(), TopicOrderPlaced, "42", NewOrderPlaced(order)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, TopicOrderPlaced, w.msgs[0].Topic)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.JSONEq(t,
		`{"order_id":42,"customer_name":"Nadia","total":1200,"item_count":3,"placed_at":"2026-01-02T03:04:05Z"}`,
		string(w.msgs[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: fmt.Errorf("broker down")}, logger: zap.NewNop()}

	err := p.Publish(t.Context(), TopicOrderStatusChanged, "1", OrderStatusChanged{OrderID: 1})
	assert.EqualError(t, err, "broker down")
}

func TestKafkaPublisher_MarshalError(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: zap.NewNop()}

	err := p.Publish(t.Context(), TopicOrderPlaced, "1", map[string]interface{}{"bad": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, w.msgs)
}

func TestNew(t *testing.T) {
	assert.IsType(t, NopPublisher{}, New(nil, nil))
	p := New([]string{"localhost:9092"}, nil)
	assert.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.Close())
}

func TestOrderStatusChangedJSON(t *testing.T) {
	raw, err := json.Marshal(OrderStatusChanged{
		OrderID:   7,
		From:      domain.OrderStatusPending,
		To:        domain.OrderStatusShipped,
		ChangedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":7,"from":"pending","to":"shipped","changed_at":"2026-01-02T00:00:00Z"}`, string(raw))
}
