package checkout_test

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claydohscope/storefront/internal/cart"
	"github.com/claydohscope/storefront/internal/checkout"
	"github.com/claydohscope/storefront/internal/cue"
	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

type fakePlacer struct {
	mu      sync.Mutex
	orders  []*domain.Order
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	placed := *order
	placed.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, &placed)
	return &placed, nil
}

type cueLog struct {
	mu     sync.Mutex
	played []cue.Cue
}

func (c *cueLog) Play(x cue.Cue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played = append(c.played, x)
}

func validForm() checkout.Form {
	return checkout.Form{
		Name:       gofakeit.Name(),
		Phone:      gofakeit.Phone(),
		Address:    gofakeit.Street(),
		PaymentRef: gofakeit.LetterN(10),
	}
}

func cartWithTotal1200(t *testing.T) *cart.Store {
	t.Helper()
	ctx := t.Context()
	s := cart.NewStore(ctx, cart.NewMemoryStorage())
	t.Cleanup(s.Close)
	s.AddToCart(ctx, domain.Product{ID: 1, Name: "Bunny", Price: decimal.NewFromInt(500)})
	s.AddToCart(ctx, domain.Product{ID: 1, Name: "Bunny", Price: decimal.NewFromInt(500)})
	s.AddToCart(ctx, domain.Product{ID: 2, Name: "Acorn", Price: decimal.NewFromInt(200)})
	return s
}

func TestSubmit_Success(t *testing.T) {
	ctx := t.Context()
	store := cartWithTotal1200(t)
	store.OpenCheckout()
	placer := &fakePlacer{}
	cues := &cueLog{}
	flow := checkout.NewFlow(store, placer, cues, nil)
	form := validForm()
	form.Notes = "gift wrap"
	flow.SetForm(form)

	placed, err := flow.Submit(ctx)
	require.NoError(t, err)

	require.Len(t, placer.orders, 1)
	order := placer.orders[0]
	assert.Equal(t, placed.ID, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, form.Name, order.CustomerName)
	assert.Equal(t, form.PaymentRef, order.PaymentRef)
	assert.Equal(t, "gift wrap", order.Details.Notes)
	assert.True(t, decimal.NewFromInt(1200).Equal(order.Details.Total))
	require.Len(t, order.Details.Items, 2)
	assert.Equal(t, 2, order.Details.Items[0].Quantity)
	assert.Equal(t, "Acorn", order.Details.Items[1].Name)

	assert.Empty(t, store.Items())
	assert.False(t, store.CheckoutOpen())
	assert.Equal(t, checkout.Form{}, flow.Form())
	assert.True(t, flow.Succeeded())
	assert.Equal(t, []cue.Cue{cue.Success}, cues.played)
}

func TestSubmit_Failure(t *testing.T) {
	ctx := t.Context()
	store := cartWithTotal1200(t)
	store.OpenCheckout()
	gatewayErr := &pkgerrors.ErrUpstream{Service: "storefront-api", Status: 500, Message: "duplicate key value"}
	cues := &cueLog{}
	flow := checkout.NewFlow(store, &fakePlacer{err: gatewayErr}, cues, nil)
	form := validForm()
	flow.SetForm(form)

	_, err := flow.Submit(ctx)

	require.ErrorIs(t, err, gatewayErr)
	assert.Equal(t, "duplicate key value", err.Error())
	assert.Len(t, store.Items(), 2)
	assert.True(t, store.CheckoutOpen())
	assert.Equal(t, form, flow.Form())
	assert.False(t, flow.Succeeded())
	assert.Equal(t, err, flow.LastError())
	assert.Equal(t, []cue.Cue{cue.Error}, cues.played)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*checkout.Form)
		wantFields []string
	}{
		{name: "blank name", mutate: func(f *checkout.Form) { f.Name = "" }, wantFields: []string{"name"}},
		{name: "whitespace phone", mutate: func(f *checkout.Form) { f.Phone = "   " }, wantFields: []string{"phone"}},
		{name: "blank address and payment ref", mutate: func(f *checkout.Form) {
			f.Address = ""
			f.PaymentRef = "\t"
		}, wantFields: []string{"address", "bkash_trxid"}},
		{name: "everything blank", mutate: func(f *checkout.Form) { *f = checkout.Form{} }, wantFields: []string{"name", "phone", "address", "bkash_trxid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cartWithTotal1200(t)
			store.OpenCheckout()
			placer := &fakePlacer{}
			flow := checkout.NewFlow(store, placer, nil, nil)
			form := validForm()
			tt.mutate(&form)
			flow.SetForm(form)

			_, err := flow.Submit(t.Context())

			var verr *pkgerrors.ErrValidation
			require.ErrorAs(t, err, &verr)
			for _, field := range tt.wantFields {
				assert.Contains(t, verr.Fields, field)
			}
			assert.Len(t, verr.Fields, len(tt.wantFields))
			assert.Empty(t, placer.orders)
			assert.Len(t, store.Items(), 2)
		})
	}
}

func TestSubmit_RequiresOpenCheckout(t *testing.T) {
	store := cartWithTotal1200(t)
	placer := &fakePlacer{}
	flow := checkout.NewFlow(store, placer, nil, nil)
	flow.SetForm(validForm())

	_, err := flow.Submit(t.Context())

	require.ErrorIs(t, err, checkout.ErrCheckoutClosed)
	assert.Empty(t, placer.orders)
}

func TestSubmit_RejectsDoubleSubmit(t *testing.T) {
	ctx := t.Context()
	store := cartWithTotal1200(t)
	store.OpenCheckout()
	placer := &fakePlacer{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	flow := checkout.NewFlow(store, placer, nil, nil)
	flow.SetForm(validForm())

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(ctx)
		done <- err
	}()
	<-placer.entered
	assert.True(t, flow.Submitting())

	_, err := flow.Submit(ctx)
	require.ErrorIs(t, err, checkout.ErrSubmitInProgress)

	close(placer.block)
	require.NoError(t, <-done)
	assert.Len(t, placer.orders, 1)
	assert.False(t, flow.Submitting())
}

func TestBuildOrder_TrimsAndSnapshots(t *testing.T) {
	items := []cart.Item{{ID: 7, Name: "Owl", Price: decimal.NewFromInt(300), Image: "owl.png", Quantity: 4}}
	order := checkout.BuildOrder(checkout.Form{Name: " Ana ", Phone: "017", Address: "Dhaka", PaymentRef: " TX1 "}, items, decimal.NewFromInt(1200))

	assert.Equal(t, "Ana", order.CustomerName)
	assert.Equal(t, "TX1", order.PaymentRef)
	assert.Equal(t, []domain.OrderLine{{ID: 7, Name: "Owl", Price: items[0].Price, Quantity: 4}}, order.Details.Items)

	items[0].Quantity = 99
	assert.Equal(t, 4, order.Details.Items[0].Quantity)
}
