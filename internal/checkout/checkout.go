package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/cart"
	"github.com/claydohscope/storefront/internal/cue"
	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

var (
	// ErrCheckoutClosed is returned when submitting while the checkout modal is closed
	ErrCheckoutClosed = errors.New("checkout is not open")
	// ErrSubmitInProgress is returned while a previous submission is outstanding
	ErrSubmitInProgress = errors.New("order submission already in progress")
)

// Cart is the part of the cart store the checkout flow reads and resets
type Cart interface {
	Items() []cart.Item
	Total() decimal.Decimal
	ClearCart(ctx context.Context)
	CheckoutOpen() bool
	CloseCheckout()
}

// OrderPlacer submits an order to the persistence gateway
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// Form holds the customer-entered fields
type Form struct {
	Name       string
	Phone      string
	Address    string
	PaymentRef string
	Notes      string
}

// Flow collects the checkout form and submits it as a pending order
type Flow struct {
	cart   Cart
	placer OrderPlacer
	cues   cart.CuePlayer
	logger *zap.Logger

	mu         sync.Mutex
	form       Form
	submitting bool
	succeeded  bool
	lastErr    error
}

// NewFlow creates a checkout flow bound to one cart
func NewFlow(c Cart, placer OrderPlacer, cues cart.CuePlayer, logger *zap.Logger) *Flow {
	if cues == nil {
		cues = cue.NewPlayer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{cart: c, placer: placer, cues: cues, logger: logger}
}

// SetForm replaces the form fields
func (f *Flow) SetForm(form Form) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form = form
	f.succeeded = false
}

func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Succeeded reports whether the last submission placed an order
func (f *Flow) Succeeded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.succeeded
}

// LastError is the error from the last failed submission, if any
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Submitting reports whether a submission is outstanding
func (f *Flow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Validate returns an *errors.ErrValidation naming every blank required field
func (form Form) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(form.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(form.Phone) == "" {
		fields["phone"] = "required"
	}
	if strings.TrimSpace(form.Address) == "" {
		fields["address"] = "required"
	}
	if strings.TrimSpace(form.PaymentRef) == "" {
		fields["bkash_trxid"] = "required"
	}
	if len(fields) > 0 {
		return &pkgerrors.ErrValidation{Fields: fields}
	}
	return nil
}

// BuildOrder snapshots the cart into a pending order
func BuildOrder(form Form, items []cart.Item, total decimal.Decimal) *domain.Order {
	lines := make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderLine{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return &domain.Order{
		CustomerName:    strings.TrimSpace(form.Name),
		CustomerPhone:   strings.TrimSpace(form.Phone),
		CustomerAddress: strings.TrimSpace(form.Address),
		PaymentRef:      strings.TrimSpace(form.PaymentRef),
		Details: domain.OrderDetails{
			Items: lines,
			Total: total,
			Notes: strings.TrimSpace(form.Notes),
		},
		Status: domain.OrderStatusPending,
	}
}

// Submit places the order. On success the cart is cleared, the form reset and
// the modal closed. On failure cart and form are left as they were.
func (f *Flow) Submit(ctx context.Context) (*domain.Order, error) {
	if !f.cart.CheckoutOpen() {
		return nil, ErrCheckoutClosed
	}

	f.mu.Lock()
	if err := f.form.Validate(); err != nil {
		f.lastErr = err
		f.mu.Unlock()
		return nil, err
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.submitting = true
	f.succeeded = false
	form := f.form
	f.mu.Unlock()

	order := BuildOrder(form, f.cart.Items(), f.cart.Total())
	placed, err := f.placer.PlaceOrder(ctx, order)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.lastErr = err
		f.mu.Unlock()
		f.logger.Warn("Order submission failed", zap.Error(err))
		f.cues.Play(cue.Error)
		return nil, err
	}
	if placed == nil {
		placed = order
	}
	f.form = Form{}
	f.succeeded = true
	f.lastErr = nil
	f.mu.Unlock()

	f.cart.ClearCart(ctx)
	f.cart.CloseCheckout()
	f.logger.Info("Order placed", zap.Int64("order_id", placed.ID))
	f.cues.Play(cue.Success)
	return placed, nil
}
