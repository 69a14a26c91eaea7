package catalog

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/pkg/errors"
)

// DefaultCurrency is the shop currency when none is configured
const DefaultCurrency = "BDT"

// ProductSource fetches the catalog
type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Cart receives products picked from the catalog
type Cart interface {
	AddToCart(ctx context.Context, product domain.Product)
}

// View keeps the last fetched product list and forwards picks to the cart
type View struct {
	source ProductSource
	cart   Cart
	unit   currency.Unit
	logger *zap.Logger

	mu       sync.RWMutex
	products []domain.Product
}

// NewView creates a catalog view. An empty or unknown currency code falls back to BDT.
func NewView(source ProductSource, cart Cart, currencyCode string, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		source: source,
		cart:   cart,
		unit:   ParseCurrency(currencyCode, logger),
		logger: logger,
	}
}

// ParseCurrency parses an ISO 4217 code, falling back to DefaultCurrency
func ParseCurrency(code string, logger *zap.Logger) currency.Unit {
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		if logger != nil {
			logger.Warn("Unknown currency, using default", zap.String("currency", code), zap.Error(err))
		}
		return currency.MustParseISO(DefaultCurrency)
	}
	return unit
}

// Refresh refetches the whole catalog
func (v *View) Refresh(ctx context.Context) ([]domain.Product, error) {
	products, err := v.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	v.mu.Lock()
	v.products = products
	v.mu.Unlock()
	return v.Products(), nil
}

// Products returns the last fetched list
func (v *View) Products() []domain.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Product, len(v.products))
	copy(out, v.products)
	return out
}

// Find looks a product up in the last fetched list
func (v *View) Find(id int64) (domain.Product, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, p := range v.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// AddToCart puts one unit of product id into the cart
func (v *View) AddToCart(ctx context.Context, id int64) (domain.Product, error) {
	p, ok := v.Find(id)
	if !ok {
		return domain.Product{}, &errors.ErrNotFound{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	v.cart.AddToCart(ctx, p)
	return p, nil
}

// FormatPrice renders an amount as "<ISO code> <whole amount>"
func (v *View) FormatPrice(amount decimal.Decimal) string {
	return FormatPrice(v.unit, amount)
}

func FormatPrice(unit currency.Unit, amount decimal.Decimal) string {
	return unit.String() + " " + amount.StringFixed(0)
}
