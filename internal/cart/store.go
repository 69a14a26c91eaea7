package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/cue"
	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/notify"
)

// Item is one product line in the cart
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price x quantity
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CuePlayer plays audible feedback
type CuePlayer interface {
	Play(c cue.Cue)
}

// Store is the session-scoped cart. All operations are serialized by one mutex
// and every change to the item collection is written back before returning.
type Store struct {
	mu           sync.Mutex
	items        []Item
	checkoutOpen bool

	storage Storage
	key     string
	toaster *notify.Toaster
	cues    CuePlayer
	logger  *zap.Logger
}

// Option configures a Store
type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithToaster(t *notify.Toaster) Option {
	return func(s *Store) {
		if t != nil {
			s.toaster = t
		}
	}
}

func WithCues(p CuePlayer) Option {
	return func(s *Store) {
		if p != nil {
			s.cues = p
		}
	}
}

// WithKey overrides the storage key (StorageKey by default)
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// NewStore builds a cart and loads any previously persisted items.
// Load problems are logged and leave the cart empty.
func NewStore(ctx context.Context, storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		storage: storage,
		key:     StorageKey,
		logger:  zap.NewNop(),
		cues:    cue.NewPlayer(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.toaster == nil {
		s.toaster = notify.NewToaster()
	}

	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []Item {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("Failed to read cart, starting empty", zap.Error(err))
		return nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Corrupt cart data, starting empty", zap.Error(err))
		return nil
	}

	// drop anything that would violate the one-line-per-id, positive-quantity rule
	out := make([]Item, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.Quantity < 1 || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// persist must be called with s.mu held
func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("Failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
	}
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddToCart adds one unit of product, creating the line if needed
func (s *Store) AddToCart(ctx context.Context, product domain.Product) {
	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, Item{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Image:    product.Image,
			Quantity: 1,
		})
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.logger.Debug("Added to cart", zap.Int64("product_id", product.ID))
	s.toaster.Show(fmt.Sprintf("%s added to cart", product.Name))
	s.cues.Play(cue.Add)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items[i].Quantity = quantity
	s.persist(ctx)
}

// RemoveItem drops the line for id. Removing an absent id does nothing.
func (s *Store) RemoveItem(ctx context.Context, id int64) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist(ctx)
	s.mu.Unlock()

	s.logger.Debug("Removed from cart", zap.Int64("product_id", id))
	s.toaster.Show(fmt.Sprintf("%s removed from cart", removed.Name))
	s.cues.Play(cue.Remove)
}

// ClearCart empties the cart. Checkout visibility and the toast are untouched.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist(ctx)
}

func (s *Store) OpenCheckout() {
	s.mu.Lock()
	s.checkoutOpen = true
	s.mu.Unlock()
}

func (s *Store) CloseCheckout() {
	s.mu.Lock()
	s.checkoutOpen = false
	s.mu.Unlock()
}

func (s *Store) CheckoutOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutOpen
}

// Items returns a copy of the lines in insertion order
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total is recomputed from the current lines on every call
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of units across all lines
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) ShowToast(message string) {
	s.toaster.Show(message)
}

func (s *Store) Toast() notify.Toast {
	return s.toaster.Current()
}

// Close stops the toast timer
func (s *Store) Close() {
	s.toaster.Stop()
}
