package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers on every wire (API bodies, stored cart, order details)
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderLine is one cart line copied into an order at submission time
type OrderLine struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderDetails is the immutable item snapshot stored with an order (JSONB)
type OrderDetails struct {
	Items []OrderLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Notes string          `json:"notes,omitempty"`
}

// Order is a customer order with a manually verified payment claim
type Order struct {
	ID              int64        `json:"id"`
	CustomerName    string       `json:"customer_name"`
	CustomerPhone   string       `json:"customer_phone"`
	CustomerAddress string       `json:"customer_address"`
	PaymentRef      string       `json:"bkash_trxid"`
	Details         OrderDetails `json:"order_details"`
	Status          OrderStatus  `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Media is a gallery item (video loop, gif or image)
type Media struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Type      MediaType `json:"type"`
	Src       string    `json:"src"`
	Caption   *string   `json:"caption,omitempty"`
	Poster    *string   `json:"poster,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an identity resolved by the auth gateway
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AdminUser is an account of the local auth gateway
type AdminUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminSession is an access token issued by the local auth gateway
type AdminSession struct {
	ID          uuid.UUID
	TokenLookup string // SHA256(token) hex; the token itself is never stored
	UserID      uuid.UUID
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// IdempotencyKey stores idempotency information for order submission
type IdempotencyKey struct {
	Key         string
	OrderID     int64
	RequestHash string
	CreatedAt   time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   int64
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// LinesTotal is the sum of price × quantity over the lines
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
