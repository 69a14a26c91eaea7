package service

import (
	"github.com/shopspring/decimal"

	"github.com/claydohscope/storefront/internal/domain"
)

// OrderRequest represents the order submission payload sent by the storefront checkout
type OrderRequest struct {
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	CustomerAddress string           `json:"customer_address"`
	PaymentRef      string           `json:"bkash_trxid"`
	Details         OrderDetailsBody `json:"order_details"`
}

type OrderDetailsBody struct {
	Items []OrderLineBody `json:"items" binding:"required,min=1,dive"`
	Total decimal.Decimal `json:"total"`
	Notes string          `json:"notes,omitempty"`
}

type OrderLineBody struct {
	ID       int64           `json:"id" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
}

// StatusUpdateRequest is the admin order status PATCH body. Status is a pointer
// so a missing field can be told apart from an empty one.
type StatusUpdateRequest struct {
	Status *string `json:"status"`
}

func (r OrderRequest) lines() []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(r.Details.Items))
	for _, item := range r.Details.Items {
		lines = append(lines, domain.OrderLine{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return lines
}
