package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Monetary fields serialize as plain JSON numbers at the API boundary.
	decimal.MarshalJSONWithoutQuotes = true
}

type Order struct {
	ID          int64           `json:"id"`
	ConsumerID  int64           `json:"consumerId"`
	Contact     string          `json:"contact"`
	Address     string          `json:"address"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Items       []OrderItem     `json:"products"`
}

// OrderItem is a point-in-time snapshot of a product at order time.
// Price, OriginalPrice and Discount never track later catalog changes.
type OrderItem struct {
	ProductID     int64           `json:"productId"`
	Title         string          `json:"title"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      int             `json:"discount"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CreateOrderRequest is the checkout payload. TotalAmount is accepted for
// compatibility with older storefront clients but the server recomputes
// the authoritative total from the line items.
type CreateOrderRequest struct {
	Contact     string            `json:"contact"`
	Address     string            `json:"address"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Items       []CreateOrderItem `json:"products"`
}

type CreateOrderItem struct {
	ProductID     int64           `json:"productId"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      int             `json:"discount"`
}

type OrderEvent struct {
	OrderID  int64       `json:"order_id"`
	Type     string      `json:"type"` // created, status_updated, paid, payment_check
	Status   OrderStatus `json:"status"`
	Occurred time.Time   `json:"occurred"`
}

// OrderConfirmation is the payload handed to the notification consumer
// after a payment transition commits.
type OrderConfirmation struct {
	OrderID     int64           `json:"order_id"`
	Contact     string          `json:"contact"`
	Address     string          `json:"address"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
