package services

import (
	"context"
	"time"

	"storefront-orders/models"
)

// CatalogStore is the catalog side the lifecycle depends on. Stock
// mutations are conditional where noted; DecrementStock fails with
// InsufficientStockError rather than driving stock negative.
type CatalogStore interface {
	FindProductByID(ctx context.Context, id int64) (*models.Product, error)
	DecrementStock(ctx context.Context, id int64, qty int) error
	IncrementStock(ctx context.Context, id int64, qty int) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetConsumerOrder(ctx context.Context, id, consumerID int64) (*models.Order, error)
	ListConsumerOrders(ctx context.Context, consumerID int64) ([]models.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int, error)
	// Transition flips the status and applies the stock side effects of
	// the move atomically. The order's Status field holds the expected
	// current status; a mismatch in the store fails the transition.
	Transition(ctx context.Context, order *models.Order, to models.OrderStatus) error
}

type ReportStore interface {
	ReportTotals(ctx context.Context, f ReportFilter) (models.SalesReport, error)
	TopProducts(ctx context.Context, f ReportFilter, limit int) ([]models.ProductSales, error)
	SalesByCategory(ctx context.Context, f ReportFilter) ([]models.CategorySales, error)
	SalesOverTime(ctx context.Context, f ReportFilter) ([]models.DailySales, error)
}

// EventPublisher delivers order events to the message broker. Publishing
// is best effort from the lifecycle's point of view.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent, priority uint8) error
	PublishDelayedEvent(event models.OrderEvent, delay time.Duration) error
	PublishConfirmation(confirmation models.OrderConfirmation) error
}

type ListFilter struct {
	Status  models.OrderStatus
	Search  string
	Page    int
	PerPage int
}

type ReportFilter struct {
	Status models.OrderStatus
	From   time.Time
	To     time.Time
}
