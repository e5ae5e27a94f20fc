package services

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"storefront-orders/models"
)

// Event priorities, mirroring the broker queue's x-max-priority of 10.
const (
	priorityDefault   = 5
	priorityCancelled = 8
	priorityLarge     = 9
)

var largeOrderThreshold = decimal.NewFromInt(1000)

// OrderService drives the order lifecycle: checkout validation, the
// payment transition and its stock decrements, cancellation restores,
// and the events published after each state change.
type OrderService struct {
	Catalog CatalogStore
	Orders  OrderStore
	Reports ReportStore
	Events  EventPublisher

	// PaymentWindow is how long an order may sit Pending before the
	// delayed payment check fires.
	PaymentWindow time.Duration
}

// Create validates the checkout request against the catalog and persists
// a Pending order. Validation accumulates every per-item problem instead
// of stopping at the first, and nothing is written unless all items pass.
// Stock is not reserved here; it is decremented at payment time.
func (s *OrderService) Create(ctx context.Context, consumerID int64, req models.CreateOrderRequest) (*models.Order, error) {
	if consumerID <= 0 {
		return nil, models.ErrUnauthenticated
	}

	verr := &models.ValidationErrors{}
	if req.Contact == "" {
		verr.Add("contact is required")
	}
	if req.Address == "" {
		verr.Add("address is required")
	}
	if len(req.Items) == 0 {
		verr.Add("order must contain at least one item")
		return nil, verr
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for i, line := range req.Items {
		if line.ProductID <= 0 {
			verr.Add("item %d: invalid product reference", i)
			continue
		}
		if line.Quantity < 1 {
			verr.Add("item %d: quantity must be at least 1", i)
			continue
		}

		product, err := s.Catalog.FindProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			verr.Add("product %d not found", line.ProductID)
			continue
		}
		if product.Stock < line.Quantity {
			verr.Add("insufficient stock for %q: available %d, requested %d",
				product.Title, product.Stock, line.Quantity)
			continue
		}

		// Price and discount snapshots are taken verbatim from the
		// submitted line; the order is a point-in-time financial record.
		originalPrice := line.OriginalPrice
		if originalPrice.IsZero() {
			originalPrice = line.Price
		}
		items = append(items, models.OrderItem{
			ProductID:     line.ProductID,
			Title:         product.Title,
			Quantity:      line.Quantity,
			Price:         line.Price,
			OriginalPrice: originalPrice,
			Discount:      line.Discount,
		})
	}

	if !verr.Empty() {
		return nil, verr
	}

	// The client-submitted total is a display hint only; the stored
	// total is recomputed from the validated snapshots.
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	now := time.Now()
	order := &models.Order{
		ConsumerID:  consumerID,
		Contact:     req.Contact,
		Address:     req.Address,
		TotalAmount: total,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       items,
	}

	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publishOrderEvent(order, "created")
	s.publishPaymentCheck(order)

	return order, nil
}

// Pay transitions a Pending order to Paid. Stock is decremented for every
// line item inside the same transaction as the status flip; a shortfall
// on any item aborts the whole payment. A confirmation event is published
// after the transition commits, best effort.
func (s *OrderService) Pay(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, &models.InvalidTransitionError{Current: order.Status}
	}

	if err := s.Orders.Transition(ctx, order, models.StatusPaid); err != nil {
		return nil, err
	}

	if s.Events != nil {
		confirmation := models.OrderConfirmation{
			OrderID:     order.ID,
			Contact:     order.Contact,
			Address:     order.Address,
			Items:       order.Items,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
		}
		if err := s.Events.PublishConfirmation(confirmation); err != nil {
			log.Printf("Failed to publish order confirmation for order %d: %v", order.ID, err)
		}
	}
	s.publishOrderEvent(order, "paid")

	return order, nil
}

// UpdateStatus applies an admin status change through the transition
// table. Cancelling a Paid order restores stock; cancelling a Pending one
// does not, since its stock was never decremented.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, &models.StatusError{Status: string(status)}
	}

	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, &models.InvalidTransitionError{Current: order.Status}
	}

	if err := s.Orders.Transition(ctx, order, status); err != nil {
		return nil, err
	}

	s.publishOrderEvent(order, "status_updated")
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID, consumerID int64) (*models.Order, error) {
	return s.Orders.GetConsumerOrder(ctx, orderID, consumerID)
}

func (s *OrderService) ListForConsumer(ctx context.Context, consumerID int64) ([]models.Order, error) {
	return s.Orders.ListConsumerOrders(ctx, consumerID)
}

func (s *OrderService) List(ctx context.Context, f ListFilter) ([]models.Order, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, &models.StatusError{Status: string(f.Status)}
	}
	return s.Orders.ListOrders(ctx, f)
}

func (s *OrderService) publishOrderEvent(order *models.Order, eventType string) {
	if s.Events == nil {
		return
	}
	priority := uint8(priorityDefault)
	if order.TotalAmount.GreaterThan(largeOrderThreshold) {
		priority = priorityLarge
	}
	if order.Status == models.StatusCancelled {
		priority = priorityCancelled
	}

	event := models.OrderEvent{
		OrderID:  order.ID,
		Type:     eventType,
		Status:   order.Status,
		Occurred: time.Now(),
	}
	if err := s.Events.PublishOrderEvent(event, priority); err != nil {
		log.Printf("Failed to publish order %s event: %v", eventType, err)
	}
}

func (s *OrderService) publishPaymentCheck(order *models.Order) {
	if s.Events == nil {
		return
	}
	window := s.PaymentWindow
	if window <= 0 {
		window = 15 * time.Minute
	}
	event := models.OrderEvent{
		OrderID:  order.ID,
		Type:     "payment_check",
		Status:   order.Status,
		Occurred: time.Now(),
	}
	if err := s.Events.PublishDelayedEvent(event, window); err != nil {
		log.Printf("Failed to publish delayed payment check event: %v", err)
	}
}
