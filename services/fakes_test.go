package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"storefront-orders/models"
)

// memStore is an in-memory stand-in for the MySQL store, implementing
// the catalog, order and report ports with the same semantics.
type memStore struct {
	products   map[int64]*models.Product
	categories map[int64]string
	orders     map[int64]*models.Order
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[int64]*models.Product),
		categories: make(map[int64]string),
		orders:     make(map[int64]*models.Order),
		nextID:     1,
	}
}

func (m *memStore) addProduct(p models.Product) {
	cp := p
	m.products[p.ID] = &cp
}

func (m *memStore) FindProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) DecrementStock(_ context.Context, id int64, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	if p.Stock < qty {
		return &models.InsufficientStockError{ProductTitle: p.Title, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	return nil
}

func (m *memStore) IncrementStock(_ context.Context, id int64, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (m *memStore) CreateOrder(_ context.Context, order *models.Order) error {
	order.ID = m.nextID
	m.nextID++
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &cp
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (m *memStore) GetConsumerOrder(ctx context.Context, id, consumerID int64) (*models.Order, error) {
	o, err := m.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ConsumerID != consumerID {
		return nil, models.ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) ListConsumerOrders(ctx context.Context, consumerID int64) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.ConsumerID == consumerID {
			cp, _ := m.GetOrder(ctx, o.ID)
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int, error) {
	var all []models.Order
	for _, o := range m.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		cp, _ := m.GetOrder(ctx, o.ID)
		all = append(all, *cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := (f.Page - 1) * f.PerPage
	if start > total {
		start = total
	}
	end := start + f.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memStore) Transition(ctx context.Context, order *models.Order, to models.OrderStatus) error {
	stored, ok := m.orders[order.ID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if stored.Status != order.Status {
		return &models.InvalidTransitionError{Current: stored.Status}
	}

	if to == models.StatusPaid {
		// All-or-nothing, mirroring the SQL transaction.
		for _, item := range order.Items {
			p, ok := m.products[item.ProductID]
			if !ok {
				return models.ErrProductNotFound
			}
			if p.Stock < item.Quantity {
				return &models.InsufficientStockError{ProductTitle: p.Title, Available: p.Stock, Requested: item.Quantity}
			}
		}
		for _, item := range order.Items {
			if err := m.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}
	if to == models.StatusCancelled && order.Status == models.StatusPaid {
		for _, item := range order.Items {
			if err := m.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}

	stored.Status = to
	stored.UpdatedAt = time.Now()
	order.Status = to
	return nil
}

func (m *memStore) matching(f ReportFilter) []*models.Order {
	var out []*models.Order
	for _, o := range m.orders {
		if o.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (m *memStore) ReportTotals(_ context.Context, f ReportFilter) (models.SalesReport, error) {
	var report models.SalesReport
	report.TotalSales = decimal.Zero
	for _, o := range m.matching(f) {
		report.TotalSales = report.TotalSales.Add(o.TotalAmount)
		report.OrderCount++
		for _, item := range o.Items {
			report.TotalItemsSold += item.Quantity
		}
	}
	return report, nil
}

func (m *memStore) TopProducts(_ context.Context, f ReportFilter, limit int) ([]models.ProductSales, error) {
	byProduct := make(map[int64]*models.ProductSales)
	for _, o := range m.matching(f) {
		for _, item := range o.Items {
			p, ok := byProduct[item.ProductID]
			if !ok {
				p = &models.ProductSales{ProductID: item.ProductID, Title: item.Title, Revenue: decimal.Zero}
				byProduct[item.ProductID] = p
			}
			p.QuantitySold += item.Quantity
			p.Revenue = p.Revenue.Add(item.Subtotal())
		}
	}

	out := make([]models.ProductSales, 0, len(byProduct))
	for _, p := range byProduct {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuantitySold > out[j].QuantitySold })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SalesByCategory(_ context.Context, f ReportFilter) ([]models.CategorySales, error) {
	byCategory := make(map[string]*models.CategorySales)
	for _, o := range m.matching(f) {
		seen := make(map[string]bool)
		for _, item := range o.Items {
			name := "Uncategorized"
			if p, ok := m.products[item.ProductID]; ok && p.CategoryID != nil {
				if cn, ok := m.categories[*p.CategoryID]; ok {
					name = cn
				}
			}
			c, ok := byCategory[name]
			if !ok {
				c = &models.CategorySales{Category: name, Revenue: decimal.Zero}
				byCategory[name] = c
			}
			c.Revenue = c.Revenue.Add(item.Subtotal())
			if !seen[name] {
				c.Orders++
				seen[name] = true
			}
		}
	}

	out := make([]models.CategorySales, 0, len(byCategory))
	for _, c := range byCategory {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue.GreaterThan(out[j].Revenue) })
	return out, nil
}

func (m *memStore) SalesOverTime(_ context.Context, f ReportFilter) ([]models.DailySales, error) {
	byDay := make(map[string]*models.DailySales)
	for _, o := range m.matching(f) {
		day := o.CreatedAt.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &models.DailySales{Date: day, Sales: decimal.Zero}
			byDay[day] = d
		}
		d.Sales = d.Sales.Add(o.TotalAmount)
		d.Orders++
	}

	out := make([]models.DailySales, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	events        []models.OrderEvent
	delayed       []models.OrderEvent
	confirmations []models.OrderConfirmation
	failPublish   error
}

func (f *fakePublisher) PublishOrderEvent(event models.OrderEvent, _ uint8) error {
	if f.failPublish != nil {
		return f.failPublish
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) PublishDelayedEvent(event models.OrderEvent, _ time.Duration) error {
	if f.failPublish != nil {
		return f.failPublish
	}
	f.delayed = append(f.delayed, event)
	return nil
}

func (f *fakePublisher) PublishConfirmation(confirmation models.OrderConfirmation) error {
	if f.failPublish != nil {
		return f.failPublish
	}
	f.confirmations = append(f.confirmations, confirmation)
	return nil
}
