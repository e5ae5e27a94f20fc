package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-orders/models"
)

func seedPaidOrder(t *testing.T, svc *OrderService, items []models.CreateOrderItem) *models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), 1, models.CreateOrderRequest{
		Contact: "jane@example.com",
		Address: "1 Main St",
		Items:   items,
	})
	require.NoError(t, err)
	paid, err := svc.Pay(context.Background(), order.ID)
	require.NoError(t, err)
	return paid
}

func TestSalesReportTotals(t *testing.T) {
	svc, store, _ := newTestService()
	store.categories[10] = "Knitwear"
	catID := int64(10)
	store.addProduct(models.Product{ID: 1, Title: "Wool Scarf", Price: decimal.RequireFromString("10.00"), Stock: 100, CategoryID: &catID})
	store.addProduct(models.Product{ID: 2, Title: "Beanie", Price: decimal.RequireFromString("4.00"), Stock: 100})

	seedPaidOrder(t, svc, []models.CreateOrderItem{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")},
		{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("4.00")},
	})
	seedPaidOrder(t, svc, []models.CreateOrderItem{
		{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("10.00")},
	})

	// A pending order must not count toward a Paid report.
	_, err := svc.Create(context.Background(), 1, models.CreateOrderRequest{
		Contact: "jane@example.com",
		Address: "1 Main St",
		Items: []models.CreateOrderItem{
			{ProductID: 2, Quantity: 5, Price: decimal.RequireFromString("4.00")},
		},
	})
	require.NoError(t, err)

	result, err := svc.SalesReport(context.Background(), ReportFilter{})
	require.NoError(t, err)

	assert.True(t, result.Report.TotalSales.Equal(decimal.RequireFromString("54.00")),
		"got %s", result.Report.TotalSales)
	assert.Equal(t, 2, result.Report.OrderCount)
	assert.Equal(t, 6, result.Report.TotalItemsSold)
	assert.True(t, result.Report.AverageOrderValue.Equal(decimal.RequireFromString("27.00")))

	require.NotEmpty(t, result.TopProducts)
	assert.Equal(t, int64(1), result.TopProducts[0].ProductID)
	assert.Equal(t, 5, result.TopProducts[0].QuantitySold)
	assert.True(t, result.TopProducts[0].Revenue.Equal(decimal.RequireFromString("50.00")))

	require.NotEmpty(t, result.SalesByCategory)
	assert.Equal(t, "Knitwear", result.SalesByCategory[0].Category)
	assert.True(t, result.SalesByCategory[0].Revenue.Equal(decimal.RequireFromString("50.00")))

	require.Len(t, result.SalesOverTime, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), result.SalesOverTime[0].Date)
	assert.Equal(t, 2, result.SalesOverTime[0].Orders)
}

func TestSalesReportTopFiveCutoff(t *testing.T) {
	svc, store, _ := newTestService()
	for i := int64(1); i <= 7; i++ {
		store.addProduct(models.Product{ID: i, Title: "Product", Price: decimal.RequireFromString("1.00"), Stock: 100})
	}

	var items []models.CreateOrderItem
	for i := int64(1); i <= 7; i++ {
		items = append(items, models.CreateOrderItem{
			ProductID: i,
			Quantity:  int(i), // product 7 sells most
			Price:     decimal.RequireFromString("1.00"),
		})
	}
	seedPaidOrder(t, svc, items)

	result, err := svc.SalesReport(context.Background(), ReportFilter{})
	require.NoError(t, err)
	require.Len(t, result.TopProducts, 5)
	assert.Equal(t, int64(7), result.TopProducts[0].ProductID)
	assert.Equal(t, 7, result.TopProducts[0].QuantitySold)
}

func TestSalesReportRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.SalesReport(context.Background(), ReportFilter{Status: "Refunded"})
	var statusErr *models.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestParseReportRange(t *testing.T) {
	from, to, err := ParseReportRange("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	// To-date is inclusive: upper bound is the next midnight.
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), to)

	from, to, err = ParseReportRange("", "")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	_, _, err = ParseReportRange("01/02/2026", "")
	assert.Error(t, err)
}

func TestAverageOrderValueZeroOrders(t *testing.T) {
	assert.True(t, averageOrderValue(decimal.Zero, 0).IsZero())
}
