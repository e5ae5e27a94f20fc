package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront-orders/models"
)

const topProductLimit = 5

// SalesReportResult is the full admin report payload.
type SalesReportResult struct {
	Report          models.SalesReport     `json:"report"`
	TopProducts     []models.ProductSales  `json:"topProducts"`
	SalesByCategory []models.CategorySales `json:"salesByCategory"`
	SalesOverTime   []models.DailySales    `json:"salesOverTime"`
}

// SalesReport aggregates orders matching the filter. Status defaults to
// Paid; From/To bound created_at, To exclusive at the following midnight.
func (s *OrderService) SalesReport(ctx context.Context, f ReportFilter) (*SalesReportResult, error) {
	if f.Status == "" {
		f.Status = models.StatusPaid
	}
	if !f.Status.Valid() {
		return nil, &models.StatusError{Status: string(f.Status)}
	}

	report, err := s.Reports.ReportTotals(ctx, f)
	if err != nil {
		return nil, err
	}
	report.AverageOrderValue = averageOrderValue(report.TotalSales, report.OrderCount)

	top, err := s.Reports.TopProducts(ctx, f, topProductLimit)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.Reports.SalesByCategory(ctx, f)
	if err != nil {
		return nil, err
	}
	overTime, err := s.Reports.SalesOverTime(ctx, f)
	if err != nil {
		return nil, err
	}

	return &SalesReportResult{
		Report:          report,
		TopProducts:     top,
		SalesByCategory: byCategory,
		SalesOverTime:   overTime,
	}, nil
}

func averageOrderValue(total decimal.Decimal, orders int) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(orders))).Round(2)
}

// ParseReportRange turns optional from/to date strings (YYYY-MM-DD) into
// a half-open created_at range; the to-date is inclusive for callers, so
// the upper bound is the following midnight.
func ParseReportRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return start, end, err
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}
