package database

import (
	"context"

	"storefront-orders/models"
	"storefront-orders/services"
)

func reportConditions(f services.ReportFilter) (string, []any) {
	cond := "o.status = ?"
	args := []any{f.Status}
	if !f.From.IsZero() {
		cond += " AND o.created_at >= ?"
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		cond += " AND o.created_at < ?"
		args = append(args, f.To)
	}
	return cond, args
}

func (s *Store) ReportTotals(ctx context.Context, f services.ReportFilter) (models.SalesReport, error) {
	cond, args := reportConditions(f)

	var report models.SalesReport
	err := s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(o.total_amount), 0), COUNT(*)
		FROM orders o
		WHERE `+cond, args...).Scan(&report.TotalSales, &report.OrderCount)
	if err != nil {
		return report, err
	}

	err = s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE `+cond, args...).Scan(&report.TotalItemsSold)
	return report, err
}

// TopProducts ranks products by quantity sold; revenue is recomputed
// from the snapshots as quantity x price.
func (s *Store) TopProducts(ctx context.Context, f services.ReportFilter, limit int) ([]models.ProductSales, error) {
	cond, args := reportConditions(f)
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT oi.product_id, oi.title, SUM(oi.quantity), SUM(oi.quantity * oi.price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE `+cond+`
		GROUP BY oi.product_id, oi.title
		ORDER BY SUM(oi.quantity) DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProductSales
	for rows.Next() {
		var p models.ProductSales
		if err := rows.Scan(&p.ProductID, &p.Title, &p.QuantitySold, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SalesByCategory(ctx context.Context, f services.ReportFilter) ([]models.CategorySales, error) {
	cond, args := reportConditions(f)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT COALESCE(c.name, 'Uncategorized'), SUM(oi.quantity * oi.price), COUNT(DISTINCT o.id)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE `+cond+`
		GROUP BY c.name
		ORDER BY SUM(oi.quantity * oi.price) DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategorySales
	for rows.Next() {
		var c models.CategorySales
		if err := rows.Scan(&c.Category, &c.Revenue, &c.Orders); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SalesOverTime(ctx context.Context, f services.ReportFilter) ([]models.DailySales, error) {
	cond, args := reportConditions(f)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT DATE_FORMAT(o.created_at, '%Y-%m-%d'), SUM(o.total_amount), COUNT(*)
		FROM orders o
		WHERE `+cond+`
		GROUP BY DATE_FORMAT(o.created_at, '%Y-%m-%d')
		ORDER BY DATE_FORMAT(o.created_at, '%Y-%m-%d') ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailySales
	for rows.Next() {
		var d models.DailySales
		if err := rows.Scan(&d.Date, &d.Sales, &d.Orders); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
