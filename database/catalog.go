package database

import (
	"context"
	"database/sql"
	"errors"

	"storefront-orders/models"
)

// FindProductByID returns (nil, nil) when no product exists with the id.
func (s *Store) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, title, COALESCE(description, ''), price, stock, discount, category_id, created_at, updated_at
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock, &p.Discount, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock is conditional: it only succeeds when the product still
// has at least qty units, so two concurrent payments cannot oversell.
func (s *Store) DecrementStock(ctx context.Context, id int64, qty int) error {
	return decrementStock(ctx, s.DB, id, qty)
}

func (s *Store) IncrementStock(ctx context.Context, id int64, qty int) error {
	return incrementStock(ctx, s.DB, id, qty)
}

// execer is satisfied by both *sql.DB and *sql.Tx, so stock mutations can
// run standalone or inside a payment transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func decrementStock(ctx context.Context, db execer, id int64, qty int) error {
	res, err := db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return stockConflict(ctx, db, id, qty)
	}
	return nil
}

func incrementStock(ctx context.Context, db execer, id int64, qty int) error {
	res, err := db.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, qty, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

// stockConflict distinguishes a missing product from a stock shortfall
// after a conditional decrement matched no rows.
func stockConflict(ctx context.Context, db execer, id int64, qty int) error {
	var title string
	var stock int
	err := db.QueryRowContext(ctx, `SELECT title, stock FROM products WHERE id = ?`, id).Scan(&title, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return &models.InsufficientStockError{ProductTitle: title, Available: stock, Requested: qty}
}
