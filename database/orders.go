package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront-orders/models"
	"storefront-orders/services"
)

// CreateOrder inserts the order row and its line-item snapshots in one
// transaction, filling in the generated id.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (consumer_id, contact, address, total_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, order.ConsumerID, order.Contact, order.Address, order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, title, quantity, price, original_price, discount)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, orderID, item.ProductID, item.Title, item.Quantity, item.Price, item.OriginalPrice, item.Discount)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	order.ID = orderID
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, consumer_id, contact, address, total_amount, status, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, id).Scan(&o.ID, &o.ConsumerID, &o.Contact, &o.Address, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) GetConsumerOrder(ctx context.Context, id, consumerID int64) (*models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ConsumerID != consumerID {
		return nil, models.ErrOrderNotFound
	}
	return o, nil
}

func (s *Store) ListConsumerOrders(ctx context.Context, consumerID int64) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, consumer_id, contact, address, total_amount, status, created_at, updated_at
		FROM orders
		WHERE consumer_id = ?
		ORDER BY created_at DESC
	`, consumerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := s.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// ListOrders returns one page of orders plus the total count matching
// the filter.
func (s *Store) ListOrders(ctx context.Context, f services.ListFilter) ([]models.Order, int, error) {
	where := []string{"1=1"}
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where = append(where, "(contact LIKE ? OR address LIKE ? OR CAST(id AS CHAR) = ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, f.Search)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, consumer_id, contact, address, total_amount, status, created_at, updated_at
		FROM orders
		WHERE `+cond+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if err := s.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// Transition flips the order's status and applies the stock side effects
// that belong to the move, all in one transaction: entering Paid
// conditionally decrements stock per line item, and cancelling a Paid
// order restores it. Any failed decrement aborts the whole transition.
func (s *Store) Transition(ctx context.Context, order *models.Order, to models.OrderStatus) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if to == models.StatusPaid {
		for _, item := range order.Items {
			if err := decrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}
	if to == models.StatusCancelled && order.Status == models.StatusPaid {
		for _, item := range order.Items {
			if err := incrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?
	`, to, order.ID, order.Status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Lost a race with a concurrent transition on the same order.
		current, err := s.GetOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		return &models.InvalidTransitionError{Current: current.Status}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	order.Status = to
	return nil
}

func (s *Store) loadItems(ctx context.Context, o *models.Order) error {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT product_id, title, quantity, price, original_price, discount
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Quantity, &item.Price, &item.OriginalPrice, &item.Discount); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.ConsumerID, &o.Contact, &o.Address, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
