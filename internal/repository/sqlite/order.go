package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// orderRepo implements domain.OrderRepository using SQLite. The item
// snapshot is stored as a JSON array in items_json.
type orderRepo struct {
	db *sql.DB
}

const orderColumns = `id, full_name, phone, email, address, notes, items_json, total_price, status, created_at, updated_at`

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusActive
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (full_name, phone, email, address, notes, items_json, total_price, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.FullName, order.Phone, order.Email, order.Address, order.Notes,
		string(itemsJSON), order.TotalPrice, order.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	order.ID = id
	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *orderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) Update(ctx context.Context, id int64, changes domain.OrderChanges) (int64, error) {
	now := time.Now().UTC()
	var (
		result sql.Result
		err    error
	)
	if changes.Status != nil {
		result, err = r.db.ExecContext(ctx,
			"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", *changes.Status, now, id)
	} else {
		result, err = r.db.ExecContext(ctx,
			"UPDATE orders SET updated_at = ? WHERE id = ?", now, id)
	}
	if err != nil {
		return 0, fmt.Errorf("update order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *orderRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanOrder(s rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		itemsJSON string
	)
	if err := s.Scan(&o.ID, &o.FullName, &o.Phone, &o.Email, &o.Address, &o.Notes,
		&itemsJSON, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return &o, nil
}
