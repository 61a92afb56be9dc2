package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// itemRepo implements domain.CatalogItemRepository using SQLite.
type itemRepo struct {
	db *sql.DB
}

const itemColumns = `id, kind, name, description, price, image_key, created_at, updated_at`

func (r *itemRepo) Create(ctx context.Context, item *domain.CatalogItem) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO items (kind, name, description, price, image_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Kind, item.Name, item.Description, nullPrice(item.Price), item.ImageKey, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *itemRepo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	var args []any
	if filter.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, filter.Kind)
	}
	// ids are AUTOINCREMENT, so id order is creation order.
	if filter.Ascending {
		query += ` ORDER BY id ASC`
	} else {
		query += ` ORDER BY id DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *itemRepo) Update(ctx context.Context, id int64, changes domain.ItemChanges) (int64, error) {
	var sets []string
	var args []any
	if changes.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *changes.Name)
	}
	if changes.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *changes.Description)
	}
	if changes.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *changes.Price)
	}
	if changes.ImageKey != nil {
		sets = append(sets, "image_key = ?")
		args = append(args, *changes.ImageKey)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("update item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Delete removes the item; its photos go with it through ON DELETE CASCADE.
func (r *itemRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*domain.CatalogItem, error) {
	var (
		item  domain.CatalogItem
		price sql.NullFloat64
	)
	if err := s.Scan(&item.ID, &item.Kind, &item.Name, &item.Description, &price,
		&item.ImageKey, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if price.Valid {
		p := price.Float64
		item.Price = &p
	}
	return &item, nil
}

func nullPrice(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
