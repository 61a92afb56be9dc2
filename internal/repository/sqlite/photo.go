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

// photoRepo implements domain.PhotoRepository using SQLite.
type photoRepo struct {
	db *sql.DB
}

const photoColumns = `id, item_id, image_key, is_primary, sort_order, created_at`

func (r *photoRepo) Create(ctx context.Context, photo *domain.Photo) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (item_id, image_key, is_primary, sort_order, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		photo.ItemID, photo.ImageKey, photo.IsPrimary, photo.SortOrder, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: item %d does not exist", domain.ErrConstraintViolation, photo.ItemID)
		}
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: sort order %d already used by item %d", domain.ErrDuplicateKey, photo.SortOrder, photo.ItemID)
		}
		return fmt.Errorf("insert photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	photo.ID = id
	photo.CreatedAt = now
	return nil
}

func (r *photoRepo) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	var p domain.Photo
	err := r.db.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ?`, id,
	).Scan(&p.ID, &p.ItemID, &p.ImageKey, &p.IsPrimary, &p.SortOrder, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return &p, nil
}

func (r *photoRepo) ListByItem(ctx context.Context, itemID int64) ([]domain.Photo, error) {
	byItem, err := r.ListByItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	return byItem[itemID], nil
}

func (r *photoRepo) ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]domain.Photo, error) {
	out := make(map[int64][]domain.Photo, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE item_id IN (`+placeholders+`)
		 ORDER BY item_id, sort_order`, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.ItemID, &p.ImageKey, &p.IsPrimary, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out[p.ItemID] = append(out[p.ItemID], p)
	}
	return out, rows.Err()
}

func (r *photoRepo) MaxSortOrder(ctx context.Context, itemID int64) (int, bool, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(sort_order) FROM photos WHERE item_id = ?", itemID,
	).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max sort order: %w", err)
	}
	return int(max.Int64), max.Valid, nil
}

func (r *photoRepo) Update(ctx context.Context, id int64, changes domain.PhotoChanges) (int64, error) {
	if changes.IsPrimary == nil {
		var exists int64
		err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos WHERE id = ?", id).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("count photo: %w", err)
		}
		return exists, nil
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE photos SET is_primary = ? WHERE id = ?", *changes.IsPrimary, id)
	if err != nil {
		return 0, fmt.Errorf("update photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *photoRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
