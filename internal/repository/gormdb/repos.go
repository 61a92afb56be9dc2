package gormdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/msomdec/storefront/internal/domain"
)

type accountRepo struct {
	db *gorm.DB
}

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	m := accountModel{Email: account.Email, PasswordHash: account.PasswordHash}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: email %q", domain.ErrDuplicateKey, account.Email)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	account.ID = m.ID
	account.CreatedAt = m.CreatedAt
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *accountRepo) first(ctx context.Context, where string, arg any) (*domain.Account, error) {
	var m accountModel
	if err := r.db.WithContext(ctx).Where(where, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	return m.toDomain(), nil
}

type itemRepo struct {
	db *gorm.DB
}

func (r *itemRepo) Create(ctx context.Context, item *domain.CatalogItem) error {
	m := itemModel{
		Kind:        string(item.Kind),
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		ImageKey:    item.ImageKey,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	item.ID = m.ID
	item.CreatedAt = m.CreatedAt
	item.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	var m itemModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	item := m.toDomain()
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.CatalogItem, error) {
	q := r.db.WithContext(ctx).Model(&itemModel{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", string(filter.Kind))
	}
	if filter.Ascending {
		q = q.Order("id ASC")
	} else {
		q = q.Order("id DESC")
	}

	var models []itemModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]domain.CatalogItem, len(models))
	for i, m := range models {
		items[i] = m.toDomain()
	}
	return items, nil
}

func (r *itemRepo) Update(ctx context.Context, id int64, changes domain.ItemChanges) (int64, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Price != nil {
		updates["price"] = *changes.Price
	}
	if changes.ImageKey != nil {
		updates["image_key"] = *changes.ImageKey
	}

	res := r.db.WithContext(ctx).Model(&itemModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update item: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the item; the photos foreign key cascades.
func (r *itemRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&itemModel{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete item: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type photoRepo struct {
	db *gorm.DB
}

func (r *photoRepo) Create(ctx context.Context, photo *domain.Photo) error {
	m := photoModel{
		ItemID:    photo.ItemID,
		ImageKey:  photo.ImageKey,
		IsPrimary: photo.IsPrimary,
		SortOrder: photo.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isForeignKey(err) {
			return fmt.Errorf("%w: item %d does not exist", domain.ErrConstraintViolation, photo.ItemID)
		}
		if isDuplicate(err) {
			return fmt.Errorf("%w: sort order %d already used by item %d", domain.ErrDuplicateKey, photo.SortOrder, photo.ItemID)
		}
		return fmt.Errorf("insert photo: %w", err)
	}
	photo.ID = m.ID
	photo.CreatedAt = m.CreatedAt
	return nil
}

func (r *photoRepo) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	var m photoModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	p := m.toDomain()
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

	var models []photoModel
	err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("item_id, sort_order").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	for _, m := range models {
		out[m.ItemID] = append(out[m.ItemID], m.toDomain())
	}
	return out, nil
}

func (r *photoRepo) MaxSortOrder(ctx context.Context, itemID int64) (int, bool, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).Model(&photoModel{}).
		Where("item_id = ?", itemID).
		Select("MAX(sort_order)").
		Row().Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max sort order: %w", err)
	}
	return int(max.Int64), max.Valid, nil
}

func (r *photoRepo) Update(ctx context.Context, id int64, changes domain.PhotoChanges) (int64, error) {
	q := r.db.WithContext(ctx).Model(&photoModel{}).Where("id = ?", id)
	if changes.IsPrimary == nil {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return 0, fmt.Errorf("count photo: %w", err)
		}
		return n, nil
	}
	res := q.Update("is_primary", *changes.IsPrimary)
	if res.Error != nil {
		return 0, fmt.Errorf("update photo: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *photoRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&photoModel{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete photo: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusActive
	}

	m := orderModel{
		FullName:   order.FullName,
		Phone:      order.Phone,
		Email:      order.Email,
		Address:    order.Address,
		Notes:      order.Notes,
		ItemsJSON:  string(itemsJSON),
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = m.ID
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o, err := m.toDomain()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&orderModel{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var models []orderModel
	if err := q.Order("id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]domain.Order, 0, len(models))
	for _, m := range models {
		o, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *orderRepo) Update(ctx context.Context, id int64, changes domain.OrderChanges) (int64, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if changes.Status != nil {
		updates["status"] = string(*changes.Status)
	}
	res := r.db.WithContext(ctx).Model(&orderModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("update order: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *orderRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&orderModel{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete order: %w", res.Error)
	}
	return res.RowsAffected, nil
}
