package gormdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

type accountModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
}

func (accountModel) TableName() string { return "accounts" }

func (m accountModel) toDomain() *domain.Account {
	return &domain.Account{ID: m.ID, Email: m.Email, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt}
}

type itemModel struct {
	ID          int64    `gorm:"primaryKey;autoIncrement"`
	Kind        string   `gorm:"size:16;not null;index"`
	Name        string   `gorm:"size:255;not null"`
	Description string   `gorm:"type:text;not null"`
	Price       *float64
	ImageKey    string `gorm:"size:512;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (itemModel) TableName() string { return "items" }

func (m itemModel) toDomain() domain.CatalogItem {
	return domain.CatalogItem{
		ID:          m.ID,
		Kind:        domain.ItemKind(m.Kind),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageKey:    m.ImageKey,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type photoModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ItemID    int64  `gorm:"not null;uniqueIndex:idx_photos_item_sort"`
	ImageKey  string `gorm:"size:512;not null"`
	IsPrimary bool   `gorm:"not null;default:false"`
	SortOrder int    `gorm:"not null;uniqueIndex:idx_photos_item_sort"`
	CreatedAt time.Time

	Item *itemModel `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

func (photoModel) TableName() string { return "photos" }

func (m photoModel) toDomain() domain.Photo {
	return domain.Photo{
		ID:        m.ID,
		ItemID:    m.ItemID,
		ImageKey:  m.ImageKey,
		IsPrimary: m.IsPrimary,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
	}
}

type orderModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	FullName   string `gorm:"size:255;not null"`
	Phone      string `gorm:"size:32;not null"`
	Email      string `gorm:"size:255;not null"`
	Address    string `gorm:"type:text;not null"`
	Notes      string `gorm:"type:text;not null"`
	ItemsJSON  string `gorm:"column:items_json;type:text;not null"`
	TotalPrice float64
	Status     string `gorm:"size:16;not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (orderModel) TableName() string { return "orders" }

func (m orderModel) toDomain() (domain.Order, error) {
	o := domain.Order{
		ID:         m.ID,
		FullName:   m.FullName,
		Phone:      m.Phone,
		Email:      m.Email,
		Address:    m.Address,
		Notes:      m.Notes,
		TotalPrice: m.TotalPrice,
		Status:     domain.OrderStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(m.ItemsJSON), &o.Items); err != nil {
		return o, fmt.Errorf("decode order %d items: %w", m.ID, err)
	}
	return o, nil
}
