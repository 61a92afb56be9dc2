package jsonfile

import (
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

type accountRecord struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r accountRecord) toDomain() *domain.Account {
	return &domain.Account{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

type itemRecord struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       *float64  `json:"price"`
	ImageKey    string    `json:"imageKey,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r itemRecord) toDomain() domain.CatalogItem {
	item := domain.CatalogItem{
		ID:          r.ID,
		Kind:        domain.ItemKind(r.Kind),
		Name:        r.Name,
		Description: r.Description,
		ImageKey:    r.ImageKey,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Price != nil {
		p := *r.Price
		item.Price = &p
	}
	return item
}

type photoRecord struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	ImageKey  string    `json:"imageKey"`
	IsPrimary bool      `json:"isPrimary"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r photoRecord) toDomain() domain.Photo {
	return domain.Photo{
		ID:        r.ID,
		ItemID:    r.ItemID,
		ImageKey:  r.ImageKey,
		IsPrimary: r.IsPrimary,
		SortOrder: r.SortOrder,
		CreatedAt: r.CreatedAt,
	}
}

type orderRecord struct {
	ID         int64              `json:"id"`
	FullName   string             `json:"fullName"`
	Phone      string             `json:"phone"`
	Email      string             `json:"email"`
	Address    string             `json:"address"`
	Notes      string             `json:"notes"`
	Items      []domain.OrderItem `json:"items"`
	TotalPrice float64            `json:"totalPrice"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func (r orderRecord) toDomain() domain.Order {
	items := make([]domain.OrderItem, len(r.Items))
	copy(items, r.Items)
	return domain.Order{
		ID:         r.ID,
		FullName:   r.FullName,
		Phone:      r.Phone,
		Email:      r.Email,
		Address:    r.Address,
		Notes:      r.Notes,
		Items:      items,
		TotalPrice: r.TotalPrice,
		Status:     domain.OrderStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
