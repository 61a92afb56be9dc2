package handler

import (
	"encoding/json"
	"time"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

// PrincipalDTO is the JSON representation of the signed-in identity.
type PrincipalDTO struct {
	Role      string `json:"role"`
	Email     string `json:"email"`
	AccountID int64  `json:"accountId,omitempty"`
}

func toPrincipalDTO(p *service.Principal) PrincipalDTO {
	return PrincipalDTO{Role: string(p.Role), Email: p.Email, AccountID: p.AccountID}
}

// HoodieDTO is the JSON representation of a single-image catalog item.
type HoodieDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// ProductDTO is the JSON representation of a gallery catalog item. Images
// and PhotoIDs are parallel and in display order.
type ProductDTO struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price"`
	Images       []string `json:"images"`
	PhotoIDs     []int64  `json:"photoIds"`
	PrimaryImage string   `json:"primaryImage"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// PhotoDTO is the JSON representation of one gallery photo.
type PhotoDTO struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
	SortOrder int    `json:"sortOrder"`
}

func toItemDTO(v service.Variant, it domain.CatalogItem) any {
	if !v.Gallery {
		return HoodieDTO{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			ImageURL:    it.ImageURL,
			CreatedAt:   it.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   it.UpdatedAt.Format(time.RFC3339),
		}
	}

	dto := ProductDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Images:      make([]string, len(it.Photos)),
		PhotoIDs:    make([]int64, len(it.Photos)),
		CreatedAt:   it.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   it.UpdatedAt.Format(time.RFC3339),
	}
	for i, p := range it.Photos {
		dto.Images[i] = p.URL
		dto.PhotoIDs[i] = p.ID
		if p.IsPrimary {
			dto.PrimaryImage = p.URL
		}
	}
	if dto.PrimaryImage == "" && len(dto.Images) > 0 {
		dto.PrimaryImage = dto.Images[0]
	}
	return dto
}

func toItemDTOs(v service.Variant, items []domain.CatalogItem) []any {
	dtos := make([]any, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(v, it)
	}
	return dtos
}

func toPhotoDTOs(photos []domain.Photo) []PhotoDTO {
	dtos := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = PhotoDTO{ID: p.ID, URL: p.URL, IsPrimary: p.IsPrimary, SortOrder: p.SortOrder}
	}
	return dtos
}

// OrderDTO is the JSON representation of an order. ItemsJSON is a JSON
// string of {"items":[...]} for clients that store it verbatim.
type OrderDTO struct {
	ID         int64              `json:"id"`
	FullName   string             `json:"fullName"`
	Phone      string             `json:"phone"`
	Email      string             `json:"email"`
	Address    string             `json:"address"`
	Notes      string             `json:"notes"`
	Items      []domain.OrderItem `json:"items"`
	ItemsJSON  string             `json:"itemsJson"`
	TotalPrice float64            `json:"totalPrice"`
	Status     string             `json:"status"`
	CreatedAt  string             `json:"createdAt"`
	UpdatedAt  string             `json:"updatedAt"`
}

func toOrderDTO(o domain.Order) OrderDTO {
	items := o.Items
	if items == nil {
		items = []domain.OrderItem{}
	}
	encoded, _ := json.Marshal(struct {
		Items []domain.OrderItem `json:"items"`
	}{items})
	return OrderDTO{
		ID:         o.ID,
		FullName:   o.FullName,
		Phone:      o.Phone,
		Email:      o.Email,
		Address:    o.Address,
		Notes:      o.Notes,
		Items:      items,
		ItemsJSON:  string(encoded),
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	return dtos
}
