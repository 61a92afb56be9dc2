package domain

import (
	"context"
	"time"
)

// ItemKind separates the single-image and gallery catalogs that share the
// items table.
type ItemKind string

const (
	ItemKindHoodie  ItemKind = "hoodie"
	ItemKindProduct ItemKind = "product"
)

// CatalogItem is a purchasable listing.
type CatalogItem struct {
	ID          int64
	Kind        ItemKind
	Name        string
	Description string
	Price       *float64 // nil when the listing has no price
	ImageKey    string   // blob key of the embedded image (single-image kind)
	Photos      []Photo  // gallery, ascending SortOrder (gallery kind)
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// ImageURL is resolved from ImageKey by the catalog service; not persisted.
	ImageURL string
}

// Photo is one image in a catalog item's gallery.
type Photo struct {
	ID        int64
	ItemID    int64
	ImageKey  string
	IsPrimary bool
	SortOrder int
	CreatedAt time.Time

	// URL is resolved from ImageKey by the service layer; not persisted.
	URL string
}

// ItemFilter narrows a catalog listing. Results are newest-first unless
// Ascending is set.
type ItemFilter struct {
	Kind      ItemKind
	Ascending bool
}

// ItemChanges lists the columns an update touches. Nil fields are left as is.
type ItemChanges struct {
	Name        *string
	Description *string
	Price       *float64
	ImageKey    *string
}

// Empty reports whether no field would change.
func (c ItemChanges) Empty() bool {
	return c.Name == nil && c.Description == nil && c.Price == nil && c.ImageKey == nil
}

// PhotoChanges lists the photo columns an update touches.
type PhotoChanges struct {
	IsPrimary *bool
}

// CatalogItemRepository defines persistence operations for catalog items.
// Update and Delete report the number of affected rows; Delete also removes
// every Photo owned by the item.
type CatalogItemRepository interface {
	Create(ctx context.Context, item *CatalogItem) error
	GetByID(ctx context.Context, id int64) (*CatalogItem, error)
	List(ctx context.Context, filter ItemFilter) ([]CatalogItem, error)
	Update(ctx context.Context, id int64, changes ItemChanges) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// PhotoRepository defines persistence operations for gallery photos.
// Create returns ErrConstraintViolation when the owning item does not exist.
type PhotoRepository interface {
	Create(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id int64) (*Photo, error)
	ListByItem(ctx context.Context, itemID int64) ([]Photo, error)
	ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]Photo, error)
	// MaxSortOrder returns the highest SortOrder for the item; ok is false
	// when the item has no photos.
	MaxSortOrder(ctx context.Context, itemID int64) (max int, ok bool, err error)
	Update(ctx context.Context, id int64, changes PhotoChanges) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
