package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/validate"
)

// Variant configures a CatalogService for one kind of item.
type Variant struct {
	Kind         domain.ItemKind
	BlobPrefix   string
	RequirePrice bool
	// Gallery items own an ordered photo set; the others carry exactly one
	// embedded image.
	Gallery bool
}

var (
	HoodieVariant  = Variant{Kind: domain.ItemKindHoodie, BlobPrefix: "hoodies", RequirePrice: true}
	ProductVariant = Variant{Kind: domain.ItemKindProduct, BlobPrefix: "products", Gallery: true}
)

// ListingCache caches public listings. Implementations report misses for
// any failure.
type ListingCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type CreateRequest struct {
	Name        string
	Description string
	Price       string
	Images      []Upload
}

// UpdateRequest carries a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
	Price       *string
	Images      []Upload
}

// CatalogService runs catalog CRUD, search and image lifecycle for one
// Variant.
type CatalogService struct {
	variant  Variant
	items    domain.CatalogItemRepository
	photos   domain.PhotoRepository
	blobs    domain.BlobStore
	gallery  *GalleryService
	cache    ListingCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

type CatalogOption func(*CatalogService)

// WithListingCache caches ListPublic results for ttl. Every mutation
// through the service drops the cached listing.
func WithListingCache(c ListingCache, ttl time.Duration) CatalogOption {
	return func(s *CatalogService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) CatalogOption {
	return func(s *CatalogService) { s.metrics = m }
}

func NewCatalogService(variant Variant, store domain.RecordStore, blobs domain.BlobStore, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		variant: variant,
		items:   store.Items(),
		photos:  store.Photos(),
		blobs:   blobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gallery = NewGalleryService(s.items, s.photos, blobs, variant.BlobPrefix, s.metrics)
	return s
}

func (s *CatalogService) Variant() Variant { return s.variant }

func (s *CatalogService) cacheKey() string {
	return "catalog:" + string(s.variant.Kind)
}

// ListPublic returns every item of the variant, newest first, with image
// URLs resolved.
func (s *CatalogService) ListPublic(ctx context.Context) ([]domain.CatalogItem, error) {
	if s.cache != nil {
		var cached []domain.CatalogItem
		hit := s.cache.Get(ctx, s.cacheKey(), &cached)
		s.metrics.CacheLookup(hit)
		if hit {
			return cached, nil
		}
	}

	items, err := s.items.List(ctx, domain.ItemFilter{Kind: s.variant.Kind})
	if err != nil {
		return nil, storeErr("list items", err)
	}
	if err := s.decorate(ctx, items); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(), items, s.cacheTTL); err != nil {
			logger.From(ctx).Warn("cache catalog listing", "kind", s.variant.Kind, "error", err)
		}
	}
	return items, nil
}

// Search filters the listing by a case-insensitive substring of the name.
// An empty query returns the full listing.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.CatalogItem, error) {
	items, err := s.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items, nil
	}
	matches := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			matches = append(matches, it)
		}
	}
	return matches, nil
}

// Get returns one item of the variant with image URLs resolved.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	items := []domain.CatalogItem{*item}
	if err := s.decorate(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create validates the request, stores the images and then writes the
// record. If the record write fails the stored blobs are left in place.
func (s *CatalogService) Create(ctx context.Context, req CreateRequest) (*domain.CatalogItem, error) {
	name := strings.TrimSpace(req.Name)
	if !validate.Required(name) {
		return nil, domain.NewFieldError("name", "is required")
	}

	var price *float64
	switch raw := strings.TrimSpace(req.Price); {
	case raw == "" && s.variant.RequirePrice:
		return nil, domain.NewFieldError("price", "is required")
	case raw != "":
		p, ok := validate.ParsePrice(raw)
		if !ok {
			return nil, domain.NewFieldError("price", "must be a positive number")
		}
		price = &p
	}

	if !s.variant.Gallery {
		switch {
		case len(req.Images) == 0:
			return nil, domain.NewFieldError("image", "is required")
		case len(req.Images) > 1:
			return nil, domain.NewFieldError("image", "only one image is allowed")
		}
	}
	if err := checkUploads(s.imageField(), req.Images); err != nil {
		return nil, err
	}

	keys, err := saveUploads(ctx, s.blobs, s.metrics, s.variant.BlobPrefix, req.Images)
	if err != nil {
		return nil, err
	}

	item := &domain.CatalogItem{
		Kind:        s.variant.Kind,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       price,
	}
	if !s.variant.Gallery {
		item.ImageKey = keys[0]
	}
	if err := s.items.Create(ctx, item); err != nil {
		logger.From(ctx).Warn("item not created, blobs left orphaned", "keys", keys, "error", err)
		return nil, storeErr("create item", err)
	}

	if s.variant.Gallery && len(keys) > 0 {
		photos, err := s.gallery.attach(ctx, item.ID, keys)
		if err != nil {
			s.invalidate(ctx)
			return nil, err
		}
		item.Photos = photos
	}

	s.invalidate(ctx)
	s.metrics.CatalogMutation(string(s.variant.Kind), "create")
	logger.From(ctx).Info("catalog item created", "kind", s.variant.Kind, "item_id", item.ID)

	item.ImageURL = s.blobs.URL(item.ImageKey)
	return item, nil
}

// Update applies the valid subset of req. Invalid fields are skipped; a
// request with nothing valid to apply fails. A replacement single image is
// stored, then the record updated, then the old blob deleted. Gallery
// uploads are appended.
func (s *CatalogService) Update(ctx context.Context, id int64, req UpdateRequest) (*domain.CatalogItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes domain.ItemChanges
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); validate.Required(name) {
			changes.Name = &name
		}
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		changes.Description = &desc
	}
	if req.Price != nil {
		if p, ok := validate.ParsePrice(*req.Price); ok {
			changes.Price = &p
		}
	}

	images := req.Images
	if checkUploads(s.imageField(), images) != nil {
		images = nil
	}
	if !s.variant.Gallery && len(images) > 1 {
		images = images[:1]
	}

	if changes.Empty() && len(images) == 0 {
		return nil, domain.NewFieldError("update", "nothing to update")
	}

	var oldKey string
	if !s.variant.Gallery && len(images) == 1 {
		keys, err := saveUploads(ctx, s.blobs, s.metrics, s.variant.BlobPrefix, images)
		if err != nil {
			return nil, err
		}
		changes.ImageKey = &keys[0]
		oldKey = item.ImageKey
	}

	if !changes.Empty() {
		n, err := s.items.Update(ctx, id, changes)
		if err != nil || n == 0 {
			if changes.ImageKey != nil {
				logger.From(ctx).Warn("item not updated, new blob left orphaned", "key", *changes.ImageKey)
			}
			if err != nil {
				return nil, storeErr("update item", err)
			}
			return nil, domain.ErrNotFound
		}
	}

	if oldKey != "" {
		err := s.blobs.Delete(ctx, oldKey)
		s.metrics.BlobOp("delete", err)
		if err != nil {
			logger.From(ctx).Warn("old image not deleted", "key", oldKey, "error", err)
		}
	}

	if s.variant.Gallery && len(images) > 0 {
		keys, err := saveUploads(ctx, s.blobs, s.metrics, s.variant.BlobPrefix, images)
		if err != nil {
			s.invalidate(ctx)
			return nil, err
		}
		if _, err := s.gallery.attach(ctx, id, keys); err != nil {
			s.invalidate(ctx)
			return nil, err
		}
	}

	s.invalidate(ctx)
	s.metrics.CatalogMutation(string(s.variant.Kind), "update")
	logger.From(ctx).Info("catalog item updated", "kind", s.variant.Kind, "item_id", id)
	return s.Get(ctx, id)
}

// Delete removes every blob the item owns and then the record; photo rows
// go with it.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	item, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if item.ImageKey != "" {
		err := s.blobs.Delete(ctx, item.ImageKey)
		s.metrics.BlobOp("delete", err)
		if err != nil {
			return storeErr("delete blob", err)
		}
	}
	if err := s.gallery.deleteAll(ctx, id); err != nil {
		return err
	}

	n, err := s.items.Delete(ctx, id)
	if err != nil {
		return storeErr("delete item", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	s.invalidate(ctx)
	s.metrics.CatalogMutation(string(s.variant.Kind), "delete")
	logger.From(ctx).Info("catalog item deleted", "kind", s.variant.Kind, "item_id", id)
	return nil
}

// AddPhotos appends uploads to a gallery item.
func (s *CatalogService) AddPhotos(ctx context.Context, id int64, uploads []Upload) ([]domain.Photo, error) {
	if err := s.requireGallery(ctx, id); err != nil {
		return nil, err
	}
	photos, err := s.gallery.AddPhotos(ctx, id, uploads)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return photos, nil
}

// RemovePhoto deletes one photo from a gallery item.
func (s *CatalogService) RemovePhoto(ctx context.Context, id, photoID int64) error {
	if err := s.requireGallery(ctx, id); err != nil {
		return err
	}
	if err := s.gallery.RemovePhoto(ctx, id, photoID); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.From(ctx).Info("gallery photo removed", "item_id", id, "photo_id", photoID)
	return nil
}

// Photos lists a gallery item's photos in display order.
func (s *CatalogService) Photos(ctx context.Context, id int64) ([]domain.Photo, error) {
	if err := s.requireGallery(ctx, id); err != nil {
		return nil, err
	}
	return s.gallery.List(ctx, id)
}

func (s *CatalogService) requireGallery(ctx context.Context, id int64) error {
	if !s.variant.Gallery {
		return domain.ErrNotFound
	}
	_, err := s.load(ctx, id)
	return err
}

// load fetches an item and hides items of other variants.
func (s *CatalogService) load(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get item", err)
	}
	if item.Kind != s.variant.Kind {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// decorate resolves image URLs and, for gallery items, attaches photos.
func (s *CatalogService) decorate(ctx context.Context, items []domain.CatalogItem) error {
	for i := range items {
		items[i].ImageURL = s.blobs.URL(items[i].ImageKey)
	}
	if !s.variant.Gallery || len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	byItem, err := s.photos.ListByItems(ctx, ids)
	if err != nil {
		return storeErr("list photos", err)
	}
	for i := range items {
		photos := byItem[items[i].ID]
		s.gallery.resolve(photos)
		items[i].Photos = photos
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey()); err != nil && !errors.Is(err, context.Canceled) {
		logger.From(ctx).Warn("invalidate catalog cache", "kind", s.variant.Kind, "error", err)
	}
}

func (s *CatalogService) imageField() string {
	if s.variant.Gallery {
		return "images"
	}
	return "image"
}
