package service

import (
	"context"
	"errors"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/metrics"
)

// GalleryService manages the ordered photo set of gallery items. Photos are
// appended at max(SortOrder)+1; the first photo of an empty gallery is
// primary. Removing a photo never renumbers the others, and removing the
// primary promotes the remaining photo with the lowest SortOrder.
type GalleryService struct {
	items   domain.CatalogItemRepository
	photos  domain.PhotoRepository
	blobs   domain.BlobStore
	prefix  string
	metrics *metrics.Metrics
}

func NewGalleryService(items domain.CatalogItemRepository, photos domain.PhotoRepository, blobs domain.BlobStore, prefix string, m *metrics.Metrics) *GalleryService {
	return &GalleryService{items: items, photos: photos, blobs: blobs, prefix: prefix, metrics: m}
}

// List returns the item's photos in ascending SortOrder with URLs resolved.
func (s *GalleryService) List(ctx context.Context, itemID int64) ([]domain.Photo, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, storeErr("get item", err)
	}
	photos, err := s.photos.ListByItem(ctx, itemID)
	if err != nil {
		return nil, storeErr("list photos", err)
	}
	s.resolve(photos)
	return photos, nil
}

// AddPhotos stores the uploads and appends them to the item's gallery.
func (s *GalleryService) AddPhotos(ctx context.Context, itemID int64, uploads []Upload) ([]domain.Photo, error) {
	if len(uploads) == 0 {
		return nil, domain.NewFieldError("images", "at least one image is required")
	}
	if err := checkUploads("images", uploads); err != nil {
		return nil, err
	}
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, storeErr("get item", err)
	}

	keys, err := saveUploads(ctx, s.blobs, s.metrics, s.prefix, uploads)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, itemID, keys)
}

// attach creates photo rows for blobs that are already stored.
func (s *GalleryService) attach(ctx context.Context, itemID int64, keys []string) ([]domain.Photo, error) {
	max, hasPhotos, err := s.photos.MaxSortOrder(ctx, itemID)
	if err != nil {
		return nil, storeErr("max sort order", err)
	}
	next := 0
	if hasPhotos {
		next = max + 1
	}

	photos := make([]domain.Photo, 0, len(keys))
	for i, key := range keys {
		p := domain.Photo{
			ItemID:    itemID,
			ImageKey:  key,
			SortOrder: next + i,
			IsPrimary: !hasPhotos && i == 0,
		}
		if err := s.photos.Create(ctx, &p); err != nil {
			logger.From(ctx).Warn("photo row not created, blobs left orphaned",
				"item_id", itemID, "keys", keys[i:], "error", err)
			return nil, storeErr("create photo", err)
		}
		photos = append(photos, p)
	}
	s.resolve(photos)
	return photos, nil
}

// RemovePhoto deletes one photo and its blob. The photo must belong to
// itemID.
func (s *GalleryService) RemovePhoto(ctx context.Context, itemID, photoID int64) error {
	p, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return storeErr("get photo", err)
	}
	if p.ItemID != itemID {
		return domain.ErrNotFound
	}

	err = s.blobs.Delete(ctx, p.ImageKey)
	s.metrics.BlobOp("delete", err)
	if err != nil {
		return storeErr("delete blob", err)
	}

	n, err := s.photos.Delete(ctx, photoID)
	if err != nil {
		return storeErr("delete photo", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	if p.IsPrimary {
		if err := s.promote(ctx, itemID); err != nil {
			return err
		}
	}
	return nil
}

func (s *GalleryService) promote(ctx context.Context, itemID int64) error {
	remaining, err := s.photos.ListByItem(ctx, itemID)
	if err != nil {
		return storeErr("list photos", err)
	}
	if len(remaining) == 0 {
		return nil
	}
	yes := true
	if _, err := s.photos.Update(ctx, remaining[0].ID, domain.PhotoChanges{IsPrimary: &yes}); err != nil {
		return storeErr("promote photo", err)
	}
	return nil
}

// deleteAll removes every blob owned by the item's photos. Rows are left to
// the item delete cascade.
func (s *GalleryService) deleteAll(ctx context.Context, itemID int64) error {
	photos, err := s.photos.ListByItem(ctx, itemID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return storeErr("list photos", err)
	}
	for _, p := range photos {
		err := s.blobs.Delete(ctx, p.ImageKey)
		s.metrics.BlobOp("delete", err)
		if err != nil {
			return storeErr("delete blob", err)
		}
	}
	return nil
}

func (s *GalleryService) resolve(photos []domain.Photo) {
	for i := range photos {
		photos[i].URL = s.blobs.URL(photos[i].ImageKey)
	}
}
