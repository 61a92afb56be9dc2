package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

func newGalleryItem(t *testing.T, n int) (*service.CatalogService, *domain.CatalogItem) {
	t.Helper()
	products := service.NewCatalogService(service.ProductVariant, newTestStore(t), newTestBlobs(t))
	var uploads []service.Upload
	for i := range n {
		uploads = append(uploads, pngUpload(string(rune('a'+i))+".png"))
	}
	item, err := products.Create(context.Background(), service.CreateRequest{Name: "Gallery", Images: uploads})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return products, item
}

func TestGallery_AddPhotos_FirstIsPrimaryWhenEmpty(t *testing.T) {
	ctx := context.Background()
	products, item := newGalleryItem(t, 0)

	added, err := products.AddPhotos(ctx, item.ID, []service.Upload{pngUpload("a.png"), pngUpload("b.png")})
	if err != nil {
		t.Fatalf("AddPhotos: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(added))
	}
	if !added[0].IsPrimary || added[1].IsPrimary {
		t.Fatalf("only the first photo should be primary: %+v", added)
	}
	if added[0].SortOrder != 0 || added[1].SortOrder != 1 {
		t.Fatalf("unexpected sort orders %d, %d", added[0].SortOrder, added[1].SortOrder)
	}
}

func TestGallery_AddPhotos_AppendsAfterGap(t *testing.T) {
	ctx := context.Background()
	products, item := newGalleryItem(t, 3)

	if err := products.RemovePhoto(ctx, item.ID, item.Photos[1].ID); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	added, err := products.AddPhotos(ctx, item.ID, []service.Upload{pngUpload("d.png")})
	if err != nil {
		t.Fatalf("AddPhotos: %v", err)
	}
	if added[0].SortOrder != 3 {
		t.Fatalf("expected max+1 = 3, got %d", added[0].SortOrder)
	}
	if added[0].IsPrimary {
		t.Fatal("appending to a non-empty gallery must not add a primary")
	}
}

func TestGallery_AddPhotos_Errors(t *testing.T) {
	ctx := context.Background()
	products, item := newGalleryItem(t, 0)

	if _, err := products.AddPhotos(ctx, item.ID, nil); !errors.Is(err, domain.ErrInvalidField) {
		t.Fatalf("no uploads: expected ErrInvalidField, got %v", err)
	}
	if _, err := products.AddPhotos(ctx, item.ID+1, []service.Upload{pngUpload("a.png")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing item: expected ErrNotFound, got %v", err)
	}
}

func TestGallery_RemovePhoto_KeepsOrderAndPromotesPrimary(t *testing.T) {
	ctx := context.Background()
	products, item := newGalleryItem(t, 3)

	if err := products.RemovePhoto(ctx, item.ID, item.Photos[0].ID); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}

	photos, err := products.Photos(ctx, item.ID)
	if err != nil {
		t.Fatalf("Photos: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if photos[0].SortOrder != 1 || photos[1].SortOrder != 2 {
		t.Fatalf("remaining photos must not be renumbered: %d, %d", photos[0].SortOrder, photos[1].SortOrder)
	}
	if !photos[0].IsPrimary || photos[1].IsPrimary {
		t.Fatalf("lowest remaining sort order should be primary: %+v", photos)
	}
}

func TestGallery_RemovePhoto_NonPrimaryLeavesPrimary(t *testing.T) {
	ctx := context.Background()
	products, item := newGalleryItem(t, 2)

	if err := products.RemovePhoto(ctx, item.ID, item.Photos[1].ID); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	photos, err := products.Photos(ctx, item.ID)
	if err != nil {
		t.Fatalf("Photos: %v", err)
	}
	if len(photos) != 1 || !photos[0].IsPrimary || photos[0].ID != item.Photos[0].ID {
		t.Fatalf("unexpected gallery after removal: %+v", photos)
	}
}

func TestGallery_RemovePhoto_WrongOwner(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	products := service.NewCatalogService(service.ProductVariant, store, newTestBlobs(t))

	a, err := products.Create(ctx, service.CreateRequest{Name: "A", Images: []service.Upload{pngUpload("a.png")}})
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	b, err := products.Create(ctx, service.CreateRequest{Name: "B"})
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}

	if err := products.RemovePhoto(ctx, b.ID, a.Photos[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Photos().GetByID(ctx, a.Photos[0].ID); err != nil {
		t.Fatalf("photo should survive a rejected removal: %v", err)
	}
	if err := products.RemovePhoto(ctx, a.ID, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown photo: expected ErrNotFound, got %v", err)
	}
}

func TestGallery_RemovePhoto_DeletesBlob(t *testing.T) {
	ctx := context.Background()
	blobs := newTestBlobs(t)
	products := service.NewCatalogService(service.ProductVariant, newTestStore(t), blobs)
	item, err := products.Create(ctx, service.CreateRequest{Name: "A", Images: []service.Upload{pngUpload("a.png")}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := products.RemovePhoto(ctx, item.ID, item.Photos[0].ID); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	if _, err := blobs.Get(ctx, item.Photos[0].ImageKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("blob should be deleted, got %v", err)
	}
}

func TestGallery_NotAvailableForHoodies(t *testing.T) {
	ctx := context.Background()
	hoodies := service.NewCatalogService(service.HoodieVariant, newTestStore(t), newTestBlobs(t))
	h, err := hoodies.Create(ctx, service.CreateRequest{Name: "H", Price: "5", Images: []service.Upload{pngUpload("h.png")}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := hoodies.AddPhotos(ctx, h.ID, []service.Upload{pngUpload("x.png")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
