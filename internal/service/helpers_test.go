package service_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/blob"
	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/repository/sqlite"
	"github.com/msomdec/storefront/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

var errBackendDown = errors.New("backend down")

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestBlobs(t *testing.T) *blob.Local {
	t.Helper()
	store, _ := newTestBlobsDir(t)
	return store
}

func newTestBlobsDir(t *testing.T) (*blob.Local, string) {
	t.Helper()
	root := t.TempDir()
	store, err := blob.NewLocal(root, "http://shop.test/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return store, root
}

// blobFiles lists every file stored under root.
func blobFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk blobs: %v", err)
	}
	return files
}

func pngUpload(name string) service.Upload {
	return service.Upload{
		Filename:    name,
		ContentType: "image/png",
		Data:        []byte("\x89PNG\r\n\x1a\n" + name),
	}
}

// failingItems fails every item insert while leaving reads intact.
type failingItems struct {
	domain.CatalogItemRepository
}

func (failingItems) Create(context.Context, *domain.CatalogItem) error { return errBackendDown }

type brokenItemsStore struct {
	domain.RecordStore
}

func (s brokenItemsStore) Items() domain.CatalogItemRepository {
	return failingItems{s.RecordStore.Items()}
}

// countingCache is an in-memory ListingCache.
type countingCache struct {
	entries map[string]any
	deletes int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[string]any{}}
}

func (c *countingCache) Get(_ context.Context, key string, dest any) bool {
	v, ok := c.entries[key]
	if !ok {
		return false
	}
	p, ok := dest.(*[]domain.CatalogItem)
	if !ok {
		return false
	}
	*p = v.([]domain.CatalogItem)
	return true
}

func (c *countingCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *countingCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}
