package domain

import "context"

// BlobStore abstracts raw image byte storage. Implementations store bytes in
// SQLite, on local disk, or in S3-compatible object storage.
type BlobStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns ErrNotFound when no blob is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op when the key does not exist.
	Delete(ctx context.Context, key string) error
	// URL resolves key to a reference a client can fetch.
	URL(key string) string
}
