package service

import (
	"context"
	"fmt"

	"github.com/msomdec/storefront/internal/blob"
	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/metrics"
)

// Upload is one image received from the transport layer, already size- and
// type-checked there.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// saveUploads writes each upload to the blob store under prefix and returns
// the keys in upload order. On failure the keys saved so far are returned
// alongside the error.
func saveUploads(ctx context.Context, blobs domain.BlobStore, m *metrics.Metrics, prefix string, uploads []Upload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := blob.Key(prefix, u.Filename, u.ContentType)
		err := blobs.Save(ctx, key, u.Data, u.ContentType)
		m.BlobOp("save", err)
		if err != nil {
			return keys, storeErr("save blob", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func checkUploads(field string, uploads []Upload) error {
	for i, u := range uploads {
		if len(u.Data) == 0 {
			return domain.NewFieldError(field, fmt.Sprintf("file %d is empty", i+1))
		}
	}
	return nil
}
