package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// blobStore implements domain.BlobStore using SQLite BLOBs.
type blobStore struct {
	db      *sql.DB
	baseURL string
}

func (s *blobStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_blobs (storage_key, content_type, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(storage_key) DO UPDATE SET content_type = excluded.content_type, data = excluded.data`,
		key, contentType, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save file blob: %w", err)
	}
	return nil
}

func (s *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM file_blobs WHERE storage_key = ?", key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get file blob: %w", err)
	}
	return data, nil
}

func (s *blobStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM file_blobs WHERE storage_key = ?", key,
	)
	if err != nil {
		return fmt.Errorf("delete file blob: %w", err)
	}
	return nil
}

func (s *blobStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(s.baseURL, "/") + "/uploads/" + key
}
