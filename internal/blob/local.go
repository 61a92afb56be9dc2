package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/msomdec/storefront/internal/domain"
)

// Local stores blobs as files under a root directory.
type Local struct {
	root    string
	baseURL string
}

var _ domain.BlobStore = (*Local)(nil)

// NewLocal creates the root directory if needed. URLs are built as
// baseURL + "/" + key.
func NewLocal(root, baseURL string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blob/local: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blob/local: mkdir: %w", err)
	}
	return &Local{root: abs, baseURL: baseURL}, nil
}

func (d *Local) path(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("blob/local: invalid key %q", key)
	}
	return filepath.Join(d.root, rel), nil
}

func (d *Local) Save(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("blob/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("blob/local: write %s: %w", key, err)
	}
	return nil
}

func (d *Local) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := d.path(key)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("blob/local: read %s: %w", key, err)
	}
	return data, nil
}

func (d *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob/local: delete %s: %w", key, err)
	}
	return nil
}

func (d *Local) URL(key string) string {
	return publicURL(d.baseURL, key)
}
