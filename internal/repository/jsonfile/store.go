// Package jsonfile is a record store kept in a single JSON document. Every
// operation reads the whole file and every mutation rewrites it, so it suits
// development and tests rather than production traffic.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// Store implements domain.RecordStore. Calls are serialized by an
// in-process mutex; there is no isolation between processes sharing a file.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ domain.RecordStore = (*Store)(nil)

// Open returns a store backed by the file at path. The file is created on
// Migrate if it does not exist.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: create directory: %w", err)
	}
	return &Store{path: path, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate writes an empty document when the file is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		_, err := s.read()
		return err
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("jsonfile: stat %s: %w", s.path, err)
	}
	return s.write(&document{})
}

// Ping reads the document back to confirm the file is present and valid.
func (s *Store) Ping(ctx context.Context) error {
	return s.view(ctx, func(*document) error { return nil })
}

func (s *Store) Close() error { return nil }

func (s *Store) Accounts() domain.AccountRepository { return &accountRepo{s: s} }
func (s *Store) Items() domain.CatalogItemRepository { return &itemRepo{s: s} }
func (s *Store) Photos() domain.PhotoRepository      { return &photoRepo{s: s} }
func (s *Store) Orders() domain.OrderRepository      { return &orderRepo{s: s} }

// document is the on-disk layout. Sequences only ever grow so deleted ids
// are never handed out again.
type document struct {
	Sequences sequences       `json:"sequences"`
	Accounts  []accountRecord `json:"accounts"`
	Items     []itemRecord    `json:"items"`
	Photos    []photoRecord   `json:"photos"`
	Orders    []orderRecord   `json:"orders"`
}

type sequences struct {
	Accounts int64 `json:"accounts"`
	Items    int64 `json:"items"`
	Photos   int64 `json:"photos"`
	Orders   int64 `json:"orders"`
}

// view loads the document and hands it to fn without saving.
func (s *Store) view(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	return fn(doc)
}

// mutate loads the document, applies fn and writes the result back. Nothing
// is written when fn fails.
func (s *Store) mutate(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}
	var doc document
	if len(data) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", s.path, err)
	}
	return &doc, nil
}

// write replaces the file atomically through a temp file and rename.
func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("jsonfile: replace %s: %w", s.path, err)
	}
	return nil
}
