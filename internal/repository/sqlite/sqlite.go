package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// DB is the embedded single-file record store. It implements
// domain.RecordStore.
type DB struct {
	SqlDB *sql.DB

	accounts *accountRepo
	items    *itemRepo
	photos   *photoRepo
	orders   *orderRepo
}

var _ domain.RecordStore = (*DB)(nil)

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps the PRAGMAs below in effect for every query.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{
		SqlDB:    sqlDB,
		accounts: &accountRepo{db: sqlDB},
		items:    &itemRepo{db: sqlDB},
		photos:   &photoRepo{db: sqlDB},
		orders:   &orderRepo{db: sqlDB},
	}, nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Accounts() domain.AccountRepository { return d.accounts }
func (d *DB) Items() domain.CatalogItemRepository { return d.items }
func (d *DB) Photos() domain.PhotoRepository      { return d.photos }
func (d *DB) Orders() domain.OrderRepository      { return d.orders }

// Blobs returns a blob store that keeps image bytes in the file_blobs table
// of this database. URLs are built as baseURL + "/uploads/" + key.
func (d *DB) Blobs(baseURL string) domain.BlobStore {
	return &blobStore{db: d.SqlDB, baseURL: baseURL}
}
