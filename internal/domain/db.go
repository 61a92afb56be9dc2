package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres, JSON file, etc.) owns its own
// schema strategy, ensuring the entire backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// RecordStore is the storage-agnostic record layer. One implementation is
// selected at startup and injected into the services; implementations must
// behave identically for uniqueness, cascading deletes, ordering and
// read-your-writes.
type RecordStore interface {
	Database
	Accounts() AccountRepository
	Items() CatalogItemRepository
	Photos() PhotoRepository
	Orders() OrderRepository
}
