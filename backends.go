package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/msomdec/storefront/internal/blob"
	"github.com/msomdec/storefront/internal/config"
	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/repository/gormdb"
	"github.com/msomdec/storefront/internal/repository/jsonfile"
	"github.com/msomdec/storefront/internal/repository/sqlite"
)

// openStore opens the record store selected by STORE_DRIVER and applies its
// migrations.
func openStore(ctx context.Context, cfg *config.Config) (domain.RecordStore, error) {
	var (
		store domain.RecordStore
		err   error
	)
	switch cfg.StoreDriver {
	case "sqlite":
		store, err = sqlite.New(cfg.DatabasePath)
	case "postgres", "mysql":
		store, err = gormdb.Open(cfg.StoreDriver, cfg.DatabaseDSN)
	case "jsonfile":
		store, err = jsonfile.Open(cfg.JSONStorePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate %s store: %w", cfg.StoreDriver, err)
	}
	slog.Info("record store ready", "driver", cfg.StoreDriver)
	return store, nil
}

// openBlobs returns the blob store selected by BLOB_DRIVER and whether its
// URLs live outside this server.
func openBlobs(ctx context.Context, cfg *config.Config, store domain.RecordStore) (domain.BlobStore, bool, error) {
	switch cfg.BlobDriver {
	case "local":
		blobs, err := blob.NewLocal(cfg.UploadDir, cfg.UploadsURL())
		if err != nil {
			return nil, false, fmt.Errorf("open upload dir: %w", err)
		}
		return blobs, false, nil
	case "s3":
		blobs, err := blob.NewS3(ctx, blob.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
		if err != nil {
			return nil, false, err
		}
		return blobs, true, nil
	case "sqlite":
		db, ok := store.(*sqlite.DB)
		if !ok {
			return nil, false, fmt.Errorf("blob driver sqlite needs the sqlite record store, have %s", cfg.StoreDriver)
		}
		return db.Blobs(cfg.PublicBaseURL), false, nil
	default:
		return nil, false, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
