// Package gormdb is the relational record store. It runs on Postgres or
// MySQL in production; the sqlite dialect is used by its tests.
package gormdb

import (
	"context"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/msomdec/storefront/internal/domain"
)

// Store implements domain.RecordStore on top of gorm.
type Store struct {
	db     *gorm.DB
	driver string
}

var _ domain.RecordStore = (*Store)(nil)

// Open connects to the database named by driver ("postgres", "mysql" or
// "sqlite") and dsn, and configures the connection pool.
func Open(driver, dsn string) (*Store, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("gormdb: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormdb: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormdb: get sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// foreign_keys is per connection; pin one so the cascade always applies.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("gormdb: enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gormdb: ping: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		cfg, err := mysqldriver.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		// Report matched rather than changed rows so Update counts match
		// the other backends.
		cfg.ClientFoundRows = true
		return mysql.Open(cfg.FormatDSN()), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (supported: postgres, mysql, sqlite)", driver)
	}
}

// Migrate creates or alters the tables to match the models.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&accountModel{}, &itemModel{}, &photoModel{}, &orderModel{},
	)
	if err != nil {
		return fmt.Errorf("gormdb: auto migrate: %w", err)
	}
	for _, stmt := range driverDDL(s.driver) {
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("gormdb: %s: %w", stmt, err)
		}
	}
	return nil
}

// driverDDL returns statements that bring a dialect in line with the others
// after AutoMigrate. MySQL's default utf8mb4 collations compare
// case-insensitively; emails must match exactly as on every other backend.
func driverDDL(driver string) []string {
	if driver != "mysql" {
		return nil
	}
	return []string{
		"ALTER TABLE accounts MODIFY email VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
	}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Accounts() domain.AccountRepository { return &accountRepo{db: s.db} }
func (s *Store) Items() domain.CatalogItemRepository { return &itemRepo{db: s.db} }
func (s *Store) Photos() domain.PhotoRepository      { return &photoRepo{db: s.db} }
func (s *Store) Orders() domain.OrderRepository      { return &orderRepo{db: s.db} }
