// Package repo is the persistence layer: SQLite via GORM with the pure-Go
// driver, plus small per-entity query helpers. Reads that feed the
// recommendation pipelines go through the in-memory dataset snapshot; this
// package owns the durable writes and the rows the snapshot is rebuilt from.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
}

// OpenSQLite opens (or creates) the database file, applies PRAGMAs, and tunes
// the connection pool. The parent directory must already exist; checking up
// front turns the driver's opaque "out of memory (14)" into a clear stat error.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	for _, p := range pragmas {
		db.Exec(p)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Customer{},
		&domain.Product{},
		&domain.ActionLog{},
		&domain.Review{},
		&domain.Idempotency{},
	)
}
