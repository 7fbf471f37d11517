// Command seed imports the JSON dataset collections into a SQLite database.
//
// It validates the full dataset (schema and referential integrity) before
// writing anything, then replaces the existing rows. Useful for preparing a
// database out of band instead of relying on the server's first-run import.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/repo"
)

func main() {
	dataDir := flag.String("data", "data", "directory holding customers.json, products.json, logs.json, reviews.json")
	dbPath := flag.String("db", "app.db", "SQLite database path")
	pretty := flag.Bool("pretty", true, "human-readable log output")
	flag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	c, err := dataset.LoadDir(*dataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dataDir).Msg("load dataset failed")
	}
	if _, err := dataset.New(c.Customers, c.Products, c.Logs, c.Reviews); err != nil {
		log.Fatal().Err(err).Msg("dataset validation failed")
	}

	db, err := repo.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&domain.Review{}, &domain.ActionLog{}, &domain.Product{}, &domain.Customer{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		const batch = 500
		if err := tx.CreateInBatches(c.Customers, batch).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(c.Products, batch).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(c.Logs, batch).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(c.Reviews, batch).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	log.Info().
		Int("customers", len(c.Customers)).
		Int("products", len(c.Products)).
		Int("logs", len(c.Logs)).
		Int("reviews", len(c.Reviews)).
		Str("db", *dbPath).
		Msg("dataset imported")
}
