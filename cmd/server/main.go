// Command server runs the recommendation-support backend.
//
// Startup sequence: load .env and config, configure zerolog, install
// OpenTelemetry tracing, open SQLite and migrate, seed the database from the
// JSON dataset when empty, build the validated in-memory snapshot, then serve
// the HTTP API with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-reco-backend/docs"
	"github.com/tbourn/go-reco-backend/internal/agent"
	"github.com/tbourn/go-reco-backend/internal/config"
	"github.com/tbourn/go-reco-backend/internal/dataset"
	httpapi "github.com/tbourn/go-reco-backend/internal/http"
	"github.com/tbourn/go-reco-backend/internal/observability"
	"github.com/tbourn/go-reco-backend/internal/repo"
	"github.com/tbourn/go-reco-backend/internal/sysutil"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, Version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctxSh, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctxSh); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	if err := seedIfEmpty(ctx, db, cfg.DataDir); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("seed failed")
	}

	data, err := snapshotFromDB(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("dataset snapshot failed")
	}
	customers, products, logs, reviews := data.Counts()
	log.Info().
		Int("customers", customers).
		Int("products", products).
		Int("logs", logs).
		Int("reviews", reviews).
		Msg("dataset loaded")

	assistant := agent.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if assistant.Enabled() {
		log.Info().Msg("assistant enabled")
	} else {
		log.Info().Msg("assistant disabled, deterministic responses only")
	}

	docs.SwaggerInfo.Version = Version
	docs.SwaggerInfo.BasePath = cfg.APIBasePath

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, data, assistant, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", Version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	ctxSh, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxSh); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// seedIfEmpty imports the JSON dataset collections into SQLite on first run.
// A non-empty customers table means a previous run already seeded (or the
// operator manages the data), so the import is skipped.
func seedIfEmpty(ctx context.Context, db *gorm.DB, dataDir string) error {
	n, err := repo.CountCustomers(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := os.Stat(dataDir); err != nil {
		log.Warn().Str("dir", dataDir).Msg("no dataset directory, starting empty")
		return nil
	}

	c, err := dataset.LoadDir(dataDir)
	if err != nil {
		return err
	}
	// Validate before touching the database; a broken dataset must not be
	// half-imported.
	if _, err := dataset.New(c.Customers, c.Products, c.Logs, c.Reviews); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
}

// snapshotFromDB builds the validated in-memory snapshot from the persisted
// rows. The snapshot serves all read paths; SQLite remains the system of
// record for writes.
func snapshotFromDB(ctx context.Context, db *gorm.DB) (*dataset.Store, error) {
	customers, err := repo.ListCustomers(ctx, db)
	if err != nil {
		return nil, err
	}
	products, err := repo.ListProducts(ctx, db)
	if err != nil {
		return nil, err
	}
	logs, err := repo.ListActionLogs(ctx, db)
	if err != nil {
		return nil, err
	}
	reviews, err := repo.ListReviews(ctx, db)
	if err != nil {
		return nil, err
	}
	return dataset.New(customers, products, logs, reviews)
}
