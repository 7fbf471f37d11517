// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules (purchase provenance, rate
// granularity) to the services package.
//
// Error semantics:
//   - A second review for the same purchase_log_id relies on the database
//     unique constraint and is returned as a raw DB error. The service layer
//     should translate that into a domain error (e.g., ErrDuplicateReview).
//   - On other DB errors (connectivity, constraints, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// CreateReview inserts a review row referencing one purchase log.
//
// The purchase_log_id column carries a unique index, so a second review for
// the same purchase fails with a DB error which the service layer translates
// into a domain-level duplicate error. Rate and provenance validation are
// expected to be enforced at higher layers (handlers/services).
//
// On success, it returns the persisted Review. On failure, it returns a DB
// error.
func CreateReview(ctx context.Context, db *gorm.DB, purchaseLogID, customerID, productID string, rate float64, text string) (*domain.Review, error) {
	r := &domain.Review{
		ID:            uuid.NewString(),
		PurchaseLogID: purchaseLogID,
		CustomerID:    customerID,
		ProductID:     productID,
		Rate:          rate,
		Text:          text,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviews returns reviews ordered deterministically (CreatedAt ASC, ID ASC).
func ListReviews(ctx context.Context, db *gorm.DB) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Order("created_at ASC, review_id ASC").
		Find(&out).Error
	return out, err
}
