// Package services – ReviewService
//
// This file implements the ReviewService, which governs how customers leave
// reviews on purchased products. It enforces business rules (rate
// granularity, purchase provenance, one review per purchase) and persists
// the review atomically in the database. Service-level errors
// (e.g. ErrInvalidRating, ErrNoPurchase, ErrDuplicateReview) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
//
// A freshly created review becomes visible to catalog statistics and insight
// extraction at the next dataset snapshot rebuild; the in-session snapshot
// stays immutable.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/repo"
)

// ReviewService implements the use-cases around product reviews.
// It validates the operation (purchase provenance, rate grid, uniqueness)
// and persists the review using the provided GORM handle. The service is
// context-aware and opens its own transaction per call.
type ReviewService struct {
	// DB is the database handle used for all review operations.
	// The handle may be a plain *gorm.DB or a transaction-bound handle.
	DB *gorm.DB
}

// Create records a review for purchaseLogID on behalf of customerID.
//
// Semantics and validation:
//   - rate must lie in [1.0, 5.0] on the 0.5-step grid; otherwise
//     ErrInvalidRating.
//   - purchaseLogID must reference an existing action log; the log must be a
//     purchase event and its (customer, product) pair must match the request;
//     otherwise ErrNoPurchase.
//   - A purchase may carry at most one review; attempting a second yields
//     ErrDuplicateReview.
//
// Concurrency & atomicity:
//   - The operation runs inside a transaction so the provenance check and
//     the insert are atomic.
//
// Errors:
//   - Returns the service-level sentinel errors (ErrInvalidRating,
//     ErrNoPurchase, ErrDuplicateReview) for the validation cases above.
//   - Returns the underlying DB error for unexpected failures.
func (s *ReviewService) Create(ctx context.Context, purchaseLogID, customerID, productID string, rate float64, text string) (*domain.Review, error) {
	if !domain.ValidRate(rate) {
		return nil, ErrInvalidRating
	}

	var created *domain.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Load the referenced log and verify it exists.
		log, err := repo.GetActionLog(ctx, tx, purchaseLogID)
		if err != nil {
			if isNotFound(err) {
				return ErrNoPurchase
			}
			return err
		}

		// 2) Only purchase events can be reviewed, and only by the buyer for
		// the bought product.
		if log.Action != domain.ActionPurchase || log.CustomerID != customerID || log.ProductID != productID {
			return ErrNoPurchase
		}

		// 3) Insert with one-review-per-purchase uniqueness semantics.
		r, err := repo.CreateReview(ctx, tx, purchaseLogID, customerID, productID, rate, strings.TrimSpace(text))
		if err != nil {
			// Map duplicate key to a stable service error.
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrDuplicateReview
			}
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
