package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// ErrDuplicate reports that an idempotency record already exists for the
// (customer_id, key) tuple. Keys are scoped per customer so two customers
// reusing the same client-generated key never collide.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a live (non-expired) record or ErrNotFound.
// Expired rows are treated as absent; the write path replaces them.
func GetIdempotency(ctx context.Context, db *gorm.DB, customerID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("customer_id = ? AND key = ? AND expires_at > ?", customerID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency inserts a record that remembers which action log a keyed
// request produced. A unique violation maps to ErrDuplicate so callers can
// fall back to replaying the stored response.
func CreateIdempotency(ctx context.Context, db *gorm.DB, customerID, key, logID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Key:        key,
		LogID:      logID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// isUniqueViolation matches both GORM's translated error and the plain-text
// messages the pure-Go SQLite driver emits for UNIQUE failures.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
