// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) and for
// deciding whether the in-memory dataset snapshot is stale. Each function is
// context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// ActionLogsStats returns aggregate metadata for the action_logs table: the
// total number of rows and the maximum CreatedAt timestamp among those rows.
//
// The table is append-only, so (count, maxCreatedAt) changes exactly when new
// events arrive; the pair is a cheap staleness fingerprint for the dataset
// snapshot. When the table is empty, the returned count is 0 and
// maxCreatedAt is nil.
//
// Return values:
//   - count:        total action log rows
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func ActionLogsStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ActionLog{})

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

// ReviewsStats returns aggregate metadata for reviews of a given product:
// the total number of rows and the maximum CreatedAt timestamp among those
// rows. When the product has no reviews, the returned count is 0 and
// maxCreatedAt is nil.
//
// Return values:
//   - count:        total reviews for productID
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func ReviewsStats(ctx context.Context, db *gorm.DB, productID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Review{}).Where("product_id = ?", productID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
