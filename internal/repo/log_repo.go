// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ActionLog
// model. The action_logs table is append-only: rows are inserted and read,
// never updated or deleted.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// AppendActionLog inserts a new behavioral event row. The log ID is a
// randomly generated UUID (string), and CreatedAt is set to UTC.
// dwellSeconds is recorded as given; callers pass nil for non-view events.
//
// On success, it returns the persisted ActionLog. On failure, it returns a
// DB error.
func AppendActionLog(ctx context.Context, db *gorm.DB, customerID, productID, action string, dwellSeconds *int) (*domain.ActionLog, error) {
	l := &domain.ActionLog{
		ID:           uuid.NewString(),
		CustomerID:   customerID,
		ProductID:    productID,
		Action:       action,
		DwellSeconds: dwellSeconds,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// ListActionLogs returns logs ordered deterministically (CreatedAt ASC, ID ASC).
func ListActionLogs(ctx context.Context, db *gorm.DB) ([]domain.ActionLog, error) {
	var out []domain.ActionLog
	err := db.WithContext(ctx).
		Order("created_at ASC, log_id ASC").
		Find(&out).Error
	return out, err
}

// GetActionLog fetches a log row by ID, or ErrNotFound if missing.
func GetActionLog(ctx context.Context, db *gorm.DB, id string) (*domain.ActionLog, error) {
	var l domain.ActionLog
	if err := db.WithContext(ctx).Where("log_id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
