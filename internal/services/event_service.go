// Package services – EventService
//
// This file implements EventService, the write path for behavioral events.
// Events are append-only: the storefront reports views, cart additions, and
// purchases, and nothing ever updates or deletes a logged row. Referential
// checks run against the database, not the dataset snapshot, so events for
// newly registered customers are accepted immediately.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/repo"
)

// EventService appends behavioral events.
type EventService struct {
	// DB is the database handle used for all event operations.
	DB *gorm.DB
}

// Append validates and persists one behavioral event.
//
// Semantics and validation:
//   - action must be one of view, cart, purchase; otherwise ErrInvalidAction.
//   - dwellSeconds is meaningful only for view events and must be >= 0
//     (ErrInvalidDwell); for other actions it is discarded.
//   - customerID and productID must reference existing rows; otherwise
//     ErrCustomerNotFound / ErrProductNotFound.
//
// On success, it returns the persisted ActionLog.
func (s *EventService) Append(ctx context.Context, customerID, productID, action string, dwellSeconds *int) (*domain.ActionLog, error) {
	if !domain.ValidAction(action) {
		return nil, ErrInvalidAction
	}
	if action != domain.ActionView {
		dwellSeconds = nil
	} else if dwellSeconds != nil && *dwellSeconds < 0 {
		return nil, ErrInvalidDwell
	}

	if _, err := repo.GetCustomer(ctx, s.DB, customerID); err != nil {
		if isNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if _, err := repo.GetProduct(ctx, s.DB, productID); err != nil {
		if isNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return repo.AppendActionLog(ctx, s.DB, customerID, productID, action, dwellSeconds)
}
