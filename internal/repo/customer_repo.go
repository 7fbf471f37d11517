// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Customer
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a customer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - ListCustomers(ctx, db) -> []domain.Customer, error
//     Returns every customer row, ordered by primary key ascending.
//
//   - CountCustomers(ctx, db) -> (int64, error)
//     Returns the total number of customer rows.
//
//   - ListCustomersPage(ctx, db, offset, limit) -> []domain.Customer, error
//     Returns a paginated slice of customers.
//
//   - GetCustomer(ctx, db, id) -> *domain.Customer, error
//     Fetches a single customer by ID, or ErrNotFound if missing.
//
// This repository is designed to be wrapped by a higher-level service which
// enforces business rules or cross-aggregate behavior, and by the dataset
// loader that bulk-reads all rows at startup.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListCustomers returns every customer ordered by primary key ascending, so
// bulk loads are deterministic. It returns an empty slice when the table is
// empty. On DB error, it returns the error.
func ListCustomers(ctx context.Context, db *gorm.DB) ([]domain.Customer, error) {
	var out []domain.Customer
	err := db.WithContext(ctx).
		Order("customer_id asc").
		Find(&out).Error
	return out, err
}

// CountCustomers returns the total number of customer rows.
// On DB error, it returns the error.
func CountCustomers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Count(&total).Error
	return total, err
}

// ListCustomersPage returns a paginated slice of customers ordered by primary
// key ascending. Use CountCustomers to obtain the total for pagination
// metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListCustomersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Customer, error) {
	var out []domain.Customer
	err := db.WithContext(ctx).
		Order("customer_id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetCustomer fetches a single customer by its ID. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is
// returned.
func GetCustomer(ctx context.Context, db *gorm.DB, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).
		Where("customer_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
