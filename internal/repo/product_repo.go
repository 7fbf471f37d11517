// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// ListProducts returns every product ordered by primary key ascending.
func ListProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Order("product_id asc").
		Find(&out).Error
	return out, err
}

// CountProducts uses a raw COUNT so a missing table surfaces as an error.
func CountProducts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM products").Scan(&total).Error
	return total, err
}

// GetProduct fetches a product by ID, or ErrNotFound if missing.
func GetProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).Where("product_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
