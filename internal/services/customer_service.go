// Package services – CustomerService
//
// This file implements CustomerService, which exposes read-only access to
// the customer collection of the dataset snapshot. Customers are created by
// an out-of-band registration flow, so there are no write operations here.
//
// Service-level errors (e.g., ErrCustomerNotFound) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"

	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
)

// CustomerService provides customer lookups over the dataset snapshot.
type CustomerService struct {
	// Data is the immutable dataset snapshot all reads are served from.
	Data *dataset.Store
}

// ListPage returns a page of customers ordered by id (paginated).
// It applies defaults for invalid page/pageSize and returns the total count.
func (s *CustomerService) ListPage(ctx context.Context, page, pageSize int) ([]*domain.Customer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	all := s.Data.Customers()
	total := int64(len(all))

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []*domain.Customer{}, total, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// Get fetches a customer by id, or ErrCustomerNotFound if missing.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c, ok := s.Data.Customer(id)
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}
