// Package services – CrossSellService
//
// This file implements CrossSellService, which ranks co-purchased products
// for a target product. Only purchase events matter: customers who bought
// the target form the buyer group, and every other product those buyers
// purchased is ranked by how often it appears in their purchase logs.
//
// The ranking is fully deterministic: count descending, then product id
// ascending. The target itself never appears in its own ranking.
package services

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
)

// DefaultCrossSellLimit is the number of candidates returned when the caller
// does not ask for a specific count.
const DefaultCrossSellLimit = 2

// RankedProduct is one cross-sell candidate with its co-purchase frequency.
type RankedProduct struct {
	Product domain.Product `json:"product"`
	// Count is the number of purchase events for this product among
	// customers who also bought the target.
	Count int `json:"count"`
}

// CrossSellService ranks frequently co-purchased products.
type CrossSellService struct {
	// Data is the immutable dataset snapshot all reads are served from.
	Data *dataset.Store
	// DB backs conditional-response fingerprints (ETag) at the transport
	// layer; reads still come from Data. Optional, may be nil.
	DB *gorm.DB
}

// CrossSell returns up to topN products most frequently purchased by buyers
// of productID, excluding the target itself. topN <= 0 selects
// DefaultCrossSellLimit. Returns ErrProductNotFound when the id is unknown;
// a product nobody bought yields an empty slice.
func (s *CrossSellService) CrossSell(ctx context.Context, productID string, topN int) ([]RankedProduct, error) {
	tr := otel.Tracer("services/CrossSellService")
	_, span := tr.Start(ctx, "CrossSell",
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.Int("top_n", topN),
		),
	)
	defer span.End()

	if _, ok := s.Data.Product(productID); !ok {
		return nil, ErrProductNotFound
	}
	if topN <= 0 {
		topN = DefaultCrossSellLimit
	}

	// Buyer group: every customer with a purchase event for the target.
	buyers := make(map[string]struct{})
	for _, l := range s.Data.PurchaseLogsByProduct(productID) {
		buyers[l.CustomerID] = struct{}{}
	}
	if len(buyers) == 0 {
		return []RankedProduct{}, nil
	}

	// Frequency of each other product across the buyers' purchase events.
	counts := make(map[string]int)
	for buyer := range buyers {
		for _, l := range s.Data.PurchaseLogsByCustomer(buyer) {
			if l.ProductID == productID {
				continue
			}
			counts[l.ProductID]++
		}
	}

	ranked := make([]RankedProduct, 0, len(counts))
	for id, n := range counts {
		p, ok := s.Data.Product(id)
		if !ok {
			continue
		}
		ranked = append(ranked, RankedProduct{Product: *p, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	span.SetAttributes(attribute.Int("result.count", len(ranked)))
	return ranked, nil
}
