// Package services – CatalogService
//
// This file implements CatalogService, the application-level component that
// answers product searches for one customer. It combines the customer's
// stored skin profile with an optional parsed intent, narrows the catalog
// through the three filter stages, and annotates every surviving product
// with behavioral statistics derived from reviews and purchase logs.
//
// Filter semantics:
//  1. Type stage: applied only when the intent names a product type; exact
//     category match.
//  2. Profile stage: always applied; the customer's skin type must be a
//     member of the product's target skin types. This stage is never
//     relaxed, not even for an empty result.
//  3. Concern stage: the union of registered and requested concerns must
//     share at least one tag with the product's target concerns; when the
//     union is empty the stage admits everything.
//
// Results are cached per dataset generation; a rebuilt snapshot invalidates
// prior entries without coordination.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// customer identifiers and intent attributes.
package services

import (
	"context"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-reco-backend/internal/cache"
	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
)

// ProductStats is a catalog product annotated with statistics derived from
// the dataset snapshot. A product with no reviews carries zero values, never
// nulls.
type ProductStats struct {
	Product     domain.Product `json:"product"`
	AvgRating   float64        `json:"avg_rating"`
	ReviewCount int            `json:"review_count"`
	SalesVolume int            `json:"sales_volume"`
}

// CatalogService narrows the catalog for one customer and annotates the
// survivors with derived statistics.
type CatalogService struct {
	// Data is the immutable dataset snapshot all reads are served from.
	Data *dataset.Store
	// Cache holds computed result sets keyed by dataset generation. Optional.
	Cache *cache.Cache[[]ProductStats]
}

// Search returns the stats-annotated products admitted by all three filter
// stages for the given customer and intent. The result order follows the
// catalog (product id ascending); any presentation-time sorting is the
// caller's concern, and the returned slice is the caller's to reorder —
// cached entries keep catalog order regardless. Returns ErrCustomerNotFound
// when the customer id is unknown.
func (s *CatalogService) Search(ctx context.Context, customerID string, intent domain.Intent) ([]ProductStats, error) {
	tr := otel.Tracer("services/CatalogService")
	_, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("customer.id", customerID),
			attribute.String("intent.product_type", intent.ProductType),
			attribute.Int("intent.concerns", len(intent.Concerns)),
		),
	)
	defer span.End()

	customer, ok := s.Data.Customer(customerID)
	if !ok {
		return nil, ErrCustomerNotFound
	}

	union := customer.Concerns.Union(intent.Concerns)
	key := searchKey(intent.ProductType, customer.SkinType, union)
	gen := s.Data.Generation()

	if s.Cache != nil {
		if hit, ok := s.Cache.Get(gen, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return append([]ProductStats(nil), hit...), nil
		}
	}

	out := make([]ProductStats, 0)
	for _, p := range s.Data.Products() {
		if intent.ProductType != "" && p.Type != intent.ProductType {
			continue
		}
		if !p.TargetSkinTypes.Contains(customer.SkinType) {
			continue
		}
		if len(union) > 0 && !p.TargetConcerns.Intersects(union) {
			continue
		}
		out = append(out, s.Annotate(p))
	}

	if s.Cache != nil {
		s.Cache.Put(gen, key, out)
		// Callers may reorder the result in place; never hand out the cached
		// backing array.
		out = append([]ProductStats(nil), out...)
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

// Annotate computes the derived statistics for one product. AvgRating is
// rounded to one decimal and is 0 when the product has no reviews.
func (s *CatalogService) Annotate(p *domain.Product) ProductStats {
	ps := ProductStats{Product: *p}

	reviews := s.Data.ReviewsByProduct(p.ID)
	ps.ReviewCount = len(reviews)
	if len(reviews) > 0 {
		var sum float64
		for _, r := range reviews {
			sum += r.Rate
		}
		ps.AvgRating = round1(sum / float64(len(reviews)))
	}
	ps.SalesVolume = len(s.Data.PurchaseLogsByProduct(p.ID))
	return ps
}

// Product returns one catalog entry from the snapshot by id.
func (s *CatalogService) Product(id string) (*domain.Product, bool) {
	return s.Data.Product(id)
}

// searchKey builds a deterministic cache key from the stage inputs. Concern
// order is normalized via the sorted set values.
func searchKey(productType, skinType string, union domain.StringSet) string {
	return productType + "|" + skinType + "|" + strings.Join(union.Values(), ",")
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
