// Package services – InsightService
//
// This file implements InsightService, which prepares the review material a
// downstream summarizer (or an API caller) consumes for one product: cohort
// metrics computed over every review left by customers who share the
// requesting customer's skin type, plus a small sample of the most recent
// review texts.
//
// The metrics always cover the full cohort; only the sample is bounded. A
// product nobody from the cohort has reviewed yields zero metrics and an
// empty sample, and callers must not invoke a summarizer for it.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// the product id and cohort skin type.
package services

import (
	"context"
	"math"
	"sort"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
)

const (
	// MaxSample bounds the number of review texts returned for summarization.
	MaxSample = 5
	// MaxReviewRunes bounds each sampled text; longer texts are truncated and
	// marked with an ellipsis.
	MaxReviewRunes = 300
	// SatisfactionThreshold is the minimum rate counted as a satisfied review.
	SatisfactionThreshold = 4.0
)

// ReviewMetrics aggregates the full same-skin-type cohort for one product.
type ReviewMetrics struct {
	// TotalReviews is the cohort size, not the sample size.
	TotalReviews int `json:"total_reviews"`
	// AvgRate is the cohort mean rate, rounded to two decimals.
	AvgRate float64 `json:"avg_rate"`
	// SatisfactionPct is the share of cohort reviews at or above the
	// satisfaction threshold, as a percentage rounded to one decimal.
	SatisfactionPct float64 `json:"satisfaction_pct"`
}

// InsightService assembles cohort review metrics and sampled texts.
type InsightService struct {
	// Data is the immutable dataset snapshot all reads are served from.
	Data *dataset.Store
	// DB backs conditional-response fingerprints (ETag) at the transport
	// layer; reads still come from Data. Optional, may be nil.
	DB *gorm.DB
}

// Extract returns the sampled reviews and full-cohort metrics for productID,
// where the cohort is every review left by a customer whose skin type equals
// skinType. The sample holds at most MaxSample reviews, most recent first
// (ties broken by review id descending), each text truncated to
// MaxReviewRunes runes. Returns ErrProductNotFound when the id is unknown.
func (s *InsightService) Extract(ctx context.Context, productID, skinType string) ([]domain.Review, ReviewMetrics, error) {
	tr := otel.Tracer("services/InsightService")
	_, span := tr.Start(ctx, "Extract",
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.String("cohort.skin_type", skinType),
		),
	)
	defer span.End()

	if _, ok := s.Data.Product(productID); !ok {
		return nil, ReviewMetrics{}, ErrProductNotFound
	}

	// Cohort: reviews of this product whose author shares the skin type.
	var cohort []*domain.Review
	for _, r := range s.Data.ReviewsByProduct(productID) {
		c, ok := s.Data.Customer(r.CustomerID)
		if !ok || c.SkinType != skinType {
			continue
		}
		cohort = append(cohort, r)
	}
	span.SetAttributes(attribute.Int("cohort.size", len(cohort)))

	if len(cohort) == 0 {
		return []domain.Review{}, ReviewMetrics{}, nil
	}

	// Metrics over the full cohort, never just the sample.
	var sum float64
	satisfied := 0
	for _, r := range cohort {
		sum += r.Rate
		if r.Rate >= SatisfactionThreshold {
			satisfied++
		}
	}
	metrics := ReviewMetrics{
		TotalReviews:    len(cohort),
		AvgRate:         round2(sum / float64(len(cohort))),
		SatisfactionPct: round1(100 * float64(satisfied) / float64(len(cohort))),
	}

	// Sample: most recent first, ties by id descending so order is stable.
	sort.Slice(cohort, func(i, j int) bool {
		if !cohort[i].CreatedAt.Equal(cohort[j].CreatedAt) {
			return cohort[i].CreatedAt.After(cohort[j].CreatedAt)
		}
		return cohort[i].ID > cohort[j].ID
	})
	n := len(cohort)
	if n > MaxSample {
		n = MaxSample
	}
	sample := make([]domain.Review, 0, n)
	for _, r := range cohort[:n] {
		cp := *r
		cp.Text = truncateRunes(cp.Text, MaxReviewRunes)
		sample = append(sample, cp)
	}

	return sample, metrics, nil
}

// truncateRunes clips s to max runes, appending an ellipsis when clipped.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
