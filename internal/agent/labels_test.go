package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/services"
)

func TestHumanLabel(t *testing.T) {
	cases := map[string]string{
		"acne_trouble":    "Acne Trouble",
		"dehydrated_oily": "Dehydrated Oily",
		"serum":           "Serum",
	}
	for in, want := range cases {
		if got := humanLabel(in); got != want {
			t.Fatalf("humanLabel(%q) = %q, want %q", in, got, want)
		}
	}
	if got := humanLabels([]string{"pores", "redness"}); got != "Pores, Redness" {
		t.Fatalf("humanLabels = %q", got)
	}
}

func TestGeneration_DisabledClientErrors(t *testing.T) {
	c := NewClient("", "")
	ctx := context.Background()

	p := &domain.Product{ID: "p1", Name: "Serum"}
	if _, err := c.SummarizeReviews(ctx, p, "oily", nil, services.ReviewMetrics{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("SummarizeReviews: expected ErrDisabled, got %v", err)
	}

	cust := &domain.Customer{ID: "c1", SkinType: "oily"}
	if _, err := c.CrossSellMessage(ctx, p, nil, cust); !errors.Is(err, ErrDisabled) {
		t.Fatalf("CrossSellMessage: expected ErrDisabled, got %v", err)
	}
}
