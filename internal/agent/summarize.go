package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/services"
)

// SummarizeReviews produces a short cohort summary for one product from the
// pre-sampled review texts and full-cohort metrics. Callers must not invoke
// it for an empty cohort; the deterministic metrics are the only honest
// answer there.
func (c *Client) SummarizeReviews(ctx context.Context, product *domain.Product, skinType string, sample []domain.Review, metrics services.ReviewMetrics) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	return c.complete(ctx, summaryPrompt(product, skinType, sample, metrics))
}

// CrossSellMessage phrases a recommendation for the ranked co-purchase
// candidates of a product the customer selected. It receives resolved
// product records, never bare ids. customer may be nil (anonymous or
// unresolved); the profile clause is simply omitted then.
func (c *Client) CrossSellMessage(ctx context.Context, selected *domain.Product, candidates []services.RankedProduct, customer *domain.Customer) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	return c.complete(ctx, crossSellPrompt(selected, candidates, customer))
}

func summaryPrompt(product *domain.Product, skinType string, sample []domain.Review, metrics services.ReviewMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize what %s-skin customers say about the product %q.\n\n", humanLabel(skinType), product.Name)
	fmt.Fprintf(&b, "Across all %d reviews from this skin group, the average rate is %.2f and %.1f%% were satisfied (4.0 or higher).\n\n", metrics.TotalReviews, metrics.AvgRate, metrics.SatisfactionPct)
	b.WriteString("Most recent reviews:\n")
	for i, r := range sample {
		fmt.Fprintf(&b, "%d. (%.1f) %s\n", i+1, r.Rate, r.Text)
	}
	b.WriteString("\nWrite 2-3 sentences in plain language for a shopper with the same skin type. Mention the overall sentiment and any recurring point. Do not invent details absent from the reviews.")
	return b.String()
}

func crossSellPrompt(selected *domain.Product, candidates []services.RankedProduct, customer *domain.Customer) string {
	var b strings.Builder
	b.WriteString("A customer")
	if customer != nil {
		fmt.Fprintf(&b, " (%s skin", humanLabel(customer.SkinType))
		if concerns := customer.Concerns.Values(); len(concerns) > 0 {
			fmt.Fprintf(&b, ", concerns: %s", humanLabels(concerns))
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " just chose %q.\n\n", selected.Name)
	b.WriteString("Customers who bought it most often also bought:\n")
	for i, rp := range candidates {
		fmt.Fprintf(&b, "%d. %q by %s (%d co-purchases, %d KRW)\n", i+1, rp.Product.Name, rp.Product.Brand, rp.Count, rp.Product.Price)
	}
	b.WriteString("\nWrite 1-2 friendly sentences suggesting these products. Only mention products from the list above.")
	return b.String()
}
