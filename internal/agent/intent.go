package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// ParseIntent asks the model to extract a product type and concern tags from
// a free-text query. Every failure path (disabled client, API error,
// malformed output, out-of-vocabulary values) degrades to the zero Intent,
// which means "no constraint"; parsing never produces a core error.
func (c *Client) ParseIntent(ctx context.Context, query string) domain.Intent {
	query = strings.TrimSpace(query)
	if query == "" || !c.Enabled() {
		return domain.Intent{}
	}
	raw, err := c.complete(ctx, intentPrompt(query))
	if err != nil {
		return domain.Intent{}
	}
	return DecodeIntent(raw)
}

// DecodeIntent turns a raw model response into a validated Intent. It strips
// code fences, extracts the first balanced JSON object, unmarshals it, and
// drops every value outside the shared vocabularies. Anything unusable
// yields the zero Intent.
func DecodeIntent(raw string) domain.Intent {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return domain.Intent{}
	}

	var payload struct {
		ProductType string   `json:"product_type"`
		Concerns    []string `json:"concerns"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return domain.Intent{}
	}

	var out domain.Intent
	if domain.ValidProductType(payload.ProductType) {
		out.ProductType = payload.ProductType
	}
	for _, tag := range payload.Concerns {
		if domain.ValidConcern(tag) {
			if out.Concerns == nil {
				out.Concerns = domain.NewStringSet()
			}
			out.Concerns[tag] = struct{}{}
		}
	}
	return out
}

func intentPrompt(query string) string {
	return fmt.Sprintf(`Extract the shopping intent from a beauty-store search query.

Query: %q

Allowed product types: %s
Allowed concern tags: %s

Respond with ONLY a JSON object of this shape:
{"product_type": "<one allowed type or empty string>", "concerns": ["<zero or more allowed tags>"]}

Use an empty string / empty list when the query does not mention one. Never
invent values outside the allowed lists.`,
		query,
		strings.Join(domain.ProductTypes(), ", "),
		strings.Join(domain.Concerns(), ", "))
}
