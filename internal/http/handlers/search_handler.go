// Search HTTP handler.
//
// This file exposes the profile-aware catalog search endpoint:
//   - POST /search
//
// The request may carry a free-text query, a structured intent, or both. When
// a query is present and a collaborator is configured, the query is parsed
// into a structured intent; parsing failures silently degrade to "no
// constraint" so that search never fails on collaborator trouble. Sorting is
// a presentation concern and is applied here, after filtering.
package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/http/middleware"
	"github.com/tbourn/go-reco-backend/internal/services"
)

//
// DTOs
//

// SearchIntent is the structured constraint a caller may supply directly,
// bypassing free-text parsing.
type SearchIntent struct {
	// ProductType restricts results to one category when non-empty.
	ProductType string `json:"product_type" example:"serum"`
	// Concerns are desired concern tags; empty means unconstrained.
	Concerns []string `json:"concerns" example:"acne_trouble,pores"`
}

// SearchRequest is the JSON payload for catalog search.
type SearchRequest struct {
	// CustomerID selects the skin profile the filter runs against.
	CustomerID string `json:"customer_id" binding:"required,min=1" example:"C00001"`
	// Query is optional free text, e.g. "a light serum for breakouts".
	Query string `json:"query" example:"something for my acne, maybe a serum"`
	// Intent optionally supplies the constraint directly.
	Intent *SearchIntent `json:"intent,omitempty"`
	// SortBy optionally orders results: price, avg_rating, sales_volume,
	// or review_count. Empty keeps catalog order.
	SortBy string `json:"sort_by" example:"avg_rating"`
	// Limit caps the number of returned products; 0 means no cap.
	Limit int `json:"limit" example:"10"`
}

// SearchResponse contains the resolved intent and the matching products with
// derived stats.
type SearchResponse struct {
	// Intent echoes the constraint the filter actually ran with, whether it
	// came from the caller, the parsed query, or both.
	Intent   domain.Intent           `json:"intent"`
	Count    int                     `json:"count"`
	Products []services.ProductStats `json:"products"`
}

//
// Helpers
//

// resolveIntent merges the structured intent (authoritative per field) with
// the parsed free-text intent. Concern sets are unioned; an explicit product
// type wins over a parsed one.
func resolveIntent(structured domain.Intent, parsed domain.Intent) domain.Intent {
	out := structured
	if out.ProductType == "" {
		out.ProductType = parsed.ProductType
	}
	out.Concerns = out.Concerns.Union(parsed.Concerns)
	return out
}

// sortStats orders results by the requested key. Price sorts ascending
// (cheapest first); all popularity keys sort descending. The sort is stable,
// so ties keep catalog order.
func sortStats(items []services.ProductStats, key string) {
	switch key {
	case "price":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Product.Price < items[j].Product.Price
		})
	case "avg_rating":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].AvgRating > items[j].AvgRating
		})
	case "sales_volume":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SalesVolume > items[j].SalesVolume
		})
	case "review_count":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ReviewCount > items[j].ReviewCount
		})
	}
}

// validSortKey reports whether key names a supported sort order.
func validSortKey(key string) bool {
	switch key {
	case "", "price", "avg_rating", "sales_volume", "review_count":
		return true
	}
	return false
}

//
// Handlers
//

// Search godoc
// @ID          searchProducts
// @Summary     Profile-aware catalog search
// @Description Filters the catalog against the customer's skin profile and the
// @Description given constraints, returning stats-annotated products. A free-text
// @Description query is parsed into a structured intent when an assistant is
// @Description configured; the response echoes the resolved intent.
// @Tags        Search
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SearchRequest  true  "Search payload"
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /search [post]
func (h *Handlers) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "customer_id required")
		return
	}
	if !validSortKey(req.SortBy) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest,
			"sort_by must be one of price, avg_rating, sales_volume, review_count")
		return
	}

	// Structured intent is validated strictly: an explicit unknown value is a
	// caller error, unlike parsed free text which degrades silently.
	var structured domain.Intent
	if req.Intent != nil {
		if pt := strings.TrimSpace(req.Intent.ProductType); pt != "" {
			if !domain.ValidProductType(pt) {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown product_type: "+pt)
				return
			}
			structured.ProductType = pt
		}
		for _, tag := range req.Intent.Concerns {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if !domain.ValidConcern(tag) {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown concern: "+tag)
				return
			}
			structured.Concerns = structured.Concerns.Union(domain.NewStringSet(tag))
		}
	}

	var parsed domain.Intent
	if q := strings.TrimSpace(req.Query); q != "" && h.assistantEnabled() {
		parsed = h.assistant.ParseIntent(ctx, q)
	}
	intent := resolveIntent(structured, parsed)

	results, err := h.catalogSvc.Search(ctx, req.CustomerID, intent)
	if err != nil {
		switch err {
		case services.ErrCustomerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "customer not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSearchFailed, err.Error())
		}
		return
	}

	middleware.ObserveSearchResults(len(results))

	sortStats(results, req.SortBy)
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}

	ok(c, http.StatusOK, SearchResponse{
		Intent:   intent,
		Count:    len(results),
		Products: results,
	})
}
