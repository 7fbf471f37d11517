// Product HTTP handlers.
//
// This file exposes REST endpoints for product resources:
//   - GET /products/{id}             (detail + derived stats)
//   - GET /products/{id}/insight     (same-skin-type review cohort)
//   - GET /products/{id}/cross-sell  (co-purchase ranking)
//
// The insight and cross-sell endpoints optionally attach assistant-generated
// text. The deterministic payload (metrics, samples, rankings) is always
// complete on its own; generated text is additive and best-effort, and the
// assistant is never invoked for an empty review cohort.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/repo"
	"github.com/tbourn/go-reco-backend/internal/services"
	"github.com/tbourn/go-reco-backend/internal/utils"
)

//
// DTOs
//

// InsightResponse carries the review cohort for one (product, skin type) pair.
type InsightResponse struct {
	ProductID string `json:"product_id"`
	SkinType  string `json:"skin_type"`
	// Metrics aggregates over the full cohort, not just the sample.
	Metrics services.ReviewMetrics `json:"metrics"`
	// SampleReviews are the most recent cohort reviews, truncated for display.
	SampleReviews []domain.Review `json:"sample_reviews"`
	// Summary is assistant-generated prose; omitted when no assistant is
	// configured or the cohort is empty.
	Summary string `json:"summary,omitempty"`
}

// CrossSellResponse carries the ranked companion products for one product.
type CrossSellResponse struct {
	ProductID  string                   `json:"product_id"`
	Candidates []services.RankedProduct `json:"candidates"`
	// Message is assistant-generated prose; omitted when unavailable.
	Message string `json:"message,omitempty"`
}

//
// Helpers
//

// resolveSkinType determines the cohort skin type for the insight endpoint.
// An explicit skin_type query wins; otherwise customer_id resolves to that
// customer's profile. Returns ("", false) and writes the error response when
// neither yields a valid value.
func (h *Handlers) resolveSkinType(c *gin.Context) (string, bool) {
	if st := c.Query("skin_type"); st != "" {
		if !domain.ValidSkinType(st) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown skin_type: "+st)
			return "", false
		}
		return st, true
	}
	custID := c.Query("customer_id")
	if custID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "skin_type or customer_id required")
		return "", false
	}
	cust, err := h.customerSvc.Get(c.Request.Context(), custID)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "customer not found")
		return "", false
	}
	return cust.SkinType, true
}

// writeETag sets the ETag header and reports whether the client's
// If-None-Match already matches, in which case 304 has been written.
func writeETag(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

//
// Handlers
//

// GetProduct godoc
// @ID          getProduct
// @Summary     Fetch a product with derived stats
// @Description Returns the catalog entry plus average rating, review count, and
// @Description sales volume derived from the behavioral dataset.
// @Tags        Products
// @Produce     json
//
// @Param       id  path  string  true  "Product ID"  example(P000123)
//
// @Success     200  {object} services.ProductStats
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	p, found := h.catalogSvc.Product(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}
	ok(c, http.StatusOK, h.catalogSvc.Annotate(p))
}

// GetProductInsight godoc
// @ID          getProductInsight
// @Summary     Review insight for a skin-type cohort
// @Description Returns full-cohort review metrics and a recency-ordered sample for
// @Description reviewers sharing the given skin type. The cohort skin type comes
// @Description from skin_type, or from customer_id's profile when omitted. An
// @Description assistant summary is attached only for non-empty cohorts.
// @Tags        Products
// @Produce     json
//
// @Param       id             path    string  true   "Product ID"   example(P000123)
// @Param       skin_type      query   string  false  "Cohort skin type"  example(dry)
// @Param       customer_id    query   string  false  "Customer whose profile sets the cohort"  example(C00001)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"insight:P000123:dry:6:1714557600\")
//
// @Success     200  {object} handlers.InsightResponse
// @Header      200  {string} ETag "Weak ETag for the current cohort data"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Product or customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id}/insight [get]
func (h *Handlers) GetProductInsight(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("id")

	skinType, okST := h.resolveSkinType(c)
	if !okST {
		return
	}

	// ETag pre-check (best effort). Reviews are append-only, so the
	// (count, latest timestamp) pair fingerprints this product's cohort data.
	var db *gorm.DB
	if svc, ok := h.insightSvc.(*services.InsightService); ok {
		db = svc.DB
	}
	if db != nil {
		if count, maxTS, err := repo.ReviewsStats(ctx, db, productID); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			if writeETag(c, fmt.Sprintf(`W/"insight:%s:%s:%d:%d"`, productID, skinType, count, ts)) {
				return
			}
		}
	}

	sample, metrics, err := h.insightSvc.Extract(ctx, productID, skinType)
	if err != nil {
		switch err {
		case services.ErrProductNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInsightFailed, err.Error())
		}
		return
	}

	resp := InsightResponse{
		ProductID:     productID,
		SkinType:      skinType,
		Metrics:       metrics,
		SampleReviews: sample,
	}

	// An empty cohort must never reach the assistant.
	if metrics.TotalReviews > 0 && h.assistantEnabled() {
		if p, found := h.catalogSvc.Product(productID); found {
			if summary, err := h.assistant.SummarizeReviews(ctx, p, skinType, sample, metrics); err == nil {
				resp.Summary = summary
			}
		}
	}

	ok(c, http.StatusOK, resp)
}

// GetProductCrossSell godoc
// @ID          getProductCrossSell
// @Summary     Co-purchase companion ranking
// @Description Returns the products most frequently bought by the buyers of the
// @Description given product, ranked by shared-purchaser count. An assistant
// @Description message is attached when a customer_id is supplied and candidates exist.
// @Tags        Products
// @Produce     json
//
// @Param       id             path    string  true   "Product ID"  example(P000123)
// @Param       top_n          query   int     false  "Maximum candidates"  minimum(1) maximum(20) default(2)
// @Param       customer_id    query   string  false  "Customer to personalize the message for"  example(C00001)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"cross-sell:P000123:2:40:1714557600\")
//
// @Success     200  {object} handlers.CrossSellResponse
// @Header      200  {string} ETag "Weak ETag for the current co-purchase data"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Product not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /products/{id}/cross-sell [get]
func (h *Handlers) GetProductCrossSell(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("id")

	topN := utils.AtoiDefault(c.Query("top_n"), services.DefaultCrossSellLimit)
	if topN < 1 {
		topN = services.DefaultCrossSellLimit
	}
	if topN > 20 {
		topN = 20
	}

	// ETag pre-check (best effort). The action_logs table is append-only, so
	// its (count, latest timestamp) pair fingerprints every co-purchase
	// ranking; topN varies the body and joins the key.
	var db *gorm.DB
	if svc, ok := h.crossSvc.(*services.CrossSellService); ok {
		db = svc.DB
	}
	if db != nil {
		if count, maxTS, err := repo.ActionLogsStats(ctx, db); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			if writeETag(c, fmt.Sprintf(`W/"cross-sell:%s:%d:%d:%d"`, productID, topN, count, ts)) {
				return
			}
		}
	}

	candidates, err := h.crossSvc.CrossSell(ctx, productID, topN)
	if err != nil {
		switch err {
		case services.ErrProductNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	resp := CrossSellResponse{
		ProductID:  productID,
		Candidates: candidates,
	}

	if len(candidates) > 0 && h.assistantEnabled() {
		if p, found := h.catalogSvc.Product(productID); found {
			var cust *domain.Customer
			if custID := c.Query("customer_id"); custID != "" {
				cust, _ = h.customerSvc.Get(ctx, custID)
			}
			if msg, err := h.assistant.CrossSellMessage(ctx, p, candidates, cust); err == nil {
				resp.Message = msg
			}
		}
	}

	ok(c, http.StatusOK, resp)
}
