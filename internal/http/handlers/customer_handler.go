// Customer HTTP handlers.
//
// This file exposes REST endpoints for customer resources:
//   - GET /customers       (list, paginated)
//   - GET /customers/{id}  (fetch one profile)
//
// It also hosts the service contracts and the Handlers wiring shared by every
// endpoint in this package. Handlers are transport-thin: they validate input,
// call application services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/services"
	"github.com/tbourn/go-reco-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CustomerService defines read access to the customer tier.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CustomerService interface {
	// ListPage returns a page of customers and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]*domain.Customer, int64, error)
	// Get returns one customer profile by id.
	Get(ctx context.Context, id string) (*domain.Customer, error)
}

// CatalogService defines the profile-aware catalog filter consumed by the
// search endpoint.
type CatalogService interface {
	// Search returns stats-annotated products matching the customer's skin
	// profile and the given intent constraints.
	Search(ctx context.Context, customerID string, intent domain.Intent) ([]services.ProductStats, error)
	// Annotate computes derived stats for a single product.
	Annotate(p *domain.Product) services.ProductStats
	// Product returns one catalog entry by id.
	Product(id string) (*domain.Product, bool)
}

// InsightService extracts same-skin-type review cohorts for a product.
type InsightService interface {
	// Extract returns the sampled reviews and full-cohort metrics for the
	// reviewers of productID whose skin type matches skinType.
	Extract(ctx context.Context, productID, skinType string) ([]domain.Review, services.ReviewMetrics, error)
}

// CrossSellService ranks companion products by shared purchasers.
type CrossSellService interface {
	// CrossSell returns up to topN products most co-purchased with productID.
	CrossSell(ctx context.Context, productID string, topN int) ([]services.RankedProduct, error)
}

// EventService appends behavioral events to the action log.
type EventService interface {
	// Append records one view/cart/purchase event for (customer, product).
	Append(ctx context.Context, customerID, productID, action string, dwellSeconds *int) (*domain.ActionLog, error)
}

// ReviewService creates verified, purchase-backed reviews.
type ReviewService interface {
	// Create persists a review referencing a prior purchase log.
	Create(ctx context.Context, purchaseLogID, customerID, productID string, rate float64, text string) (*domain.Review, error)
}

// Collaborator is the optional language-model boundary. All methods degrade
// gracefully: handlers must produce complete deterministic payloads whether
// or not a collaborator is configured.
type Collaborator interface {
	// Enabled reports whether an API key is configured.
	Enabled() bool
	// ParseIntent extracts a structured search intent from free text.
	ParseIntent(ctx context.Context, query string) domain.Intent
	// SummarizeReviews narrates a non-empty review cohort.
	SummarizeReviews(ctx context.Context, product *domain.Product, skinType string, sample []domain.Review, metrics services.ReviewMetrics) (string, error)
	// CrossSellMessage narrates ranked cross-sell candidates. customer may be
	// nil when the request carries no resolvable profile.
	CrossSellMessage(ctx context.Context, selected *domain.Product, candidates []services.RankedProduct, customer *domain.Customer) (string, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for customers, search, products, events, and
// reviews. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	customerSvc CustomerService
	catalogSvc  CatalogService
	insightSvc  InsightService
	crossSvc    CrossSellService
	eventSvc    EventService
	reviewSvc   ReviewService
	assistant   Collaborator
}

// New constructs and returns a Handlers instance bound to the given services.
// assistant may be nil or disabled; endpoints then omit generated text.
func New(customerSvc CustomerService, catalogSvc CatalogService, insightSvc InsightService,
	crossSvc CrossSellService, eventSvc EventService, reviewSvc ReviewService,
	assistant Collaborator) *Handlers {
	return &Handlers{
		customerSvc: customerSvc,
		catalogSvc:  catalogSvc,
		insightSvc:  insightSvc,
		crossSvc:    crossSvc,
		eventSvc:    eventSvc,
		reviewSvc:   reviewSvc,
		assistant:   assistant,
	}
}

// assistantEnabled reports whether a usable collaborator is wired in.
func (h *Handlers) assistantEnabled() bool {
	return h.assistant != nil && h.assistant.Enabled()
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCustomersResponse wraps a page of customers and pagination information.
type ListCustomersResponse struct {
	Customers  []*domain.Customer `json:"customers"`
	Pagination Pagination         `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// ListCustomers godoc
// @ID          listCustomers
// @Summary     List customers (paginated)
// @Description Returns a page of registered customers ordered by id.
// @Tags        Customers
// @Produce     json
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCustomersResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers [get]
func (h *Handlers) ListCustomers(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.customerSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCustomersResponse{
		Customers: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetCustomer godoc
// @ID          getCustomer
// @Summary     Fetch a customer profile
// @Description Returns the skin profile and registered concerns for one customer.
// @Tags        Customers
// @Produce     json
//
// @Param       id  path  string  true  "Customer ID"  example(C00001)
//
// @Success     200  {object} domain.Customer
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/{id} [get]
func (h *Handlers) GetCustomer(c *gin.Context) {
	cust, err := h.customerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrCustomerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "customer not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, cust)
}
