// Review HTTP handler.
//
// This file exposes the verified review submission endpoint:
//   - POST /reviews
//
// A review must reference a prior purchase log whose (customer, product) pair
// matches the submission; at most one review may exist per purchase. These
// provenance rules are enforced in the service layer and mapped to HTTP
// results here.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/services"
)

// CreateReviewRequest is the JSON payload for submitting a verified review.
//
// Rate must lie in [1, 5] on a 0.5 step. PurchaseLogID must name a purchase
// event recorded for the same customer and product.
type CreateReviewRequest struct {
	PurchaseLogID string  `json:"purchase_log_id" binding:"required,min=1" example:"7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab"`
	CustomerID    string  `json:"customer_id" binding:"required,min=1" example:"C00001"`
	ProductID     string  `json:"product_id" binding:"required,min=1" example:"P000123"`
	Rate          float64 `json:"rate" binding:"required" example:"4.5"`
	Text          string  `json:"review" example:"Calmed my redness within a week."`
}

// CreateReviewResponse is the JSON envelope for a newly created review.
type CreateReviewResponse struct {
	Review *domain.Review `json:"review"`
}

// CreateReview godoc
// @ID          createReview
// @Summary     Submit a verified review
// @Description Creates a review backed by a prior purchase. The referenced log must
// @Description be a purchase by the same customer for the same product, and each
// @Description purchase accepts at most one review.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateReviewRequest  true  "Review payload"
//
// @Success     201  {object} handlers.CreateReviewResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload or rating"
// @Failure     409  {object} handlers.ErrorResponse "Review already exists for this purchase"
// @Failure     422  {object} handlers.ErrorResponse "No matching purchase"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /reviews [post]
func (h *Handlers) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest,
			"purchase_log_id, customer_id, product_id and rate required")
		return
	}

	rev, err := h.reviewSvc.Create(c.Request.Context(),
		req.PurchaseLogID, req.CustomerID, req.ProductID, req.Rate, strings.TrimSpace(req.Text))
	if err != nil {
		switch err {
		case services.ErrInvalidRating:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rate must be between 1 and 5 in 0.5 steps")
		case services.ErrNoPurchase:
			fail(c, http.StatusUnprocessableEntity, ErrCodeNoPurchase,
				"no matching purchase for this customer and product")
		case services.ErrDuplicateReview:
			fail(c, http.StatusConflict, ErrCodeConflict, "review already exists for this purchase")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, CreateReviewResponse{Review: rev})
}
