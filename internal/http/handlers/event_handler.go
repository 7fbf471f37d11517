// Event HTTP handler.
//
// This file exposes the behavioral capture endpoint:
//   - POST /events  (append a view/cart/purchase action log)
//
// The log is append-only; events are never updated or deleted. Idempotency:
// if the client supplies an Idempotency-Key header and a previous successful
// result exists for (customer, key), the handler returns the recorded log and
// sets `Idempotency-Replayed: true`.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/http/middleware"
	"github.com/tbourn/go-reco-backend/internal/repo"
	"github.com/tbourn/go-reco-backend/internal/services"
)

//
// DTOs
//

// AppendEventRequest is the JSON payload for recording one behavioral event.
//
// DwellSeconds is meaningful only for "view" events; it is discarded for cart
// and purchase actions.
type AppendEventRequest struct {
	CustomerID string `json:"customer_id" binding:"required,min=1" example:"C00001"`
	ProductID  string `json:"product_id" binding:"required,min=1" example:"P000123"`
	// Action is one of view, cart, purchase.
	Action       string `json:"action_type" binding:"required,oneof=view cart purchase" example:"purchase"`
	DwellSeconds *int   `json:"dwell_seconds,omitempty" example:"42"`
}

// AppendEventResponse is the JSON envelope for a newly appended action log.
type AppendEventResponse struct {
	Log *domain.ActionLog `json:"log"`
}

// AppendEvent godoc
// @ID          appendEvent
// @Summary     Record a behavioral event
// @Description Appends a view, cart, or purchase event to the action log.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Events
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.AppendEventRequest  true  "Event payload"
//
// @Success     201  {object} handlers.AppendEventResponse  "Appended log"
// @Failure     400  {object} handlers.ErrorResponse        "Bad request"
// @Failure     404  {object} handlers.ErrorResponse        "Customer or product not found"
// @Failure     500  {object} handlers.ErrorResponse        "Internal error"
// @Router      /events [post]
func (h *Handlers) AppendEvent(c *gin.Context) {
	ctx := c.Request.Context()

	var req AppendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest,
			"customer_id, product_id and action_type (view|cart|purchase) required")
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey == "" {
		idemKey, _ = fallbackIdempotencyKey(c)
	}
	if idemKey != "" {
		if svc, okSvc := h.eventSvc.(*services.EventService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, req.CustomerID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetActionLog(ctx, svc.DB, rec.LogID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, AppendEventResponse{Log: prev})
					return
				}
			}
		}
	}

	// Normal processing (service re-validates action and dwell semantics).
	lg, err := h.eventSvc.Append(ctx, req.CustomerID, req.ProductID, req.Action, req.DwellSeconds)
	if err != nil {
		switch err {
		case services.ErrInvalidAction:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action_type must be view, cart, or purchase")
		case services.ErrInvalidDwell:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "dwell_seconds must be >= 0")
		case services.ErrCustomerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "customer not found")
		case services.ErrProductNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.eventSvc.(*services.EventService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, req.CustomerID, idemKey, lg.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, AppendEventResponse{Log: lg})
}

// fallbackIdempotencyKey reads the Idempotency-Key header directly for
// deployments that run the handler without the validating middleware.
func fallbackIdempotencyKey(c *gin.Context) (string, bool) {
	if v := c.GetHeader(middleware.HeaderIdempotencyKey); v != "" {
		return v, true
	}
	return "", false
}
