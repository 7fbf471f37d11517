// Package handlers provides HTTP handler implementations for the public API.
//
// Every endpoint responds in one of two shapes: a plain JSON body on
// success, or an ErrorResponse envelope on failure. The helpers in this file
// keep those shapes uniform so clients can branch on status code plus the
// stable `code` field and never need to parse message text.
//
// Example failure:
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "no_purchase",
//	  "message": "no matching purchase for this customer and product"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-reco-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint. RequestID
// echoes the X-Request-ID correlation header so a client-side error can be
// matched with the server logs; Code is one of the errors.go constants.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"product not found"`
}

// fail writes the ErrorResponse envelope and aborts the chain. Server-side
// failures (>= 500) are additionally logged through the request-scoped
// logger; client errors already appear in the access log at warn level.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for callers outside this package,
// such as the router's NoRoute and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 without a body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
