// Stable error codes carried in the ErrorResponse envelope. Clients branch
// on these, never on message text, so a code is append-only once shipped.
// Generic codes mirror HTTP status semantics; the domain codes cover
// business failures the status alone cannot express (a review rejected for
// missing purchase provenance is a 422, but "no_purchase" says why).

package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSearchFailed     = "search_failed"
	ErrCodeInsightFailed    = "insight_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeNoPurchase       = "no_purchase"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
