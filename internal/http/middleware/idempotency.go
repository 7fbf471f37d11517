// Package middleware contains the shared Gin middleware for the HTTP layer.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen key that makes an unsafe
// request (POST /events) safe to retry. The same key on a retry must mean the
// same semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderCustomerID is an optional hint naming the acting customer. Keys are
// scoped per customer, so the replay pre-check only runs when this hint (or an
// upstream identity) is present; handlers re-check against the body value,
// which stays authoritative.
const HeaderCustomerID = "X-Customer-ID"

// Context keys stashed by IdempotencyValidator, read via the accessors below
// and by the rate limiter.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// keyPattern is a conservative RFC 7230 token shape plus a few safe
// separators clients commonly use in generated keys.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
// Handlers read it from here instead of the raw header.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the pre-check found a stored result for this
// (customer, key) tuple. The handler decides how to serve the replay; the
// middleware never returns a cached payload itself.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. TTL enforcement belongs in
// the lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil uses keyPattern.
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid stored result exists for
// (customerID, key) at the given time. Errors are lookup failures only and
// must not block normal processing.
type IdempotencyLookup func(ctx context.Context, customerID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it in the context, and runs the replay pre-check when it can scope
// the key to a customer. A detected replay also flags the request for rate
// limiter bypass, so a client retrying a completed write is never throttled
// into a different outcome.
//
// Requests without the header pass through untouched; a malformed header is
// rejected with 400 before any handler runs.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = keyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		// The customer scope only travels in the hint header at this point
		// (the body is not read here). Without it the handler still performs
		// the authoritative replay check itself.
		if lookup != nil {
			if cid := customerIDFromCtx(c); cid != "" {
				if exists, _ := lookup(c.Request.Context(), cid, key, time.Now().UTC()); exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}

		c.Next()
	}
}

// customerIDFromCtx returns the acting customer id from upstream middleware
// or the X-Customer-ID hint, or "" when no identity is available.
func customerIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("customerID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(c.GetHeader(HeaderCustomerID))
}
