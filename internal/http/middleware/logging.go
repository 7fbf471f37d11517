// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Correlation and logging span three pieces that compose in order:
// RequestID() first so every request carries a stable X-Request-ID, then
// Logger() which emits one structured access line per request and parks a
// request-scoped zerolog.Logger in the context, then Recovery() so panics
// are logged with the correlation ID before the JSON 500 goes out.
// Handlers and services reach the scoped logger through LoggerFrom.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	// Caps the raw query bytes written to a log line; search queries can be
	// arbitrarily long free text.
	maxQueryLogLength = 2048
)

// RequestID reuses the inbound X-Request-ID when present and generates a
// UUIDv4 otherwise. The ID is echoed on the response header and stored in
// the Gin context for the rest of the chain.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger emits a structured access log per request and stores a
// request-scoped logger under the "logger" context key. The access line
// carries the correlation ID, the acting customer ID when a handler set one,
// route pattern (raw path for unmatched routes), peer metadata, and
// request/response sizes. Level follows the outcome: error for 5xx or when
// the Gin error list is non-empty, warn for 4xx, info otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path // unmatched route
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", c.Request.Referer()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set("logger", &l)

		c.Next()

		// Read after Next: handlers set the customer ID while binding.
		cid, _ := c.Get("customerID")

		ev := l.With().
			Str("customer_id", asString(cid)).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery converts panics into a JSON 500 envelope and logs the stack with
// the correlation ID. When bytes were already written it can only abort the
// connection; no envelope is appended to a partial body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid, _ := c.Get(requestIDKey)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", asString(rid)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header("Content-Type", "application/json")
			c.Header(requestIDHeader, asString(rid))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": asString(rid),
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by Logger, or a
// plain fallback so callers never need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, found := c.Get("logger"); found {
		if lg, isLogger := v.(*zerolog.Logger); isLogger {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString unwraps a context value expected to be a string.
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// truncate caps s at max bytes with a trailing ellipsis. Byte-level slicing
// is fine for log output. max <= 0 disables the cap.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
