package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByCustomerOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	// IP fallback when the request carries no customer identity.
	key := KeyByCustomerOrIP()(c)
	if !strings.HasPrefix(key, "ip:") || !strings.Contains(key, "203.0.113.9") {
		t.Fatalf("expected ip-based key; got %q", key)
	}

	c.Set("customerID", "C00123")
	if key := KeyByCustomerOrIP()(c); key != "customer:C00123" {
		t.Fatalf("expected customer-based key; got %q", key)
	}
}

func TestRateLimiter_BucketReuseAndBurstFloor(t *testing.T) {
	rl := NewRateLimiter(2.0, 0, KeyByCustomerOrIP())
	if rl.burst != 1 {
		t.Fatalf("burst floor failed, got %d", rl.burst)
	}

	lim := rl.getBucket("customer:C00001")
	if lim == nil {
		t.Fatalf("expected limiter")
	}
	if got := rl.getBucket("customer:C00001"); got != lim {
		t.Fatalf("expected the same limiter instance on repeat lookup")
	}
}

func TestRateLimiter_IdleBucketEviction(t *testing.T) {
	rl := NewRateLimiter(1.0, 1, KeyByCustomerOrIP())
	rl.ttl = time.Nanosecond

	rl.mu.Lock()
	rl.buckets["customer:stale"] = &bucket{
		limiter:  rate.NewLimiter(1, 1),
		lastSeen: time.Now().Add(-time.Hour),
	}
	// Put the counter one lookup short of the sweep threshold.
	rl.lookups = gcEvery - 1
	rl.mu.Unlock()

	_ = rl.getBucket("customer:fresh")

	rl.mu.Lock()
	_, staleKept := rl.buckets["customer:stale"]
	_, freshKept := rl.buckets["customer:fresh"]
	rl.mu.Unlock()

	if staleKept {
		t.Fatalf("stale bucket survived the sweep")
	}
	if !freshKept {
		t.Fatalf("fresh bucket missing after sweep")
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if IsRateBypass(c) {
		t.Fatalf("expected false by default")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("expected true when flagged")
	}
	c.Set(ctxKeyRateBypass, "yes") // wrong type reads as false
	if IsRateBypass(c) {
		t.Fatalf("expected false for non-bool value")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// rps=1, burst=1: first request passes, an immediate second is denied.
	rl := NewRateLimiter(1.0, 1, KeyByCustomerOrIP())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header("X-Request-ID", "req-rl"); c.Next() })
	r.Use(rl.Handler())
	r.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	serve := func(eng *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		eng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		return w
	}

	if w := serve(r); w.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", w.Code)
	}

	w := serve(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After=1, got %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["code"] != "rate_limited" || body["message"] != "rate limit exceeded" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["request_id"] != "req-rl" {
		t.Fatalf("expected request_id in envelope, got %v", body["request_id"])
	}

	// Replay bypass skips the empty bucket entirely.
	rBypass := gin.New()
	rBypass.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true); c.Next() })
	rBypass.Use(rl.Handler())
	rBypass.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if w := serve(rBypass); w.Code != http.StatusOK {
		t.Fatalf("bypass request should pass, got %d", w.Code)
	}
}
