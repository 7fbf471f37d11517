package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func metricsServe(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMetrics_RequestCounterLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/products/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent) // no body, size stays -1
	})

	// Baselines guard against other tests touching the shared registry.
	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/products/:id", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/unrouted", "404"))

	if w := metricsServe(t, r, "/products/P000123"); w.Code != http.StatusOK {
		t.Fatalf("GET /products/P000123 -> %d", w.Code)
	}
	if w := metricsServe(t, r, "/unrouted"); w.Code != http.StatusNotFound {
		t.Fatalf("GET /unrouted -> %d", w.Code)
	}
	if w := metricsServe(t, r, "/empty"); w.Code != http.StatusNoContent {
		t.Fatalf("GET /empty -> %d", w.Code)
	}

	// Matched routes label by pattern, keeping cardinality bounded.
	gotOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/products/:id", "200"))
	if gotOK != baseOK+1 {
		t.Fatalf("counter /products/:id 200 = %v; want %v", gotOK, baseOK+1)
	}

	// Unmatched routes fall back to the raw URL path.
	got404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/unrouted", "404"))
	if got404 != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got404, base404+1)
	}

	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}

func TestObserveSearchResults(t *testing.T) {
	// Histogram observations are hard to assert precisely on a shared
	// registry; exercising the call is enough to catch label mistakes.
	ObserveSearchResults(0)
	ObserveSearchResults(7)
	ObserveSearchResults(500)
}
