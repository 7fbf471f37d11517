package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
	"github.com/tbourn/go-reco-backend/internal/repo"
	"github.com/tbourn/go-reco-backend/internal/services"
)

func newETagDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:etag_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func etagStore(t *testing.T) *dataset.Store {
	t.Helper()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, err := dataset.New(
		[]domain.Customer{
			{ID: "c1", Gender: "female", Age: 29, SkinType: domain.SkinDry, Concerns: domain.NewStringSet(domain.ConcernSevereDryness)},
		},
		[]domain.Product{
			{ID: "p1", Name: "Hydra Cream", Brand: "Aqua", Price: 32000, Stock: 12, Type: "moisture_cream",
				TargetSkinTypes: domain.NewStringSet(domain.SkinDry)},
			{ID: "p2", Name: "Calm Toner", Brand: "Aqua", Price: 21000, Stock: 8, Type: "toner",
				TargetSkinTypes: domain.NewStringSet(domain.SkinDry)},
		},
		[]domain.ActionLog{
			{ID: "l1", CustomerID: "c1", ProductID: "p1", Action: domain.ActionPurchase, CreatedAt: t0},
			{ID: "l2", CustomerID: "c1", ProductID: "p2", Action: domain.ActionPurchase, CreatedAt: t0.Add(time.Hour)},
		},
		[]domain.Review{
			{ID: "r1", PurchaseLogID: "l1", CustomerID: "c1", ProductID: "p1", Rate: 4.5, Text: "lovely", CreatedAt: t0.Add(24 * time.Hour)},
		},
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return s
}

func getConditional(t *testing.T, r *gin.Engine, path, ifNoneMatch string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetProductInsight_ETagConditional(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := etagStore(t)
	db := newETagDB(t)
	seed := domain.Review{
		ID: "r1", PurchaseLogID: "l1", CustomerID: "c1", ProductID: "p1",
		Rate: 4.5, Text: "lovely", CreatedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}

	insightSvc := &services.InsightService{Data: store, DB: db}
	h := New(stubCustomerSvc{}, stubCatalogSvc{}, insightSvc, stubCrossSvc{}, stubEventSvc{}, stubReviewSvc{}, nil)
	r := productRouter(h)

	w := getConditional(t, r, "/products/p1/insight?skin_type=dry", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"insight:p1:dry:`) {
		t.Fatalf("unexpected ETag: %q", etag)
	}

	// Matching If-None-Match short-circuits to 304 with no body.
	w = getConditional(t, r, "/products/p1/insight?skin_type=dry", etag)
	if w.Code != http.StatusNotModified {
		t.Fatalf("status=%d, want 304", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("304 must have no body, got %q", w.Body.String())
	}

	// A different skin type joins the key, so the old tag never matches it.
	w = getConditional(t, r, "/products/p1/insight?skin_type=oily", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 for other cohort", w.Code)
	}

	// A new review changes the fingerprint and revives the full response.
	next := domain.Review{
		ID: "r2", PurchaseLogID: "l2", CustomerID: "c1", ProductID: "p1",
		Rate: 3.0, Text: "fine", CreatedAt: seed.CreatedAt.Add(48 * time.Hour),
	}
	if err := db.Create(&next).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	w = getConditional(t, r, "/products/p1/insight?skin_type=dry", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 after new review", w.Code)
	}
	if got := w.Header().Get("ETag"); got == etag {
		t.Fatalf("ETag unchanged after new review: %q", got)
	}
}

func TestGetProductCrossSell_ETagConditional(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := etagStore(t)
	db := newETagDB(t)
	seed := domain.ActionLog{
		ID: "l1", CustomerID: "c1", ProductID: "p1", Action: domain.ActionPurchase,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}

	crossSvc := &services.CrossSellService{Data: store, DB: db}
	h := New(stubCustomerSvc{}, stubCatalogSvc{}, stubInsightSvc{}, crossSvc, stubEventSvc{}, stubReviewSvc{}, nil)
	r := productRouter(h)

	w := getConditional(t, r, "/products/p1/cross-sell", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"cross-sell:p1:2:`) {
		t.Fatalf("unexpected ETag: %q", etag)
	}

	w = getConditional(t, r, "/products/p1/cross-sell", etag)
	if w.Code != http.StatusNotModified {
		t.Fatalf("status=%d, want 304", w.Code)
	}

	// top_n varies the body, so it joins the key.
	w = getConditional(t, r, "/products/p1/cross-sell?top_n=5", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 for other top_n", w.Code)
	}

	// A new event changes the fingerprint.
	next := domain.ActionLog{
		ID: "l9", CustomerID: "c1", ProductID: "p2", Action: domain.ActionView,
		CreatedAt: seed.CreatedAt.Add(time.Hour),
	}
	if err := db.Create(&next).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}
	w = getConditional(t, r, "/products/p1/cross-sell", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 after new event", w.Code)
	}
	if got := w.Header().Get("ETag"); got == etag {
		t.Fatalf("ETag unchanged after new event: %q", got)
	}
}

func TestProductETag_AbsentWithoutDB(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Stub services never expose a DB handle, so the pre-check degrades and
	// responses carry no ETag.
	h := newStubHandlers(stubSet{})
	r := productRouter(h)

	w := getConditional(t, r, "/products/p1/insight?skin_type=dry", `W/"anything"`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Header().Get("ETag"); got != "" {
		t.Fatalf("unexpected ETag without DB: %q", got)
	}
}
