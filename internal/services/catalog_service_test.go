package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/tbourn/go-reco-backend/internal/cache"
	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
)

var seedTime = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

// newStore builds a small snapshot shared by the service tests:
//   - c-oily: oily skin, acne_trouble + pores
//   - c-dry:  dry skin, severe_dryness
//   - serums p-serum-a / p-serum-b target oily skin; p-serum-a targets acne,
//     p-serum-b targets wrinkles
//   - p-cream targets dry skin / severe_dryness
//   - p-toner targets every skin type with no concern overlap for c-oily
func newStore(t *testing.T) *dataset.Store {
	t.Helper()

	customers := []domain.Customer{
		{ID: "c-dry", Gender: "female", Age: 31, SkinType: domain.SkinDry, Concerns: domain.NewStringSet(domain.ConcernSevereDryness)},
		{ID: "c-oily", Gender: "male", Age: 27, SkinType: domain.SkinOily, Concerns: domain.NewStringSet(domain.ConcernAcneTrouble, domain.ConcernPores)},
		{ID: "c-oily2", Gender: "female", Age: 24, SkinType: domain.SkinOily, Concerns: domain.NewStringSet(domain.ConcernPigmentationBlemish)},
	}
	products := []domain.Product{
		{ID: "p-cream", Name: "Barrier Cream", Price: 30000, Stock: 9, Type: "moisture_cream",
			TargetSkinTypes: domain.NewStringSet(domain.SkinDry), TargetConcerns: domain.NewStringSet(domain.ConcernSevereDryness)},
		{ID: "p-serum-a", Name: "Acne Serum", Price: 42000, Stock: 4, Type: "serum",
			TargetSkinTypes: domain.NewStringSet(domain.SkinOily, domain.SkinCombination), TargetConcerns: domain.NewStringSet(domain.ConcernAcneTrouble)},
		{ID: "p-serum-b", Name: "Firming Serum", Price: 55000, Stock: 7, Type: "serum",
			TargetSkinTypes: domain.NewStringSet(domain.SkinOily), TargetConcerns: domain.NewStringSet(domain.ConcernWrinklesAging)},
		{ID: "p-toner", Name: "Daily Toner", Price: 18000, Stock: 20, Type: "toner",
			TargetSkinTypes: domain.NewStringSet(domain.SkinDry, domain.SkinNormal, domain.SkinOily, domain.SkinCombination, domain.SkinDehydratedOily),
			TargetConcerns:  domain.NewStringSet(domain.ConcernDullness)},
	}
	logs := []domain.ActionLog{
		{ID: "l1", CustomerID: "c-oily", ProductID: "p-serum-a", Action: domain.ActionPurchase, CreatedAt: seedTime},
		{ID: "l2", CustomerID: "c-oily2", ProductID: "p-serum-a", Action: domain.ActionPurchase, CreatedAt: seedTime.Add(time.Hour)},
		{ID: "l3", CustomerID: "c-dry", ProductID: "p-cream", Action: domain.ActionPurchase, CreatedAt: seedTime.Add(2 * time.Hour)},
		{ID: "l4", CustomerID: "c-oily", ProductID: "p-serum-a", Action: domain.ActionView, CreatedAt: seedTime.Add(3 * time.Hour)},
	}
	reviews := []domain.Review{
		{ID: "r1", PurchaseLogID: "l1", CustomerID: "c-oily", ProductID: "p-serum-a", Rate: 4.5, Text: "calmed my skin", CreatedAt: seedTime.Add(48 * time.Hour)},
		{ID: "r2", PurchaseLogID: "l2", CustomerID: "c-oily2", ProductID: "p-serum-a", Rate: 4.0, Text: "fine", CreatedAt: seedTime.Add(72 * time.Hour)},
	}

	s, err := dataset.New(customers, products, logs, reviews)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return s
}

func resultIDs(out []ProductStats) []string {
	ids := make([]string, 0, len(out))
	for _, ps := range out {
		ids = append(ids, ps.Product.ID)
	}
	return ids
}

func TestCatalogSearch_TypeProfileConcernStages(t *testing.T) {
	svc := &CatalogService{Data: newStore(t)}
	ctx := context.Background()

	// Oily customer asking for serums against acne: only the acne serum
	// survives all three stages.
	out, err := svc.Search(ctx, "c-oily", domain.Intent{
		ProductType: "serum",
		Concerns:    domain.NewStringSet(domain.ConcernAcneTrouble),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if ids := resultIDs(out); len(ids) != 1 || ids[0] != "p-serum-a" {
		t.Fatalf("unexpected results: %v", ids)
	}
}

func TestCatalogSearch_ProfileStageNeverRelaxed(t *testing.T) {
	svc := &CatalogService{Data: newStore(t)}
	ctx := context.Background()

	// The dry-skin cream matches the requested type and concern, but the
	// requester has oily skin; the profile stage must still exclude it even
	// though the result ends up empty.
	out, err := svc.Search(ctx, "c-oily", domain.Intent{
		ProductType: "moisture_cream",
		Concerns:    domain.NewStringSet(domain.ConcernSevereDryness),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("profile stage relaxed: %v", resultIDs(out))
	}
}

func TestCatalogSearch_EmptyConcernUnionAdmitsAll(t *testing.T) {
	svc := &CatalogService{Data: newStore(t)}
	ctx := context.Background()

	// c-oily2 registered only pigmentation_blemish; with no requested
	// concerns the union is non-empty and matches nothing among serums...
	out, err := svc.Search(ctx, "c-oily2", domain.Intent{ProductType: "serum"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no serum for c-oily2, got %v", resultIDs(out))
	}

	// ...whereas a customer with no registered concerns and no request skips
	// the concern stage entirely.
	noConcerns := []domain.Customer{{ID: "c0", Age: 20, SkinType: domain.SkinOily}}
	store0 := mustDataset(t, noConcerns, storeProducts(t, svc.Data), nil, nil)
	svc0 := &CatalogService{Data: store0}
	out, err = svc0.Search(ctx, "c0", domain.Intent{ProductType: "serum"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if ids := resultIDs(out); len(ids) != 2 || ids[0] != "p-serum-a" || ids[1] != "p-serum-b" {
		t.Fatalf("empty union should admit all serums, got %v", ids)
	}
}

func mustDataset(t *testing.T, cs []domain.Customer, ps []domain.Product, ls []domain.ActionLog, rs []domain.Review) *dataset.Store {
	t.Helper()
	s, err := dataset.New(cs, ps, ls, rs)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return s
}

func storeProducts(t *testing.T, s *dataset.Store) []domain.Product {
	t.Helper()
	out := make([]domain.Product, 0)
	for _, p := range s.Products() {
		out = append(out, *p)
	}
	return out
}

func TestCatalogSearch_StatsDerivation(t *testing.T) {
	svc := &CatalogService{Data: newStore(t)}
	ctx := context.Background()

	out, err := svc.Search(ctx, "c-oily", domain.Intent{ProductType: "serum", Concerns: domain.NewStringSet(domain.ConcernAcneTrouble)})
	if err != nil || len(out) != 1 {
		t.Fatalf("Search = %v, %v", resultIDs(out), err)
	}
	got := out[0]
	// Two reviews (4.5, 4.0) -> 4.25 rounds to 4.3 at one decimal; two
	// purchases; the view event adds nothing.
	if got.AvgRating != 4.3 || got.ReviewCount != 2 || got.SalesVolume != 2 {
		t.Fatalf("stats = %+v", got)
	}

	// Stats are pure functions of the snapshot: a second pass yields the
	// same values.
	again, err := svc.Search(ctx, "c-oily", domain.Intent{ProductType: "serum", Concerns: domain.NewStringSet(domain.ConcernAcneTrouble)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !sameStats(again[0], got) {
		t.Fatalf("stats not idempotent: %+v vs %+v", got, again[0])
	}
}

func TestCatalogSearch_NoReviewsMeansZeroes(t *testing.T) {
	svc := &CatalogService{Data: newStore(t)}
	ctx := context.Background()

	out, err := svc.Search(ctx, "c-dry", domain.Intent{ProductType: "toner", Concerns: domain.NewStringSet(domain.ConcernDullness)})
	if err != nil || len(out) != 1 {
		t.Fatalf("Search = %v, %v", resultIDs(out), err)
	}
	if got := out[0]; got.AvgRating != 0 || got.ReviewCount != 0 || got.SalesVolume != 0 {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestCatalogSearch_CacheHitWithinGeneration(t *testing.T) {
	store := newStore(t)
	svc := &CatalogService{Data: store, Cache: cache.New[[]ProductStats](16)}
	ctx := context.Background()

	intent := domain.Intent{ProductType: "serum", Concerns: domain.NewStringSet(domain.ConcernAcneTrouble)}
	first, err := svc.Search(ctx, "c-oily", intent)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if svc.Cache.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", svc.Cache.Len())
	}
	second, err := svc.Search(ctx, "c-oily", intent)
	if err != nil {
		t.Fatalf("Search (cached): %v", err)
	}
	if len(first) != len(second) || !sameStats(first[0], second[0]) {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
}

func TestCatalogSearch_CachedOrderSurvivesCallerSort(t *testing.T) {
	// Two serums in catalog order p-serum-a, p-serum-b for a customer with no
	// registered concerns.
	noConcerns := []domain.Customer{{ID: "c0", Age: 20, SkinType: domain.SkinOily}}
	store := mustDataset(t, noConcerns, storeProducts(t, newStore(t)), nil, nil)
	svc := &CatalogService{Data: store, Cache: cache.New[[]ProductStats](16)}
	ctx := context.Background()
	intent := domain.Intent{ProductType: "serum"}

	first, err := svc.Search(ctx, "c0", intent)
	if err != nil || len(first) != 2 {
		t.Fatalf("Search = %v, %v", resultIDs(first), err)
	}

	// A caller reorders its result in place (price descending flips the two).
	sort.SliceStable(first, func(i, j int) bool {
		return first[i].Product.Price > first[j].Product.Price
	})
	if first[0].Product.ID != "p-serum-b" {
		t.Fatalf("setup: caller sort did not reorder, got %v", resultIDs(first))
	}

	// The cached entry must be untouched: a fresh search still returns
	// catalog (id-ascending) order.
	second, err := svc.Search(ctx, "c0", intent)
	if err != nil {
		t.Fatalf("Search (cached): %v", err)
	}
	if ids := resultIDs(second); len(ids) != 2 || ids[0] != "p-serum-a" || ids[1] != "p-serum-b" {
		t.Fatalf("cached entry mutated by caller sort: %v", ids)
	}
}

func sameStats(a, b ProductStats) bool {
	return a.Product.ID == b.Product.ID &&
		a.AvgRating == b.AvgRating &&
		a.ReviewCount == b.ReviewCount &&
		a.SalesVolume == b.SalesVolume
}

func TestCatalogSearch_UnknownCustomer(t *testing.T) {
	svc := &CatalogService{Data: newStore(t)}
	_, err := svc.Search(context.Background(), "ghost", domain.Intent{})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
