package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-reco-backend/internal/dataset"
	"github.com/tbourn/go-reco-backend/internal/domain"
)

// crossSellStore: buyers of p-target also bought p-often (3 purchases across
// buyers), p-twice and p-tie (2 each), p-once (1). A cart event for p-never
// must not count, and c-outsider's purchases are invisible to the ranking.
func crossSellStore(t *testing.T) *dataset.Store {
	t.Helper()

	customers := []domain.Customer{
		{ID: "b1", Age: 20, SkinType: domain.SkinOily},
		{ID: "b2", Age: 25, SkinType: domain.SkinDry},
		{ID: "b3", Age: 30, SkinType: domain.SkinNormal},
		{ID: "c-outsider", Age: 35, SkinType: domain.SkinOily},
	}
	products := []domain.Product{
		{ID: "p-often", Name: "Often", Price: 1000, Stock: 1, Type: "toner"},
		{ID: "p-once", Name: "Once", Price: 1000, Stock: 1, Type: "essence"},
		{ID: "p-target", Name: "Target", Price: 1000, Stock: 1, Type: "serum"},
		{ID: "p-tie", Name: "Tie", Price: 1000, Stock: 1, Type: "ampoule"},
		{ID: "p-twice", Name: "Twice", Price: 1000, Stock: 1, Type: "lotion_emulsion"},
		{ID: "p-never", Name: "Never", Price: 1000, Stock: 1, Type: "sun_care"},
		{ID: "p-unsold", Name: "Unsold", Price: 1000, Stock: 1, Type: "sheet_mask"},
	}

	at := seedTime
	next := func() time.Time { at = at.Add(time.Minute); return at }
	var logs []domain.ActionLog
	add := func(id, cust, prod, action string) {
		logs = append(logs, domain.ActionLog{ID: id, CustomerID: cust, ProductID: prod, Action: action, CreatedAt: next()})
	}

	// Target purchases establish the buyer group.
	add("t1", "b1", "p-target", domain.ActionPurchase)
	add("t2", "b2", "p-target", domain.ActionPurchase)
	add("t3", "b3", "p-target", domain.ActionPurchase)

	// Co-purchases.
	add("o1", "b1", "p-often", domain.ActionPurchase)
	add("o2", "b2", "p-often", domain.ActionPurchase)
	add("o3", "b3", "p-often", domain.ActionPurchase)
	add("w1", "b1", "p-twice", domain.ActionPurchase)
	add("w2", "b2", "p-twice", domain.ActionPurchase)
	add("e1", "b1", "p-tie", domain.ActionPurchase)
	add("e2", "b3", "p-tie", domain.ActionPurchase)
	add("n1", "b3", "p-once", domain.ActionPurchase)

	// Non-purchase events and non-buyers never contribute.
	add("x1", "b1", "p-never", domain.ActionCart)
	add("x2", "c-outsider", "p-never", domain.ActionPurchase)
	add("x3", "c-outsider", "p-often", domain.ActionPurchase)

	s, err := dataset.New(customers, products, logs, nil)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return s
}

func TestCrossSell_RanksByFrequency(t *testing.T) {
	svc := &CrossSellService{Data: crossSellStore(t)}

	out, err := svc.CrossSell(context.Background(), "p-target", 4)
	if err != nil {
		t.Fatalf("CrossSell: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	// p-often (3), then the 2-2 tie broken by product id ascending, then
	// p-once (1).
	want := []struct {
		id    string
		count int
	}{
		{"p-often", 3},
		{"p-tie", 2},
		{"p-twice", 2},
		{"p-once", 1},
	}
	for i, w := range want {
		if out[i].Product.ID != w.id || out[i].Count != w.count {
			t.Fatalf("rank[%d] = %s/%d, want %s/%d", i, out[i].Product.ID, out[i].Count, w.id, w.count)
		}
	}
}

func TestCrossSell_ExcludesTargetAndDefaultsTopN(t *testing.T) {
	svc := &CrossSellService{Data: crossSellStore(t)}

	out, err := svc.CrossSell(context.Background(), "p-target", 0)
	if err != nil {
		t.Fatalf("CrossSell: %v", err)
	}
	if len(out) != DefaultCrossSellLimit {
		t.Fatalf("len = %d, want default %d", len(out), DefaultCrossSellLimit)
	}
	for _, rp := range out {
		if rp.Product.ID == "p-target" {
			t.Fatalf("target leaked into its own ranking")
		}
	}
}

func TestCrossSell_SmallBuyerGroups(t *testing.T) {
	svc := &CrossSellService{Data: crossSellStore(t)}

	// p-never has one buyer (c-outsider) who also bought p-often; the cart
	// event by b1 adds no buyer.
	out, err := svc.CrossSell(context.Background(), "p-never", 3)
	if err != nil {
		t.Fatalf("CrossSell: %v", err)
	}
	if len(out) != 1 || out[0].Product.ID != "p-often" || out[0].Count != 1 {
		t.Fatalf("unexpected ranking: %+v", out)
	}

	// A product nobody ever bought yields an empty, non-nil slice.
	out, err = svc.CrossSell(context.Background(), "p-unsold", 3)
	if err != nil {
		t.Fatalf("CrossSell: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty ranking, got %+v", out)
	}
}

func TestCrossSell_UnknownProduct(t *testing.T) {
	svc := &CrossSellService{Data: crossSellStore(t)}
	_, err := svc.CrossSell(context.Background(), "ghost", 2)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
