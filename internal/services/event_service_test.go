package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

func TestEventAppend_Success(t *testing.T) {
	db := newSvcDB(t)
	svc := &EventService{DB: db}
	ctx := context.Background()

	now := time.Now().UTC()
	if err := db.Create(&domain.Customer{ID: "c1", Age: 22, SkinType: "dry", CreatedAt: now}).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := db.Create(&domain.Product{ID: "p1", Name: "P", Price: 500, Stock: 1, Type: "toner", CreatedAt: now}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	dwell := 12
	l, err := svc.Append(ctx, "c1", "p1", domain.ActionView, &dwell)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if l.Action != domain.ActionView || l.DwellSeconds == nil || *l.DwellSeconds != 12 {
		t.Fatalf("unexpected log: %+v", l)
	}

	// Dwell time is only meaningful for views; other actions discard it.
	l, err = svc.Append(ctx, "c1", "p1", domain.ActionPurchase, &dwell)
	if err != nil {
		t.Fatalf("Append purchase: %v", err)
	}
	if l.DwellSeconds != nil {
		t.Fatalf("dwell kept on purchase: %+v", l.DwellSeconds)
	}
}

func TestEventAppend_Validation(t *testing.T) {
	db := newSvcDB(t)
	svc := &EventService{DB: db}
	ctx := context.Background()

	now := time.Now().UTC()
	if err := db.Create(&domain.Customer{ID: "c1", Age: 22, SkinType: "dry", CreatedAt: now}).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := db.Create(&domain.Product{ID: "p1", Name: "P", Price: 500, Stock: 1, Type: "toner", CreatedAt: now}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	if _, err := svc.Append(ctx, "c1", "p1", "hover", nil); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	neg := -5
	if _, err := svc.Append(ctx, "c1", "p1", domain.ActionView, &neg); !errors.Is(err, ErrInvalidDwell) {
		t.Fatalf("expected ErrInvalidDwell, got %v", err)
	}

	if _, err := svc.Append(ctx, "ghost", "p1", domain.ActionView, nil); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := svc.Append(ctx, "c1", "ghost", domain.ActionCart, nil); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
