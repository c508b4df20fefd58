package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

func newTestCatalogService(t *testing.T, products *fakeProductRepository, tiers *fakeTierRepository, events *fakeEventPublisher) CatalogService {
	t.Helper()
	deps := CatalogServiceDeps{
		Products: products,
		Tiers:    tiers,
		Counters: &fakeCounterRepository{next: 100},
		Clock:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	if events != nil {
		deps.Events = events
	}
	svc, err := NewCatalogService(deps)
	if err != nil {
		t.Fatalf("NewCatalogService error: %v", err)
	}
	return svc
}

func TestCatalogServiceCreateProduct(t *testing.T) {
	products := &fakeProductRepository{products: map[uint64]domain.Product{}}
	events := &fakeEventPublisher{}
	svc := newTestCatalogService(t, products, &fakeTierRepository{}, events)

	created, err := svc.CreateProduct(context.Background(), UpsertProductCommand{
		Product: domain.Product{
			Name:        "  Ballpoint Pen ",
			Slug:        "Ballpoint-Pen",
			Description: `<p>Smooth</p><script>alert(1)</script>`,
			Strategy:    domain.PriceStrategyStandard,
			IsPublic:    true,
		},
		ActorID: "user-1",
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}

	if created.ID != 101 {
		t.Errorf("expected allocated id 101, got %d", created.ID)
	}
	if created.Name != "Ballpoint Pen" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
	if created.Slug != "ballpoint-pen" {
		t.Errorf("expected lowercased slug, got %q", created.Slug)
	}
	if !strings.HasPrefix(created.SKU, "SKU-") {
		t.Errorf("expected generated SKU, got %q", created.SKU)
	}
	if strings.Contains(created.Description, "script") {
		t.Errorf("expected sanitized description, got %q", created.Description)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	if events.events[0].Kind != CatalogEventKindProduct || events.events[0].Action != CatalogEventActionCreated {
		t.Errorf("unexpected event %+v", events.events[0])
	}
}

func TestCatalogServiceCreateProductValidation(t *testing.T) {
	svc := newTestCatalogService(t, &fakeProductRepository{}, &fakeTierRepository{}, nil)

	cases := []struct {
		name    string
		product domain.Product
	}{
		{"missing name", domain.Product{Slug: "pen", Strategy: domain.PriceStrategyStandard}},
		{"missing slug", domain.Product{Name: "Pen", Strategy: domain.PriceStrategyStandard}},
		{"unknown strategy", domain.Product{Name: "Pen", Slug: "pen", Strategy: domain.PriceStrategy(9)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), UpsertProductCommand{Product: tc.product})
			if !errors.Is(err, ErrProductValidation) {
				t.Fatalf("expected ErrProductValidation, got %v", err)
			}
		})
	}
}

func TestCatalogServiceUpdatePreservesIdentity(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	products := &fakeProductRepository{products: map[uint64]domain.Product{
		7: {ID: 7, SKU: "SKU-ORIG", Name: "Pen", Slug: "pen", Strategy: domain.PriceStrategyStandard, CreatedAt: createdAt},
	}}
	svc := newTestCatalogService(t, products, &fakeTierRepository{}, nil)

	updated, err := svc.UpdateProduct(context.Background(), UpsertProductCommand{
		Product: domain.Product{ID: 7, SKU: "SKU-SPOOFED", Name: "Gel Pen", Slug: "gel-pen", Strategy: domain.PriceStrategyStepOnce},
	})
	if err != nil {
		t.Fatalf("UpdateProduct error: %v", err)
	}
	if updated.SKU != "SKU-ORIG" {
		t.Errorf("expected original SKU preserved, got %q", updated.SKU)
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Errorf("expected original created timestamp preserved, got %v", updated.CreatedAt)
	}
	if updated.Name != "Gel Pen" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
}

func TestCatalogServiceUpdateMissingProduct(t *testing.T) {
	svc := newTestCatalogService(t, &fakeProductRepository{}, &fakeTierRepository{}, nil)

	_, err := svc.UpdateProduct(context.Background(), UpsertProductCommand{
		Product: domain.Product{ID: 99, Name: "Pen", Slug: "pen", Strategy: domain.PriceStrategyStandard},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogServiceDeleteRemovesTiers(t *testing.T) {
	products := &fakeProductRepository{products: map[uint64]domain.Product{
		7: {ID: 7, Name: "Pen", Slug: "pen", Strategy: domain.PriceStrategyStandard},
	}}
	tiers := &fakeTierRepository{tiers: map[uint64][]domain.PriceTier{
		7: {gbpTier(1, 100)},
	}}
	events := &fakeEventPublisher{}
	svc := newTestCatalogService(t, products, tiers, events)

	if err := svc.DeleteProduct(context.Background(), 7); err != nil {
		t.Fatalf("DeleteProduct error: %v", err)
	}
	if _, ok := products.products[7]; ok {
		t.Error("expected product removed")
	}
	if remaining := tiers.tiers[7]; len(remaining) != 0 {
		t.Errorf("expected tiers cleared, got %v", remaining)
	}
	if len(events.events) != 1 || events.events[0].Action != CatalogEventActionDeleted {
		t.Fatalf("expected delete event, got %v", events.events)
	}
}

func TestCatalogServiceReplaceTiers(t *testing.T) {
	products := &fakeProductRepository{products: map[uint64]domain.Product{
		7: {ID: 7, Name: "Pen", Slug: "pen", Strategy: domain.PriceStrategyStepAlways},
	}}
	tiers := &fakeTierRepository{tiers: map[uint64][]domain.PriceTier{}}
	svc := newTestCatalogService(t, products, tiers, nil)

	valid := []domain.PriceTier{gbpTier(1, 100), gbpTier(11, 90), gbpTier(21, 80)}
	if err := svc.ReplaceTiers(context.Background(), 7, valid); err != nil {
		t.Fatalf("ReplaceTiers error: %v", err)
	}
	got, err := svc.ListTiers(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListTiers error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(got))
	}

	descending := []domain.PriceTier{gbpTier(11, 90), gbpTier(1, 100)}
	if err := svc.ReplaceTiers(context.Background(), 7, descending); !errors.Is(err, ErrTierValidation) {
		t.Fatalf("expected ErrTierValidation for descending minimums, got %v", err)
	}

	empty := []domain.PriceTier{{MinimumQuantity: 1}}
	if err := svc.ReplaceTiers(context.Background(), 7, empty); !errors.Is(err, ErrTierValidation) {
		t.Fatalf("expected ErrTierValidation for tier without amounts, got %v", err)
	}

	if err := svc.ReplaceTiers(context.Background(), 404, valid); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for unknown product, got %v", err)
	}
}
