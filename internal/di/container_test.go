package di

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/payments"
	"github.com/socialstack-core/storefront-api/internal/platform/config"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

type stubRegistry struct{}

func (stubRegistry) Close(context.Context) error { return nil }

func (stubRegistry) Products() repositories.ProductRepository { return stubProducts{} }

func (stubRegistry) PriceTiers() repositories.PriceTierRepository { return stubTiers{} }

func (stubRegistry) Categories() repositories.CategoryRepository { return stubCategories{} }

func (stubRegistry) AttributeGroups() repositories.AttributeGroupRepository { return stubGroups{} }

func (stubRegistry) Attributes() repositories.AttributeRepository { return stubAttributes{} }

func (stubRegistry) Coupons() repositories.CouponRepository { return stubCoupons{} }

func (stubRegistry) TaxRates() repositories.TaxRateRepository { return stubTaxRates{} }

func (stubRegistry) Counters() repositories.CounterRepository { return stubCounters{} }

func (stubRegistry) Health() repositories.HealthRepository { return stubHealth{} }

var errStub = errors.New("not implemented")

type stubProducts struct{}

func (stubProducts) Get(context.Context, uint64) (domain.Product, error) {
	return domain.Product{}, errStub
}

func (stubProducts) GetBySlug(context.Context, string) (domain.Product, error) {
	return domain.Product{}, errStub
}

func (stubProducts) List(context.Context, repositories.ProductFilter) (domain.CursorPage[domain.Product], error) {
	return domain.CursorPage[domain.Product]{}, nil
}

func (stubProducts) ListAll(context.Context) ([]domain.Product, error) { return nil, nil }

func (stubProducts) Upsert(_ context.Context, p domain.Product) (domain.Product, error) {
	return p, nil
}

func (stubProducts) Delete(context.Context, uint64) error { return nil }

type stubTiers struct{}

func (stubTiers) ListByProduct(context.Context, uint64) ([]domain.PriceTier, error) {
	return nil, nil
}

func (stubTiers) Replace(context.Context, uint64, []domain.PriceTier) error { return nil }

type stubCategories struct{}

func (stubCategories) Get(context.Context, uint64) (domain.Category, error) {
	return domain.Category{}, errStub
}

func (stubCategories) ListAll(context.Context) ([]domain.Category, error) { return nil, nil }

func (stubCategories) Upsert(_ context.Context, c domain.Category) (domain.Category, error) {
	return c, nil
}

func (stubCategories) Delete(context.Context, uint64) error { return nil }

type stubGroups struct{}

func (stubGroups) Get(context.Context, uint64) (domain.AttributeGroup, error) {
	return domain.AttributeGroup{}, errStub
}

func (stubGroups) ListAll(context.Context) ([]domain.AttributeGroup, error) { return nil, nil }

func (stubGroups) Upsert(_ context.Context, g domain.AttributeGroup) (domain.AttributeGroup, error) {
	return g, nil
}

func (stubGroups) Delete(context.Context, uint64) error { return nil }

type stubAttributes struct{}

func (stubAttributes) ListAll(context.Context) ([]domain.Attribute, error) { return nil, nil }

func (stubAttributes) ListByGroup(context.Context, uint64) ([]domain.Attribute, error) {
	return nil, nil
}

func (stubAttributes) Upsert(_ context.Context, a domain.Attribute) (domain.Attribute, error) {
	return a, nil
}

func (stubAttributes) Delete(context.Context, uint64) error { return nil }

type stubCoupons struct{}

func (stubCoupons) Get(context.Context, string) (domain.Coupon, error) {
	return domain.Coupon{}, errStub
}

func (stubCoupons) GetByCode(context.Context, string) (domain.Coupon, error) {
	return domain.Coupon{}, errStub
}

func (stubCoupons) List(context.Context, repositories.CouponFilter) (domain.CursorPage[domain.Coupon], error) {
	return domain.CursorPage[domain.Coupon]{}, nil
}

func (stubCoupons) Upsert(_ context.Context, c domain.Coupon) (domain.Coupon, error) {
	return c, nil
}

func (stubCoupons) Delete(context.Context, string) error { return nil }

type stubTaxRates struct{}

func (stubTaxRates) Get(context.Context, string) (domain.TaxRate, error) {
	return domain.TaxRate{}, errStub
}

func (stubTaxRates) ListAll(context.Context) ([]domain.TaxRate, error) { return nil, nil }

func (stubTaxRates) Upsert(_ context.Context, r domain.TaxRate) (domain.TaxRate, error) {
	return r, nil
}

type stubCounters struct{}

func (stubCounters) Next(context.Context, string, int64) (int64, error) { return 1, nil }

type stubHealth struct{}

func (stubHealth) Collect(context.Context) (domain.SystemHealthReport, error) {
	return domain.SystemHealthReport{Status: domain.HealthStatusOK}, nil
}

type stubPaymentProvider struct{}

func (stubPaymentProvider) CreateIntent(context.Context, payments.IntentRequest) (payments.Intent, error) {
	return payments.Intent{}, errStub
}

func (stubPaymentProvider) LookupIntent(context.Context, string) (payments.Intent, error) {
	return payments.Intent{}, errStub
}

func (stubPaymentProvider) CancelIntent(context.Context, string) error { return nil }

func testConfig() config.Config {
	return config.Config{
		Pricing: config.PricingConfig{
			DefaultCurrency:     "GBP",
			DefaultLocale:       "en-GB",
			TaxEnabled:          true,
			DefaultJurisdiction: "GB",
		},
	}
}

func TestNewContainerBuildsAllServices(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig(), ContainerDeps{
		Registry: stubRegistry{},
		Payments: stubPaymentProvider{},
		Clock:    time.Now,
	})
	if err != nil {
		t.Fatalf("expected container, got error: %v", err)
	}

	svc := container.Services
	if svc.Pricing == nil || svc.Tax == nil || svc.Catalog == nil {
		t.Fatal("expected pricing, tax, and catalog services")
	}
	if svc.Categories == nil || svc.AttributeGroups == nil || svc.Coupons == nil {
		t.Fatal("expected category, attribute group, and coupon services")
	}
	if svc.Checkout == nil {
		t.Fatal("expected checkout service when a payment provider is supplied")
	}
	if svc.System == nil {
		t.Fatal("expected system service")
	}
	if err := container.Close(context.Background()); err != nil {
		t.Fatalf("close returned error: %v", err)
	}
}

func TestNewContainerRequiresRegistry(t *testing.T) {
	if _, err := NewContainer(context.Background(), testConfig(), ContainerDeps{}); err == nil {
		t.Fatal("expected error for missing registry")
	}
}

func TestNewContainerSkipsCheckoutWithoutProvider(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig(), ContainerDeps{
		Registry: stubRegistry{},
	})
	if err != nil {
		t.Fatalf("expected container, got error: %v", err)
	}
	if container.Services.Checkout != nil {
		t.Fatal("expected no checkout service without a payment provider")
	}
}
