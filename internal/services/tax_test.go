package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

type fakeTaxRateRepository struct {
	rates map[string]domain.TaxRate
	err   error
}

func (f *fakeTaxRateRepository) Get(_ context.Context, jurisdiction string) (domain.TaxRate, error) {
	if f.err != nil {
		return domain.TaxRate{}, f.err
	}
	rate, ok := f.rates[jurisdiction]
	if !ok {
		return domain.TaxRate{}, fakeRepositoryError{notFound: true}
	}
	return rate, nil
}

func (f *fakeTaxRateRepository) ListAll(_ context.Context) ([]domain.TaxRate, error) {
	out := make([]domain.TaxRate, 0, len(f.rates))
	for _, rate := range f.rates {
		out = append(out, rate)
	}
	return out, nil
}

func (f *fakeTaxRateRepository) Upsert(_ context.Context, rate domain.TaxRate) (domain.TaxRate, error) {
	if f.rates == nil {
		f.rates = map[string]domain.TaxRate{}
	}
	f.rates[rate.Jurisdiction] = rate
	return rate, nil
}

func TestTaxService_CalculatorFor(t *testing.T) {
	ctx := context.Background()
	svc, err := NewTaxService(TaxServiceDeps{
		Rates:   &fakeTaxRateRepository{rates: map[string]domain.TaxRate{"GB": {Jurisdiction: "GB", BasisPoints: 2000}}},
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("NewTaxService error: %v", err)
	}

	calc, err := svc.CalculatorFor(ctx, "gb")
	if err != nil {
		t.Fatalf("CalculatorFor error: %v", err)
	}
	if calc == nil {
		t.Fatal("calculator is nil for a known jurisdiction")
	}
	if got := calc.Apply(1000); got != 1200 {
		t.Fatalf("Apply(1000) = %d, want 1200", got)
	}
	// Exact on amounts that do not divide by 10000.
	if got := calc.Apply(12345); got != 14814 {
		t.Fatalf("Apply(12345) = %d, want 14814", got)
	}

	calc, err = svc.CalculatorFor(ctx, "US")
	if err != nil {
		t.Fatalf("CalculatorFor error: %v", err)
	}
	if calc != nil {
		t.Fatal("unknown jurisdiction should be untaxed")
	}
}

func TestTaxService_Disabled(t *testing.T) {
	svc, err := NewTaxService(TaxServiceDeps{Enabled: false})
	if err != nil {
		t.Fatalf("NewTaxService error: %v", err)
	}
	calc, err := svc.CalculatorFor(context.Background(), "GB")
	if err != nil {
		t.Fatalf("CalculatorFor error: %v", err)
	}
	if calc != nil {
		t.Fatal("disabled tax should return a nil calculator")
	}
}

func TestTaxService_BlankJurisdiction(t *testing.T) {
	svc, err := NewTaxService(TaxServiceDeps{Rates: &fakeTaxRateRepository{}, Enabled: true})
	if err != nil {
		t.Fatalf("NewTaxService error: %v", err)
	}
	_, err = svc.CalculatorFor(context.Background(), "  ")
	var pub *domain.PublicError
	if !errors.As(err, &pub) {
		t.Fatalf("error = %v, want PublicError", err)
	}
	if pub.Code != "tax/jurisdiction_required" {
		t.Fatalf("Code = %q", pub.Code)
	}
}

func TestTaxService_RepositoryFailure(t *testing.T) {
	svc, err := NewTaxService(TaxServiceDeps{
		Rates:   &fakeTaxRateRepository{err: errors.New("backend down")},
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("NewTaxService error: %v", err)
	}
	_, err = svc.CalculatorFor(context.Background(), "GB")
	if !errors.Is(err, ErrTaxRatesUnavailable) {
		t.Fatalf("error = %v, want ErrTaxRatesUnavailable", err)
	}
}
