package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// ErrTaxRatesUnavailable signals a failure loading a jurisdiction's tax rate.
var ErrTaxRatesUnavailable = errors.New("tax service: rates unavailable")

// basisPointCalculator applies a flat rate expressed in basis points (1/100th of a
// percent) to minor-unit amounts. The split into whole and fractional parts keeps the
// arithmetic exact without widening past uint64.
type basisPointCalculator struct {
	basisPoints uint64
}

func (c basisPointCalculator) Apply(amount uint64) uint64 {
	return amount + amount/10000*c.basisPoints + amount%10000*c.basisPoints/10000
}

type taxService struct {
	rates   repositories.TaxRateRepository
	enabled bool
}

// TaxServiceDeps bundles constructor inputs for the tax service.
type TaxServiceDeps struct {
	Rates repositories.TaxRateRepository
	// Enabled gates tax application globally. When false CalculatorFor always
	// returns a nil calculator regardless of jurisdiction.
	Enabled bool
}

// NewTaxService constructs the jurisdiction-keyed tax calculator factory.
func NewTaxService(deps TaxServiceDeps) (TaxService, error) {
	if deps.Enabled && deps.Rates == nil {
		return nil, errors.New("tax service: rate repository is required when tax is enabled")
	}
	return &taxService{rates: deps.Rates, enabled: deps.Enabled}, nil
}

// CalculatorFor resolves the calculator for a jurisdiction. A nil calculator with a nil
// error means tax is disabled and callers should charge the untaxed amount.
func (s *taxService) CalculatorFor(ctx context.Context, jurisdiction string) (TaxCalculator, error) {
	if !s.enabled {
		return nil, nil
	}
	jurisdiction = strings.ToUpper(strings.TrimSpace(jurisdiction))
	if jurisdiction == "" {
		return nil, domain.NewPublicError("tax/jurisdiction_required", "A tax jurisdiction is required.")
	}

	rate, err := s.rates.Get(ctx, jurisdiction)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			// Unknown jurisdictions are untaxed rather than unservable.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTaxRatesUnavailable, jurisdiction, err)
	}
	if rate.BasisPoints == 0 {
		return nil, nil
	}
	return basisPointCalculator{basisPoints: rate.BasisPoints}, nil
}
