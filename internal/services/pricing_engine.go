package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/platform/requestctx"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// ErrPricingTiersUnavailable signals a failure loading a product's tier list.
var ErrPricingTiersUnavailable = errors.New("pricing engine: tiers unavailable")

// PricingEngine resolves the applicable price tier for a product and quantity and
// computes the line cost under the product's pricing strategy.
//
// Tier lists are re-read from the data layer on every calculation; the engine holds no
// tier cache. Business-rule conditions (below minimum, currency unavailable, overflow)
// are reported as soft errors on the returned ProductCost, never as Go errors.
type PricingEngine struct {
	tiers           repositories.PriceTierRepository
	defaultCurrency string
}

// PricingEngineDeps bundles constructor inputs for the pricing engine.
type PricingEngineDeps struct {
	Tiers           repositories.PriceTierRepository
	DefaultCurrency string
}

// NewPricingEngine constructs the engine with the supplied dependencies.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	if deps.Tiers == nil {
		return nil, errors.New("pricing engine: tier repository is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(deps.DefaultCurrency))
	if currency == "" {
		return nil, errors.New("pricing engine: default currency is required")
	}
	return &PricingEngine{
		tiers:           deps.Tiers,
		defaultCurrency: currency,
	}, nil
}

// GetCostOf prices quantity units of the product, applying the supplied tax calculator
// when non-nil. A zero quantity or nil product yields domain.ProductCostNone.
func (e *PricingEngine) GetCostOf(ctx context.Context, product *domain.Product, quantity uint64, calc TaxCalculator) (domain.ProductCost, error) {
	if product == nil || quantity == 0 {
		return domain.ProductCostNone, nil
	}

	tiers, err := e.tiers.ListByProduct(ctx, product.ID)
	if err != nil {
		return domain.ProductCost{}, fmt.Errorf("%w: product %d: %v", ErrPricingTiersUnavailable, product.ID, err)
	}
	if len(tiers) == 0 {
		// No configured price.
		return domain.ProductCostNone, nil
	}

	currency := e.currencyFor(ctx)
	cost := domain.ProductCost{
		CurrencyCode:   currency,
		IsSubscription: product.IsSubscription(),
	}

	// The target tier is the highest tier whose minimum the quantity reaches. When the
	// quantity sits below every minimum the arithmetic still runs against tier 0 so a
	// usable number is always returned alongside the below-minimum flag.
	target := -1
	for i := len(tiers) - 1; i >= 0; i-- {
		if tiers[i].MinimumQuantity <= quantity {
			target = i
			break
		}
	}
	if target < 0 {
		cost.ErrorCode = domain.CostErrorBelowMinimum
		cost.ErrorMessage = fmt.Sprintf("quantity %d is below the minimum of %d", quantity, tiers[0].MinimumQuantity)
		target = 0
	}

	base, ok := tiers[0].AmountIn(currency)
	if !ok {
		// Currency unavailability overrides any below-minimum flag already set.
		cost.ErrorCode = domain.CostErrorNotAvailable
		cost.ErrorMessage = fmt.Sprintf("product %d has no price in %s", product.ID, currency)
		return cost, nil
	}

	total, ok := strategyTotal(product.Strategy, tiers, target, quantity, base, currency)
	if !ok {
		cost.ErrorCode = domain.CostErrorSubstantialQuantity
		cost.ErrorMessage = fmt.Sprintf("quantity %d is too large to price", quantity)
		return cost, nil
	}

	cost.AmountLessTax = total
	if calc != nil {
		cost.Amount = calc.Apply(total)
	} else {
		cost.Amount = total
	}
	return cost, nil
}

func (e *PricingEngine) currencyFor(ctx context.Context) string {
	if locale, ok := requestctx.Locale(ctx); ok {
		if currency := strings.ToUpper(strings.TrimSpace(locale.CurrencyCode)); currency != "" {
			return currency
		}
	}
	return e.defaultCurrency
}

// strategyTotal dispatches to the strategy-specific arithmetic. The boolean result is
// false when any step would wrap the unsigned accumulator. Unknown strategy codes price
// as standard, matching how unrecognised rows behave elsewhere in the catalog.
func strategyTotal(strategy domain.PriceStrategy, tiers []domain.PriceTier, target int, quantity, base uint64, currency string) (uint64, bool) {
	switch strategy {
	case domain.PriceStrategyStandard:
		return standardTotal(quantity, base)
	case domain.PriceStrategyStepOnce:
		if !stepThresholdReached(tiers, quantity) {
			// The strategy only activates once the second tier's threshold is
			// crossed; below it the line prices as standard.
			return standardTotal(quantity, base)
		}
		return stepOnceTotal(tiers, quantity, base, currency)
	case domain.PriceStrategyStepAlways:
		if !stepThresholdReached(tiers, quantity) {
			return standardTotal(quantity, base)
		}
		return stepAlwaysTotal(tiers, target, quantity, base, currency)
	default:
		return standardTotal(quantity, base)
	}
}

// standardTotal prices every unit at the tier-0 base amount. Higher tiers are not
// consulted under the standard strategy even when the quantity reaches them.
func standardTotal(quantity, base uint64) (uint64, bool) {
	return mulChecked(quantity, base)
}

// stepThresholdReached reports whether a second tier exists and the quantity reaches it.
func stepThresholdReached(tiers []domain.PriceTier, quantity uint64) bool {
	return len(tiers) > 1 && quantity >= tiers[1].MinimumQuantity
}

// stepOnceTotal prices (tier1.Min - 1) units at the base rate and the remainder at the
// second tier's rate.
func stepOnceTotal(tiers []domain.PriceTier, quantity, base uint64, currency string) (uint64, bool) {
	baseUnits := tiers[1].MinimumQuantity - 1
	rate := tierRate(tiers[1], base, currency)

	baseCost, ok := mulChecked(baseUnits, base)
	if !ok {
		return 0, false
	}
	stepCost, ok := mulChecked(quantity-baseUnits, rate)
	if !ok {
		return 0, false
	}
	return addChecked(baseCost, stepCost)
}

// stepAlwaysTotal prices each fully spanned tier at its own rate for its own span
// width, then the remaining excess at the target tier's rate.
func stepAlwaysTotal(tiers []domain.PriceTier, target int, quantity, base uint64, currency string) (uint64, bool) {
	var total uint64
	for i := 0; i < target; i++ {
		width := tiers[i+1].MinimumQuantity - tiers[i].MinimumQuantity
		rate := tierRate(tiers[i], base, currency)
		span, ok := mulChecked(width, rate)
		if !ok {
			return 0, false
		}
		total, ok = addChecked(total, span)
		if !ok {
			return 0, false
		}
	}

	consumed := tiers[target].MinimumQuantity - tiers[0].MinimumQuantity
	excess, ok := mulChecked(quantity-consumed, tierRate(tiers[target], base, currency))
	if !ok {
		return 0, false
	}
	return addChecked(total, excess)
}

// tierRate resolves the tier's amount in the requested currency, falling back to the
// base rate when the tier carries no amount for it.
func tierRate(tier domain.PriceTier, base uint64, currency string) uint64 {
	if rate, ok := tier.AmountIn(currency); ok {
		return rate
	}
	return base
}

// mulChecked multiplies, reporting false when the product wraps.
func mulChecked(a, b uint64) (uint64, bool) {
	product := a * b
	if b != 0 && product/b != a {
		return 0, false
	}
	return product, true
}

// addChecked adds, reporting false when the sum wraps.
func addChecked(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
