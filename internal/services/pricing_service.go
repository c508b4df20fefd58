package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/platform/requestctx"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// Pricing service errors.
var (
	ErrPricingProductsUnavailable = errors.New("pricing service: products unavailable")
	ErrPricingCouponsUnavailable  = errors.New("pricing service: coupons unavailable")
)

type pricingService struct {
	engine   *PricingEngine
	tax      TaxService
	products repositories.ProductRepository
	coupons  repositories.CouponRepository
	logger   *zap.Logger
	locale   string
	clock    func() time.Time
}

// PricingServiceDeps bundles constructor inputs for the pricing service.
type PricingServiceDeps struct {
	Engine   *PricingEngine
	Tax      TaxService
	Products repositories.ProductRepository
	Coupons  repositories.CouponRepository
	Logger   *zap.Logger
	// DefaultLocale formats display totals when the request carries no locale.
	DefaultLocale string
	Clock         func() time.Time
}

// NewPricingService constructs the quantity-set pricing aggregator.
func NewPricingService(deps PricingServiceDeps) (PricingService, error) {
	if deps.Engine == nil {
		return nil, errors.New("pricing service: engine is required")
	}
	if deps.Tax == nil {
		return nil, errors.New("pricing service: tax service is required")
	}
	if deps.Products == nil {
		return nil, errors.New("pricing service: product repository is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("pricing service: coupon repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locale := deps.DefaultLocale
	if locale == "" {
		locale = "en-GB"
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &pricingService{
		engine:   deps.Engine,
		tax:      deps.Tax,
		products: deps.Products,
		coupons:  deps.Coupons,
		logger:   logger,
		locale:   locale,
		clock:    func() time.Time { return clock().UTC() },
	}, nil
}

// GetPricing prices a set of product quantities as one order: per-line untaxed costs
// are accumulated, tax is applied once to the aggregate, then the coupon (when set)
// discounts both totals.
//
// Lines whose product no longer exists are skipped silently; their absence is visible
// only through the returned line list. Line-level soft errors propagate to the result
// with the last one winning.
func (s *pricingService) GetPricing(ctx context.Context, lines []domain.ProductQuantity, jurisdiction string, couponID string) (domain.ProductQuantityPricing, error) {
	result := domain.ProductQuantityPricing{CurrencyCode: s.engine.currencyFor(ctx)}

	calc, err := s.tax.CalculatorFor(ctx, jurisdiction)
	if err != nil {
		return domain.ProductQuantityPricing{}, err
	}

	for _, line := range lines {
		product, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				s.logger.Debug("pricing skipped missing product", zap.Uint64("product_id", line.ProductID))
				continue
			}
			return domain.ProductQuantityPricing{}, fmt.Errorf("%w: product %d: %v", ErrPricingProductsUnavailable, line.ProductID, err)
		}

		// Tax is applied once to the aggregate, never per line.
		cost, err := s.engine.GetCostOf(ctx, &product, line.Quantity, nil)
		if err != nil {
			return domain.ProductQuantityPricing{}, err
		}
		if cost.HasError() {
			result.ErrorCode = cost.ErrorCode
			result.ErrorMessage = cost.ErrorMessage
		}
		if cost.IsSubscription {
			result.HasSubscriptionProducts = true
		}

		result.TotalLessTax += cost.AmountLessTax
		result.Lines = append(result.Lines, domain.LineItem{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Cost:      cost,
		})
	}

	if calc != nil {
		result.Total = calc.Apply(result.TotalLessTax)
	} else {
		result.Total = result.TotalLessTax
	}

	if couponID != "" {
		if err := s.applyCoupon(ctx, couponID, &result); err != nil {
			return domain.ProductQuantityPricing{}, err
		}
	}

	result.Display = domain.FormatAmount(s.localeFor(ctx), result.CurrencyCode, result.Total)
	return result, nil
}

// applyCoupon layers the coupon's percentage discount then its fixed discount onto both
// totals. An expired, disabled, or missing coupon degrades to a soft error so the
// undiscounted quote still returns.
func (s *pricingService) applyCoupon(ctx context.Context, couponID string, result *domain.ProductQuantityPricing) error {
	coupon, err := s.coupons.Get(ctx, couponID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			result.ErrorCode = domain.PricingErrorCouponExpired
			result.ErrorMessage = "That coupon is no longer available."
			return nil
		}
		return fmt.Errorf("%w: coupon %s: %v", ErrPricingCouponsUnavailable, couponID, err)
	}

	if coupon.Disabled || coupon.Expired(s.clock()) {
		result.ErrorCode = domain.PricingErrorCouponExpired
		result.ErrorMessage = "That coupon has expired."
		return nil
	}
	if coupon.MinimumSpend > 0 && result.Total < coupon.MinimumSpend {
		result.ErrorCode = domain.PricingErrorMinimumSpend
		result.ErrorMessage = fmt.Sprintf("This coupon requires a minimum spend of %s.",
			domain.FormatAmount(s.localeFor(ctx), result.CurrencyCode, coupon.MinimumSpend))
		return nil
	}

	result.Total = discount(result.Total, coupon)
	result.TotalLessTax = discount(result.TotalLessTax, coupon)
	return nil
}

// discount applies the percentage reduction with exact integer rounding up, then
// subtracts the fixed amount clamping at zero.
func discount(total uint64, coupon domain.Coupon) uint64 {
	if pct := coupon.DiscountPercent; pct > 0 {
		if pct >= 100 {
			total = 0
		} else {
			keep := 100 - pct
			q, r := total/100, total%100
			total = q*keep + ceilDiv(r*keep, 100)
		}
	}
	if coupon.DiscountAmount >= total {
		return 0
	}
	return total - coupon.DiscountAmount
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

func (s *pricingService) localeFor(ctx context.Context) string {
	if locale, ok := requestctx.Locale(ctx); ok && locale.Code != "" {
		return locale.Code
	}
	return s.locale
}

// RequireNoErrors converts a soft-errored pricing result into the public error surfaced
// to buyers at commitment points such as checkout.
func RequireNoErrors(pricing domain.ProductQuantityPricing) *domain.PublicError {
	if !pricing.HasErrors() {
		return nil
	}
	if pricing.ErrorCode != "" {
		return domain.NewPublicError(pricing.ErrorCode, pricing.ErrorMessage)
	}
	for _, line := range pricing.Lines {
		if line.Cost.HasError() {
			return domain.NewPublicError(line.Cost.ErrorCode, line.Cost.ErrorMessage)
		}
	}
	return nil
}
