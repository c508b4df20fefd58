package domain

// Soft error codes reported on pricing results. These are business-rule conditions that
// are always computed and returned on the result, never raised as Go errors, so callers
// can render partial state. CostErrorNotAvailable takes precedence over
// CostErrorBelowMinimum when both would apply.
const (
	// CostErrorBelowMinimum flags a quantity below every configured tier minimum.
	// The amount is still computed at the tier-0 rate.
	CostErrorBelowMinimum = "product/below_min"
	// CostErrorNotAvailable flags a product whose base tier carries no amount in the
	// requested currency.
	CostErrorNotAvailable = "product/not_available"
	// CostErrorSubstantialQuantity flags an arithmetic step that would wrap the
	// unsigned 64-bit accumulator.
	CostErrorSubstantialQuantity = "substantial_quantity"
	// PricingErrorCouponExpired flags a disabled or expired coupon; the coupon is
	// ignored for the rest of the calculation.
	PricingErrorCouponExpired = "coupon_expired"
	// PricingErrorMinimumSpend flags a total below the coupon's minimum-spend
	// threshold. Informational; the discount is still not rolled back.
	PricingErrorMinimumSpend = "min_spend"
)

// ProductCost is the per-line pricing result. Amounts are in the smallest currency unit.
// A non-empty ErrorCode is a soft error: the amounts remain usable (possibly zero) but
// checkout callers must refuse to proceed.
type ProductCost struct {
	Amount         uint64
	AmountLessTax  uint64
	CurrencyCode   string
	IsSubscription bool
	ErrorCode      string
	ErrorMessage   string
}

// ProductCostNone is the zero/sentinel cost returned for quantity 0 or a missing product.
var ProductCostNone = ProductCost{}

// HasError reports whether a soft error was recorded on the cost.
func (c ProductCost) HasError() bool {
	return c.ErrorCode != ""
}

// LineItem couples one priced product+quantity with its computed cost.
type LineItem struct {
	ProductID uint64
	SKU       string
	Name      string
	Quantity  uint64
	Cost      ProductCost
}

// ProductQuantityPricing aggregates the pricing result for a whole cart or order.
//
// Before coupon adjustment, Total equals the tax calculator applied to TotalLessTax
// when tax is active, and equals TotalLessTax otherwise. Coupon adjustment then mutates
// both fields using the same percentage/fixed-amount rule, each from its own base.
type ProductQuantityPricing struct {
	Total                   uint64
	TotalLessTax            uint64
	CurrencyCode            string
	Display                 string
	Lines                   []LineItem
	HasSubscriptionProducts bool
	ErrorCode               string
	ErrorMessage            string
}

// HasErrors reports whether the collection-level error or any line-level error is set.
func (p ProductQuantityPricing) HasErrors() bool {
	if p.ErrorCode != "" {
		return true
	}
	for _, line := range p.Lines {
		if line.Cost.HasError() {
			return true
		}
	}
	return false
}
