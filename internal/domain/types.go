package domain

import (
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// CursorPage packages list results with an encoded next token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// BillingFrequency describes how often a product bills. Zero means a one-off purchase.
type BillingFrequency int

const (
	// BillingOneOff marks a product purchased once with no recurring charge.
	BillingOneOff BillingFrequency = 0
	// BillingMonthly marks a product billed every month.
	BillingMonthly BillingFrequency = 1
	// BillingQuarterly marks a product billed every three months.
	BillingQuarterly BillingFrequency = 2
	// BillingAnnually marks a product billed every year.
	BillingAnnually BillingFrequency = 3
)

// PriceStrategy selects how a product's price tiers combine for a given quantity.
type PriceStrategy uint8

const (
	// PriceStrategyStandard prices every unit at the tier-0 base amount. Tiers beyond
	// tier 0 act as price overrides elsewhere and are not consumed by the calculation.
	PriceStrategyStandard PriceStrategy = 0
	// PriceStrategyStepOnce prices units below the second tier's threshold at the base
	// rate and everything above it at the second tier's rate.
	PriceStrategyStepOnce PriceStrategy = 1
	// PriceStrategyStepAlways prices each tier's span at that tier's own rate, with the
	// excess beyond the last crossed threshold at the target tier's rate.
	PriceStrategyStepAlways PriceStrategy = 2
)

// Valid reports whether the strategy is one of the closed set of variants.
func (s PriceStrategy) Valid() bool {
	switch s {
	case PriceStrategyStandard, PriceStrategyStepOnce, PriceStrategyStepAlways:
		return true
	default:
		return false
	}
}

// String returns the canonical name for the strategy.
func (s PriceStrategy) String() string {
	switch s {
	case PriceStrategyStandard:
		return "standard"
	case PriceStrategyStepOnce:
		return "step_once"
	case PriceStrategyStepAlways:
		return "step_always"
	default:
		return "unknown"
	}
}

// PriceTier represents one price break for a product. Amounts are stored per currency
// in the smallest currency unit.
type PriceTier struct {
	MinimumQuantity uint64
	Amounts         map[string]uint64
}

// AmountIn resolves the tier's amount in the requested currency. It reports false when
// the tier has no amount configured for that currency.
func (t PriceTier) AmountIn(currency string) (uint64, bool) {
	if len(t.Amounts) == 0 {
		return 0, false
	}
	amount, ok := t.Amounts[currency]
	return amount, ok
}

// Product is the sellable catalog entity owning an ordered tier list.
type Product struct {
	ID               uint64
	SKU              string
	Name             string
	Slug             string
	Description      string
	Strategy         PriceStrategy
	BillingFrequency BillingFrequency
	CategoryIDs      []uint64
	IsPublic         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsSubscription reports whether the product bills on a recurring schedule.
func (p Product) IsSubscription() bool {
	return p.BillingFrequency != BillingOneOff
}

// ProductQuantity is one requested line of a pricing calculation.
type ProductQuantity struct {
	ProductID uint64
	Quantity  uint64
}

// Coupon describes a discount code applied on top of an aggregate pricing result.
type Coupon struct {
	ID              string
	Code            string
	Description     string
	Disabled        bool
	ExpiryDateUTC   *time.Time
	MinimumSpend    uint64
	DiscountPercent uint64
	DiscountAmount  uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Expired reports whether the coupon can no longer be applied at the given instant.
func (c Coupon) Expired(now time.Time) bool {
	if c.Disabled {
		return true
	}
	return c.ExpiryDateUTC != nil && now.After(*c.ExpiryDateUTC)
}

// TaxRate stores the configured rate for one tax jurisdiction in basis points.
type TaxRate struct {
	Jurisdiction string
	BasisPoints  uint64
	UpdatedAt    time.Time
}

// Category is one row of the flat, parent-referencing category set.
type Category struct {
	ID          uint64
	ParentID    uint64
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AttributeGroup is one row of the flat attribute-group set, keyed by a stable string key.
type AttributeGroup struct {
	ID        uint64
	ParentID  uint64
	Key       string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attribute is a leaf attached to an attribute group.
type Attribute struct {
	ID      uint64
	GroupID uint64
	Key     string
	Name    string
	Unit    string
}

// Locale carries the request-scoped currency and default tax jurisdiction.
type Locale struct {
	Code                   string
	CurrencyCode           string
	DefaultTaxJurisdiction string
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}
