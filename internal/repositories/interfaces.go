package repositories

import (
	"context"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	PriceTiers() PriceTierRepository
	Categories() CategoryRepository
	AttributeGroups() AttributeGroupRepository
	Attributes() AttributeRepository
	Coupons() CouponRepository
	TaxRates() TaxRateRepository
	Counters() CounterRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *uint64
	OnlyPublic bool
	Pagination domain.Pagination
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Get(ctx context.Context, id uint64) (domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (domain.Product, error)
	List(ctx context.Context, filter ProductFilter) (domain.CursorPage[domain.Product], error)
	// ListAll returns the full product set without permission filtering; used by
	// privileged tree construction.
	ListAll(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uint64) error
}

// PriceTierRepository persists per-product price breaks.
type PriceTierRepository interface {
	// ListByProduct returns the product's tiers ordered ascending by MinimumQuantity.
	ListByProduct(ctx context.Context, productID uint64) ([]domain.PriceTier, error)
	Replace(ctx context.Context, productID uint64, tiers []domain.PriceTier) error
}

// CategoryRepository persists the flat, parent-referencing category rows.
type CategoryRepository interface {
	Get(ctx context.Context, id uint64) (domain.Category, error)
	// ListAll returns every category row without permission filtering.
	ListAll(ctx context.Context) ([]domain.Category, error)
	Upsert(ctx context.Context, category domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id uint64) error
}

// AttributeGroupRepository persists the flat attribute-group rows.
type AttributeGroupRepository interface {
	Get(ctx context.Context, id uint64) (domain.AttributeGroup, error)
	ListAll(ctx context.Context) ([]domain.AttributeGroup, error)
	Upsert(ctx context.Context, group domain.AttributeGroup) (domain.AttributeGroup, error)
	Delete(ctx context.Context, id uint64) error
}

// AttributeRepository persists attributes owned by attribute groups.
type AttributeRepository interface {
	ListAll(ctx context.Context) ([]domain.Attribute, error)
	ListByGroup(ctx context.Context, groupID uint64) ([]domain.Attribute, error)
	Upsert(ctx context.Context, attribute domain.Attribute) (domain.Attribute, error)
	Delete(ctx context.Context, id uint64) error
}

// CouponFilter narrows coupon listings.
type CouponFilter struct {
	IncludeDisabled bool
	Pagination      domain.Pagination
}

// CouponRepository persists discount coupons.
type CouponRepository interface {
	Get(ctx context.Context, id string) (domain.Coupon, error)
	GetByCode(ctx context.Context, code string) (domain.Coupon, error)
	List(ctx context.Context, filter CouponFilter) (domain.CursorPage[domain.Coupon], error)
	Upsert(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	Delete(ctx context.Context, id string) error
}

// TaxRateRepository persists per-jurisdiction tax rates.
type TaxRateRepository interface {
	Get(ctx context.Context, jurisdiction string) (domain.TaxRate, error)
	ListAll(ctx context.Context) ([]domain.TaxRate, error)
	Upsert(ctx context.Context, rate domain.TaxRate) (domain.TaxRate, error)
}

// CounterRepository provides transaction-safe sequence numbers used to allocate the
// numeric ids carried by categories, groups, and products.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
}

// HealthRepository evaluates the health of the service's dependencies.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
