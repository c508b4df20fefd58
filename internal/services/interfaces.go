package services

import (
	"context"
	"time"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
)

// TaxCalculator applies a jurisdiction's tax to a tax-exclusive amount. A nil
// TaxCalculator means tax is disabled for the calculation.
type TaxCalculator interface {
	Apply(amount uint64) uint64
}

// TaxService resolves the calculator for a jurisdiction.
type TaxService interface {
	// CalculatorFor returns nil when tax is disabled. A blank jurisdiction while tax is
	// active is a hard error.
	CalculatorFor(ctx context.Context, jurisdiction string) (TaxCalculator, error)
}

// PricingService prices carts and orders.
type PricingService interface {
	GetPricing(ctx context.Context, lines []domain.ProductQuantity, jurisdiction string, couponID string) (domain.ProductQuantityPricing, error)
}

// CatalogService manages products and their price tiers.
type CatalogService interface {
	GetProduct(ctx context.Context, productID uint64) (domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) (domain.CursorPage[domain.Product], error)
	CreateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error)
	UpdateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID uint64) error
	ListTiers(ctx context.Context, productID uint64) ([]domain.PriceTier, error)
	ReplaceTiers(ctx context.Context, productID uint64, tiers []domain.PriceTier) error
}

// ProductFilter narrows product listings at the service boundary.
type ProductFilter struct {
	CategoryID *uint64
	OnlyPublic bool
	Pagination domain.Pagination
}

// UpsertProductCommand carries product mutation inputs.
type UpsertProductCommand struct {
	Product domain.Product
	ActorID string
}

// CategoryService materialises and caches the category tree.
type CategoryService interface {
	GetTree(ctx context.Context, includeProducts bool) (*CategoryTree, error)
	GetCategory(ctx context.Context, categoryID uint64) (domain.Category, error)
	CreateCategory(ctx context.Context, cmd UpsertCategoryCommand) (domain.Category, error)
	UpdateCategory(ctx context.Context, cmd UpsertCategoryCommand) (domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID uint64) error
	SetParent(ctx context.Context, categoryID uint64, newParentID uint64) (domain.Category, error)
	HasCircularReference(ctx context.Context, categoryID uint64, newParentID uint64) (bool, error)
}

// UpsertCategoryCommand carries category mutation inputs.
type UpsertCategoryCommand struct {
	Category domain.Category
	ActorID  string
}

// AttributeGroupService materialises and caches the attribute-group tree.
type AttributeGroupService interface {
	GetTree(ctx context.Context, includeAttributes bool) (*AttributeGroupTree, error)
	GetGroup(ctx context.Context, groupID uint64) (domain.AttributeGroup, error)
	CreateGroup(ctx context.Context, cmd UpsertAttributeGroupCommand) (domain.AttributeGroup, error)
	UpdateGroup(ctx context.Context, cmd UpsertAttributeGroupCommand) (domain.AttributeGroup, error)
	DeleteGroup(ctx context.Context, groupID uint64) error
	SetParent(ctx context.Context, groupID uint64, newParentID uint64) (domain.AttributeGroup, error)
	HasCircularReference(ctx context.Context, groupID uint64, newParentID uint64) (bool, error)
}

// UpsertAttributeGroupCommand carries attribute-group mutation inputs.
type UpsertAttributeGroupCommand struct {
	Group   domain.AttributeGroup
	ActorID string
}

// CouponService manages discount coupons.
type CouponService interface {
	GetCoupon(ctx context.Context, couponID string) (domain.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error)
	ListCoupons(ctx context.Context, filter CouponFilter) (domain.CursorPage[domain.Coupon], error)
	CreateCoupon(ctx context.Context, cmd UpsertCouponCommand) (domain.Coupon, error)
	UpdateCoupon(ctx context.Context, cmd UpsertCouponCommand) (domain.Coupon, error)
	DeleteCoupon(ctx context.Context, couponID string) error
}

// CouponFilter narrows coupon listings at the service boundary.
type CouponFilter struct {
	IncludeDisabled bool
	Pagination      domain.Pagination
}

// UpsertCouponCommand carries coupon mutation inputs.
type UpsertCouponCommand struct {
	Coupon  domain.Coupon
	ActorID string
}

// CheckoutService prices a set of lines and opens a payment intent for the result.
type CheckoutService interface {
	CreatePurchaseIntent(ctx context.Context, cmd PurchaseIntentCommand) (PurchaseIntent, error)
}

// PurchaseIntentCommand carries checkout inputs.
type PurchaseIntentCommand struct {
	Lines          []domain.ProductQuantity
	Jurisdiction   string
	CouponID       string
	CustomerRef    string
	IdempotencyKey string
	Metadata       map[string]string
}

// PurchaseIntent is the opened payment intent plus the authoritative pricing it covers.
type PurchaseIntent struct {
	IntentID     string
	ClientSecret string
	Pricing      domain.ProductQuantityPricing
	CreatedAt    time.Time
}

// SystemService surfaces service health for operational endpoints.
type SystemService interface {
	Report(ctx context.Context) (domain.SystemHealthReport, error)
}

// CatalogEventPublisher broadcasts catalog change events to downstream consumers such
// as search indexers. Publish failures are logged, never surfaced to callers.
type CatalogEventPublisher interface {
	PublishCatalogEvent(ctx context.Context, event CatalogEvent) (string, error)
}

// CatalogEvent describes one catalog mutation.
type CatalogEvent struct {
	Kind       string
	Action     string
	EntityID   string
	ActorID    string
	OccurredAt time.Time
}

// Catalog event kinds and actions.
const (
	CatalogEventKindProduct        = "product"
	CatalogEventKindCategory       = "category"
	CatalogEventKindAttributeGroup = "attribute_group"
	CatalogEventKindCoupon         = "coupon"

	CatalogEventActionCreated = "created"
	CatalogEventActionUpdated = "updated"
	CatalogEventActionDeleted = "deleted"
)
