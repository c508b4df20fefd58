package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/socialstack-core/storefront-api/internal/payments"
	"github.com/socialstack-core/storefront-api/internal/platform/config"
	"github.com/socialstack-core/storefront-api/internal/repositories"
	"github.com/socialstack-core/storefront-api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete
// implementations are assembled via dependency injection in NewContainer.
type Services struct {
	Pricing         services.PricingService
	Tax             services.TaxService
	Catalog         services.CatalogService
	Categories      services.CategoryService
	AttributeGroups services.AttributeGroupService
	Coupons         services.CouponService
	Checkout        services.CheckoutService
	System          services.SystemService
}

// ContainerDeps carries the externally constructed collaborators the container wires
// into services. Registry is required; the rest degrade gracefully when absent.
type ContainerDeps struct {
	Registry repositories.Registry
	// Payments opens payment intents at checkout. When nil the checkout service is
	// not built and the checkout surface stays unmounted.
	Payments payments.Provider
	// Events broadcasts catalog mutations. Optional.
	Events services.CatalogEventPublisher
	Logger *zap.Logger
	Clock  func() time.Time
	Build  services.BuildInfo
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides
// Firestore-backed repositories, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, deps ContainerDeps) (*Container, error) {
	if deps.Registry == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: deps.Registry,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(_ context.Context, cfg config.Config, deps ContainerDeps) (Services, error) {
	var svc Services
	reg := deps.Registry

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	engine, err := services.NewPricingEngine(services.PricingEngineDeps{
		Tiers:           reg.PriceTiers(),
		DefaultCurrency: cfg.Pricing.DefaultCurrency,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build pricing engine: %w", err)
	}

	taxSvc, err := services.NewTaxService(services.TaxServiceDeps{
		Rates:   reg.TaxRates(),
		Enabled: cfg.Pricing.TaxEnabled,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build tax service: %w", err)
	}
	svc.Tax = taxSvc

	pricingSvc, err := services.NewPricingService(services.PricingServiceDeps{
		Engine:        engine,
		Tax:           taxSvc,
		Products:      reg.Products(),
		Coupons:       reg.Coupons(),
		Logger:        logger.Named("pricing"),
		DefaultLocale: cfg.Pricing.DefaultLocale,
		Clock:         clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build pricing service: %w", err)
	}
	svc.Pricing = pricingSvc

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: reg.Products(),
		Tiers:    reg.PriceTiers(),
		Counters: reg.Counters(),
		Events:   deps.Events,
		Logger:   logger.Named("catalog"),
		Clock:    clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	categorySvc, err := services.NewCategoryService(services.CategoryServiceDeps{
		Categories: reg.Categories(),
		Products:   reg.Products(),
		Counters:   reg.Counters(),
		Events:     deps.Events,
		Logger:     logger.Named("categories"),
		Clock:      clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build category service: %w", err)
	}
	svc.Categories = categorySvc

	groupSvc, err := services.NewAttributeGroupService(services.AttributeGroupServiceDeps{
		Groups:     reg.AttributeGroups(),
		Attributes: reg.Attributes(),
		Counters:   reg.Counters(),
		Events:     deps.Events,
		Logger:     logger.Named("attribute_groups"),
		Clock:      clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build attribute group service: %w", err)
	}
	svc.AttributeGroups = groupSvc

	couponSvc, err := services.NewCouponService(services.CouponServiceDeps{
		Coupons: reg.Coupons(),
		Events:  deps.Events,
		Logger:  logger.Named("coupons"),
		Clock:   clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build coupon service: %w", err)
	}
	svc.Coupons = couponSvc

	if deps.Payments != nil {
		checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
			Pricing:  pricingSvc,
			Provider: deps.Payments,
			Logger:   logger.Named("checkout"),
			Clock:    clock,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build checkout service: %w", err)
		}
		svc.Checkout = checkoutSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            clock,
			Build:            deps.Build,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
