package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// Catalog service errors.
var (
	ErrProductNotFound          = errors.New("catalog service: product not found")
	ErrProductValidation        = errors.New("catalog service: invalid product")
	ErrTierValidation           = errors.New("catalog service: invalid price tiers")
	ErrCatalogRepositoryFailure = errors.New("catalog service: repository failure")
)

type catalogService struct {
	products  repositories.ProductRepository
	tiers     repositories.PriceTierRepository
	counters  repositories.CounterRepository
	events    CatalogEventPublisher
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	clock     func() time.Time
}

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
	Tiers    repositories.PriceTierRepository
	Counters repositories.CounterRepository
	Events   CatalogEventPublisher
	Logger   *zap.Logger
	Clock    func() time.Time
}

// NewCatalogService constructs the product catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	if deps.Tiers == nil {
		return nil, errors.New("catalog service: tier repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("catalog service: counter repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &catalogService{
		products:  deps.Products,
		tiers:     deps.Tiers,
		counters:  deps.Counters,
		events:    deps.Events,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
		clock:     func() time.Time { return clock().UTC() },
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID uint64) (domain.Product, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	product, err := s.products.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter ProductFilter) (domain.CursorPage[domain.Product], error) {
	page, err := s.products.List(ctx, repositories.ProductFilter{
		CategoryID: filter.CategoryID,
		OnlyPublic: filter.OnlyPublic,
		Pagination: filter.Pagination,
	})
	if err != nil {
		return domain.CursorPage[domain.Product]{}, s.mapRepositoryError(err)
	}
	return page, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error) {
	product, err := s.normalize(cmd.Product)
	if err != nil {
		return domain.Product{}, err
	}

	id, err := s.counters.Next(ctx, "products", 1)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: allocate id: %v", ErrCatalogRepositoryFailure, err)
	}
	product.ID = uint64(id)
	if product.SKU == "" {
		product.SKU = "SKU-" + ulid.MustNew(ulid.Timestamp(s.clock()), rand.Reader).String()
	}

	now := s.clock()
	product.CreatedAt = now
	product.UpdatedAt = now

	stored, err := s.products.Upsert(ctx, product)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}

	s.publish(ctx, CatalogEventActionCreated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error) {
	if cmd.Product.ID == 0 {
		return domain.Product{}, fmt.Errorf("%w: id is required", ErrProductValidation)
	}
	product, err := s.normalize(cmd.Product)
	if err != nil {
		return domain.Product{}, err
	}

	existing, err := s.products.Get(ctx, product.ID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	product.SKU = existing.SKU
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()

	stored, err := s.products.Upsert(ctx, product)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}

	s.publish(ctx, CatalogEventActionUpdated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID uint64) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	if err := s.tiers.Replace(ctx, productID, nil); err != nil {
		s.logger.Warn("orphaned tiers left after product delete",
			zap.Uint64("product_id", productID),
			zap.Error(err))
	}
	s.publish(ctx, CatalogEventActionDeleted, productID, "")
	return nil
}

func (s *catalogService) ListTiers(ctx context.Context, productID uint64) ([]domain.PriceTier, error) {
	tiers, err := s.tiers.ListByProduct(ctx, productID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return tiers, nil
}

// ReplaceTiers swaps a product's full tier list. The list must be ordered by strictly
// ascending minimum quantity and every tier must carry at least one amount.
func (s *catalogService) ReplaceTiers(ctx context.Context, productID uint64, tiers []domain.PriceTier) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	if err := validateTiers(tiers); err != nil {
		return err
	}
	if err := s.tiers.Replace(ctx, productID, tiers); err != nil {
		return s.mapRepositoryError(err)
	}
	s.publish(ctx, CatalogEventActionUpdated, productID, "")
	return nil
}

func validateTiers(tiers []domain.PriceTier) error {
	for i, tier := range tiers {
		if len(tier.Amounts) == 0 {
			return fmt.Errorf("%w: tier %d has no amounts", ErrTierValidation, i)
		}
		if i > 0 && tier.MinimumQuantity <= tiers[i-1].MinimumQuantity {
			return fmt.Errorf("%w: tier %d minimum %d does not ascend", ErrTierValidation, i, tier.MinimumQuantity)
		}
	}
	return nil
}

func (s *catalogService) publish(ctx context.Context, action string, productID uint64, actorID string) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishCatalogEvent(ctx, CatalogEvent{
		Kind:       CatalogEventKindProduct,
		Action:     action,
		EntityID:   fmt.Sprintf("%d", productID),
		ActorID:    actorID,
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.logger.Warn("product event publish failed",
			zap.String("action", action),
			zap.Uint64("product_id", productID),
			zap.Error(err))
	}
}

func (s *catalogService) normalize(product domain.Product) (domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	product.Slug = strings.ToLower(strings.TrimSpace(product.Slug))
	product.Description = s.sanitizer.Sanitize(product.Description)
	if product.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", ErrProductValidation)
	}
	if product.Slug == "" {
		return domain.Product{}, fmt.Errorf("%w: slug is required", ErrProductValidation)
	}
	if !product.Strategy.Valid() {
		return domain.Product{}, fmt.Errorf("%w: unknown price strategy %d", ErrProductValidation, product.Strategy)
	}
	return product, nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return ErrProductNotFound
	}
	return fmt.Errorf("%w: %v", ErrCatalogRepositoryFailure, err)
}
