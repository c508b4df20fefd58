package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// Category service errors.
var (
	ErrCategoryNotFound          = errors.New("category service: category not found")
	ErrCategoryValidation        = errors.New("category service: invalid category")
	ErrCategoryCircularReference = errors.New("category service: circular reference")
	ErrCategoryRepositoryFailure = errors.New("category service: repository failure")
)

type categoryService struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	counters   repositories.CounterRepository
	events     CatalogEventPublisher
	sanitizer  *bluemonday.Policy
	logger     *zap.Logger
	clock      func() time.Time

	// cache holds the last built snapshot. Mutations swap in nil; the next reader
	// rebuilds. Concurrent readers may race a rebuild and both build a tree; both
	// trees are valid snapshots and the last store wins.
	cache atomic.Pointer[CategoryTree]
}

// CategoryServiceDeps bundles constructor inputs for the category service.
type CategoryServiceDeps struct {
	Categories repositories.CategoryRepository
	Products   repositories.ProductRepository
	Counters   repositories.CounterRepository
	Events     CatalogEventPublisher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewCategoryService constructs the category tree service.
func NewCategoryService(deps CategoryServiceDeps) (CategoryService, error) {
	if deps.Categories == nil {
		return nil, errors.New("category service: category repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("category service: product repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("category service: counter repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &categoryService{
		categories: deps.Categories,
		products:   deps.Products,
		counters:   deps.Counters,
		events:     deps.Events,
		sanitizer:  bluemonday.UGCPolicy(),
		logger:     logger,
		clock:      func() time.Time { return clock().UTC() },
	}, nil
}

// GetTree returns the cached snapshot when it satisfies the request, otherwise rebuilds
// from the flat rows. A snapshot built with products satisfies requests without them.
func (s *categoryService) GetTree(ctx context.Context, includeProducts bool) (*CategoryTree, error) {
	if cached := s.cache.Load(); cached != nil && (cached.HasProducts() || !includeProducts) {
		return cached, nil
	}

	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", ErrCategoryRepositoryFailure, err)
	}

	var products []domain.Product
	if includeProducts {
		products, err = s.products.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list products: %v", ErrCategoryRepositoryFailure, err)
		}
		if products == nil {
			products = []domain.Product{}
		}
	}

	tree := buildCategoryTree(categories, products, s.clock())
	s.cache.Store(tree)
	return tree, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID uint64) (domain.Category, error) {
	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return domain.Category{}, s.mapRepositoryError(err, categoryID)
	}
	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, cmd UpsertCategoryCommand) (domain.Category, error) {
	category, err := s.normalize(cmd.Category)
	if err != nil {
		return domain.Category{}, err
	}

	if category.ParentID != 0 {
		if _, err := s.categories.Get(ctx, category.ParentID); err != nil {
			return domain.Category{}, s.mapRepositoryError(err, category.ParentID)
		}
	}

	id, err := s.counters.Next(ctx, "categories", 1)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%w: allocate id: %v", ErrCategoryRepositoryFailure, err)
	}
	category.ID = uint64(id)

	stored, err := s.categories.Upsert(ctx, category)
	if err != nil {
		return domain.Category{}, s.mapRepositoryError(err, category.ID)
	}

	s.invalidate()
	s.publish(ctx, CatalogEventActionCreated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, cmd UpsertCategoryCommand) (domain.Category, error) {
	if cmd.Category.ID == 0 {
		return domain.Category{}, fmt.Errorf("%w: id is required", ErrCategoryValidation)
	}
	category, err := s.normalize(cmd.Category)
	if err != nil {
		return domain.Category{}, err
	}

	existing, err := s.categories.Get(ctx, category.ID)
	if err != nil {
		return domain.Category{}, s.mapRepositoryError(err, category.ID)
	}

	if category.ParentID != existing.ParentID && category.ParentID != 0 {
		circular, err := s.HasCircularReference(ctx, category.ID, category.ParentID)
		if err != nil {
			return domain.Category{}, err
		}
		if circular {
			return domain.Category{}, fmt.Errorf("%w: category %d cannot move under %d", ErrCategoryCircularReference, category.ID, category.ParentID)
		}
	}

	stored, err := s.categories.Upsert(ctx, category)
	if err != nil {
		return domain.Category{}, s.mapRepositoryError(err, category.ID)
	}

	s.invalidate()
	s.publish(ctx, CatalogEventActionUpdated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID uint64) error {
	if _, err := s.categories.Get(ctx, categoryID); err != nil {
		return s.mapRepositoryError(err, categoryID)
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return s.mapRepositoryError(err, categoryID)
	}
	s.invalidate()
	s.publish(ctx, CatalogEventActionDeleted, categoryID, "")
	return nil
}

// SetParent moves a category under a new parent after rejecting moves that would close
// a cycle. A zero newParentID promotes the category to a root.
func (s *categoryService) SetParent(ctx context.Context, categoryID uint64, newParentID uint64) (domain.Category, error) {
	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return domain.Category{}, s.mapRepositoryError(err, categoryID)
	}

	if newParentID != 0 {
		circular, err := s.HasCircularReference(ctx, categoryID, newParentID)
		if err != nil {
			return domain.Category{}, err
		}
		if circular {
			return domain.Category{}, fmt.Errorf("%w: category %d cannot move under %d", ErrCategoryCircularReference, categoryID, newParentID)
		}
	}

	category.ParentID = newParentID
	stored, err := s.categories.Upsert(ctx, category)
	if err != nil {
		return domain.Category{}, s.mapRepositoryError(err, categoryID)
	}

	s.invalidate()
	s.publish(ctx, CatalogEventActionUpdated, categoryID, "")
	return stored, nil
}

// HasCircularReference walks the ParentID chain up from the proposed parent, reading
// each row fresh from the store rather than the cache. It reports true the moment the
// walk reaches the category being moved, and true on any failed ancestor lookup so a
// questionable move is blocked rather than risked.
func (s *categoryService) HasCircularReference(ctx context.Context, categoryID uint64, newParentID uint64) (bool, error) {
	if categoryID == newParentID {
		return true, nil
	}

	seen := map[uint64]struct{}{categoryID: {}}
	current := newParentID
	for current != 0 {
		if _, dup := seen[current]; dup {
			// The stored chain already loops; block the move.
			return true, nil
		}
		seen[current] = struct{}{}

		ancestor, err := s.categories.Get(ctx, current)
		if err != nil {
			s.logger.Warn("circular reference walk failed, blocking move",
				zap.Uint64("category_id", categoryID),
				zap.Uint64("ancestor_id", current),
				zap.Error(err))
			return true, nil
		}
		if ancestor.ID == categoryID {
			return true, nil
		}
		current = ancestor.ParentID
	}
	return false, nil
}

func (s *categoryService) invalidate() {
	s.cache.Store(nil)
}

func (s *categoryService) publish(ctx context.Context, action string, categoryID uint64, actorID string) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishCatalogEvent(ctx, CatalogEvent{
		Kind:       CatalogEventKindCategory,
		Action:     action,
		EntityID:   fmt.Sprintf("%d", categoryID),
		ActorID:    actorID,
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.logger.Warn("category event publish failed",
			zap.String("action", action),
			zap.Uint64("category_id", categoryID),
			zap.Error(err))
	}
}

func (s *categoryService) normalize(category domain.Category) (domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	category.Description = s.sanitizer.Sanitize(category.Description)
	if category.Name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", ErrCategoryValidation)
	}
	if category.Slug == "" {
		return domain.Category{}, fmt.Errorf("%w: slug is required", ErrCategoryValidation)
	}
	if category.ParentID == category.ID && category.ID != 0 {
		return domain.Category{}, fmt.Errorf("%w: category cannot parent itself", ErrCategoryValidation)
	}
	return category, nil
}

func (s *categoryService) mapRepositoryError(err error, categoryID uint64) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return fmt.Errorf("%w: id %d", ErrCategoryNotFound, categoryID)
	}
	return fmt.Errorf("%w: id %d: %v", ErrCategoryRepositoryFailure, categoryID, err)
}
