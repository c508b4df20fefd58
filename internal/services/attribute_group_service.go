package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// Attribute-group service errors.
var (
	ErrAttributeGroupNotFound          = errors.New("attribute group service: group not found")
	ErrAttributeGroupValidation        = errors.New("attribute group service: invalid group")
	ErrAttributeGroupCircularReference = errors.New("attribute group service: circular reference")
	ErrAttributeGroupRepositoryFailure = errors.New("attribute group service: repository failure")
)

type attributeGroupService struct {
	groups     repositories.AttributeGroupRepository
	attributes repositories.AttributeRepository
	counters   repositories.CounterRepository
	events     CatalogEventPublisher
	logger     *zap.Logger
	clock      func() time.Time

	cache atomic.Pointer[AttributeGroupTree]
}

// AttributeGroupServiceDeps bundles constructor inputs for the attribute-group service.
type AttributeGroupServiceDeps struct {
	Groups     repositories.AttributeGroupRepository
	Attributes repositories.AttributeRepository
	Counters   repositories.CounterRepository
	Events     CatalogEventPublisher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewAttributeGroupService constructs the attribute-group tree service.
func NewAttributeGroupService(deps AttributeGroupServiceDeps) (AttributeGroupService, error) {
	if deps.Groups == nil {
		return nil, errors.New("attribute group service: group repository is required")
	}
	if deps.Attributes == nil {
		return nil, errors.New("attribute group service: attribute repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("attribute group service: counter repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &attributeGroupService{
		groups:     deps.Groups,
		attributes: deps.Attributes,
		counters:   deps.Counters,
		events:     deps.Events,
		logger:     logger,
		clock:      func() time.Time { return clock().UTC() },
	}, nil
}

// GetTree returns the cached snapshot when it satisfies the request, otherwise rebuilds
// from the flat rows. A snapshot built with attributes satisfies requests without them.
func (s *attributeGroupService) GetTree(ctx context.Context, includeAttributes bool) (*AttributeGroupTree, error) {
	if cached := s.cache.Load(); cached != nil && (cached.HasAttributes() || !includeAttributes) {
		return cached, nil
	}

	groups, err := s.groups.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list groups: %v", ErrAttributeGroupRepositoryFailure, err)
	}

	var attributes []domain.Attribute
	if includeAttributes {
		attributes, err = s.attributes.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list attributes: %v", ErrAttributeGroupRepositoryFailure, err)
		}
		if attributes == nil {
			attributes = []domain.Attribute{}
		}
	}

	tree := buildAttributeGroupTree(groups, attributes, s.clock())
	s.cache.Store(tree)
	return tree, nil
}

func (s *attributeGroupService) GetGroup(ctx context.Context, groupID uint64) (domain.AttributeGroup, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.AttributeGroup{}, s.mapRepositoryError(err, groupID)
	}
	return group, nil
}

func (s *attributeGroupService) CreateGroup(ctx context.Context, cmd UpsertAttributeGroupCommand) (domain.AttributeGroup, error) {
	group, err := s.normalize(cmd.Group)
	if err != nil {
		return domain.AttributeGroup{}, err
	}

	if group.ParentID != 0 {
		if _, err := s.groups.Get(ctx, group.ParentID); err != nil {
			return domain.AttributeGroup{}, s.mapRepositoryError(err, group.ParentID)
		}
	}

	id, err := s.counters.Next(ctx, "attribute_groups", 1)
	if err != nil {
		return domain.AttributeGroup{}, fmt.Errorf("%w: allocate id: %v", ErrAttributeGroupRepositoryFailure, err)
	}
	group.ID = uint64(id)

	stored, err := s.groups.Upsert(ctx, group)
	if err != nil {
		return domain.AttributeGroup{}, s.mapRepositoryError(err, group.ID)
	}

	s.invalidate()
	s.publish(ctx, CatalogEventActionCreated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *attributeGroupService) UpdateGroup(ctx context.Context, cmd UpsertAttributeGroupCommand) (domain.AttributeGroup, error) {
	if cmd.Group.ID == 0 {
		return domain.AttributeGroup{}, fmt.Errorf("%w: id is required", ErrAttributeGroupValidation)
	}
	group, err := s.normalize(cmd.Group)
	if err != nil {
		return domain.AttributeGroup{}, err
	}

	existing, err := s.groups.Get(ctx, group.ID)
	if err != nil {
		return domain.AttributeGroup{}, s.mapRepositoryError(err, group.ID)
	}

	if group.ParentID != existing.ParentID && group.ParentID != 0 {
		circular, err := s.HasCircularReference(ctx, group.ID, group.ParentID)
		if err != nil {
			return domain.AttributeGroup{}, err
		}
		if circular {
			return domain.AttributeGroup{}, fmt.Errorf("%w: group %d cannot move under %d", ErrAttributeGroupCircularReference, group.ID, group.ParentID)
		}
	}

	stored, err := s.groups.Upsert(ctx, group)
	if err != nil {
		return domain.AttributeGroup{}, s.mapRepositoryError(err, group.ID)
	}

	s.invalidate()
	s.publish(ctx, CatalogEventActionUpdated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *attributeGroupService) DeleteGroup(ctx context.Context, groupID uint64) error {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return s.mapRepositoryError(err, groupID)
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return s.mapRepositoryError(err, groupID)
	}
	s.invalidate()
	s.publish(ctx, CatalogEventActionDeleted, groupID, "")
	return nil
}

// SetParent moves a group under a new parent after rejecting moves that would close a
// cycle. A zero newParentID promotes the group to a root.
func (s *attributeGroupService) SetParent(ctx context.Context, groupID uint64, newParentID uint64) (domain.AttributeGroup, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.AttributeGroup{}, s.mapRepositoryError(err, groupID)
	}

	if newParentID != 0 {
		circular, err := s.HasCircularReference(ctx, groupID, newParentID)
		if err != nil {
			return domain.AttributeGroup{}, err
		}
		if circular {
			return domain.AttributeGroup{}, fmt.Errorf("%w: group %d cannot move under %d", ErrAttributeGroupCircularReference, groupID, newParentID)
		}
	}

	group.ParentID = newParentID
	stored, err := s.groups.Upsert(ctx, group)
	if err != nil {
		return domain.AttributeGroup{}, s.mapRepositoryError(err, groupID)
	}

	s.invalidate()
	s.publish(ctx, CatalogEventActionUpdated, groupID, "")
	return stored, nil
}

// HasCircularReference walks the ParentID chain up from the proposed parent, reading
// each row fresh from the store. Failed lookups block the move.
func (s *attributeGroupService) HasCircularReference(ctx context.Context, groupID uint64, newParentID uint64) (bool, error) {
	if groupID == newParentID {
		return true, nil
	}

	seen := map[uint64]struct{}{groupID: {}}
	current := newParentID
	for current != 0 {
		if _, dup := seen[current]; dup {
			return true, nil
		}
		seen[current] = struct{}{}

		ancestor, err := s.groups.Get(ctx, current)
		if err != nil {
			s.logger.Warn("circular reference walk failed, blocking move",
				zap.Uint64("group_id", groupID),
				zap.Uint64("ancestor_id", current),
				zap.Error(err))
			return true, nil
		}
		if ancestor.ID == groupID {
			return true, nil
		}
		current = ancestor.ParentID
	}
	return false, nil
}

func (s *attributeGroupService) invalidate() {
	s.cache.Store(nil)
}

func (s *attributeGroupService) publish(ctx context.Context, action string, groupID uint64, actorID string) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishCatalogEvent(ctx, CatalogEvent{
		Kind:       CatalogEventKindAttributeGroup,
		Action:     action,
		EntityID:   fmt.Sprintf("%d", groupID),
		ActorID:    actorID,
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.logger.Warn("attribute group event publish failed",
			zap.String("action", action),
			zap.Uint64("group_id", groupID),
			zap.Error(err))
	}
}

func (s *attributeGroupService) normalize(group domain.AttributeGroup) (domain.AttributeGroup, error) {
	group.Name = strings.TrimSpace(group.Name)
	group.Key = strings.ToLower(strings.TrimSpace(group.Key))
	if group.Name == "" {
		return domain.AttributeGroup{}, fmt.Errorf("%w: name is required", ErrAttributeGroupValidation)
	}
	if group.Key == "" {
		return domain.AttributeGroup{}, fmt.Errorf("%w: key is required", ErrAttributeGroupValidation)
	}
	if group.ParentID == group.ID && group.ID != 0 {
		return domain.AttributeGroup{}, fmt.Errorf("%w: group cannot parent itself", ErrAttributeGroupValidation)
	}
	return group, nil
}

func (s *attributeGroupService) mapRepositoryError(err error, groupID uint64) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return fmt.Errorf("%w: id %d", ErrAttributeGroupNotFound, groupID)
	}
	return fmt.Errorf("%w: id %d: %v", ErrAttributeGroupRepositoryFailure, groupID, err)
}
