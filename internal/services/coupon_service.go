package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// Coupon service errors.
var (
	ErrCouponNotFound          = errors.New("coupon service: coupon not found")
	ErrCouponValidation        = errors.New("coupon service: invalid coupon")
	ErrCouponRepositoryFailure = errors.New("coupon service: repository failure")
)

type couponService struct {
	coupons repositories.CouponRepository
	events  CatalogEventPublisher
	logger  *zap.Logger
	clock   func() time.Time
}

// CouponServiceDeps bundles constructor inputs for the coupon service.
type CouponServiceDeps struct {
	Coupons repositories.CouponRepository
	Events  CatalogEventPublisher
	Logger  *zap.Logger
	Clock   func() time.Time
}

// NewCouponService constructs the coupon management service.
func NewCouponService(deps CouponServiceDeps) (CouponService, error) {
	if deps.Coupons == nil {
		return nil, errors.New("coupon service: coupon repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &couponService{
		coupons: deps.Coupons,
		events:  deps.Events,
		logger:  logger,
		clock:   func() time.Time { return clock().UTC() },
	}, nil
}

func (s *couponService) GetCoupon(ctx context.Context, couponID string) (domain.Coupon, error) {
	coupon, err := s.coupons.Get(ctx, couponID)
	if err != nil {
		return domain.Coupon{}, s.mapRepositoryError(err)
	}
	return coupon, nil
}

func (s *couponService) GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error) {
	coupon, err := s.coupons.GetByCode(ctx, normalizeCouponCode(code))
	if err != nil {
		return domain.Coupon{}, s.mapRepositoryError(err)
	}
	return coupon, nil
}

func (s *couponService) ListCoupons(ctx context.Context, filter CouponFilter) (domain.CursorPage[domain.Coupon], error) {
	page, err := s.coupons.List(ctx, repositories.CouponFilter{
		IncludeDisabled: filter.IncludeDisabled,
		Pagination:      filter.Pagination,
	})
	if err != nil {
		return domain.CursorPage[domain.Coupon]{}, s.mapRepositoryError(err)
	}
	return page, nil
}

func (s *couponService) CreateCoupon(ctx context.Context, cmd UpsertCouponCommand) (domain.Coupon, error) {
	coupon, err := s.normalize(cmd.Coupon)
	if err != nil {
		return domain.Coupon{}, err
	}

	if existing, err := s.coupons.GetByCode(ctx, coupon.Code); err == nil && existing.ID != "" {
		return domain.Coupon{}, fmt.Errorf("%w: code %q already exists", ErrCouponValidation, coupon.Code)
	}

	now := s.clock()
	coupon.ID = "coup_" + ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	stored, err := s.coupons.Upsert(ctx, coupon)
	if err != nil {
		return domain.Coupon{}, s.mapRepositoryError(err)
	}

	s.publish(ctx, CatalogEventActionCreated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, cmd UpsertCouponCommand) (domain.Coupon, error) {
	if cmd.Coupon.ID == "" {
		return domain.Coupon{}, fmt.Errorf("%w: id is required", ErrCouponValidation)
	}
	coupon, err := s.normalize(cmd.Coupon)
	if err != nil {
		return domain.Coupon{}, err
	}

	existing, err := s.coupons.Get(ctx, coupon.ID)
	if err != nil {
		return domain.Coupon{}, s.mapRepositoryError(err)
	}
	coupon.CreatedAt = existing.CreatedAt
	coupon.UpdatedAt = s.clock()

	stored, err := s.coupons.Upsert(ctx, coupon)
	if err != nil {
		return domain.Coupon{}, s.mapRepositoryError(err)
	}

	s.publish(ctx, CatalogEventActionUpdated, stored.ID, cmd.ActorID)
	return stored, nil
}

func (s *couponService) DeleteCoupon(ctx context.Context, couponID string) error {
	if _, err := s.coupons.Get(ctx, couponID); err != nil {
		return s.mapRepositoryError(err)
	}
	if err := s.coupons.Delete(ctx, couponID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.publish(ctx, CatalogEventActionDeleted, couponID, "")
	return nil
}

func (s *couponService) publish(ctx context.Context, action string, couponID string, actorID string) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishCatalogEvent(ctx, CatalogEvent{
		Kind:       CatalogEventKindCoupon,
		Action:     action,
		EntityID:   couponID,
		ActorID:    actorID,
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.logger.Warn("coupon event publish failed",
			zap.String("action", action),
			zap.String("coupon_id", couponID),
			zap.Error(err))
	}
}

func (s *couponService) normalize(coupon domain.Coupon) (domain.Coupon, error) {
	coupon.Code = normalizeCouponCode(coupon.Code)
	coupon.Description = strings.TrimSpace(coupon.Description)
	if coupon.Code == "" {
		return domain.Coupon{}, fmt.Errorf("%w: code is required", ErrCouponValidation)
	}
	if coupon.DiscountPercent > 100 {
		return domain.Coupon{}, fmt.Errorf("%w: discount percent %d exceeds 100", ErrCouponValidation, coupon.DiscountPercent)
	}
	if coupon.DiscountPercent == 0 && coupon.DiscountAmount == 0 {
		return domain.Coupon{}, fmt.Errorf("%w: coupon has no discount", ErrCouponValidation)
	}
	if coupon.ExpiryDateUTC != nil && coupon.ExpiryDateUTC.IsZero() {
		coupon.ExpiryDateUTC = nil
	}
	return coupon, nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *couponService) mapRepositoryError(err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return ErrCouponNotFound
	}
	return fmt.Errorf("%w: %v", ErrCouponRepositoryFailure, err)
}
