package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/payments"
	"github.com/socialstack-core/storefront-api/internal/platform/textutil"
)

// Checkout service errors.
var (
	ErrCheckoutEmptyOrder     = errors.New("checkout service: no lines to price")
	ErrCheckoutProviderFailed = errors.New("checkout service: payment provider failure")
)

type checkoutService struct {
	pricing  PricingService
	provider payments.Provider
	logger   *zap.Logger
	clock    func() time.Time
}

// CheckoutServiceDeps bundles constructor inputs for the checkout service.
type CheckoutServiceDeps struct {
	Pricing  PricingService
	Provider payments.Provider
	Logger   *zap.Logger
	Clock    func() time.Time
}

// NewCheckoutService constructs the checkout service.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Pricing == nil {
		return nil, errors.New("checkout service: pricing service is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("checkout service: payment provider is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &checkoutService{
		pricing:  deps.Pricing,
		provider: deps.Provider,
		logger:   logger,
		clock:    func() time.Time { return clock().UTC() },
	}, nil
}

// CreatePurchaseIntent prices the order authoritatively, rejects any order whose
// pricing carries an unresolved condition, and opens a payment intent for the total.
// Recurring products cannot pass through a one-off intent and are rejected outright.
func (s *checkoutService) CreatePurchaseIntent(ctx context.Context, cmd PurchaseIntentCommand) (PurchaseIntent, error) {
	if len(cmd.Lines) == 0 {
		return PurchaseIntent{}, ErrCheckoutEmptyOrder
	}

	pricing, err := s.pricing.GetPricing(ctx, cmd.Lines, cmd.Jurisdiction, cmd.CouponID)
	if err != nil {
		return PurchaseIntent{}, err
	}
	if pub := RequireNoErrors(pricing); pub != nil {
		return PurchaseIntent{}, pub
	}
	if pricing.HasSubscriptionProducts {
		return PurchaseIntent{}, domain.NewPublicError("subscription_checkout", "Subscription products cannot be purchased through one-off checkout.")
	}
	if pricing.Total == 0 {
		return PurchaseIntent{}, ErrCheckoutEmptyOrder
	}
	if pricing.Total > math.MaxInt64 {
		return PurchaseIntent{}, domain.NewPublicError(domain.CostErrorSubstantialQuantity, "The order total is too large to charge.")
	}

	intent, err := s.provider.CreateIntent(ctx, payments.IntentRequest{
		Amount:         int64(pricing.Total),
		Currency:       pricing.CurrencyCode,
		CustomerRef:    cmd.CustomerRef,
		Description:    fmt.Sprintf("Order of %d line(s)", len(pricing.Lines)),
		IdempotencyKey: cmd.IdempotencyKey,
		Metadata:       textutil.NormalizeStringMap(cmd.Metadata),
	})
	if err != nil {
		s.logger.Error("payment intent creation failed",
			zap.String("currency", pricing.CurrencyCode),
			zap.Uint64("total", pricing.Total),
			zap.Error(err))
		return PurchaseIntent{}, fmt.Errorf("%w: %v", ErrCheckoutProviderFailed, err)
	}

	return PurchaseIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Pricing:      pricing,
		CreatedAt:    s.clock(),
	}, nil
}
