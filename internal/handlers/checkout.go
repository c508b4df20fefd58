package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/platform/auth"
	"github.com/socialstack-core/storefront-api/internal/platform/httpx"
	"github.com/socialstack-core/storefront-api/internal/platform/requestctx"
	"github.com/socialstack-core/storefront-api/internal/services"
)

const maxCheckoutRequestBody = 64 * 1024

// CheckoutHandlers exposes checkout endpoints for authenticated users.
type CheckoutHandlers struct {
	authn             *auth.Authenticator
	checkout          services.CheckoutService
	idempotencyHeader string
	limiter           RateLimiter
}

// CheckoutHandlersConfig bundles constructor inputs for checkout handlers.
type CheckoutHandlersConfig struct {
	Authenticator     *auth.Authenticator
	Checkout          services.CheckoutService
	IdempotencyHeader string
	Limiter           RateLimiter
}

// NewCheckoutHandlers constructs checkout handlers guarded by Firebase authentication.
func NewCheckoutHandlers(cfg CheckoutHandlersConfig) *CheckoutHandlers {
	header := strings.TrimSpace(cfg.IdempotencyHeader)
	if header == "" {
		header = "Idempotency-Key"
	}
	return &CheckoutHandlers{
		authn:             cfg.Authenticator,
		checkout:          cfg.Checkout,
		idempotencyHeader: header,
		limiter:           cfg.Limiter,
	}
}

// Routes registers checkout endpoints under the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth())
	}
	group.Post("/intent", h.createIntent)
}

type purchaseIntentRequest struct {
	Lines        []pricingQuoteLine `json:"lines"`
	Jurisdiction string             `json:"jurisdiction"`
	CouponID     string             `json:"couponId"`
	Metadata     map[string]string  `json:"metadata"`
}

type purchaseIntentResponse struct {
	IntentID     string               `json:"intentId"`
	ClientSecret string               `json:"clientSecret,omitempty"`
	Pricing      pricingQuoteResponse `json:"pricing"`
	CreatedAt    string               `json:"createdAt"`
}

func (h *CheckoutHandlers) createIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(identity.UID) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many checkout requests", http.StatusTooManyRequests))
		return
	}

	var req purchaseIntentRequest
	if err := decodeJSONBody(r, maxCheckoutRequestBody, &req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return
	}
	if len(req.Lines) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "lines are required", http.StatusBadRequest))
		return
	}

	lines := make([]domain.ProductQuantity, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.ProductQuantity{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	jurisdiction := strings.TrimSpace(req.Jurisdiction)
	if jurisdiction == "" {
		if locale, ok := requestctx.Locale(ctx); ok {
			jurisdiction = locale.DefaultTaxJurisdiction
		}
	}

	intent, err := h.checkout.CreatePurchaseIntent(ctx, services.PurchaseIntentCommand{
		Lines:          lines,
		Jurisdiction:   jurisdiction,
		CouponID:       strings.TrimSpace(req.CouponID),
		CustomerRef:    identity.UID,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(h.idempotencyHeader)),
		Metadata:       req.Metadata,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, purchaseIntentResponse{
		IntentID:     intent.IntentID,
		ClientSecret: intent.ClientSecret,
		Pricing:      toPricingResponse(intent.Pricing),
		CreatedAt:    intent.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	var publicErr *domain.PublicError
	switch {
	case errors.As(err, &publicErr):
		httpx.WriteError(ctx, w, httpx.NewError(publicErr.Code, publicErr.Message, http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCheckoutEmptyOrder):
		httpx.WriteError(ctx, w, httpx.NewError("empty_order", "order has no payable lines", http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutProviderFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_provider_failed", "payment provider rejected the request", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_failed", "checkout failed", http.StatusServiceUnavailable))
	}
}
