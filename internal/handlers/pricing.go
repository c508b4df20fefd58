package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/platform/httpx"
	"github.com/socialstack-core/storefront-api/internal/platform/requestctx"
	"github.com/socialstack-core/storefront-api/internal/services"
)

const maxPricingRequestBody = 64 * 1024

// PricingHandlers exposes the public pricing quote endpoint.
type PricingHandlers struct {
	pricing services.PricingService
	limiter RateLimiter
}

// NewPricingHandlers constructs pricing handlers with an optional rate limiter.
func NewPricingHandlers(pricing services.PricingService, limiter RateLimiter) *PricingHandlers {
	return &PricingHandlers{
		pricing: pricing,
		limiter: limiter,
	}
}

// Routes registers pricing endpoints under the provided router.
func (h *PricingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quote", h.quote)
}

type pricingQuoteRequest struct {
	Lines        []pricingQuoteLine `json:"lines"`
	Jurisdiction string             `json:"jurisdiction"`
	CouponID     string             `json:"couponId"`
}

type pricingQuoteLine struct {
	ProductID uint64 `json:"productId"`
	Quantity  uint64 `json:"quantity"`
}

type pricingQuoteResponse struct {
	Total                   uint64              `json:"total"`
	TotalLessTax            uint64              `json:"totalLessTax"`
	CurrencyCode            string              `json:"currencyCode"`
	Display                 string              `json:"display"`
	Lines                   []pricingLineResult `json:"lines"`
	HasSubscriptionProducts bool                `json:"hasSubscriptionProducts"`
	ErrorCode               string              `json:"errorCode,omitempty"`
	ErrorMessage            string              `json:"errorMessage,omitempty"`
}

type pricingLineResult struct {
	ProductID     uint64 `json:"productId"`
	SKU           string `json:"sku,omitempty"`
	Name          string `json:"name,omitempty"`
	Quantity      uint64 `json:"quantity"`
	Amount        uint64 `json:"amount"`
	AmountLessTax uint64 `json:"amountLessTax"`
	CurrencyCode  string `json:"currencyCode,omitempty"`
	ErrorCode     string `json:"errorCode,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

func (h *PricingHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many pricing requests", http.StatusTooManyRequests))
		return
	}

	var req pricingQuoteRequest
	if err := decodeJSONBody(r, maxPricingRequestBody, &req); err != nil {
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

	pricing, err := h.pricing.GetPricing(ctx, lines, jurisdiction, strings.TrimSpace(req.CouponID))
	if err != nil {
		var publicErr *domain.PublicError
		if errors.As(err, &publicErr) {
			httpx.WriteError(ctx, w, httpx.NewError(publicErr.Code, publicErr.Message, http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("pricing_unavailable", "pricing unavailable", http.StatusServiceUnavailable))
		return
	}

	writeJSON(w, http.StatusOK, toPricingResponse(pricing))
}

func toPricingResponse(pricing domain.ProductQuantityPricing) pricingQuoteResponse {
	out := pricingQuoteResponse{
		Total:                   pricing.Total,
		TotalLessTax:            pricing.TotalLessTax,
		CurrencyCode:            pricing.CurrencyCode,
		Display:                 pricing.Display,
		Lines:                   make([]pricingLineResult, 0, len(pricing.Lines)),
		HasSubscriptionProducts: pricing.HasSubscriptionProducts,
		ErrorCode:               pricing.ErrorCode,
		ErrorMessage:            pricing.ErrorMessage,
	}
	for _, line := range pricing.Lines {
		out.Lines = append(out.Lines, pricingLineResult{
			ProductID:     line.ProductID,
			SKU:           line.SKU,
			Name:          line.Name,
			Quantity:      line.Quantity,
			Amount:        line.Cost.Amount,
			AmountLessTax: line.Cost.AmountLessTax,
			CurrencyCode:  line.Cost.CurrencyCode,
			ErrorCode:     line.Cost.ErrorCode,
			ErrorMessage:  line.Cost.ErrorMessage,
		})
	}
	return out
}
