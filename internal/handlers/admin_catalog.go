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
	"github.com/socialstack-core/storefront-api/internal/platform/pagination"
	"github.com/socialstack-core/storefront-api/internal/services"
)

const maxAdminRequestBody = 256 * 1024

// AdminCatalogHandlers exposes the staff-facing catalog management surface.
type AdminCatalogHandlers struct {
	authn      *auth.Authenticator
	catalog    services.CatalogService
	categories services.CategoryService
	groups     services.AttributeGroupService
	coupons    services.CouponService
	system     services.SystemService
}

// AdminCatalogHandlersConfig bundles constructor inputs for the admin handlers.
type AdminCatalogHandlersConfig struct {
	Authenticator *auth.Authenticator
	Catalog       services.CatalogService
	Categories    services.CategoryService
	Groups        services.AttributeGroupService
	Coupons       services.CouponService
	System        services.SystemService
}

// NewAdminCatalogHandlers constructs the admin catalog handlers.
func NewAdminCatalogHandlers(cfg AdminCatalogHandlersConfig) *AdminCatalogHandlers {
	return &AdminCatalogHandlers{
		authn:      cfg.Authenticator,
		catalog:    cfg.Catalog,
		categories: cfg.Categories,
		groups:     cfg.Groups,
		coupons:    cfg.Coupons,
		system:     cfg.System,
	}
}

// Routes registers admin endpoints under the provided router. Every route requires a
// staff or admin role.
func (h *AdminCatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}

	group.Get("/products", h.listProducts)
	group.Post("/products", h.createProduct)
	group.Get("/products/{productID}", h.getProduct)
	group.Put("/products/{productID}", h.updateProduct)
	group.Delete("/products/{productID}", h.deleteProduct)
	group.Get("/products/{productID}/tiers", h.listTiers)
	group.Put("/products/{productID}/tiers", h.replaceTiers)

	group.Post("/categories", h.createCategory)
	group.Get("/categories/{categoryID}", h.getCategory)
	group.Put("/categories/{categoryID}", h.updateCategory)
	group.Delete("/categories/{categoryID}", h.deleteCategory)
	group.Post("/categories/{categoryID}/parent", h.setCategoryParent)

	group.Post("/attribute-groups", h.createGroup)
	group.Put("/attribute-groups/{groupID}", h.updateGroup)
	group.Delete("/attribute-groups/{groupID}", h.deleteGroup)
	group.Post("/attribute-groups/{groupID}/parent", h.setGroupParent)

	group.Get("/coupons", h.listCoupons)
	group.Post("/coupons", h.createCoupon)
	group.Get("/coupons/{couponID}", h.getCoupon)
	group.Put("/coupons/{couponID}", h.updateCoupon)
	group.Delete("/coupons/{couponID}", h.deleteCoupon)

	group.Get("/system/health", h.systemHealth)
}

type productRequest struct {
	SKU              string   `json:"sku"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	Strategy         uint8    `json:"strategy"`
	BillingFrequency int      `json:"billingFrequency"`
	CategoryIDs      []uint64 `json:"categoryIds"`
	IsPublic         bool     `json:"isPublic"`
}

type categoryRequest struct {
	ParentID    uint64 `json:"parentId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type attributeGroupRequest struct {
	ParentID uint64 `json:"parentId"`
	Key      string `json:"key"`
	Name     string `json:"name"`
}

type setParentRequest struct {
	ParentID uint64 `json:"parentId"`
}

type couponRequest struct {
	Code            string `json:"code"`
	Description     string `json:"description"`
	Disabled        bool   `json:"disabled"`
	ExpiryDate      string `json:"expiryDate"`
	MinimumSpend    uint64 `json:"minimumSpend"`
	DiscountPercent uint64 `json:"discountPercent"`
	DiscountAmount  uint64 `json:"discountAmount"`
}

type categoryResponse struct {
	ID          uint64 `json:"id"`
	ParentID    uint64 `json:"parentId,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type attributeGroupResponse struct {
	ID       uint64 `json:"id"`
	ParentID uint64 `json:"parentId,omitempty"`
	Key      string `json:"key"`
	Name     string `json:"name"`
}

type couponResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Description     string `json:"description,omitempty"`
	Disabled        bool   `json:"disabled"`
	ExpiryDate      string `json:"expiryDate,omitempty"`
	MinimumSpend    uint64 `json:"minimumSpend"`
	DiscountPercent uint64 `json:"discountPercent"`
	DiscountAmount  uint64 `json:"discountAmount"`
}

func (h *AdminCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, pagination.Options{})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.catalog.ListProducts(ctx, services.ProductFilter{
		Pagination: domain.Pagination{
			PageSize:  params.PageSize,
			PageToken: params.PageToken,
		},
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]productResponse, 0, len(page.Items))
	for _, product := range page.Items {
		items = append(items, toProductResponse(product))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":         items,
		"nextPageToken": page.NextPageToken,
	})
}

func (h *AdminCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "productID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productID must be a positive integer", http.StatusBadRequest))
		return
	}
	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *AdminCatalogHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req productRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	created, err := h.catalog.CreateProduct(ctx, services.UpsertProductCommand{
		Product: productFromRequest(req, 0),
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *AdminCatalogHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "productID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productID must be a positive integer", http.StatusBadRequest))
		return
	}
	var req productRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	updated, err := h.catalog.UpdateProduct(ctx, services.UpsertProductCommand{
		Product: productFromRequest(req, id),
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *AdminCatalogHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "productID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productID must be a positive integer", http.StatusBadRequest))
		return
	}
	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminCatalogHandlers) listTiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "productID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productID must be a positive integer", http.StatusBadRequest))
		return
	}
	tiers, err := h.catalog.ListTiers(ctx, id)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	items := make([]priceTierResponse, 0, len(tiers))
	for _, tier := range tiers {
		items = append(items, priceTierResponse{
			MinimumQuantity: tier.MinimumQuantity,
			Amounts:         tier.Amounts,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *AdminCatalogHandlers) replaceTiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "productID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productID must be a positive integer", http.StatusBadRequest))
		return
	}
	var req struct {
		Tiers []priceTierResponse `json:"tiers"`
	}
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	tiers := make([]domain.PriceTier, 0, len(req.Tiers))
	for _, tier := range req.Tiers {
		tiers = append(tiers, domain.PriceTier{
			MinimumQuantity: tier.MinimumQuantity,
			Amounts:         tier.Amounts,
		})
	}
	if err := h.catalog.ReplaceTiers(ctx, id, tiers); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminCatalogHandlers) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "categoryID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "categoryID must be a positive integer", http.StatusBadRequest))
		return
	}
	category, err := h.categories.GetCategory(ctx, id)
	if err != nil {
		writeCategoryError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *AdminCatalogHandlers) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req categoryRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	created, err := h.categories.CreateCategory(ctx, services.UpsertCategoryCommand{
		Category: domain.Category{
			ParentID:    req.ParentID,
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		},
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeCategoryError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (h *AdminCatalogHandlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "categoryID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "categoryID must be a positive integer", http.StatusBadRequest))
		return
	}
	var req categoryRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	updated, err := h.categories.UpdateCategory(ctx, services.UpsertCategoryCommand{
		Category: domain.Category{
			ID:          id,
			ParentID:    req.ParentID,
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		},
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeCategoryError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (h *AdminCatalogHandlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "categoryID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "categoryID must be a positive integer", http.StatusBadRequest))
		return
	}
	if err := h.categories.DeleteCategory(ctx, id); err != nil {
		writeCategoryError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminCatalogHandlers) setCategoryParent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "categoryID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "categoryID must be a positive integer", http.StatusBadRequest))
		return
	}
	var req setParentRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	updated, err := h.categories.SetParent(ctx, id, req.ParentID)
	if err != nil {
		writeCategoryError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (h *AdminCatalogHandlers) createGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req attributeGroupRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	created, err := h.groups.CreateGroup(ctx, services.UpsertAttributeGroupCommand{
		Group: domain.AttributeGroup{
			ParentID: req.ParentID,
			Key:      req.Key,
			Name:     req.Name,
		},
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeAttributeGroupError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttributeGroupResponse(created))
}

func (h *AdminCatalogHandlers) updateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "groupID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "groupID must be a positive integer", http.StatusBadRequest))
		return
	}
	var req attributeGroupRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	updated, err := h.groups.UpdateGroup(ctx, services.UpsertAttributeGroupCommand{
		Group: domain.AttributeGroup{
			ID:       id,
			ParentID: req.ParentID,
			Key:      req.Key,
			Name:     req.Name,
		},
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeAttributeGroupError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttributeGroupResponse(updated))
}

func (h *AdminCatalogHandlers) deleteGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "groupID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "groupID must be a positive integer", http.StatusBadRequest))
		return
	}
	if err := h.groups.DeleteGroup(ctx, id); err != nil {
		writeAttributeGroupError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminCatalogHandlers) setGroupParent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "groupID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "groupID must be a positive integer", http.StatusBadRequest))
		return
	}
	var req setParentRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	updated, err := h.groups.SetParent(ctx, id, req.ParentID)
	if err != nil {
		writeAttributeGroupError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttributeGroupResponse(updated))
}

func (h *AdminCatalogHandlers) listCoupons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, pagination.Options{})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	page, err := h.coupons.ListCoupons(ctx, services.CouponFilter{
		IncludeDisabled: queryFlag(r, "includeDisabled"),
		Pagination: domain.Pagination{
			PageSize:  params.PageSize,
			PageToken: params.PageToken,
		},
	})
	if err != nil {
		writeCouponError(ctx, w, err)
		return
	}

	items := make([]couponResponse, 0, len(page.Items))
	for _, coupon := range page.Items {
		items = append(items, toCouponResponse(coupon))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":         items,
		"nextPageToken": page.NextPageToken,
	})
}

func (h *AdminCatalogHandlers) getCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "couponID"))
	coupon, err := h.coupons.GetCoupon(ctx, id)
	if err != nil {
		writeCouponError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(coupon))
}

func (h *AdminCatalogHandlers) createCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req couponRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	coupon, err := couponFromRequest(req, "")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	created, err := h.coupons.CreateCoupon(ctx, services.UpsertCouponCommand{
		Coupon:  coupon,
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeCouponError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponResponse(created))
}

func (h *AdminCatalogHandlers) updateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "couponID"))
	var req couponRequest
	if !h.decodeAdminBody(ctx, w, r, &req) {
		return
	}
	coupon, err := couponFromRequest(req, id)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	updated, err := h.coupons.UpdateCoupon(ctx, services.UpsertCouponCommand{
		Coupon:  coupon,
		ActorID: actorID(ctx),
	})
	if err != nil {
		writeCouponError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(updated))
}

func (h *AdminCatalogHandlers) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "couponID"))
	if err := h.coupons.DeleteCoupon(ctx, id); err != nil {
		writeCouponError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminCatalogHandlers) systemHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("not_implemented", "system health not configured", http.StatusNotImplemented))
		return
	}
	report, err := h.system.Report(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("health_unavailable", "health report unavailable", http.StatusServiceUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminCatalogHandlers) decodeAdminBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSONBody(r, maxAdminRequestBody, dst); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return false
	}
	return true
}

func actorID(ctx context.Context) string {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil {
		return ""
	}
	return identity.UID
}

func productFromRequest(req productRequest, id uint64) domain.Product {
	return domain.Product{
		ID:               id,
		SKU:              strings.TrimSpace(req.SKU),
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		Strategy:         domain.PriceStrategy(req.Strategy),
		BillingFrequency: domain.BillingFrequency(req.BillingFrequency),
		CategoryIDs:      req.CategoryIDs,
		IsPublic:         req.IsPublic,
	}
}

func couponFromRequest(req couponRequest, id string) (domain.Coupon, error) {
	coupon := domain.Coupon{
		ID:              id,
		Code:            req.Code,
		Description:     req.Description,
		Disabled:        req.Disabled,
		MinimumSpend:    req.MinimumSpend,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
	}
	if raw := strings.TrimSpace(req.ExpiryDate); raw != "" {
		expiry, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Coupon{}, errors.New("expiryDate must be RFC 3339")
		}
		utc := expiry.UTC()
		coupon.ExpiryDateUTC = &utc
	}
	return coupon, nil
}

func toCategoryResponse(category domain.Category) categoryResponse {
	return categoryResponse{
		ID:          category.ID,
		ParentID:    category.ParentID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}

func toAttributeGroupResponse(group domain.AttributeGroup) attributeGroupResponse {
	return attributeGroupResponse{
		ID:       group.ID,
		ParentID: group.ParentID,
		Key:      group.Key,
		Name:     group.Name,
	}
}

func toCouponResponse(coupon domain.Coupon) couponResponse {
	out := couponResponse{
		ID:              coupon.ID,
		Code:            coupon.Code,
		Description:     coupon.Description,
		Disabled:        coupon.Disabled,
		MinimumSpend:    coupon.MinimumSpend,
		DiscountPercent: coupon.DiscountPercent,
		DiscountAmount:  coupon.DiscountAmount,
	}
	if coupon.ExpiryDateUTC != nil {
		out.ExpiryDate = coupon.ExpiryDateUTC.UTC().Format(time.RFC3339)
	}
	return out
}

func writeCategoryError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("category_not_found", "category not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCategoryCircularReference):
		httpx.WriteError(ctx, w, httpx.NewError("circular_reference", "move would create a cycle", http.StatusConflict))
	case errors.Is(err, services.ErrCategoryValidation):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog unavailable", http.StatusServiceUnavailable))
	}
}

func writeAttributeGroupError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAttributeGroupNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("attribute_group_not_found", "attribute group not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAttributeGroupCircularReference):
		httpx.WriteError(ctx, w, httpx.NewError("circular_reference", "move would create a cycle", http.StatusConflict))
	case errors.Is(err, services.ErrAttributeGroupValidation):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog unavailable", http.StatusServiceUnavailable))
	}
}

func writeCouponError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCouponNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_found", "coupon not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCouponValidation):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog unavailable", http.StatusServiceUnavailable))
	}
}
