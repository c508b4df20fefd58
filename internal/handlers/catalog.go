package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	"github.com/socialstack-core/storefront-api/internal/platform/httpx"
	"github.com/socialstack-core/storefront-api/internal/platform/pagination"
	"github.com/socialstack-core/storefront-api/internal/services"
)

// CatalogHandlers exposes the public, read-only catalog surface.
type CatalogHandlers struct {
	catalog    services.CatalogService
	categories services.CategoryService
	groups     services.AttributeGroupService
}

// NewCatalogHandlers constructs the public catalog handlers.
func NewCatalogHandlers(catalog services.CatalogService, categories services.CategoryService, groups services.AttributeGroupService) *CatalogHandlers {
	return &CatalogHandlers{
		catalog:    catalog,
		categories: categories,
		groups:     groups,
	}
}

// Routes registers the public catalog endpoints under the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/products/slug/{slug}", h.getProductBySlug)
	r.Get("/products/{productID}/tiers", h.listTiers)
	r.Get("/categories/tree", h.categoryTree)
	r.Get("/attribute-groups/tree", h.attributeGroupTree)
}

type productResponse struct {
	ID               uint64   `json:"id"`
	SKU              string   `json:"sku"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description,omitempty"`
	Strategy         string   `json:"strategy"`
	BillingFrequency int      `json:"billingFrequency"`
	CategoryIDs      []uint64 `json:"categoryIds,omitempty"`
	IsPublic         bool     `json:"isPublic"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

type priceTierResponse struct {
	MinimumQuantity uint64            `json:"minimumQuantity"`
	Amounts         map[string]uint64 `json:"amounts"`
}

type categoryNodeResponse struct {
	ID           uint64                 `json:"id"`
	Name         string                 `json:"name"`
	Slug         string                 `json:"slug"`
	Description  string                 `json:"description,omitempty"`
	FullPathSlug string                 `json:"fullPathSlug"`
	Children     []categoryNodeResponse `json:"children,omitempty"`
	Products     []productResponse      `json:"products,omitempty"`
}

type attributeGroupNodeResponse struct {
	ID         uint64                       `json:"id"`
	Key        string                       `json:"key"`
	Name       string                       `json:"name"`
	Children   []attributeGroupNodeResponse `json:"children,omitempty"`
	Attributes []attributeResponse          `json:"attributes,omitempty"`
}

type attributeResponse struct {
	ID   uint64 `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.FromRequest(r, pagination.Options{})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	filter := services.ProductFilter{
		OnlyPublic: true,
		Pagination: domain.Pagination{
			PageSize:  params.PageSize,
			PageToken: params.PageToken,
		},
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("categoryId")); raw != "" {
		id, err := parseUint(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "categoryId must be a positive integer", http.StatusBadRequest))
			return
		}
		filter.CategoryID = &id
	}

	page, err := h.catalog.ListProducts(ctx, filter)
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

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
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
	if !product.IsPublic {
		writeCatalogError(ctx, w, services.ErrProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *CatalogHandlers) getProductBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "slug is required", http.StatusBadRequest))
		return
	}
	product, err := h.catalog.GetProductBySlug(ctx, slug)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	if !product.IsPublic {
		writeCatalogError(ctx, w, services.ErrProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *CatalogHandlers) listTiers(w http.ResponseWriter, r *http.Request) {
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

func (h *CatalogHandlers) categoryTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	includeProducts := queryFlag(r, "includeProducts")

	tree, err := h.categories.GetTree(ctx, includeProducts)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("tree_unavailable", "category tree unavailable", http.StatusInternalServerError))
		return
	}

	roots := make([]categoryNodeResponse, 0, len(tree.Roots()))
	for _, index := range tree.Roots() {
		roots = append(roots, renderCategoryNode(tree, index))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"roots":   roots,
		"builtAt": tree.BuiltAt().UTC().Format(time.RFC3339),
	})
}

func (h *CatalogHandlers) attributeGroupTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	includeAttributes := queryFlag(r, "includeAttributes")

	tree, err := h.groups.GetTree(ctx, includeAttributes)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("tree_unavailable", "attribute group tree unavailable", http.StatusInternalServerError))
		return
	}

	roots := make([]attributeGroupNodeResponse, 0, len(tree.Roots()))
	for _, index := range tree.Roots() {
		roots = append(roots, renderAttributeGroupNode(tree, index))
	}
	writeJSON(w, http.StatusOK, map[string]any{"roots": roots})
}

func renderCategoryNode(tree *services.CategoryTree, index int) categoryNodeResponse {
	node := tree.Node(index)
	out := categoryNodeResponse{
		ID:           node.Category.ID,
		Name:         node.Category.Name,
		Slug:         node.Category.Slug,
		Description:  node.Category.Description,
		FullPathSlug: node.FullPathSlug,
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, renderCategoryNode(tree, child))
	}
	for _, product := range node.Products {
		out.Products = append(out.Products, toProductResponse(product))
	}
	return out
}

func renderAttributeGroupNode(tree *services.AttributeGroupTree, index int) attributeGroupNodeResponse {
	node := tree.Node(index)
	out := attributeGroupNodeResponse{
		ID:   node.Group.ID,
		Key:  node.Group.Key,
		Name: node.Group.Name,
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, renderAttributeGroupNode(tree, child))
	}
	for _, attribute := range node.Attributes {
		out.Attributes = append(out.Attributes, attributeResponse{
			ID:   attribute.ID,
			Key:  attribute.Key,
			Name: attribute.Name,
			Unit: attribute.Unit,
		})
	}
	return out
}

func toProductResponse(product domain.Product) productResponse {
	out := productResponse{
		ID:               product.ID,
		SKU:              product.SKU,
		Name:             product.Name,
		Slug:             product.Slug,
		Description:      product.Description,
		Strategy:         product.Strategy.String(),
		BillingFrequency: int(product.BillingFrequency),
		CategoryIDs:      product.CategoryIDs,
		IsPublic:         product.IsPublic,
	}
	if !product.UpdatedAt.IsZero() {
		out.UpdatedAt = product.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductValidation), errors.Is(err, services.ErrTierValidation):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog unavailable", http.StatusServiceUnavailable))
	}
}
