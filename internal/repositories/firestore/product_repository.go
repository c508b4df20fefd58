package firestore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

const productsCollection = "products"

type productDocument struct {
	SKU              string    `firestore:"sku"`
	Name             string    `firestore:"name"`
	Slug             string    `firestore:"slug"`
	Description      string    `firestore:"description,omitempty"`
	Strategy         int64     `firestore:"strategy"`
	BillingFrequency int64     `firestore:"billingFrequency"`
	CategoryIDs      []int64   `firestore:"categoryIds,omitempty"`
	IsPublic         bool      `firestore:"isPublic"`
	CreatedAt        time.Time `firestore:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt"`
}

// ProductRepository persists catalog products within Firestore.
type ProductRepository struct {
	base     *pfirestore.BaseRepository[productDocument]
	provider *pfirestore.Provider
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base:     pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil),
		provider: provider,
	}, nil
}

// Get retrieves a product by its numeric id.
func (r *ProductRepository) Get(ctx context.Context, id uint64) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	doc, err := r.base.Get(ctx, productDocID(id))
	if err != nil {
		return domain.Product{}, err
	}
	return productFromDocument(doc.ID, doc.Data), nil
}

// GetBySlug retrieves a product by its unique slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Product{}, errors.New("product repository: slug is required")
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("slug", "==", slug).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.WrapError("products.getBySlug", errNotFound)
	}
	return productFromDocument(docs[0].ID, docs[0].Data), nil
}

// List returns a filtered product page ordered by document id.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductFilter) (domain.CursorPage[domain.Product], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Product]{}, errors.New("product repository not initialised")
	}

	limit := filter.Pagination.PageSize
	if limit <= 0 {
		limit = 50
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if filter.CategoryID != nil {
			query = query.Where("categoryIds", "array-contains", int64(*filter.CategoryID))
		}
		if filter.OnlyPublic {
			query = query.Where("isPublic", "==", true)
		}
		query = query.OrderBy(firestore.DocumentID, firestore.Asc)
		if cursor := strings.TrimSpace(filter.Pagination.PageToken); cursor != "" {
			query = query.StartAfter(cursor)
		}
		return query.Limit(limit + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	page := domain.CursorPage[domain.Product]{}
	for i, doc := range docs {
		if i == limit {
			page.NextPageToken = docs[limit-1].ID
			break
		}
		page.Items = append(page.Items, productFromDocument(doc.ID, doc.Data))
	}
	return page, nil
}

// ListAll returns every product row.
func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, productFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// Upsert writes the product document keyed by its numeric id.
func (r *ProductRepository) Upsert(ctx context.Context, product domain.Product) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	if product.ID == 0 {
		return domain.Product{}, errors.New("product repository: id is required")
	}
	if _, err := r.base.Set(ctx, productDocID(product.ID), productToDocument(product)); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// Delete removes the product document.
func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	ref, err := r.base.DocumentRef(ctx, productDocID(id))
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("products.delete", err)
	}
	return nil
}

func productDocID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func productToDocument(product domain.Product) productDocument {
	categoryIDs := make([]int64, 0, len(product.CategoryIDs))
	for _, id := range product.CategoryIDs {
		categoryIDs = append(categoryIDs, int64(id))
	}
	return productDocument{
		SKU:              product.SKU,
		Name:             product.Name,
		Slug:             product.Slug,
		Description:      product.Description,
		Strategy:         int64(product.Strategy),
		BillingFrequency: int64(product.BillingFrequency),
		CategoryIDs:      categoryIDs,
		IsPublic:         product.IsPublic,
		CreatedAt:        product.CreatedAt.UTC(),
		UpdatedAt:        product.UpdatedAt.UTC(),
	}
}

func productFromDocument(docID string, doc productDocument) domain.Product {
	id, _ := strconv.ParseUint(docID, 10, 64)
	categoryIDs := make([]uint64, 0, len(doc.CategoryIDs))
	for _, categoryID := range doc.CategoryIDs {
		if categoryID > 0 {
			categoryIDs = append(categoryIDs, uint64(categoryID))
		}
	}
	return domain.Product{
		ID:               id,
		SKU:              doc.SKU,
		Name:             doc.Name,
		Slug:             doc.Slug,
		Description:      doc.Description,
		Strategy:         domain.PriceStrategy(doc.Strategy),
		BillingFrequency: domain.BillingFrequency(doc.BillingFrequency),
		CategoryIDs:      categoryIDs,
		IsPublic:         doc.IsPublic,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}
