package firestore

import (
	"context"
	"errors"
	"strconv"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
)

const categoriesCollection = "categories"

type categoryDocument struct {
	ParentID    int64  `firestore:"parentId"`
	Name        string `firestore:"name"`
	Slug        string `firestore:"slug"`
	Description string `firestore:"description,omitempty"`
}

// CategoryRepository persists the flat category rows within Firestore.
type CategoryRepository struct {
	base *pfirestore.BaseRepository[categoryDocument]
}

// NewCategoryRepository constructs a Firestore-backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository requires firestore provider")
	}
	return &CategoryRepository{
		base: pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection, nil, nil),
	}, nil
}

// Get retrieves a category row by its numeric id.
func (r *CategoryRepository) Get(ctx context.Context, id uint64) (domain.Category, error) {
	if r == nil || r.base == nil {
		return domain.Category{}, errors.New("category repository not initialised")
	}
	doc, err := r.base.Get(ctx, strconv.FormatUint(id, 10))
	if err != nil {
		return domain.Category{}, err
	}
	return categoryFromDocument(doc.ID, doc.Data), nil
}

// ListAll returns every category row.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("category repository not initialised")
	}
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		out = append(out, categoryFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// Upsert writes the category row keyed by its numeric id.
func (r *CategoryRepository) Upsert(ctx context.Context, category domain.Category) (domain.Category, error) {
	if r == nil || r.base == nil {
		return domain.Category{}, errors.New("category repository not initialised")
	}
	if category.ID == 0 {
		return domain.Category{}, errors.New("category repository: id is required")
	}
	doc := categoryDocument{
		ParentID:    int64(category.ParentID),
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
	if _, err := r.base.Set(ctx, strconv.FormatUint(category.ID, 10), doc); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// Delete removes the category row.
func (r *CategoryRepository) Delete(ctx context.Context, id uint64) error {
	if r == nil || r.base == nil {
		return errors.New("category repository not initialised")
	}
	ref, err := r.base.DocumentRef(ctx, strconv.FormatUint(id, 10))
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("categories.delete", err)
	}
	return nil
}

func categoryFromDocument(docID string, doc categoryDocument) domain.Category {
	id, _ := strconv.ParseUint(docID, 10, 64)
	var parentID uint64
	if doc.ParentID > 0 {
		parentID = uint64(doc.ParentID)
	}
	return domain.Category{
		ID:          id,
		ParentID:    parentID,
		Name:        doc.Name,
		Slug:        doc.Slug,
		Description: doc.Description,
	}
}
