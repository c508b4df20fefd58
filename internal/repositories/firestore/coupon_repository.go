package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

const couponsCollection = "coupons"

type couponDocument struct {
	Code            string     `firestore:"code"`
	Description     string     `firestore:"description,omitempty"`
	Disabled        bool       `firestore:"disabled"`
	ExpiryDate      *time.Time `firestore:"expiryDate,omitempty"`
	MinimumSpend    int64      `firestore:"minimumSpend"`
	DiscountPercent int64      `firestore:"discountPercent"`
	DiscountAmount  int64      `firestore:"discountAmount"`
	CreatedAt       time.Time  `firestore:"createdAt"`
	UpdatedAt       time.Time  `firestore:"updatedAt"`
}

// CouponRepository persists discount coupons within Firestore.
type CouponRepository struct {
	base *pfirestore.BaseRepository[couponDocument]
}

// NewCouponRepository constructs a Firestore-backed coupon repository.
func NewCouponRepository(provider *pfirestore.Provider) (*CouponRepository, error) {
	if provider == nil {
		return nil, errors.New("coupon repository requires firestore provider")
	}
	return &CouponRepository{
		base: pfirestore.NewBaseRepository[couponDocument](provider, couponsCollection, nil, nil),
	}, nil
}

// Get retrieves a coupon by its identifier.
func (r *CouponRepository) Get(ctx context.Context, id string) (domain.Coupon, error) {
	if r == nil || r.base == nil {
		return domain.Coupon{}, errors.New("coupon repository not initialised")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Coupon{}, errors.New("coupon repository: id is required")
	}
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Coupon{}, err
	}
	return couponFromDocument(doc.ID, doc.Data), nil
}

// GetByCode retrieves a coupon by its redemption code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (domain.Coupon, error) {
	if r == nil || r.base == nil {
		return domain.Coupon{}, errors.New("coupon repository not initialised")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Coupon{}, errors.New("coupon repository: code is required")
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("code", "==", code).Limit(1)
	})
	if err != nil {
		return domain.Coupon{}, err
	}
	if len(docs) == 0 {
		return domain.Coupon{}, pfirestore.WrapError("coupons.getByCode", errNotFound)
	}
	return couponFromDocument(docs[0].ID, docs[0].Data), nil
}

// List returns a coupon page ordered by document id.
func (r *CouponRepository) List(ctx context.Context, filter repositories.CouponFilter) (domain.CursorPage[domain.Coupon], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Coupon]{}, errors.New("coupon repository not initialised")
	}

	limit := filter.Pagination.PageSize
	if limit <= 0 {
		limit = 50
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if !filter.IncludeDisabled {
			query = query.Where("disabled", "==", false)
		}
		query = query.OrderBy(firestore.DocumentID, firestore.Asc)
		if cursor := strings.TrimSpace(filter.Pagination.PageToken); cursor != "" {
			query = query.StartAfter(cursor)
		}
		return query.Limit(limit + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Coupon]{}, err
	}

	page := domain.CursorPage[domain.Coupon]{}
	for i, doc := range docs {
		if i == limit {
			page.NextPageToken = docs[limit-1].ID
			break
		}
		page.Items = append(page.Items, couponFromDocument(doc.ID, doc.Data))
	}
	return page, nil
}

// Upsert writes the coupon document keyed by its identifier.
func (r *CouponRepository) Upsert(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	if r == nil || r.base == nil {
		return domain.Coupon{}, errors.New("coupon repository not initialised")
	}
	if strings.TrimSpace(coupon.ID) == "" {
		return domain.Coupon{}, errors.New("coupon repository: id is required")
	}
	doc := couponDocument{
		Code:            coupon.Code,
		Description:     coupon.Description,
		Disabled:        coupon.Disabled,
		MinimumSpend:    int64(coupon.MinimumSpend),
		DiscountPercent: int64(coupon.DiscountPercent),
		DiscountAmount:  int64(coupon.DiscountAmount),
		CreatedAt:       coupon.CreatedAt.UTC(),
		UpdatedAt:       coupon.UpdatedAt.UTC(),
	}
	if coupon.ExpiryDateUTC != nil {
		expiry := coupon.ExpiryDateUTC.UTC()
		doc.ExpiryDate = &expiry
	}
	if _, err := r.base.Set(ctx, coupon.ID, doc); err != nil {
		return domain.Coupon{}, err
	}
	return coupon, nil
}

// Delete removes the coupon document.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.base == nil {
		return errors.New("coupon repository not initialised")
	}
	ref, err := r.base.DocumentRef(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("coupons.delete", err)
	}
	return nil
}

func couponFromDocument(docID string, doc couponDocument) domain.Coupon {
	coupon := domain.Coupon{
		ID:          docID,
		Code:        doc.Code,
		Description: doc.Description,
		Disabled:    doc.Disabled,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.MinimumSpend > 0 {
		coupon.MinimumSpend = uint64(doc.MinimumSpend)
	}
	if doc.DiscountPercent > 0 {
		coupon.DiscountPercent = uint64(doc.DiscountPercent)
	}
	if doc.DiscountAmount > 0 {
		coupon.DiscountAmount = uint64(doc.DiscountAmount)
	}
	if doc.ExpiryDate != nil {
		expiry := doc.ExpiryDate.UTC()
		coupon.ExpiryDateUTC = &expiry
	}
	return coupon
}
