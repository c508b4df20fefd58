package firestore

import (
	"context"
	"errors"
	"sort"
	"time"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
)

const priceTiersCollection = "priceTiers"

type tierDocument struct {
	MinimumQuantity int64            `firestore:"minimumQuantity"`
	Amounts         map[string]int64 `firestore:"amounts"`
}

type priceTierDocument struct {
	Tiers     []tierDocument `firestore:"tiers"`
	UpdatedAt time.Time      `firestore:"updatedAt"`
}

// PriceTierRepository persists each product's tier list as a single document keyed by
// the product id, so a pricing read is one fetch.
type PriceTierRepository struct {
	base *pfirestore.BaseRepository[priceTierDocument]
}

// NewPriceTierRepository constructs a Firestore-backed price tier repository.
func NewPriceTierRepository(provider *pfirestore.Provider) (*PriceTierRepository, error) {
	if provider == nil {
		return nil, errors.New("price tier repository requires firestore provider")
	}
	return &PriceTierRepository{
		base: pfirestore.NewBaseRepository[priceTierDocument](provider, priceTiersCollection, nil, nil),
	}, nil
}

// ListByProduct returns the product's tiers ordered by ascending minimum quantity. A
// product with no tier document has no configured price and returns an empty list.
func (r *PriceTierRepository) ListByProduct(ctx context.Context, productID uint64) ([]domain.PriceTier, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("price tier repository not initialised")
	}
	doc, err := r.base.Get(ctx, productDocID(productID))
	if err != nil {
		var repoErr *pfirestore.Error
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}

	tiers := make([]domain.PriceTier, 0, len(doc.Data.Tiers))
	for _, tier := range doc.Data.Tiers {
		amounts := make(map[string]uint64, len(tier.Amounts))
		for currency, amount := range tier.Amounts {
			if amount >= 0 {
				amounts[currency] = uint64(amount)
			}
		}
		tiers = append(tiers, domain.PriceTier{
			MinimumQuantity: uint64(tier.MinimumQuantity),
			Amounts:         amounts,
		})
	}
	sort.Slice(tiers, func(a, b int) bool {
		return tiers[a].MinimumQuantity < tiers[b].MinimumQuantity
	})
	return tiers, nil
}

// Replace swaps the product's full tier list. A nil list removes the document.
func (r *PriceTierRepository) Replace(ctx context.Context, productID uint64, tiers []domain.PriceTier) error {
	if r == nil || r.base == nil {
		return errors.New("price tier repository not initialised")
	}

	if len(tiers) == 0 {
		ref, err := r.base.DocumentRef(ctx, productDocID(productID))
		if err != nil {
			return err
		}
		if _, err := ref.Delete(ctx); err != nil {
			return pfirestore.WrapError("priceTiers.delete", err)
		}
		return nil
	}

	doc := priceTierDocument{
		Tiers:     make([]tierDocument, 0, len(tiers)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, tier := range tiers {
		amounts := make(map[string]int64, len(tier.Amounts))
		for currency, amount := range tier.Amounts {
			amounts[currency] = int64(amount)
		}
		doc.Tiers = append(doc.Tiers, tierDocument{
			MinimumQuantity: int64(tier.MinimumQuantity),
			Amounts:         amounts,
		})
	}

	if _, err := r.base.Set(ctx, productDocID(productID), doc); err != nil {
		return err
	}
	return nil
}
