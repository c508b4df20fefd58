package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/socialstack-core/storefront-api/internal/domain"
	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
)

const taxRatesCollection = "taxRates"

type taxRateDocument struct {
	BasisPoints int64     `firestore:"basisPoints"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// TaxRateRepository persists jurisdiction tax rates keyed by jurisdiction code.
type TaxRateRepository struct {
	base *pfirestore.BaseRepository[taxRateDocument]
}

// NewTaxRateRepository constructs a Firestore-backed tax rate repository.
func NewTaxRateRepository(provider *pfirestore.Provider) (*TaxRateRepository, error) {
	if provider == nil {
		return nil, errors.New("tax rate repository requires firestore provider")
	}
	return &TaxRateRepository{
		base: pfirestore.NewBaseRepository[taxRateDocument](provider, taxRatesCollection, nil, nil),
	}, nil
}

// Get retrieves the rate for one jurisdiction.
func (r *TaxRateRepository) Get(ctx context.Context, jurisdiction string) (domain.TaxRate, error) {
	if r == nil || r.base == nil {
		return domain.TaxRate{}, errors.New("tax rate repository not initialised")
	}
	jurisdiction = strings.ToUpper(strings.TrimSpace(jurisdiction))
	if jurisdiction == "" {
		return domain.TaxRate{}, errors.New("tax rate repository: jurisdiction is required")
	}
	doc, err := r.base.Get(ctx, jurisdiction)
	if err != nil {
		return domain.TaxRate{}, err
	}
	return taxRateFromDocument(doc.ID, doc.Data), nil
}

// ListAll returns every configured rate.
func (r *TaxRateRepository) ListAll(ctx context.Context) ([]domain.TaxRate, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("tax rate repository not initialised")
	}
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TaxRate, 0, len(docs))
	for _, doc := range docs {
		out = append(out, taxRateFromDocument(doc.ID, doc.Data))
	}
	return out, nil
}

// Upsert writes the rate for one jurisdiction.
func (r *TaxRateRepository) Upsert(ctx context.Context, rate domain.TaxRate) (domain.TaxRate, error) {
	if r == nil || r.base == nil {
		return domain.TaxRate{}, errors.New("tax rate repository not initialised")
	}
	jurisdiction := strings.ToUpper(strings.TrimSpace(rate.Jurisdiction))
	if jurisdiction == "" {
		return domain.TaxRate{}, errors.New("tax rate repository: jurisdiction is required")
	}
	doc := taxRateDocument{
		BasisPoints: int64(rate.BasisPoints),
		UpdatedAt:   time.Now().UTC(),
	}
	if _, err := r.base.Set(ctx, jurisdiction, doc); err != nil {
		return domain.TaxRate{}, err
	}
	rate.Jurisdiction = jurisdiction
	return rate, nil
}

func taxRateFromDocument(docID string, doc taxRateDocument) domain.TaxRate {
	rate := domain.TaxRate{Jurisdiction: docID}
	if doc.BasisPoints > 0 {
		rate.BasisPoints = uint64(doc.BasisPoints)
	}
	return rate
}
