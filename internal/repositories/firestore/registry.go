package firestore

import (
	"context"
	"errors"
	"fmt"

	pfirestore "github.com/socialstack-core/storefront-api/internal/platform/firestore"
	"github.com/socialstack-core/storefront-api/internal/repositories"
)

// Registry wires every Firestore-backed repository over one shared provider.
type Registry struct {
	provider *pfirestore.Provider

	products        *ProductRepository
	priceTiers      *PriceTierRepository
	categories      *CategoryRepository
	attributeGroups *AttributeGroupRepository
	attributes      *AttributeRepository
	coupons         *CouponRepository
	taxRates        *TaxRateRepository
	counters        *CounterRepository
	health          repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs the full repository set on the shared Firestore provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	reg := &Registry{provider: provider}
	var err error
	if reg.products, err = NewProductRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.priceTiers, err = NewPriceTierRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.categories, err = NewCategoryRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.attributeGroups, err = NewAttributeGroupRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.attributes, err = NewAttributeRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.coupons, err = NewCouponRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.taxRates, err = NewTaxRateRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if reg.counters, err = NewCounterRepository(provider); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	reg.health, err = repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{
			Name: "firestore",
			Check: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return reg, nil
}

// Close releases the shared Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Products() repositories.ProductRepository               { return r.products }
func (r *Registry) PriceTiers() repositories.PriceTierRepository           { return r.priceTiers }
func (r *Registry) Categories() repositories.CategoryRepository            { return r.categories }
func (r *Registry) AttributeGroups() repositories.AttributeGroupRepository { return r.attributeGroups }
func (r *Registry) Attributes() repositories.AttributeRepository           { return r.attributes }
func (r *Registry) Coupons() repositories.CouponRepository                 { return r.coupons }
func (r *Registry) TaxRates() repositories.TaxRateRepository               { return r.taxRates }
func (r *Registry) Counters() repositories.CounterRepository               { return r.counters }
func (r *Registry) Health() repositories.HealthRepository                  { return r.health }
