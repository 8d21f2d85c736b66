package adapter

import (
	"context"
	"errors"
	"fmt"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
)

type CatalogMenuReader struct {
	svc *catalogapp.Service
}

func NewCatalogMenuReader(svc *catalogapp.Service) *CatalogMenuReader {
	return &CatalogMenuReader{svc: svc}
}

func (r *CatalogMenuReader) GetItem(ctx context.Context, id string) (domain.Item, error) {
	it, err := r.svc.GetItem(ctx, id)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return domain.Item{}, cartapp.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: %w", cartapp.ErrStoreUnavailable, err)
	}
	return domain.Item{ID: it.ID, Name: it.Name, Price: it.Price, Category: it.Category}, nil
}
