package adapter

import (
	"context"
	"errors"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetItem(ctx context.Context, itemID string) (checkoutapp.Item, error) {
	it, err := r.svc.GetItem(ctx, itemID)
	if errors.Is(err, catalogapp.ErrNotFound) {
		return checkoutapp.Item{}, checkoutapp.ErrItemNotFound
	}
	if err != nil {
		return checkoutapp.Item{}, err
	}

	return checkoutapp.Item{
		ID:       it.ID,
		Name:     it.Name,
		Category: it.Category,
		Price:    it.Price,
	}, nil
}
