package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, userID string) ([]checkoutapp.CartLine, error) {
	cart, err := r.svc.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]checkoutapp.CartLine, 0, len(cart.Lines()))
	for _, l := range cart.Lines() {
		lines = append(lines, checkoutapp.CartLine{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Category: l.Category,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
	}
	return lines, nil
}

func (r *CartServiceReader) ClearCart(ctx context.Context, userID string) error {
	return r.svc.ClearCart(ctx, userID)
}
