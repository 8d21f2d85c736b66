package adapter

import (
	"context"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	shopapp "github.com/dwikikusuma/storefront/internal/shop/app"
)

type ShopTermsReader struct {
	svc *shopapp.Service
}

func NewShopTermsReader(svc *shopapp.Service) *ShopTermsReader {
	return &ShopTermsReader{svc: svc}
}

func (r *ShopTermsReader) Terms(ctx context.Context) (checkoutapp.Terms, error) {
	s, err := r.svc.Current(ctx)
	if err != nil {
		return checkoutapp.Terms{}, err
	}
	return checkoutapp.Terms{
		IsOpen:        s.IsOpen,
		Zone:          s.Zone(),
		Policy:        s.Policy(),
		MinOrderValue: s.MinOrderValue,
	}, nil
}
