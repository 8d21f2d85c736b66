package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/geocoding"
	"github.com/dwikikusuma/storefront/internal/shop/domain"
)

type SettingsRepo interface {
	// Load returns the stored settings with unset fields taken from the
	// defaults. A missing document yields domain.New(defaults).
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
	// Watch calls fn with the normalized settings after every change. closed
	// runs once if the subscription ends before the returned cancel func is
	// called; fn is not called after that.
	Watch(ctx context.Context, fn func(domain.Settings), closed func()) (func(), error)
}

type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]geocoding.Place, error)
	Reverse(ctx context.Context, pt geo.Point) (geocoding.Place, error)
}
