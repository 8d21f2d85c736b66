package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/geo"
)

// RequestLocator serves a position sampled by the client and sent with the
// request. A nil point means the client could not obtain one.
type RequestLocator struct {
	Point *geo.Point
}

func (l RequestLocator) Locate(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, err
	}
	if l.Point == nil || !l.Point.Valid() {
		return geo.Point{}, ErrLocationUnavailable
	}
	return *l.Point, nil
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (geo.Point, error)

func (f LocatorFunc) Locate(ctx context.Context) (geo.Point, error) {
	return f(ctx)
}
