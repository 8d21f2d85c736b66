package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// CartStore persists a user's cart. Load returns an empty cart when none is
// stored.
type CartStore interface {
	Load(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

type MenuReader interface {
	GetItem(ctx context.Context, itemID string) (domain.Item, error)
}
