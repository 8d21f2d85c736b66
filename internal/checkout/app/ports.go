package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/geo"
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

type CartReader interface {
	GetCart(ctx context.Context, userID string) ([]CartLine, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartLine struct {
	ItemID   string
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

type CatalogReader interface {
	// GetItem returns ErrItemNotFound for items no longer on the menu.
	GetItem(ctx context.Context, itemID string) (Item, error)
}

type Item struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
}

// Terms are the shop settings checkout depends on.
type Terms struct {
	IsOpen        bool
	Zone          geo.Zone
	Policy        pricing.Policy
	MinOrderValue decimal.Decimal
}

type TermsReader interface {
	Terms(ctx context.Context) (Terms, error)
}

// Locator samples the customer's current position.
type Locator interface {
	Locate(ctx context.Context) (geo.Point, error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error)
}

// Guard serializes checkouts per key. Acquire reports ok=false when another
// checkout holds the key.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}
