package app

import (
	"context"
	"errors"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

// ErrStatusConflict is returned by UpdateStatus when the stored status is not
// the expected one.
var ErrStatusConflict = errors.New("order status changed concurrently")

type OrderRepo interface {
	// CreateOrderTx stores the order and its lines atomically and returns it
	// with ID and timestamps set.
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListBetween returns orders created in [from, to).
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	// UpdateStatus moves an order from one status to another. It fails with
	// ErrStatusConflict when the stored status is not from.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) (domain.Order, error)
}
