package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/google/uuid"
)

// OrderRepo keeps orders in process. Used by tests and single-node dev runs.
type OrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[string]domain.Order)}
}

func (r *OrderRepo) CreateOrderTx(_ context.Context, o domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt
	o.Lines = append([]domain.Line(nil), o.Lines...)
	r.orders[o.ID] = o
	return o, nil
}

func (r *OrderRepo) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool {
		return !o.CreatedAt.Before(from) && o.CreatedAt.Before(to)
	}), nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.Status) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	if o.Status != from {
		return domain.Order{}, app.ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return o, nil
}

func (r *OrderRepo) filter(keep func(domain.Order) bool) []domain.Order {
	r.mu.Lock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
