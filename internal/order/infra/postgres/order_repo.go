package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/google/uuid"
)

//go:embed schema.sql
var schema string

// Migrate creates the order tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate order schema: %w", err)
	}
	return nil
}

type OrderRepo struct {
	*Queries
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{
		Queries: New(db),
		db:      db,
	}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(queries *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	policy, err := json.Marshal(order.Policy)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode policy: %w", err)
	}

	var created domain.Order
	err = r.execTX(ctx, func(q *Queries) error {
		o, err := q.CreateOrder(ctx, orderRow{
			ID:              uuid.New(),
			Number:          order.Number,
			UserID:          order.UserID,
			CustomerName:    order.CustomerName,
			CustomerEmail:   order.CustomerEmail,
			BillingName:     order.Billing.Name,
			BillingMobile:   order.Billing.Mobile,
			BillingAddress:  order.Billing.Address,
			Policy:          string(policy),
			Subtotal:        order.Subtotal,
			DiscountedTotal: order.DiscountedTotal,
			LocationLat:     order.Location.Lat,
			LocationLng:     order.Location.Lng,
			DistanceKm:      order.DistanceKm,
			Status:          string(order.Status),
			CreatedAt:       order.CreatedAt,
			UpdatedAt:       order.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		items := make([]itemRow, 0, len(order.Lines))
		for i, l := range order.Lines {
			row, err := q.AddOrderItem(ctx, itemRow{
				ID:             uuid.New(),
				OrderID:        o.ID,
				Position:       int32(i),
				ItemID:         l.ItemID,
				Name:           l.Name,
				Category:       l.Category,
				Quantity:       int32(l.Quantity),
				UnitPrice:      l.UnitPrice,
				UnitDiscounted: l.UnitDiscounted,
				LineTotal:      l.LineTotal,
				LineDiscounted: l.LineDiscounted,
				DiscountType:   string(l.Discount.Type),
				DiscountValue:  l.Discount.Value,
			})
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
			items = append(items, row)
		}

		created = toDomain(o, items)
		return created.Validate()
	})
	if err != nil {
		return domain.Order{}, err
	}
	return created, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}
	o, err := r.GetOrder(ctx, oid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	out, err := r.withItems(ctx, []orderRow{o})
	if err != nil {
		return domain.Order{}, err
	}
	return out[0], nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.withItems(ctx, rows)
}

func (r *OrderRepo) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	rows, err := r.ListOrdersBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.withItems(ctx, rows)
}

// UpdateStatus relies on the WHERE status guard; the follow-up read only
// tells a missing order from a conflicting one.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (domain.Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	err = r.execTX(ctx, func(q *Queries) error {
		ok, err := q.UpdateStatus(ctx, oid, string(from), string(to))
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if ok {
			return nil
		}
		if _, err := q.GetOrder(ctx, oid); errors.Is(err, sql.ErrNoRows) {
			return app.ErrNotFound
		} else if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		return app.ErrStatusConflict
	})
	if err != nil {
		return domain.Order{}, err
	}
	return r.Get(ctx, id)
}

func (r *OrderRepo) withItems(ctx context.Context, rows []orderRow) ([]domain.Order, error) {
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.ID.String())
	}
	items, err := r.ListItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	byOrder := make(map[uuid.UUID][]itemRow, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	out := make([]domain.Order, 0, len(rows))
	for _, o := range rows {
		out = append(out, toDomain(o, byOrder[o.ID]))
	}
	return out, nil
}

func toDomain(o orderRow, items []itemRow) domain.Order {
	var policy pricing.Policy
	// A malformed policy column only loses the summary; totals live in columns.
	_ = json.Unmarshal([]byte(o.Policy), &policy)

	lines := make([]domain.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.Line{
			ItemID:         it.ItemID,
			Name:           it.Name,
			Category:       it.Category,
			Quantity:       int(it.Quantity),
			UnitPrice:      it.UnitPrice,
			UnitDiscounted: it.UnitDiscounted,
			LineTotal:      it.LineTotal,
			LineDiscounted: it.LineDiscounted,
			Discount:       pricing.Discount{Type: pricing.Kind(it.DiscountType), Value: it.DiscountValue},
		})
	}

	return domain.Order{
		ID:            o.ID.String(),
		Number:        o.Number,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Billing: domain.Billing{
			Name:    o.BillingName,
			Mobile:  o.BillingMobile,
			Address: o.BillingAddress,
		},
		Lines:           lines,
		Policy:          policy,
		Subtotal:        o.Subtotal,
		DiscountedTotal: o.DiscountedTotal,
		Location:        geo.Point{Lat: o.LocationLat, Lng: o.LocationLng},
		DistanceKm:      o.DistanceKm,
		Status:          domain.Status(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
