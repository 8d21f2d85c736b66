package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type orderRow struct {
	ID              uuid.UUID
	Number          string
	UserID          string
	CustomerName    string
	CustomerEmail   string
	BillingName     string
	BillingMobile   string
	BillingAddress  string
	Policy          string
	Subtotal        decimal.Decimal
	DiscountedTotal decimal.Decimal
	LocationLat     float64
	LocationLng     float64
	DistanceKm      float64
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type itemRow struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Position       int32
	ItemID         string
	Name           string
	Category       string
	Quantity       int32
	UnitPrice      decimal.Decimal
	UnitDiscounted decimal.Decimal
	LineTotal      decimal.Decimal
	LineDiscounted decimal.Decimal
	DiscountType   string
	DiscountValue  decimal.Decimal
}

const orderColumns = `id, number, user_id, customer_name, customer_email,
	billing_name, billing_mobile, billing_address, policy, subtotal,
	discounted_total, location_lat, location_lng, distance_km, status,
	created_at, updated_at`

const itemColumns = `id, order_id, position, item_id, name, category, quantity,
	unit_price, unit_discounted, line_total, line_discounted, discount_type,
	discount_value`

const createOrder = `INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg orderRow) (orderRow, error) {
	row := q.db.QueryRowContext(ctx, createOrder,
		arg.ID, arg.Number, arg.UserID, arg.CustomerName, arg.CustomerEmail,
		arg.BillingName, arg.BillingMobile, arg.BillingAddress, arg.Policy, arg.Subtotal,
		arg.DiscountedTotal, arg.LocationLat, arg.LocationLng, arg.DistanceKm, arg.Status,
		arg.CreatedAt, arg.UpdatedAt,
	)
	return scanOrder(row)
}

const addOrderItem = `INSERT INTO order_items (` + itemColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + itemColumns

func (q *Queries) AddOrderItem(ctx context.Context, arg itemRow) (itemRow, error) {
	row := q.db.QueryRowContext(ctx, addOrderItem,
		arg.ID, arg.OrderID, arg.Position, arg.ItemID, arg.Name, arg.Category, arg.Quantity,
		arg.UnitPrice, arg.UnitDiscounted, arg.LineTotal, arg.LineDiscounted, arg.DiscountType,
		arg.DiscountValue,
	)
	return scanItem(row)
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (orderRow, error) {
	return scanOrder(q.db.QueryRowContext(ctx, getOrder, id))
}

const listOrdersByUser = `SELECT ` + orderColumns + ` FROM orders
WHERE user_id = $1 ORDER BY created_at DESC`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID string) ([]orderRow, error) {
	return q.listOrders(ctx, listOrdersByUser, userID)
}

const listOrdersBetween = `SELECT ` + orderColumns + ` FROM orders
WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC`

func (q *Queries) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]orderRow, error) {
	return q.listOrders(ctx, listOrdersBetween, from, to)
}

const listItems = `SELECT ` + itemColumns + ` FROM order_items
WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`

func (q *Queries) ListItems(ctx context.Context, orderIDs []string) ([]itemRow, error) {
	rows, err := q.db.QueryContext(ctx, listItems, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []itemRow
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const updateStatus = `UPDATE orders SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2`

// UpdateStatus reports whether a row matched.
func (q *Queries) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	res, err := q.db.ExecContext(ctx, updateStatus, id, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (q *Queries) listOrders(ctx context.Context, query string, args ...interface{}) ([]orderRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orderRow
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (orderRow, error) {
	var o orderRow
	err := s.Scan(
		&o.ID, &o.Number, &o.UserID, &o.CustomerName, &o.CustomerEmail,
		&o.BillingName, &o.BillingMobile, &o.BillingAddress, &o.Policy, &o.Subtotal,
		&o.DiscountedTotal, &o.LocationLat, &o.LocationLng, &o.DistanceKm, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanItem(s scanner) (itemRow, error) {
	var it itemRow
	err := s.Scan(
		&it.ID, &it.OrderID, &it.Position, &it.ItemID, &it.Name, &it.Category, &it.Quantity,
		&it.UnitPrice, &it.UnitDiscounted, &it.LineTotal, &it.LineDiscounted, &it.DiscountType,
		&it.DiscountValue,
	)
	return it, err
}
