package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var ErrInconsistentTotals = errors.New("order totals do not match its lines")

// MaxLineQuantity bounds a single line so quantities fit the INTEGER column.
const MaxLineQuantity = 999

type Billing struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
}

// Line is a priced snapshot of one cart line at checkout time.
type Line struct {
	ItemID         string
	Name           string
	Category       string
	Quantity       int
	UnitPrice      decimal.Decimal
	UnitDiscounted decimal.Decimal
	LineTotal      decimal.Decimal
	LineDiscounted decimal.Decimal
	Discount       pricing.Discount
}

type Order struct {
	ID              string
	Number          string
	UserID          string
	CustomerName    string
	CustomerEmail   string
	Billing         Billing
	Lines           []Line
	Policy          pricing.Policy
	Subtotal        decimal.Decimal
	DiscountedTotal decimal.Decimal
	Location        geo.Point
	DistanceKm      float64
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PriceLine snapshots a line under p. Amounts are rounded to cents.
func PriceLine(itemID, name, category string, price decimal.Decimal, qty int, p pricing.Policy) Line {
	d := pricing.Resolve(category, p)
	unit := pricing.Money(price)
	discounted := pricing.Money(pricing.EffectiveUnitPrice(price, d))
	q := decimal.NewFromInt(int64(qty))
	return Line{
		ItemID:         itemID,
		Name:           name,
		Category:       category,
		Quantity:       qty,
		UnitPrice:      unit,
		UnitDiscounted: discounted,
		LineTotal:      unit.Mul(q),
		LineDiscounted: discounted.Mul(q),
		Discount:       d,
	}
}

// Totals sums the line snapshots.
func Totals(lines []Line) (subtotal, discounted decimal.Decimal) {
	subtotal, discounted = decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
		discounted = discounted.Add(l.LineDiscounted)
	}
	return subtotal, discounted
}

// Validate checks that the stored totals are the sums of the lines.
func (o Order) Validate() error {
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInconsistentTotals)
	}
	for i, l := range o.Lines {
		if l.Quantity < 1 || l.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: line %d quantity %d", ErrInconsistentTotals, i, l.Quantity)
		}
		if !l.LineDiscounted.Equal(l.UnitDiscounted.Mul(decimal.NewFromInt(int64(l.Quantity)))) {
			return fmt.Errorf("%w: line %d", ErrInconsistentTotals, i)
		}
	}
	sub, disc := Totals(o.Lines)
	if !sub.Equal(o.Subtotal) || !disc.Equal(o.DiscountedTotal) {
		return fmt.Errorf("%w: have %s/%s, lines sum to %s/%s",
			ErrInconsistentTotals, o.Subtotal, o.DiscountedTotal, sub, disc)
	}
	return nil
}

// Savings is what the customer saved against list prices.
func (o Order) Savings() decimal.Decimal {
	return o.Subtotal.Sub(o.DiscountedTotal)
}

// NewNumber returns the human-facing order number, e.g. ORD-1718000000000-42.
func NewNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", now.UnixMilli(), rand.IntN(1000))
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusAccepted || to == StatusRejected)
}
