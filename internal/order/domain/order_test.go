package domain

import (
	"bytes"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tenPercent = pricing.Policy{GlobalPercent: decimal.NewFromInt(10)}

func sampleOrder() Order {
	lines := []Line{
		PriceLine("biryani", "Veg Biryani", "Biryani", decimal.NewFromInt(200), 2, tenPercent),
		PriceLine("lassi", "Lassi", "Drinks", decimal.RequireFromString("59.99"), 1, tenPercent),
	}
	sub, disc := Totals(lines)
	return Order{
		Number:          "ORD-1-1",
		Billing:         Billing{Name: "Asha", Mobile: "9800000000", Address: "Main road"},
		Lines:           lines,
		Subtotal:        sub,
		DiscountedTotal: disc,
		Status:          StatusPending,
		CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPriceLine(t *testing.T) {
	l := PriceLine("biryani", "Veg Biryani", "Biryani", decimal.NewFromInt(200), 2, tenPercent)

	assert.True(t, l.LineTotal.Equal(decimal.NewFromInt(400)))
	assert.True(t, l.UnitDiscounted.Equal(decimal.NewFromInt(180)))
	assert.True(t, l.LineDiscounted.Equal(decimal.NewFromInt(360)))
	assert.Equal(t, "10%", l.Discount.String())

	l = PriceLine("lassi", "Lassi", "Drinks", decimal.RequireFromString("59.99"), 1, tenPercent)
	assert.Equal(t, "53.99", l.UnitDiscounted.String(), "rounded to cents")
}

func TestValidate(t *testing.T) {
	o := sampleOrder()
	require.NoError(t, o.Validate())
	assert.True(t, o.DiscountedTotal.Equal(decimal.RequireFromString("413.99")))
	assert.True(t, o.Savings().Equal(decimal.RequireFromString("46")))

	broken := sampleOrder()
	broken.DiscountedTotal = broken.DiscountedTotal.Add(decimal.NewFromInt(1))
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentTotals)

	broken = sampleOrder()
	broken.Lines[0].Quantity = 0
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentTotals)

	broken = sampleOrder()
	broken.Lines[0].Quantity = math.MaxInt32 + 1
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentTotals)

	assert.ErrorIs(t, Order{}.Validate(), ErrInconsistentTotals)
}

func TestNewNumber(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	assert.Regexp(t, regexp.MustCompile(`^ORD-1718000000000-\d{1,3}$`), NewNumber(now))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusAccepted))
	assert.True(t, CanTransition(StatusPending, StatusRejected))
	assert.False(t, CanTransition(StatusAccepted, StatusRejected))
	assert.False(t, CanTransition(StatusRejected, StatusRejected))
	assert.False(t, CanTransition(StatusPending, StatusPending))
}

func TestProject(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, ist)
	at := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, ist) }

	orders := []Order{
		{ID: "a", Status: StatusPending, CreatedAt: at(10, 9)},
		{ID: "b", Status: StatusAccepted, CreatedAt: at(10, 11)},
		{ID: "c", Status: StatusPending, CreatedAt: at(10, 15)},
		{ID: "d", Status: StatusRejected, CreatedAt: at(8, 12)},
		{ID: "e", Status: "cancelled", CreatedAt: at(10, 10)},
		// 23:30 UTC on the 9th is the 10th in IST.
		{ID: "f", Status: StatusAccepted, CreatedAt: time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)},
	}

	p := Project(orders, now, at(8, 0), ist)

	ids := func(os []Order) []string {
		out := make([]string, 0, len(os))
		for _, o := range os {
			out = append(out, o.ID)
		}
		return out
	}
	assert.Equal(t, []string{"c", "a"}, ids(p.Today.Pending))
	assert.Equal(t, []string{"b", "f"}, ids(p.Today.Accepted))
	assert.Empty(t, p.Today.Rejected)
	assert.Equal(t, 4, p.Today.Len())
	assert.Equal(t, []string{"d"}, ids(p.OnDate.Rejected))
	assert.Equal(t, 1, p.OnDate.Len())

	assert.Equal(t, "a", orders[0].ID, "input left untouched")
}

func TestDayBounds(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start, end := DayBounds(time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC), ist)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, ist), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestWriteReceipt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReceipt(&buf, sampleOrder(), "INR", time.UTC))

	out := buf.String()
	assert.Contains(t, out, "Order ORD-1-1")
	assert.Contains(t, out, "Veg Biryani")
	assert.Contains(t, out, "180.00")
	assert.Contains(t, out, "You saved INR 46.00")
	assert.Contains(t, out, "Total INR 413.99")
}
