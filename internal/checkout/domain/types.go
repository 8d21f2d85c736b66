package domain

import (
	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// Quote is the priced cart as checkout would snapshot it.
type Quote struct {
	Lines           []orderdomain.Line
	Subtotal        decimal.Decimal
	DiscountedTotal decimal.Decimal
	MinOrderValue   decimal.Decimal
	ShopOpen        bool
	Policy          pricing.Policy
}

func (q Quote) IsEmpty() bool {
	return len(q.Lines) == 0
}

func (q Quote) MeetsMinimum() bool {
	return q.DiscountedTotal.GreaterThanOrEqual(q.MinOrderValue)
}

func (q Quote) Savings() decimal.Decimal {
	return q.Subtotal.Sub(q.DiscountedTotal)
}

func (q Quote) Count() int {
	n := 0
	for _, l := range q.Lines {
		n += l.Quantity
	}
	return n
}
