// Package pricing resolves the discount that applies to a menu item and the
// unit price it yields.
//
// Resolution order: a category override (matched case-insensitively) wins.
// Otherwise the global percent applies when it is positive, then the global
// flat amount when it is positive, else no discount (percent 0).
package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Percent Kind = "percent"
	Flat    Kind = "flat"
)

var hundred = decimal.NewFromInt(100)

type Discount struct {
	Type  Kind            `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// None is the zero discount.
func None() Discount {
	return Discount{Type: Percent, Value: decimal.Zero}
}

// Clamp bounds a percent to [0,100] and a flat amount to >= 0. Unknown kinds
// collapse to no discount.
func (d Discount) Clamp() Discount {
	switch d.Type {
	case Percent:
		return Discount{Type: Percent, Value: clamp(d.Value, decimal.Zero, hundred)}
	case Flat:
		return Discount{Type: Flat, Value: decimal.Max(d.Value, decimal.Zero)}
	default:
		return None()
	}
}

func (d Discount) IsZero() bool {
	return d.Value.Sign() <= 0
}

func (d Discount) String() string {
	if d.Type == Flat {
		return "flat " + d.Value.StringFixed(2)
	}
	return d.Value.String() + "%"
}

type Policy struct {
	GlobalPercent     decimal.Decimal     `json:"global_percent"`
	GlobalFlat        decimal.Decimal     `json:"global_flat"`
	CategoryOverrides map[string]Discount `json:"category_overrides,omitempty"`
}

// Category folds a category label to the key used for override lookups.
func Category(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Resolve picks the discount for an item of the given category.
func Resolve(category string, p Policy) Discount {
	if d, ok := p.override(category); ok {
		return d.Clamp()
	}
	if p.GlobalPercent.Sign() > 0 {
		return Discount{Type: Percent, Value: p.GlobalPercent}.Clamp()
	}
	if p.GlobalFlat.Sign() > 0 {
		return Discount{Type: Flat, Value: p.GlobalFlat}.Clamp()
	}
	return None()
}

func (p Policy) override(category string) (Discount, bool) {
	if len(p.CategoryOverrides) == 0 {
		return Discount{}, false
	}
	key := Category(category)
	if d, ok := p.CategoryOverrides[key]; ok {
		return d, true
	}

	keys := make([]string, 0, len(p.CategoryOverrides))
	for k := range p.CategoryOverrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if Category(k) == key {
			return p.CategoryOverrides[k], true
		}
	}
	return Discount{}, false
}

// EffectiveUnitPrice applies d to price. It never returns a negative amount
// and never exceeds max(price, 0).
func EffectiveUnitPrice(price decimal.Decimal, d Discount) decimal.Decimal {
	d = d.Clamp()
	switch d.Type {
	case Flat:
		return decimal.Max(decimal.Zero, price.Sub(decimal.Min(price, d.Value)))
	default:
		factor := hundred.Sub(d.Value).Div(hundred)
		return decimal.Max(decimal.Zero, price.Mul(factor))
	}
}

// UnitPrice resolves and applies the policy in one step.
func UnitPrice(price decimal.Decimal, category string, p Policy) decimal.Decimal {
	return EffectiveUnitPrice(price, Resolve(category, p))
}

// Money rounds an amount to the two places stored on an order.
func Money(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}
