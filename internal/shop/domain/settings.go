package domain

import (
	"time"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// Settings is the merchant configuration that gates and prices checkout.
type Settings struct {
	IsOpen            bool
	City              string
	Center            geo.Point
	RadiusKm          float64
	DiscountPercent   decimal.Decimal
	DiscountFlat      decimal.Decimal
	CategoryDiscounts map[string]pricing.Discount
	MinOrderValue     decimal.Decimal
	UpdatedAt         time.Time
}

// Defaults fill any setting the stored document leaves out.
type Defaults struct {
	Center        geo.Point
	RadiusKm      float64
	MinOrderValue decimal.Decimal
}

func New(d Defaults) Settings {
	return Settings{
		IsOpen:            true,
		Center:            d.Center,
		RadiusKm:          d.RadiusKm,
		DiscountPercent:   decimal.Zero,
		DiscountFlat:      decimal.Zero,
		CategoryDiscounts: map[string]pricing.Discount{},
		MinOrderValue:     d.MinOrderValue,
	}
}

func (s Settings) Zone() geo.Zone {
	return geo.Zone{Center: s.Center, RadiusKm: s.RadiusKm}
}

func (s Settings) Policy() pricing.Policy {
	overrides := make(map[string]pricing.Discount, len(s.CategoryDiscounts))
	for k, v := range s.CategoryDiscounts {
		overrides[pricing.Category(k)] = v
	}
	return pricing.Policy{
		GlobalPercent:     s.DiscountPercent,
		GlobalFlat:        s.DiscountFlat,
		CategoryOverrides: overrides,
	}
}

// Clone copies the category map so callers can mutate the result.
func (s Settings) Clone() Settings {
	out := s
	out.CategoryDiscounts = make(map[string]pricing.Discount, len(s.CategoryDiscounts))
	for k, v := range s.CategoryDiscounts {
		out.CategoryDiscounts[k] = v
	}
	return out
}
