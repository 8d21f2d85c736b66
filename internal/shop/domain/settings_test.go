package domain

import (
	"testing"

	"github.com/dwikikusuma/storefront/internal/geo"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPolicyFoldsCategoryKeys(t *testing.T) {
	s := New(Defaults{Center: geo.Point{Lat: 1, Lng: 2}, RadiusKm: 10, MinOrderValue: decimal.NewFromInt(150)})
	s.DiscountPercent = decimal.NewFromInt(5)
	s.CategoryDiscounts["  Biryani "] = pricing.Discount{Type: pricing.Flat, Value: decimal.NewFromInt(20)}

	p := s.Policy()
	_, ok := p.CategoryOverrides["biryani"]
	assert.True(t, ok)
	assert.Equal(t, pricing.Flat, pricing.Resolve("BIRYANI", p).Type)
	assert.Equal(t, pricing.Percent, pricing.Resolve("Drinks", p).Type)
}

func TestCloneIsDeep(t *testing.T) {
	s := New(Defaults{RadiusKm: 10})
	c := s.Clone()
	c.CategoryDiscounts["x"] = pricing.None()
	assert.Empty(t, s.CategoryDiscounts)
}

func TestZone(t *testing.T) {
	s := New(Defaults{Center: geo.Point{Lat: 20.491026, Lng: 77.866386}, RadiusKm: 10})
	assert.Equal(t, geo.Zone{Center: geo.Point{Lat: 20.491026, Lng: 77.866386}, RadiusKm: 10}, s.Zone())
	assert.True(t, s.IsOpen)
}
