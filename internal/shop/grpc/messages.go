package grpc

import (
	"time"

	"github.com/shopspring/decimal"
)

const ServiceName = "storefront.shop.v1.ShopService"

type Empty struct{}

type Discount struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type Settings struct {
	IsOpen            bool                `json:"is_open"`
	City              string              `json:"city"`
	Lat               float64             `json:"lat"`
	Lng               float64             `json:"lng"`
	RadiusKm          float64             `json:"radius_km"`
	DiscountPercent   decimal.Decimal     `json:"discount_percent"`
	DiscountFlat      decimal.Decimal     `json:"discount_flat"`
	CategoryDiscounts map[string]Discount `json:"category_discounts"`
	MinOrderValue     decimal.Decimal     `json:"min_order_value"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type SetOpenRequest struct {
	Open bool `json:"open"`
}

type SetLocationRequest struct {
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
}

type SetLocationByCityRequest struct {
	Query    string  `json:"query"`
	RadiusKm float64 `json:"radius_km"`
}

type SearchCityRequest struct {
	Query string `json:"query"`
}

type DetectCityRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Place struct {
	City        string  `json:"city"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type Places struct {
	Places []Place `json:"places"`
}

type SetDiscountRequest struct {
	Percent decimal.Decimal `json:"percent"`
	Flat    decimal.Decimal `json:"flat"`
}

type CategoryDiscountRequest struct {
	Category string          `json:"category"`
	Type     string          `json:"type,omitempty"`
	Value    decimal.Decimal `json:"value"`
}

type MinOrderValueRequest struct {
	Value decimal.Decimal `json:"value"`
}
