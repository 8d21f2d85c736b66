package grpc

import "github.com/shopspring/decimal"

const ServiceName = "storefront.checkout.v1.CheckoutService"

// ErrorDomain is set on the ErrorInfo detail of checkout rejections.
const ErrorDomain = "checkout.storefront"

type QuoteRequest struct {
	UserID string `json:"user_id"`
}

type QuoteLine struct {
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	UnitDiscounted decimal.Decimal `json:"unit_discounted"`
	LineTotal      decimal.Decimal `json:"line_total"`
	LineDiscounted decimal.Decimal `json:"line_discounted"`
	Discount       string          `json:"discount"`
}

type QuoteResponse struct {
	Lines           []QuoteLine     `json:"lines"`
	Count           int             `json:"count"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	Savings         decimal.Decimal `json:"savings"`
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	MeetsMinimum    bool            `json:"meets_minimum"`
	ShopOpen        bool            `json:"shop_open"`
}

type PlaceOrderRequest struct {
	UserID        string `json:"user_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	BillingName   string `json:"billing_name"`
	BillingMobile string `json:"billing_mobile"`
	Address       string `json:"address"`

	// Position sampled by the client; nil when it could not get one.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

type PlaceOrderResponse struct {
	Skipped         bool            `json:"skipped"`
	OrderID         string          `json:"order_id,omitempty"`
	Number          string          `json:"number,omitempty"`
	Status          string          `json:"status,omitempty"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	DistanceKm      float64         `json:"distance_km,omitempty"`
}
