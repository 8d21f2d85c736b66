package grpc

import (
	"time"

	"github.com/shopspring/decimal"
)

const ServiceName = "storefront.order.v1.OrderService"

// DateLayout is the calendar day format used by list requests.
const DateLayout = "2006-01-02"

type OrderRequest struct {
	OrderID string `json:"order_id"`
}

type UserOrdersRequest struct {
	UserID string `json:"user_id"`
	// Date defaults to today.
	Date string `json:"date,omitempty"`
}

type DayRequest struct {
	Date string `json:"date,omitempty"`
}

type Line struct {
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

type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	UserID          string          `json:"user_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	BillingName     string          `json:"billing_name"`
	BillingMobile   string          `json:"billing_mobile"`
	Address         string          `json:"address"`
	Lines           []Line          `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	Lat             float64         `json:"lat"`
	Lng             float64         `json:"lng"`
	DistanceKm      float64         `json:"distance_km"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Buckets struct {
	Pending  []Order `json:"pending"`
	Accepted []Order `json:"accepted"`
	Rejected []Order `json:"rejected"`
}

type UserOrders struct {
	Today  Buckets `json:"today"`
	OnDate Buckets `json:"on_date"`
}

type Orders struct {
	Orders []Order `json:"orders"`
}

type Receipt struct {
	Text string `json:"text"`
}

type Export struct {
	Filename string `json:"filename"`
	CSV      string `json:"csv"`
}
