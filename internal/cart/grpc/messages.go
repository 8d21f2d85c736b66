package grpc

import "github.com/shopspring/decimal"

const ServiceName = "storefront.cart.v1.CartService"

type UserRequest struct {
	UserID string `json:"user_id"`
}

type ItemRequest struct {
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity,omitempty"`
}

type Line struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Cart struct {
	UserID   string          `json:"user_id"`
	Lines    []Line          `json:"lines"`
	Count    int             `json:"count"`
	RawTotal decimal.Decimal `json:"raw_total"`
}

type Empty struct{}
