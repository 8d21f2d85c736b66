package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Category    string
	PhotoURL    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemInput carries the admin-editable fields of a menu item.
type ItemInput struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	PhotoURL    string
	Description string
}
