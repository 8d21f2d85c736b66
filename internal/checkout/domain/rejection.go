package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Code string

const (
	CodeSignInRequired      Code = "SIGN_IN_REQUIRED"
	CodeMissingBilling      Code = "MISSING_BILLING_DETAILS"
	CodeEmptyCart           Code = "EMPTY_CART"
	CodeShopClosed          Code = "SHOP_CLOSED"
	CodeItemUnavailable     Code = "ITEM_UNAVAILABLE"
	CodeBelowMinimum        Code = "BELOW_MINIMUM_ORDER_VALUE"
	CodeLocationUnavailable Code = "LOCATION_UNAVAILABLE"
	CodeOutOfRange          Code = "OUT_OF_DELIVERY_RANGE"
)

// Rejection is a checkout precondition failure. The order was not placed and
// the cart is unchanged.
type Rejection struct {
	Code    Code
	Message string

	// Set for CodeOutOfRange.
	DistanceKm float64
	RadiusKm   float64

	// Set for CodeBelowMinimum.
	Minimum decimal.Decimal
	Total   decimal.Decimal
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("checkout rejected (%s): %s", r.Code, r.Message)
}

// Retryable reports whether the same request may succeed with a fresh
// location sample.
func (r *Rejection) Retryable() bool {
	return r.Code == CodeLocationUnavailable || r.Code == CodeOutOfRange
}

func Reject(code Code, msg string) *Rejection {
	return &Rejection{Code: code, Message: msg}
}

func OutOfRange(distanceKm, radiusKm float64) *Rejection {
	return &Rejection{
		Code:       CodeOutOfRange,
		Message:    fmt.Sprintf("you are %.2f km away; we deliver within %.2f km", distanceKm, radiusKm),
		DistanceKm: distanceKm,
		RadiusKm:   radiusKm,
	}
}

func BelowMinimum(total, minimum decimal.Decimal, currency string) *Rejection {
	return &Rejection{
		Code:    CodeBelowMinimum,
		Message: fmt.Sprintf("minimum order value is %s %s", currency, minimum.StringFixed(2)),
		Minimum: minimum,
		Total:   total,
	}
}
