// Package payment talks to the payment gateway that collects settle-up money.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an order does not name one.
const DefaultCurrency = "INR"

// Order is a gateway order awaiting payment.
type Order struct {
	ID       string
	Amount   decimal.Decimal // major units
	Currency string
	Receipt  string
	Status   string
}

// Gateway creates orders and checks payment callbacks.
type Gateway interface {
	// CreateOrder opens an order for amount (major units, e.g. rupees).
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Order, error)

	// Verify reports whether signature authenticates the (orderID, paymentID) pair.
	Verify(orderID, paymentID, signature string) bool

	// KeyID is the public key handed to the checkout widget.
	KeyID() string
}

// ToMinorUnits converts major units to the smallest currency unit, rounding
// half away from zero (250.755 -> 25076).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
