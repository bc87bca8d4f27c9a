package models

import "github.com/shopspring/decimal"

// PaymentOrderStatus is the lifecycle state of a gateway order.
type PaymentOrderStatus string

const (
	PaymentOrderCreated  PaymentOrderStatus = "created"
	PaymentOrderVerified PaymentOrderStatus = "verified"
)

// PaymentOrder records an order raised with the payment gateway so a member
// can settle up.
type PaymentOrder struct {
	// ID is the gateway's order ID (e.g., "order_Ab12...").
	ID string

	// UserID is the member paying.
	UserID string

	// Amount is the order amount in major currency units.
	Amount decimal.Decimal

	// Currency is the ISO code sent to the gateway (default INR).
	Currency string

	// Receipt is the caller-provided reference, may be empty.
	Receipt string

	// Status is created until the payment signature is verified.
	Status PaymentOrderStatus

	// PaymentID is the gateway payment ID, set on verification.
	PaymentID string

	// GroupID is the group settled by this payment, set on verification.
	GroupID string

	// CreatedAt is the Unix timestamp when the order was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}
