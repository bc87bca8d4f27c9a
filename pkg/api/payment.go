package api

import "github.com/shopspring/decimal"

// CreateOrderRequest opens a gateway order. Currency defaults to INR.
type CreateOrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Receipt  string          `json:"receipt,omitempty"`
}

type PaymentOrder struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt,omitempty"`
	Status   string          `json:"status"`
}

// CreateOrderResponse includes the public key ID the checkout widget needs.
type CreateOrderResponse struct {
	Order *PaymentOrder `json:"order"`
	KeyID string        `json:"keyId"`
}

// VerifyPaymentRequest confirms a completed checkout. With GroupID set the
// caller's outstanding debts in that group are settled.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	GroupID   string `json:"groupId,omitempty"`
}

type VerifyPaymentResponse struct {
	Verified bool `json:"verified"`
	Settled  int  `json:"settled"`
}
