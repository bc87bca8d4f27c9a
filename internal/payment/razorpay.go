package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the Razorpay REST endpoint.
const DefaultBaseURL = "https://api.razorpay.com"

// RazorpayGateway implements Gateway with the Razorpay Go SDK.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	client    *razorpay.Client
}

// NewRazorpayGateway creates a gateway client. An empty baseURL uses DefaultBaseURL.
func NewRazorpayGateway(keyID, keySecret, baseURL string) *RazorpayGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := razorpay.NewClient(keyID, keySecret)
	client.Order.Request.BaseURL = strings.TrimRight(baseURL, "/")
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		client:    client,
	}
}

func (g *RazorpayGateway) KeyID() string { return g.keyID }

// CreateOrder opens an order with the amount in minor units.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	data := map[string]interface{}{
		"amount":   ToMinorUnits(amount),
		"currency": currency,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}
	minor, _ := body["amount"].(float64)
	order := &Order{
		ID:       id,
		Amount:   decimal.New(int64(minor), -2),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
	return order, nil
}

func stringField(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

// Verify checks the checkout signature Razorpay returns for orderID and paymentID.
func (g *RazorpayGateway) Verify(orderID, paymentID, signature string) bool {
	if signature == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.keySecret)
}

// Sign computes the signature Razorpay attaches to a successful checkout:
// hex HMAC-SHA256 of "orderID|paymentID" keyed with the key secret.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
