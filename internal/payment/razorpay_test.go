package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"250", 25000},
		{"250.75", 25075},
		{"0.015", 2},
		{"99.994", 9999},
	}
	for _, tt := range tests {
		if got := ToMinorUnits(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("ToMinorUnits(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_key" || pass != "secret" {
			t.Errorf("unexpected basic auth %q/%q", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_123","amount":25075,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer server.Close()

	gw := NewRazorpayGateway("rzp_key", "secret", server.URL)
	order, err := gw.CreateOrder(context.Background(), decimal.RequireFromString("250.75"), "", "rcpt_1")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if gotBody["amount"] != float64(25075) || gotBody["currency"] != "INR" || gotBody["receipt"] != "rcpt_1" {
		t.Errorf("unexpected request body: %v", gotBody)
	}
	if order.ID != "order_123" || !order.Amount.Equal(decimal.RequireFromString("250.75")) {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestRazorpayGateway_CreateOrderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer server.Close()

	gw := NewRazorpayGateway("k", "s", server.URL)
	if _, err := gw.CreateOrder(context.Background(), decimal.RequireFromString("0.5"), "INR", ""); err == nil {
		t.Fatal("expected gateway error to surface")
	}
}

func TestRazorpayGateway_CreateOrderCanceled(t *testing.T) {
	gw := NewRazorpayGateway("k", "s", "http://127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gw.CreateOrder(ctx, decimal.RequireFromString("10"), "INR", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRazorpayGateway_Verify(t *testing.T) {
	gw := NewRazorpayGateway("k", "secret", "")
	sig := Sign("secret", "order_1", "pay_1")

	if !gw.Verify("order_1", "pay_1", sig) {
		t.Error("expected valid signature to verify")
	}
	if gw.Verify("order_1", "pay_2", sig) {
		t.Error("expected signature for another payment to fail")
	}
	if gw.Verify("order_1", "pay_1", Sign("other", "order_1", "pay_1")) {
		t.Error("expected signature with another secret to fail")
	}
	if gw.Verify("order_1", "pay_1", "") {
		t.Error("expected empty signature to fail")
	}
}
