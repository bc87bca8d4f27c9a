package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/pkg/api"
)

// PaymentServiceName is the fully-qualified name of the PaymentService service.
const PaymentServiceName = "paysplit.v1.PaymentService"

// Procedure paths of the PaymentService RPCs.
const (
	PaymentServiceCreateOrderProcedure   = "/paysplit.v1.PaymentService/CreateOrder"
	PaymentServiceVerifyPaymentProcedure = "/paysplit.v1.PaymentService/VerifyPayment"
)

// PaymentServiceClient is a client for the paysplit.v1.PaymentService service.
type PaymentServiceClient interface {
	CreateOrder(context.Context, *connect.Request[api.CreateOrderRequest]) (*connect.Response[api.CreateOrderResponse], error)
	VerifyPayment(context.Context, *connect.Request[api.VerifyPaymentRequest]) (*connect.Response[api.VerifyPaymentResponse], error)
}

// NewPaymentServiceClient constructs a client for the paysplit.v1.PaymentService service.
// The JSON codec is always used; baseURL should include the scheme and host.
func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PaymentServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &paymentServiceClient{
		createOrder: connect.NewClient[api.CreateOrderRequest, api.CreateOrderResponse](
			httpClient,
			baseURL+PaymentServiceCreateOrderProcedure,
			opts...,
		),
		verifyPayment: connect.NewClient[api.VerifyPaymentRequest, api.VerifyPaymentResponse](
			httpClient,
			baseURL+PaymentServiceVerifyPaymentProcedure,
			opts...,
		),
	}
}

type paymentServiceClient struct {
	createOrder   *connect.Client[api.CreateOrderRequest, api.CreateOrderResponse]
	verifyPayment *connect.Client[api.VerifyPaymentRequest, api.VerifyPaymentResponse]
}

func (c *paymentServiceClient) CreateOrder(ctx context.Context, req *connect.Request[api.CreateOrderRequest]) (*connect.Response[api.CreateOrderResponse], error) {
	return c.createOrder.CallUnary(ctx, req)
}

func (c *paymentServiceClient) VerifyPayment(ctx context.Context, req *connect.Request[api.VerifyPaymentRequest]) (*connect.Response[api.VerifyPaymentResponse], error) {
	return c.verifyPayment.CallUnary(ctx, req)
}

// PaymentServiceHandler is implemented by the server side of paysplit.v1.PaymentService.
type PaymentServiceHandler interface {
	CreateOrder(context.Context, *connect.Request[api.CreateOrderRequest]) (*connect.Response[api.CreateOrderResponse], error)
	VerifyPayment(context.Context, *connect.Request[api.VerifyPaymentRequest]) (*connect.Response[api.VerifyPaymentResponse], error)
}

// NewPaymentServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	paymentServiceCreateOrderHandler := connect.NewUnaryHandler(
		PaymentServiceCreateOrderProcedure,
		svc.CreateOrder,
		opts...,
	)
	paymentServiceVerifyPaymentHandler := connect.NewUnaryHandler(
		PaymentServiceVerifyPaymentProcedure,
		svc.VerifyPayment,
		opts...,
	)
	return "/paysplit.v1.PaymentService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PaymentServiceCreateOrderProcedure:
			paymentServiceCreateOrderHandler.ServeHTTP(w, r)
		case PaymentServiceVerifyPaymentProcedure:
			paymentServiceVerifyPaymentHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedPaymentServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedPaymentServiceHandler struct{}

func (UnimplementedPaymentServiceHandler) CreateOrder(context.Context, *connect.Request[api.CreateOrderRequest]) (*connect.Response[api.CreateOrderResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.PaymentService.CreateOrder is not implemented"))
}

func (UnimplementedPaymentServiceHandler) VerifyPayment(context.Context, *connect.Request[api.VerifyPaymentRequest]) (*connect.Response[api.VerifyPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.PaymentService.VerifyPayment is not implemented"))
}
