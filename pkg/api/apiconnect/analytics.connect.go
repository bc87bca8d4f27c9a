package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/pkg/api"
)

// AnalyticsServiceName is the fully-qualified name of the AnalyticsService service.
const AnalyticsServiceName = "paysplit.v1.AnalyticsService"

// Procedure paths of the AnalyticsService RPCs.
const (
	AnalyticsServiceGetMonthlyGroupStatsProcedure  = "/paysplit.v1.AnalyticsService/GetMonthlyGroupStats"
	AnalyticsServiceGetSpendingPredictionProcedure = "/paysplit.v1.AnalyticsService/GetSpendingPrediction"
)

// AnalyticsServiceClient is a client for the paysplit.v1.AnalyticsService service.
type AnalyticsServiceClient interface {
	GetMonthlyGroupStats(context.Context, *connect.Request[api.GetMonthlyGroupStatsRequest]) (*connect.Response[api.GetMonthlyGroupStatsResponse], error)
	GetSpendingPrediction(context.Context, *connect.Request[api.GetSpendingPredictionRequest]) (*connect.Response[api.GetSpendingPredictionResponse], error)
}

// NewAnalyticsServiceClient constructs a client for the paysplit.v1.AnalyticsService service.
// The JSON codec is always used; baseURL should include the scheme and host.
func NewAnalyticsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AnalyticsServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &analyticsServiceClient{
		getMonthlyGroupStats: connect.NewClient[api.GetMonthlyGroupStatsRequest, api.GetMonthlyGroupStatsResponse](
			httpClient,
			baseURL+AnalyticsServiceGetMonthlyGroupStatsProcedure,
			opts...,
		),
		getSpendingPrediction: connect.NewClient[api.GetSpendingPredictionRequest, api.GetSpendingPredictionResponse](
			httpClient,
			baseURL+AnalyticsServiceGetSpendingPredictionProcedure,
			opts...,
		),
	}
}

type analyticsServiceClient struct {
	getMonthlyGroupStats  *connect.Client[api.GetMonthlyGroupStatsRequest, api.GetMonthlyGroupStatsResponse]
	getSpendingPrediction *connect.Client[api.GetSpendingPredictionRequest, api.GetSpendingPredictionResponse]
}

func (c *analyticsServiceClient) GetMonthlyGroupStats(ctx context.Context, req *connect.Request[api.GetMonthlyGroupStatsRequest]) (*connect.Response[api.GetMonthlyGroupStatsResponse], error) {
	return c.getMonthlyGroupStats.CallUnary(ctx, req)
}

func (c *analyticsServiceClient) GetSpendingPrediction(ctx context.Context, req *connect.Request[api.GetSpendingPredictionRequest]) (*connect.Response[api.GetSpendingPredictionResponse], error) {
	return c.getSpendingPrediction.CallUnary(ctx, req)
}

// AnalyticsServiceHandler is implemented by the server side of paysplit.v1.AnalyticsService.
type AnalyticsServiceHandler interface {
	GetMonthlyGroupStats(context.Context, *connect.Request[api.GetMonthlyGroupStatsRequest]) (*connect.Response[api.GetMonthlyGroupStatsResponse], error)
	GetSpendingPrediction(context.Context, *connect.Request[api.GetSpendingPredictionRequest]) (*connect.Response[api.GetSpendingPredictionResponse], error)
}

// NewAnalyticsServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAnalyticsServiceHandler(svc AnalyticsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	analyticsServiceGetMonthlyGroupStatsHandler := connect.NewUnaryHandler(
		AnalyticsServiceGetMonthlyGroupStatsProcedure,
		svc.GetMonthlyGroupStats,
		opts...,
	)
	analyticsServiceGetSpendingPredictionHandler := connect.NewUnaryHandler(
		AnalyticsServiceGetSpendingPredictionProcedure,
		svc.GetSpendingPrediction,
		opts...,
	)
	return "/paysplit.v1.AnalyticsService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AnalyticsServiceGetMonthlyGroupStatsProcedure:
			analyticsServiceGetMonthlyGroupStatsHandler.ServeHTTP(w, r)
		case AnalyticsServiceGetSpendingPredictionProcedure:
			analyticsServiceGetSpendingPredictionHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAnalyticsServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAnalyticsServiceHandler struct{}

func (UnimplementedAnalyticsServiceHandler) GetMonthlyGroupStats(context.Context, *connect.Request[api.GetMonthlyGroupStatsRequest]) (*connect.Response[api.GetMonthlyGroupStatsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.AnalyticsService.GetMonthlyGroupStats is not implemented"))
}

func (UnimplementedAnalyticsServiceHandler) GetSpendingPrediction(context.Context, *connect.Request[api.GetSpendingPredictionRequest]) (*connect.Response[api.GetSpendingPredictionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.AnalyticsService.GetSpendingPrediction is not implemented"))
}
