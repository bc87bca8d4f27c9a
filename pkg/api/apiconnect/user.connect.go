package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/pkg/api"
)

// UserServiceName is the fully-qualified name of the UserService service.
const UserServiceName = "paysplit.v1.UserService"

// Procedure paths of the UserService RPCs.
const (
	UserServiceUpdateAccountProcedure = "/paysplit.v1.UserService/UpdateAccount"
	UserServiceDeleteAccountProcedure = "/paysplit.v1.UserService/DeleteAccount"
	UserServiceSearchUsersProcedure   = "/paysplit.v1.UserService/SearchUsers"
)

// UserServiceClient is a client for the paysplit.v1.UserService service.
type UserServiceClient interface {
	UpdateAccount(context.Context, *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error)
	DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error)
	SearchUsers(context.Context, *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error)
}

// NewUserServiceClient constructs a client for the paysplit.v1.UserService service.
// The JSON codec is always used; baseURL should include the scheme and host.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &userServiceClient{
		updateAccount: connect.NewClient[api.UpdateAccountRequest, api.UpdateAccountResponse](
			httpClient,
			baseURL+UserServiceUpdateAccountProcedure,
			opts...,
		),
		deleteAccount: connect.NewClient[api.DeleteAccountRequest, api.DeleteAccountResponse](
			httpClient,
			baseURL+UserServiceDeleteAccountProcedure,
			opts...,
		),
		searchUsers: connect.NewClient[api.SearchUsersRequest, api.SearchUsersResponse](
			httpClient,
			baseURL+UserServiceSearchUsersProcedure,
			opts...,
		),
	}
}

type userServiceClient struct {
	updateAccount *connect.Client[api.UpdateAccountRequest, api.UpdateAccountResponse]
	deleteAccount *connect.Client[api.DeleteAccountRequest, api.DeleteAccountResponse]
	searchUsers   *connect.Client[api.SearchUsersRequest, api.SearchUsersResponse]
}

func (c *userServiceClient) UpdateAccount(ctx context.Context, req *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	return c.updateAccount.CallUnary(ctx, req)
}

func (c *userServiceClient) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	return c.deleteAccount.CallUnary(ctx, req)
}

func (c *userServiceClient) SearchUsers(ctx context.Context, req *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error) {
	return c.searchUsers.CallUnary(ctx, req)
}

// UserServiceHandler is implemented by the server side of paysplit.v1.UserService.
type UserServiceHandler interface {
	UpdateAccount(context.Context, *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error)
	DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error)
	SearchUsers(context.Context, *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error)
}

// NewUserServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	userServiceUpdateAccountHandler := connect.NewUnaryHandler(
		UserServiceUpdateAccountProcedure,
		svc.UpdateAccount,
		opts...,
	)
	userServiceDeleteAccountHandler := connect.NewUnaryHandler(
		UserServiceDeleteAccountProcedure,
		svc.DeleteAccount,
		opts...,
	)
	userServiceSearchUsersHandler := connect.NewUnaryHandler(
		UserServiceSearchUsersProcedure,
		svc.SearchUsers,
		opts...,
	)
	return "/paysplit.v1.UserService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case UserServiceUpdateAccountProcedure:
			userServiceUpdateAccountHandler.ServeHTTP(w, r)
		case UserServiceDeleteAccountProcedure:
			userServiceDeleteAccountHandler.ServeHTTP(w, r)
		case UserServiceSearchUsersProcedure:
			userServiceSearchUsersHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedUserServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedUserServiceHandler struct{}

func (UnimplementedUserServiceHandler) UpdateAccount(context.Context, *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.UserService.UpdateAccount is not implemented"))
}

func (UnimplementedUserServiceHandler) DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.UserService.DeleteAccount is not implemented"))
}

func (UnimplementedUserServiceHandler) SearchUsers(context.Context, *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("paysplit.v1.UserService.SearchUsers is not implemented"))
}
