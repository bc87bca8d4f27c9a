// Package service implements the PaySplit Connect services.
//
// Handlers return errors from internal/apperr; middleware.ErrorInterceptor
// turns them into Connect codes, so handlers never build connect.Errors
// themselves.
package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/internal/auth"
	"github.com/mmynk/paysplit/internal/middleware"
	"github.com/mmynk/paysplit/internal/notify"
	"github.com/mmynk/paysplit/internal/payment"
	"github.com/mmynk/paysplit/internal/realtime"
	"github.com/mmynk/paysplit/internal/storage"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

// PublicProcedures can be called without an access token.
var PublicProcedures = []string{
	apiconnect.AuthServiceRegisterProcedure,
	apiconnect.AuthServiceLoginProcedure,
	apiconnect.AuthServiceRefreshProcedure,
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Gateway       payment.Gateway
	Publisher     realtime.Publisher
	Notifier      notify.Notifier
	Currency      string
	Logger        *slog.Logger
}

// Services bundles every RPC implementation.
type Services struct {
	Auth      *AuthService
	User      *UserService
	Group     *GroupService
	Payment   *PaymentService
	Analytics *AnalyticsService

	jwt *auth.JWTManager
}

// New constructs all services from deps.
func New(deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Services{
		Auth:      NewAuthService(deps.Authenticator, deps.JWT, deps.Store, deps.Logger),
		User:      NewUserService(deps.Store, deps.Logger),
		Group:     NewGroupService(deps.Store, deps.Publisher, deps.Notifier),
		Payment:   NewPaymentService(deps.Store, deps.Gateway, deps.Publisher, deps.Notifier, deps.Currency),
		Analytics: NewAnalyticsService(deps.Store),
		jwt:       deps.JWT,
	}
}

// Register mounts every service handler behind the interceptor chain.
// Interceptors run outermost first: logging, metrics, error translation, auth.
func (s *Services) Register(mount func(path string, handler http.Handler)) {
	opts := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(),
		middleware.ErrorInterceptor(),
		middleware.RequireAuth(s.jwt, PublicProcedures...),
	)

	mount(apiconnect.NewAuthServiceHandler(s.Auth, opts))
	mount(apiconnect.NewUserServiceHandler(s.User, opts))
	mount(apiconnect.NewGroupServiceHandler(s.Group, opts))
	mount(apiconnect.NewPaymentServiceHandler(s.Payment, opts))
	mount(apiconnect.NewAnalyticsServiceHandler(s.Analytics, opts))
}

// callerID returns the authenticated member making the request.
func callerID(ctx context.Context) (string, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return "", auth.ErrMissingToken
	}
	return id.UserID, nil
}

// callerIdentity is callerID for handlers that also need the caller's name.
func callerIdentity(ctx context.Context) (auth.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return auth.Identity{}, auth.ErrMissingToken
	}
	return id, nil
}
