package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/auth"
	"github.com/mmynk/paysplit/internal/models"
	"github.com/mmynk/paysplit/internal/storage"
	"github.com/mmynk/paysplit/pkg/api"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	apiconnect.UnimplementedAuthServiceHandler
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// issueTokens creates a token pair and stores the refresh token as the
// only one valid for the user.
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*api.AuthResponse, error) {
	pair, err := s.jwtManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &api.AuthResponse{
		User:         toAPIUser(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email, "username", req.Msg.Username)

	user, err := s.authenticator.Register(ctx, req.Msg.Username, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, err
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		s.logger.Error("Failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "username", user.Username)
	return connect.NewResponse(resp), nil
}

// Login authenticates a user by email or username and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Login request", "login", req.Msg.Login)

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Login, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "login", req.Msg.Login, "error", err)
		return nil, err
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		s.logger.Error("Failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return connect.NewResponse(resp), nil
}

// Refresh exchanges the current refresh token for a new pair.
// Each refresh token works once; presenting a rotated-out token fails.
func (s *AuthService) Refresh(ctx context.Context, req *connect.Request[api.RefreshRequest]) (*connect.Response[api.AuthResponse], error) {
	if req.Msg.RefreshToken == "" {
		return nil, apperr.Validation("refresh token is required")
	}

	claims, err := s.jwtManager.Validate(req.Msg.RefreshToken, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if user.RefreshToken == "" || user.RefreshToken != req.Msg.RefreshToken {
		s.logger.Warn("Refresh token reuse rejected", "user_id", user.ID)
		return nil, auth.ErrInvalidToken
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tokens refreshed", "user_id", user.ID)
	return connect.NewResponse(resp), nil
}

// Logout revokes the caller's refresh token. Access tokens stay valid
// until they expire.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		return nil, err
	}

	s.logger.Info("User logged out", "user_id", userID)
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}
