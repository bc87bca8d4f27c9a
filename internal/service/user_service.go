package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/storage"
	"github.com/mmynk/paysplit/pkg/api"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

// searchLimit caps the number of users SearchUsers returns.
const searchLimit = 10

// UserService implements account management and member search.
type UserService struct {
	apiconnect.UnimplementedUserServiceHandler
	users  storage.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users storage.UserStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UpdateAccount changes the caller's username and/or email.
func (s *UserService) UpdateAccount(ctx context.Context, req *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Msg.Username))
	email := strings.TrimSpace(req.Msg.Email)
	if username == "" && email == "" {
		return nil, apperr.Validation("at least one field (username or email) is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email address %q", email)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("UpdateAccount failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info("Account updated", "user_id", userID)
	return connect.NewResponse(&api.UpdateAccountResponse{User: toAPIUser(user)}), nil
}

// DeleteAccount removes the caller's account. Groups and expenses keep
// referring to the deleted member ID.
func (s *UserService) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return nil, err
	}

	s.logger.Info("Account deleted", "user_id", userID)
	return connect.NewResponse(&api.DeleteAccountResponse{}), nil
}

// SearchUsers finds users by username or email substring.
func (s *UserService) SearchUsers(ctx context.Context, req *connect.Request[api.SearchUsersRequest]) (*connect.Response[api.SearchUsersResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	resp := &api.SearchUsersResponse{Users: []*api.User{}}
	query := strings.TrimSpace(req.Msg.Query)
	if query == "" {
		return connect.NewResponse(resp), nil
	}

	users, err := s.users.SearchUsers(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		resp.Users = append(resp.Users, toAPIUser(user))
	}

	return connect.NewResponse(resp), nil
}
