package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/pkg/api"
)

func TestUpdateAccount(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	env.register(t, "bob")

	_, err := env.users.UpdateAccount(ctx, as(alice, &api.UpdateAccountRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.users.UpdateAccount(ctx, as(alice, &api.UpdateAccountRequest{Email: "bob@example.com"}))
	assertCode(t, err, connect.CodeAlreadyExists)

	resp, err := env.users.UpdateAccount(ctx, as(alice, &api.UpdateAccountRequest{Username: "Alice_K"}))
	if err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	if resp.Msg.User.Username != "alice_k" || resp.Msg.User.Email != "alice@example.com" {
		t.Errorf("unexpected user after update: %+v", resp.Msg.User)
	}
}

func TestSearchUsers(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	env.register(t, "bob")
	env.register(t, "alina")

	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"ALI", []string{"alice", "alina"}},
		{"bob@", []string{"bob"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := env.users.SearchUsers(ctx, as(alice, &api.SearchUsersRequest{Query: tt.query}))
			if err != nil {
				t.Fatalf("SearchUsers failed: %v", err)
			}
			if len(resp.Msg.Users) != len(tt.want) {
				t.Fatalf("expected %v, got %d users", tt.want, len(resp.Msg.Users))
			}
			for i, u := range resp.Msg.Users {
				if u.Username != tt.want[i] {
					t.Errorf("user %d = %s, want %s", i, u.Username, tt.want[i])
				}
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	if _, err := env.users.DeleteAccount(ctx, as(alice, &api.DeleteAccountRequest{})); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	// The access token outlives the account.
	_, err := env.auth.GetCurrentUser(ctx, as(alice, &api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeNotFound)
}
