package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// The user ID doubles as the member identity inside groups and expenses.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the lowercased handle shown to other members (unique).
	Username string

	// Email is the user's email address (unique).
	// Used for login, member invites and email notifications.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// RefreshToken is the currently valid refresh token, empty after logout.
	RefreshToken string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last account change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
