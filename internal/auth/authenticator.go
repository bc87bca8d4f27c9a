// Package auth issues and validates session tokens and verifies credentials.
package auth

import (
	"context"

	"github.com/mmynk/paysplit/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given username, email and credential.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, username, email, credential string) (*models.User, error)

	// Authenticate verifies the credential of the user identified by login,
	// which is either an email address or a username.
	Authenticate(ctx context.Context, login, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   string
	Username string
	Email    string
}
