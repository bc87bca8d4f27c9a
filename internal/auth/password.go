package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/models"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid password", apperr.ErrUnauthenticated)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	ErrAccountExists      = fmt.Errorf("%w: email or username already registered", apperr.ErrAlreadyExists)
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *PasswordAuthenticator) WithCost(cost int) *PasswordAuthenticator {
	a.cost = cost
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, email, credential string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || credential == "" {
		return nil, apperr.Validation("username, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email address %q", email)
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	// Check for an existing account before paying for the hash
	if _, err := a.storage.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := a.storage.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, email, string(hashedPassword))

	// The unique indexes still catch a concurrent registration.
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the login and password, returning the user if valid.
// An unknown login is reported as not found, a wrong password as unauthenticated.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, login, credential string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || credential == "" {
		return nil, apperr.Validation("login and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = a.storage.GetUserByEmail(ctx, login)
	} else {
		user, err = a.storage.GetUserByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
