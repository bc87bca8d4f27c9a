// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/paysplit/internal/models"
)

// UserStore persists user accounts.
// Lookups of missing users return an error wrapping apperr.ErrNotFound.
type UserStore interface {
	// CreateUser inserts a user. Duplicate email or username returns
	// an error wrapping apperr.ErrAlreadyExists.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// SearchUsers matches query case-insensitively against username and email.
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)

	UpdateUser(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, userID, token string) error
	DeleteUser(ctx context.Context, id string) error
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists a new group with its initial members.
	// The group.ID and CreatedAt fields are populated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with members and expenses loaded.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group userID belongs to, newest
	// first, with members and expenses loaded.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// ListGroups returns every group with members and expenses loaded.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// AddGroupMember appends userID to the group's members.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// DeleteGroup removes the group and cascades to its expenses.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore persists expenses and their settlement state.
type ExpenseStore interface {
	// CreateExpense persists the expense with its split snapshot.
	// The expense.ID and CreatedAt fields are populated when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup returns the group's expenses, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// ListExpensesByMember returns every expense whose split includes userID.
	ListExpensesByMember(ctx context.Context, userID string) ([]models.Expense, error)

	// AddExpenseSettlement appends memberID to the expense's SettledBy.
	// Adding a member twice is a no-op.
	AddExpenseSettlement(ctx context.Context, expenseID, memberID string) error
}

// PaymentStore persists payment gateway orders.
type PaymentStore interface {
	CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) error
	GetPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	MarkPaymentOrderVerified(ctx context.Context, orderID, paymentID, groupID string) error
}

// Store defines the full set of storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	PaymentStore

	// Close releases any resources held by the store.
	Close() error
}
