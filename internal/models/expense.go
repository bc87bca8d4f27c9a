package models

import "github.com/shopspring/decimal"

// Expense is a payment fronted by one member and split across members.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the owning group.
	GroupID string

	// Description is non-empty free text (e.g., "Dinner", "Cab to airport").
	Description string

	// Amount is the total cost, always positive.
	Amount decimal.Decimal

	// PayerID is the member who paid the full amount up front.
	PayerID string

	// SplitDetails maps member ID to the amount that member owes.
	// The values are not required to sum to Amount.
	SplitDetails map[string]decimal.Decimal

	// SettledBy lists members who have settled their share, in settlement order.
	// Members are only ever appended.
	SettledBy []string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// IsSettledBy reports whether userID has settled their share.
func (e *Expense) IsSettledBy(userID string) bool {
	for _, s := range e.SettledBy {
		if s == userID {
			return true
		}
	}
	return false
}

// ShareOf returns what userID owes on this expense and whether they are
// part of the split at all.
func (e *Expense) ShareOf(userID string) (decimal.Decimal, bool) {
	share, ok := e.SplitDetails[userID]
	return share, ok
}
