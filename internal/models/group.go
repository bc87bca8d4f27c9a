package models

// Group represents a set of members who share expenses.
// A group starts with exactly one member, its creator, and only grows.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Description is optional free text.
	Description string

	// Members is the list of member user IDs in join order.
	Members []string

	// Expenses are the group's expenses, oldest first.
	// Only populated by store calls that load the full group.
	Expenses []Expense

	// CreatedBy is the founding member; only they may add members.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
