package service

import (
	"github.com/mmynk/paysplit/internal/ledger"
	"github.com/mmynk/paysplit/internal/models"
	"github.com/mmynk/paysplit/pkg/api"
)

func toAPIUser(user *models.User) *api.User {
	return &api.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// toAPIMember falls back to the bare ID for deleted accounts.
func toAPIMember(id string, users map[string]*models.User) *api.Member {
	member := &api.Member{ID: id}
	if user, ok := users[id]; ok {
		member.Username = user.Username
		member.Email = user.Email
	}
	return member
}

func toAPIExpense(expense *models.Expense) *api.Expense {
	return &api.Expense{
		ID:           expense.ID,
		GroupID:      expense.GroupID,
		Description:  expense.Description,
		Amount:       expense.Amount,
		PayerID:      expense.PayerID,
		SplitDetails: expense.SplitDetails,
		SettledBy:    expense.SettledBy,
		CreatedAt:    expense.CreatedAt,
	}
}

// toAPIGroup converts a fully loaded group as seen by callerID.
func toAPIGroup(group *models.Group, users map[string]*models.User, callerID string) *api.Group {
	members := make([]*api.Member, len(group.Members))
	for i, id := range group.Members {
		members[i] = toAPIMember(id, users)
	}

	expenses := make([]*api.Expense, len(group.Expenses))
	for i := range group.Expenses {
		expenses[i] = toAPIExpense(&group.Expenses[i])
	}

	return &api.Group{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Members:     members,
		Expenses:    expenses,
		CreatedBy:   group.CreatedBy,
		CreatedAt:   group.CreatedAt,
		MyBalance:   ledger.ComputeBalance(group, callerID),
	}
}
