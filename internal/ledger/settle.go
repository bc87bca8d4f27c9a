package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/mmynk/paysplit/internal/models"
)

// ExpenseStore is the slice of persistence SettleDebt needs.
type ExpenseStore interface {
	// ListExpensesByGroup returns every expense of the group.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// AddExpenseSettlement appends memberID to the expense's SettledBy.
	AddExpenseSettlement(ctx context.Context, expenseID, memberID string) error
}

// SettleResult reports what SettleDebt changed.
type SettleResult struct {
	// Settled is the number of expenses successfully marked settled.
	Settled int

	// Expenses are the expenses that were settled, SettledBy already updated.
	Expenses []models.Expense
}

// Outstanding returns the expenses memberID still owes on: someone else
// paid, memberID is in the split, and memberID has not settled.
func Outstanding(expenses []models.Expense, memberID string) []models.Expense {
	var pending []models.Expense
	for _, expense := range expenses {
		if expense.PayerID == memberID {
			continue
		}
		if _, owes := expense.ShareOf(memberID); !owes {
			continue
		}
		if expense.IsSettledBy(memberID) {
			continue
		}
		pending = append(pending, expense)
	}
	return pending
}

// SettleDebt marks memberID settled on every outstanding expense of the group.
//
// Each expense is persisted independently and concurrently. A failed
// persist does not undo the others: the result counts the successes and
// the returned error aggregates the failures. No outstanding expenses is
// not an error. The caller is responsible for having verified payment;
// amounts are not reconciled here.
func SettleDebt(ctx context.Context, store ExpenseStore, groupID, memberID string) (SettleResult, error) {
	expenses, err := store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return SettleResult{}, fmt.Errorf("failed to list expenses: %w", err)
	}

	pending := Outstanding(expenses, memberID)
	if len(pending) == 0 {
		return SettleResult{}, nil
	}

	var (
		g      multierror.Group
		mu     sync.Mutex
		result SettleResult
	)
	for _, expense := range pending {
		g.Go(func() error {
			if err := store.AddExpenseSettlement(ctx, expense.ID, memberID); err != nil {
				return fmt.Errorf("failed to settle expense %s: %w", expense.ID, err)
			}
			expense.SettledBy = append(append([]string(nil), expense.SettledBy...), memberID)

			mu.Lock()
			result.Settled++
			result.Expenses = append(result.Expenses, expense)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait().ErrorOrNil(); err != nil {
		return result, err
	}
	return result, nil
}
