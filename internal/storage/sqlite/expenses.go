package sqlite

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/models"
)

// CreateExpense inserts an expense and its split snapshot.
// Generates a UUID and timestamp if not already set.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, amount, payer_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PayerID, expense.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return apperr.NotFound("group", expense.GroupID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	// Insert in member order so the table contents are deterministic.
	members := make([]string, 0, len(expense.SplitDetails))
	for member := range expense.SplitDetails {
		members = append(members, member)
	}
	sort.Strings(members)

	for _, member := range members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, member_id, amount) VALUES (?, ?, ?)`,
			expense.ID, member, expense.SplitDetails[member],
		)
		if err != nil {
			return fmt.Errorf("failed to insert split for %s: %w", member, err)
		}
	}

	for _, member := range expense.SettledBy {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO expense_settlements (expense_id, member_id, settled_at) VALUES (?, ?, ?)`,
			expense.ID, member, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement for %s: %w", member, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpensesByGroup retrieves a group's expenses, oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.loadExpenses(ctx, `WHERE group_id = ?`, groupID)
}

// ListExpensesByMember retrieves every expense whose split includes the user.
func (s *SQLiteStore) ListExpensesByMember(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.loadExpenses(ctx,
		`WHERE id IN (SELECT expense_id FROM expense_splits WHERE member_id = ?)`, userID)
}

// AddExpenseSettlement records that memberID settled their share.
// Settling twice keeps the original entry.
func (s *SQLiteStore) AddExpenseSettlement(ctx context.Context, expenseID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO expense_settlements (expense_id, member_id, settled_at) VALUES (?, ?, ?)`,
		expenseID, memberID, time.Now().Unix(),
	)
	if isForeignKeyViolation(err) {
		return apperr.NotFound("expense", expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to settle expense %s: %w", expenseID, err)
	}
	return nil
}

// loadExpenses runs the expense query filtered by where, then loads splits
// and settlements for the matched rows in two follow-up queries.
func (s *SQLiteStore) loadExpenses(ctx context.Context, where string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, payer_id, created_at FROM expenses `+where+
			` ORDER BY created_at, rowid`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PayerID, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.SplitDetails = map[string]decimal.Decimal{}
		e.SettledBy = []string{}
		expenses = append(expenses, e)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	index := make(map[string]int, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		index[e.ID] = i
		ids[i] = e.ID
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT expense_id, member_id, amount FROM expense_splits
		 WHERE expense_id IN (`+placeholders(len(ids))+`)`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	for rows.Next() {
		var expenseID, memberID string
		var amount decimal.Decimal
		if err := rows.Scan(&expenseID, &memberID, &amount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		expenses[index[expenseID]].SplitDetails[memberID] = amount
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating splits: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT expense_id, member_id FROM expense_settlements
		 WHERE expense_id IN (`+placeholders(len(ids))+`)
		 ORDER BY settled_at, rowid`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	for rows.Next() {
		var expenseID, memberID string
		if err := rows.Scan(&expenseID, &memberID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		i := index[expenseID]
		expenses[i].SettledBy = append(expenses[i].SettledBy, memberID)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating settlements: %w", err)
	}

	return expenses, nil
}
