package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/models"
)

// CreateGroup inserts a new group and its initial members.
// Generates a UUID and timestamp if not already set.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, member := range group.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`,
			group.ID, member, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member %s: %w", member, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its members and expenses.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	if err := s.hydrateGroups(ctx, []*models.Group{group}); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByMember retrieves all groups the user belongs to, newest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.listGroups(ctx,
		`WHERE id IN (SELECT group_id FROM group_members WHERE user_id = ?)`, userID)
}

// ListGroups retrieves every group, newest first.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.listGroups(ctx, "")
}

func (s *SQLiteStore) listGroups(ctx context.Context, where string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM groups `+where+
			` ORDER BY created_at DESC, rowid DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	if err := s.hydrateGroups(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// hydrateGroups loads members and expenses for the given groups.
// Rows from the previous query must already be closed.
func (s *SQLiteStore) hydrateGroups(ctx context.Context, groups []*models.Group) error {
	if len(groups) == 0 {
		return nil
	}

	byID := make(map[string]*models.Group, len(groups))
	ids := make([]string, len(groups))
	for i, g := range groups {
		byID[g.ID] = g
		ids[i] = g.ID
		g.Members = []string{}
		g.Expenses = []models.Expense{}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id FROM group_members
		 WHERE group_id IN (`+placeholders(len(ids))+`)
		 ORDER BY joined_at, rowid`,
		toArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to query members: %w", err)
	}
	for rows.Next() {
		var groupID, userID string
		if err := rows.Scan(&groupID, &userID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan member: %w", err)
		}
		byID[groupID].Members = append(byID[groupID].Members, userID)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("error iterating members: %w", err)
	}

	expenses, err := s.loadExpenses(ctx,
		`WHERE group_id IN (`+placeholders(len(ids))+`)`, toArgs(ids)...)
	if err != nil {
		return err
	}
	for _, e := range expenses {
		byID[e.GroupID].Expenses = append(byID[e.GroupID].Expenses, e)
	}
	return nil
}

// AddGroupMember appends a user to the group's member list.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`,
		groupID, userID, time.Now().Unix(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s is already a member", apperr.ErrAlreadyExists, userID)
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("group", groupID)
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// DeleteGroup removes a group. Members, expenses, splits and settlements
// go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireAffected(res, "group", groupID)
}
