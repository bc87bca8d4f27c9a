package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/models"
)

// CreatePaymentOrder records a gateway order.
func (s *SQLiteStore) CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) error {
	now := time.Now().Unix()
	if order.CreatedAt == 0 {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = models.PaymentOrderCreated
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_orders
		 (id, user_id, amount, currency, receipt, status, payment_id, group_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.Amount, order.Currency, order.Receipt,
		string(order.Status), order.PaymentID, order.GroupID, order.CreatedAt, order.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: payment order %s", apperr.ErrAlreadyExists, order.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert payment order: %w", err)
	}
	return nil
}

// GetPaymentOrder retrieves a payment order by its gateway ID.
func (s *SQLiteStore) GetPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	order := &models.PaymentOrder{}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, currency, receipt, status, payment_id, group_id, created_at, updated_at
		 FROM payment_orders WHERE id = ?`,
		orderID,
	).Scan(
		&order.ID, &order.UserID, &order.Amount, &order.Currency, &order.Receipt,
		&status, &order.PaymentID, &order.GroupID, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("payment order", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment order: %w", err)
	}
	order.Status = models.PaymentOrderStatus(status)
	return order, nil
}

// MarkPaymentOrderVerified stores the verified payment and the group it settled.
// Only an order still in the created state can be verified; a second call
// returns an error wrapping apperr.ErrAlreadyExists.
func (s *SQLiteStore) MarkPaymentOrderVerified(ctx context.Context, orderID, paymentID, groupID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_orders SET status = ?, payment_id = ?, group_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(models.PaymentOrderVerified), paymentID, groupID, time.Now().Unix(),
		orderID, string(models.PaymentOrderCreated),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetPaymentOrder(ctx, orderID); err != nil {
		return err
	}
	return fmt.Errorf("%w: payment order %s is already verified", apperr.ErrAlreadyExists, orderID)
}
