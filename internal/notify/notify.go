// Package notify fans a notification out to every configured channel.
//
// Delivery is best effort: a failing channel is logged and counted, and
// never affects the other channels or the operation that triggered it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/mmynk/paysplit/internal/metrics"
)

// Notification types carried in Metadata["type"].
const (
	TypeGroupInvite     = "GROUP_INVITE"
	TypeExpenseAdded    = "EXPENSE_ADDED"
	TypePaymentReceived = "PAYMENT_RECEIVED"
	TypeDebtReminder    = "DEBT_REMINDER"
)

// sendTimeout bounds a single asynchronous fan-out.
const sendTimeout = 30 * time.Second

// Channel is one delivery mechanism (in-app, email, ...).
type Channel interface {
	Name() string
	Send(ctx context.Context, memberID, message string, metadata map[string]any) error
}

// Notifier is what services depend on.
type Notifier interface {
	Notify(memberID, message string, metadata map[string]any)
}

// Dispatcher invokes its channels in order for every notification.
type Dispatcher struct {
	channels []Channel
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Send delivers to every channel and returns the aggregated failures.
func (d *Dispatcher) Send(ctx context.Context, memberID, message string, metadata map[string]any) error {
	var result *multierror.Error
	for _, ch := range d.channels {
		if err := ch.Send(ctx, memberID, message, metadata); err != nil {
			metrics.NotificationFailures.WithLabelValues(ch.Name()).Inc()
			result = multierror.Append(result, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return result.ErrorOrNil()
}

// Notify delivers in the background, logging failures.
// It returns immediately; Wait blocks until pending deliveries finish.
func (d *Dispatcher) Notify(memberID, message string, metadata map[string]any) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := d.Send(ctx, memberID, message, metadata); err != nil {
			slog.Warn("Notification delivery failed",
				"member_id", memberID,
				"type", metadata["type"],
				"error", err,
			)
		}
	}()
}

// Wait blocks until all notifications queued with Notify are delivered.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
