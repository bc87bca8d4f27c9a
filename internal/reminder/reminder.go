// Package reminder periodically nudges members who owe money.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/paysplit/internal/ledger"
	"github.com/mmynk/paysplit/internal/metrics"
	"github.com/mmynk/paysplit/internal/models"
	"github.com/mmynk/paysplit/internal/notify"
)

// DefaultSchedule runs once a day at 09:00 server time.
const DefaultSchedule = "0 9 * * *"

// runTimeout bounds a single scheduled pass.
const runTimeout = 5 * time.Minute

// GroupLister is the slice of persistence the reminder needs.
type GroupLister interface {
	ListGroups(ctx context.Context) ([]*models.Group, error)
}

// Scheduler sends DEBT_REMINDER notifications on a cron schedule.
type Scheduler struct {
	groups   GroupLister
	notifier notify.Notifier
	cron     *cron.Cron
}

func New(groups GroupLister, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		groups:   groups,
		notifier: notifier,
		cron:     cron.New(),
	}
}

// Start schedules Run. An empty schedule means DefaultSchedule.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		sent, err := s.Run(ctx)
		if err != nil {
			slog.Error("Debt reminder run failed", "error", err)
			return
		}
		slog.Info("Debt reminders sent", "count", sent)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	slog.Info("Reminder scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running pass to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run notifies every member with a negative balance, once per group.
// It returns the number of reminders sent.
func (s *Scheduler) Run(ctx context.Context) (int, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}

	sent := 0
	for _, group := range groups {
		for _, b := range ledger.GroupBalances(group) {
			if !b.Balance.IsNegative() {
				continue
			}
			owed := b.Balance.Neg()
			s.notifier.Notify(b.MemberID,
				fmt.Sprintf("Reminder: you owe %s in %s", owed.StringFixed(2), group.Name),
				map[string]any{"type": notify.TypeDebtReminder, "groupId": group.ID, "amount": owed.String()},
			)
			metrics.RemindersSent.Inc()
			sent++
		}
	}
	return sent, nil
}
