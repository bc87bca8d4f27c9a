package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/mmynk/paysplit/internal/models"
)

// UserLookup resolves a member to the account holding their email address.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SMTPSettings holds outgoing mail settings.
type SMTPSettings struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailChannel mails the notification to the member's address.
type EmailChannel struct {
	users    UserLookup
	settings SMTPSettings
	send     func(e *email.Email) error
}

// NewEmailChannel creates an email channel sending through the SMTP server.
func NewEmailChannel(users UserLookup, settings SMTPSettings) *EmailChannel {
	c := &EmailChannel{users: users, settings: settings}
	c.send = func(e *email.Email) error {
		addr := fmt.Sprintf("%s:%s", settings.Host, settings.Port)
		auth := smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)
		return e.Send(addr, auth)
	}
	return c
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, memberID, message string, metadata map[string]any) error {
	user, err := c.users.GetUserByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to look up recipient: %w", err)
	}

	e := email.NewEmail()
	e.From = c.settings.From
	e.To = []string{user.Email}
	e.Subject = subjectFor(metadata)
	e.Text = []byte(fmt.Sprintf("Hi %s,\n\n%s\n\nPaySplit", user.Username, message))

	if err := c.send(e); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("Email sent", "member_id", memberID, "subject", e.Subject)
	return nil
}

func subjectFor(metadata map[string]any) string {
	switch metadata["type"] {
	case TypeGroupInvite:
		return "You were added to a group"
	case TypeExpenseAdded:
		return "New expense in your group"
	case TypePaymentReceived:
		return "You received a payment"
	case TypeDebtReminder:
		return "You have outstanding balances"
	default:
		return "PaySplit notification"
	}
}
