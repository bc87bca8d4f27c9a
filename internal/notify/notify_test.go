package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jordan-wright/email"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/models"
	"github.com/mmynk/paysplit/internal/realtime"
)

type recordingChannel struct {
	name string
	err  error

	mu       sync.Mutex
	messages []string
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(ctx context.Context, memberID, message string, metadata map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, memberID+":"+message)
	return c.err
}

func (c *recordingChannel) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func TestDispatcher_FailingChannelDoesNotBlockOthers(t *testing.T) {
	broken := &recordingChannel{name: "broken", err: errors.New("smtp down")}
	ok := &recordingChannel{name: "ok"}
	d := NewDispatcher(broken, ok)

	err := d.Send(context.Background(), "alice", "hello", nil)
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Errorf("expected aggregated error from broken channel, got %v", err)
	}
	if got := ok.received(); len(got) != 1 || got[0] != "alice:hello" {
		t.Errorf("expected healthy channel to deliver, got %v", got)
	}
}

func TestDispatcher_NotifyIsAsync(t *testing.T) {
	ch := &recordingChannel{name: "rec", err: errors.New("ignored")}
	d := NewDispatcher(ch)

	for _, member := range []string{"alice", "bob", "carol"} {
		d.Notify(member, "expense added", map[string]any{"type": TypeExpenseAdded})
	}
	d.Wait()

	if got := ch.received(); len(got) != 3 {
		t.Errorf("expected 3 deliveries, got %v", got)
	}
}

type fakePublisher struct {
	events map[string][]realtime.Event
}

func (p *fakePublisher) Publish(memberID string, event realtime.Event) {
	if p.events == nil {
		p.events = map[string][]realtime.Event{}
	}
	p.events[memberID] = append(p.events[memberID], event)
}

func TestInAppChannel(t *testing.T) {
	pub := &fakePublisher{}
	ch := NewInAppChannel(pub)

	if err := ch.Send(context.Background(), "bob", "You were added", map[string]any{"type": TypeGroupInvite}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	events := pub.events["bob"]
	if len(events) != 1 || events[0].Type != realtime.EventNotification {
		t.Fatalf("unexpected events: %+v", events)
	}
	payload := events[0].Payload.(map[string]any)
	if payload["message"] != "You were added" {
		t.Errorf("message = %v", payload["message"])
	}
}

type userMap map[string]*models.User

func (m userMap) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user", id)
}

func TestEmailChannel(t *testing.T) {
	users := userMap{"u1": {ID: "u1", Username: "alice", Email: "alice@example.com"}}
	ch := NewEmailChannel(users, SMTPSettings{From: "noreply@paysplit.app"})

	var sent []*email.Email
	ch.send = func(e *email.Email) error {
		sent = append(sent, e)
		return nil
	}

	err := ch.Send(context.Background(), "u1", `New expense "Dinner" added in Trip`, map[string]any{"type": TypeExpenseAdded})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sent))
	}
	e := sent[0]
	if e.To[0] != "alice@example.com" || e.From != "noreply@paysplit.app" {
		t.Errorf("unexpected envelope: to=%v from=%s", e.To, e.From)
	}
	if e.Subject != "New expense in your group" {
		t.Errorf("subject = %q", e.Subject)
	}
	if !strings.Contains(string(e.Text), "Dinner") {
		t.Errorf("body missing message: %s", e.Text)
	}

	if err := ch.Send(context.Background(), "ghost", "hi", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown member, got %v", err)
	}
}
