package notify

import (
	"context"
	"time"

	"github.com/mmynk/paysplit/internal/realtime"
)

// InAppChannel pushes a "notification" event to the member's realtime room.
type InAppChannel struct {
	publisher realtime.Publisher
}

// NewInAppChannel creates an in-app channel over publisher.
func NewInAppChannel(publisher realtime.Publisher) *InAppChannel {
	return &InAppChannel{publisher: publisher}
}

func (c *InAppChannel) Name() string { return "in_app" }

func (c *InAppChannel) Send(ctx context.Context, memberID, message string, metadata map[string]any) error {
	c.publisher.Publish(memberID, realtime.Event{
		Type: realtime.EventNotification,
		Payload: map[string]any{
			"message":   message,
			"data":      metadata,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
	return nil
}
