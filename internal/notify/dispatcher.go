// Package notify builds user notifications, stores them and pushes them to
// the recipients' live connections.
//
// Delivery is best effort: failures are logged and counted, never returned,
// so a broken notification path cannot fail the operation that triggered it.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/websocket"
)

// Pusher delivers a message to a user's open connections.
type Pusher interface {
	SendTo(userID string, msg websocket.Message) (int, error)
}

// Event is the live payload pushed for a stored notification.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ExpenseID string `json:"expense_id,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Dispatcher persists notifications and then pushes them.
type Dispatcher struct {
	store  storage.NotificationStore
	pusher Pusher
}

// NewDispatcher creates a Dispatcher. pusher may be nil to only persist.
func NewDispatcher(store storage.NotificationStore, pusher Pusher) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher}
}

// deliveryTimeout bounds how long Notify may hold up the operation that
// triggered it.
const deliveryTimeout = 5 * time.Second

// Notify stores and pushes each notification. Notifications addressed to
// their own actor are skipped. Delivery outlives the caller's cancellation:
// the change being reported is already committed.
func (d *Dispatcher) Notify(ctx context.Context, notifications ...*models.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	for _, n := range notifications {
		if n.UserID == "" || n.UserID == n.ActorID {
			continue
		}

		if err := d.store.CreateNotification(ctx, n); err != nil {
			slog.Error("Failed to store notification", "user_id", n.UserID, "type", n.Type, "error", err)
			metrics.NotificationFailures.WithLabelValues("store").Inc()
			continue
		}

		if d.pusher == nil {
			continue
		}
		_, err := d.pusher.SendTo(n.UserID, websocket.Message{Type: "notification", Payload: Event{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			ExpenseID: n.ExpenseID,
			GroupID:   n.GroupID,
			ActorID:   n.ActorID,
			CreatedAt: n.CreatedAt,
		}})
		if err != nil {
			slog.Warn("Failed to push notification", "user_id", n.UserID, "notification_id", n.ID, "error", err)
			metrics.NotificationFailures.WithLabelValues("push").Inc()
		}
	}
}
