package ledger

import (
	"context"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// ListNotifications returns the caller's notifications, newest first.
func (l *Ledger) ListNotifications(ctx context.Context, callerID string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	return l.store.ListNotifications(ctx, storage.NotificationFilter{
		UserID:     callerID,
		UnreadOnly: unreadOnly,
		Limit:      pageSize(limit),
	})
}

func (l *Ledger) UnreadCount(ctx context.Context, callerID string) (int, error) {
	return l.store.CountUnread(ctx, callerID)
}

// MarkRead marks the given notifications of the caller as read. Ids that are
// not the caller's are ignored.
func (l *Ledger) MarkRead(ctx context.Context, callerID string, ids []string) (int, error) {
	ids = uniqueIDs(ids...)
	if len(ids) == 0 {
		return 0, errs.InvalidInput("notification ids are required")
	}
	return l.store.MarkNotificationsRead(ctx, callerID, ids)
}

func (l *Ledger) MarkAllRead(ctx context.Context, callerID string) (int, error) {
	return l.store.MarkNotificationsRead(ctx, callerID, nil)
}
