package sqlite

import (
	"context"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// CreateNotification persists a notification.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	storage.PrepareNotification(n)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, expense_id, group_id, actor_id, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.ExpenseID, n.GroupID, n.ActorID, n.Read, n.CreatedAt,
	)
	return wrapErr("insert notification", err)
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, f storage.NotificationFilter) ([]*models.Notification, error) {
	query := `SELECT id, user_id, type, title, message, expense_id, group_id, actor_id, read, created_at
		FROM notifications WHERE user_id = ?`
	if f.UnreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"

	rows, err := s.db.QueryContext(ctx, query, f.UserID, limitArg(f.Limit))
	if err != nil {
		return nil, wrapErr("list notifications", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.ExpenseID, &n.GroupID,
			&n.ActorID, &n.Read, &n.CreatedAt); err != nil {
			return nil, wrapErr("scan notification", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate notifications", err)
	}
	return notifications, nil
}

// MarkNotificationsRead marks the given notifications (or all when ids is empty) as read.
func (s *SQLiteStore) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int, error) {
	query := "UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0"
	args := []any{userID}
	if len(ids) > 0 {
		query += " AND id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapErr("mark notifications read", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, wrapErr("rows affected", err)
	}
	return int(n), nil
}

// CountUnread counts a user's unread notifications.
func (s *SQLiteStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0", userID,
	).Scan(&count)
	if err != nil {
		return 0, wrapErr("count unread", err)
	}
	return count, nil
}
