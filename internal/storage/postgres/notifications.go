package postgres

import (
	"context"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

func (s *Storage) CreateNotification(ctx context.Context, n *models.Notification) error {
	storage.PrepareNotification(n)

	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, expense_id, group_id, actor_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.ExpenseID, n.GroupID, n.ActorID, n.Read, n.CreatedAt)
	return wrapErr("insert notification", err)
}

func (s *Storage) ListNotifications(ctx context.Context, f storage.NotificationFilter) ([]*models.Notification, error) {
	query := `SELECT id, user_id, type, title, message, expense_id, group_id, actor_id, read, created_at
		FROM notifications WHERE user_id = $1`
	if f.UnreadOnly {
		query += " AND NOT read"
	}
	query += " ORDER BY created_at DESC, id LIMIT $2"

	rows, err := s.db.Query(ctx, query, f.UserID, limitArg(f.Limit))
	if err != nil {
		return nil, wrapErr("list notifications", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n := &models.Notification{}
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.ExpenseID, &n.GroupID,
			&n.ActorID, &n.Read, &n.CreatedAt); err != nil {
			return nil, wrapErr("scan notification", err)
		}
		n.Type = models.NotificationType(typ)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate notifications", err)
	}
	return notifications, nil
}

func (s *Storage) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int, error) {
	query := "UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read"
	args := []any{userID}
	if len(ids) > 0 {
		query += " AND id = ANY($2)"
		args = append(args, ids)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, wrapErr("mark notifications read", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Storage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read", userID).Scan(&count)
	if err != nil {
		return 0, wrapErr("count unread", err)
	}
	return count, nil
}
