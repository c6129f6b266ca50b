package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

type notificationDoc struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Type      string `bson:"type"`
	Title     string `bson:"title"`
	Message   string `bson:"message"`
	ExpenseID string `bson:"expense_id,omitempty"`
	GroupID   string `bson:"group_id,omitempty"`
	ActorID   string `bson:"actor_id,omitempty"`
	Read      bool   `bson:"read"`
	CreatedAt int64  `bson:"created_at"`
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	storage.PrepareNotification(n)
	_, err := s.col(colNotifications).InsertOne(ctx, &notificationDoc{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		ExpenseID: n.ExpenseID,
		GroupID:   n.GroupID,
		ActorID:   n.ActorID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	})
	return wrapErr("insert notification", err)
}

func (s *Store) ListNotifications(ctx context.Context, f storage.NotificationFilter) ([]*models.Notification, error) {
	filter := bson.M{"user_id": f.UserID}
	if f.UnreadOnly {
		filter["read"] = false
	}

	cur, err := s.col(colNotifications).Find(ctx, filter, findOpts(newestFirst, 0, f.Limit))
	if err != nil {
		return nil, wrapErr("list notifications", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode notifications", err)
	}

	notifications := make([]*models.Notification, 0, len(docs))
	for _, d := range docs {
		notifications = append(notifications, &models.Notification{
			ID:        d.ID,
			UserID:    d.UserID,
			Type:      models.NotificationType(d.Type),
			Title:     d.Title,
			Message:   d.Message,
			ExpenseID: d.ExpenseID,
			GroupID:   d.GroupID,
			ActorID:   d.ActorID,
			Read:      d.Read,
			CreatedAt: d.CreatedAt,
		})
	}
	return notifications, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int, error) {
	filter := bson.M{"user_id": userID, "read": false}
	if len(ids) > 0 {
		filter["_id"] = bson.M{"$in": ids}
	}

	res, err := s.col(colNotifications).UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, wrapErr("mark notifications read", err)
	}
	return int(res.ModifiedCount), nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.col(colNotifications).CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, wrapErr("count unread", err)
	}
	return int(n), nil
}
