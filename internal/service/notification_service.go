package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/pkg/api"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
)

var _ apiconnect.NotificationServiceHandler = (*NotificationService)(nil)

// NotificationService implements the Connect NotificationService.
type NotificationService struct {
	ledger *ledger.Ledger
}

func NewNotificationService(l *ledger.Ledger) *NotificationService {
	return &NotificationService{ledger: l}
}

func (s *NotificationService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := s.ledger.ListNotifications(ctx, caller, req.Msg.UnreadOnly, req.Msg.Limit)
	if err != nil {
		return nil, fail("ListNotifications", err, "user_id", caller)
	}

	out := make([]*api.Notification, len(notifications))
	for i, n := range notifications {
		out[i] = toAPINotification(n)
	}
	return connect.NewResponse(&api.ListNotificationsResponse{Notifications: out}), nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.UnreadCountResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.ledger.UnreadCount(ctx, caller)
	if err != nil {
		return nil, fail("GetUnreadCount", err, "user_id", caller)
	}
	return connect.NewResponse(&api.UnreadCountResponse{Count: n}), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.ledger.MarkRead(ctx, caller, req.Msg.NotificationIDs)
	if err != nil {
		return nil, fail("MarkRead", err, "user_id", caller)
	}
	return connect.NewResponse(&api.MarkReadResponse{Updated: n}), nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.MarkReadResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.ledger.MarkAllRead(ctx, caller)
	if err != nil {
		return nil, fail("MarkAllRead", err, "user_id", caller)
	}
	return connect.NewResponse(&api.MarkReadResponse{Updated: n}), nil
}
