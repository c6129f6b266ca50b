package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

// NotificationServiceName is the fully-qualified name of the NotificationService.
const NotificationServiceName = "hisab.v1.NotificationService"

// Procedure paths of the NotificationService.
const (
	NotificationServiceListNotificationsProcedure = "/hisab.v1.NotificationService/ListNotifications"
	NotificationServiceGetUnreadCountProcedure    = "/hisab.v1.NotificationService/GetUnreadCount"
	NotificationServiceMarkReadProcedure          = "/hisab.v1.NotificationService/MarkRead"
	NotificationServiceMarkAllReadProcedure       = "/hisab.v1.NotificationService/MarkAllRead"
)

// NotificationServiceClient is a client for the hisab.v1.NotificationService service.
type NotificationServiceClient interface {
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	GetUnreadCount(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.UnreadCountResponse], error)
	MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error)
	MarkAllRead(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.MarkReadResponse], error)
}

// NewNotificationServiceClient constructs a client for the hisab.v1.NotificationService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) NotificationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &notificationServiceClient{
		listNotifications: connect.NewClient[api.ListNotificationsRequest, api.ListNotificationsResponse](httpClient, baseURL+NotificationServiceListNotificationsProcedure, opts...),
		getUnreadCount:    connect.NewClient[api.Empty, api.UnreadCountResponse](httpClient, baseURL+NotificationServiceGetUnreadCountProcedure, opts...),
		markRead:          connect.NewClient[api.MarkReadRequest, api.MarkReadResponse](httpClient, baseURL+NotificationServiceMarkReadProcedure, opts...),
		markAllRead:       connect.NewClient[api.Empty, api.MarkReadResponse](httpClient, baseURL+NotificationServiceMarkAllReadProcedure, opts...),
	}
}

type notificationServiceClient struct {
	listNotifications *connect.Client[api.ListNotificationsRequest, api.ListNotificationsResponse]
	getUnreadCount    *connect.Client[api.Empty, api.UnreadCountResponse]
	markRead          *connect.Client[api.MarkReadRequest, api.MarkReadResponse]
	markAllRead       *connect.Client[api.Empty, api.MarkReadResponse]
}

func (c *notificationServiceClient) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *notificationServiceClient) GetUnreadCount(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.UnreadCountResponse], error) {
	return c.getUnreadCount.CallUnary(ctx, req)
}

func (c *notificationServiceClient) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	return c.markRead.CallUnary(ctx, req)
}

func (c *notificationServiceClient) MarkAllRead(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.MarkReadResponse], error) {
	return c.markAllRead.CallUnary(ctx, req)
}

// NotificationServiceHandler is implemented by the server side of hisab.v1.NotificationService.
// NotificationService reads and acknowledges the caller's notifications.
type NotificationServiceHandler interface {
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	GetUnreadCount(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.UnreadCountResponse], error)
	MarkRead(context.Context, *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error)
	MarkAllRead(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.MarkReadResponse], error)
}

// NewNotificationServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + NotificationServiceName + "/", routes{
		NotificationServiceListNotificationsProcedure: connect.NewUnaryHandler(NotificationServiceListNotificationsProcedure, svc.ListNotifications, opts...),
		NotificationServiceGetUnreadCountProcedure:    connect.NewUnaryHandler(NotificationServiceGetUnreadCountProcedure, svc.GetUnreadCount, opts...),
		NotificationServiceMarkReadProcedure:          connect.NewUnaryHandler(NotificationServiceMarkReadProcedure, svc.MarkRead, opts...),
		NotificationServiceMarkAllReadProcedure:       connect.NewUnaryHandler(NotificationServiceMarkAllReadProcedure, svc.MarkAllRead, opts...),
	}
}
