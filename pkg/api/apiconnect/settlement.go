package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "hisab.v1.SettlementService"

// Procedure paths of the SettlementService.
const (
	SettlementServiceRecordSettlementProcedure  = "/hisab.v1.SettlementService/RecordSettlement"
	SettlementServiceListSettlementsProcedure   = "/hisab.v1.SettlementService/ListSettlements"
	SettlementServiceReverseSettlementProcedure = "/hisab.v1.SettlementService/ReverseSettlement"
)

// SettlementServiceClient is a client for the hisab.v1.SettlementService service.
type SettlementServiceClient interface {
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.SettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	ReverseSettlement(context.Context, *connect.Request[api.ReverseSettlementRequest]) (*connect.Response[api.Empty], error)
}

// NewSettlementServiceClient constructs a client for the hisab.v1.SettlementService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &settlementServiceClient{
		recordSettlement:  connect.NewClient[api.RecordSettlementRequest, api.SettlementResponse](httpClient, baseURL+SettlementServiceRecordSettlementProcedure, opts...),
		listSettlements:   connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+SettlementServiceListSettlementsProcedure, opts...),
		reverseSettlement: connect.NewClient[api.ReverseSettlementRequest, api.Empty](httpClient, baseURL+SettlementServiceReverseSettlementProcedure, opts...),
	}
}

type settlementServiceClient struct {
	recordSettlement  *connect.Client[api.RecordSettlementRequest, api.SettlementResponse]
	listSettlements   *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	reverseSettlement *connect.Client[api.ReverseSettlementRequest, api.Empty]
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.SettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ReverseSettlement(ctx context.Context, req *connect.Request[api.ReverseSettlementRequest]) (*connect.Response[api.Empty], error) {
	return c.reverseSettlement.CallUnary(ctx, req)
}

// SettlementServiceHandler is implemented by the server side of hisab.v1.SettlementService.
// SettlementService records and reverses payments between users.
type SettlementServiceHandler interface {
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.SettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	ReverseSettlement(context.Context, *connect.Request[api.ReverseSettlementRequest]) (*connect.Response[api.Empty], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + SettlementServiceName + "/", routes{
		SettlementServiceRecordSettlementProcedure:  connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opts...),
		SettlementServiceListSettlementsProcedure:   connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts...),
		SettlementServiceReverseSettlementProcedure: connect.NewUnaryHandler(SettlementServiceReverseSettlementProcedure, svc.ReverseSettlement, opts...),
	}
}
