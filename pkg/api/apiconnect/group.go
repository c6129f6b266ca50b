package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "hisab.v1.GroupService"

// Procedure paths of the GroupService.
const (
	GroupServiceCreateGroupProcedure       = "/hisab.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/hisab.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure        = "/hisab.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure       = "/hisab.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure       = "/hisab.v1.GroupService/DeleteGroup"
	GroupServiceAddMembersProcedure        = "/hisab.v1.GroupService/AddMembers"
	GroupServiceRemoveMemberProcedure      = "/hisab.v1.GroupService/RemoveMember"
	GroupServiceGetGroupBalancesProcedure  = "/hisab.v1.GroupService/GetGroupBalances"
	GroupServiceGetSettlementPlanProcedure = "/hisab.v1.GroupService/GetSettlementPlan"
)

// GroupServiceClient is a client for the hisab.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.Empty], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.Empty], error)
	GetGroupBalances(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupBalancesResponse], error)
	GetSettlementPlan(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.SettlementPlanResponse], error)
}

// NewGroupServiceClient constructs a client for the hisab.v1.GroupService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:       connect.NewClient[api.CreateGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:          connect.NewClient[api.GroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:        connect.NewClient[api.Empty, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		updateGroup:       connect.NewClient[api.UpdateGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceUpdateGroupProcedure, opts...),
		deleteGroup:       connect.NewClient[api.GroupRequest, api.Empty](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		addMembers:        connect.NewClient[api.AddMembersRequest, api.AddMembersResponse](httpClient, baseURL+GroupServiceAddMembersProcedure, opts...),
		removeMember:      connect.NewClient[api.RemoveMemberRequest, api.Empty](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		getGroupBalances:  connect.NewClient[api.GroupRequest, api.GroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
		getSettlementPlan: connect.NewClient[api.GroupRequest, api.SettlementPlanResponse](httpClient, baseURL+GroupServiceGetSettlementPlanProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup       *connect.Client[api.CreateGroupRequest, api.GroupResponse]
	getGroup          *connect.Client[api.GroupRequest, api.GroupResponse]
	listGroups        *connect.Client[api.Empty, api.ListGroupsResponse]
	updateGroup       *connect.Client[api.UpdateGroupRequest, api.GroupResponse]
	deleteGroup       *connect.Client[api.GroupRequest, api.Empty]
	addMembers        *connect.Client[api.AddMembersRequest, api.AddMembersResponse]
	removeMember      *connect.Client[api.RemoveMemberRequest, api.Empty]
	getGroupBalances  *connect.Client[api.GroupRequest, api.GroupBalancesResponse]
	getSettlementPlan *connect.Client[api.GroupRequest, api.SettlementPlanResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.Empty], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.Empty], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetSettlementPlan(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.SettlementPlanResponse], error) {
	return c.getSettlementPlan.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by the server side of hisab.v1.GroupService.
// GroupService manages groups, their members and group-level balances.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.Empty], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.Empty], error)
	GetGroupBalances(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupBalancesResponse], error)
	GetSettlementPlan(context.Context, *connect.Request[api.GroupRequest]) (*connect.Response[api.SettlementPlanResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", routes{
		GroupServiceCreateGroupProcedure:       connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceGetGroupProcedure:          connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:        connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceUpdateGroupProcedure:       connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...),
		GroupServiceDeleteGroupProcedure:       connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...),
		GroupServiceAddMembersProcedure:        connect.NewUnaryHandler(GroupServiceAddMembersProcedure, svc.AddMembers, opts...),
		GroupServiceRemoveMemberProcedure:      connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...),
		GroupServiceGetGroupBalancesProcedure:  connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...),
		GroupServiceGetSettlementPlanProcedure: connect.NewUnaryHandler(GroupServiceGetSettlementPlanProcedure, svc.GetSettlementPlan, opts...),
	}
}
