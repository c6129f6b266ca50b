package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/pkg/api"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	ledger *ledger.Ledger
}

// NewGroupService creates a new GroupService backed by the ledger.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a new group with the caller as admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	g, members, err := s.ledger.CreateGroup(ctx, caller, ledger.GroupInput{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
	}, req.Msg.MemberIDs)
	if err != nil {
		return nil, fail("CreateGroup", err, "user_id", caller)
	}

	slog.Info("Group created", "group_id", g.ID, "members", len(members))
	return connect.NewResponse(&api.GroupResponse{
		Group:   toAPIGroup(g),
		Members: toAPIMembers(members),
	}), nil
}

// GetGroup retrieves a group and its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	g, members, err := s.ledger.GetGroup(ctx, caller, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetGroup", err, "group_id", req.Msg.GroupID)
	}

	return connect.NewResponse(&api.GroupResponse{
		Group:   toAPIGroup(g),
		Members: toAPIMembers(members),
	}), nil
}

// ListGroups retrieves the caller's groups with their outstanding balances.
func (s *GroupService) ListGroups(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListGroupsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", caller)

	groups, err := s.ledger.ListGroups(ctx, caller)
	if err != nil {
		return nil, fail("ListGroups", err, "user_id", caller)
	}

	out := make([]*api.GroupSummary, len(groups))
	for i, g := range groups {
		out[i] = &api.GroupSummary{
			Group:       toAPIGroup(g.Group),
			MemberCount: g.MemberCount,
			Outstanding: g.Outstanding,
		}
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup updates an existing group.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupID)

	g, err := s.ledger.UpdateGroup(ctx, caller, req.Msg.GroupID, ledger.GroupChanges{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
	})
	if err != nil {
		return nil, fail("UpdateGroup", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("Group updated", "group_id", g.ID)
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(g)}), nil
}

// DeleteGroup deactivates a group.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.Empty], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.ledger.DeleteGroup(ctx, caller, req.Msg.GroupID); err != nil {
		return nil, fail("DeleteGroup", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"user_ids", len(req.Msg.UserIDs),
		"emails", len(req.Msg.Emails),
	)

	added, err := s.ledger.AddMembers(ctx, caller, req.Msg.GroupID, req.Msg.UserIDs, req.Msg.Emails)
	if err != nil {
		return nil, fail("AddMembers", err, "group_id", req.Msg.GroupID)
	}
	return connect.NewResponse(&api.AddMembersResponse{Added: toAPIMembers(added)}), nil
}

func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.Empty], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)

	if err := s.ledger.RemoveMember(ctx, caller, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, fail("RemoveMember", err, "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)
	}
	return connect.NewResponse(&api.Empty{}), nil
}

// GetGroupBalances returns the caller's totals and per-member balances in a group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.GroupBalancesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	summary, err := s.ledger.GroupBalanceSummary(ctx, caller, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", req.Msg.GroupID)
	}

	return connect.NewResponse(&api.GroupBalancesResponse{
		TotalExpenses: summary.TotalExpenses,
		TotalPaid:     summary.TotalPaid,
		TotalShare:    summary.TotalShare,
		NetBalance:    summary.NetBalance,
		Balances:      toAPIBalances(summary.Balances),
	}), nil
}

// GetSettlementPlan returns every member's net position and the suggested
// payments that would settle the group.
func (s *GroupService) GetSettlementPlan(ctx context.Context, req *connect.Request[api.GroupRequest]) (*connect.Response[api.SettlementPlanResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetSettlementPlan request received", "group_id", req.Msg.GroupID)

	plan, err := s.ledger.GroupSettlementPlan(ctx, caller, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetSettlementPlan", err, "group_id", req.Msg.GroupID)
	}

	resp := &api.SettlementPlanResponse{
		Positions: make([]*api.Position, len(plan.Positions)),
		Transfers: make([]*api.Transfer, len(plan.Transfers)),
	}
	for i, p := range plan.Positions {
		resp.Positions[i] = &api.Position{UserID: p.UserID, Net: p.Net}
	}
	for i, t := range plan.Transfers {
		resp.Transfers[i] = &api.Transfer{FromUserID: t.From, ToUserID: t.To, Amount: t.Amount}
	}
	return connect.NewResponse(resp), nil
}
