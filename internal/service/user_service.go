package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/pkg/api"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
)

var _ apiconnect.UserServiceHandler = (*UserService)(nil)

// UserService implements the Connect UserService.
type UserService struct {
	ledger *ledger.Ledger
}

// NewUserService creates a new UserService.
func NewUserService(l *ledger.Ledger) *UserService {
	return &UserService{ledger: l}
}

// RegisterUser creates the caller's profile. The identity verified by the
// token wins over the one in the request.
func (s *UserService) RegisterUser(ctx context.Context, req *connect.Request[api.RegisterUserRequest]) (*connect.Response[api.UserResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RegisterUser request received", "user_id", caller)

	in := ledger.ProfileInput{
		Email:          req.Msg.Email,
		Mobile:         req.Msg.Mobile,
		DisplayName:    req.Msg.DisplayName,
		PaymentAddress: req.Msg.PaymentAddress,
	}
	if email := middleware.GetEmail(ctx); email != "" {
		in.Email = email
	}
	if mobile := middleware.GetMobile(ctx); mobile != "" {
		in.Mobile = mobile
	}

	u, err := s.ledger.RegisterUser(ctx, caller, in)
	if err != nil {
		return nil, fail("RegisterUser", err, "user_id", caller)
	}

	slog.Info("User registered", "user_id", u.ID)
	return connect.NewResponse(&api.UserResponse{User: toAPIUser(u)}), nil
}

// GetUser returns a profile, the caller's own when no id is given.
func (s *UserService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.UserResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	id := req.Msg.UserID
	if id == "" {
		id = caller
	}

	u, err := s.ledger.GetUser(ctx, id)
	if err != nil {
		return nil, fail("GetUser", err, "user_id", id)
	}
	return connect.NewResponse(&api.UserResponse{User: toAPIUser(u)}), nil
}

func (s *UserService) GetUsers(ctx context.Context, req *connect.Request[api.GetUsersRequest]) (*connect.Response[api.GetUsersResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	users, err := s.ledger.GetUsers(ctx, req.Msg.UserIDs)
	if err != nil {
		return nil, fail("GetUsers", err, "count", len(req.Msg.UserIDs))
	}

	out := make([]*api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}
	return connect.NewResponse(&api.GetUsersResponse{Users: out}), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UserResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateProfile request received", "user_id", caller)

	u, err := s.ledger.UpdateProfile(ctx, caller, ledger.ProfileChanges{
		DisplayName:    req.Msg.DisplayName,
		PaymentAddress: req.Msg.PaymentAddress,
	})
	if err != nil {
		return nil, fail("UpdateProfile", err, "user_id", caller)
	}
	return connect.NewResponse(&api.UserResponse{User: toAPIUser(u)}), nil
}

func (s *UserService) DeactivateUser(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.Empty], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeactivateUser request received", "user_id", caller)

	if err := s.ledger.DeactivateUser(ctx, caller); err != nil {
		return nil, fail("DeactivateUser", err, "user_id", caller)
	}

	slog.Info("User deactivated", "user_id", caller)
	return connect.NewResponse(&api.Empty{}), nil
}
