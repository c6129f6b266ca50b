package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

// UserServiceName is the fully-qualified name of the UserService.
const UserServiceName = "hisab.v1.UserService"

// Procedure paths of the UserService.
const (
	UserServiceRegisterUserProcedure   = "/hisab.v1.UserService/RegisterUser"
	UserServiceGetUserProcedure        = "/hisab.v1.UserService/GetUser"
	UserServiceGetUsersProcedure       = "/hisab.v1.UserService/GetUsers"
	UserServiceUpdateProfileProcedure  = "/hisab.v1.UserService/UpdateProfile"
	UserServiceDeactivateUserProcedure = "/hisab.v1.UserService/DeactivateUser"
)

// UserServiceClient is a client for the hisab.v1.UserService service.
type UserServiceClient interface {
	RegisterUser(context.Context, *connect.Request[api.RegisterUserRequest]) (*connect.Response[api.UserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.UserResponse], error)
	GetUsers(context.Context, *connect.Request[api.GetUsersRequest]) (*connect.Response[api.GetUsersResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UserResponse], error)
	DeactivateUser(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.Empty], error)
}

// NewUserServiceClient constructs a client for the hisab.v1.UserService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &userServiceClient{
		registerUser:   connect.NewClient[api.RegisterUserRequest, api.UserResponse](httpClient, baseURL+UserServiceRegisterUserProcedure, opts...),
		getUser:        connect.NewClient[api.GetUserRequest, api.UserResponse](httpClient, baseURL+UserServiceGetUserProcedure, opts...),
		getUsers:       connect.NewClient[api.GetUsersRequest, api.GetUsersResponse](httpClient, baseURL+UserServiceGetUsersProcedure, opts...),
		updateProfile:  connect.NewClient[api.UpdateProfileRequest, api.UserResponse](httpClient, baseURL+UserServiceUpdateProfileProcedure, opts...),
		deactivateUser: connect.NewClient[api.Empty, api.Empty](httpClient, baseURL+UserServiceDeactivateUserProcedure, opts...),
	}
}

type userServiceClient struct {
	registerUser   *connect.Client[api.RegisterUserRequest, api.UserResponse]
	getUser        *connect.Client[api.GetUserRequest, api.UserResponse]
	getUsers       *connect.Client[api.GetUsersRequest, api.GetUsersResponse]
	updateProfile  *connect.Client[api.UpdateProfileRequest, api.UserResponse]
	deactivateUser *connect.Client[api.Empty, api.Empty]
}

func (c *userServiceClient) RegisterUser(ctx context.Context, req *connect.Request[api.RegisterUserRequest]) (*connect.Response[api.UserResponse], error) {
	return c.registerUser.CallUnary(ctx, req)
}

func (c *userServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.UserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *userServiceClient) GetUsers(ctx context.Context, req *connect.Request[api.GetUsersRequest]) (*connect.Response[api.GetUsersResponse], error) {
	return c.getUsers.CallUnary(ctx, req)
}

func (c *userServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UserResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

func (c *userServiceClient) DeactivateUser(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.Empty], error) {
	return c.deactivateUser.CallUnary(ctx, req)
}

// UserServiceHandler is implemented by the server side of hisab.v1.UserService.
// UserService manages the caller's profile and looks up other users.
type UserServiceHandler interface {
	RegisterUser(context.Context, *connect.Request[api.RegisterUserRequest]) (*connect.Response[api.UserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.UserResponse], error)
	GetUsers(context.Context, *connect.Request[api.GetUsersRequest]) (*connect.Response[api.GetUsersResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UserResponse], error)
	DeactivateUser(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.Empty], error)
}

// NewUserServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + UserServiceName + "/", routes{
		UserServiceRegisterUserProcedure:   connect.NewUnaryHandler(UserServiceRegisterUserProcedure, svc.RegisterUser, opts...),
		UserServiceGetUserProcedure:        connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...),
		UserServiceGetUsersProcedure:       connect.NewUnaryHandler(UserServiceGetUsersProcedure, svc.GetUsers, opts...),
		UserServiceUpdateProfileProcedure:  connect.NewUnaryHandler(UserServiceUpdateProfileProcedure, svc.UpdateProfile, opts...),
		UserServiceDeactivateUserProcedure: connect.NewUnaryHandler(UserServiceDeactivateUserProcedure, svc.DeactivateUser, opts...),
	}
}
