package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "hisab.v1.ExpenseService"

// Procedure paths of the ExpenseService.
const (
	ExpenseServiceAllocateSplitProcedure = "/hisab.v1.ExpenseService/AllocateSplit"
	ExpenseServiceCreateExpenseProcedure = "/hisab.v1.ExpenseService/CreateExpense"
	ExpenseServiceSubmitDraftProcedure   = "/hisab.v1.ExpenseService/SubmitDraft"
	ExpenseServiceUpdateExpenseProcedure = "/hisab.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure = "/hisab.v1.ExpenseService/DeleteExpense"
	ExpenseServiceGetExpenseProcedure    = "/hisab.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure  = "/hisab.v1.ExpenseService/ListExpenses"
	ExpenseServiceGetBalancesProcedure   = "/hisab.v1.ExpenseService/GetBalances"
)

// ExpenseServiceClient is a client for the hisab.v1.ExpenseService service.
type ExpenseServiceClient interface {
	AllocateSplit(context.Context, *connect.Request[api.AllocateSplitRequest]) (*connect.Response[api.AllocateSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	SubmitDraft(context.Context, *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.ExpenseRequest]) (*connect.Response[api.Empty], error)
	GetExpense(context.Context, *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

// NewExpenseServiceClient constructs a client for the hisab.v1.ExpenseService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &expenseServiceClient{
		allocateSplit: connect.NewClient[api.AllocateSplitRequest, api.AllocateSplitResponse](httpClient, baseURL+ExpenseServiceAllocateSplitProcedure, opts...),
		createExpense: connect.NewClient[api.CreateExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		submitDraft:   connect.NewClient[api.ExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceSubmitDraftProcedure, opts...),
		updateExpense: connect.NewClient[api.UpdateExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense: connect.NewClient[api.ExpenseRequest, api.Empty](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		getExpense:    connect.NewClient[api.ExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listExpenses:  connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		getBalances:   connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+ExpenseServiceGetBalancesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	allocateSplit *connect.Client[api.AllocateSplitRequest, api.AllocateSplitResponse]
	createExpense *connect.Client[api.CreateExpenseRequest, api.ExpenseResponse]
	submitDraft   *connect.Client[api.ExpenseRequest, api.ExpenseResponse]
	updateExpense *connect.Client[api.UpdateExpenseRequest, api.ExpenseResponse]
	deleteExpense *connect.Client[api.ExpenseRequest, api.Empty]
	getExpense    *connect.Client[api.ExpenseRequest, api.ExpenseResponse]
	listExpenses  *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getBalances   *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
}

func (c *expenseServiceClient) AllocateSplit(ctx context.Context, req *connect.Request[api.AllocateSplitRequest]) (*connect.Response[api.AllocateSplitResponse], error) {
	return c.allocateSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SubmitDraft(ctx context.Context, req *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.submitDraft.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.ExpenseRequest]) (*connect.Response[api.Empty], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

// ExpenseServiceHandler is implemented by the server side of hisab.v1.ExpenseService.
// ExpenseService records expenses and reports the caller's balances.
type ExpenseServiceHandler interface {
	AllocateSplit(context.Context, *connect.Request[api.AllocateSplitRequest]) (*connect.Response[api.AllocateSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	SubmitDraft(context.Context, *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.ExpenseRequest]) (*connect.Response[api.Empty], error)
	GetExpense(context.Context, *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", routes{
		ExpenseServiceAllocateSplitProcedure: connect.NewUnaryHandler(ExpenseServiceAllocateSplitProcedure, svc.AllocateSplit, opts...),
		ExpenseServiceCreateExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceSubmitDraftProcedure:   connect.NewUnaryHandler(ExpenseServiceSubmitDraftProcedure, svc.SubmitDraft, opts...),
		ExpenseServiceUpdateExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		ExpenseServiceGetExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...),
		ExpenseServiceListExpensesProcedure:  connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...),
		ExpenseServiceGetBalancesProcedure:   connect.NewUnaryHandler(ExpenseServiceGetBalancesProcedure, svc.GetBalances, opts...),
	}
}
