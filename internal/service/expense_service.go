package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/pkg/api"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger *ledger.Ledger
}

// NewExpenseService creates a new ExpenseService backed by the ledger.
func NewExpenseService(l *ledger.Ledger) *ExpenseService {
	return &ExpenseService{ledger: l}
}

// AllocateSplit previews the splits of an expense the caller would pay,
// without storing anything.
func (s *ExpenseService) AllocateSplit(ctx context.Context, req *connect.Request[api.AllocateSplitRequest]) (*connect.Response[api.AllocateSplitResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AllocateSplit request received",
		"amount", req.Msg.Amount,
		"type", req.Msg.Split.Type,
		"participants", len(req.Msg.Split.Participants),
	)

	splits, err := s.ledger.AllocateSplit(req.Msg.Amount, caller, fromAPISplit(req.Msg.Split))
	if err != nil {
		return nil, fail("AllocateSplit", err)
	}
	return connect.NewResponse(&api.AllocateSplitResponse{Splits: toAPISplits(splits)}), nil
}

// CreateExpense records an expense paid by the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"description", req.Msg.Description,
		"amount", req.Msg.Amount,
		"group_id", req.Msg.GroupID,
		"draft", req.Msg.Draft,
	)

	e, err := s.ledger.CreateExpense(ctx, caller, ledger.ExpenseInput{
		Amount:      req.Msg.Amount,
		Currency:    req.Msg.Currency,
		Description: req.Msg.Description,
		Notes:       req.Msg.Notes,
		Category:    req.Msg.Category,
		GroupID:     req.Msg.GroupID,
		ExpenseDate: req.Msg.ExpenseDate,
		Split:       fromAPISplit(req.Msg.Split),
		Draft:       req.Msg.Draft,
	})
	if err != nil {
		return nil, fail("CreateExpense", err, "user_id", caller)
	}

	slog.Info("Expense created", "expense_id", e.ID, "splits", len(e.Splits), "draft", e.Draft)
	return connect.NewResponse(&api.ExpenseResponse{Expense: toAPIExpense(e)}), nil
}

func (s *ExpenseService) SubmitDraft(ctx context.Context, req *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SubmitDraft request received", "expense_id", req.Msg.ExpenseID)

	e, err := s.ledger.SubmitDraft(ctx, caller, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("SubmitDraft", err, "expense_id", req.Msg.ExpenseID)
	}

	slog.Info("Draft submitted", "expense_id", e.ID)
	return connect.NewResponse(&api.ExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// UpdateExpense changes the fields set in the request.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	ch := ledger.ExpenseChanges{
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Notes:       req.Msg.Notes,
		Category:    req.Msg.Category,
		ExpenseDate: req.Msg.ExpenseDate,
	}
	if req.Msg.Split != nil {
		cfg := fromAPISplit(*req.Msg.Split)
		ch.Split = &cfg
	}

	e, err := s.ledger.UpdateExpense(ctx, caller, req.Msg.ExpenseID, ch)
	if err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", req.Msg.ExpenseID)
	}

	slog.Info("Expense updated", "expense_id", e.ID)
	return connect.NewResponse(&api.ExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// DeleteExpense deactivates an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.ExpenseRequest]) (*connect.Response[api.Empty], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := s.ledger.DeleteExpense(ctx, caller, req.Msg.ExpenseID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.ExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	e, err := s.ledger.GetExpense(ctx, caller, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("GetExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	return connect.NewResponse(&api.ExpenseResponse{Expense: toAPIExpense(e)}), nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID, "drafts", req.Msg.Drafts)

	expenses, err := s.ledger.ListExpenses(ctx, caller, ledger.ExpenseQuery{
		GroupID:  req.Msg.GroupID,
		Category: req.Msg.Category,
		Drafts:   req.Msg.Drafts,
		Limit:    req.Msg.Limit,
		Offset:   req.Msg.Offset,
	})
	if err != nil {
		return nil, fail("ListExpenses", err, "group_id", req.Msg.GroupID)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// GetBalances returns the caller's balances in one group, or across all of
// them when no group is given.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	scope := calculator.Global()
	if req.Msg.GroupID != "" {
		scope = calculator.Group(req.Msg.GroupID)
	}
	slog.Info("GetBalances request received", "scope", scope.Key())

	balances, err := s.ledger.BalancesFor(ctx, caller, scope)
	if err != nil {
		return nil, fail("GetBalances", err, "scope", scope.Key())
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: toAPIBalances(balances),
		Net:      calculator.Round(calculator.Outstanding(balances)),
	}), nil
}
