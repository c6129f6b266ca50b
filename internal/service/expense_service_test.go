package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/pkg/api"
)

// TestBadmintonCourt books a ₹1200 court for four, paid by Paritosh.
func TestBadmintonCourt(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	paritosh := srv.register(t, "paritosh", "Paritosh")
	bhavna := srv.register(t, "bhavna", "Bhavna")
	srv.register(t, "chirag", "Chirag")
	srv.register(t, "deepa", "Deepa")

	group, err := paritosh.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Badminton",
		Category:  "sports",
		MemberIDs: []string{"bhavna", "chirag", "deepa"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := group.Msg.Group.ID

	created, err := paritosh.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		Amount:      dec("1200"),
		Description: "Court booking",
		Category:    "sports",
		GroupID:     groupID,
		Split:       equalSplit("paritosh", "bhavna", "chirag", "deepa"),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	e := created.Msg.Expense
	if e.PayerID != "paritosh" || e.Currency != "INR" || e.SplitType != "equal" || e.Draft {
		t.Errorf("expense = %+v", e)
	}
	if len(e.Splits) != 4 {
		t.Fatalf("expected 4 splits, got %d", len(e.Splits))
	}
	for _, s := range e.Splits {
		if !s.Amount.Equal(dec("300")) {
			t.Errorf("split for %s = %s, want 300", s.UserID, s.Amount)
		}
	}

	// Bhavna owes Paritosh 300.
	bb, err := bhavna.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if got := balanceWith(bb.Msg.Balances, "paritosh"); !got.Equal(dec("-300")) {
		t.Errorf("bhavna's balance with paritosh = %s, want -300", got)
	}
	if !bb.Msg.Net.Equal(dec("-300")) {
		t.Errorf("bhavna's net = %s, want -300", bb.Msg.Net)
	}

	pb, err := paritosh.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if len(pb.Msg.Balances) != 3 || !pb.Msg.Net.Equal(dec("900")) {
		t.Errorf("paritosh's balances = %+v, net %s", pb.Msg.Balances, pb.Msg.Net)
	}

	summary, err := paritosh.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if !summary.Msg.TotalExpenses.Equal(dec("1200")) || !summary.Msg.TotalPaid.Equal(dec("1200")) ||
		!summary.Msg.TotalShare.Equal(dec("300")) || !summary.Msg.NetBalance.Equal(dec("900")) {
		t.Errorf("summary = %+v", summary.Msg)
	}

	plan, err := bhavna.groups.GetSettlementPlan(ctx, connect.NewRequest(&api.GroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	if len(plan.Msg.Positions) != 4 {
		t.Errorf("expected 4 positions, got %d", len(plan.Msg.Positions))
	}
	if len(plan.Msg.Transfers) != 3 {
		t.Fatalf("expected 3 transfers, got %d", len(plan.Msg.Transfers))
	}
	for _, tr := range plan.Msg.Transfers {
		if tr.ToUserID != "paritosh" || !tr.Amount.Equal(dec("300")) {
			t.Errorf("transfer = %+v", tr)
		}
	}

	// Any group member can read the expense.
	got, err := bhavna.expenses.GetExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: e.ID}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Msg.Expense.Description != "Court booking" || got.Msg.Expense.Split == nil {
		t.Errorf("expense = %+v", got.Msg.Expense)
	}

	listed, err := bhavna.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(listed.Msg.Expenses) != 1 {
		t.Errorf("expected 1 expense, got %d", len(listed.Msg.Expenses))
	}
}

func TestAllocateSplit(t *testing.T) {
	srv := setupTestServer(t)
	alice := srv.register(t, "alice", "Alice")

	tests := []struct {
		name    string
		amount  string
		split   api.SplitConfig
		want    map[string]string
		wantErr bool
	}{
		{
			name:   "equal with remainder",
			amount: "100",
			split:  equalSplit("alice", "bob", "charlie"),
			want:   map[string]string{"alice": "33.34", "bob": "33.33", "charlie": "33.33"},
		},
		{
			name:   "exact",
			amount: "500",
			split: api.SplitConfig{Type: "exact", Participants: []api.Participant{
				{UserID: "alice", Amount: dec("200")},
				{UserID: "bob", Amount: dec("300")},
			}},
			want: map[string]string{"alice": "200", "bob": "300"},
		},
		{
			name:   "shares",
			amount: "900",
			split: api.SplitConfig{Type: "shares", Participants: []api.Participant{
				{UserID: "alice", Shares: dec("1")},
				{UserID: "bob", Shares: dec("2")},
			}},
			want: map[string]string{"alice": "300", "bob": "600"},
		},
		{
			name:   "exact exceeding total",
			amount: "100",
			split: api.SplitConfig{Type: "exact", Participants: []api.Participant{
				{UserID: "bob", Amount: dec("150")},
			}},
			wantErr: true,
		},
		{
			name:    "unknown type",
			amount:  "100",
			split:   api.SplitConfig{Type: "lottery", Participants: []api.Participant{{UserID: "bob"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := alice.expenses.AllocateSplit(context.Background(), connect.NewRequest(&api.AllocateSplitRequest{
				Amount: dec(tt.amount),
				Split:  tt.split,
			}))
			if tt.wantErr {
				wantCode(t, err, connect.CodeInvalidArgument)
				return
			}
			if err != nil {
				t.Fatalf("AllocateSplit failed: %v", err)
			}

			got := map[string]decimal.Decimal{}
			for _, s := range resp.Msg.Splits {
				got[s.UserID] = s.Amount
			}
			if len(got) != len(tt.want) {
				t.Fatalf("splits = %v, want %v", got, tt.want)
			}
			for id, want := range tt.want {
				if !got[id].Equal(dec(want)) {
					t.Errorf("%s: got %s, want %s", id, got[id], want)
				}
			}
		})
	}
}

func TestDraftExpense(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", "Alice")
	bob := srv.register(t, "bob", "Bob")

	created, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		Amount:      dec("840"),
		Description: "Groceries",
		Split:       equalSplit("alice", "bob"),
		Draft:       true,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	id := created.Msg.Expense.ID
	if !created.Msg.Expense.Draft || len(created.Msg.Expense.Splits) != 0 {
		t.Errorf("draft = %+v", created.Msg.Expense)
	}

	// Drafts are invisible to everyone but the payer and move no balances.
	_, err = bob.expenses.GetExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: id}))
	wantCode(t, err, connect.CodeNotFound)

	balances, err := bob.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if len(balances.Msg.Balances) != 0 {
		t.Errorf("draft moved balances: %+v", balances.Msg.Balances)
	}

	drafts, err := alice.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{Drafts: true}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(drafts.Msg.Expenses) != 1 || drafts.Msg.Expenses[0].ID != id {
		t.Errorf("drafts = %+v", drafts.Msg.Expenses)
	}

	submitted, err := alice.expenses.SubmitDraft(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: id}))
	if err != nil {
		t.Fatalf("SubmitDraft failed: %v", err)
	}
	if submitted.Msg.Expense.Draft || len(submitted.Msg.Expense.Splits) != 2 {
		t.Errorf("submitted = %+v", submitted.Msg.Expense)
	}

	_, err = alice.expenses.SubmitDraft(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: id}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	balances, err = bob.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if got := balanceWith(balances.Msg.Balances, "alice"); !got.Equal(dec("-420")) {
		t.Errorf("bob's balance with alice = %s, want -420", got)
	}
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", "Alice")
	bob := srv.register(t, "bob", "Bob")
	srv.register(t, "charlie", "Charlie")

	created, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		Amount:      dec("600"),
		Description: "Dinner",
		Split:       equalSplit("alice", "bob"),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	id := created.Msg.Expense.ID

	desc := "Hijack"
	_, err = bob.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{ExpenseID: id, Description: &desc}))
	wantCode(t, err, connect.CodePermissionDenied)

	split := equalSplit("alice", "bob", "charlie")
	amount := dec("900")
	updated, err := alice.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: id,
		Amount:    &amount,
		Split:     &split,
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if len(updated.Msg.Expense.Splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(updated.Msg.Expense.Splits))
	}

	balances, err := alice.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if !balances.Msg.Net.Equal(dec("600")) {
		t.Errorf("alice's net = %s, want 600", balances.Msg.Net)
	}

	_, err = bob.expenses.DeleteExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: id}))
	wantCode(t, err, connect.CodePermissionDenied)

	if _, err := alice.expenses.DeleteExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: id})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = alice.expenses.GetExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: id}))
	wantCode(t, err, connect.CodeNotFound)

	balances, err = alice.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if !balances.Msg.Net.IsZero() {
		t.Errorf("net after delete = %s, want 0", balances.Msg.Net)
	}
}

func TestExpenseErrors(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", "Alice")
	srv.register(t, "bob", "Bob")
	charlie := srv.register(t, "charlie", "Charlie")
	anonymous := srv.as(t, "", "")
	unregistered := srv.as(t, "ghost", "ghost@example.com")

	created, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		Amount:      dec("250"),
		Description: "Auto fare",
		Split:       equalSplit("alice", "bob"),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"no token", func() error {
			_, err := anonymous.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
			return err
		}, connect.CodeUnauthenticated},
		{"no profile", func() error {
			_, err := unregistered.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
				Amount: dec("10"), Description: "Tea", Split: equalSplit("alice"),
			}))
			return err
		}, connect.CodeNotFound},
		{"zero amount", func() error {
			_, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
				Amount: decimal.Zero, Description: "Nothing", Split: equalSplit("bob"),
			}))
			return err
		}, connect.CodeInvalidArgument},
		{"unknown participant", func() error {
			_, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
				Amount: dec("10"), Description: "Tea", Split: equalSplit("nobody"),
			}))
			return err
		}, connect.CodeNotFound},
		{"not in group", func() error {
			_, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
				Amount: dec("10"), Description: "Tea", GroupID: "missing", Split: equalSplit("bob"),
			}))
			return err
		}, connect.CodeNotFound},
		{"outsider reads expense", func() error {
			_, err := charlie.expenses.GetExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: created.Msg.Expense.ID}))
			return err
		}, connect.CodePermissionDenied},
		{"missing expense", func() error {
			_, err := alice.expenses.GetExpense(ctx, connect.NewRequest(&api.ExpenseRequest{ExpenseID: "missing"}))
			return err
		}, connect.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantCode(t, tt.call(), tt.want)
		})
	}
}
