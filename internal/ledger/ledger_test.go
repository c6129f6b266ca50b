package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/storage/memory"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recorder struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (r *recorder) Notify(_ context.Context, notifications ...*models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notifications...)
}

// take returns and clears what was sent so far.
func (r *recorder) take() []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	sent := r.sent
	r.sent = nil
	return sent
}

type fixture struct {
	ledger *Ledger
	store  *memory.Store
	sent   *recorder
}

// setup registers users A, B, C and D.
func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), sent: &recorder{}}
	f.ledger = New(f.store, append([]Option{WithNotifier(f.sent)}, opts...)...)

	ctx := context.Background()
	for _, u := range []struct{ id, email, name string }{
		{"A", "a@example.com", "Paritosh"},
		{"B", "b@example.com", "Bhavna"},
		{"C", "c@example.com", "Chirag"},
		{"D", "d@example.com", "Deepa"},
	} {
		if _, err := f.ledger.RegisterUser(ctx, u.id, ProfileInput{Email: u.email, DisplayName: u.name}); err != nil {
			t.Fatalf("RegisterUser(%s) failed: %v", u.id, err)
		}
	}
	return f
}

// squad creates a group administered by A with B, C and D as members.
func (f *fixture) squad(t *testing.T) *models.Group {
	t.Helper()
	g, _, err := f.ledger.CreateGroup(context.Background(), "A", GroupInput{Name: "Badminton Squad", Category: "sports"}, []string{"B", "C", "D"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	f.sent.take()
	return g
}

func equal(users ...string) models.SplitConfig {
	cfg := models.SplitConfig{Type: models.SplitEqual}
	for _, u := range users {
		cfg.Participants = append(cfg.Participants, models.SplitParticipant{UserID: u})
	}
	return cfg
}

func exact(amounts map[string]string) models.SplitConfig {
	cfg := models.SplitConfig{Type: models.SplitExact}
	for _, u := range []string{"A", "B", "C", "D"} {
		if a, ok := amounts[u]; ok {
			cfg.Participants = append(cfg.Participants, models.SplitParticipant{UserID: u, Amount: d(a)})
		}
	}
	return cfg
}

func shareOf(t *testing.T, e *models.Expense, user string) decimal.Decimal {
	t.Helper()
	share, ok := e.ShareOf(user)
	if !ok {
		t.Fatalf("expense %s has no split for %s", e.ID, user)
	}
	return share
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want %v", err, kind)
	}
}

func TestBadmintonScenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	g := f.squad(t)

	e, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{
		Amount:      d("1200"),
		Description: "Badminton court booking",
		Category:    "sports",
		GroupID:     g.ID,
		Split:       equal("B", "C", "D"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if len(e.Splits) != 4 {
		t.Fatalf("got %d splits, want 4 (payer included)", len(e.Splits))
	}
	for _, u := range []string{"A", "B", "C", "D"} {
		if got := shareOf(t, e, u); !got.Equal(d("300")) {
			t.Errorf("share of %s = %s, want 300", u, got)
		}
	}

	sent := f.sent.take()
	if len(sent) != 3 {
		t.Fatalf("sent %d notifications, want 3", len(sent))
	}
	for _, n := range sent {
		if n.Type != models.NotificationExpenseAdded || n.UserID == "A" {
			t.Errorf("unexpected notification %+v", n)
		}
		if n.Message != "Paritosh added an expense of ₹1200.00. Your share is ₹300.00" {
			t.Errorf("message = %q", n.Message)
		}
	}

	balances, err := f.ledger.BalancesFor(ctx, "A", calculator.Group(g.ID))
	if err != nil {
		t.Fatalf("BalancesFor failed: %v", err)
	}
	for _, u := range []string{"B", "C", "D"} {
		if !balances[u].Equal(d("300")) {
			t.Errorf("balances_for(A)[%s] = %s, want 300", u, balances[u])
		}
	}

	if _, err := f.ledger.RecordSettlement(ctx, "B", SettlementInput{ToUserID: "A", Amount: d("300"), GroupID: g.ID}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	sent = f.sent.take()
	if len(sent) != 1 || sent[0].UserID != "A" || sent[0].Title != "Payment received" {
		t.Errorf("settlement notifications = %+v", sent)
	}

	a, _ := f.ledger.BalancesFor(ctx, "A", calculator.Group(g.ID))
	if !calculator.IsNegligible(a["B"]) {
		t.Errorf("balances_for(A)[B] = %s after settling, want 0", a["B"])
	}
	b, _ := f.ledger.BalancesFor(ctx, "B", calculator.Group(g.ID))
	if !calculator.IsNegligible(b["A"]) {
		t.Errorf("balances_for(B)[A] = %s after settling, want 0", b["A"])
	}

	summary, err := f.ledger.GroupBalanceSummary(ctx, "A", g.ID)
	if err != nil {
		t.Fatalf("GroupBalanceSummary failed: %v", err)
	}
	if !summary.TotalExpenses.Equal(d("1200")) || !summary.NetBalance.Equal(d("900")) {
		t.Errorf("summary = %+v", summary)
	}

	plan, err := f.ledger.GroupSettlementPlan(ctx, "C", g.ID)
	if err != nil {
		t.Fatalf("GroupSettlementPlan failed: %v", err)
	}
	if len(plan.Positions) != 4 || len(plan.Transfers) != 2 {
		t.Fatalf("plan = %+v", plan)
	}
	for _, tr := range plan.Transfers {
		if tr.To != "A" || !tr.Amount.Equal(d("300")) {
			t.Errorf("transfer = %+v, want 300 to A", tr)
		}
	}

	groups, err := f.ledger.ListGroups(ctx, "A")
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].MemberCount != 4 || !groups[0].Outstanding.Equal(d("600")) {
		t.Errorf("ListGroups = %+v", groups)
	}
}

func TestExactSplitPayerTakesRemainder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{
		Amount:      d("1000"),
		Description: "Dinner",
		Split:       exact(map[string]string{"B": "400", "C": "300"}),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if got := shareOf(t, e, "A"); !got.Equal(d("300")) {
		t.Errorf("payer share = %s, want 300", got)
	}

	updated, err := f.ledger.UpdateExpense(ctx, "A", e.ID, ExpenseChanges{Amount: ptr(d("1100"))})
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if got := shareOf(t, updated, "A"); !got.Equal(d("400")) {
		t.Errorf("payer share after raise = %s, want 400", got)
	}
	if got := shareOf(t, updated, "B"); !got.Equal(d("400")) {
		t.Errorf("share of B after raise = %s, want 400", got)
	}

	_, err = f.ledger.UpdateExpense(ctx, "A", e.ID, ExpenseChanges{Amount: ptr(d("600"))})
	wantKind(t, err, errs.ErrInvalidSplit)

	_, err = f.ledger.CreateExpense(ctx, "A", ExpenseInput{
		Amount:      d("500"),
		Description: "Too much",
		Split:       exact(map[string]string{"B": "400", "C": "300"}),
	})
	wantKind(t, err, errs.ErrInvalidSplit)
}

func TestLargeAmounts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: calculator.MaxAmount, Description: "Villa", Split: equal("A", "B", "C")})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if got := calculator.SplitTotal(e.Splits); !got.Equal(calculator.MaxAmount) {
		t.Errorf("splits sum to %s, want %s", got, calculator.MaxAmount)
	}
	a, _ := f.ledger.BalancesFor(ctx, "A", calculator.Global())
	if !a["B"].IsPositive() || !a["C"].IsPositive() {
		t.Errorf("balances_for(A) = %v, want B and C owing A", a)
	}

	_, err = f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("100000000000000000.00"), Description: "Island", Split: equal("A", "B", "C")})
	wantKind(t, err, errs.ErrInvalidInput)
	_, err = f.ledger.AllocateSplit(d("100000000000000000.00"), "A", equal("B", "C"))
	wantKind(t, err, errs.ErrInvalidSplit)
	_, err = f.ledger.RecordSettlement(ctx, "B", SettlementInput{ToUserID: "A", Amount: d("1000000000000")})
	wantKind(t, err, errs.ErrInvalidInput)
}

func TestDraftLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	draft, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{
		Amount:      d("10.00"),
		Description: "Snacks",
		Split:       equal("A", "B", "C"),
		Draft:       true,
	})
	if err != nil {
		t.Fatalf("CreateExpense(draft) failed: %v", err)
	}
	if len(draft.Splits) != 0 || !draft.Draft {
		t.Fatalf("draft = %+v, want no splits", draft)
	}
	if sent := f.sent.take(); len(sent) != 0 {
		t.Errorf("draft sent %d notifications", len(sent))
	}

	balances, _ := f.ledger.BalancesFor(ctx, "A", calculator.Global())
	if len(balances) != 0 {
		t.Errorf("draft changed balances: %v", balances)
	}

	_, err = f.ledger.GetExpense(ctx, "B", draft.ID)
	wantKind(t, err, errs.ErrNotFound)
	_, err = f.ledger.SubmitDraft(ctx, "B", draft.ID)
	wantKind(t, err, errs.ErrForbidden)
	_, err = f.ledger.UpdateExpense(ctx, "B", draft.ID, ExpenseChanges{Description: ptr("Mine now")})
	wantKind(t, err, errs.ErrForbidden)
	wantKind(t, f.ledger.DeleteExpense(ctx, "B", draft.ID), errs.ErrForbidden)

	drafts, _ := f.ledger.ListExpenses(ctx, "A", ExpenseQuery{Drafts: true})
	if len(drafts) != 1 {
		t.Errorf("listed %d drafts, want 1", len(drafts))
	}
	committed, _ := f.ledger.ListExpenses(ctx, "A", ExpenseQuery{})
	if len(committed) != 0 {
		t.Errorf("listed %d committed expenses, want 0", len(committed))
	}

	submitted, err := f.ledger.SubmitDraft(ctx, "A", draft.ID)
	if err != nil {
		t.Fatalf("SubmitDraft failed: %v", err)
	}
	if submitted.Draft || len(submitted.Splits) != 3 {
		t.Fatalf("submitted = %+v", submitted)
	}
	want := []string{"3.34", "3.33", "3.33"}
	for i, s := range submitted.Splits {
		if !s.Amount.Equal(d(want[i])) {
			t.Errorf("split %d = %s, want %s", i, s.Amount, want[i])
		}
	}
	if sent := f.sent.take(); len(sent) != 2 {
		t.Errorf("submit sent %d notifications, want 2", len(sent))
	}

	direct, _ := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("10.00"), Description: "Snacks", Split: equal("A", "B", "C")})
	after, _ := f.ledger.BalancesFor(ctx, "A", calculator.Global())
	if !after["B"].Equal(d("6.66")) {
		t.Errorf("balances_for(A)[B] = %s, want 6.66 (two equal expenses)", after["B"])
	}
	if !shareOf(t, direct, "B").Equal(shareOf(t, submitted, "B")) {
		t.Error("submitted draft split differs from a direct create")
	}

	_, err = f.ledger.SubmitDraft(ctx, "A", draft.ID)
	wantKind(t, err, errs.ErrConflict)
	wantKind(t, err, errs.ErrNotFound)
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("90"), Description: "Cab", Split: equal("B", "C")})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	f.sent.take()

	_, err = f.ledger.UpdateExpense(ctx, "B", e.ID, ExpenseChanges{Description: ptr("Mine now")})
	wantKind(t, err, errs.ErrForbidden)

	renamed, err := f.ledger.UpdateExpense(ctx, "A", e.ID, ExpenseChanges{Description: ptr("Airport cab")})
	if err != nil {
		t.Fatalf("UpdateExpense(description) failed: %v", err)
	}
	if renamed.Description != "Airport cab" || len(renamed.Splits) != 3 {
		t.Errorf("renamed = %+v", renamed)
	}
	if sent := f.sent.take(); len(sent) != 0 {
		t.Errorf("description change sent %d notifications", len(sent))
	}

	resized, err := f.ledger.UpdateExpense(ctx, "A", e.ID, ExpenseChanges{Amount: ptr(d("120"))})
	if err != nil {
		t.Fatalf("UpdateExpense(amount) failed: %v", err)
	}
	if got := shareOf(t, resized, "C"); !got.Equal(d("40")) {
		t.Errorf("share of C = %s, want 40", got)
	}
	sent := f.sent.take()
	if len(sent) != 2 || sent[0].Type != models.NotificationExpenseUpdated {
		t.Errorf("amount change notifications = %+v", sent)
	}

	resplit, err := f.ledger.UpdateExpense(ctx, "A", e.ID, ExpenseChanges{Split: &models.SplitConfig{
		Type: models.SplitShares,
		Participants: []models.SplitParticipant{
			{UserID: "A", Shares: d("1")},
			{UserID: "D", Shares: d("2")},
		},
	}})
	if err != nil {
		t.Fatalf("UpdateExpense(split) failed: %v", err)
	}
	if _, ok := resplit.ShareOf("B"); ok {
		t.Error("old participant B kept a split")
	}
	if got := shareOf(t, resplit, "D"); !got.Equal(d("80")) {
		t.Errorf("share of D = %s, want 80", got)
	}

	stored, _ := f.store.GetExpense(ctx, e.ID)
	if len(stored.Splits) != 2 || stored.SplitType != models.SplitShares {
		t.Errorf("stored = %+v", stored)
	}

	b, _ := f.ledger.BalancesFor(ctx, "B", calculator.Global())
	if len(b) != 0 {
		t.Errorf("balances_for(B) = %v after being split out, want empty", b)
	}

	// A new equal split on update covers only the listed users.
	others, err := f.ledger.UpdateExpense(ctx, "A", e.ID, ExpenseChanges{Split: ptr(equal("C", "D"))})
	if err != nil {
		t.Fatalf("UpdateExpense(equal) failed: %v", err)
	}
	if _, ok := others.ShareOf("A"); ok || len(others.Splits) != 2 {
		t.Errorf("splits = %+v, want C and D only", others.Splits)
	}
	if got := shareOf(t, others, "C"); !got.Equal(d("60")) {
		t.Errorf("share of C = %s, want 60", got)
	}
}

func TestDeletedExpenseKeepsSettlement(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, _ := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("100"), Description: "Groceries", Split: equal("B")})
	if _, err := f.ledger.RecordSettlement(ctx, "B", SettlementInput{ToUserID: "A", Amount: d("50"), Method: "cash"}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	wantKind(t, f.ledger.DeleteExpense(ctx, "B", e.ID), errs.ErrForbidden)
	if err := f.ledger.DeleteExpense(ctx, "A", e.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	wantKind(t, f.ledger.DeleteExpense(ctx, "A", e.ID), errs.ErrNotFound)

	a, _ := f.ledger.BalancesFor(ctx, "A", calculator.Global())
	if !a["B"].Equal(d("-50")) {
		t.Errorf("balances_for(A)[B] = %s, want -50", a["B"])
	}

	settlements, _ := f.ledger.ListSettlements(ctx, "A", "", 0)
	if len(settlements) != 1 || settlements[0].Method != models.PaymentCash {
		t.Errorf("settlements = %+v", settlements)
	}
}

func TestExpenseAccess(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	g := f.squad(t)

	_, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("10"), Description: "x", GroupID: "missing", Split: equal("B")})
	wantKind(t, err, errs.ErrNotFound)

	f.ledger.RegisterUser(ctx, "E", ProfileInput{Mobile: "+919876543210", DisplayName: "Esha"})
	_, err = f.ledger.CreateExpense(ctx, "E", ExpenseInput{Amount: d("10"), Description: "x", GroupID: g.ID, Split: equal("A")})
	wantKind(t, err, errs.ErrForbidden)

	_, err = f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("10"), Description: "x", Split: equal("nobody")})
	wantKind(t, err, errs.ErrNotFound)

	_, err = f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("10.001"), Description: "x", Split: equal("B")})
	wantKind(t, err, errs.ErrInvalidInput)

	e, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("40"), Description: "Shuttles", GroupID: g.ID, Split: equal("B")})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if e.Currency != "INR" || e.Category != "other" || e.ExpenseDate == 0 {
		t.Errorf("defaults not applied: %+v", e)
	}

	if _, err := f.ledger.GetExpense(ctx, "C", e.ID); err != nil {
		t.Errorf("group member GetExpense failed: %v", err)
	}
	_, err = f.ledger.GetExpense(ctx, "E", e.ID)
	wantKind(t, err, errs.ErrForbidden)

	_, err = f.ledger.ListExpenses(ctx, "E", ExpenseQuery{GroupID: g.ID})
	wantKind(t, err, errs.ErrForbidden)
	list, _ := f.ledger.ListExpenses(ctx, "C", ExpenseQuery{GroupID: g.ID})
	if len(list) != 1 {
		t.Errorf("group listing returned %d expenses, want 1", len(list))
	}

	_, err = f.ledger.BalancesFor(ctx, "E", calculator.Group(g.ID))
	wantKind(t, err, errs.ErrForbidden)

	if err := f.ledger.DeactivateUser(ctx, "D"); err != nil {
		t.Fatalf("DeactivateUser failed: %v", err)
	}
	_, err = f.ledger.CreateExpense(ctx, "D", ExpenseInput{Amount: d("10"), Description: "x", Split: equal("A")})
	wantKind(t, err, errs.ErrForbidden)
}

func TestGroupMembership(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	g, members, err := f.ledger.CreateGroup(ctx, "A", GroupInput{Name: "Flat"}, []string{"B", "B", "A", "ghost"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(members) != 2 || !members[0].IsAdmin() || g.Category != "other" {
		t.Fatalf("members = %+v, group = %+v", members, g)
	}
	if sent := f.sent.take(); len(sent) != 1 || sent[0].Type != models.NotificationGroupInvite {
		t.Errorf("invites = %+v", sent)
	}

	_, err = f.ledger.AddMembers(ctx, "B", g.ID, []string{"C"}, nil)
	wantKind(t, err, errs.ErrForbidden)

	added, err := f.ledger.AddMembers(ctx, "A", g.ID, nil, []string{"C@example.com"})
	if err != nil || len(added) != 1 || added[0].UserID != "C" {
		t.Fatalf("AddMembers by email = %+v, %v", added, err)
	}
	_, err = f.ledger.AddMembers(ctx, "A", g.ID, []string{"B", "C"}, nil)
	wantKind(t, err, errs.ErrConflict)
	_, err = f.ledger.AddMembers(ctx, "A", g.ID, []string{"ghost"}, nil)
	wantKind(t, err, errs.ErrNotFound)

	wantKind(t, f.ledger.RemoveMember(ctx, "B", g.ID, "C"), errs.ErrForbidden)
	wantKind(t, f.ledger.RemoveMember(ctx, "A", g.ID, "A"), errs.ErrConflict)
	if err := f.ledger.RemoveMember(ctx, "C", g.ID, "C"); err != nil {
		t.Fatalf("RemoveMember(self) failed: %v", err)
	}
	_, _, err = f.ledger.GetGroup(ctx, "C", g.ID)
	wantKind(t, err, errs.ErrForbidden)

	if _, err := f.ledger.AddMembers(ctx, "A", g.ID, []string{"C"}, nil); err != nil {
		t.Fatalf("re-adding a removed member failed: %v", err)
	}
	_, current, err := f.ledger.GetGroup(ctx, "C", g.ID)
	if err != nil || len(current) != 3 {
		t.Fatalf("GetGroup = %d members, %v", len(current), err)
	}

	_, err = f.ledger.UpdateGroup(ctx, "B", g.ID, GroupChanges{Name: ptr("Mine")})
	wantKind(t, err, errs.ErrForbidden)
	renamed, err := f.ledger.UpdateGroup(ctx, "A", g.ID, GroupChanges{Name: ptr("Flat 4B")})
	if err != nil || renamed.Name != "Flat 4B" {
		t.Fatalf("UpdateGroup = %+v, %v", renamed, err)
	}

	if err := f.ledger.DeleteGroup(ctx, "A", g.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	_, err = f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("10"), Description: "x", GroupID: g.ID, Split: equal("B")})
	wantKind(t, err, errs.ErrNotFound)
	groups, _ := f.ledger.ListGroups(ctx, "A")
	if len(groups) != 0 {
		t.Errorf("deleted group still listed: %+v", groups)
	}
}

func TestSettlementRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tests := []struct {
		name   string
		caller string
		in     SettlementInput
		kind   error
	}{
		{"self", "A", SettlementInput{ToUserID: "A", Amount: d("10")}, errs.ErrInvalidInput},
		{"third party", "C", SettlementInput{FromUserID: "A", ToUserID: "B", Amount: d("10")}, errs.ErrForbidden},
		{"unknown receiver", "A", SettlementInput{ToUserID: "ghost", Amount: d("10")}, errs.ErrNotFound},
		{"zero amount", "A", SettlementInput{ToUserID: "B", Amount: decimal.Zero}, errs.ErrInvalidInput},
		{"bad method", "A", SettlementInput{ToUserID: "B", Amount: d("10"), Method: "cheque"}, errs.ErrInvalidInput},
		{"unknown group", "A", SettlementInput{ToUserID: "B", Amount: d("10"), GroupID: "missing"}, errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.RecordSettlement(ctx, tt.caller, tt.in)
			wantKind(t, err, tt.kind)
		})
	}

	st, err := f.ledger.RecordSettlement(ctx, "B", SettlementInput{FromUserID: "A", ToUserID: "B", Amount: d("25")})
	if err != nil {
		t.Fatalf("RecordSettlement by receiver failed: %v", err)
	}
	if st.Method != models.PaymentUPI || st.CreatedBy != "B" {
		t.Errorf("settlement = %+v", st)
	}
	if sent := f.sent.take(); len(sent) != 1 || sent[0].UserID != "A" || sent[0].Title != "Payment recorded" {
		t.Errorf("notifications = %+v", sent)
	}

	wantKind(t, f.ledger.ReverseSettlement(ctx, "C", st.ID), errs.ErrForbidden)
	if err := f.ledger.ReverseSettlement(ctx, "A", st.ID); err != nil {
		t.Fatalf("ReverseSettlement failed: %v", err)
	}
	wantKind(t, f.ledger.ReverseSettlement(ctx, "A", st.ID), errs.ErrNotFound)

	a, _ := f.ledger.BalancesFor(ctx, "A", calculator.Global())
	if len(a) != 0 {
		t.Errorf("reversed settlement still counts: %v", a)
	}
}

type failingNotifications struct {
	storage.NotificationStore
}

func (failingNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errs.Storage("create notification", errors.New("disk full"))
}

func TestNotificationFailureDoesNotFailExpense(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := New(store, WithNotifier(notify.NewDispatcher(failingNotifications{store}, nil)))

	for _, id := range []string{"A", "B"} {
		if _, err := l.RegisterUser(ctx, id, ProfileInput{Email: id + "@example.com", DisplayName: id}); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}
	}

	e, err := l.CreateExpense(ctx, "A", ExpenseInput{Amount: d("100"), Description: "Tea", Split: equal("B")})
	if err != nil {
		t.Fatalf("CreateExpense failed despite notification failure: %v", err)
	}
	if _, err := store.GetExpense(ctx, e.ID); err != nil {
		t.Errorf("expense not stored: %v", err)
	}
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]map[string]decimal.Decimal
	hits        int
	invalidated []string
}

func cacheKey(userID string, scope calculator.Scope) string {
	return userID + "|" + scope.Key()
}

func (c *fakeCache) Get(_ context.Context, userID string, scope calculator.Scope) (map[string]decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[cacheKey(userID, scope)]
	if ok {
		c.hits++
	}
	return b, ok, nil
}

func (c *fakeCache) Set(_ context.Context, userID string, scope calculator.Scope, balances map[string]decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(userID, scope)] = balances
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, groupID string, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.entries, cacheKey(id, calculator.Global()))
		if groupID != "" {
			delete(c.entries, cacheKey(id, calculator.Group(groupID)))
		}
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

func TestBalanceCache(t *testing.T) {
	ctx := context.Background()
	cache := &fakeCache{entries: make(map[string]map[string]decimal.Decimal)}
	f := setup(t, WithCache(cache))

	if _, err := f.ledger.CreateExpense(ctx, "A", ExpenseInput{Amount: d("60"), Description: "Lunch", Split: equal("B")}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	first, _ := f.ledger.BalancesFor(ctx, "B", calculator.Global())
	second, _ := f.ledger.BalancesFor(ctx, "B", calculator.Global())
	if cache.hits != 1 || !first["A"].Equal(second["A"]) {
		t.Fatalf("hits = %d, first = %v, second = %v", cache.hits, first, second)
	}

	if _, err := f.ledger.RecordSettlement(ctx, "B", SettlementInput{ToUserID: "A", Amount: d("30")}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	after, _ := f.ledger.BalancesFor(ctx, "B", calculator.Global())
	if cache.hits != 1 {
		t.Errorf("stale entry served after settlement")
	}
	if len(after) != 0 {
		t.Errorf("balances_for(B) = %v, want empty", after)
	}
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.ledger.RegisterUser(ctx, "A", ProfileInput{Email: "other@example.com", DisplayName: "Again"})
	wantKind(t, err, errs.ErrConflict)
	_, err = f.ledger.RegisterUser(ctx, "X", ProfileInput{DisplayName: "Nobody"})
	wantKind(t, err, errs.ErrInvalidInput)

	u, err := f.ledger.UpdateProfile(ctx, "A", ProfileChanges{PaymentAddress: ptr("paritosh@upi")})
	if err != nil || u.PaymentAddress != "paritosh@upi" || u.Email != "a@example.com" {
		t.Fatalf("UpdateProfile = %+v, %v", u, err)
	}

	users, _ := f.ledger.GetUsers(ctx, []string{"A", "B", "A", "ghost"})
	if len(users) != 2 {
		t.Errorf("GetUsers returned %d users, want 2", len(users))
	}
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := New(store, WithNotifier(notify.NewDispatcher(store, nil)))
	for _, id := range []string{"A", "B"} {
		l.RegisterUser(ctx, id, ProfileInput{Email: id + "@example.com", DisplayName: id})
	}
	for range 3 {
		if _, err := l.CreateExpense(ctx, "A", ExpenseInput{Amount: d("20"), Description: "Chai", Split: equal("B")}); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	inbox, _ := l.ListNotifications(ctx, "B", false, 0)
	if len(inbox) != 3 {
		t.Fatalf("inbox has %d notifications, want 3", len(inbox))
	}
	if n, _ := l.UnreadCount(ctx, "B"); n != 3 {
		t.Errorf("UnreadCount = %d, want 3", n)
	}

	_, err := l.MarkRead(ctx, "B", nil)
	wantKind(t, err, errs.ErrInvalidInput)
	if n, _ := l.MarkRead(ctx, "A", []string{inbox[0].ID}); n != 0 {
		t.Errorf("marked %d of someone else's notifications", n)
	}
	if n, _ := l.MarkRead(ctx, "B", []string{inbox[0].ID}); n != 1 {
		t.Errorf("MarkRead changed %d, want 1", n)
	}
	if n, _ := l.MarkAllRead(ctx, "B"); n != 2 {
		t.Errorf("MarkAllRead changed %d, want 2", n)
	}
	if n, _ := l.UnreadCount(ctx, "B"); n != 0 {
		t.Errorf("UnreadCount = %d after reading all", n)
	}
}

func TestAllocateSplitPreview(t *testing.T) {
	f := setup(t)
	splits, err := f.ledger.AllocateSplit(d("1200"), "A", equal("B", "C", "D"))
	if err != nil {
		t.Fatalf("AllocateSplit failed: %v", err)
	}
	if len(splits) != 4 || splits[0].UserID != "A" {
		t.Errorf("splits = %+v", splits)
	}
	if !calculator.SplitTotal(splits).Equal(d("1200")) {
		t.Errorf("splits sum to %s", calculator.SplitTotal(splits))
	}
}

func ptr[T any](v T) *T { return &v }
