// Package storetest provides a conformance suite every storage.Store
// implementation runs in its own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// Factory returns an empty store. The suite closes it when the test ends.
type Factory func(t *testing.T) storage.Store

// Run exercises every storage.Store operation against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"Users", testUsers},
		{"Groups", testGroups},
		{"Memberships", testMemberships},
		{"ExpenseRoundTrip", testExpenseRoundTrip},
		{"ExpenseUpdate", testExpenseUpdate},
		{"ListExpenses", testListExpenses},
		{"Settlements", testSettlements},
		{"LoadLedger", testLoadLedger},
		{"Notifications", testNotifications},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedUsers creates one user per id with an email derived from it.
func seedUsers(t *testing.T, s storage.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := s.CreateUser(context.Background(), models.NewUser(id, id+"@example.com", "", "User "+id)); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", id, err)
		}
	}
}

func seedGroup(t *testing.T, s storage.Store, id, admin string, members ...string) {
	t.Helper()
	ms := []*models.Membership{{UserID: admin, Role: models.RoleAdmin, Active: true}}
	for _, m := range members {
		ms = append(ms, &models.Membership{UserID: m, Role: models.RoleMember, Active: true})
	}
	g := &models.Group{ID: id, Name: "Group " + id, Category: "home", CreatedBy: admin, Active: true}
	if err := s.CreateGroup(context.Background(), g, ms); err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", id, err)
	}
}

func equalSplit(payer, group, amount string, date int64, users ...string) *models.Expense {
	e := &models.Expense{
		Amount:      d(amount),
		Currency:    "INR",
		Description: "Court booking",
		Category:    "sports",
		PayerID:     payer,
		GroupID:     group,
		SplitType:   models.SplitEqual,
		ExpenseDate: date,
		Active:      true,
	}
	share := d(amount).Div(decimal.NewFromInt(int64(len(users))))
	for _, u := range users {
		e.Splits = append(e.Splits, models.Split{UserID: u, Amount: share})
	}
	return e
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()

	u := models.NewUser("", "alice@example.com", "+919800000001", "Alice")
	u.PaymentAddress = "alice@upi"
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID == "" {
		t.Fatal("Expected user ID to be generated")
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != u.Email || got.Mobile != u.Mobile || got.DisplayName != "Alice" || got.PaymentAddress != "alice@upi" || !got.Active {
		t.Errorf("GetUser = %+v, want %+v", got, u)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail = %v, %v", byEmail, err)
	}

	dup := models.NewUser("", "alice@example.com", "", "Other Alice")
	if err := s.CreateUser(ctx, dup); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("CreateUser with taken email error = %v, want ErrConflict", err)
	}

	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetUser(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetUserByEmail(missing) error = %v, want ErrNotFound", err)
	}

	seedUsers(t, s, "bob")
	users, err := s.GetUsersByIDs(ctx, []string{u.ID, "missing", "bob"})
	if err != nil {
		t.Fatalf("GetUsersByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("GetUsersByIDs returned %d users, want 2", len(users))
	}

	got.DisplayName = "Alice K"
	got.PaymentAddress = ""
	got.Active = false
	got.UpdatedAt++
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	updated, _ := s.GetUser(ctx, u.ID)
	if updated.DisplayName != "Alice K" || updated.PaymentAddress != "" || updated.Active {
		t.Errorf("UpdateUser not applied: %+v", updated)
	}
	if updated.Email != "alice@example.com" {
		t.Errorf("email changed to %q", updated.Email)
	}

	if err := s.UpdateUser(ctx, &models.User{ID: "missing"}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("UpdateUser(missing) error = %v, want ErrNotFound", err)
	}
}

func testGroups(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob")

	g := &models.Group{Name: "Flat", Description: "Rent and bills", Category: "home", CreatedBy: "alice", Active: true}
	members := []*models.Membership{
		{UserID: "alice", Role: models.RoleAdmin, Active: true},
		{UserID: "bob", Role: models.RoleMember, Active: true},
	}
	if err := s.CreateGroup(ctx, g, members); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g.ID == "" || g.CreatedAt == 0 {
		t.Fatalf("Expected ID and CreatedAt to be set, got %+v", g)
	}

	got, err := s.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Name != "Flat" || got.Description != "Rent and bills" || got.CreatedBy != "alice" || !got.Active {
		t.Errorf("GetGroup = %+v", got)
	}

	admin, err := s.GetMembership(ctx, g.ID, "alice")
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("creator membership = %+v, want active admin", admin)
	}

	groups, err := s.ListGroupsByUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ListGroupsByUser failed: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != g.ID {
		t.Errorf("ListGroupsByUser = %v, want [%s]", groups, g.ID)
	}

	got.Name = "Flat 4B"
	got.Active = false
	if err := s.UpdateGroup(ctx, got); err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	after, _ := s.GetGroup(ctx, g.ID)
	if after.Name != "Flat 4B" || after.Active {
		t.Errorf("UpdateGroup not applied: %+v", after)
	}

	groups, _ = s.ListGroupsByUser(ctx, "bob")
	if len(groups) != 0 {
		t.Errorf("inactive group still listed: %v", groups)
	}

	if _, err := s.GetGroup(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetGroup(missing) error = %v, want ErrNotFound", err)
	}
}

func testMemberships(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")
	seedGroup(t, s, "g1", "alice", "bob")

	if _, err := s.GetMembership(ctx, "g1", "carol"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetMembership(non-member) error = %v, want ErrNotFound", err)
	}

	if err := s.SaveMembership(ctx, &models.Membership{GroupID: "g1", UserID: "carol", Role: models.RoleMember, Active: true, JoinedAt: 1}); err != nil {
		t.Fatalf("SaveMembership failed: %v", err)
	}
	members, err := s.ListMembers(ctx, "g1")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("ListMembers returned %d, want 3", len(members))
	}

	// Soft removal keeps exactly one row per (group, user)
	bob, _ := s.GetMembership(ctx, "g1", "bob")
	bob.Active = false
	if err := s.SaveMembership(ctx, bob); err != nil {
		t.Fatalf("SaveMembership(deactivate) failed: %v", err)
	}
	members, _ = s.ListMembers(ctx, "g1")
	if len(members) != 2 {
		t.Errorf("ListMembers after removal returned %d, want 2", len(members))
	}
	removed, err := s.GetMembership(ctx, "g1", "bob")
	if err != nil || removed.Active {
		t.Errorf("GetMembership(removed) = %+v, %v", removed, err)
	}

	bob.Active = true
	bob.Role = models.RoleAdmin
	if err := s.SaveMembership(ctx, bob); err != nil {
		t.Fatalf("SaveMembership(reactivate) failed: %v", err)
	}
	back, _ := s.GetMembership(ctx, "g1", "bob")
	if !back.IsAdmin() {
		t.Errorf("reactivated membership = %+v", back)
	}
}

func testExpenseRoundTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")
	seedGroup(t, s, "g1", "alice", "bob", "carol")

	e := &models.Expense{
		Amount:      d("100.01"),
		Currency:    "INR",
		Description: "Dinner",
		Notes:       "Birthday",
		Category:    "food",
		PayerID:     "alice",
		GroupID:     "g1",
		SplitType:   models.SplitShares,
		SplitConfig: &models.SplitConfig{Type: models.SplitShares, Participants: []models.SplitParticipant{
			{UserID: "alice", Shares: d("1")},
			{UserID: "bob", Shares: d("2")},
		}},
		Active: true,
		Splits: []models.Split{
			{UserID: "alice", Amount: d("33.34"), Shares: decimal.NewNullDecimal(d("1"))},
			{UserID: "bob", Amount: d("66.67"), Shares: decimal.NewNullDecimal(d("2"))},
		},
	}
	if err := s.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if e.ID == "" || e.ExpenseDate == 0 {
		t.Fatalf("Expected ID and ExpenseDate to be set, got %+v", e)
	}

	got, err := s.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !got.Amount.Equal(d("100.01")) {
		t.Errorf("Amount = %s, want 100.01", got.Amount)
	}
	if got.Description != "Dinner" || got.Notes != "Birthday" || got.Category != "food" || got.GroupID != "g1" || got.PayerID != "alice" {
		t.Errorf("scalar fields lost: %+v", got)
	}
	if got.SplitType != models.SplitShares || got.Draft || !got.Active {
		t.Errorf("flags lost: %+v", got)
	}
	if got.SplitConfig == nil || len(got.SplitConfig.Participants) != 2 || !got.SplitConfig.Participants[1].Shares.Equal(d("2")) {
		t.Errorf("SplitConfig = %+v", got.SplitConfig)
	}
	if len(got.Splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(got.Splits))
	}
	if got.Splits[0].UserID != "alice" || !got.Splits[0].Amount.Equal(d("33.34")) || got.Splits[0].ExpenseID != e.ID {
		t.Errorf("split 0 = %+v", got.Splits[0])
	}
	if got.Splits[1].UserID != "bob" || !got.Splits[1].Shares.Valid || !got.Splits[1].Shares.Decimal.Equal(d("2")) {
		t.Errorf("split 1 = %+v", got.Splits[1])
	}
	if got.Splits[0].Percentage.Valid {
		t.Errorf("percentage should be null, got %+v", got.Splits[0].Percentage)
	}

	draft := &models.Expense{
		Amount:    d("50"),
		Currency:  "INR",
		PayerID:   "bob",
		SplitType: models.SplitEqual,
		SplitConfig: &models.SplitConfig{Type: models.SplitEqual, Participants: []models.SplitParticipant{
			{UserID: "bob"}, {UserID: "carol"},
		}},
		Active: true,
		Draft:  true,
	}
	if err := s.CreateExpense(ctx, draft); err != nil {
		t.Fatalf("CreateExpense(draft) failed: %v", err)
	}
	gotDraft, err := s.GetExpense(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetExpense(draft) failed: %v", err)
	}
	if !gotDraft.Draft || len(gotDraft.Splits) != 0 || gotDraft.GroupID != "" {
		t.Errorf("draft = %+v", gotDraft)
	}
	if gotDraft.SplitConfig == nil || gotDraft.SplitConfig.UserIDs()[1] != "carol" {
		t.Errorf("draft config = %+v", gotDraft.SplitConfig)
	}

	if _, err := s.GetExpense(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetExpense(missing) error = %v, want ErrNotFound", err)
	}
}

func testExpenseUpdate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")

	e := equalSplit("alice", "", "90", 1000, "alice", "bob")
	if err := s.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	e.Description = "Renamed"
	e.Splits = nil
	if err := s.UpdateExpense(ctx, e, false); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	got, _ := s.GetExpense(ctx, e.ID)
	if got.Description != "Renamed" || len(got.Splits) != 2 {
		t.Errorf("scalar update = %+v, splits %d", got, len(got.Splits))
	}

	got.Amount = d("90")
	got.Splits = []models.Split{
		{UserID: "alice", Amount: d("30")},
		{UserID: "bob", Amount: d("30")},
		{UserID: "carol", Amount: d("30")},
	}
	if err := s.UpdateExpense(ctx, got, true); err != nil {
		t.Fatalf("UpdateExpense(replace) failed: %v", err)
	}
	replaced, _ := s.GetExpense(ctx, e.ID)
	if len(replaced.Splits) != 3 || replaced.Splits[2].UserID != "carol" || replaced.Splits[2].Position != 2 {
		t.Errorf("replaced splits = %+v", replaced.Splits)
	}

	replaced.Active = false
	if err := s.UpdateExpense(ctx, replaced, false); err != nil {
		t.Fatalf("UpdateExpense(deactivate) failed: %v", err)
	}
	gone, err := s.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense(inactive) failed: %v", err)
	}
	if gone.Active || len(gone.Splits) != 3 {
		t.Errorf("soft delete should keep splits: %+v", gone)
	}

	if err := s.UpdateExpense(ctx, &models.Expense{ID: "missing", Amount: d("1")}, false); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("UpdateExpense(missing) error = %v, want ErrNotFound", err)
	}
}

func testListExpenses(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")
	seedGroup(t, s, "g1", "alice", "bob", "carol")

	e1 := equalSplit("alice", "g1", "30", 100, "alice", "bob")
	e2 := equalSplit("bob", "g1", "60", 200, "bob", "carol")
	e3 := equalSplit("carol", "", "90", 300, "carol", "alice")
	e3.Category = "food"
	deleted := equalSplit("alice", "g1", "10", 400, "alice", "bob")
	deleted.Active = false
	draft := &models.Expense{Amount: d("20"), Currency: "INR", PayerID: "alice", GroupID: "g1", SplitType: models.SplitEqual, ExpenseDate: 500, Active: true, Draft: true}
	for _, e := range []*models.Expense{e1, e2, e3, deleted, draft} {
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	ids := func(list []*models.Expense) []string {
		out := make([]string, len(list))
		for i, e := range list {
			out[i] = e.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter storage.ExpenseFilter
		want   []string
	}{
		{"participant sees paid and owed, newest first", storage.ExpenseFilter{UserID: "alice"}, []string{e3.ID, e1.ID}},
		{"group", storage.ExpenseFilter{GroupID: "g1"}, []string{e2.ID, e1.ID}},
		{"user in group", storage.ExpenseFilter{UserID: "carol", GroupID: "g1"}, []string{e2.ID}},
		{"category", storage.ExpenseFilter{UserID: "alice", Category: "food"}, []string{e3.ID}},
		{"limit and offset", storage.ExpenseFilter{GroupID: "g1", Limit: 1, Offset: 1}, []string{e1.ID}},
		{"drafts for payer", storage.ExpenseFilter{UserID: "alice", Drafts: true}, []string{draft.ID}},
		{"drafts hidden from others", storage.ExpenseFilter{UserID: "bob", Drafts: true}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListExpenses(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListExpenses failed: %v", err)
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("ListExpenses = %v, want %v", gotIDs, tt.want)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.want[i] {
					t.Errorf("ListExpenses[%d] = %s, want %s", i, gotIDs[i], tt.want[i])
				}
			}
		})
	}

	listed, _ := s.ListExpenses(ctx, storage.ExpenseFilter{GroupID: "g1"})
	for _, e := range listed {
		if len(e.Splits) == 0 {
			t.Errorf("expense %s listed without splits", e.ID)
		}
	}
}

func testSettlements(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")
	seedGroup(t, s, "g1", "alice", "bob", "carol")

	st := &models.Settlement{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     d("300.50"),
		GroupID:    "g1",
		Method:     models.PaymentUPI,
		Reference:  "UPI-123",
		Notes:      "court",
		Active:     true,
		CreatedBy:  "bob",
		CreatedAt:  100,
	}
	if err := s.CreateSettlement(ctx, st); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	if st.ID == "" {
		t.Fatal("Expected settlement ID to be generated")
	}

	got, err := s.GetSettlement(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if !got.Amount.Equal(d("300.50")) || got.Method != models.PaymentUPI || got.Reference != "UPI-123" || got.Notes != "court" || got.CreatedBy != "bob" || !got.Active {
		t.Errorf("GetSettlement = %+v", got)
	}

	global := &models.Settlement{FromUserID: "carol", ToUserID: "bob", Amount: d("10"), Method: models.PaymentCash, Active: true, CreatedBy: "carol", CreatedAt: 200}
	if err := s.CreateSettlement(ctx, global); err != nil {
		t.Fatalf("CreateSettlement(global) failed: %v", err)
	}

	bobs, err := s.ListSettlements(ctx, storage.SettlementFilter{UserID: "bob"})
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(bobs) != 2 || bobs[0].ID != global.ID {
		t.Errorf("ListSettlements(bob) = %v", bobs)
	}
	inGroup, _ := s.ListSettlements(ctx, storage.SettlementFilter{GroupID: "g1"})
	if len(inGroup) != 1 || inGroup[0].ID != st.ID {
		t.Errorf("ListSettlements(g1) = %v", inGroup)
	}
	limited, _ := s.ListSettlements(ctx, storage.SettlementFilter{UserID: "bob", Limit: 1})
	if len(limited) != 1 {
		t.Errorf("ListSettlements(limit 1) returned %d", len(limited))
	}

	if err := s.DeactivateSettlement(ctx, st.ID); err != nil {
		t.Fatalf("DeactivateSettlement failed: %v", err)
	}
	reversed, _ := s.GetSettlement(ctx, st.ID)
	if reversed.Active {
		t.Error("settlement still active after reversal")
	}
	inGroup, _ = s.ListSettlements(ctx, storage.SettlementFilter{GroupID: "g1"})
	if len(inGroup) != 0 {
		t.Errorf("reversed settlement still listed: %v", inGroup)
	}

	if err := s.DeactivateSettlement(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("DeactivateSettlement(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetSettlement(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetSettlement(missing) error = %v, want ErrNotFound", err)
	}
}

func testLoadLedger(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob", "carol")
	seedGroup(t, s, "g1", "alice", "bob", "carol")

	inGroup := equalSplit("alice", "g1", "30", 100, "alice", "bob", "carol")
	bobOwes := equalSplit("carol", "", "20", 200, "carol", "bob")
	unrelated := equalSplit("carol", "", "20", 300, "carol")
	deleted := equalSplit("alice", "g1", "40", 400, "alice", "bob")
	deleted.Active = false
	for _, e := range []*models.Expense{inGroup, bobOwes, unrelated, deleted} {
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}
	settlements := []*models.Settlement{
		{FromUserID: "bob", ToUserID: "alice", Amount: d("10"), GroupID: "g1", Method: models.PaymentCash, Active: true, CreatedBy: "bob"},
		{FromUserID: "alice", ToUserID: "carol", Amount: d("5"), Method: models.PaymentCash, Active: true, CreatedBy: "alice"},
	}
	for _, st := range settlements {
		if err := s.CreateSettlement(ctx, st); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
	}

	global, err := s.LoadLedger(ctx, storage.LedgerQuery{UserID: "bob"})
	if err != nil {
		t.Fatalf("LoadLedger(global) failed: %v", err)
	}
	if len(global.Expenses) != 2 {
		t.Errorf("global snapshot has %d expenses, want 2", len(global.Expenses))
	}
	for _, e := range global.Expenses {
		if e.ID == unrelated.ID || e.ID == deleted.ID {
			t.Errorf("unexpected expense %s in snapshot", e.ID)
		}
		if len(e.Splits) == 0 {
			t.Errorf("expense %s loaded without splits", e.ID)
		}
	}
	if len(global.Settlements) != 1 || global.Settlements[0].FromUserID != "bob" {
		t.Errorf("global settlements = %v", global.Settlements)
	}

	group, err := s.LoadLedger(ctx, storage.LedgerQuery{UserID: "carol", GroupID: "g1"})
	if err != nil {
		t.Fatalf("LoadLedger(group) failed: %v", err)
	}
	if len(group.Expenses) != 1 || group.Expenses[0].ID != inGroup.ID || len(group.Expenses[0].Splits) != 3 {
		t.Errorf("group snapshot expenses = %v", group.Expenses)
	}
	if len(group.Settlements) != 1 || group.Settlements[0].GroupID != "g1" {
		t.Errorf("group snapshot settlements = %v", group.Settlements)
	}
}

func testNotifications(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seedUsers(t, s, "alice", "bob")

	var created []*models.Notification
	for i, typ := range []models.NotificationType{models.NotificationExpenseAdded, models.NotificationSettlement, models.NotificationGroupInvite} {
		n := &models.Notification{
			UserID:    "bob",
			Type:      typ,
			Title:     "Title",
			Message:   "Message",
			ActorID:   "alice",
			CreatedAt: int64(100 + i),
		}
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification failed: %v", err)
		}
		created = append(created, n)
	}
	other := &models.Notification{UserID: "alice", Type: models.NotificationSettlement, Title: "x", Message: "y"}
	if err := s.CreateNotification(ctx, other); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	list, err := s.ListNotifications(ctx, storage.NotificationFilter{UserID: "bob"})
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 3 || list[0].ID != created[2].ID {
		t.Fatalf("ListNotifications = %v", list)
	}
	if list[2].Type != models.NotificationExpenseAdded || list[2].ActorID != "alice" {
		t.Errorf("notification fields lost: %+v", list[2])
	}

	count, _ := s.CountUnread(ctx, "bob")
	if count != 3 {
		t.Errorf("CountUnread = %d, want 3", count)
	}

	// alice cannot mark bob's notifications
	changed, err := s.MarkNotificationsRead(ctx, "alice", []string{created[0].ID})
	if err != nil || changed != 0 {
		t.Errorf("MarkNotificationsRead(other user) = %d, %v", changed, err)
	}

	changed, err = s.MarkNotificationsRead(ctx, "bob", []string{created[0].ID})
	if err != nil || changed != 1 {
		t.Errorf("MarkNotificationsRead = %d, %v, want 1", changed, err)
	}
	unread, _ := s.ListNotifications(ctx, storage.NotificationFilter{UserID: "bob", UnreadOnly: true})
	if len(unread) != 2 {
		t.Errorf("unread = %d, want 2", len(unread))
	}

	changed, err = s.MarkNotificationsRead(ctx, "bob", nil)
	if err != nil || changed != 2 {
		t.Errorf("MarkNotificationsRead(all) = %d, %v, want 2", changed, err)
	}
	count, _ = s.CountUnread(ctx, "bob")
	if count != 0 {
		t.Errorf("CountUnread after marking all = %d", count)
	}
	if count, _ := s.CountUnread(ctx, "alice"); count != 1 {
		t.Errorf("alice's unread count = %d, want 1", count)
	}

	limited, _ := s.ListNotifications(ctx, storage.NotificationFilter{UserID: "bob", Limit: 2})
	if len(limited) != 2 {
		t.Errorf("ListNotifications(limit 2) returned %d", len(limited))
	}
}
