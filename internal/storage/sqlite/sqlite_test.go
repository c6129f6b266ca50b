package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/storage/storetest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "hisab.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	user := models.NewUser("", "alice@example.com", "", "Alice")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	store.Close()

	// Migrations must be a no-op the second time
	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser after reopen failed: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", got.Email)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	e := &models.Expense{
		Amount:    decimal.NewFromInt(10),
		Currency:  "INR",
		PayerID:   "ghost",
		SplitType: models.SplitEqual,
		Active:    true,
	}
	err := store.CreateExpense(ctx, e)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("CreateExpense with unknown payer error = %v, want ErrNotFound", err)
	}
}

func TestFailedSplitInsertRollsBack(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	if err := store.CreateUser(ctx, models.NewUser("alice", "alice@example.com", "", "Alice")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	e := &models.Expense{
		ID:        "e1",
		Amount:    decimal.NewFromInt(10),
		Currency:  "INR",
		PayerID:   "alice",
		SplitType: models.SplitEqual,
		Active:    true,
		Splits: []models.Split{
			{UserID: "alice", Amount: decimal.NewFromInt(5)},
			{UserID: "alice", Amount: decimal.NewFromInt(5)},
		},
	}
	if err := store.CreateExpense(ctx, e); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("CreateExpense with duplicate split error = %v, want ErrConflict", err)
	}

	if _, err := store.GetExpense(ctx, "e1"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expense visible after failed insert: %v", err)
	}
}
