package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/storage/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &models.Expense{
		Amount:  decimal.NewFromInt(10),
		PayerID: "alice",
		Active:  true,
		Splits:  []models.Split{{UserID: "alice", Amount: decimal.NewFromInt(10)}},
	}
	if err := s.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	e.Splits[0].Amount = decimal.NewFromInt(99)
	got, _ := s.GetExpense(ctx, e.ID)
	if !got.Splits[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("caller mutation leaked into store: %s", got.Splits[0].Amount)
	}

	got.Splits[0].UserID = "mallory"
	again, _ := s.GetExpense(ctx, e.ID)
	if again.Splits[0].UserID != "alice" {
		t.Errorf("returned value shares state with store: %s", again.Splits[0].UserID)
	}
}
