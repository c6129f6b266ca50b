package calculator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func participants(ids ...string) []models.SplitParticipant {
	out := make([]models.SplitParticipant, len(ids))
	for i, id := range ids {
		out[i] = models.SplitParticipant{UserID: id}
	}
	return out
}

func amounts(splits []models.Split) map[string]string {
	out := make(map[string]string, len(splits))
	for _, s := range splits {
		out[s.UserID] = s.Amount.StringFixed(2)
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		payer        string
		cfg          models.SplitConfig
		wantErr      error
		validateFunc func(t *testing.T, splits []models.Split)
	}{
		{
			name:  "equal split with remainder goes to first participants",
			total: "10.00",
			payer: "alice",
			cfg:   models.SplitConfig{Type: models.SplitEqual, Participants: participants("alice", "bob", "carol")},
			validateFunc: func(t *testing.T, splits []models.Split) {
				want := []string{"3.34", "3.33", "3.33"}
				for i, s := range splits {
					if s.Amount.StringFixed(2) != want[i] {
						t.Errorf("split %d (%s) = %s, want %s", i, s.UserID, s.Amount.StringFixed(2), want[i])
					}
					if s.Position != i {
						t.Errorf("split %d position = %d", i, s.Position)
					}
				}
			},
		},
		{
			name:  "equal split four ways",
			total: "1200",
			payer: "a",
			cfg:   models.SplitConfig{Type: models.SplitEqual, Participants: participants("a", "b", "c", "d")},
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if !s.Amount.Equal(d("300")) {
						t.Errorf("%s = %s, want 300", s.UserID, s.Amount)
					}
				}
			},
		},
		{
			name:  "equal split collapses duplicates",
			total: "9",
			payer: "a",
			cfg:   models.SplitConfig{Type: models.SplitEqual, Participants: participants("a", "b", "a", "c")},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if len(splits) != 3 {
					t.Fatalf("got %d splits, want 3", len(splits))
				}
			},
		},
		{
			name:  "exact split with payer absent gives payer the remainder",
			total: "1000",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitExact, Participants: []models.SplitParticipant{
				{UserID: "b", Amount: d("400")},
				{UserID: "c", Amount: d("300")},
			}},
			validateFunc: func(t *testing.T, splits []models.Split) {
				got := amounts(splits)
				want := map[string]string{"a": "300.00", "b": "400.00", "c": "300.00"}
				for id, amt := range want {
					if got[id] != amt {
						t.Errorf("%s = %s, want %s", id, got[id], amt)
					}
				}
			},
		},
		{
			name:  "exact split fully allocated to others adds no payer split",
			total: "100",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitExact, Participants: []models.SplitParticipant{
				{UserID: "b", Amount: d("100")},
			}},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if len(splits) != 1 || splits[0].UserID != "b" {
					t.Errorf("splits = %+v, want only b", splits)
				}
			},
		},
		{
			name:  "exact split with payer listed must sum to total",
			total: "100",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitExact, Participants: []models.SplitParticipant{
				{UserID: "a", Amount: d("30")},
				{UserID: "b", Amount: d("60")},
			}},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:  "exact amounts exceeding total with payer absent",
			total: "100",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitExact, Participants: []models.SplitParticipant{
				{UserID: "b", Amount: d("70")},
				{UserID: "c", Amount: d("40")},
			}},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:  "exact negative amount",
			total: "100",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitExact, Participants: []models.SplitParticipant{
				{UserID: "b", Amount: d("-10")},
			}},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:  "percentage split rounds each share",
			total: "100",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitPercentage, Participants: []models.SplitParticipant{
				{UserID: "a", Percentage: d("33.333")},
				{UserID: "b", Percentage: d("66.667")},
			}},
			validateFunc: func(t *testing.T, splits []models.Split) {
				got := amounts(splits)
				if got["a"] != "33.33" || got["b"] != "66.67" {
					t.Errorf("amounts = %v", got)
				}
				if !splits[0].Percentage.Valid || !splits[0].Percentage.Decimal.Equal(d("33.333")) {
					t.Errorf("percentage not retained: %+v", splits[0].Percentage)
				}
			},
		},
		{
			name:  "percentages need not sum to 100",
			total: "200",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitPercentage, Participants: []models.SplitParticipant{
				{UserID: "a", Percentage: d("25")},
				{UserID: "b", Percentage: d("25")},
			}},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if !SplitTotal(splits).Equal(d("100")) {
					t.Errorf("total = %s, want 100", SplitTotal(splits))
				}
			},
		},
		{
			name:  "percentage above 100",
			total: "100",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitPercentage, Participants: []models.SplitParticipant{
				{UserID: "a", Percentage: d("101")},
			}},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:  "shares split",
			total: "90",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitShares, Participants: []models.SplitParticipant{
				{UserID: "a", Shares: d("1")},
				{UserID: "b", Shares: d("2")},
			}},
			validateFunc: func(t *testing.T, splits []models.Split) {
				got := amounts(splits)
				if got["a"] != "30.00" || got["b"] != "60.00" {
					t.Errorf("amounts = %v", got)
				}
				if !splits[1].Shares.Valid || !splits[1].Shares.Decimal.Equal(d("2")) {
					t.Errorf("shares not retained: %+v", splits[1].Shares)
				}
			},
		},
		{
			name:  "zero shares",
			total: "90",
			payer: "a",
			cfg: models.SplitConfig{Type: models.SplitShares, Participants: []models.SplitParticipant{
				{UserID: "a", Shares: d("0")},
			}},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:    "no participants",
			total:   "10",
			payer:   "a",
			cfg:     models.SplitConfig{Type: models.SplitEqual},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:    "duplicate participants in weighted split",
			total:   "10",
			payer:   "a",
			cfg:     models.SplitConfig{Type: models.SplitShares, Participants: []models.SplitParticipant{{UserID: "b", Shares: d("1")}, {UserID: "b", Shares: d("1")}}},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:    "non-positive total",
			total:   "0",
			payer:   "a",
			cfg:     models.SplitConfig{Type: models.SplitEqual, Participants: participants("a")},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:    "sub-minor-unit total",
			total:   "10.005",
			payer:   "a",
			cfg:     models.SplitConfig{Type: models.SplitEqual, Participants: participants("a")},
			wantErr: errs.ErrInvalidSplit,
		},
		{
			name:    "unknown strategy",
			total:   "10",
			payer:   "a",
			cfg:     models.SplitConfig{Type: "itemized", Participants: participants("a")},
			wantErr: errs.ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := Allocate(d(tt.total), tt.payer, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Allocate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestAllocateEqualPreservesSum(t *testing.T) {
	totals := []string{"0.01", "0.99", "1.00", "10.00", "99.99", "100.01", "1234.57", "99999.99", "1000000.00"}
	for _, total := range totals {
		for n := 1; n <= 100; n++ {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("u%03d", i)
			}
			splits, err := Allocate(d(total), ids[0], models.SplitConfig{Type: models.SplitEqual, Participants: participants(ids...)})
			if err != nil {
				t.Fatalf("total=%s n=%d: %v", total, n, err)
			}
			if got := SplitTotal(splits); !got.Equal(d(total)) {
				t.Fatalf("total=%s n=%d: splits sum to %s", total, n, got)
			}
			// No two shares differ by more than one minor unit
			spread := splits[0].Amount.Sub(splits[n-1].Amount)
			if spread.GreaterThan(Tolerance) || spread.IsNegative() {
				t.Fatalf("total=%s n=%d: spread %s", total, n, spread)
			}
		}
	}
}

func TestAllocateAtMaxAmount(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 97} {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("u%03d", i)
		}
		splits, err := Allocate(MaxAmount, ids[0], models.SplitConfig{Type: models.SplitEqual, Participants: participants(ids...)})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if got := SplitTotal(splits); !got.Equal(MaxAmount) {
			t.Fatalf("n=%d: splits sum to %s, want %s", n, got, MaxAmount)
		}
		for _, s := range splits {
			if !s.Amount.IsPositive() || !HasMinorPrecision(s.Amount) {
				t.Fatalf("n=%d: split %s = %s", n, s.UserID, s.Amount)
			}
		}
	}
}

func TestAllocateRejectsAmountsAboveMax(t *testing.T) {
	cfg := models.SplitConfig{Type: models.SplitEqual, Participants: participants("a", "b", "c")}
	for _, total := range []string{"1000000000000.00", "100000000000000000.00"} {
		_, err := Allocate(d(total), "a", cfg)
		if !errors.Is(err, errs.ErrInvalidSplit) {
			t.Errorf("Allocate(%s) error = %v, want ErrInvalidSplit", total, err)
		}
	}
}

func TestAllocateWeightedWithinTolerance(t *testing.T) {
	cfg := models.SplitConfig{Type: models.SplitShares, Participants: []models.SplitParticipant{
		{UserID: "a", Shares: d("1")},
		{UserID: "b", Shares: d("1")},
		{UserID: "c", Shares: d("1")},
	}}
	splits, err := Allocate(d("100"), "a", cfg)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	gap := SplitTotal(splits).Sub(d("100")).Abs()
	if gap.GreaterThan(SplitTolerance(len(splits))) {
		t.Errorf("gap %s exceeds tolerance %s", gap, SplitTolerance(len(splits)))
	}
}

func TestRescale(t *testing.T) {
	cfg := models.SplitConfig{Type: models.SplitExact, Participants: []models.SplitParticipant{
		{UserID: "a", Amount: d("50")},
		{UserID: "b", Amount: d("30")},
		{UserID: "c", Amount: d("20")},
	}}

	t.Run("payer absorbs the difference", func(t *testing.T) {
		out, err := Rescale(cfg, "a", d("120"))
		if err != nil {
			t.Fatalf("Rescale() error: %v", err)
		}
		if !out.Participants[0].Amount.Equal(d("70")) {
			t.Errorf("payer amount = %s, want 70", out.Participants[0].Amount)
		}
		if !cfg.Participants[0].Amount.Equal(d("50")) {
			t.Error("Rescale modified its input")
		}
	})

	t.Run("new total below the others' amounts", func(t *testing.T) {
		if _, err := Rescale(cfg, "a", d("40")); !errors.Is(err, errs.ErrInvalidSplit) {
			t.Errorf("Rescale() error = %v, want ErrInvalidSplit", err)
		}
	})

	t.Run("non-exact config unchanged", func(t *testing.T) {
		eq := models.SplitConfig{Type: models.SplitEqual, Participants: participants("a", "b")}
		out, err := Rescale(eq, "a", d("5"))
		if err != nil || len(out.Participants) != 2 {
			t.Errorf("Rescale() = %+v, %v", out, err)
		}
	})
}
