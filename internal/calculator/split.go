package calculator

import (
	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/shopspring/decimal"
)

// Allocate divides total among the participants of cfg and returns one Split per
// participant, in allocation order.
//
// Strategies:
//   - equal: floor(total/n) to the minor unit, then the leftover minor units go one
//     at a time to the first participants in the order given, so the splits always
//     sum to total exactly
//   - exact: explicit amounts; when payerID is not listed the payer's share is
//     the remainder total - sum(others)
//   - percentage: round(total * pct / 100), percentages are not required to sum to 100
//   - shares: round(total * share / sum(shares))
//
// Every failed precondition returns an error wrapping errs.ErrInvalidSplit.
func Allocate(total decimal.Decimal, payerID string, cfg models.SplitConfig) ([]models.Split, error) {
	if !total.IsPositive() {
		return nil, errs.InvalidSplit("total must be positive, got %s", total)
	}
	if !HasMinorPrecision(total) {
		return nil, errs.InvalidSplit("total %s has more than %d decimal places", total, MinorUnitPlaces)
	}
	if total.GreaterThan(MaxAmount) {
		return nil, errs.InvalidSplit("total %s exceeds the maximum amount %s", total, MaxAmount)
	}
	if len(cfg.Participants) == 0 {
		return nil, errs.InvalidSplit("must have at least one participant")
	}

	switch cfg.Type {
	case models.SplitEqual:
		return allocateEqual(total, cfg.Participants)
	case models.SplitExact:
		return allocateExact(total, payerID, cfg.Participants)
	case models.SplitPercentage:
		return allocatePercentage(total, cfg.Participants)
	case models.SplitShares:
		return allocateShares(total, cfg.Participants)
	default:
		return nil, errs.InvalidSplit("unknown split type %q", cfg.Type)
	}
}

// allocateEqual divides whole minor units in decimal arithmetic so nothing is
// lost to rounding.
// Duplicate participants are collapsed, keeping the first occurrence.
func allocateEqual(total decimal.Decimal, participants []models.SplitParticipant) ([]models.Split, error) {
	seen := make(map[string]bool, len(participants))
	var users []string
	for _, p := range participants {
		if p.UserID == "" {
			return nil, errs.InvalidSplit("participant without user id")
		}
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		users = append(users, p.UserID)
	}

	minor := total.Shift(MinorUnitPlaces)
	base, rest := minor.QuoRem(decimal.NewFromInt(int64(len(users))), 0)
	remainder := int(rest.IntPart()) // below len(users)

	splits := make([]models.Split, len(users))
	for i, userID := range users {
		units := base
		if i < remainder {
			units = units.Add(decimal.NewFromInt(1))
		}
		splits[i] = models.Split{
			UserID:   userID,
			Amount:   units.Shift(-MinorUnitPlaces),
			Position: i,
		}
	}
	return splits, nil
}

func allocateExact(total decimal.Decimal, payerID string, participants []models.SplitParticipant) ([]models.Split, error) {
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	splits := make([]models.Split, 0, len(participants)+1)
	allocated := decimal.Zero
	payerListed := false
	for i, p := range participants {
		if p.Amount.IsNegative() {
			return nil, errs.InvalidSplit("amount for %s is negative", p.UserID)
		}
		if !HasMinorPrecision(p.Amount) {
			return nil, errs.InvalidSplit("amount for %s has more than %d decimal places", p.UserID, MinorUnitPlaces)
		}
		if p.UserID == payerID {
			payerListed = true
		}
		allocated = allocated.Add(p.Amount)
		splits = append(splits, models.Split{UserID: p.UserID, Amount: p.Amount, Position: i})
	}

	remainder := total.Sub(allocated)
	if payerListed {
		if !IsNegligible(remainder) {
			return nil, errs.InvalidSplit("exact amounts sum to %s, expected %s", allocated, total)
		}
		return splits, nil
	}

	if remainder.IsNegative() {
		return nil, errs.InvalidSplit("exact amounts %s exceed total %s", allocated, total)
	}
	if remainder.IsPositive() {
		if payerID == "" {
			return nil, errs.InvalidSplit("exact amounts sum to %s, expected %s", allocated, total)
		}
		splits = append(splits, models.Split{UserID: payerID, Amount: remainder, Position: len(splits)})
	}
	return splits, nil
}

func allocatePercentage(total decimal.Decimal, participants []models.SplitParticipant) ([]models.Split, error) {
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return nil, errs.InvalidSplit("percentage for %s must be between 0 and 100, got %s", p.UserID, p.Percentage)
		}
		splits[i] = models.Split{
			UserID:     p.UserID,
			Amount:     Round(total.Mul(p.Percentage).Div(hundred)),
			Percentage: decimal.NewNullDecimal(p.Percentage),
			Position:   i,
		}
	}
	return splits, nil
}

func allocateShares(total decimal.Decimal, participants []models.SplitParticipant) ([]models.Split, error) {
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	totalShares := decimal.Zero
	for _, p := range participants {
		if !p.Shares.IsPositive() {
			return nil, errs.InvalidSplit("shares for %s must be positive, got %s", p.UserID, p.Shares)
		}
		totalShares = totalShares.Add(p.Shares)
	}
	if !totalShares.IsPositive() {
		return nil, errs.InvalidSplit("total shares must be positive")
	}

	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		splits[i] = models.Split{
			UserID:   p.UserID,
			Amount:   Round(total.Mul(p.Shares).Div(totalShares)),
			Shares:   decimal.NewNullDecimal(p.Shares),
			Position: i,
		}
	}
	return splits, nil
}

func checkUnique(participants []models.SplitParticipant) error {
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.UserID == "" {
			return errs.InvalidSplit("participant without user id")
		}
		if seen[p.UserID] {
			return errs.InvalidSplit("user %s listed more than once", p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

// SplitTotal returns the sum of the split amounts.
func SplitTotal(splits []models.Split) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(splits))
	for i, s := range splits {
		amounts[i] = s.Amount
	}
	return sum(amounts)
}

// Rescale re-derives the participants of an exact configuration for a new total.
// Listed amounts are kept and the payer absorbs the difference; it fails when the
// payer's share would go negative.
func Rescale(cfg models.SplitConfig, payerID string, newTotal decimal.Decimal) (models.SplitConfig, error) {
	if cfg.Type != models.SplitExact {
		return cfg, nil
	}

	others := decimal.Zero
	payerIdx := -1
	for i, p := range cfg.Participants {
		if p.UserID == payerID {
			payerIdx = i
			continue
		}
		others = others.Add(p.Amount)
	}

	share := newTotal.Sub(others)
	if share.IsNegative() {
		return cfg, errs.InvalidSplit("exact amounts %s exceed new total %s", others, newTotal)
	}

	out := models.SplitConfig{Type: cfg.Type, Participants: make([]models.SplitParticipant, 0, len(cfg.Participants))}
	for i, p := range cfg.Participants {
		if i == payerIdx {
			p.Amount = share
		}
		out.Participants = append(out.Participants, p)
	}
	return out, nil
}
