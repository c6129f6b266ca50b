package models

import "github.com/shopspring/decimal"

// SplitType is the strategy used to divide an expense among participants.
type SplitType string

const (
	// SplitEqual divides the total equally.
	SplitEqual SplitType = "equal"
	// SplitExact uses an explicit amount per participant.
	SplitExact SplitType = "exact"
	// SplitPercentage uses a percentage per participant.
	SplitPercentage SplitType = "percentage"
	// SplitShares uses a share count per participant.
	SplitShares SplitType = "shares"
)

// Valid reports whether t is a known split strategy.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitExact, SplitPercentage, SplitShares:
		return true
	}
	return false
}

// Expense represents a payment made by one user on behalf of a set of participants.
//
// Example: Paritosh pays ₹1200 for a badminton court split equally among four
// people. The expense records the ₹1200 and the payer; each of the four Splits
// records ₹300.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal

	// Currency is an ISO 4217 code, "INR" by default.
	Currency string

	// Description is a short summary (e.g., "Badminton court booking").
	Description string

	// Notes is optional free text.
	Notes string

	// Category is one of food, transport, sports, entertainment, utilities, rent, other.
	Category string

	// PayerID is the user who paid.
	PayerID string

	// GroupID is the group the expense belongs to, empty for one-on-one expenses.
	GroupID string

	// SplitType is the strategy that produced (or will produce) the splits.
	SplitType SplitType

	// SplitConfig is the split configuration. For a draft it is the pending
	// configuration applied on submission; for a committed expense it is the
	// configuration that produced Splits, kept for recomputation on amount changes.
	SplitConfig *SplitConfig

	// ExpenseDate is the Unix timestamp when the expense happened. Defaults to creation time.
	ExpenseDate int64

	// Active is false once the expense has been deleted.
	Active bool

	// Settled marks an expense whose splits have all been paid back.
	Settled bool

	// Draft marks an expense staged without committed splits or notifications.
	Draft bool

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64

	// Splits are the committed per-participant shares. Empty for drafts.
	Splits []Split
}

// Participants returns the user IDs holding a split, in split order.
func (e *Expense) Participants() []string {
	ids := make([]string, len(e.Splits))
	for i, s := range e.Splits {
		ids[i] = s.UserID
	}
	return ids
}

// IsParticipant reports whether userID is the payer or holds a split.
func (e *Expense) IsParticipant(userID string) bool {
	if e.PayerID == userID {
		return true
	}
	_, ok := e.ShareOf(userID)
	return ok
}

// ShareOf returns userID's split amount.
func (e *Expense) ShareOf(userID string) (decimal.Decimal, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s.Amount, true
		}
	}
	return decimal.Zero, false
}

// SplitConfig is the input of the split allocator: a strategy and its participants.
type SplitConfig struct {
	Type         SplitType          `json:"type"`
	Participants []SplitParticipant `json:"participants"`
}

// UserIDs returns the participant IDs in the order given.
func (c *SplitConfig) UserIDs() []string {
	ids := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// SplitParticipant is one participant of a split configuration.
// Only the field matching the strategy is read: Amount for exact,
// Percentage for percentage, Shares for shares; equal reads none.
type SplitParticipant struct {
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount,omitzero"`
	Percentage decimal.Decimal `json:"percentage,omitzero"`
	Shares     decimal.Decimal `json:"shares,omitzero"`
}

// Split is one participant's owed share of an expense.
type Split struct {
	// ExpenseID is the owning expense.
	ExpenseID string

	// UserID is the participant who owes Amount to the payer.
	UserID string

	// Amount is the owed share.
	Amount decimal.Decimal

	// Percentage is the percentage that produced Amount, for percentage splits.
	Percentage decimal.NullDecimal

	// Shares is the share count that produced Amount, for shares splits.
	Shares decimal.NullDecimal

	// Position is the split's index in allocation order.
	Position int
}
