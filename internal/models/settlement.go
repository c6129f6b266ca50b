package models

import "github.com/shopspring/decimal"

// PaymentMethod is how a settlement was paid outside the ledger.
type PaymentMethod string

const (
	PaymentUPI          PaymentMethod = "upi"
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentUPI, PaymentCash, PaymentBankTransfer, PaymentOther:
		return true
	}
	return false
}

// Settlement records that FromUserID paid ToUserID outside the ledger.
// It moves no money; it only adjusts computed balances. Settlements are
// immutable except for Active, which is cleared on reversal.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// GroupID scopes the settlement to a group. Empty for a global settlement.
	GroupID string

	// Method is the payment channel used.
	Method PaymentMethod

	// Reference is the external transaction reference (e.g., UPI transaction id).
	Reference string

	// Notes is an optional description for the settlement.
	Notes string

	// Active is false once the settlement has been reversed.
	Active bool

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// Involves reports whether userID is a party to the settlement.
func (s *Settlement) Involves(userID string) bool {
	return s.FromUserID == userID || s.ToUserID == userID
}
