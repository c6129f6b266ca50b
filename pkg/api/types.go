package api

import "github.com/shopspring/decimal"

// Amounts are decimal strings on the wire ("1200.00"), never floats.

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	DisplayName    string `json:"display_name"`
	PaymentAddress string `json:"payment_address,omitempty"`
	Active         bool   `json:"active"`
	CreatedAt      int64  `json:"created_at"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type Member struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

// GroupSummary is a group in the caller's group list.
type GroupSummary struct {
	Group       *Group          `json:"group"`
	MemberCount int             `json:"member_count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// SplitConfig chooses how an expense is divided.
// Type is one of equal, exact, percentage, shares.
type SplitConfig struct {
	Type         string        `json:"type"`
	Participants []Participant `json:"participants"`
}

// Participant is one entry of a SplitConfig. Only the field matching the
// split type is read.
type Participant struct {
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount,omitzero"`
	Percentage decimal.Decimal `json:"percentage,omitzero"`
	Shares     decimal.Decimal `json:"shares,omitzero"`
}

type Split struct {
	UserID     string           `json:"user_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Shares     *decimal.Decimal `json:"shares,omitempty"`
}

type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Notes       string          `json:"notes,omitempty"`
	Category    string          `json:"category"`
	PayerID     string          `json:"payer_id"`
	GroupID     string          `json:"group_id,omitempty"`
	SplitType   string          `json:"split_type"`
	Split       *SplitConfig    `json:"split,omitempty"`
	ExpenseDate int64           `json:"expense_date"`
	Draft       bool            `json:"draft"`
	Settled     bool            `json:"settled"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
	Splits      []Split         `json:"splits"`
}

type Settlement struct {
	ID         string          `json:"id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	GroupID    string          `json:"group_id,omitempty"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Active     bool            `json:"active"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  int64           `json:"created_at"`
}

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ExpenseID string `json:"expense_id,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

// Balance is the caller's signed balance with one counterpart: positive when
// the counterpart owes the caller.
type Balance struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Position is a member's net position in a group: positive when owed.
type Position struct {
	UserID string          `json:"user_id"`
	Net    decimal.Decimal `json:"net"`
}

// Transfer is a suggested payment that helps settle a group.
type Transfer struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Empty is the message of procedures that take or return nothing.
type Empty struct{}
