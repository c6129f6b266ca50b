package api

import "github.com/shopspring/decimal"

// UserService

type RegisterUserRequest struct {
	Email          string `json:"email,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	DisplayName    string `json:"display_name"`
	PaymentAddress string `json:"payment_address,omitempty"`
}

// GetUserRequest reads one profile. An empty UserID reads the caller's.
type GetUserRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type GetUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type GetUsersResponse struct {
	Users []*User `json:"users"`
}

type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name,omitempty"`
	PaymentAddress *string `json:"payment_address,omitempty"`
}

type UserResponse struct {
	User *User `json:"user"`
}

// GroupService

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
}

type GroupRequest struct {
	GroupID string `json:"group_id"`
}

type GroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members"`
}

type ListGroupsResponse struct {
	Groups []*GroupSummary `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID     string  `json:"group_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type AddMembersRequest struct {
	GroupID string   `json:"group_id"`
	UserIDs []string `json:"user_ids,omitempty"`
	Emails  []string `json:"emails,omitempty"`
}

type AddMembersResponse struct {
	Added []*Member `json:"added"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type GroupBalancesResponse struct {
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalShare    decimal.Decimal `json:"total_share"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	Balances      []*Balance      `json:"balances"`
}

type SettlementPlanResponse struct {
	Positions []*Position `json:"positions"`
	Transfers []*Transfer `json:"transfers"`
}

// ExpenseService

type AllocateSplitRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Split  SplitConfig     `json:"split"`
}

type AllocateSplitResponse struct {
	Splits []Split `json:"splits"`
}

type CreateExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Description string          `json:"description"`
	Notes       string          `json:"notes,omitempty"`
	Category    string          `json:"category,omitempty"`
	GroupID     string          `json:"group_id,omitempty"`
	ExpenseDate int64           `json:"expense_date,omitempty"`
	Split       SplitConfig     `json:"split"`
	Draft       bool            `json:"draft,omitempty"`
}

type ExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type ExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID   string           `json:"expense_id"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	Category    *string          `json:"category,omitempty"`
	ExpenseDate *int64           `json:"expense_date,omitempty"`
	Split       *SplitConfig     `json:"split,omitempty"`
}

type ListExpensesRequest struct {
	GroupID  string `json:"group_id,omitempty"`
	Category string `json:"category,omitempty"`
	Drafts   bool   `json:"drafts,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// GetBalancesRequest selects the scope: one group, or every group when
// GroupID is empty.
type GetBalancesRequest struct {
	GroupID string `json:"group_id,omitempty"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
	// Net is the sum of Balances.
	Net decimal.Decimal `json:"net"`
}

// SettlementService

type RecordSettlementRequest struct {
	FromUserID string          `json:"from_user_id,omitempty"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	GroupID    string          `json:"group_id,omitempty"`
	Method     string          `json:"method,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

type SettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type ReverseSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

// NotificationService

type ListNotificationsRequest struct {
	UnreadOnly bool `json:"unread_only,omitempty"`
	Limit      int  `json:"limit,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

type MarkReadResponse struct {
	Updated int `json:"updated"`
}
