// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/mmynk/hisab/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, MongoDB,
// in-memory) without changing the ledger. The backend is chosen once at startup.
//
// Lookups of a missing id return an error wrapping errs.ErrNotFound. Driver
// failures return an error wrapping errs.ErrStorageUnavailable.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore
	NotificationStore

	// LoadLedger reads every active expense (with splits) and active settlement
	// relevant to q from a single consistent snapshot. Drafts may be included;
	// the balance engine skips them.
	LoadLedger(ctx context.Context, q LedgerQuery) (*Ledger, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user profiles.
type UserStore interface {
	// CreateUser persists a new user. Returns an error wrapping errs.ErrConflict
	// when the id, email or mobile is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUsersByIDs returns the users found; unknown ids are skipped.
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*models.User, error)
	// UpdateUser writes the mutable profile fields and the active flag.
	UpdateUser(ctx context.Context, user *models.User) error
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup persists the group and its initial memberships atomically.
	CreateGroup(ctx context.Context, group *models.Group, members []*models.Membership) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	// ListGroupsByUser returns the active groups the user is an active member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// GetMembership returns the (group, user) membership, active or not.
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)
	// SaveMembership inserts or replaces the (group, user) membership.
	SaveMembership(ctx context.Context, m *models.Membership) error
	// ListMembers returns the active memberships of a group, in join order.
	ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error)
}

// ExpenseStore persists expenses together with their splits.
type ExpenseStore interface {
	// CreateExpense persists the expense and its splits atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// GetExpense returns the expense with its splits, active or not.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// UpdateExpense writes the expense's scalar fields. When replaceSplits is
	// true the stored splits are replaced by expense.Splits in the same write.
	UpdateExpense(ctx context.Context, expense *models.Expense, replaceSplits bool) error
	// ListExpenses returns active expenses matching the filter, newest first.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)
}

// SettlementStore persists settlements.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// DeactivateSettlement clears the active flag. Settlements are never removed.
	DeactivateSettlement(ctx context.Context, settlementID string) error
	// ListSettlements returns active settlements matching the filter, newest first.
	ListSettlements(ctx context.Context, filter SettlementFilter) ([]*models.Settlement, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	// ListNotifications returns a user's notifications, newest first.
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]*models.Notification, error)
	// MarkNotificationsRead marks the given notifications of userID as read.
	// An empty ids slice marks all of them. Returns the number changed.
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// LedgerQuery selects the rows a balance computation needs.
// With GroupID set: every expense and settlement of that group.
// Otherwise: every expense UserID paid or holds a split in, and every
// settlement UserID is a party to.
type LedgerQuery struct {
	UserID  string
	GroupID string
}

// Ledger is a consistent snapshot of expenses and settlements.
type Ledger struct {
	Expenses    []*models.Expense
	Settlements []*models.Settlement
}

// ExpenseFilter narrows ListExpenses.
type ExpenseFilter struct {
	// UserID restricts to expenses the user paid or holds a split in.
	// Drafts are only ever returned to their payer.
	UserID   string
	GroupID  string
	Category string
	// Drafts selects draft expenses paid by UserID instead of committed ones.
	Drafts bool
	Limit  int
	Offset int
}

// SettlementFilter narrows ListSettlements.
type SettlementFilter struct {
	// UserID restricts to settlements the user is a party to.
	UserID  string
	GroupID string
	Limit   int
}

// NotificationFilter narrows ListNotifications.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
}
