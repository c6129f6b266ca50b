package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hisab/internal/models"
)

// NewID returns a new opaque identifier. Every backend uses it so ids look the
// same regardless of the engine's native key type.
func NewID() string {
	return uuid.New().String()
}

// PrepareUser fills in the ID and timestamps of a user about to be created.
func PrepareUser(u *models.User) {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	if u.UpdatedAt == 0 {
		u.UpdatedAt = u.CreatedAt
	}
}

// PrepareGroup fills in the ID and timestamps of a group about to be created,
// and points every membership at it.
func PrepareGroup(g *models.Group, members []*models.Membership) {
	if g.ID == "" {
		g.ID = NewID()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	if g.UpdatedAt == 0 {
		g.UpdatedAt = g.CreatedAt
	}
	for _, m := range members {
		m.GroupID = g.ID
		if m.JoinedAt == 0 {
			m.JoinedAt = g.CreatedAt
		}
	}
}

// PrepareExpense fills in the ID, timestamps and expense date of an expense
// about to be created, and numbers its splits.
func PrepareExpense(e *models.Expense) {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	if e.UpdatedAt == 0 {
		e.UpdatedAt = e.CreatedAt
	}
	if e.ExpenseDate == 0 {
		e.ExpenseDate = e.CreatedAt
	}
	PrepareSplits(e)
}

// PrepareSplits points every split at its expense and numbers them in order.
func PrepareSplits(e *models.Expense) {
	for i := range e.Splits {
		e.Splits[i].ExpenseID = e.ID
		e.Splits[i].Position = i
	}
}

// PrepareSettlement fills in the ID and timestamp of a settlement about to be created.
func PrepareSettlement(s *models.Settlement) {
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().Unix()
	}
}

// PrepareNotification fills in the ID and timestamp of a notification about to be created.
func PrepareNotification(n *models.Notification) {
	if n.ID == "" {
		n.ID = NewID()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
}

// Page applies offset and limit to n items and returns the bounds to slice with.
// A limit of zero or less means no limit.
func Page(n, offset, limit int) (start, end int) {
	start = min(max(offset, 0), n)
	end = n
	if limit > 0 && start+limit < n {
		end = start + limit
	}
	return start, end
}
