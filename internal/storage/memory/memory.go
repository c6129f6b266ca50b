// Package memory provides an in-process implementation of storage.Store.
// Everything lives in maps guarded by one RWMutex, so every read is a
// consistent snapshot and every multi-row write is atomic.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store in memory. Values are copied on the way in
// and out, so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	users         map[string]*models.User
	groups        map[string]*models.Group
	memberships   map[membershipKey]*models.Membership
	expenses      map[string]*models.Expense
	settlements   map[string]*models.Settlement
	notifications map[string]*models.Notification
}

type membershipKey struct {
	groupID string
	userID  string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:         make(map[string]*models.User),
		groups:        make(map[string]*models.Group),
		memberships:   make(map[membershipKey]*models.Membership),
		expenses:      make(map[string]*models.Expense),
		settlements:   make(map[string]*models.Settlement),
		notifications: make(map[string]*models.Notification),
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage.PrepareUser(u)
	if _, exists := s.users[u.ID]; exists {
		return errs.Conflict("user %s already exists", u.ID)
	}
	for _, other := range s.users {
		if u.Email != "" && other.Email == u.Email {
			return errs.Conflict("email %s already registered", u.Email)
		}
		if u.Mobile != "" && other.Mobile == u.Mobile {
			return errs.Conflict("mobile %s already registered", u.Mobile)
		}
	}
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[userID]; ok {
		c := *u
		return &c, nil
	}
	return nil, errs.NotFound("user %s", userID)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.NotFound("user with email %s", email)
}

func (s *Store) GetUsersByIDs(_ context.Context, userIDs []string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.User, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		u, ok := s.users[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		c := *u
		result = append(result, &c)
	}
	return result, nil
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return errs.NotFound("user %s", u.ID)
	}
	existing.DisplayName = u.DisplayName
	existing.PaymentAddress = u.PaymentAddress
	existing.Active = u.Active
	existing.UpdatedAt = u.UpdatedAt
	return nil
}

// Groups

func (s *Store) CreateGroup(_ context.Context, g *models.Group, members []*models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage.PrepareGroup(g, members)
	if _, exists := s.groups[g.ID]; exists {
		return errs.Conflict("group %s already exists", g.ID)
	}
	c := *g
	s.groups[g.ID] = &c
	for _, m := range members {
		mc := *m
		s.memberships[membershipKey{m.GroupID, m.UserID}] = &mc
	}
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if g, ok := s.groups[groupID]; ok {
		c := *g
		return &c, nil
	}
	return nil, errs.NotFound("group %s", groupID)
}

func (s *Store) UpdateGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[g.ID]; !ok {
		return errs.NotFound("group %s", g.ID)
	}
	c := *g
	s.groups[g.ID] = &c
	return nil
}

func (s *Store) ListGroupsByUser(_ context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Group, 0)
	for key, m := range s.memberships {
		if key.userID != userID || !m.Active {
			continue
		}
		if g, ok := s.groups[key.groupID]; ok && g.Active {
			c := *g
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) GetMembership(_ context.Context, groupID, userID string) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.memberships[membershipKey{groupID, userID}]; ok {
		c := *m
		return &c, nil
	}
	return nil, errs.NotFound("membership of %s in group %s", userID, groupID)
}

func (s *Store) SaveMembership(_ context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[m.GroupID]; !ok {
		return errs.NotFound("group %s", m.GroupID)
	}
	c := *m
	s.memberships[membershipKey{m.GroupID, m.UserID}] = &c
	return nil
}

func (s *Store) ListMembers(_ context.Context, groupID string) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Membership, 0)
	for key, m := range s.memberships {
		if key.groupID == groupID && m.Active {
			c := *m
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].JoinedAt != result[j].JoinedAt {
			return result[i].JoinedAt < result[j].JoinedAt
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

// Expenses

func (s *Store) CreateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage.PrepareExpense(e)
	if _, exists := s.expenses[e.ID]; exists {
		return errs.Conflict("expense %s already exists", e.ID)
	}
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (s *Store) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.expenses[expenseID]; ok {
		return cloneExpense(e), nil
	}
	return nil, errs.NotFound("expense %s", expenseID)
}

func (s *Store) UpdateExpense(_ context.Context, e *models.Expense, replaceSplits bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.expenses[e.ID]
	if !ok {
		return errs.NotFound("expense %s", e.ID)
	}
	updated := cloneExpense(e)
	if replaceSplits {
		storage.PrepareSplits(updated)
	} else {
		updated.Splits = existing.Splits
	}
	s.expenses[e.ID] = updated
	return nil
}

func (s *Store) ListExpenses(_ context.Context, f storage.ExpenseFilter) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Expense, 0)
	for _, e := range s.expenses {
		if matchExpense(e, f) {
			result = append(result, cloneExpense(e))
		}
	}
	sortExpenses(result)

	start, end := storage.Page(len(result), f.Offset, f.Limit)
	return result[start:end], nil
}

func matchExpense(e *models.Expense, f storage.ExpenseFilter) bool {
	if !e.Active || e.Draft != f.Drafts {
		return false
	}
	if f.GroupID != "" && e.GroupID != f.GroupID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Drafts {
		return e.PayerID == f.UserID
	}
	return f.UserID == "" || e.IsParticipant(f.UserID)
}

func sortExpenses(list []*models.Expense) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.ExpenseDate != b.ExpenseDate {
			return a.ExpenseDate > b.ExpenseDate
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return a.ID < b.ID
	})
}

func cloneExpense(e *models.Expense) *models.Expense {
	c := *e
	c.Splits = slices.Clone(e.Splits)
	if e.SplitConfig != nil {
		cfg := *e.SplitConfig
		cfg.Participants = slices.Clone(e.SplitConfig.Participants)
		c.SplitConfig = &cfg
	}
	return &c
}

// Settlements

func (s *Store) CreateSettlement(_ context.Context, st *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage.PrepareSettlement(st)
	if _, exists := s.settlements[st.ID]; exists {
		return errs.Conflict("settlement %s already exists", st.ID)
	}
	c := *st
	s.settlements[st.ID] = &c
	return nil
}

func (s *Store) GetSettlement(_ context.Context, settlementID string) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.settlements[settlementID]; ok {
		c := *st
		return &c, nil
	}
	return nil, errs.NotFound("settlement %s", settlementID)
}

func (s *Store) DeactivateSettlement(_ context.Context, settlementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.settlements[settlementID]
	if !ok {
		return errs.NotFound("settlement %s", settlementID)
	}
	st.Active = false
	return nil
}

func (s *Store) ListSettlements(_ context.Context, f storage.SettlementFilter) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Settlement, 0)
	for _, st := range s.settlements {
		if !st.Active {
			continue
		}
		if f.UserID != "" && !st.Involves(f.UserID) {
			continue
		}
		if f.GroupID != "" && st.GroupID != f.GroupID {
			continue
		}
		c := *st
		result = append(result, &c)
	}
	sortSettlements(result)

	_, end := storage.Page(len(result), 0, f.Limit)
	return result[:end], nil
}

func sortSettlements(list []*models.Settlement) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID < list[j].ID
	})
}

// Ledger snapshot

func (s *Store) LoadLedger(_ context.Context, q storage.LedgerQuery) (*storage.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := &storage.Ledger{}
	for _, e := range s.expenses {
		if !e.Active {
			continue
		}
		if q.GroupID != "" {
			if e.GroupID != q.GroupID {
				continue
			}
		} else if !e.IsParticipant(q.UserID) {
			continue
		}
		ledger.Expenses = append(ledger.Expenses, cloneExpense(e))
	}
	for _, st := range s.settlements {
		if !st.Active {
			continue
		}
		if q.GroupID != "" {
			if st.GroupID != q.GroupID {
				continue
			}
		} else if !st.Involves(q.UserID) {
			continue
		}
		c := *st
		ledger.Settlements = append(ledger.Settlements, &c)
	}
	return ledger, nil
}

// Notifications

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storage.PrepareNotification(n)
	c := *n
	s.notifications[n.ID] = &c
	return nil
}

func (s *Store) ListNotifications(_ context.Context, f storage.NotificationFilter) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != f.UserID || (f.UnreadOnly && n.Read) {
			continue
		}
		c := *n
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	_, end := storage.Page(len(result), 0, f.Limit)
	return result[:end], nil
}

func (s *Store) MarkNotificationsRead(_ context.Context, userID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	mark := func(n *models.Notification) {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	if len(ids) == 0 {
		for _, n := range s.notifications {
			mark(n)
		}
		return changed, nil
	}
	for _, id := range ids {
		if n, ok := s.notifications[id]; ok {
			mark(n)
		}
	}
	return changed, nil
}

func (s *Store) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
