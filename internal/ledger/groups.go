package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/validate"
)

// GroupInput describes a new group.
type GroupInput struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"omitempty,oneof=trip home couple sports party other"`
}

// GroupChanges updates a group. Nil fields are left alone.
type GroupChanges struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Category    *string `json:"category" validate:"omitnil,oneof=trip home couple sports party other"`
}

// GroupOverview is one entry of a user's group list.
type GroupOverview struct {
	Group       *models.Group
	MemberCount int
	// Outstanding is the caller's net balance in the group: positive when
	// the others owe the caller.
	Outstanding decimal.Decimal
}

// CreateGroup creates a group with the caller as admin and memberIDs as
// members, in one write. Unknown, deactivated and repeated ids are skipped.
func (l *Ledger) CreateGroup(ctx context.Context, callerID string, in GroupInput, memberIDs []string) (*models.Group, []*models.Membership, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, nil, err
	}
	caller, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	if in.Category == "" {
		in.Category = "other"
	}

	now := l.timestamp()
	g := &models.Group{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		CreatedBy:   callerID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	members := []*models.Membership{{UserID: callerID, Role: models.RoleAdmin, Active: true, JoinedAt: now}}

	var invited []string
	if ids := uniqueIDs(memberIDs...); len(ids) > 0 {
		users, err := l.store.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		found := make(map[string]bool, len(users))
		for _, u := range users {
			found[u.ID] = u.Active
		}
		for _, id := range ids {
			if id == callerID || !found[id] {
				continue
			}
			members = append(members, &models.Membership{UserID: id, Role: models.RoleMember, Active: true, JoinedAt: now})
			invited = append(invited, id)
		}
	}

	if err := l.store.CreateGroup(ctx, g, members); err != nil {
		return nil, nil, err
	}

	notifications := make([]*models.Notification, 0, len(invited))
	for _, id := range invited {
		notifications = append(notifications, notify.GroupInvite(id, caller, g))
	}
	l.notify(ctx, notifications...)
	return g, members, nil
}

// GetGroup returns a group and its active members. Only members may read it.
func (l *Ledger) GetGroup(ctx context.Context, callerID, groupID string) (*models.Group, []*models.Membership, error) {
	g, _, err := l.requireMember(ctx, groupID, callerID)
	if err != nil {
		return nil, nil, err
	}
	members, err := l.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return g, members, nil
}

// ListGroups returns the caller's active groups with their size and the
// caller's outstanding balance in each.
func (l *Ledger) ListGroups(ctx context.Context, callerID string) ([]GroupOverview, error) {
	groups, err := l.store.ListGroupsByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]GroupOverview, 0, len(groups))
	for _, g := range groups {
		members, err := l.store.ListMembers(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		balances, err := l.balances(ctx, callerID, calculator.Group(g.ID))
		if err != nil {
			return nil, err
		}
		out = append(out, GroupOverview{
			Group:       g,
			MemberCount: len(members),
			Outstanding: calculator.Outstanding(balances),
		})
	}
	return out, nil
}

// UpdateGroup changes a group's details. Admins only.
func (l *Ledger) UpdateGroup(ctx context.Context, callerID, groupID string, ch GroupChanges) (*models.Group, error) {
	if err := validate.Struct(ch); err != nil {
		return nil, err
	}
	g, err := l.requireAdmin(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}

	if ch.Name != nil {
		g.Name = strings.TrimSpace(*ch.Name)
	}
	if ch.Description != nil {
		g.Description = *ch.Description
	}
	if ch.Category != nil {
		g.Category = *ch.Category
	}
	g.UpdatedAt = l.timestamp()
	if err := l.store.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGroup soft-deletes a group. Admins only. Its expenses and
// settlements are kept.
func (l *Ledger) DeleteGroup(ctx context.Context, callerID, groupID string) error {
	g, err := l.requireAdmin(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	g.Active = false
	g.UpdatedAt = l.timestamp()
	return l.store.UpdateGroup(ctx, g)
}

// AddMembers adds users, by id or by email, to a group. Admins only.
// Removed members are reactivated with their previous role. It fails with a
// conflict when every user is already an active member.
func (l *Ledger) AddMembers(ctx context.Context, callerID, groupID string, userIDs, emails []string) ([]*models.Membership, error) {
	g, err := l.requireAdmin(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	caller, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ids := append([]string(nil), userIDs...)
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		u, err := l.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}
	ids = uniqueIDs(ids...)
	if len(ids) == 0 {
		return nil, errs.InvalidInput("no users to add")
	}

	users, err := l.requireUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := l.timestamp()
	var added []*models.Membership
	for _, id := range ids {
		if !users[id].Active {
			return nil, errs.Forbidden("user %s is deactivated", id)
		}
		m, err := l.store.GetMembership(ctx, groupID, id)
		switch {
		case errs.IsNotFound(err):
			m = &models.Membership{GroupID: groupID, UserID: id, Role: models.RoleMember}
		case err != nil:
			return nil, err
		case m.Active:
			continue
		}
		m.Active = true
		m.JoinedAt = now
		if err := l.store.SaveMembership(ctx, m); err != nil {
			return nil, err
		}
		added = append(added, m)
	}
	if len(added) == 0 {
		return nil, errs.Conflict("all users are already members of group %s", groupID)
	}

	notifications := make([]*models.Notification, 0, len(added))
	for _, m := range added {
		notifications = append(notifications, notify.GroupInvite(m.UserID, caller, g))
	}
	l.notify(ctx, notifications...)
	slog.Info("Members added", "group_id", groupID, "count", len(added))
	return added, nil
}

// RemoveMember deactivates a membership. Admins may remove anyone; members
// may only remove themselves. The last admin cannot leave.
func (l *Ledger) RemoveMember(ctx context.Context, callerID, groupID, userID string) error {
	_, callerMembership, err := l.requireMember(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	if userID != callerID && !callerMembership.IsAdmin() {
		return errs.Forbidden("only admins can remove other members")
	}

	m, err := l.store.GetMembership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !m.Active {
		return errs.NotFound("member %s of group %s", userID, groupID)
	}

	if m.IsAdmin() {
		members, err := l.store.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		admins := 0
		for _, other := range members {
			if other.IsAdmin() {
				admins++
			}
		}
		if admins <= 1 {
			return errs.Conflict("cannot remove the last admin of group %s", groupID)
		}
	}

	m.Active = false
	return l.store.SaveMembership(ctx, m)
}
