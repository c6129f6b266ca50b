package ledger

import (
	"context"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
)

// activeUser returns the caller's profile. A deactivated account may still
// read but not write.
func (l *Ledger) activeUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, errs.Forbidden("user %s is deactivated", userID)
	}
	return u, nil
}

// activeGroup returns the group, or NotFound when it is missing or deleted.
func (l *Ledger) activeGroup(ctx context.Context, groupID string) (*models.Group, error) {
	g, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.Active {
		return nil, errs.NotFound("group %s", groupID)
	}
	return g, nil
}

// requireMember checks that userID is an active member of an active group.
func (l *Ledger) requireMember(ctx context.Context, groupID, userID string) (*models.Group, *models.Membership, error) {
	g, err := l.activeGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	m, err := l.store.GetMembership(ctx, groupID, userID)
	if errs.IsNotFound(err) || err == nil && !m.Active {
		return nil, nil, errs.Forbidden("user %s is not a member of group %s", userID, groupID)
	}
	if err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

// requireAdmin checks that userID is an active admin of an active group.
func (l *Ledger) requireAdmin(ctx context.Context, groupID, userID string) (*models.Group, error) {
	g, m, err := l.requireMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin() {
		return nil, errs.Forbidden("user %s is not an admin of group %s", userID, groupID)
	}
	return g, nil
}

// requireUsers checks that every id has a profile.
func (l *Ledger) requireUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	ids = uniqueIDs(ids...)
	users, err := l.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, errs.NotFound("user %s", id)
		}
	}
	return byID, nil
}
