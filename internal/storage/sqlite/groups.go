package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const groupColumns = "id, name, description, category, created_by, active, created_at, updated_at"

// CreateGroup inserts a group and its initial members in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, members []*models.Membership) error {
	storage.PrepareGroup(group, members)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_groups (id, name, description, category, created_by, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Description, group.Category, group.CreatedBy,
		group.Active, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert group", err)
	}

	for _, m := range members {
		if err := saveMembership(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Storage("commit transaction", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM user_groups WHERE id = ?", groupID)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("group %s", groupID)
	}
	if err != nil {
		return nil, wrapErr("get group", err)
	}
	return group, nil
}

// UpdateGroup updates a group's details and active flag.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE user_groups SET name = ?, description = ?, category = ?, active = ?, updated_at = ? WHERE id = ?",
		group.Name, group.Description, group.Category, group.Active, group.UpdatedAt, group.ID,
	)
	if err != nil {
		return wrapErr("update group", err)
	}
	return requireRow(result, "group", group.ID)
}

// ListGroupsByUser retrieves the active groups a user actively belongs to.
func (s *SQLiteStore) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.category, g.created_by, g.active, g.created_at, g.updated_at
		 FROM user_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ? AND m.active = 1 AND g.active = 1
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, wrapErr("list groups by user", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, wrapErr("scan group", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate groups", err)
	}
	return groups, nil
}

// GetMembership retrieves the membership row of a user in a group.
func (s *SQLiteStore) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		"SELECT group_id, user_id, role, active, joined_at FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &m.Role, &m.Active, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("membership of %s in group %s", userID, groupID)
	}
	if err != nil {
		return nil, wrapErr("get membership", err)
	}
	return m, nil
}

// SaveMembership inserts or replaces a membership row.
func (s *SQLiteStore) SaveMembership(ctx context.Context, m *models.Membership) error {
	return saveMembership(ctx, s.db, m)
}

func saveMembership(ctx context.Context, q queryer, m *models.Membership) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, active, joined_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO UPDATE SET
		     role = excluded.role,
		     active = excluded.active,
		     joined_at = excluded.joined_at`,
		m.GroupID, m.UserID, m.Role, m.Active, m.JoinedAt,
	)
	return wrapErr("save membership", err)
}

// ListMembers retrieves the active members of a group in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, role, active, joined_at FROM group_members
		 WHERE group_id = ? AND active = 1
		 ORDER BY joined_at, user_id`,
		groupID,
	)
	if err != nil {
		return nil, wrapErr("list members", err)
	}
	defer rows.Close()

	members := make([]*models.Membership, 0)
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.Active, &m.JoinedAt); err != nil {
			return nil, wrapErr("scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate members", err)
	}
	return members, nil
}

func scanGroup(row rowScanner) (*models.Group, error) {
	g := &models.Group{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.CreatedBy, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}
