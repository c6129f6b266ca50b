package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

func (s *Storage) CreateGroup(ctx context.Context, group *models.Group, members []*models.Membership) error {
	storage.PrepareGroup(group, members)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errs.Storage("begin tx", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO user_groups (id, name, description, category, created_by, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, group.ID, group.Name, group.Description, group.Category, group.CreatedBy, group.Active,
		group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return wrapErr("insert group", err)
	}

	for _, m := range members {
		if err := saveMembership(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Storage("commit tx", err)
	}
	return nil
}

func (s *Storage) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	g := &models.Group{}
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, category, created_by, active, created_at, updated_at
		FROM user_groups WHERE id = $1
	`, groupID).Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.CreatedBy, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("group %s", groupID)
	}
	if err != nil {
		return nil, wrapErr("get group", err)
	}
	return g, nil
}

func (s *Storage) UpdateGroup(ctx context.Context, group *models.Group) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE user_groups SET name = $1, description = $2, category = $3, active = $4, updated_at = $5 WHERE id = $6",
		group.Name, group.Description, group.Category, group.Active, group.UpdatedAt, group.ID,
	)
	if err != nil {
		return wrapErr("update group", err)
	}
	return requireRow(tag, "group", group.ID)
}

func (s *Storage) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.Query(ctx, `
		SELECT g.id, g.name, g.description, g.category, g.created_by, g.active, g.created_at, g.updated_at
		FROM user_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1 AND m.active AND g.active
		ORDER BY g.created_at DESC, g.id
	`, userID)
	if err != nil {
		return nil, wrapErr("list groups by user", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.CreatedBy, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, wrapErr("scan group", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate groups", err)
	}
	return groups, nil
}

func (s *Storage) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	m, err := scanMembership(s.db.QueryRow(ctx,
		"SELECT group_id, user_id, role, active, joined_at FROM group_members WHERE group_id = $1 AND user_id = $2",
		groupID, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("membership of %s in group %s", userID, groupID)
	}
	if err != nil {
		return nil, wrapErr("get membership", err)
	}
	return m, nil
}

func (s *Storage) SaveMembership(ctx context.Context, m *models.Membership) error {
	return saveMembership(ctx, s.db, m)
}

func saveMembership(ctx context.Context, q querier, m *models.Membership) error {
	_, err := q.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, active, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, user_id) DO UPDATE SET
			role = EXCLUDED.role,
			active = EXCLUDED.active,
			joined_at = EXCLUDED.joined_at
	`, m.GroupID, m.UserID, string(m.Role), m.Active, m.JoinedAt)
	if err != nil {
		return wrapErr(fmt.Sprintf("save membership %s/%s", m.GroupID, m.UserID), err)
	}
	return nil
}

func (s *Storage) ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error) {
	rows, err := s.db.Query(ctx, `
		SELECT group_id, user_id, role, active, joined_at FROM group_members
		WHERE group_id = $1 AND active
		ORDER BY joined_at, user_id
	`, groupID)
	if err != nil {
		return nil, wrapErr("list members", err)
	}
	defer rows.Close()

	members := make([]*models.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, wrapErr("scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate members", err)
	}
	return members, nil
}

func scanMembership(row pgx.Row) (*models.Membership, error) {
	m := &models.Membership{}
	var role string
	if err := row.Scan(&m.GroupID, &m.UserID, &role, &m.Active, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	return m, nil
}
