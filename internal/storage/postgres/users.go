package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const userColumns = "id, email, mobile, display_name, payment_address, active, created_at, updated_at"

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	storage.PrepareUser(user)

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, email, mobile, display_name, payment_address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, nullString(user.Email), nullString(user.Mobile), user.DisplayName, user.PaymentAddress,
		user.Active, user.CreatedAt, user.UpdatedAt)
	return wrapErr("create user", err)
}

func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("user %s", userID)
	}
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("user with email %s", email)
	}
	if err != nil {
		return nil, wrapErr("get user by email", err)
	}
	return user, nil
}

func (s *Storage) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	if len(userIDs) == 0 {
		return []*models.User{}, nil
	}

	rows, err := s.db.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = ANY($1)", userIDs)
	if err != nil {
		return nil, wrapErr("get users by ids", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, len(userIDs))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate users", err)
	}
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE users SET display_name = $1, payment_address = $2, active = $3, updated_at = $4 WHERE id = $5",
		user.DisplayName, user.PaymentAddress, user.Active, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return wrapErr("update user", err)
	}
	return requireRow(tag, "user", user.ID)
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var email, mobile *string
	if err := row.Scan(&user.ID, &email, &mobile, &user.DisplayName, &user.PaymentAddress,
		&user.Active, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	if email != nil {
		user.Email = *email
	}
	if mobile != nil {
		user.Mobile = *mobile
	}
	return user, nil
}
