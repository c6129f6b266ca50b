package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const userColumns = "id, email, mobile, display_name, payment_address, active, created_at, updated_at"

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	storage.PrepareUser(user)

	query := `
		INSERT INTO users (id, email, mobile, display_name, payment_address, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		nullString(user.Email),
		nullString(user.Mobile),
		user.DisplayName,
		user.PaymentAddress,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return wrapErr("create user", err)
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", userID)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user %s", userID)
	}
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user with email %s", email)
	}
	if err != nil {
		return nil, wrapErr("get user by email", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	if len(userIDs) == 0 {
		return []*models.User{}, nil
	}

	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders(len(userIDs))+")",
		args...,
	)
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

// UpdateUser updates the mutable profile fields of a user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET display_name = ?, payment_address = ?, active = ?, updated_at = ? WHERE id = ?",
		user.DisplayName, user.PaymentAddress, user.Active, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return wrapErr("update user", err)
	}
	return requireRow(result, "user", user.ID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var email, mobile sql.NullString
	if err := row.Scan(
		&user.ID,
		&email,
		&mobile,
		&user.DisplayName,
		&user.PaymentAddress,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Email = email.String
	user.Mobile = mobile.String
	return user, nil
}

// requireRow returns a NotFound error when an update touched nothing.
func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errs.Storage("rows affected", err)
	}
	if n == 0 {
		return errs.NotFound("%s %s", kind, id)
	}
	return nil
}
