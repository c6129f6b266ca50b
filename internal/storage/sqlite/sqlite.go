// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return errs.Storage("ping", s.db.PingContext(ctx))
}

// LoadLedger reads the expenses, splits and settlements for a balance
// computation inside one read transaction, so all of them come from the
// same snapshot.
func (s *SQLiteStore) LoadLedger(ctx context.Context, q storage.LedgerQuery) (*storage.Ledger, error) {
	// A deferred transaction pins the WAL snapshot at its first read
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Storage("begin snapshot", err)
	}
	defer tx.Rollback()

	var (
		where string
		args  []any
	)
	if q.GroupID != "" {
		where = "active = 1 AND group_id = ?"
		args = []any{q.GroupID}
	} else {
		where = "active = 1 AND (payer_id = ? OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))"
		args = []any{q.UserID, q.UserID}
	}

	expenses, err := queryExpenses(ctx, tx, "SELECT "+expenseColumns+" FROM expenses WHERE "+where, args...)
	if err != nil {
		return nil, err
	}

	if q.GroupID != "" {
		where = "active = 1 AND group_id = ?"
		args = []any{q.GroupID}
	} else {
		where = "active = 1 AND (from_user_id = ? OR to_user_id = ?)"
		args = []any{q.UserID, q.UserID}
	}

	settlements, err := querySettlements(ctx, tx, "SELECT "+settlementColumns+" FROM settlements WHERE "+where, args...)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Storage("commit snapshot", err)
	}

	return &storage.Ledger{Expenses: expenses, Settlements: settlements}, nil
}

// wrapErr maps driver errors onto the errs kinds.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errs.Conflict("%s: %v", op, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errs.NotFound("%s: referenced row missing", op)
		}
	}
	return errs.Storage(op, err)
}

// nullString stores empty strings as NULL so optional references and unique
// columns stay valid.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// limitArg turns a non-positive limit into SQLite's "no limit".
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
