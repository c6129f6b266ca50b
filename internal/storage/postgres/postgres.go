// Package postgres provides a PostgreSQL implementation of storage.Store on a pgx pool.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ storage.Store = (*Storage)(nil)

// Storage implements storage.Store using PostgreSQL.
type Storage struct {
	db *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New connects to databaseURL and runs migrations.
func New(ctx context.Context, databaseURL string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewStorage(pool), nil
}

// NewStorage wraps an existing pool. The schema must already be migrated.
func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Close closes the pool.
func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return errs.Storage("ping", s.db.Ping(ctx))
}

// LoadLedger reads everything a balance computation needs inside one
// repeatable-read, read-only transaction.
func (s *Storage) LoadLedger(ctx context.Context, q storage.LedgerQuery) (*storage.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, errs.Storage("begin snapshot", err)
	}
	defer tx.Rollback(ctx)

	var (
		expenseWhere, settlementWhere string
		a                             args
	)
	if q.GroupID != "" {
		p := a.add(q.GroupID)
		expenseWhere = "active AND group_id = " + p
		settlementWhere = "active AND group_id = " + p
	} else {
		p := a.add(q.UserID)
		expenseWhere = "active AND (payer_id = " + p + " OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = " + p + "))"
		settlementWhere = "active AND (from_user_id = " + p + " OR to_user_id = " + p + ")"
	}

	expenses, err := queryExpenses(ctx, tx, "SELECT "+expenseColumns+" FROM expenses WHERE "+expenseWhere, a...)
	if err != nil {
		return nil, err
	}
	settlements, err := querySettlements(ctx, tx, "SELECT "+settlementColumns+" FROM settlements WHERE "+settlementWhere, a...)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Storage("commit snapshot", err)
	}
	return &storage.Ledger{Expenses: expenses, Settlements: settlements}, nil
}

// args collects positional query arguments.
type args []any

// add appends v and returns its placeholder.
func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// wrapErr maps driver errors onto the errs kinds.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return errs.Conflict("%s: %s", op, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return errs.NotFound("%s: referenced row missing", op)
		case "23514": // check_violation
			return errs.InvalidInput("%s: %s", op, pgErr.ConstraintName)
		case "22003": // numeric_value_out_of_range
			return errs.InvalidInput("%s: value out of range", op)
		}
	}
	return errs.Storage(op, err)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// limitArg turns a non-positive limit into LIMIT NULL, which PostgreSQL treats as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func requireRow(tag pgconn.CommandTag, kind, id string) error {
	if tag.RowsAffected() == 0 {
		return errs.NotFound("%s %s", kind, id)
	}
	return nil
}
