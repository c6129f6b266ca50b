package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const expenseColumns = `id, amount, currency, description, notes, category, payer_id, group_id,
	split_type, split_config, expense_date, active, settled, draft, created_at, updated_at`

// CreateExpense persists a new expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	storage.PrepareExpense(e)

	config, err := encodeConfig(e.SplitConfig)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, e.Currency, e.Description, e.Notes, e.Category, e.PayerID, nullString(e.GroupID),
		e.SplitType, config, e.ExpenseDate, e.Active, e.Settled, e.Draft, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert expense", err)
	}

	if err := insertSplits(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Storage("commit transaction", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := queryExpenses(ctx, s.db, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, errs.NotFound("expense %s", expenseID)
	}
	return expenses[0], nil
}

// UpdateExpense updates an expense and, when replaceSplits is set, swaps its
// splits in the same transaction so readers never see a partial set.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, e *models.Expense, replaceSplits bool) error {
	config, err := encodeConfig(e.SplitConfig)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, currency = ?, description = ?, notes = ?, category = ?,
		     split_type = ?, split_config = ?, expense_date = ?, active = ?, settled = ?, draft = ?, updated_at = ?
		 WHERE id = ?`,
		e.Amount, e.Currency, e.Description, e.Notes, e.Category,
		e.SplitType, config, e.ExpenseDate, e.Active, e.Settled, e.Draft, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return wrapErr("update expense", err)
	}
	if err := requireRow(result, "expense", e.ID); err != nil {
		return err
	}

	if replaceSplits {
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", e.ID); err != nil {
			return wrapErr("delete splits", err)
		}
		storage.PrepareSplits(e)
		if err := insertSplits(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Storage("commit transaction", err)
	}
	return nil
}

// ListExpenses retrieves active expenses matching the filter, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]*models.Expense, error) {
	conds := []string{"active = 1", "draft = ?"}
	args := []any{f.Drafts}

	switch {
	case f.Drafts:
		conds = append(conds, "payer_id = ?")
		args = append(args, f.UserID)
	case f.UserID != "":
		conds = append(conds, "(payer_id = ? OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))")
		args = append(args, f.UserID, f.UserID)
	}
	if f.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	args = append(args, limitArg(f.Limit), max(f.Offset, 0))

	query := "SELECT " + expenseColumns + " FROM expenses WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY expense_date DESC, created_at DESC, id LIMIT ? OFFSET ?"
	return queryExpenses(ctx, s.db, query, args...)
}

func insertSplits(ctx context.Context, q queryer, e *models.Expense) error {
	for _, split := range e.Splits {
		_, err := q.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, percentage, shares, position) VALUES (?, ?, ?, ?, ?, ?)",
			e.ID, split.UserID, split.Amount, split.Percentage, split.Shares, split.Position,
		)
		if err != nil {
			return wrapErr("insert split", err)
		}
	}
	return nil
}

// queryExpenses runs an expense query and attaches every expense's splits.
func queryExpenses(ctx context.Context, q queryer, query string, args ...any) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query expenses", err)
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var groupID, config sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Amount, &e.Currency, &e.Description, &e.Notes, &e.Category, &e.PayerID, &groupID,
			&e.SplitType, &config, &e.ExpenseDate, &e.Active, &e.Settled, &e.Draft, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, wrapErr("scan expense", err)
		}
		e.GroupID = groupID.String
		if config.Valid {
			if e.SplitConfig, err = decodeConfig(config.String); err != nil {
				return nil, err
			}
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate expenses", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}
	if err := attachSplits(ctx, q, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

func attachSplits(ctx context.Context, q queryer, byID map[string]*models.Expense) error {
	args := make([]any, 0, len(byID))
	for id := range byID {
		args = append(args, id)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT expense_id, user_id, amount, percentage, shares, position FROM expense_splits
		 WHERE expense_id IN (`+placeholders(len(args))+`)
		 ORDER BY expense_id, position`,
		args...,
	)
	if err != nil {
		return wrapErr("query splits", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.ExpenseID, &split.UserID, &split.Amount, &split.Percentage, &split.Shares, &split.Position); err != nil {
			return wrapErr("scan split", err)
		}
		e := byID[split.ExpenseID]
		e.Splits = append(e.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return wrapErr("iterate splits", err)
	}
	return nil
}

func encodeConfig(cfg *models.SplitConfig) (any, error) {
	if cfg == nil {
		return nil, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, errs.InvalidInput("encode split config: %v", err)
	}
	return string(data), nil
}

func decodeConfig(data string) (*models.SplitConfig, error) {
	cfg := &models.SplitConfig{}
	if err := json.Unmarshal([]byte(data), cfg); err != nil {
		return nil, errs.Storage("decode split config", err)
	}
	return cfg, nil
}
