package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const expenseColumns = `id, amount, currency, description, notes, category, payer_id, group_id,
	split_type, split_config, expense_date, active, settled, draft, created_at, updated_at`

func (s *Storage) CreateExpense(ctx context.Context, e *models.Expense) error {
	storage.PrepareExpense(e)

	config, err := encodeConfig(e.SplitConfig)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errs.Storage("begin tx", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, e.ID, e.Amount, e.Currency, e.Description, e.Notes, e.Category, e.PayerID, nullString(e.GroupID),
		string(e.SplitType), config, e.ExpenseDate, e.Active, e.Settled, e.Draft, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return wrapErr("insert expense", err)
	}

	if err := insertSplits(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Storage("commit tx", err)
	}
	return nil
}

func (s *Storage) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := queryExpenses(ctx, s.db, "SELECT "+expenseColumns+" FROM expenses WHERE id = $1", expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, errs.NotFound("expense %s", expenseID)
	}
	return expenses[0], nil
}

func (s *Storage) UpdateExpense(ctx context.Context, e *models.Expense, replaceSplits bool) error {
	config, err := encodeConfig(e.SplitConfig)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errs.Storage("begin tx", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE expenses SET amount = $1, currency = $2, description = $3, notes = $4, category = $5,
			split_type = $6, split_config = $7, expense_date = $8, active = $9, settled = $10, draft = $11,
			updated_at = $12
		WHERE id = $13
	`, e.Amount, e.Currency, e.Description, e.Notes, e.Category, string(e.SplitType), config,
		e.ExpenseDate, e.Active, e.Settled, e.Draft, e.UpdatedAt, e.ID)
	if err != nil {
		return wrapErr("update expense", err)
	}
	if err := requireRow(tag, "expense", e.ID); err != nil {
		return err
	}

	if replaceSplits {
		if _, err := tx.Exec(ctx, "DELETE FROM expense_splits WHERE expense_id = $1", e.ID); err != nil {
			return wrapErr("delete splits", err)
		}
		storage.PrepareSplits(e)
		if err := insertSplits(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Storage("commit tx", err)
	}
	return nil
}

func (s *Storage) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]*models.Expense, error) {
	var a args
	conds := []string{"active", "draft = " + a.add(f.Drafts)}

	switch {
	case f.Drafts:
		conds = append(conds, "payer_id = "+a.add(f.UserID))
	case f.UserID != "":
		p := a.add(f.UserID)
		conds = append(conds, "(payer_id = "+p+" OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = "+p+"))")
	}
	if f.GroupID != "" {
		conds = append(conds, "group_id = "+a.add(f.GroupID))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+a.add(f.Category))
	}

	query := "SELECT " + expenseColumns + " FROM expenses WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY expense_date DESC, created_at DESC, id" +
		" LIMIT " + a.add(limitArg(f.Limit)) + " OFFSET " + a.add(max(f.Offset, 0))
	return queryExpenses(ctx, s.db, query, a...)
}

func insertSplits(ctx context.Context, q querier, e *models.Expense) error {
	for _, split := range e.Splits {
		_, err := q.Exec(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, percentage, shares, position) VALUES ($1, $2, $3, $4, $5, $6)",
			e.ID, split.UserID, split.Amount, split.Percentage, split.Shares, split.Position,
		)
		if err != nil {
			return wrapErr("insert split", err)
		}
	}
	return nil
}

func queryExpenses(ctx context.Context, q querier, query string, args ...any) ([]*models.Expense, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query expenses", err)
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var (
			groupID   *string
			splitType string
			config    []byte
		)
		if err := rows.Scan(&e.ID, &e.Amount, &e.Currency, &e.Description, &e.Notes, &e.Category, &e.PayerID,
			&groupID, &splitType, &config, &e.ExpenseDate, &e.Active, &e.Settled, &e.Draft,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, wrapErr("scan expense", err)
		}
		if groupID != nil {
			e.GroupID = *groupID
		}
		e.SplitType = models.SplitType(splitType)
		if config != nil {
			e.SplitConfig = &models.SplitConfig{}
			if err := json.Unmarshal(config, e.SplitConfig); err != nil {
				return nil, errs.Storage("decode split config", err)
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

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	splitRows, err := q.Query(ctx, `
		SELECT expense_id, user_id, amount, percentage, shares, position FROM expense_splits
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, position
	`, ids)
	if err != nil {
		return nil, wrapErr("query splits", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var split models.Split
		if err := splitRows.Scan(&split.ExpenseID, &split.UserID, &split.Amount, &split.Percentage, &split.Shares, &split.Position); err != nil {
			return nil, wrapErr("scan split", err)
		}
		e := byID[split.ExpenseID]
		e.Splits = append(e.Splits, split)
	}
	if err := splitRows.Err(); err != nil {
		return nil, wrapErr("iterate splits", err)
	}
	return expenses, nil
}

// encodeConfig returns the JSON text for the jsonb column, or nil for NULL.
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
