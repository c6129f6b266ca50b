package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/validate"
)

const (
	defaultCurrency = "INR"
	defaultCategory = "other"

	defaultPageSize = 50
	maxPageSize     = 200
)

// ExpenseInput describes a new expense. The caller is always the payer.
type ExpenseInput struct {
	Amount      decimal.Decimal    `json:"amount" validate:"money"`
	Currency    string             `json:"currency" validate:"omitempty,iso4217"`
	Description string             `json:"description" validate:"notblank,max=255"`
	Notes       string             `json:"notes" validate:"max=1000"`
	Category    string             `json:"category" validate:"omitempty,category"`
	GroupID     string             `json:"group_id"`
	ExpenseDate int64              `json:"expense_date" validate:"gte=0"`
	Split       models.SplitConfig `json:"split"`
	// Draft stages the expense: the split configuration is kept but no splits
	// are committed and nobody is notified until SubmitDraft.
	Draft bool `json:"draft"`
}

// ExpenseChanges updates an expense. Nil fields are left alone.
type ExpenseChanges struct {
	Amount      *decimal.Decimal    `json:"amount" validate:"omitnil,money"`
	Description *string             `json:"description" validate:"omitnil,notblank,max=255"`
	Notes       *string             `json:"notes" validate:"omitnil,max=1000"`
	Category    *string             `json:"category" validate:"omitnil,category"`
	ExpenseDate *int64              `json:"expense_date" validate:"omitnil,gt=0"`
	Split       *models.SplitConfig `json:"split"`
}

// ExpenseQuery narrows ListExpenses.
type ExpenseQuery struct {
	GroupID  string
	Category string
	Drafts   bool
	Limit    int
	Offset   int
}

// AllocateSplit previews how total would be divided. Nothing is stored.
func (l *Ledger) AllocateSplit(total decimal.Decimal, payerID string, cfg models.SplitConfig) ([]models.Split, error) {
	return calculator.Allocate(total, payerID, normalizeSplit(cfg, payerID))
}

// CreateExpense records an expense paid by the caller.
//
// With a group the caller must be an active member of it. A draft keeps its
// split configuration for SubmitDraft; otherwise the splits are allocated,
// stored with the expense in one write and every other participant is
// notified of their share.
func (l *Ledger) CreateExpense(ctx context.Context, callerID string, in ExpenseInput) (*models.Expense, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	payer, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if in.GroupID != "" {
		if _, _, err := l.requireMember(ctx, in.GroupID, callerID); err != nil {
			return nil, err
		}
	}

	cfg := normalizeSplit(in.Split, callerID)
	if _, err := l.requireUsers(ctx, cfg.UserIDs()); err != nil {
		return nil, err
	}
	splits, err := calculator.Allocate(in.Amount, callerID, cfg)
	if err != nil {
		return nil, err
	}

	now := l.timestamp()
	e := &models.Expense{
		Amount:      in.Amount,
		Currency:    orDefault(strings.ToUpper(in.Currency), defaultCurrency),
		Description: in.Description,
		Notes:       in.Notes,
		Category:    orDefault(in.Category, defaultCategory),
		PayerID:     callerID,
		GroupID:     in.GroupID,
		SplitType:   cfg.Type,
		SplitConfig: &cfg,
		ExpenseDate: in.ExpenseDate,
		Active:      true,
		Draft:       in.Draft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.ExpenseDate == 0 {
		e.ExpenseDate = now
	}
	if !in.Draft {
		e.Splits = splits
	}

	if err := l.store.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	if in.Draft {
		metrics.ExpenseOps.WithLabelValues("draft").Inc()
		return e, nil
	}
	metrics.ExpenseOps.WithLabelValues("create").Inc()
	l.invalidate(ctx, e.GroupID, append(e.Participants(), callerID)...)
	l.notify(ctx, expenseNotifications(e, payer, notify.ExpenseAdded)...)
	return e, nil
}

// SubmitDraft commits a draft: its staged configuration is allocated against
// the current amount, the splits are stored, the draft flag is cleared and the
// participants are notified.
//
// Submitting something that is not a draft fails with ErrConflict (the error
// also matches ErrNotFound, since no such draft exists).
func (l *Ledger) SubmitDraft(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	e, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !e.Active {
		return nil, errs.NotFound("expense %s", expenseID)
	}
	if !e.Draft {
		return nil, notADraft(expenseID)
	}
	if e.PayerID != callerID {
		return nil, errs.Forbidden("only the payer can submit draft %s", expenseID)
	}
	payer, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if e.GroupID != "" {
		if _, _, err := l.requireMember(ctx, e.GroupID, callerID); err != nil {
			return nil, err
		}
	}
	if e.SplitConfig == nil {
		return nil, errs.InvalidSplit("draft %s has no split configuration", expenseID)
	}

	splits, err := calculator.Allocate(e.Amount, e.PayerID, *e.SplitConfig)
	if err != nil {
		return nil, err
	}
	e.Splits = splits
	e.Draft = false
	e.UpdatedAt = l.timestamp()
	storage.PrepareSplits(e)

	if err := l.store.UpdateExpense(ctx, e, true); err != nil {
		return nil, err
	}

	metrics.ExpenseOps.WithLabelValues("submit").Inc()
	l.invalidate(ctx, e.GroupID, append(e.Participants(), e.PayerID)...)
	l.notify(ctx, expenseNotifications(e, payer, notify.ExpenseAdded)...)
	return e, nil
}

// UpdateExpense applies changes to an expense. Only the payer may update.
//
// A new split configuration replaces every split in the same write. An amount
// change without one re-allocates the stored configuration; for exact splits
// the payer's share absorbs the difference. A new equal split divides among
// exactly the listed participants; the payer is added only on create.
// Participants are notified when the amount or the split changed.
func (l *Ledger) UpdateExpense(ctx context.Context, callerID, expenseID string, ch ExpenseChanges) (*models.Expense, error) {
	if err := validate.Struct(ch); err != nil {
		return nil, err
	}
	e, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !e.Active {
		return nil, errs.NotFound("expense %s", expenseID)
	}
	if e.PayerID != callerID {
		return nil, errs.Forbidden("only the payer can update expense %s", expenseID)
	}
	payer, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if ch.Description != nil {
		e.Description = strings.TrimSpace(*ch.Description)
	}
	if ch.Notes != nil {
		e.Notes = *ch.Notes
	}
	if ch.Category != nil {
		e.Category = *ch.Category
	}
	if ch.ExpenseDate != nil {
		e.ExpenseDate = *ch.ExpenseDate
	}
	amountChanged := ch.Amount != nil && !ch.Amount.Equal(e.Amount)
	if amountChanged {
		e.Amount = *ch.Amount
	}

	cfg := storedSplit(e)
	if ch.Split != nil {
		cfg = models.SplitConfig{Type: ch.Split.Type, Participants: slices.Clone(ch.Split.Participants)}
		if _, err := l.requireUsers(ctx, cfg.UserIDs()); err != nil {
			return nil, err
		}
	} else if amountChanged {
		if cfg, err = calculator.Rescale(cfg, callerID, e.Amount); err != nil {
			return nil, err
		}
	}
	resplit := ch.Split != nil || amountChanged

	var splits []models.Split
	if resplit {
		if splits, err = calculator.Allocate(e.Amount, callerID, cfg); err != nil {
			return nil, err
		}
		e.SplitType = cfg.Type
		e.SplitConfig = &cfg
	}
	e.UpdatedAt = l.timestamp()

	if e.Draft {
		if err := l.store.UpdateExpense(ctx, e, false); err != nil {
			return nil, err
		}
		metrics.ExpenseOps.WithLabelValues("update").Inc()
		return e, nil
	}

	previous := e.Participants()
	if resplit {
		e.Splits = splits
		storage.PrepareSplits(e)
	}
	if err := l.store.UpdateExpense(ctx, e, resplit); err != nil {
		return nil, err
	}

	metrics.ExpenseOps.WithLabelValues("update").Inc()
	l.invalidate(ctx, e.GroupID, uniqueIDs(append(append(previous, e.Participants()...), e.PayerID)...)...)
	if resplit {
		l.notify(ctx, expenseNotifications(e, payer, notify.ExpenseUpdated)...)
	}
	return e, nil
}

// DeleteExpense soft-deletes an expense. Only the payer may delete. Its
// splits stay stored and settlements made against it keep counting.
func (l *Ledger) DeleteExpense(ctx context.Context, callerID, expenseID string) error {
	e, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if !e.Active {
		return errs.NotFound("expense %s", expenseID)
	}
	if e.PayerID != callerID {
		return errs.Forbidden("only the payer can delete expense %s", expenseID)
	}

	e.Active = false
	e.UpdatedAt = l.timestamp()
	if err := l.store.UpdateExpense(ctx, e, false); err != nil {
		return err
	}

	metrics.ExpenseOps.WithLabelValues("delete").Inc()
	if !e.Draft {
		l.invalidate(ctx, e.GroupID, append(e.Participants(), e.PayerID)...)
	}
	slog.Info("Expense deleted", "expense_id", expenseID, "payer_id", callerID)
	return nil
}

// GetExpense returns an expense the caller paid, holds a split in, or can see
// as a member of its group. Drafts are visible to their payer only.
func (l *Ledger) GetExpense(ctx context.Context, callerID, expenseID string) (*models.Expense, error) {
	e, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !e.Active || e.Draft && e.PayerID != callerID {
		return nil, errs.NotFound("expense %s", expenseID)
	}
	if e.IsParticipant(callerID) {
		return e, nil
	}
	if e.GroupID != "" {
		if _, _, err := l.requireMember(ctx, e.GroupID, callerID); err == nil {
			return e, nil
		}
	}
	return nil, errs.Forbidden("user %s is not part of expense %s", callerID, expenseID)
}

// ListExpenses returns the caller's expenses, newest first. With a group it
// returns every expense of that group, which requires membership. Drafts are
// listed only when asked for and only the caller's own.
func (l *Ledger) ListExpenses(ctx context.Context, callerID string, q ExpenseQuery) ([]*models.Expense, error) {
	filter := storage.ExpenseFilter{
		UserID:   callerID,
		GroupID:  q.GroupID,
		Category: q.Category,
		Drafts:   q.Drafts,
		Limit:    pageSize(q.Limit),
		Offset:   max(q.Offset, 0),
	}
	if q.GroupID != "" {
		if _, _, err := l.requireMember(ctx, q.GroupID, callerID); err != nil {
			return nil, err
		}
		if !q.Drafts {
			filter.UserID = ""
		}
	}
	return l.store.ListExpenses(ctx, filter)
}

// normalizeSplit puts the payer first in a new equal split that leaves them
// out. Creating an expense always gives its payer an equal share.
func normalizeSplit(cfg models.SplitConfig, payerID string) models.SplitConfig {
	out := models.SplitConfig{Type: cfg.Type, Participants: append([]models.SplitParticipant(nil), cfg.Participants...)}
	if cfg.Type != models.SplitEqual || payerID == "" {
		return out
	}
	for _, p := range cfg.Participants {
		if p.UserID == payerID {
			return out
		}
	}
	out.Participants = append([]models.SplitParticipant{{UserID: payerID}}, out.Participants...)
	return out
}

// storedSplit returns the configuration that produced e's splits. Expenses
// stored before configurations were kept get one rebuilt from their splits.
func storedSplit(e *models.Expense) models.SplitConfig {
	if e.SplitConfig != nil {
		return *e.SplitConfig
	}
	cfg := models.SplitConfig{Type: e.SplitType}
	for _, s := range e.Splits {
		p := models.SplitParticipant{UserID: s.UserID, Amount: s.Amount}
		if s.Percentage.Valid {
			p.Percentage = s.Percentage.Decimal
		}
		if s.Shares.Valid {
			p.Shares = s.Shares.Decimal
		}
		cfg.Participants = append(cfg.Participants, p)
	}
	return cfg
}

type expenseMessage func(to string, actor *models.User, e *models.Expense, share decimal.Decimal) *models.Notification

// expenseNotifications builds one notification per participant other than the payer.
func expenseNotifications(e *models.Expense, payer *models.User, build expenseMessage) []*models.Notification {
	out := make([]*models.Notification, 0, len(e.Splits))
	for _, s := range e.Splits {
		if s.UserID == e.PayerID {
			continue
		}
		out = append(out, build(s.UserID, payer, e, s.Amount))
	}
	return out
}

func notADraft(expenseID string) error {
	return fmt.Errorf("%w: expense %s is not a draft (%w)", errs.ErrConflict, expenseID, errs.ErrNotFound)
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return min(limit, maxPageSize)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
