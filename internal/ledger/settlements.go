package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/validate"
)

// SettlementInput records a payment made outside the ledger.
type SettlementInput struct {
	// FromUserID is the payer; empty means the caller.
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"money"`
	GroupID    string          `json:"group_id"`
	Method     string          `json:"method" validate:"omitempty,oneof=upi cash bank_transfer other"`
	Reference  string          `json:"reference" validate:"max=255"`
	Notes      string          `json:"notes" validate:"max=1000"`
}

// RecordSettlement stores a settlement between the caller and a counterpart
// and notifies the counterpart. Either side may record it.
func (l *Ledger) RecordSettlement(ctx context.Context, callerID string, in SettlementInput) (*models.Settlement, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.FromUserID == "" {
		in.FromUserID = callerID
	}
	if in.FromUserID == in.ToUserID {
		return nil, errs.InvalidInput("cannot settle with yourself")
	}
	if callerID != in.FromUserID && callerID != in.ToUserID {
		return nil, errs.Forbidden("user %s is not a party to this settlement", callerID)
	}

	caller, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if _, err := l.requireUsers(ctx, []string{in.FromUserID, in.ToUserID}); err != nil {
		return nil, err
	}
	if in.GroupID != "" {
		if _, _, err := l.requireMember(ctx, in.GroupID, callerID); err != nil {
			return nil, err
		}
	}

	st := &models.Settlement{
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Amount:     in.Amount,
		GroupID:    in.GroupID,
		Method:     models.PaymentMethod(orDefault(in.Method, string(models.PaymentUPI))),
		Reference:  strings.TrimSpace(in.Reference),
		Notes:      in.Notes,
		Active:     true,
		CreatedBy:  callerID,
		CreatedAt:  l.timestamp(),
	}
	if err := l.store.CreateSettlement(ctx, st); err != nil {
		return nil, err
	}

	metrics.Settlements.WithLabelValues("record").Inc()
	l.invalidate(ctx, st.GroupID, st.FromUserID, st.ToUserID)

	counterpart := st.ToUserID
	if callerID == st.ToUserID {
		counterpart = st.FromUserID
	}
	l.notify(ctx, notify.SettlementRecorded(counterpart, caller, st))
	return st, nil
}

// ListSettlements returns the active settlements the caller is a party to,
// newest first, optionally within one group.
func (l *Ledger) ListSettlements(ctx context.Context, callerID, groupID string, limit int) ([]*models.Settlement, error) {
	return l.store.ListSettlements(ctx, storage.SettlementFilter{
		UserID:  callerID,
		GroupID: groupID,
		Limit:   pageSize(limit),
	})
}

// ReverseSettlement deactivates a settlement so it stops affecting balances.
// Only its parties may reverse it.
func (l *Ledger) ReverseSettlement(ctx context.Context, callerID, settlementID string) error {
	st, err := l.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if !st.Active {
		return errs.NotFound("settlement %s", settlementID)
	}
	if !st.Involves(callerID) {
		return errs.Forbidden("user %s is not a party to settlement %s", callerID, settlementID)
	}
	if err := l.store.DeactivateSettlement(ctx, settlementID); err != nil {
		return err
	}

	metrics.Settlements.WithLabelValues("reverse").Inc()
	l.invalidate(ctx, st.GroupID, st.FromUserID, st.ToUserID)
	return nil
}
