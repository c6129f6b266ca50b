package ledger

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/metrics"
	"github.com/mmynk/hisab/internal/storage"
)

// MemberPosition is one member's net position inside a group.
// Positive means the member is owed money.
type MemberPosition struct {
	UserID string
	Net    decimal.Decimal
}

// SettlementPlan is a group's net positions and the payments that would clear them.
type SettlementPlan struct {
	Positions []MemberPosition
	Transfers []calculator.Transfer
}

// BalancesFor returns the caller's signed balance with every counterpart in
// scope: positive when the counterpart owes the caller. A group scope
// requires active membership.
func (l *Ledger) BalancesFor(ctx context.Context, callerID string, scope calculator.Scope) (map[string]decimal.Decimal, error) {
	if !scope.IsGlobal() {
		if _, _, err := l.requireMember(ctx, scope.GroupID, callerID); err != nil {
			return nil, err
		}
	}
	return l.balances(ctx, callerID, scope)
}

// GroupBalanceSummary returns the caller's totals and balances in a group.
func (l *Ledger) GroupBalanceSummary(ctx context.Context, callerID, groupID string) (calculator.GroupSummary, error) {
	if _, _, err := l.requireMember(ctx, groupID, callerID); err != nil {
		return calculator.GroupSummary{}, err
	}
	snapshot, err := l.load(ctx, storage.LedgerQuery{GroupID: groupID}, calculator.Group(groupID))
	if err != nil {
		return calculator.GroupSummary{}, err
	}
	return calculator.SummarizeGroup(callerID, groupID, snapshot.Expenses, snapshot.Settlements), nil
}

// GroupSettlementPlan returns every active member's net position in a group
// and a short list of payments that would settle the group. Members with no
// activity show a zero position.
func (l *Ledger) GroupSettlementPlan(ctx context.Context, callerID, groupID string) (*SettlementPlan, error) {
	if _, _, err := l.requireMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}
	snapshot, err := l.load(ctx, storage.LedgerQuery{GroupID: groupID}, calculator.Group(groupID))
	if err != nil {
		return nil, err
	}
	members, err := l.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	positions := calculator.GroupPositions(groupID, snapshot.Expenses, snapshot.Settlements)
	for _, m := range members {
		if _, ok := positions[m.UserID]; !ok {
			positions[m.UserID] = decimal.Zero
		}
	}

	plan := &SettlementPlan{Transfers: calculator.SimplifyDebts(positions)}
	for _, id := range sortedKeys(positions) {
		plan.Positions = append(plan.Positions, MemberPosition{UserID: id, Net: positions[id]})
	}
	return plan, nil
}

// balances serves a balance map from the cache when it can and computes it
// from a ledger snapshot otherwise.
func (l *Ledger) balances(ctx context.Context, userID string, scope calculator.Scope) (map[string]decimal.Decimal, error) {
	if l.cache != nil {
		cached, ok, err := l.cache.Get(ctx, userID, scope)
		switch {
		case err != nil:
			metrics.BalanceCache.WithLabelValues("error").Inc()
			slog.Warn("Balance cache read failed", "user_id", userID, "scope", scope.Key(), "error", err)
		case ok:
			metrics.BalanceCache.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.BalanceCache.WithLabelValues("miss").Inc()
		}
	}

	snapshot, err := l.load(ctx, storage.LedgerQuery{UserID: userID, GroupID: scope.GroupID}, scope)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result := calculator.BalancesFor(userID, scope, snapshot.Expenses, snapshot.Settlements)
	metrics.BalanceDuration.WithLabelValues(scopeLabel(scope)).Observe(time.Since(start).Seconds())

	if l.cache != nil {
		if err := l.cache.Set(ctx, userID, scope, result); err != nil {
			slog.Warn("Balance cache write failed", "user_id", userID, "scope", scope.Key(), "error", err)
		}
	}
	return result, nil
}

func (l *Ledger) load(ctx context.Context, q storage.LedgerQuery, scope calculator.Scope) (*storage.Ledger, error) {
	snapshot, err := l.store.LoadLedger(ctx, q)
	if err != nil {
		slog.Error("Failed to load ledger", "user_id", q.UserID, "scope", scope.Key(), "error", err)
		return nil, err
	}
	return snapshot, nil
}

func scopeLabel(scope calculator.Scope) string {
	if scope.IsGlobal() {
		return "global"
	}
	return "group"
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	return slices.Sorted(maps.Keys(m))
}
