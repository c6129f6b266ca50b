// Package ledger implements the expense-sharing operations on top of a
// storage.Store: the expense lifecycle, balances, settlements, groups,
// profiles and notifications, with the authorization checks each needs.
//
// Callers pass the authenticated user ID as given by the identity provider;
// the ledger performs no credential checks of its own.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// Notifier delivers notifications. Implementations must not block on
// delivery failures; the ledger never learns about them.
type Notifier interface {
	Notify(ctx context.Context, notifications ...*models.Notification)
}

// BalanceCache stores computed balance maps. Errors are logged and the
// ledger falls back to computing from the store.
type BalanceCache interface {
	Get(ctx context.Context, userID string, scope calculator.Scope) (map[string]decimal.Decimal, bool, error)
	Set(ctx context.Context, userID string, scope calculator.Scope, balances map[string]decimal.Decimal) error
	Invalidate(ctx context.Context, groupID string, userIDs ...string) error
}

// Ledger is safe for concurrent use; it holds no mutable state of its own.
type Ledger struct {
	store    storage.Store
	notifier Notifier
	cache    BalanceCache
	now      func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithNotifier sets the notification sink. Without one notifications are dropped.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) { l.notifier = n }
}

// WithCache enables the balance cache.
func WithCache(c BalanceCache) Option {
	return func(l *Ledger) { l.cache = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) timestamp() int64 {
	return l.now().Unix()
}

func (l *Ledger) notify(ctx context.Context, notifications ...*models.Notification) {
	if l.notifier == nil || len(notifications) == 0 {
		return
	}
	l.notifier.Notify(ctx, notifications...)
}

// invalidate drops cached balances of userIDs. Failures only cost freshness
// up to the cache TTL.
func (l *Ledger) invalidate(ctx context.Context, groupID string, userIDs ...string) {
	if l.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := l.cache.Invalidate(ctx, groupID, userIDs...); err != nil {
		slog.Warn("Failed to invalidate balance cache", "group_id", groupID, "users", userIDs, "error", err)
	}
}

// uniqueIDs returns ids without blanks and duplicates, keeping first occurrences.
func uniqueIDs(ids ...string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
