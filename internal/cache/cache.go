// Package cache keeps computed balances in Redis so repeated reads skip the
// ledger scan. Entries expire after a TTL and are deleted on every mutation
// that touches the user, so a reader sees at worst a TTL-old value when an
// invalidation is lost.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/errs"
)

const keyPrefix = "hisab:balances:"

// Balances caches per-user balance maps keyed by scope.
type Balances struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing client.
func New(rdb *redis.Client, ttl time.Duration) *Balances {
	return &Balances{rdb: rdb, ttl: ttl}
}

// Connect dials Redis and checks it answers.
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Balances, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errs.Storage("ping redis", err)
	}
	return New(rdb, ttl), nil
}

// Close closes the underlying client.
func (c *Balances) Close() error {
	return c.rdb.Close()
}

func key(userID string, scope calculator.Scope) string {
	return keyPrefix + userID + ":" + scope.Key()
}

// Get returns the cached balances of userID in scope. ok is false on a miss.
func (c *Balances) Get(ctx context.Context, userID string, scope calculator.Scope) (balances map[string]decimal.Decimal, ok bool, err error) {
	ok, err = getJSON(ctx, c.rdb, key(userID, scope), &balances)
	return balances, ok, err
}

// Set stores the balances of userID in scope.
func (c *Balances) Set(ctx context.Context, userID string, scope calculator.Scope, balances map[string]decimal.Decimal) error {
	return setJSON(ctx, c.rdb, key(userID, scope), balances, c.ttl)
}

// Invalidate drops the global entry of every user and, when groupID is set,
// their entry for that group.
func (c *Balances) Invalidate(ctx context.Context, groupID string, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, key(id, calculator.Global()))
		if groupID != "" {
			keys = append(keys, key(id, calculator.Group(groupID)))
		}
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return errs.Storage("invalidate balances", err)
	}
	return nil
}

func getJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errs.Storage("get "+key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, errs.Storage("decode "+key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return errs.Storage("encode "+key, err)
	}
	if err := rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return errs.Storage("set "+key, err)
	}
	return nil
}
