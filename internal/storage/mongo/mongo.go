// Package mongo implements storage.Store on MongoDB.
//
// Splits are embedded in their expense document and memberships in their
// group document, so every multi-row write of the relational backends is a
// single-document write here. LoadLedger reads from a snapshot session,
// which needs a replica set or sharded cluster.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/storage"
)

// Collection name constants.
const (
	colUsers         = "users"
	colGroups        = "groups"
	colExpenses      = "expenses"
	colSettlements   = "settlements"
	colNotifications = "notifications"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri, selects database and ensures indexes exist.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Storage("connect mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Storage("ping mongo", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.Migrate(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Migrate creates the indexes of every collection.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return errs.Storage(fmt.Sprintf("create %s indexes", col), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return errs.Storage("ping mongo", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// LoadLedger reads expenses and settlements at one cluster time.
func (s *Store) LoadLedger(ctx context.Context, q storage.LedgerQuery) (*storage.Ledger, error) {
	sess, err := s.client.StartSession(options.Session().SetSnapshot(true))
	if err != nil {
		return nil, errs.Storage("start snapshot session", err)
	}
	defer sess.EndSession(ctx)
	sctx := mongo.NewSessionContext(ctx, sess)

	expenseFilter := bson.M{"active": true}
	settlementFilter := bson.M{"active": true}
	if q.GroupID != "" {
		expenseFilter["group_id"] = q.GroupID
		settlementFilter["group_id"] = q.GroupID
	} else {
		expenseFilter["$or"] = bson.A{bson.M{"payer_id": q.UserID}, bson.M{"splits.user_id": q.UserID}}
		settlementFilter["$or"] = bson.A{bson.M{"from_user_id": q.UserID}, bson.M{"to_user_id": q.UserID}}
	}

	expenses, err := s.findExpenses(sctx, expenseFilter, options.Find())
	if err != nil {
		return nil, err
	}
	settlements, err := s.findSettlements(sctx, settlementFilter, options.Find())
	if err != nil {
		return nil, err
	}
	return &storage.Ledger{Expenses: expenses, Settlements: settlements}, nil
}

// wrapErr maps a driver error onto the errs kinds.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return errs.Conflict("%s: %v", op, err)
	default:
		return errs.Storage(op, err)
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// findOpts sorts a find and applies offset and limit when set.
func findOpts(sort bson.D, offset, limit int) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(sort)
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, ok := bson.ParseDecimal128FromBigInt(d.Coefficient(), int(d.Exponent()))
	if !ok {
		return bson.Decimal128{}, errs.InvalidInput("amount %s out of range", d)
	}
	return v, nil
}

func fromDecimal128(v bson.Decimal128) (decimal.Decimal, error) {
	coef, exp, err := v.BigInt()
	if err != nil {
		return decimal.Zero, errs.Storage("decode decimal", err)
	}
	return decimal.NewFromBigInt(coef, int32(exp)), nil
}

func toNullDecimal128(d decimal.NullDecimal) (*bson.Decimal128, error) {
	if !d.Valid {
		return nil, nil
	}
	v, err := toDecimal128(d.Decimal)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func fromNullDecimal128(v *bson.Decimal128) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := fromDecimal128(*v)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// optionalDecimal128 omits zero values, which split configs never read.
func optionalDecimal128(d decimal.Decimal) (*bson.Decimal128, error) {
	if d.IsZero() {
		return nil, nil
	}
	return toNullDecimal128(decimal.NewNullDecimal(d))
}

func optionalDecimal(v *bson.Decimal128) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	return fromDecimal128(*v)
}

// migrationIndexes returns the index definitions for all collections.
// Email and mobile are omitted when empty, so sparse unique indexes only
// constrain users that set them.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{
				Keys:    bson.D{{Key: "mobile", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		colGroups: {
			{Keys: bson.D{{Key: "members.user_id", Value: 1}, {Key: "active", Value: 1}}},
		},
		colExpenses: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "active", Value: 1}, {Key: "expense_date", Value: -1}}},
			{Keys: bson.D{{Key: "payer_id", Value: 1}, {Key: "draft", Value: 1}}},
			{Keys: bson.D{{Key: "splits.user_id", Value: 1}}},
		},
		colSettlements: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "from_user_id", Value: 1}}},
			{Keys: bson.D{{Key: "to_user_id", Value: 1}}},
		},
		colNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}
