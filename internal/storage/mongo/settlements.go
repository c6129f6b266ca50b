package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

type settlementDoc struct {
	ID         string          `bson:"_id"`
	FromUserID string          `bson:"from_user_id"`
	ToUserID   string          `bson:"to_user_id"`
	Amount     bson.Decimal128 `bson:"amount"`
	GroupID    string          `bson:"group_id,omitempty"`
	Method     string          `bson:"method"`
	Reference  string          `bson:"reference"`
	Notes      string          `bson:"notes"`
	Active     bool            `bson:"active"`
	CreatedBy  string          `bson:"created_by"`
	CreatedAt  int64           `bson:"created_at"`
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

func (s *Store) CreateSettlement(ctx context.Context, st *models.Settlement) error {
	storage.PrepareSettlement(st)

	amount, err := toDecimal128(st.Amount)
	if err != nil {
		return err
	}
	_, err = s.col(colSettlements).InsertOne(ctx, &settlementDoc{
		ID:         st.ID,
		FromUserID: st.FromUserID,
		ToUserID:   st.ToUserID,
		Amount:     amount,
		GroupID:    st.GroupID,
		Method:     string(st.Method),
		Reference:  st.Reference,
		Notes:      st.Notes,
		Active:     st.Active,
		CreatedBy:  st.CreatedBy,
		CreatedAt:  st.CreatedAt,
	})
	return wrapErr("insert settlement", err)
}

func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	var doc settlementDoc
	err := s.col(colSettlements).FindOne(ctx, bson.M{"_id": settlementID}).Decode(&doc)
	if isNoDocuments(err) {
		return nil, errs.NotFound("settlement %s", settlementID)
	}
	if err != nil {
		return nil, wrapErr("get settlement", err)
	}
	return doc.model()
}

func (s *Store) DeactivateSettlement(ctx context.Context, settlementID string) error {
	res, err := s.col(colSettlements).UpdateOne(ctx, bson.M{"_id": settlementID}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return wrapErr("deactivate settlement", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("settlement %s", settlementID)
	}
	return nil
}

func (s *Store) ListSettlements(ctx context.Context, f storage.SettlementFilter) ([]*models.Settlement, error) {
	filter := bson.M{"active": true}
	if f.UserID != "" {
		filter["$or"] = bson.A{bson.M{"from_user_id": f.UserID}, bson.M{"to_user_id": f.UserID}}
	}
	if f.GroupID != "" {
		filter["group_id"] = f.GroupID
	}
	return s.findSettlements(ctx, filter, findOpts(newestFirst, 0, f.Limit))
}

func (s *Store) findSettlements(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*models.Settlement, error) {
	cur, err := s.col(colSettlements).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("find settlements", err)
	}
	var docs []settlementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode settlements", err)
	}

	settlements := make([]*models.Settlement, 0, len(docs))
	for i := range docs {
		st, err := docs[i].model()
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, st)
	}
	return settlements, nil
}

func (d *settlementDoc) model() (*models.Settlement, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	return &models.Settlement{
		ID:         d.ID,
		FromUserID: d.FromUserID,
		ToUserID:   d.ToUserID,
		Amount:     amount,
		GroupID:    d.GroupID,
		Method:     models.PaymentMethod(d.Method),
		Reference:  d.Reference,
		Notes:      d.Notes,
		Active:     d.Active,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
	}, nil
}
