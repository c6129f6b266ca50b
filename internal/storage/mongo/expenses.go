package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

type expenseDoc struct {
	ID          string          `bson:"_id"`
	Amount      bson.Decimal128 `bson:"amount"`
	Currency    string          `bson:"currency"`
	Description string          `bson:"description"`
	Notes       string          `bson:"notes"`
	Category    string          `bson:"category"`
	PayerID     string          `bson:"payer_id"`
	GroupID     string          `bson:"group_id,omitempty"`
	SplitType   string          `bson:"split_type"`
	SplitConfig *configDoc      `bson:"split_config,omitempty"`
	ExpenseDate int64           `bson:"expense_date"`
	Active      bool            `bson:"active"`
	Settled     bool            `bson:"settled"`
	Draft       bool            `bson:"draft"`
	CreatedAt   int64           `bson:"created_at"`
	UpdatedAt   int64           `bson:"updated_at"`
	Splits      []splitDoc      `bson:"splits"`
}

type splitDoc struct {
	UserID     string           `bson:"user_id"`
	Amount     bson.Decimal128  `bson:"amount"`
	Percentage *bson.Decimal128 `bson:"percentage,omitempty"`
	Shares     *bson.Decimal128 `bson:"shares,omitempty"`
}

type configDoc struct {
	Type         string           `bson:"type"`
	Participants []participantDoc `bson:"participants"`
}

type participantDoc struct {
	UserID     string           `bson:"user_id"`
	Amount     *bson.Decimal128 `bson:"amount,omitempty"`
	Percentage *bson.Decimal128 `bson:"percentage,omitempty"`
	Shares     *bson.Decimal128 `bson:"shares,omitempty"`
}

var expenseSort = bson.D{{Key: "expense_date", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	storage.PrepareExpense(e)

	doc, err := toExpenseDoc(e)
	if err != nil {
		return err
	}
	_, err = s.col(colExpenses).InsertOne(ctx, doc)
	return wrapErr("insert expense", err)
}

func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var doc expenseDoc
	err := s.col(colExpenses).FindOne(ctx, bson.M{"_id": expenseID}).Decode(&doc)
	if isNoDocuments(err) {
		return nil, errs.NotFound("expense %s", expenseID)
	}
	if err != nil {
		return nil, wrapErr("get expense", err)
	}
	return doc.model()
}

func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense, replaceSplits bool) error {
	if replaceSplits {
		storage.PrepareSplits(e)
	}
	doc, err := toExpenseDoc(e)
	if err != nil {
		return err
	}

	set := bson.M{
		"amount":       doc.Amount,
		"currency":     doc.Currency,
		"description":  doc.Description,
		"notes":        doc.Notes,
		"category":     doc.Category,
		"split_type":   doc.SplitType,
		"split_config": doc.SplitConfig,
		"expense_date": doc.ExpenseDate,
		"active":       doc.Active,
		"settled":      doc.Settled,
		"draft":        doc.Draft,
		"updated_at":   doc.UpdatedAt,
	}
	if replaceSplits {
		set["splits"] = doc.Splits
	}

	res, err := s.col(colExpenses).UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": set})
	if err != nil {
		return wrapErr("update expense", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("expense %s", e.ID)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]*models.Expense, error) {
	filter := bson.M{"active": true, "draft": f.Drafts}
	switch {
	case f.Drafts:
		filter["payer_id"] = f.UserID
	case f.UserID != "":
		filter["$or"] = bson.A{bson.M{"payer_id": f.UserID}, bson.M{"splits.user_id": f.UserID}}
	}
	if f.GroupID != "" {
		filter["group_id"] = f.GroupID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return s.findExpenses(ctx, filter, findOpts(expenseSort, f.Offset, f.Limit))
}

func (s *Store) findExpenses(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*models.Expense, error) {
	cur, err := s.col(colExpenses).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("find expenses", err)
	}
	var docs []expenseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode expenses", err)
	}

	expenses := make([]*models.Expense, 0, len(docs))
	for i := range docs {
		e, err := docs[i].model()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func toExpenseDoc(e *models.Expense) (*expenseDoc, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return nil, err
	}
	doc := &expenseDoc{
		ID:          e.ID,
		Amount:      amount,
		Currency:    e.Currency,
		Description: e.Description,
		Notes:       e.Notes,
		Category:    e.Category,
		PayerID:     e.PayerID,
		GroupID:     e.GroupID,
		SplitType:   string(e.SplitType),
		ExpenseDate: e.ExpenseDate,
		Active:      e.Active,
		Settled:     e.Settled,
		Draft:       e.Draft,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Splits:      make([]splitDoc, 0, len(e.Splits)),
	}

	for _, split := range e.Splits {
		sd := splitDoc{UserID: split.UserID}
		if sd.Amount, err = toDecimal128(split.Amount); err != nil {
			return nil, err
		}
		if sd.Percentage, err = toNullDecimal128(split.Percentage); err != nil {
			return nil, err
		}
		if sd.Shares, err = toNullDecimal128(split.Shares); err != nil {
			return nil, err
		}
		doc.Splits = append(doc.Splits, sd)
	}

	if e.SplitConfig != nil {
		doc.SplitConfig = &configDoc{Type: string(e.SplitConfig.Type)}
		for _, p := range e.SplitConfig.Participants {
			pd := participantDoc{UserID: p.UserID}
			if pd.Amount, err = optionalDecimal128(p.Amount); err != nil {
				return nil, err
			}
			if pd.Percentage, err = optionalDecimal128(p.Percentage); err != nil {
				return nil, err
			}
			if pd.Shares, err = optionalDecimal128(p.Shares); err != nil {
				return nil, err
			}
			doc.SplitConfig.Participants = append(doc.SplitConfig.Participants, pd)
		}
	}
	return doc, nil
}

func (d *expenseDoc) model() (*models.Expense, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	e := &models.Expense{
		ID:          d.ID,
		Amount:      amount,
		Currency:    d.Currency,
		Description: d.Description,
		Notes:       d.Notes,
		Category:    d.Category,
		PayerID:     d.PayerID,
		GroupID:     d.GroupID,
		SplitType:   models.SplitType(d.SplitType),
		ExpenseDate: d.ExpenseDate,
		Active:      d.Active,
		Settled:     d.Settled,
		Draft:       d.Draft,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	for i, sd := range d.Splits {
		split := models.Split{ExpenseID: d.ID, UserID: sd.UserID, Position: i}
		if split.Amount, err = fromDecimal128(sd.Amount); err != nil {
			return nil, err
		}
		if split.Percentage, err = fromNullDecimal128(sd.Percentage); err != nil {
			return nil, err
		}
		if split.Shares, err = fromNullDecimal128(sd.Shares); err != nil {
			return nil, err
		}
		e.Splits = append(e.Splits, split)
	}

	if d.SplitConfig != nil {
		e.SplitConfig = &models.SplitConfig{Type: models.SplitType(d.SplitConfig.Type)}
		for _, pd := range d.SplitConfig.Participants {
			p := models.SplitParticipant{UserID: pd.UserID}
			if p.Amount, err = optionalDecimal(pd.Amount); err != nil {
				return nil, err
			}
			if p.Percentage, err = optionalDecimal(pd.Percentage); err != nil {
				return nil, err
			}
			if p.Shares, err = optionalDecimal(pd.Shares); err != nil {
				return nil, err
			}
			e.SplitConfig.Participants = append(e.SplitConfig.Participants, p)
		}
	}
	return e, nil
}
