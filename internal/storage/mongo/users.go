package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

type userDoc struct {
	ID             string `bson:"_id"`
	Email          string `bson:"email,omitempty"`
	Mobile         string `bson:"mobile,omitempty"`
	DisplayName    string `bson:"display_name"`
	PaymentAddress string `bson:"payment_address"`
	Active         bool   `bson:"active"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
}

func toUserDoc(u *models.User) *userDoc {
	return &userDoc{
		ID:             u.ID,
		Email:          u.Email,
		Mobile:         u.Mobile,
		DisplayName:    u.DisplayName,
		PaymentAddress: u.PaymentAddress,
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:             d.ID,
		Email:          d.Email,
		Mobile:         d.Mobile,
		DisplayName:    d.DisplayName,
		PaymentAddress: d.PaymentAddress,
		Active:         d.Active,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	storage.PrepareUser(u)
	_, err := s.col(colUsers).InsertOne(ctx, toUserDoc(u))
	return wrapErr("insert user", err)
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": userID}, "user %s", userID)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email}, "user with email %s", email)
}

func (s *Store) findUser(ctx context.Context, filter bson.M, format string, arg string) (*models.User, error) {
	var doc userDoc
	err := s.col(colUsers).FindOne(ctx, filter).Decode(&doc)
	if isNoDocuments(err) {
		return nil, errs.NotFound(format, arg)
	}
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return doc.model(), nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	cur, err := s.col(colUsers).Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, wrapErr("get users", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode users", err)
	}
	for i := range docs {
		users = append(users, docs[i].model())
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.col(colUsers).UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"display_name":    u.DisplayName,
		"payment_address": u.PaymentAddress,
		"active":          u.Active,
		"updated_at":      u.UpdatedAt,
	}})
	if err != nil {
		return wrapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("user %s", u.ID)
	}
	return nil
}
