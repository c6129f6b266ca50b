package mongo

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// groupDoc embeds every membership the group ever had, active or not.
type groupDoc struct {
	ID          string      `bson:"_id"`
	Name        string      `bson:"name"`
	Description string      `bson:"description"`
	Category    string      `bson:"category"`
	CreatedBy   string      `bson:"created_by"`
	Active      bool        `bson:"active"`
	CreatedAt   int64       `bson:"created_at"`
	UpdatedAt   int64       `bson:"updated_at"`
	Members     []memberDoc `bson:"members"`
}

type memberDoc struct {
	UserID   string `bson:"user_id"`
	Role     string `bson:"role"`
	Active   bool   `bson:"active"`
	JoinedAt int64  `bson:"joined_at"`
}

func toMemberDoc(m *models.Membership) memberDoc {
	return memberDoc{UserID: m.UserID, Role: string(m.Role), Active: m.Active, JoinedAt: m.JoinedAt}
}

func (d memberDoc) model(groupID string) *models.Membership {
	return &models.Membership{
		GroupID:  groupID,
		UserID:   d.UserID,
		Role:     models.Role(d.Role),
		Active:   d.Active,
		JoinedAt: d.JoinedAt,
	}
}

func (d *groupDoc) model() *models.Group {
	return &models.Group{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		CreatedBy:   d.CreatedBy,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group, members []*models.Membership) error {
	storage.PrepareGroup(group, members)

	doc := &groupDoc{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Category:    group.Category,
		CreatedBy:   group.CreatedBy,
		Active:      group.Active,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
		Members:     make([]memberDoc, 0, len(members)),
	}
	for _, m := range members {
		doc.Members = append(doc.Members, toMemberDoc(m))
	}

	_, err := s.col(colGroups).InsertOne(ctx, doc)
	return wrapErr("insert group", err)
}

func (s *Store) getGroupDoc(ctx context.Context, groupID string) (*groupDoc, error) {
	var doc groupDoc
	err := s.col(colGroups).FindOne(ctx, bson.M{"_id": groupID}).Decode(&doc)
	if isNoDocuments(err) {
		return nil, errs.NotFound("group %s", groupID)
	}
	if err != nil {
		return nil, wrapErr("get group", err)
	}
	return &doc, nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	doc, err := s.getGroupDoc(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.col(colGroups).UpdateOne(ctx, bson.M{"_id": group.ID}, bson.M{"$set": bson.M{
		"name":        group.Name,
		"description": group.Description,
		"category":    group.Category,
		"active":      group.Active,
		"updated_at":  group.UpdatedAt,
	}})
	if err != nil {
		return wrapErr("update group", err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("group %s", group.ID)
	}
	return nil
}

func (s *Store) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	filter := bson.M{
		"active":  true,
		"members": bson.M{"$elemMatch": bson.M{"user_id": userID, "active": true}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"members": 0})

	cur, err := s.col(colGroups).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("list groups by user", err)
	}
	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode groups", err)
	}

	groups := make([]*models.Group, 0, len(docs))
	for i := range docs {
		groups = append(groups, docs[i].model())
	}
	return groups, nil
}

func (s *Store) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	doc, err := s.getGroupDoc(ctx, groupID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NotFound("membership of %s in group %s", userID, groupID)
		}
		return nil, err
	}
	for _, m := range doc.Members {
		if m.UserID == userID {
			return m.model(groupID), nil
		}
	}
	return nil, errs.NotFound("membership of %s in group %s", userID, groupID)
}

// SaveMembership replaces the member entry in place, or appends it when the
// user has never been a member.
func (s *Store) SaveMembership(ctx context.Context, m *models.Membership) error {
	col := s.col(colGroups)
	doc := toMemberDoc(m)

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": m.GroupID, "members.user_id": m.UserID},
		bson.M{"$set": bson.M{"members.$": doc}},
	)
	if err != nil {
		return wrapErr("save membership", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = col.UpdateOne(ctx,
		bson.M{"_id": m.GroupID, "members.user_id": bson.M{"$ne": m.UserID}},
		bson.M{"$push": bson.M{"members": doc}},
	)
	if err != nil {
		return wrapErr("add membership", err)
	}
	if res.MatchedCount == 0 {
		// Either the group is gone or a concurrent writer added the member.
		if _, err := s.getGroupDoc(ctx, m.GroupID); err != nil {
			return err
		}
		return s.SaveMembership(ctx, m)
	}
	return nil
}

func (s *Store) ListMembers(ctx context.Context, groupID string) ([]*models.Membership, error) {
	members := make([]*models.Membership, 0)
	doc, err := s.getGroupDoc(ctx, groupID)
	if errs.IsNotFound(err) {
		return members, nil
	}
	if err != nil {
		return nil, err
	}

	for _, m := range doc.Members {
		if m.Active {
			members = append(members, m.model(groupID))
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt != members[j].JoinedAt {
			return members[i].JoinedAt < members[j].JoinedAt
		}
		return members[i].UserID < members[j].UserID
	})
	return members, nil
}
