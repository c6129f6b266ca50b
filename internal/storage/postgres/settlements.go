package postgres

import (
	"context"
	"strings"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const settlementColumns = "id, from_user_id, to_user_id, amount, group_id, method, reference, notes, active, created_by, created_at"

func (s *Storage) CreateSettlement(ctx context.Context, st *models.Settlement) error {
	storage.PrepareSettlement(st)

	_, err := s.db.Exec(ctx, `
		INSERT INTO settlements (`+settlementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, st.ID, st.FromUserID, st.ToUserID, st.Amount, nullString(st.GroupID), string(st.Method),
		st.Reference, st.Notes, st.Active, st.CreatedBy, st.CreatedAt)
	return wrapErr("insert settlement", err)
}

func (s *Storage) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlements, err := querySettlements(ctx, s.db, "SELECT "+settlementColumns+" FROM settlements WHERE id = $1", settlementID)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, errs.NotFound("settlement %s", settlementID)
	}
	return settlements[0], nil
}

func (s *Storage) DeactivateSettlement(ctx context.Context, settlementID string) error {
	tag, err := s.db.Exec(ctx, "UPDATE settlements SET active = FALSE WHERE id = $1", settlementID)
	if err != nil {
		return wrapErr("deactivate settlement", err)
	}
	return requireRow(tag, "settlement", settlementID)
}

func (s *Storage) ListSettlements(ctx context.Context, f storage.SettlementFilter) ([]*models.Settlement, error) {
	var a args
	conds := []string{"active"}
	if f.UserID != "" {
		p := a.add(f.UserID)
		conds = append(conds, "(from_user_id = "+p+" OR to_user_id = "+p+")")
	}
	if f.GroupID != "" {
		conds = append(conds, "group_id = "+a.add(f.GroupID))
	}

	query := "SELECT " + settlementColumns + " FROM settlements WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY created_at DESC, id LIMIT " + a.add(limitArg(f.Limit))
	return querySettlements(ctx, s.db, query, a...)
}

func querySettlements(ctx context.Context, q querier, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query settlements", err)
	}
	defer rows.Close()

	settlements := make([]*models.Settlement, 0)
	for rows.Next() {
		st := &models.Settlement{}
		var (
			groupID *string
			method  string
		)
		if err := rows.Scan(&st.ID, &st.FromUserID, &st.ToUserID, &st.Amount, &groupID, &method,
			&st.Reference, &st.Notes, &st.Active, &st.CreatedBy, &st.CreatedAt); err != nil {
			return nil, wrapErr("scan settlement", err)
		}
		if groupID != nil {
			st.GroupID = *groupID
		}
		st.Method = models.PaymentMethod(method)
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate settlements", err)
	}
	return settlements, nil
}
