package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

const settlementColumns = "id, from_user_id, to_user_id, amount, group_id, method, reference, notes, active, created_by, created_at"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	storage.PrepareSettlement(settlement)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.FromUserID, settlement.ToUserID, settlement.Amount,
		nullString(settlement.GroupID), settlement.Method, settlement.Reference, settlement.Notes,
		settlement.Active, settlement.CreatedBy, settlement.CreatedAt,
	)
	return wrapErr("insert settlement", err)
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlements, err := querySettlements(ctx, s.db, "SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, errs.NotFound("settlement %s", settlementID)
	}
	return settlements[0], nil
}

// DeactivateSettlement marks a settlement as reversed.
func (s *SQLiteStore) DeactivateSettlement(ctx context.Context, settlementID string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE settlements SET active = 0 WHERE id = ?", settlementID)
	if err != nil {
		return wrapErr("deactivate settlement", err)
	}
	return requireRow(result, "settlement", settlementID)
}

// ListSettlements retrieves active settlements matching the filter, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, f storage.SettlementFilter) ([]*models.Settlement, error) {
	conds := []string{"active = 1"}
	var args []any
	if f.UserID != "" {
		conds = append(conds, "(from_user_id = ? OR to_user_id = ?)")
		args = append(args, f.UserID, f.UserID)
	}
	if f.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, f.GroupID)
	}
	args = append(args, limitArg(f.Limit))

	query := "SELECT " + settlementColumns + " FROM settlements WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY created_at DESC, id LIMIT ?"
	return querySettlements(ctx, s.db, query, args...)
}

func querySettlements(ctx context.Context, q queryer, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query settlements", err)
	}
	defer rows.Close()

	settlements := make([]*models.Settlement, 0)
	for rows.Next() {
		st := &models.Settlement{}
		var groupID sql.NullString
		if err := rows.Scan(&st.ID, &st.FromUserID, &st.ToUserID, &st.Amount, &groupID, &st.Method,
			&st.Reference, &st.Notes, &st.Active, &st.CreatedBy, &st.CreatedAt); err != nil {
			return nil, wrapErr("scan settlement", err)
		}
		st.GroupID = groupID.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate settlements", err)
	}
	return settlements, nil
}
