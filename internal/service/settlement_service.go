package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/pkg/api"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
)

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	ledger *ledger.Ledger
}

func NewSettlementService(l *ledger.Ledger) *SettlementService {
	return &SettlementService{ledger: l}
}

// RecordSettlement stores a payment between the caller and a counterpart.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.SettlementResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordSettlement request received",
		"from", req.Msg.FromUserID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
		"group_id", req.Msg.GroupID,
	)

	st, err := s.ledger.RecordSettlement(ctx, caller, ledger.SettlementInput{
		FromUserID: req.Msg.FromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
		GroupID:    req.Msg.GroupID,
		Method:     req.Msg.Method,
		Reference:  req.Msg.Reference,
		Notes:      req.Msg.Notes,
	})
	if err != nil {
		return nil, fail("RecordSettlement", err, "user_id", caller)
	}

	slog.Info("Settlement recorded", "settlement_id", st.ID)
	return connect.NewResponse(&api.SettlementResponse{Settlement: toAPISettlement(st)}), nil
}

func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ledger.ListSettlements(ctx, caller, req.Msg.GroupID, req.Msg.Limit)
	if err != nil {
		return nil, fail("ListSettlements", err, "group_id", req.Msg.GroupID)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// ReverseSettlement deactivates a settlement the caller is a party to.
func (s *SettlementService) ReverseSettlement(ctx context.Context, req *connect.Request[api.ReverseSettlementRequest]) (*connect.Response[api.Empty], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ReverseSettlement request received", "settlement_id", req.Msg.SettlementID)

	if err := s.ledger.ReverseSettlement(ctx, caller, req.Msg.SettlementID); err != nil {
		return nil, fail("ReverseSettlement", err, "settlement_id", req.Msg.SettlementID)
	}

	slog.Info("Settlement reversed", "settlement_id", req.Msg.SettlementID)
	return connect.NewResponse(&api.Empty{}), nil
}
