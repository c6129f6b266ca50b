package service

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:             u.ID,
		Email:          u.Email,
		Mobile:         u.Mobile,
		DisplayName:    u.DisplayName,
		PaymentAddress: u.PaymentAddress,
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toAPIMembers(members []*models.Membership) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = &api.Member{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
	}
	return out
}

func fromAPISplit(cfg api.SplitConfig) models.SplitConfig {
	out := models.SplitConfig{
		Type:         models.SplitType(cfg.Type),
		Participants: make([]models.SplitParticipant, len(cfg.Participants)),
	}
	for i, p := range cfg.Participants {
		out.Participants[i] = models.SplitParticipant{
			UserID:     p.UserID,
			Amount:     p.Amount,
			Percentage: p.Percentage,
			Shares:     p.Shares,
		}
	}
	return out
}

func toAPISplitConfig(cfg *models.SplitConfig) *api.SplitConfig {
	if cfg == nil {
		return nil
	}
	out := &api.SplitConfig{
		Type:         string(cfg.Type),
		Participants: make([]api.Participant, len(cfg.Participants)),
	}
	for i, p := range cfg.Participants {
		out.Participants[i] = api.Participant{
			UserID:     p.UserID,
			Amount:     p.Amount,
			Percentage: p.Percentage,
			Shares:     p.Shares,
		}
	}
	return out
}

func toAPISplits(splits []models.Split) []api.Split {
	out := make([]api.Split, len(splits))
	for i, s := range splits {
		out[i] = api.Split{UserID: s.UserID, Amount: s.Amount}
		if s.Percentage.Valid {
			out[i].Percentage = &s.Percentage.Decimal
		}
		if s.Shares.Valid {
			out[i].Shares = &s.Shares.Decimal
		}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Description: e.Description,
		Notes:       e.Notes,
		Category:    e.Category,
		PayerID:     e.PayerID,
		GroupID:     e.GroupID,
		SplitType:   string(e.SplitType),
		Split:       toAPISplitConfig(e.SplitConfig),
		ExpenseDate: e.ExpenseDate,
		Draft:       e.Draft,
		Settled:     e.Settled,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Splits:      toAPISplits(e.Splits),
	}
}

func toAPISettlement(st *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:         st.ID,
		FromUserID: st.FromUserID,
		ToUserID:   st.ToUserID,
		Amount:     st.Amount,
		GroupID:    st.GroupID,
		Method:     string(st.Method),
		Reference:  st.Reference,
		Notes:      st.Notes,
		Active:     st.Active,
		CreatedBy:  st.CreatedBy,
		CreatedAt:  st.CreatedAt,
	}
}

func toAPINotification(n *models.Notification) *api.Notification {
	return &api.Notification{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		ExpenseID: n.ExpenseID,
		GroupID:   n.GroupID,
		ActorID:   n.ActorID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// toAPIBalances flattens a balance map, ordered by user id.
func toAPIBalances(balances map[string]decimal.Decimal) []*api.Balance {
	out := make([]*api.Balance, 0, len(balances))
	for _, id := range slices.Sorted(maps.Keys(balances)) {
		out = append(out, &api.Balance{UserID: id, Amount: calculator.Round(balances[id])})
	}
	return out
}
