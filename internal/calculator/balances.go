package calculator

import (
	"sort"

	"github.com/mmynk/hisab/internal/models"
	"github.com/shopspring/decimal"
)

// Scope restricts a balance computation to one group or to everything (global).
type Scope struct {
	GroupID string
}

// Global is the scope over all of a user's expenses and settlements.
func Global() Scope { return Scope{} }

// Group is the scope over one group's expenses and settlements.
func Group(groupID string) Scope { return Scope{GroupID: groupID} }

// IsGlobal reports whether s covers every group.
func (s Scope) IsGlobal() bool { return s.GroupID == "" }

// Key identifies the scope in cache keys and logs.
func (s Scope) Key() string {
	if s.IsGlobal() {
		return "global"
	}
	return "group:" + s.GroupID
}

func (s Scope) includesExpense(e *models.Expense) bool {
	return s.IsGlobal() || e.GroupID == s.GroupID
}

func (s Scope) includesSettlement(st *models.Settlement) bool {
	return s.IsGlobal() || st.GroupID == s.GroupID
}

// counts reports whether e takes part in balance computation. Drafts and expenses
// whose splits are not visible yet are treated alike.
func counts(e *models.Expense) bool {
	return e.Active && !e.Draft && len(e.Splits) > 0
}

// GroupSummary is one user's view of a group's money.
type GroupSummary struct {
	TotalExpenses decimal.Decimal            // volume of all counted expenses in the group
	TotalPaid     decimal.Decimal            // what the user paid
	TotalShare    decimal.Decimal            // the user's own splits
	NetBalance    decimal.Decimal            // TotalPaid - TotalShare
	Balances      map[string]decimal.Decimal // per counterpart, positive = they owe the user
}

// BalancesFor computes userID's signed balance with every counterpart in scope.
// Positive means the counterpart owes userID, negative means userID owes them.
//
// Algorithm:
//   - For each counted expense userID paid: every other split adds to that user
//   - For each counted expense where userID holds a split: it subtracts from the payer
//   - For each active settlement userID sent: the amount adds to the receiver
//   - For each active settlement userID received: the amount subtracts from the sender
//   - Entries below Tolerance are dropped
//
// The result does not depend on the order of expenses or settlements.
func BalancesFor(userID string, scope Scope, expenses []*models.Expense, settlements []*models.Settlement) map[string]decimal.Decimal {
	return accumulate(userID, scope, expenses, settlements).Balances
}

// SummarizeGroup computes the group summary for userID in one pass.
func SummarizeGroup(userID, groupID string, expenses []*models.Expense, settlements []*models.Settlement) GroupSummary {
	return accumulate(userID, Group(groupID), expenses, settlements)
}

func accumulate(userID string, scope Scope, expenses []*models.Expense, settlements []*models.Settlement) GroupSummary {
	summary := GroupSummary{
		TotalExpenses: decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalShare:    decimal.Zero,
	}
	balances := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		if !counts(e) || !scope.includesExpense(e) {
			continue
		}
		summary.TotalExpenses = summary.TotalExpenses.Add(e.Amount)
		isPayer := e.PayerID == userID
		if isPayer {
			summary.TotalPaid = summary.TotalPaid.Add(e.Amount)
		}

		for _, s := range e.Splits {
			switch {
			case isPayer && s.UserID != userID:
				balances[s.UserID] = balances[s.UserID].Add(s.Amount)
			case !isPayer && s.UserID == userID:
				balances[e.PayerID] = balances[e.PayerID].Sub(s.Amount)
			}
			if s.UserID == userID {
				summary.TotalShare = summary.TotalShare.Add(s.Amount)
			}
		}
	}

	for _, st := range settlements {
		if !st.Active || !scope.includesSettlement(st) || st.FromUserID == st.ToUserID {
			continue
		}
		switch userID {
		case st.FromUserID:
			balances[st.ToUserID] = balances[st.ToUserID].Add(st.Amount)
		case st.ToUserID:
			balances[st.FromUserID] = balances[st.FromUserID].Sub(st.Amount)
		}
	}

	for other, amount := range balances {
		if IsNegligible(amount) {
			delete(balances, other)
		}
	}

	summary.NetBalance = summary.TotalPaid.Sub(summary.TotalShare)
	summary.Balances = balances
	return summary
}

// Outstanding sums a balance map into one signed figure.
func Outstanding(balances map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range balances {
		total = total.Add(v)
	}
	return total
}

// Transfer is a suggested payment from one member to another.
type Transfer struct {
	From   string // member who owes
	To     string // member who is owed
	Amount decimal.Decimal
}

// GroupPositions computes every member's net position inside a group.
// Positive = the member is owed money, negative = the member owes money.
// A member's position equals the sum of their BalancesFor map in the same group.
func GroupPositions(groupID string, expenses []*models.Expense, settlements []*models.Settlement) map[string]decimal.Decimal {
	scope := Group(groupID)
	positions := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		if !counts(e) || !scope.includesExpense(e) {
			continue
		}
		for _, s := range e.Splits {
			if s.UserID == e.PayerID {
				continue
			}
			positions[e.PayerID] = positions[e.PayerID].Add(s.Amount)
			positions[s.UserID] = positions[s.UserID].Sub(s.Amount)
		}
	}

	for _, st := range settlements {
		if !st.Active || !scope.includesSettlement(st) || st.FromUserID == st.ToUserID {
			continue
		}
		// Paying improves the sender's position, receiving lowers the receiver's
		positions[st.FromUserID] = positions[st.FromUserID].Add(st.Amount)
		positions[st.ToUserID] = positions[st.ToUserID].Sub(st.Amount)
	}

	return positions
}

// SimplifyDebts turns net positions into a short list of transfers that clears them.
//
// Algorithm: greedy matching of the largest debtor with the largest creditor,
// settling min(debt, credit) each step. Ties are broken by member id so the
// plan is deterministic.
func SimplifyDebts(positions map[string]decimal.Decimal) []Transfer {
	type entry struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []entry
	for id, amount := range positions {
		if IsNegligible(amount) {
			continue
		}
		if amount.IsPositive() {
			creditors = append(creditors, entry{id, amount})
		} else {
			debtors = append(debtors, entry{id, amount.Neg()})
		}
	}

	byAmount := func(list []entry) {
		sort.Slice(list, func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return list[i].id < list[j].id
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if !IsNegligible(amount) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if IsNegligible(debtors[i].amount) {
			i++
		}
		if IsNegligible(creditors[j].amount) {
			j++
		}
	}

	return transfers
}
