package notify

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
)

func actorName(actor *models.User) string {
	if actor == nil || actor.DisplayName == "" {
		return "Someone"
	}
	return actor.DisplayName
}

func actorID(actor *models.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}

// FormatAmount renders amount for a message: "₹1200.00" for INR, "USD 12.50" otherwise.
func FormatAmount(currency string, amount decimal.Decimal) string {
	if currency == "" || currency == "INR" {
		return "₹" + amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

// ExpenseAdded tells a participant about a new expense and their share of it.
func ExpenseAdded(to string, actor *models.User, e *models.Expense, share decimal.Decimal) *models.Notification {
	return &models.Notification{
		UserID: to,
		Type:   models.NotificationExpenseAdded,
		Title:  "New expense: " + e.Description,
		Message: fmt.Sprintf("%s added an expense of %s. Your share is %s",
			actorName(actor), FormatAmount(e.Currency, e.Amount), FormatAmount(e.Currency, share)),
		ExpenseID: e.ID,
		GroupID:   e.GroupID,
		ActorID:   actorID(actor),
	}
}

// ExpenseUpdated tells a participant that an expense's amount or split changed.
func ExpenseUpdated(to string, actor *models.User, e *models.Expense, share decimal.Decimal) *models.Notification {
	return &models.Notification{
		UserID: to,
		Type:   models.NotificationExpenseUpdated,
		Title:  "Expense updated: " + e.Description,
		Message: fmt.Sprintf("%s updated an expense to %s. Your share is %s",
			actorName(actor), FormatAmount(e.Currency, e.Amount), FormatAmount(e.Currency, share)),
		ExpenseID: e.ID,
		GroupID:   e.GroupID,
		ActorID:   actorID(actor),
	}
}

// SettlementRecorded tells the counterparty about a recorded payment.
// When the payer records it the receiver is told they were paid; when the
// receiver records it the payer is told their payment was acknowledged.
func SettlementRecorded(to string, actor *models.User, st *models.Settlement) *models.Notification {
	n := &models.Notification{
		UserID:  to,
		Type:    models.NotificationSettlement,
		GroupID: st.GroupID,
		ActorID: actorID(actor),
	}
	amount := FormatAmount("", st.Amount)
	if to == st.ToUserID {
		n.Title = "Payment received"
		n.Message = fmt.Sprintf("%s paid you %s", actorName(actor), amount)
	} else {
		n.Title = "Payment recorded"
		n.Message = fmt.Sprintf("%s recorded your payment of %s", actorName(actor), amount)
	}
	return n
}

// GroupInvite tells a user they were added to a group.
func GroupInvite(to string, actor *models.User, g *models.Group) *models.Notification {
	return &models.Notification{
		UserID:  to,
		Type:    models.NotificationGroupInvite,
		Title:   "Added to group: " + g.Name,
		Message: fmt.Sprintf("%s added you to the group '%s'", actorName(actor), g.Name),
		GroupID: g.ID,
		ActorID: actorID(actor),
	}
}
