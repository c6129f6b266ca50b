package models

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	NotificationExpenseAdded   NotificationType = "expense_added"
	NotificationExpenseUpdated NotificationType = "expense_updated"
	NotificationSettlement     NotificationType = "settlement"
	NotificationGroupInvite    NotificationType = "group_invite"
)

// Notification is a message for one user about an expense, settlement or group event.
// It is write-once apart from Read.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	ExpenseID string
	GroupID   string
	ActorID   string
	Read      bool
	CreatedAt int64
}
