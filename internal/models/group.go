package models

// Role is a member's role inside a group.
type Role string

const (
	// RoleAdmin can add and remove members, update and delete the group.
	RoleAdmin Role = "admin"
	// RoleMember can add expenses and settlements.
	RoleMember Role = "member"
)

// Group represents a set of people who share expenses
// (e.g., "Badminton Squad", "Flat Expenses").
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// Description is optional free text.
	Description string

	// Category is the group type: trip, home, couple, sports, party, other.
	Category string

	// CreatedBy is the user ID of the creator, who is made admin on creation.
	CreatedBy string

	// Active is false once the group has been deleted.
	Active bool

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// Membership connects a user to a group.
// There is exactly one membership per (group, user); leaving a group clears
// Active instead of removing the row.
type Membership struct {
	GroupID  string
	UserID   string
	Role     Role
	Active   bool
	JoinedAt int64
}

// IsAdmin reports whether m is an active admin membership.
func (m *Membership) IsAdmin() bool {
	return m != nil && m.Active && m.Role == RoleAdmin
}
