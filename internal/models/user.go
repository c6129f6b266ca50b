package models

import "time"

// User represents a person known to the ledger.
//
// Credentials live with the identity provider; the ledger only keeps the
// profile. Users are never hard-deleted because historical expenses,
// splits and settlements keep referencing them.
type User struct {
	// ID is the unique identifier for the user, the subject of the identity token.
	ID string

	// Email is the user's verified email address. Immutable once set.
	Email string

	// Mobile is the user's verified mobile number. Immutable once set.
	Mobile string

	// DisplayName is the name shown to other users.
	DisplayName string

	// PaymentAddress is an optional payment handle (e.g. a UPI id) others can pay into.
	PaymentAddress string

	// Active is false once the account has been deactivated.
	Active bool

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates an active user profile with timestamps set to now.
func NewUser(id, email, mobile, displayName string) *User {
	now := time.Now().Unix()
	return &User{
		ID:          id,
		Email:       email,
		Mobile:      mobile,
		DisplayName: displayName,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Identity returns the identifier the user signed up with.
func (u *User) Identity() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Mobile
}
