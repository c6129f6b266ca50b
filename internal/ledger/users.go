package ledger

import (
	"context"
	"strings"

	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/validate"
)

// ProfileInput registers the local profile of an authenticated identity.
type ProfileInput struct {
	Email          string `json:"email" validate:"required_without=Mobile,omitempty,email,max=255"`
	Mobile         string `json:"mobile" validate:"required_without=Email,omitempty,e164"`
	DisplayName    string `json:"display_name" validate:"notblank,max=100"`
	PaymentAddress string `json:"payment_address" validate:"max=255"`
}

// ProfileChanges updates a profile. Nil fields are left alone.
type ProfileChanges struct {
	DisplayName    *string `json:"display_name" validate:"omitnil,notblank,max=100"`
	PaymentAddress *string `json:"payment_address" validate:"omitnil,max=255"`
}

// RegisterUser creates the profile for userID, the subject of the caller's
// identity token. Email and mobile are fixed from here on.
func (l *Ledger) RegisterUser(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if userID == "" {
		return nil, errs.InvalidInput("user id is required")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	now := l.timestamp()
	u := &models.User{
		ID:             userID,
		Email:          in.Email,
		Mobile:         in.Mobile,
		DisplayName:    in.DisplayName,
		PaymentAddress: strings.TrimSpace(in.PaymentAddress),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a profile. Deactivated profiles are still returned so old
// expenses keep a name to show.
func (l *Ledger) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return l.store.GetUser(ctx, userID)
}

// GetUsers returns the profiles found among ids.
func (l *Ledger) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	return l.store.GetUsersByIDs(ctx, uniqueIDs(ids...))
}

// UpdateProfile changes the caller's display name or payment address.
func (l *Ledger) UpdateProfile(ctx context.Context, callerID string, ch ProfileChanges) (*models.User, error) {
	if err := validate.Struct(ch); err != nil {
		return nil, err
	}
	u, err := l.activeUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if ch.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*ch.DisplayName)
	}
	if ch.PaymentAddress != nil {
		u.PaymentAddress = strings.TrimSpace(*ch.PaymentAddress)
	}
	u.UpdatedAt = l.timestamp()
	if err := l.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeactivateUser soft-deletes the caller's profile. Their expenses, splits and
// settlements stay in place.
func (l *Ledger) DeactivateUser(ctx context.Context, callerID string) error {
	u, err := l.activeUser(ctx, callerID)
	if err != nil {
		return err
	}
	u.Active = false
	u.UpdatedAt = l.timestamp()
	return l.store.UpdateUser(ctx, u)
}
