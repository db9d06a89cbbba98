// Package domain contains the core business entities for the Meridian
// back-office. These are pure Go structs with no external dependencies,
// representing the fundamental concepts of the inventory system.
package domain

import (
	"time"
)

// User represents a staff account in the system.
// Users authenticate with their account handle and manage the catalog.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Account is the externally chosen login handle.
	// Constraints: 3-20 characters, letters, digits and underscore only.
	Account string `json:"account"`

	// Username is the unique display name shown throughout the UI.
	// Constraints: 3-100 characters.
	Username string `json:"username"`

	// Name is the user's real name. Constraints: 1-100 characters.
	Name string `json:"name"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// TwoFactorSecret is the shared secret for the second factor.
	// Empty until enrollment has been started.
	TwoFactorSecret string `json:"-"`

	// TwoFactorEnabled indicates whether the second factor is confirmed.
	// A non-empty secret with TwoFactorEnabled false means enrollment
	// is pending.
	TwoFactorEnabled bool `json:"two_factor_enabled"`

	// IsAdmin indicates whether the user may manage other accounts.
	IsAdmin bool `json:"is_admin"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values.
func NewUser(account, username, name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Account:      account,
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TwoFactorState describes where a user is in the second-factor lifecycle.
type TwoFactorState string

const (
	// TwoFactorDisabled means no secret has ever been issued.
	TwoFactorDisabled TwoFactorState = "disabled"

	// TwoFactorPending means a secret exists but has not been confirmed.
	TwoFactorPending TwoFactorState = "pending"

	// TwoFactorConfirmed means enrollment is confirmed and active.
	TwoFactorConfirmed TwoFactorState = "enabled"
)

// TwoFactorStatus returns the user's current enrollment state.
func (u *User) TwoFactorStatus() TwoFactorState {
	switch {
	case u.TwoFactorEnabled:
		return TwoFactorConfirmed
	case u.TwoFactorSecret != "":
		return TwoFactorPending
	default:
		return TwoFactorDisabled
	}
}
