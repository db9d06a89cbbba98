// Package domain contains the core business entities for the Meridian back-office.
package domain

import (
	"time"
)

// AuthAction identifies the kind of authentication event being recorded.
type AuthAction string

const (
	// AuthActionLogin records a credential verification attempt.
	AuthActionLogin AuthAction = "login"

	// AuthActionLoginAttempt records a login form submission that failed
	// validation before credentials were checked.
	AuthActionLoginAttempt AuthAction = "login_attempt"

	// AuthActionLogout records an explicit session termination.
	AuthActionLogout AuthAction = "logout"

	// AuthActionRegister records a self-service registration.
	AuthActionRegister AuthAction = "register"
)

// AuthLogEntry is an immutable record of an authentication event.
// Entries are append-only; the core never updates or deletes them.
type AuthLogEntry struct {
	// ID is the unique identifier for the entry (auto-generated).
	ID int64 `json:"id"`

	// Account is the login handle the event concerned. It is recorded
	// verbatim even when no matching user exists.
	Account string `json:"account"`

	// Action is the kind of event.
	Action AuthAction `json:"action"`

	// IPAddress is the origin address of the request.
	IPAddress string `json:"ip_address"`

	// UserAgent is the client string of the request.
	UserAgent string `json:"user_agent"`

	// Success indicates whether the action succeeded.
	Success bool `json:"success"`

	// CreatedAt is the timestamp of the event.
	CreatedAt time.Time `json:"created_at"`
}

// NewAuthLogEntry creates an entry stamped with the current time.
func NewAuthLogEntry(account string, action AuthAction, ip, userAgent string, success bool) *AuthLogEntry {
	return &AuthLogEntry{
		Account:   account,
		Action:    action,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}
}
