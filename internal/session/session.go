// Package session provides server-side session state for the Meridian
// back-office: opaque session tokens, the per-session CSRF token, and
// pluggable storage backends.
package session

import (
	"context"
	"errors"
	"time"
)

// Session errors
var (
	// ErrNotFound indicates the session token is unknown or expired.
	ErrNotFound = errors.New("session not found")
)

// Session holds the authenticated state for one browser. The zero-value
// CSRFToken means no token has been issued yet; it is minted lazily on
// first use and kept for the life of the session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Account   string    `json:"account"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CSRFToken string    `json:"csrf_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its deadline.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store persists sessions. Implementations must treat expired sessions
// as absent.
type Store interface {
	// Create stores a new session under its token.
	Create(ctx context.Context, sess *Session) error

	// Get retrieves a live session by token. Returns ErrNotFound for
	// unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)

	// Update overwrites an existing session. Returns ErrNotFound if the
	// session no longer exists.
	Update(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error

	// Close releases store resources.
	Close() error
}
