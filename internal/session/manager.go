package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/pkg/crypto"
)

// Manager issues, resolves and destroys sessions, and owns the CSRF
// token lifecycle within them.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("service", "session").Logger(),
	}
}

// Issue creates a fresh session for an authenticated user and returns
// it. The token is 64 hex characters of cryptographic randomness.
func (m *Manager) Issue(ctx context.Context, user *domain.User) (*Session, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now().UTC()
	sess := &Session{
		Token:     token,
		UserID:    user.ID,
		Account:   user.Account,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Debug().Str("account", user.Account).Msg("session issued")
	return sess, nil
}

// Resolve returns the live session for a token, or ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return m.store.Get(ctx, token)
}

// Destroy removes a session. Destroying an unknown token is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// CSRFToken returns the session's CSRF token, minting and persisting
// one on first use. The token is never rotated for the life of the
// session, so forms rendered before an unrelated request remain valid.
func (m *Manager) CSRFToken(ctx context.Context, sess *Session) (string, error) {
	if sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}

	sess.CSRFToken = token
	if err := m.store.Update(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to persist csrf token: %w", err)
	}

	return token, nil
}

// VerifyCSRF checks a presented token against the session's stored one
// in constant time. A session with no stored token rejects everything;
// verification never mints a token as a side effect.
func (m *Manager) VerifyCSRF(sess *Session, presented string) bool {
	if sess == nil || sess.CSRFToken == "" || presented == "" {
		return false
	}
	return crypto.ConstantTimeEquals(sess.CSRFToken, presented)
}
