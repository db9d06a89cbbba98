package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	store := NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })
	return NewManager(store, time.Hour, zerolog.Nop())
}

var testUser = &domain.User{ID: 7, Account: "alice", Name: "Alice", IsAdmin: true}

func TestManager_IssueResolveDestroy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	sess, err := m.Issue(ctx, testUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(sess.Token))
	}
	if sess.UserID != 7 || sess.Account != "alice" || !sess.IsAdmin {
		t.Errorf("user fields not copied: %+v", sess)
	}
	if sess.CSRFToken != "" {
		t.Error("a fresh session must not carry a csrf token")
	}

	resolved, err := m.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.UserID != sess.UserID {
		t.Errorf("resolved wrong session: %+v", resolved)
	}

	if err := m.Destroy(ctx, sess.Token); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	if _, err := m.Resolve(ctx, sess.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after destroy, got %v", err)
	}
}

func TestManager_ResolveEmptyToken(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Resolve(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty token, got %v", err)
	}
}

func TestManager_DestroyUnknownToken(t *testing.T) {
	m := newTestManager(t)

	if err := m.Destroy(context.Background(), ""); err != nil {
		t.Errorf("destroying an empty token must be a no-op, got %v", err)
	}
}

func TestManager_CSRFToken(t *testing.T) {
	ctx := context.Background()

	t.Run("minted lazily and stable", func(t *testing.T) {
		m := newTestManager(t)
		sess, err := m.Issue(ctx, testUser)
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		first, err := m.CSRFToken(ctx, sess)
		if err != nil {
			t.Fatalf("csrf mint failed: %v", err)
		}
		if len(first) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(first))
		}

		second, err := m.CSRFToken(ctx, sess)
		if err != nil {
			t.Fatalf("second csrf call failed: %v", err)
		}
		if second != first {
			t.Error("csrf token must never rotate within a session")
		}
	})

	t.Run("persisted to the store", func(t *testing.T) {
		m := newTestManager(t)
		sess, err := m.Issue(ctx, testUser)
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		token, err := m.CSRFToken(ctx, sess)
		if err != nil {
			t.Fatalf("csrf mint failed: %v", err)
		}

		reloaded, err := m.Resolve(ctx, sess.Token)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if reloaded.CSRFToken != token {
			t.Error("csrf token must survive a session reload")
		}
	})
}

func TestManager_VerifyCSRF(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	sess, err := m.Issue(ctx, testUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	token, err := m.CSRFToken(ctx, sess)
	if err != nil {
		t.Fatalf("csrf mint failed: %v", err)
	}

	tests := []struct {
		name      string
		sess      *Session
		presented string
		want      bool
	}{
		{"matching token", sess, token, true},
		{"mismatched token", sess, "deadbeef", false},
		{"empty presented token", sess, "", false},
		{"nil session", nil, token, false},
		{"session without stored token", &Session{Token: "x"}, token, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.VerifyCSRF(tt.sess, tt.presented); got != tt.want {
				t.Errorf("VerifyCSRF() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("verification never mints", func(t *testing.T) {
		fresh, err := m.Issue(ctx, testUser)
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if m.VerifyCSRF(fresh, token) {
			t.Error("fresh session must reject every token")
		}
		if fresh.CSRFToken != "" {
			t.Error("verification minted a token as a side effect")
		}
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	sess := &Session{
		Token:     "expired-token",
		UserID:    1,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := store.Get(ctx, "expired-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session must not resolve, got %v", err)
	}
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	err := store.Update(context.Background(), &Session{
		Token:     "missing",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CopySemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	sess := &Session{
		Token:     "tok",
		Account:   "alice",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	sess.Account = "mallory"

	got, err := store.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Account != "alice" {
		t.Errorf("store leaked caller mutation: %q", got.Account)
	}
}

func TestMemoryStore_CloseIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}
