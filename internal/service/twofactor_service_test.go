package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
)

func newTwoFactorFixture(t *testing.T) (*TwoFactorService, *MockUserRepository, *domain.User) {
	t.Helper()

	users := NewMockUserRepository()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := domain.NewUser("alice", "alice", "Alice", "alice@example.com", string(hash))
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return NewTwoFactorService(users, "Meridian", zerolog.Nop()), users, user
}

func TestTwoFactorService_Setup(t *testing.T) {
	ctx := context.Background()
	svc, _, user := newTwoFactorFixture(t)

	out, err := svc.Setup(ctx, user.ID)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if len(out.Secret) != 16 {
		t.Errorf("expected 16-char secret, got %q", out.Secret)
	}
	if out.State != domain.TwoFactorPending {
		t.Errorf("expected pending state, got %q", out.State)
	}
	if !strings.HasPrefix(out.EnrollmentURI, "otpauth://totp/Meridian:alice?") {
		t.Errorf("unexpected enrollment uri: %q", out.EnrollmentURI)
	}
	if !strings.Contains(out.EnrollmentURI, "secret="+out.Secret) {
		t.Errorf("uri missing secret: %q", out.EnrollmentURI)
	}

	// Repeated setup returns the same secret so the QR code stays stable.
	again, err := svc.Setup(ctx, user.ID)
	if err != nil {
		t.Fatalf("second setup failed: %v", err)
	}
	if again.Secret != out.Secret {
		t.Error("setup must be idempotent while enrollment is pending")
	}
}

func TestTwoFactorService_Enable(t *testing.T) {
	ctx := context.Background()

	t.Run("any six digits confirm enrollment", func(t *testing.T) {
		svc, users, user := newTwoFactorFixture(t)
		if _, err := svc.Setup(ctx, user.ID); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := svc.Enable(ctx, user.ID, "000000"); err != nil {
			t.Fatalf("enable failed: %v", err)
		}
		if !users.users[user.ID].TwoFactorEnabled {
			t.Error("expected factor enabled")
		}
		if users.users[user.ID].TwoFactorStatus() != domain.TwoFactorConfirmed {
			t.Error("expected confirmed state")
		}
	})

	t.Run("malformed codes rejected", func(t *testing.T) {
		for _, code := range []string{"", "12345", "1234567", "12a456", "12 456"} {
			svc, _, user := newTwoFactorFixture(t)
			if _, err := svc.Setup(ctx, user.ID); err != nil {
				t.Fatalf("setup failed: %v", err)
			}

			err := svc.Enable(ctx, user.ID, code)
			if _, ok := domain.AsValidationError(err); !ok {
				t.Errorf("code %q: expected ValidationError, got %v", code, err)
			}
		}
	})

	t.Run("enable without setup rejected", func(t *testing.T) {
		svc, _, user := newTwoFactorFixture(t)

		err := svc.Enable(ctx, user.ID, "123456")
		ve, ok := domain.AsValidationError(err)
		if !ok || ve.Messages[0] != "second factor has not been set up" {
			t.Errorf("expected setup-missing violation, got %v", err)
		}
	})
}

func TestTwoFactorService_Disable(t *testing.T) {
	ctx := context.Background()

	t.Run("password re-verified and secret kept", func(t *testing.T) {
		svc, users, user := newTwoFactorFixture(t)
		if _, err := svc.Setup(ctx, user.ID); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := svc.Enable(ctx, user.ID, "123456"); err != nil {
			t.Fatalf("enable failed: %v", err)
		}

		if err := svc.Disable(ctx, user.ID, "secret1"); err != nil {
			t.Fatalf("disable failed: %v", err)
		}

		stored := users.users[user.ID]
		if stored.TwoFactorEnabled {
			t.Error("expected factor disabled")
		}
		if stored.TwoFactorSecret == "" {
			t.Error("secret must survive a disable so the user can re-enable")
		}
		if stored.TwoFactorStatus() != domain.TwoFactorPending {
			t.Errorf("expected pending state, got %q", stored.TwoFactorStatus())
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		svc, users, user := newTwoFactorFixture(t)
		if _, err := svc.Setup(ctx, user.ID); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := svc.Enable(ctx, user.ID, "123456"); err != nil {
			t.Fatalf("enable failed: %v", err)
		}

		err := svc.Disable(ctx, user.ID, "wrong")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if !users.users[user.ID].TwoFactorEnabled {
			t.Error("factor must stay enabled on rejection")
		}
	})
}

func TestTwoFactorService_Regenerate(t *testing.T) {
	ctx := context.Background()
	svc, users, user := newTwoFactorFixture(t)

	first, err := svc.Setup(ctx, user.ID)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := svc.Enable(ctx, user.ID, "123456"); err != nil {
		t.Fatalf("enable failed: %v", err)
	}

	out, err := svc.Regenerate(ctx, user.ID)
	if err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if out.Secret == first.Secret {
		t.Error("expected a fresh secret")
	}
	if out.State != domain.TwoFactorPending {
		t.Errorf("regeneration must force re-confirmation, got %q", out.State)
	}
	if users.users[user.ID].TwoFactorEnabled {
		t.Error("factor must be off until the new secret is confirmed")
	}
}

func TestTwoFactorService_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := NewTwoFactorService(NewMockUserRepository(), "Meridian", zerolog.Nop())

	if _, err := svc.Setup(ctx, 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("setup: expected ErrUserNotFound, got %v", err)
	}
	if err := svc.Enable(ctx, 42, "123456"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("enable: expected ErrUserNotFound, got %v", err)
	}
	if err := svc.Disable(ctx, 42, "secret1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("disable: expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Regenerate(ctx, 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("regenerate: expected ErrUserNotFound, got %v", err)
	}
}
