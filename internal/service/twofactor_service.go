package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/pkg/crypto"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// codePattern is the accepted shape of a second-factor code.
var codePattern = regexp.MustCompile(`^\d{6}$`)

// TwoFactorService handles second-factor enrollment for user accounts.
//
// Verification is a format check only: any six-digit code enables the
// factor. Wiring a real TOTP comparison against the stored secret is
// the known follow-up; the enrollment state machine around it is final.
type TwoFactorService struct {
	userRepo repository.UserRepository
	issuer   string
	logger   zerolog.Logger
}

// NewTwoFactorService creates a new TwoFactorService. The issuer names
// this installation inside authenticator apps.
func NewTwoFactorService(userRepo repository.UserRepository, issuer string, logger zerolog.Logger) *TwoFactorService {
	return &TwoFactorService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger.With().Str("service", "twofactor").Logger(),
	}
}

// SetupOutput contains the enrollment material for the user.
type SetupOutput struct {
	Secret        string
	EnrollmentURI string
	State         domain.TwoFactorState
}

// Setup returns the user's enrollment secret, generating one on first
// call. Repeated calls while enrollment is pending return the same
// secret so the QR code stays stable.
func (s *TwoFactorService) Setup(ctx context.Context, userID int64) (*SetupOutput, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.TwoFactorSecret == "" {
		secret, err := crypto.GenerateTwoFactorSecret()
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to generate secret")
			return nil, ErrStoreFailure
		}

		user.TwoFactorSecret = secret
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to store secret")
			return nil, ErrStoreFailure
		}
	}

	return &SetupOutput{
		Secret:        user.TwoFactorSecret,
		EnrollmentURI: crypto.OTPAuthURI(s.issuer, user.Account, user.TwoFactorSecret),
		State:         user.TwoFactorStatus(),
	}, nil
}

// Enable confirms enrollment with a verification code. The code must
// be six digits; a secret must already exist.
func (s *TwoFactorService) Enable(ctx context.Context, userID int64, code string) error {
	if !codePattern.MatchString(code) {
		return domain.NewValidationError([]string{"verification code must be 6 digits"})
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.TwoFactorSecret == "" {
		return domain.NewValidationError([]string{"second factor has not been set up"})
	}

	user.TwoFactorEnabled = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to enable second factor")
		return ErrStoreFailure
	}

	s.logger.Info().Int64("user_id", userID).Msg("second factor enabled")
	return nil
}

// Disable turns the factor off after re-verifying the password. The
// secret is kept so the user can re-enable without re-enrolling.
func (s *TwoFactorService) Disable(ctx context.Context, userID int64, password string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.ErrInvalidCredentials
	}

	user.TwoFactorEnabled = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to disable second factor")
		return ErrStoreFailure
	}

	s.logger.Info().Int64("user_id", userID).Msg("second factor disabled")
	return nil
}

// Regenerate issues a fresh secret and forces the factor off until the
// new secret is confirmed.
func (s *TwoFactorService) Regenerate(ctx context.Context, userID int64) (*SetupOutput, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, err := crypto.GenerateTwoFactorSecret()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate secret")
		return nil, ErrStoreFailure
	}

	user.TwoFactorSecret = secret
	user.TwoFactorEnabled = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to store secret")
		return nil, ErrStoreFailure
	}

	s.logger.Info().Int64("user_id", userID).Msg("second factor secret regenerated")
	return &SetupOutput{
		Secret:        secret,
		EnrollmentURI: crypto.OTPAuthURI(s.issuer, user.Account, secret),
		State:         user.TwoFactorStatus(),
	}, nil
}

func (s *TwoFactorService) loadUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load user")
		return nil, ErrStoreFailure
	}
	return user, nil
}
