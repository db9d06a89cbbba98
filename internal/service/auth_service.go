package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/metrics"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
	"github.com/prn-tf/meridian-backoffice/internal/session"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// accountPattern restricts login handles to letters, digits and underscore.
var accountPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AuthService handles authentication, registration and account settings.
type AuthService struct {
	userRepo    repository.UserRepository
	authLogRepo repository.AuthLogRepository
	sessions    *session.Manager
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	authLogRepo repository.AuthLogRepository,
	sessions *session.Manager,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		authLogRepo: authLogRepo,
		sessions:    sessions,
		metrics:     m,
		logger:      logger.With().Str("service", "auth").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// LoginInput contains the data needed to log in.
type LoginInput struct {
	Account   string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	User    *domain.User
	Session *session.Session
}

// RegisterInput contains the data needed to register a new account.
type RegisterInput struct {
	Account         string
	Username        string
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// UpdateProfileInput contains the data needed to update a profile.
type UpdateProfileInput struct {
	UserID   int64
	Username string
	Name     string
	Email    string
}

// ChangePasswordInput contains the data needed to change a password.
type ChangePasswordInput struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// =============================================================================
// Operations
// =============================================================================

// Login verifies credentials and begins a session. Exactly one audit
// row is written per attempt: action "login" with the outcome, or
// "login_attempt" when field validation failed before authentication.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	account := strings.TrimSpace(input.Account)

	var messages []string
	if account == "" {
		messages = append(messages, "account is required")
	}
	if input.Password == "" {
		messages = append(messages, "password is required")
	}
	if len(messages) > 0 {
		s.logAuth(ctx, account, domain.AuthActionLoginAttempt, input.IPAddress, input.UserAgent, false)
		return nil, domain.NewValidationError(messages)
	}

	user, err := s.userRepo.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logAuth(ctx, account, domain.AuthActionLogin, input.IPAddress, input.UserAgent, false)
			s.metrics.RecordAuthEvent("login", false)
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("account", account).Msg("failed to load user for login")
		return nil, ErrStoreFailure
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logAuth(ctx, account, domain.AuthActionLogin, input.IPAddress, input.UserAgent, false)
		s.metrics.RecordAuthEvent("login", false)
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := s.sessions.Issue(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Str("account", account).Msg("failed to issue session")
		return nil, ErrStoreFailure
	}

	s.logAuth(ctx, account, domain.AuthActionLogin, input.IPAddress, input.UserAgent, true)
	s.metrics.RecordAuthEvent("login", true)
	s.metrics.SessionsActive.Inc()

	s.logger.Info().Str("account", account).Msg("user logged in")
	return &LoginOutput{User: user, Session: sess}, nil
}

// Register creates a new account. All field rules are evaluated
// independently and every violation is reported; duplicate checks run
// only when the fields themselves are clean, matching the two-phase
// behavior of the original forms.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	account := strings.TrimSpace(input.Account)
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	var messages []string

	switch {
	case account == "":
		messages = append(messages, "account is required")
	case len(account) < 3 || len(account) > 20:
		messages = append(messages, "account must be between 3 and 20 characters")
	case !accountPattern.MatchString(account):
		messages = append(messages, "account may only contain letters, digits and underscore")
	}

	switch {
	case username == "":
		messages = append(messages, "username is required")
	case len(username) > 100:
		messages = append(messages, "username must be 100 characters or less")
	}

	switch {
	case input.Password == "":
		messages = append(messages, "password is required")
	case len(input.Password) < MinPasswordLength:
		messages = append(messages, "password must be at least 6 characters")
	}

	switch {
	case input.ConfirmPassword == "":
		messages = append(messages, "password confirmation is required")
	case input.Password != input.ConfirmPassword:
		messages = append(messages, "passwords do not match")
	}

	switch {
	case name == "":
		messages = append(messages, "name is required")
	case len(name) > 100:
		messages = append(messages, "name must be 100 characters or less")
	}

	switch {
	case email == "":
		messages = append(messages, "email is required")
	case !validEmail(email):
		messages = append(messages, "email must be a valid email address")
	}

	if len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	// Duplicate checks run as a second phase on clean input.
	if exists, err := s.userRepo.ExistsByAccount(ctx, account); err != nil {
		s.logger.Error().Err(err).Msg("failed to check account existence")
		return nil, ErrStoreFailure
	} else if exists {
		messages = append(messages, "this account is already taken")
	}

	if exists, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
		s.logger.Error().Err(err).Msg("failed to check email existence")
		return nil, ErrStoreFailure
	} else if exists {
		messages = append(messages, "this email address is already in use")
	}

	if len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, ErrStoreFailure
	}

	user := domain.NewUser(account, username, name, email, string(hash))
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logAuth(ctx, account, domain.AuthActionRegister, "", "", false)
		s.metrics.RecordAuthEvent("register", false)
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.NewValidationError([]string{"this account is already taken"})
		}
		s.logger.Error().Err(err).Str("account", account).Msg("failed to create user")
		return nil, ErrStoreFailure
	}

	s.logAuth(ctx, account, domain.AuthActionRegister, "", "", true)
	s.metrics.RecordAuthEvent("register", true)

	s.logger.Info().Str("account", account).Msg("user registered")
	return user, nil
}

// Logout destroys the session and writes a logout audit row.
func (s *AuthService) Logout(ctx context.Context, token, account, ip, userAgent string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to destroy session")
		return ErrStoreFailure
	}

	s.logAuth(ctx, account, domain.AuthActionLogout, ip, userAgent, true)
	s.metrics.RecordAuthEvent("logout", true)
	s.metrics.SessionsActive.Dec()
	return nil
}

// UpdateProfile updates username, name and email for a user.
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	var messages []string

	switch {
	case username == "":
		messages = append(messages, "username is required")
	case len(username) < 3:
		messages = append(messages, "username must be at least 3 characters")
	}

	if name == "" {
		messages = append(messages, "name is required")
	}

	switch {
	case email == "":
		messages = append(messages, "email is required")
	case !validEmail(email):
		messages = append(messages, "email must be a valid email address")
	}

	if len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	taken, err := s.userRepo.TakenByOther(ctx, username, email, input.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check username/email availability")
		return nil, ErrStoreFailure
	}
	if taken {
		return nil, domain.NewValidationError([]string{"that username or email address is already in use"})
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to load user")
		return nil, ErrStoreFailure
	}

	user.Username = username
	user.Name = name
	user.Email = email

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update profile")
		return nil, ErrStoreFailure
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("profile updated")
	return user, nil
}

// ChangePassword verifies the current password and sets a new one.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to load user")
		return ErrStoreFailure
	}

	var messages []string

	switch {
	case input.CurrentPassword == "":
		messages = append(messages, "current password is required")
	case bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)) != nil:
		messages = append(messages, "current password is incorrect")
	}

	switch {
	case input.NewPassword == "":
		messages = append(messages, "new password is required")
	case len(input.NewPassword) < MinPasswordLength:
		messages = append(messages, "password must be at least 6 characters")
	}

	if input.NewPassword != input.ConfirmPassword {
		messages = append(messages, "password confirmation does not match")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return ErrStoreFailure
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to change password")
		return ErrStoreFailure
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password changed")
	return nil
}

// logAuth appends an audit row. Audit failures are logged and swallowed;
// they never fail the operation they accompany.
func (s *AuthService) logAuth(ctx context.Context, account string, action domain.AuthAction, ip, userAgent string, success bool) {
	entry := domain.NewAuthLogEntry(account, action, ip, userAgent, success)
	if err := s.authLogRepo.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("account", account).Str("action", string(action)).Msg("failed to append auth log")
	}
}

// validEmail reports whether the address parses as a bare RFC 5322
// address.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
