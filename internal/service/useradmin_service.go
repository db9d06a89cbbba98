package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// UserAdminService handles account management by administrators. Every
// operation takes the acting user and refuses non-admins.
type UserAdminService struct {
	userRepo    repository.UserRepository
	authLogRepo repository.AuthLogRepository
	logger      zerolog.Logger
}

// NewUserAdminService creates a new UserAdminService.
func NewUserAdminService(userRepo repository.UserRepository, authLogRepo repository.AuthLogRepository, logger zerolog.Logger) *UserAdminService {
	return &UserAdminService{
		userRepo:    userRepo,
		authLogRepo: authLogRepo,
		logger:      logger.With().Str("service", "useradmin").Logger(),
	}
}

// CreateUserInput contains the data needed to create a user as admin.
type CreateUserInput struct {
	Account  string
	Username string
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// ListUsers returns all users with pagination.
func (s *UserAdminService) ListUsers(ctx context.Context, actor *domain.User, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	if !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}

	result, err := s.userRepo.List(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, ErrStoreFailure
	}
	return result, nil
}

// CreateUser creates an account on behalf of an administrator. The
// handle, username and email must all be unused.
func (s *UserAdminService) CreateUser(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}

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

	if username == "" {
		messages = append(messages, "username is required")
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

	switch {
	case input.Password == "":
		messages = append(messages, "password is required")
	case len(input.Password) < MinPasswordLength:
		messages = append(messages, "password must be at least 6 characters")
	}

	if len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	exists, err := s.userRepo.ExistsByAny(ctx, account, username, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check user existence")
		return nil, ErrStoreFailure
	}
	if exists {
		return nil, domain.NewValidationError([]string{"that account, username or email address is already in use"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, ErrStoreFailure
	}

	user := domain.NewUser(account, username, name, email, string(hash))
	user.IsAdmin = input.IsAdmin

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.NewValidationError([]string{"that account, username or email address is already in use"})
		}
		s.logger.Error().Err(err).Str("account", account).Msg("failed to create user")
		return nil, ErrStoreFailure
	}

	s.logger.Info().Str("account", account).Str("by", actor.Account).Msg("user created by admin")
	return user, nil
}

// DeleteUser hard-deletes an account. Admins cannot delete themselves.
func (s *UserAdminService) DeleteUser(ctx context.Context, actor *domain.User, userID int64) error {
	if !actor.IsAdmin {
		return domain.ErrForbidden
	}
	if actor.ID == userID {
		return domain.ErrSelfDeletion
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to delete user")
		return ErrStoreFailure
	}

	s.logger.Info().Int64("user_id", userID).Str("by", actor.Account).Msg("user deleted by admin")
	return nil
}

// RecentAuthLogs returns the newest authentication audit entries.
func (s *UserAdminService) RecentAuthLogs(ctx context.Context, actor *domain.User, limit int) ([]*domain.AuthLogEntry, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = 50
	}

	entries, err := s.authLogRepo.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list auth logs")
		return nil, ErrStoreFailure
	}
	return entries, nil
}
