package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// UserService handles user account operations on top of a UserRepository.
// Like ClientService it is the single digesting boundary: raw passwords are
// hashed here, exactly once, before a record reaches the repository.
type UserService struct {
	repo   domain.UserRepository
	hasher PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(repo domain.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
	}
}

// RegisterUser creates a user account from a username and raw password.
func (s *UserService) RegisterUser(ctx context.Context, username, password string) (*domain.User, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                uuid.NewString(),
		Username:          username,
		PasswordHash:      passwordHash,
		Status:            domain.UserStatusActive,
		ExternalAccountID: domain.NoExternalAccount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("username", username).Msg("Registered new user")

	return user, nil
}

// LoadUserByUsername retrieves a user record by username.
func (s *UserService) LoadUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// Authenticate verifies a username/password pair and returns the matching
// user. Locked accounts and credential mismatches both surface as
// errors.ErrAuthenticationFailed so callers leak nothing about which check
// failed.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, errors.ErrAuthenticationFailed
	}

	if user.Status == domain.UserStatusLocked {
		log.Warn().Str("username", username).Msg("Login attempt against locked account")
		return nil, errors.ErrAuthenticationFailed
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, errors.ErrAuthenticationFailed
	}

	return user, nil
}

// ChangePassword verifies the old password and persists a new digest.
// Returns errors.ErrAuthenticationFailed if the old password does not match
// the stored digest.
func (s *UserService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.hasher.Verify(user.PasswordHash, oldPassword); err != nil {
		return errors.ErrAuthenticationFailed
	}

	updated, err := s.UpdatePassword(user, newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdateUser(ctx, updated)
}

// UpdatePassword returns a copy of the user carrying the digest of the new
// password. It does not mutate the input and does not persist anything; the
// caller decides when the new record is stored.
func (s *UserService) UpdatePassword(user *domain.User, newPassword string) (*domain.User, error) {
	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	updated := *user
	updated.PasswordHash = passwordHash
	updated.UpdatedAt = time.Now().UTC()

	return &updated, nil
}

// UserExists reports whether a username is registered.
func (s *UserService) UserExists(ctx context.Context, username string) (bool, error) {
	return s.repo.UserExists(ctx, username)
}

// DeleteUser removes a user account. Absent users are a no-op.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	return s.repo.DeleteUser(ctx, username)
}

// UpdateUser replaces an existing user record.
func (s *UserService) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateUser(ctx, user)
}

// FindByExternalAccount reconciles a user who registered through an external
// identity provider.
func (s *UserService) FindByExternalAccount(ctx context.Context, email string, externalAccountID int64) (*domain.User, error) {
	return s.repo.FindByExternalAccount(ctx, email, externalAccountID)
}
