package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// --- Mock implementations ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) UserExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindByExternalAccount(ctx context.Context, email string, externalAccountID int64) (*domain.User, error) {
	args := m.Called(ctx, email, externalAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// bcryptHasher is the real digest function; password round-trip tests verify
// digests rather than raw equality.
type bcryptHasher struct{}

func (bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(b), err
}

func (bcryptHasher) Verify(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcryptHasher{}.Hash(password)
	require.NoError(t, err)
	return h
}

// --- Tests ---

func TestRegisterUser_HashesPasswordOnce(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, bcryptHasher{})

	var stored *domain.User
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
		Return(nil)

	user, err := svc.RegisterUser(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.Equal(t, domain.NoExternalAccount, user.ExternalAccountID)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcryptHasher{}.Verify(stored.PasswordHash, "s3cret"))
	repo.AssertExpectations(t)
}

func TestAuthenticate(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, bcryptHasher{})

	alice := &domain.User{
		Username:     "alice",
		PasswordHash: hashOf(t, "s3cret"),
		Status:       domain.UserStatusActive,
	}
	repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)
	repo.On("GetUserByUsername", mock.Anything, "nobody").Return(nil, errors.ErrUserNotFound)

	user, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, errors.ErrAuthenticationFailed)

	_, err = svc.Authenticate(context.Background(), "nobody", "s3cret")
	assert.ErrorIs(t, err, errors.ErrAuthenticationFailed)
}

func TestAuthenticate_LockedAccount(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, bcryptHasher{})

	locked := &domain.User{
		Username:     "bob",
		PasswordHash: hashOf(t, "s3cret"),
		Status:       domain.UserStatusLocked,
	}
	repo.On("GetUserByUsername", mock.Anything, "bob").Return(locked, nil)

	_, err := svc.Authenticate(context.Background(), "bob", "s3cret")
	assert.ErrorIs(t, err, errors.ErrAuthenticationFailed)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, bcryptHasher{})

	alice := &domain.User{
		Username:     "alice",
		PasswordHash: hashOf(t, "old-pass"),
		Status:       domain.UserStatusActive,
	}
	repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)

	err := svc.ChangePassword(context.Background(), "alice", "not-old-pass", "new-pass")
	assert.ErrorIs(t, err, errors.ErrAuthenticationFailed)
	repo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestChangePassword_PersistsNewDigest(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, bcryptHasher{})

	alice := &domain.User{
		Username:     "alice",
		PasswordHash: hashOf(t, "old-pass"),
		Status:       domain.UserStatusActive,
	}
	repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)

	var stored *domain.User
	repo.On("UpdateUser", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
		Return(nil)

	err := svc.ChangePassword(context.Background(), "alice", "old-pass", "new-pass")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.NoError(t, bcryptHasher{}.Verify(stored.PasswordHash, "new-pass"))
	assert.Error(t, bcryptHasher{}.Verify(stored.PasswordHash, "old-pass"))
}

func TestUpdatePassword_ReturnsCopyWithNewDigest(t *testing.T) {
	svc := NewUserService(new(MockUserRepository), bcryptHasher{})

	oldHash := hashOf(t, "old-pass")
	alice := &domain.User{Username: "alice", PasswordHash: oldHash}

	updated, err := svc.UpdatePassword(alice, "new-pass")
	require.NoError(t, err)

	// Input record untouched, returned record verifies only the new password.
	assert.Equal(t, oldHash, alice.PasswordHash)
	assert.NoError(t, bcryptHasher{}.Verify(updated.PasswordHash, "new-pass"))
	assert.Error(t, bcryptHasher{}.Verify(updated.PasswordHash, "old-pass"))
}

func TestFindByExternalAccount(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, bcryptHasher{})

	linked := &domain.User{Username: "carol", ExternalAccountID: 42, Email: "carol@example.com"}
	repo.On("FindByExternalAccount", mock.Anything, "carol@example.com", int64(42)).Return(linked, nil)
	repo.On("FindByExternalAccount", mock.Anything, "nobody@example.com", int64(7)).Return(nil, errors.ErrUserNotFound)

	user, err := svc.FindByExternalAccount(context.Background(), "carol@example.com", 42)
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)

	_, err = svc.FindByExternalAccount(context.Background(), "nobody@example.com", 7)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}
