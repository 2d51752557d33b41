package memory

import (
	"context"
	"sync"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// UserRepository implements domain.UserRepository with a mutex-guarded map
// keyed by username.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
	}
}

// CreateUser implements domain.UserRepository.
func (r *UserRepository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return errors.ErrUserAlreadyExists
	}

	r.users[user.Username] = copyUser(user)

	return nil
}

// GetUserByUsername implements domain.UserRepository.
func (r *UserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, errors.ErrUserNotFound
	}

	return copyUser(user), nil
}

// UpdateUser implements domain.UserRepository.
func (r *UserRepository) UpdateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; !ok {
		return errors.ErrUserNotFound
	}

	r.users[user.Username] = copyUser(user)

	return nil
}

// DeleteUser implements domain.UserRepository. Absent usernames are a no-op.
func (r *UserRepository) DeleteUser(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, username)

	return nil
}

// UserExists implements domain.UserRepository.
func (r *UserRepository) UserExists(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[username]

	return ok, nil
}

// FindByExternalAccount implements domain.UserRepository.
func (r *UserRepository) FindByExternalAccount(_ context.Context, email string, externalAccountID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email && user.ExternalAccountID == externalAccountID {
			return copyUser(user), nil
		}
	}

	return nil, errors.ErrUserNotFound
}

func copyUser(user *domain.User) *domain.User {
	cp := *user
	cp.Authorities = append([]string(nil), user.Authorities...)
	return &cp
}

var _ domain.UserRepository = (*UserRepository)(nil)
