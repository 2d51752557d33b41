package domain

import (
	"context"
	"time"
)

// UserStatus defines the possible statuses of a user account.
type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	UserStatusLocked UserStatus = "LOCKED"
)

// NoExternalAccount marks a user with no linked external identity.
const NoExternalAccount int64 = -1

// User represents a registered end user. The same value serves as the
// authentication principal and as the persisted registry record.
//
// PasswordHash holds the one-way digest of the password; the raw password
// never reaches a repository.
type User struct {
	ID           string     `bson:"_id,omitempty"   json:"id"`
	Username     string     `bson:"username"        json:"username"`
	PasswordHash string     `bson:"password_hash"   json:"-"`
	Authorities  []string   `bson:"authorities,omitempty" json:"authorities,omitempty"`
	Status       UserStatus `bson:"status"          json:"status"`

	// Linked external identity provider account, if any.
	// ExternalAccountID is NoExternalAccount when the user registered locally.
	ExternalAccountID int64  `bson:"external_account_id" json:"external_account_id"`
	Email             string `bson:"email,omitempty"     json:"email,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserRepository defines the storage contract for user accounts.
// Usernames are unique; writes are atomic with respect to concurrent reads.
type UserRepository interface {
	// CreateUser stores a new user. Returns errors.ErrUserAlreadyExists if
	// the username is taken.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByUsername retrieves a user by username. Returns
	// errors.ErrUserNotFound if no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpdateUser replaces an existing user record. Returns
	// errors.ErrUserNotFound if the user does not exist.
	UpdateUser(ctx context.Context, user *User) error

	// DeleteUser removes a user. Deleting an absent user is a no-op.
	DeleteUser(ctx context.Context, username string) error

	// UserExists reports whether a username is registered.
	UserExists(ctx context.Context, username string) (bool, error)

	// FindByExternalAccount retrieves the user linked to the given external
	// identity. Returns errors.ErrUserNotFound if no user matches.
	FindByExternalAccount(ctx context.Context, email string, externalAccountID int64) (*User, error)
}
