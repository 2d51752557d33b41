package mongodb

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// UserRepository implements domain.UserRepository backed by MongoDB.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a UserRepository and ensures its indexes.
func NewUserRepository(ctx context.Context, db *mongo.Database) (*UserRepository, error) {
	repo := &UserRepository{
		users: db.Collection(UsersCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}, {Key: "external_account_id", Value: 1}},
		},
	}
	if _, err := repo.users.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Failed to create user indexes")
	}

	return repo, nil
}

// CreateUser implements domain.UserRepository.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByUsername implements domain.UserRepository.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// UpdateUser implements domain.UserRepository.
func (r *UserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := r.users.ReplaceOne(ctx, bson.M{"username": user.Username}, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrUserNotFound
	}

	return nil
}

// DeleteUser implements domain.UserRepository. Absent usernames are a no-op.
func (r *UserRepository) DeleteUser(ctx context.Context, username string) error {
	if _, err := r.users.DeleteOne(ctx, bson.M{"username": username}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// UserExists implements domain.UserRepository.
func (r *UserRepository) UserExists(ctx context.Context, username string) (bool, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}

	return count > 0, nil
}

// FindByExternalAccount implements domain.UserRepository.
func (r *UserRepository) FindByExternalAccount(ctx context.Context, email string, externalAccountID int64) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{
		"email":               email,
		"external_account_id": externalAccountID,
	}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by external account: %w", err)
	}

	return &user, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
