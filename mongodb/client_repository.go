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

// ClientRepository implements domain.ClientRepository backed by MongoDB.
// Uniqueness of client IDs is enforced by a unique index; duplicate inserts
// map onto errors.ErrClientAlreadyExists.
type ClientRepository struct {
	clients *mongo.Collection
}

// NewClientRepository creates a ClientRepository and ensures its indexes.
func NewClientRepository(ctx context.Context, db *mongo.Database) (*ClientRepository, error) {
	repo := &ClientRepository{
		clients: db.Collection(ClientsCollection),
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.clients.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Index creation commonly fails when an equivalent index already
		// exists; the repository still works, so log and continue.
		log.Warn().Err(err).Msg("Failed to create client_id index")
	}

	return repo, nil
}

// CreateClient implements domain.ClientRepository.
func (r *ClientRepository) CreateClient(ctx context.Context, client *domain.Client) error {
	_, err := r.clients.InsertOne(ctx, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to insert client: %w", err)
	}

	return nil
}

// GetClient implements domain.ClientRepository.
func (r *ClientRepository) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	var client domain.Client
	err := r.clients.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&client)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	return &client, nil
}

// UpdateClient implements domain.ClientRepository. The whole document is
// replaced so a concurrent reader sees either the old or the new record,
// never a mix.
func (r *ClientRepository) UpdateClient(ctx context.Context, client *domain.Client) error {
	result, err := r.clients.ReplaceOne(ctx, bson.M{"client_id": client.ID}, client)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrClientNotFound
	}

	return nil
}

// DeleteClient implements domain.ClientRepository. Absent IDs are a no-op.
func (r *ClientRepository) DeleteClient(ctx context.Context, clientID string) error {
	if _, err := r.clients.DeleteOne(ctx, bson.M{"client_id": clientID}); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	return nil
}

// ListClients implements domain.ClientRepository.
func (r *ClientRepository) ListClients(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	query := bson.M{}
	if filter.GrantType != "" {
		query["grant_types"] = filter.GrantType
	}
	if filter.Search != "" {
		query["client_id"] = bson.M{"$regex": filter.Search}
	}

	cursor, err := r.clients.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer cursor.Close(ctx)

	var clients []*domain.Client
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}

	return clients, nil
}

var _ domain.ClientRepository = (*ClientRepository)(nil)
