package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
	"go.idgate.dev/idgate/oauth"
)

const clientSecretLength = 32

// ClientService handles client registration and validation on top of a
// ClientRepository. It is the single digesting boundary for client secrets:
// raw secrets are hashed here, exactly once, and repositories only ever see
// the digest.
type ClientService struct {
	repo   domain.ClientRepository
	hasher PasswordHasher
}

// NewClientService creates a new ClientService instance.
func NewClientService(repo domain.ClientRepository, hasher PasswordHasher) *ClientService {
	return &ClientService{
		repo:   repo,
		hasher: hasher,
	}
}

// generateRandomString creates a cryptographically secure random string of
// the specified length.
func generateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	_, _ = rand.Read(b)

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}

	return string(b)
}

// RegisterClient registers a client with a generated ID and secret. The raw
// secret is returned to the caller once and only its digest is stored.
func (s *ClientService) RegisterClient(ctx context.Context,
	scopes, grantTypes, redirectURIs []string,
) (*domain.Client, string, error) {
	secret := generateRandomString(clientSecretLength)

	secretHash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, "", fmt.Errorf("hashing client secret: %w", err)
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:           uuid.NewString(),
		SecretHash:   secretHash,
		Scoped:       len(scopes) > 0,
		Scopes:       scopes,
		GrantTypes:   grantTypes,
		RedirectURIs: redirectURIs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateClient(ctx, client); err != nil {
		return nil, "", err
	}

	log.Info().Str("client_id", client.ID).Msg("Registered new OAuth2 client")

	return client, secret, nil
}

// AddClient stores a caller-constructed client record. The record's
// SecretHash must already be a digest; AddClient never hashes, so values
// cannot be double-digested on re-registration attempts.
func (s *ClientService) AddClient(ctx context.Context, client *domain.Client) error {
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}
	client.UpdatedAt = time.Now().UTC()

	return s.repo.CreateClient(ctx, client)
}

// GetClient retrieves a client by ID.
func (s *ClientService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	return s.repo.GetClient(ctx, clientID)
}

// UpdateClient replaces all mutable fields of an existing client.
func (s *ClientService) UpdateClient(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateClient(ctx, client)
}

// DeleteClient removes a client registration. Absent clients are a no-op.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	return s.repo.DeleteClient(ctx, clientID)
}

// ListClients returns a snapshot of all registered clients.
func (s *ClientService) ListClients(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	return s.repo.ListClients(ctx, filter)
}

// ValidateClientSecret checks the presented raw secret against the client's
// stored digest.
func (s *ClientService) ValidateClientSecret(ctx context.Context, clientID, secret string) (*domain.Client, error) {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(client.SecretHash, secret); err != nil {
		return nil, errors.ErrAuthenticationFailed
	}

	return client, nil
}

// ValidateRedirectURI checks a redirect URI against the client's registered
// prefixes. Returns errors.ErrInvalidRedirect when the URI is not covered.
func (s *ClientService) ValidateRedirectURI(ctx context.Context, clientID, redirectURI string) error {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return err
	}

	if !oauth.ValidateRedirectURI(client.RedirectURIs, redirectURI) {
		return errors.ErrInvalidRedirect
	}

	return nil
}

// ValidateScope checks that every requested scope is registered for the
// client. An unscoped client accepts any request.
func (s *ClientService) ValidateScope(ctx context.Context, clientID string, requestedScopes []string) error {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return err
	}

	if !client.Scoped {
		return nil
	}

	allowed := make(map[string]bool, len(client.Scopes))
	for _, scope := range client.Scopes {
		allowed[scope] = true
	}

	for _, scope := range requestedScopes {
		if !allowed[scope] {
			return fmt.Errorf("scope %q not allowed for client", scope)
		}
	}

	return nil
}

// ValidateGrantType checks if a grant type is allowed for a client.
func (s *ClientService) ValidateGrantType(ctx context.Context, clientID, grantType string) error {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return err
	}

	for _, allowed := range client.GrantTypes {
		if allowed == grantType {
			return nil
		}
	}

	return fmt.Errorf("grant type %q not allowed for client", grantType)
}
