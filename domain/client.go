package domain

import (
	"context"
	"time"
)

// GrantType values are an open vocabulary: the RFC 6749 names plus any
// extension grant URI a deployment registers.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantImplicit          = "implicit"
	GrantRefreshToken      = "refresh_token"
	GrantClientCredentials = "client_credentials"
)

// Client represents a registered OAuth2 client application.
//
// SecretHash holds the one-way digest of the client secret. The raw secret is
// never stored; digesting happens exactly once, in the service layer, before
// a Client reaches a repository.
//
//nolint:tagliatelle
type Client struct {
	ID           string   `bson:"client_id"               json:"client_id"`
	SecretHash   string   `bson:"client_secret_hash"      json:"-"`
	Scoped       bool     `bson:"scoped"                  json:"scoped"`
	Scopes       []string `bson:"scopes,omitempty"        json:"scopes,omitempty"`
	GrantTypes   []string `bson:"grant_types"             json:"grant_types,omitempty"`
	RedirectURIs []string `bson:"redirect_uris"           json:"redirect_uris,omitempty"`
	Authorities  []string `bson:"authorities,omitempty"   json:"authorities,omitempty"`
	ResourceIDs  []string `bson:"resource_ids,omitempty"  json:"resource_ids,omitempty"`

	// AdditionalInformation is an open extension point for deployment
	// specific metadata.
	AdditionalInformation map[string]any `bson:"additional_information,omitempty" json:"additional_information,omitempty"`

	// Token validity overrides. nil means "use the server default".
	AccessTokenValiditySeconds  *int `bson:"access_token_validity_seconds,omitempty"  json:"access_token_validity_seconds,omitempty"`
	RefreshTokenValiditySeconds *int `bson:"refresh_token_validity_seconds,omitempty" json:"refresh_token_validity_seconds,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ClientFilter defines filtering options for listing clients.
type ClientFilter struct {
	GrantType string
	Search    string
}

// ClientRepository defines the storage contract for OAuth2 clients.
// Implementations must keep client IDs unique and make every write atomic
// with respect to concurrent reads.
type ClientRepository interface {
	// CreateClient stores a new client. Returns errors.ErrClientAlreadyExists
	// if the client ID is already registered.
	CreateClient(ctx context.Context, client *Client) error

	// GetClient retrieves a client by ID. Returns errors.ErrClientNotFound
	// if no such client exists.
	GetClient(ctx context.Context, clientID string) (*Client, error)

	// UpdateClient replaces all mutable fields of an existing client.
	// Returns errors.ErrClientNotFound if the client does not exist.
	UpdateClient(ctx context.Context, client *Client) error

	// DeleteClient removes a client. Deleting an absent client is a no-op.
	DeleteClient(ctx context.Context, clientID string) error

	// ListClients returns a snapshot of all clients matching the filter.
	ListClients(ctx context.Context, filter ClientFilter) ([]*Client, error)
}
