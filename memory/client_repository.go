// Package memory provides in-memory repository implementations, used for
// tests and single-node deployments that do not need persistence.
package memory

import (
	"context"
	"strings"
	"sync"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// ClientRepository implements domain.ClientRepository with a mutex-guarded
// map. Reads run concurrently; writes are serialized and atomic, and records
// are copied on the way in and out so no caller ever observes a partial
// update.
type ClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
}

// NewClientRepository creates an empty in-memory client repository.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

// CreateClient implements domain.ClientRepository.
func (r *ClientRepository) CreateClient(_ context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[client.ID]; ok {
		return errors.ErrClientAlreadyExists
	}

	r.clients[client.ID] = copyClient(client)

	return nil
}

// GetClient implements domain.ClientRepository.
func (r *ClientRepository) GetClient(_ context.Context, clientID string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[clientID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}

	return copyClient(client), nil
}

// UpdateClient implements domain.ClientRepository.
func (r *ClientRepository) UpdateClient(_ context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[client.ID]; !ok {
		return errors.ErrClientNotFound
	}

	r.clients[client.ID] = copyClient(client)

	return nil
}

// DeleteClient implements domain.ClientRepository. Absent IDs are a no-op.
func (r *ClientRepository) DeleteClient(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, clientID)

	return nil
}

// ListClients implements domain.ClientRepository. The result is a snapshot;
// later writes do not show through.
func (r *ClientRepository) ListClients(_ context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*domain.Client, 0, len(r.clients))
	for _, client := range r.clients {
		if !matchesFilter(client, filter) {
			continue
		}
		clients = append(clients, copyClient(client))
	}

	return clients, nil
}

func matchesFilter(client *domain.Client, filter domain.ClientFilter) bool {
	if filter.GrantType != "" {
		found := false
		for _, gt := range client.GrantTypes {
			if gt == filter.GrantType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" && !strings.Contains(client.ID, filter.Search) {
		return false
	}
	return true
}

func copyClient(client *domain.Client) *domain.Client {
	cp := *client
	cp.Scopes = append([]string(nil), client.Scopes...)
	cp.GrantTypes = append([]string(nil), client.GrantTypes...)
	cp.RedirectURIs = append([]string(nil), client.RedirectURIs...)
	cp.Authorities = append([]string(nil), client.Authorities...)
	cp.ResourceIDs = append([]string(nil), client.ResourceIDs...)
	if client.AdditionalInformation != nil {
		cp.AdditionalInformation = make(map[string]any, len(client.AdditionalInformation))
		for k, v := range client.AdditionalInformation {
			cp.AdditionalInformation[k] = v
		}
	}
	if client.AccessTokenValiditySeconds != nil {
		v := *client.AccessTokenValiditySeconds
		cp.AccessTokenValiditySeconds = &v
	}
	if client.RefreshTokenValiditySeconds != nil {
		v := *client.RefreshTokenValiditySeconds
		cp.RefreshTokenValiditySeconds = &v
	}
	return &cp
}

var _ domain.ClientRepository = (*ClientRepository)(nil)
