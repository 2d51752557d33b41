package session

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// MemoryStore implements domain.SessionStore using ttlcache, so expired
// sessions are evicted automatically. Get returns the stored instance
// itself, which gives every request of a principal the same mutex-guarded
// Session.
type MemoryStore struct {
	cache *ttlcache.Cache[string, *domain.Session]
}

// NewMemoryStore creates an in-memory session store with automatic cleanup.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *domain.Session](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, *domain.Session](),
	)

	go cache.Start()

	return &MemoryStore{cache: cache}
}

// Put implements domain.SessionStore.
func (s *MemoryStore) Put(_ context.Context, sess *domain.Session) error {
	s.cache.Set(sess.ID, sess, time.Until(sess.ExpiresAt))
	return nil
}

// Get implements domain.SessionStore.
func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, errors.ErrSessionNotFound
	}
	return item.Value(), nil
}

// Delete implements domain.SessionStore.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cache.Stop()
	return nil
}

var _ domain.SessionStore = (*MemoryStore)(nil)
