// Package redis provides a Redis-backed session store for deployments where
// sessions must survive process restarts or be shared between nodes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/errors"
)

// Store implements domain.SessionStore on top of a Redis hash per session.
// Serialized consistency for a principal's concurrent requests is weaker than
// with the in-memory store: each request works on its own deserialized copy
// and last write wins on save.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a new Store instance.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) redisKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

// Put implements domain.SessionStore.
func (s *Store) Put(ctx context.Context, sess *domain.Session) error {
	key := s.redisKey(sess.ID)

	userJSON := ""
	if user := sess.User(); user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal session user: %w", err)
		}
		userJSON = string(b)
	}

	entry := map[string]interface{}{
		"id":         sess.ID,
		"user":       userJSON,
		"old_uri":    sess.OldURI(),
		"created_at": sess.CreatedAt.Unix(),
		"expires_at": sess.ExpiresAt.Unix(),
	}

	if _, err := s.client.HSet(ctx, key, entry).Result(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}

	if _, err := s.client.Expire(ctx, key, time.Until(sess.ExpiresAt)).Result(); err != nil {
		return fmt.Errorf("failed to set expiry for session in Redis: %w", err)
	}

	return nil
}

// Get implements domain.SessionStore.
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	res, err := s.client.HGetAll(ctx, s.redisKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.ErrSessionNotFound
	}

	createdAt, err := strconv.ParseInt(res["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session entry %q: %w", id, err)
	}
	expiresAt, err := strconv.ParseInt(res["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session entry %q: %w", id, err)
	}

	sess := domain.NewSession(id, 0)
	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	sess.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	sess.SetOldURI(res["old_uri"])

	if userJSON := res["user"]; userJSON != "" {
		var user domain.User
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			return nil, fmt.Errorf("corrupt session user %q: %w", id, err)
		}
		sess.SetUser(&user)
	}

	return sess, nil
}

// Delete implements domain.SessionStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Del(ctx, s.redisKey(id)).Result(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

var _ domain.SessionStore = (*Store)(nil)
