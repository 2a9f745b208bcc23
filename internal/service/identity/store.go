package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"joulina-backend/internal/domain"
)

// RefreshStore persists refresh tokens server-side so they can be revoked.
type RefreshStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// redisStore keeps refresh tokens in Redis with their TTL.
type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) RefreshStore {
	return &redisStore{client: client}
}

func refreshKey(token string) string {
	return fmt.Sprintf("refresh:%s", token)
}

func (s *redisStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(token), userID, ttl).Err()
}

func (s *redisStore) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *redisStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKey(token)).Err()
}

// memoryStore is the single-process fallback when no Redis is configured.
type memoryStore struct {
	mu     sync.RWMutex
	tokens map[string]memoryEntry
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryStore() RefreshStore {
	return &memoryStore{tokens: make(map[string]memoryEntry)}
}

func (s *memoryStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[token] = memoryEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	entry, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return "", domain.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return "", domain.ErrNotFound
	}
	return entry.userID, nil
}

func (s *memoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	return nil
}
