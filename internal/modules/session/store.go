package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	Save(ctx context.Context, d *Data) error
	Get(ctx context.Context, userID, id string) (*Data, error)
	Delete(ctx context.Context, userID, id string) error
}

func sessionKey(userID, id string) string {
	return fmt.Sprintf("session:%s:%s", userID, id)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save stores d until its expiry.
func (s *RedisStore) Save(ctx context.Context, d *Data) error {
	ttl := time.Until(d.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(d.UserID, d.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID, id string) (*Data, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &d, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID, id string) error {
	if err := s.client.Del(ctx, sessionKey(userID, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// MemoryStore keeps sessions in process. Used when no redis is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Data
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Data), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, d *Data) error {
	if !d.ExpiresAt.After(s.now()) {
		return fmt.Errorf("session already expired")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey(d.UserID, d.ID)] = *d
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID, id string) (*Data, error) {
	key := sessionKey(userID, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.sessions[key]
	if !ok {
		return nil, ErrNoSession
	}
	if !d.ExpiresAt.After(s.now()) {
		delete(s.sessions, key)
		return nil, ErrNoSession
	}
	return &d, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, id))
	return nil
}
