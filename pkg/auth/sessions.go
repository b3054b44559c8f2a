package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("Session not found")

// SessionStore keeps username of a session token
type SessionStore interface {
	Save(ctx context.Context, token string, username string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type memorySession struct {
	username string
	expires  time.Time
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func (s *memorySessionStore) Save(ctx context.Context, token string, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, session := range s.sessions {
		if !session.expires.After(now) {
			delete(s.sessions, key)
		}
	}
	s.sessions[token] = memorySession{username: username, expires: now.Add(ttl)}
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || !session.expires.After(s.now()) {
		return "", ErrSessionNotFound
	}
	return session.username, nil
}

func (s *memorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// MemorySessionStoreOpt is an option of the memory session store
type MemorySessionStoreOpt func(s *memorySessionStore)

// WithNow sets a clock used to expire sessions
func WithNow(now func() time.Time) MemorySessionStoreOpt {
	return func(s *memorySessionStore) {
		s.now = now
	}
}

// NewMemorySessionStore returns a session store of a single process
func NewMemorySessionStore(opts ...MemorySessionStoreOpt) SessionStore {
	s := &memorySessionStore{sessions: map[string]memorySession{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// redisClient is a subset of redis.UniversalClient used by the store
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionStore struct {
	client    redisClient
	namespace string
}

func (s *redisSessionStore) key(token string) string {
	return s.namespace + ":" + token
}

func (s *redisSessionStore) Save(ctx context.Context, token string, username string, ttl time.Duration) error {
	return errors.Wrap(s.client.Set(ctx, s.key(token), username, ttl).Err(), "Failed to save session")
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (string, error) {
	username, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "Failed to get session")
	}
	return username, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	return errors.Wrap(s.client.Del(ctx, s.key(token)).Err(), "Failed to delete session")
}

// NewRedisSessionStore returns a session store shared by all server instances
func NewRedisSessionStore(client redis.UniversalClient, namespace string) SessionStore {
	return &redisSessionStore{client: client, namespace: namespace}
}
