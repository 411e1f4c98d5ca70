package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "gymcoach-workout||"

// SessionStore keeps at most one workout session per user.
type SessionStore interface {
	// Get returns nil, nil when the user has no session.
	Get(ctx context.Context, username string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, username string) error
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)

// RedisSessionStore stores sessions as json, abandoned ones expire after the ttl.
type RedisSessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisSessionStore(redisClient *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, username string) (*Session, error) {
	raw, err := s.redisClient.Get(ctx, sessionKeyPrefix+username).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal workout session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal workout session: %w", err)
	}
	return s.redisClient.Set(ctx, sessionKeyPrefix+session.Username, raw, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, username string) error {
	return s.redisClient.Del(ctx, sessionKeyPrefix+username).Err()
}

type MemorySessionStore struct {
	mutex    sync.Mutex
	sessions map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: map[string][]byte{},
	}
}

// Get returns a copy, callers never share a session value.
func (s *MemorySessionStore) Get(_ context.Context, username string) (*Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	raw, ok := s.sessions[username]
	if !ok {
		return nil, nil
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MemorySessionStore) Put(_ context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions[session.Username] = raw
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, username string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, username)
	return nil
}
