package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps server-side sessions so tokens can be revoked before
// they expire.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Touch extends a live session; false when it does not exist.
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) (bool, error)
}

// redisKeySession returns the Redis key for a session.
func redisKeySession(sessionID string) string { return "session:" + sessionID }

type redisSessions struct {
	rdb *redis.Client
}

// NewRedisSessions stores sessions as session:<id> -> user id with the
// refresh TTL.
func NewRedisSessions(rdb *redis.Client) SessionStore {
	return &redisSessions{rdb: rdb}
}

func (r *redisSessions) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, redisKeySession(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *redisSessions) Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.Expire(ctx, redisKeySession(sessionID), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("extend session: %w", err)
	}
	return ok, nil
}

func (r *redisSessions) Exists(ctx context.Context, sessionID string) (bool, error) {
	err := r.rdb.Get(ctx, redisKeySession(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get session: %w", err)
	}
	return true, nil
}

func (r *redisSessions) Delete(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.rdb.Del(ctx, redisKeySession(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

// MemorySessions is a process-local SessionStore for the memory driver and
// tests.
type MemorySessions struct {
	mu      sync.Mutex
	now     func() time.Time
	expires map[string]time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{now: time.Now, expires: map[string]time.Time{}}
}

func (m *MemorySessions) Create(_ context.Context, sessionID, _ string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[sessionID] = m.now().Add(ttl)
	return nil
}

func (m *MemorySessions) Touch(_ context.Context, sessionID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.liveLocked(sessionID) {
		return false, nil
	}
	m.expires[sessionID] = m.now().Add(ttl)
	return true, nil
}

func (m *MemorySessions) Exists(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveLocked(sessionID), nil
}

func (m *MemorySessions) Delete(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.liveLocked(sessionID)
	delete(m.expires, sessionID)
	return live, nil
}

func (m *MemorySessions) liveLocked(sessionID string) bool {
	exp, ok := m.expires[sessionID]
	if !ok {
		return false
	}
	if !m.now().Before(exp) {
		delete(m.expires, sessionID)
		return false
	}
	return true
}
