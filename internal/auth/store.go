package auth

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// TokenStore tracks live refresh tokens so they can be revoked.
type TokenStore interface {
	Save(ctx context.Context, tokenID string, memberID int, ttl time.Duration) error
	// Owner returns the member holding the token, or ErrInvalidToken.
	Owner(ctx context.Context, tokenID string) (int, error)
	Revoke(ctx context.Context, tokenID string) error
}

type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func refreshKey(tokenID string) string { return "refresh:" + tokenID }

func (s *RedisTokenStore) Save(ctx context.Context, tokenID string, memberID int, ttl time.Duration) error {
	err := s.rdb.Set(ctx, refreshKey(tokenID), memberID, ttl).Err()
	return errors.Wrap(err, "save refresh token")
}

func (s *RedisTokenStore) Owner(ctx context.Context, tokenID string) (int, error) {
	val, err := s.rdb.Get(ctx, refreshKey(tokenID)).Result()
	if err == redis.Nil {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, errors.Wrap(err, "load refresh token")
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string) error {
	return errors.Wrap(s.rdb.Del(ctx, refreshKey(tokenID)).Err(), "revoke refresh token")
}

// MemoryTokenStore keeps refresh tokens in process.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

type memoryToken struct {
	memberID  int
	expiresAt time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]memoryToken{}, now: time.Now}
}

func (s *MemoryTokenStore) Save(_ context.Context, tokenID string, memberID int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenID] = memoryToken{memberID: memberID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Owner(_ context.Context, tokenID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenID]
	if !ok || !s.now().Before(t.expiresAt) {
		delete(s.tokens, tokenID)
		return 0, ErrInvalidToken
	}
	return t.memberID, nil
}

func (s *MemoryTokenStore) Revoke(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenID)
	return nil
}
