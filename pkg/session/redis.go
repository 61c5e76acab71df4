package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/pinwheel/pkg/cache"
)

// RedisKeyPrefix namespaces session keys in Redis.
const RedisKeyPrefix = "pinwheel:session:"

// RedisStore keeps sessions in Redis with native key expiry, so Cleanup is a
// no-op. It shares the cache package's retry handling for transient network
// failures.
type RedisStore struct {
	c *cache.RedisCache
}

// NewRedisStore connects to the Redis server at url.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	c, err := cache.NewRedisCache(ctx, url, RedisKeyPrefix)
	if err != nil {
		return nil, err
	}
	return &RedisStore{c: c}, nil
}

// NewRedisStoreFromClient wraps an existing client. The store closes the
// client on Close.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{c: cache.NewRedisCacheFromClient(client, RedisKeyPrefix)}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, ok, err := s.c.Get(ctx, sessionID)
	if err != nil || !ok {
		return nil, err
	}
	sess, err := decode(data)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.c.Delete(ctx, sess.ID)
	}
	data, err := encode(sess)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, sess.ID, data, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.c.Delete(ctx, sessionID)
}

func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Close() error { return s.c.Close() }

var _ Store = (*RedisStore)(nil)
