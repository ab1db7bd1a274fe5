package linkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements the link store on Redis. Redis key expiry enforces
// the TTL; entries survive process restarts for their remaining lifetime.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed link store.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Put stores an entry under token with the given TTL. Caller-stamped
// lifecycle timestamps are kept so the expiry a caller advertises is the
// expiry the store enforces; only missing ones are filled in.
func (s *RedisStore) Put(ctx context.Context, token string, entry *domain.LinkEntry, ttl time.Duration) error {
	now := time.Now().UTC()

	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = now.Add(ttl)
	}

	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to encode link entry: %w", err)
	}

	return s.client.Set(ctx, s.makeKey(token), payload, ttl).Err()
}

// Get retrieves the entry for token. Redis expiry makes expired tokens
// absent; the stored expiry timestamp is checked as well so a reader with
// a faster clock never serves a stale bundle.
func (s *RedisStore) Get(ctx context.Context, token string) (*domain.LinkEntry, bool, error) {
	payload, err := s.client.Get(ctx, s.makeKey(token)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry domain.LinkEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode link entry: %w", err)
	}
	if entry.Expired(time.Now().UTC()) {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Delete removes an entry. Absent tokens are not an error.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.makeKey(token)).Err()
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) makeKey(token string) string {
	return "harrier:bundle:" + token
}
