// Package session keeps the volatile half of authentication state in redis:
// one entry per live refresh token and a short lived flag per user that has
// passed two factor verification.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/blog/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// NoExpiry is reported by TTL for keys that never expire, and makes Set
// write a key without expiry.
const NoExpiry time.Duration = -1

const verifiedKeyPrefix = "verified:"

// Cache is the key/value contract the auth service depends on.
type Cache interface {
	// Get decodes the value at key into dst. found is false on a miss.
	Get(ctx context.Context, key string, dst any) (found bool, err error)

	// Set writes value with the given lifetime. A ttl of zero deletes key.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys and reports whether anything was removed.
	Delete(ctx context.Context, keys ...string) (bool, error)

	// TTL returns the remaining lifetime: zero for a missing key and
	// NoExpiry for a key without one.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Ping(ctx context.Context) error
}

// VerifiedKey is the cache key of the user's two factor flag. The username
// is hashed so keys do not leak account names.
func VerifiedKey(username string) string {
	return verifiedKeyPrefix + cryptox.HashUsername(username)
}

// Store is a Cache backed by a go-redis client.
type Store struct {
	rdb *redis.Client
}

var _ Cache = (*Store)(nil)

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: get: %w", err)
	}
	if err := decode(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl == 0 {
		_, err := s.Delete(ctx, key)
		return err
	}

	payload, err := encode(value)
	if err != nil {
		return err
	}

	// go-redis reads -1 as KEEPTTL, so NoExpiry maps to a plain SET.
	expiration := ttl
	if ttl < 0 {
		expiration = 0
	}

	if err := s.rdb.Set(ctx, key, payload, expiration).Err(); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	n, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("session: delete: %w", err)
	}
	return n > 0, nil
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("session: ttl: %w", err)
	}

	switch d {
	case -2:
		return 0, nil
	case -1:
		return NoExpiry, nil
	}
	return d, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session: ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
