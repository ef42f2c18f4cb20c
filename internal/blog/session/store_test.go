package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/blog/internal/blog/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return session.NewStore(rdb), mr
}

func TestStoreGetSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newStore(t)

	t.Run("miss", func(t *testing.T) {
		var v string
		found, err := s.Get(ctx, "absent", &v)
		require.NoError(t, err)
		require.False(t, found)
		require.Empty(t, v)
	})

	t.Run("string", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "refresh", "mahdi", time.Hour))

		var v string
		found, err := s.Get(ctx, "refresh", &v)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "mahdi", v)
	})

	t.Run("bool", func(t *testing.T) {
		key := session.VerifiedKey("mahdi")
		require.NoError(t, s.Set(ctx, key, true, time.Minute))

		var v bool
		found, err := s.Get(ctx, key, &v)
		require.NoError(t, err)
		require.True(t, found)
		require.True(t, v)
	})

	t.Run("integers are stored natively", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "counter", 41, time.Minute))

		raw, err := mr.Get("counter")
		require.NoError(t, err)
		require.Equal(t, "41", raw)

		_, err = mr.Incr("counter", 1)
		require.NoError(t, err)

		var n int
		found, err := s.Get(ctx, "counter", &n)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 42, n)

		var anyV any
		_, err = s.Get(ctx, "counter", &anyV)
		require.NoError(t, err)
		require.Equal(t, int64(42), anyV)
	})

	t.Run("structured", func(t *testing.T) {
		type payload struct {
			Username string   `json:"username"`
			Devices  []string `json:"devices"`
		}
		in := payload{Username: "mahdi", Devices: []string{"firefox"}}
		require.NoError(t, s.Set(ctx, "payload", in, time.Minute))

		var out payload
		found, err := s.Get(ctx, "payload", &out)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, in, out)
	})

	t.Run("non pointer destination", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
		var v string
		_, err := s.Get(ctx, "k", v)
		require.Error(t, err)
	})
}

func TestStoreSetZeroTTLDeletes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newStore(t)

	require.NoError(t, s.Set(ctx, "refresh", "mahdi", time.Hour))
	require.NoError(t, s.Set(ctx, "refresh", "ignored", 0))
	require.False(t, mr.Exists("refresh"))
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Set(ctx, "a", "1", time.Hour))
	require.NoError(t, s.Set(ctx, "b", "2", time.Hour))

	removed, err := s.Delete(ctx, "a", "b", "c")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = s.Delete(ctx, "a")
	require.NoError(t, err)
	require.False(t, removed)

	removed, err = s.Delete(ctx)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestStoreTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newStore(t)

	require.NoError(t, s.Set(ctx, "flag", true, 5*time.Minute))

	ttl, err := s.TTL(ctx, "flag")
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, ttl)

	mr.FastForward(2 * time.Minute)
	ttl, err = s.TTL(ctx, "flag")
	require.NoError(t, err)
	require.Equal(t, 3*time.Minute, ttl)

	mr.FastForward(3 * time.Minute)
	ttl, err = s.TTL(ctx, "flag")
	require.NoError(t, err)
	require.Zero(t, ttl)

	var v bool
	found, err := s.Get(ctx, "flag", &v)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, "forever", "x", session.NoExpiry))
	ttl, err = s.TTL(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, session.NoExpiry, ttl)
}

func TestVerifiedKey(t *testing.T) {
	require.Equal(t,
		"verified:2e0af263c88c69ecc23a51a76b7a2442ed6a9dff080f275a27ec486d1a0e0148",
		session.VerifiedKey("mahdi"),
	)
	require.NotContains(t, session.VerifiedKey("mahdi"), "mahdi")
}

func TestStoreUnreachable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newStore(t)
	mr.Close()

	var v string
	_, err := s.Get(ctx, "k", &v)
	require.Error(t, err)
	require.Error(t, s.Ping(ctx))
}
