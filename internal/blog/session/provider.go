package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/blog/pkg/apperr"
	"github.com/aussiebroadwan/blog/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// PoolSize is the connection pool size of the shared client.
const PoolSize = 100

type connectFunc func(ctx context.Context, url string) (*Store, error)

// Provider owns the process wide Store and creates it on first use. The
// first caller connects and pings while concurrent callers wait on the same
// lock and then reuse the result. A failed attempt publishes nothing, so the
// next caller tries again. Once published the Store never changes.
//
// Provider is itself a Cache that delegates to the lazily created Store.
type Provider struct {
	url     string
	connect connectFunc

	mu    sync.Mutex
	store atomic.Pointer[Store]
}

var _ Cache = (*Provider)(nil)

func NewProvider(url string) *Provider {
	return &Provider{url: url, connect: dial}
}

// Store returns the shared Store, connecting on the first call.
func (p *Provider) Store(ctx context.Context) (*Store, error) {
	if s := p.store.Load(); s != nil {
		return s, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if s := p.store.Load(); s != nil {
		return s, nil
	}

	s, err := p.connect(ctx, p.url)
	if err != nil {
		slogx.FromContext(ctx).Error("session store unavailable", "err", err)
		return nil, err
	}

	p.store.Store(s)
	return s, nil
}

func dial(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperr.DatabaseConnection(fmt.Errorf("parse redis url: %w", err))
	}
	opts.PoolSize = PoolSize

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperr.DatabaseConnection(err)
	}
	return NewStore(rdb), nil
}

// Close releases the client if one was created.
func (p *Provider) Close() error {
	if s := p.store.Load(); s != nil {
		return s.Close()
	}
	return nil
}

func (p *Provider) Get(ctx context.Context, key string, dst any) (bool, error) {
	s, err := p.Store(ctx)
	if err != nil {
		return false, err
	}
	return s.Get(ctx, key, dst)
}

func (p *Provider) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s, err := p.Store(ctx)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, value, ttl)
}

func (p *Provider) Delete(ctx context.Context, keys ...string) (bool, error) {
	s, err := p.Store(ctx)
	if err != nil {
		return false, err
	}
	return s.Delete(ctx, keys...)
}

func (p *Provider) TTL(ctx context.Context, key string) (time.Duration, error) {
	s, err := p.Store(ctx)
	if err != nil {
		return 0, err
	}
	return s.TTL(ctx, key)
}

func (p *Provider) Ping(ctx context.Context) error {
	s, err := p.Store(ctx)
	if err != nil {
		return err
	}
	if err := s.Ping(ctx); err != nil {
		return apperr.DatabaseConnection(err)
	}
	return nil
}
