// Package memory implementa cache.Cache sobre patrickmn/go-cache.
package memory

import (
	"context"
	"time"

	"github.com/filmlot/sessiond/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

type Mem struct{ c *gocache.Cache }

// New crea un cache en memoria con TTL por defecto.
func New(defaultTTL time.Duration) *Mem {
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return b, nil
}

func (m *Mem) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *Mem) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *Mem) Ping(_ context.Context) error { return nil }

func (m *Mem) Close() error {
	m.c.Flush()
	return nil
}
