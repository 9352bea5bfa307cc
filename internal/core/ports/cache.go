package ports

import (
	"context"
	"time"
)

// Cache is an optional side-channel. Callers must behave correctly when every
// Get misses and every write fails.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string, by int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// NopCache is the Cache used when Redis is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, string) error { return nil }
func (NopCache) Exists(context.Context, string) (bool, error) { return false, nil }
func (NopCache) Increment(_ context.Context, _ string, by int64) (int64, error) { return by, nil }
func (NopCache) Expire(context.Context, string, time.Duration) error { return nil }
func (NopCache) Ping(context.Context) error { return nil }
