package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// counterCache keeps counters in a map. failing makes every call error.
type counterCache struct {
	ports.NopCache
	mu       sync.Mutex
	counters map[string]int64
	expiries map[string]time.Duration
	failing  bool
}

func newCounterCache() *counterCache {
	return &counterCache{counters: map[string]int64{}, expiries: map[string]time.Duration{}}
}

func (c *counterCache) Increment(_ context.Context, key string, by int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return 0, errors.New("connection refused")
	}
	c.counters[key] += by
	return c.counters[key], nil
}

func (c *counterCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiries[key] = ttl
	return nil
}

func serveLimited(mw echo.MiddlewareFunc, ip string) int {
	return serveRoute(mw, "/login", ip)
}

func serveRoute(mw echo.MiddlewareFunc, path, ip string) int {
	e := echo.New()
	e.POST(path, func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = ip + ":4242"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestCacheRateStore_FixedWindow(t *testing.T) {
	cache := newCounterCache()
	store := NewCacheRateStore(cache, 2, time.Minute, zerolog.Nop())
	base := time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC)
	store.now = func() time.Time { return base }

	for i, want := range []bool{true, true, false} {
		got, err := store.Allow("203.0.113.9")
		if err != nil || got != want {
			t.Fatalf("call %d: allowed=%v err=%v, want %v", i, got, err, want)
		}
	}
	if other, _ := store.Allow("198.51.100.1"); !other {
		t.Fatalf("other clients must have their own counter")
	}

	store.now = func() time.Time { return base.Add(time.Minute) }
	if got, _ := store.Allow("203.0.113.9"); !got {
		t.Fatalf("expected a fresh window to allow the request")
	}
	for key, ttl := range cache.expiries {
		if ttl != time.Minute {
			t.Fatalf("key %s expires after %v", key, ttl)
		}
	}
}

func TestCacheRateStore_FailsOpen(t *testing.T) {
	cache := newCounterCache()
	cache.failing = true
	store := NewCacheRateStore(cache, 1, time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if got, err := store.Allow("203.0.113.9"); !got || err != nil {
			t.Fatalf("expected cache failures to allow requests, got %v %v", got, err)
		}
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	cache := newCounterCache()
	mw := RateLimit("login", 1, 1, cache, zerolog.Nop())

	if code := serveLimited(mw, "203.0.113.9"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := serveLimited(mw, "203.0.113.9"); code != http.StatusOK {
		t.Fatalf("burst request: expected 200, got %d", code)
	}
	if code := serveLimited(mw, "203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}

func TestRateLimit_InProcess(t *testing.T) {
	mw := RateLimit("login", 1, 0, nil, zerolog.Nop())

	if code := serveLimited(mw, "203.0.113.9"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := serveLimited(mw, "203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := serveLimited(mw, "198.51.100.1"); code != http.StatusOK {
		t.Fatalf("other client: expected 200, got %d", code)
	}
}

func TestRateLimit_RoutesKeepSeparateCounters(t *testing.T) {
	cache := newCounterCache()
	login := RateLimit("login", 1, 0, cache, zerolog.Nop())
	refresh := RateLimit("refresh", 1, 0, cache, zerolog.Nop())

	if code := serveRoute(login, "/login", "203.0.113.9"); code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", code)
	}
	if code := serveRoute(login, "/login", "203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("login: expected 429, got %d", code)
	}
	if code := serveRoute(refresh, "/refresh", "203.0.113.9"); code != http.StatusOK {
		t.Fatalf("refresh must not share the login budget, got %d", code)
	}
	if len(cache.counters) != 2 {
		t.Fatalf("expected one counter per route, got %v", cache.counters)
	}
}
