package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

const rateLimitWindow = time.Minute

// RateLimit limits requests to one route per client IP. perMinute requests
// are allowed per minute plus burst extra; route namespaces the counters so
// each limited endpoint keeps its own budget.
//
// With a nil cache the limiter is a token bucket held in process memory.
// Otherwise counters live in the cache so every replica shares them.
func RateLimit(route string, perMinute, burst int, cache ports.Cache, logger zerolog.Logger) echo.MiddlewareFunc {
	var store echomiddleware.RateLimiterStore
	if cache == nil {
		store = echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / rateLimitWindow.Seconds()),
			Burst:     perMinute + burst,
			ExpiresIn: 3 * rateLimitWindow,
		})
	} else {
		store = NewCacheRateStore(cache, perMinute+burst, rateLimitWindow, logger)
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return route + "|" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// CacheRateStore is a fixed-window counter kept in a ports.Cache. When the
// cache fails the request is allowed and the failure logged.
type CacheRateStore struct {
	cache  ports.Cache
	limit  int64
	window time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewCacheRateStore(cache ports.Cache, limit int, window time.Duration, logger zerolog.Logger) *CacheRateStore {
	return &CacheRateStore{cache: cache, limit: int64(limit), window: window, logger: logger, now: time.Now}
}

// Allow satisfies echomiddleware.RateLimiterStore.
func (s *CacheRateStore) Allow(identifier string) (bool, error) {
	allowed, err := s.allow(identifier)
	if err != nil {
		s.logger.Warn().Err(err).Str("client", identifier).Msg("rate limit store unavailable")
		return true, nil
	}
	return allowed, nil
}

func (s *CacheRateStore) allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	slot := s.now().UnixNano() / int64(s.window)
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, slot)

	n, err := s.cache.Increment(ctx, key, 1)
	if err != nil {
		return false, fmt.Errorf("increment %s: %w", key, err)
	}
	if n == 1 {
		if err := s.cache.Expire(ctx, key, s.window); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n <= s.limit, nil
}
