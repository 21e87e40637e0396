package cache

import (
	"context"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// PageTTL is how long a cached page body stays valid. Writes do not
// invalidate cached pages; readers may see stale content until expiry or an
// explicit Flush. That staleness window is accepted behavior.
const PageTTL = 20 * time.Second

const keyPrefix = "page:"

// PageCache stores whole rendered response bodies keyed by route identity.
// The key deliberately ignores query parameters, so a cached body always
// represents the unparameterized request.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache on the given Redis client. A nil client
// yields a cache that misses on every lookup.
func NewPageCache(client *redis.Client) *PageCache {
	return &PageCache{client: client, ttl: PageTTL}
}

// Get returns the cached body for the route, if present and unexpired.
func (p *PageCache) Get(ctx context.Context, route string) ([]byte, bool) {
	if p == nil || p.client == nil {
		return nil, false
	}
	ctx, span := observability.GetTraceLayer().TraceCacheOperation(ctx, "get", keyPrefix+route)
	defer span.End()
	body, err := p.client.Get(ctx, keyPrefix+route).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores the rendered body for the route with the cache TTL.
func (p *PageCache) Set(ctx context.Context, route string, body []byte) {
	if p == nil || p.client == nil {
		return
	}
	ctx, span := observability.GetTraceLayer().TraceCacheOperation(ctx, "set", keyPrefix+route)
	defer span.End()
	// Best-effort: a failed write just means the next request re-renders.
	_ = p.client.Set(ctx, keyPrefix+route, body, p.ttl).Err()
}

// Flush drops every cached page. This is the administrative/test action;
// there is no automatic invalidation on writes.
func (p *PageCache) Flush(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	ctx, span := observability.GetTraceLayer().TraceCacheOperation(ctx, "flush", keyPrefix+"*")
	defer span.End()
	iter := p.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return p.client.Del(ctx, keys...).Err()
}

// Middleware serves successful GET responses for the route from cache and
// repopulates the cache on miss.
func (p *PageCache) Middleware(route string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		if body, ok := p.Get(c.Context(), route); ok {
			middleware.PageCacheHits.WithLabelValues(route).Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(body)
		}
		middleware.PageCacheMisses.WithLabelValues(route).Inc()

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			body := make([]byte, len(c.Response().Body()))
			copy(body, c.Response().Body())
			p.Set(c.Context(), route, body)
		}
		return nil
	}
}
