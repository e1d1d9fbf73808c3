package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTemplateTTL = 5 * time.Minute

// TemplateCache caches default-template lookups in Redis. The default
// template is read on every templated send, while template mutations
// are rare, so a short TTL plus explicit invalidation on writes keeps
// the cache honest. A nil cache is a no-op.
type TemplateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTemplateCache creates a cache backed by the given Redis client.
func NewTemplateCache(client *redis.Client) *TemplateCache {
	return &TemplateCache{client: client, ttl: defaultTemplateTTL}
}

func defaultTemplateKey(typ NotifType) string {
	return fmt.Sprintf("notification:default_template:%s", typ)
}

// GetDefault returns the cached default template for a type, or nil on
// a miss. Cache errors are logged and treated as misses.
func (c *TemplateCache) GetDefault(ctx context.Context, typ NotifType) *Template {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, defaultTemplateKey(typ)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("[TemplateCache] Get failed for %s: %v", typ, err)
		return nil
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		log.Printf("[TemplateCache] Corrupt cache entry for %s: %v", typ, err)
		c.Invalidate(ctx, typ)
		return nil
	}
	return &t
}

// SetDefault stores the default template for its type.
func (c *TemplateCache) SetDefault(ctx context.Context, t *Template) {
	if c == nil || c.client == nil || t == nil {
		return
	}

	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, defaultTemplateKey(t.Type), data, c.ttl).Err(); err != nil {
		log.Printf("[TemplateCache] Set failed for %s: %v", t.Type, err)
	}
}

// Invalidate drops the cached default for a type. Called after any
// template mutation that can change which template is the default.
func (c *TemplateCache) Invalidate(ctx context.Context, typ NotifType) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, defaultTemplateKey(typ)).Err(); err != nil {
		log.Printf("[TemplateCache] Invalidate failed for %s: %v", typ, err)
	}
}
