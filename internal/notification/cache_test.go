package notification

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestCache(t *testing.T) (*TemplateCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewTemplateCache(client), mr
}

func TestTemplateCacheRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	if got := cache.GetDefault(ctx, TypeEmail); got != nil {
		t.Fatalf("GetDefault() on empty cache = %+v, want nil", got)
	}

	now := time.Now().UTC().Truncate(time.Second)
	tmpl := &Template{
		ID:        "t1",
		Name:      "expiry-es",
		Type:      TypeEmail,
		Subject:   "Tu membresía",
		Content:   "Hola {{name}}",
		Variables: []string{"name"},
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cache.SetDefault(ctx, tmpl)

	got := cache.GetDefault(ctx, TypeEmail)
	if got == nil {
		t.Fatal("GetDefault() = nil after SetDefault")
	}
	if got.ID != "t1" || got.Content != "Hola {{name}}" {
		t.Errorf("cached template = %+v", got)
	}

	// Types are cached independently.
	if got := cache.GetDefault(ctx, TypeWhatsApp); got != nil {
		t.Errorf("GetDefault(WHATSAPP) = %+v, want nil", got)
	}
}

func TestTemplateCacheInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	cache.SetDefault(ctx, &Template{ID: "t1", Type: TypeEmail})
	cache.Invalidate(ctx, TypeEmail)

	if got := cache.GetDefault(ctx, TypeEmail); got != nil {
		t.Errorf("GetDefault() after Invalidate = %+v, want nil", got)
	}
}

func TestTemplateCacheTTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	cache.SetDefault(ctx, &Template{ID: "t1", Type: TypeEmail})
	mr.FastForward(defaultTemplateTTL + time.Second)

	if got := cache.GetDefault(ctx, TypeEmail); got != nil {
		t.Errorf("GetDefault() after TTL = %+v, want nil", got)
	}
}

func TestTemplateCacheNilIsNoOp(t *testing.T) {
	var cache *TemplateCache
	ctx := context.Background()

	cache.SetDefault(ctx, &Template{ID: "t1", Type: TypeEmail})
	cache.Invalidate(ctx, TypeEmail)
	if got := cache.GetDefault(ctx, TypeEmail); got != nil {
		t.Errorf("nil cache returned %+v", got)
	}
}
