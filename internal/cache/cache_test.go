package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/cache"
)

func TestNilCache(t *testing.T) {
	var c *cache.Redis
	ctx := context.Background()

	if err := c.Set(ctx, "k", []int{1}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out []int
	if c.Get(ctx, "k", &out) {
		t.Fatal("nil cache must never hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := cache.New(ctx, "127.0.0.1:1", "", "test:"); err == nil {
		t.Fatal("expected ping failure for unreachable address")
	}
}
