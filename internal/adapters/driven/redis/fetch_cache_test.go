package redis

import (
	"context"
	"testing"
	"time"
)

func TestFetchCache_Miss(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewFetchCache(client)

	payload, ok, err := cache.Get(context.Background(), "datasync:fetch:standards:updates")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || payload != nil {
		t.Errorf("expected miss, got %q", payload)
	}
}

func TestFetchCache_PutGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewFetchCache(client)
	ctx := context.Background()
	key := "datasync:fetch:benchmark:points"

	if err := cache.Put(ctx, key, []byte(`[{"metric_name":"nca_rate"}]`), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, ok, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if string(payload) != `[{"metric_name":"nca_rate"}]` {
		t.Errorf("unexpected payload %q", payload)
	}

	mr.FastForward(time.Hour + time.Second)
	if _, ok, _ := cache.Get(ctx, key); ok {
		t.Error("expected entry to expire")
	}
}

func TestFetchCache_NoExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewFetchCache(client)

	if err := cache.Put(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != 0 {
		t.Errorf("expected no ttl, got %v", ttl)
	}
}

func TestFetchCache_ServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewFetchCache(client)
	mr.Close()

	if _, _, err := cache.Get(context.Background(), "k"); err == nil {
		t.Error("expected error when redis is unreachable")
	}
	if err := cache.Put(context.Background(), "k", []byte("v"), time.Minute); err == nil {
		t.Error("expected error when redis is unreachable")
	}
}
