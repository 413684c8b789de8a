package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("guide", "dQw4w9WgXcQ")
		k2 := CacheKey("guide", "dQw4w9WgXcQ")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("roadmap", "go", "Beginner")
		k2 := CacheKey("roadmap", "go", "Advanced")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "gs:" {
			t.Errorf("expected gs: prefix, got %q", k[:3])
		}
	})
}

func TestCacheJSONRoundTrip(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheLoadJSON[StudyGuide](ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheStoreJSON(ctx, key, StudyGuide{ID: "g1", Title: "Photosynthesis"})

	got, ok := CacheLoadJSON[StudyGuide](ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if got.Title != "Photosynthesis" {
		t.Errorf("got title %q, want %q", got.Title, "Photosynthesis")
	}
}

func TestCacheDelete(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	ctx := context.Background()
	key := CacheKey("test", "delete")

	CacheSetBytes(ctx, key, []byte("x"))
	CacheDelete(ctx, key)
	if _, ok := CacheGetBytes(ctx, key); ok {
		t.Error("expected miss after delete")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", 1*time.Millisecond, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheSetBytes(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGetBytes(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", 1*time.Minute, 3, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		key := CacheKey("evict", fmt.Sprintf("item-%d", i))
		CacheSetBytes(ctx, key, []byte(fmt.Sprintf("v%d", i)))
	}

	count := 0
	guideCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGetBytes(ctx, key)
	_, misses := CacheStats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSetBytes(ctx, key, []byte("x"))
	CacheGetBytes(ctx, key)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}
