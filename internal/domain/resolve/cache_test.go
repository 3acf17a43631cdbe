package resolve

import (
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(time.Hour)
	id := ContentID{Platform: PlatformTikTok, ID: "123"}

	if _, ok := cache.Get(id); ok {
		t.Fatal("empty cache returned a hit")
	}

	want := &TikTokResult{Success: true, Title: "cached"}
	cache.Put(id, want)

	got, ok := cache.Get(id)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.(*TikTokResult) != want {
		t.Fatal("cache returned a different value")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(20 * time.Millisecond)
	id := ContentID{Platform: PlatformX, ID: "42"}
	cache.Put(id, &XResult{Success: true})

	if _, ok := cache.Get(id); !ok {
		t.Fatal("fresh entry missing")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.Get(id); ok {
		t.Fatal("entry survived past its TTL")
	}
}

func TestCachePlatformIsolation(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put(ContentID{Platform: PlatformTikTok, ID: "same"}, &TikTokResult{Success: true})

	if _, ok := cache.Get(ContentID{Platform: PlatformIG, ID: "same"}); ok {
		t.Fatal("identifier collided across platforms")
	}
}

func TestCacheDefaultsTTL(t *testing.T) {
	if got := NewCache(0).TTL(); got != time.Hour {
		t.Fatalf("default TTL = %v, want 1h", got)
	}
}
