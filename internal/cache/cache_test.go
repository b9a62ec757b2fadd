//go:build unit

package cache

import (
	"context"
	"garage-site/internal/config"
	"reflect"
	"sort"
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T, maxSize int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(config.CacheConfig{TTL: time.Minute, MaxSize: maxSize})
	c.now = clock.now
	t.Cleanup(func() { c.Close() })
	return c, clock
}

func TestCache_TTLBoundary(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Set("posts", "v", 10*time.Second)

	clock.advance(9 * time.Second)
	if v, ok := c.Get("posts"); !ok || v != "v" {
		t.Fatalf("expected hit before ttl, got %v, %v", v, ok)
	}

	clock.advance(time.Second) // exactly ttl
	if !c.Has("posts") {
		t.Fatal("expected hit at exactly ttl (now - storedAt > ttl is false)")
	}

	clock.advance(time.Nanosecond)
	if _, ok := c.Get("posts"); ok {
		t.Fatal("expected miss strictly after ttl")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired key to be dropped lazily, len=%d", c.Len())
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Set("k", 1, 0)

	clock.advance(time.Minute)
	if !c.Has("k") {
		t.Fatal("expected hit within default ttl")
	}
	clock.advance(time.Second)
	if c.Has("k") {
		t.Fatal("expected miss after default ttl")
	}
}

func TestCache_EvictsOldestInserted(t *testing.T) {
	c, _ := newTestCache(t, 3)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	// Reading does not refresh position: this is FIFO, not LRU.
	c.Get("a")
	// Overwriting an existing key does not evict anything.
	c.Set("b", 20, 0)
	if c.Len() != 3 {
		t.Fatalf("expected 3 keys after overwrite, got %d", c.Len())
	}

	c.Set("d", 4, 0)
	if c.Has("a") {
		t.Error("expected oldest key 'a' to be evicted")
	}
	want := []string{"b", "c", "d"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("want keys %v; got %v", want, got)
	}
	if v, _ := c.Get("b"); v != 20 {
		t.Errorf("expected overwritten value 20, got %v", v)
	}
}

func TestCache_Invalidation(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Set("blog-posts:all", 1, 0)
	c.Set("blog-posts:list:page=1", 2, 0)
	c.Set("services:all", 3, 0)

	if n := c.DeletePattern("blog-posts"); n != 2 {
		t.Errorf("expected 2 keys removed by pattern, got %d", n)
	}
	keys := c.Keys()
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"services:all"}) {
		t.Errorf("unexpected keys after pattern delete: %v", keys)
	}

	c.Delete("services:all")
	if c.Has("services:all") {
		t.Error("expected exact delete to remove key")
	}

	c.Set("x", 1, 0)
	c.Set("y", 2, 0)
	c.Clear()
	if c.Len() != 0 || len(c.Keys()) != 0 {
		t.Error("expected Clear to remove everything")
	}
}

func TestCache_Clean(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	clock.advance(2 * time.Second)
	if n := c.Clean(); n != 1 {
		t.Errorf("expected 1 expired entry purged, got %d", n)
	}
	if !reflect.DeepEqual(c.Keys(), []string{"long"}) {
		t.Errorf("unexpected keys after clean: %v", c.Keys())
	}
}

func TestCache_StartStopsOnCancel(t *testing.T) {
	c := New(config.CacheConfig{TTL: time.Millisecond, CleanInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	c.Set("k", 1, time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Error("expected background sweep to purge expired entry")
	}
	cancel()
	c.Close()
}
