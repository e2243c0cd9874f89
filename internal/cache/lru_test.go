package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Get("key1") // key2 is now least recently used
	c.Set("key4", "value4")

	if _, found := c.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
	for _, k := range []string{"key1", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still be cached", k)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}
}

func TestLRUCache_OverwriteKeepsSize(t *testing.T) {
	c, _ := newTestCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("expected overwritten value 2, got %d", v)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestCache[core.MonthOverview](10, time.Minute)
	c.Set("2025-03", core.MonthOverview{Year: 2025, Month: 3})

	if got, found := c.Get("2025-03"); !found || got.Month != 3 {
		t.Fatalf("expected cached overview, got %+v %v", got, found)
	}

	clock.Advance(time.Minute + time.Second)
	if _, found := c.Get("2025-03"); found {
		t.Error("entry should have expired")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size %d", c.Size())
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c, clock := newTestCache[string](10, time.Minute)
	c.Set("key1", "value1")
	c.Set("key2", "value2")
	clock.Advance(30 * time.Second)
	c.Set("key3", "value3")
	clock.Advance(45 * time.Second)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if _, found := c.Get("key3"); !found {
		t.Error("key3 should survive cleanup")
	}
}

func TestLRUCache_PurgeAndDelete(t *testing.T) {
	c, _ := newTestCache[string](10, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("a should be deleted")
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("expected empty cache after purge, got %d", c.Size())
	}
	c.Set("c", "3")
	if _, found := c.Get("c"); !found {
		t.Error("cache should be usable after purge")
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[int](50, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*i)%80)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.Purge()
				}
			}
		}(g)
	}
	wg.Wait()
	if c.Size() > 50 {
		t.Errorf("size %d exceeds max", c.Size())
	}
}

func TestManager_SweepAndRun(t *testing.T) {
	c, clock := newTestCache[string](10, time.Minute)
	m := NewManager(nil)
	m.Register(c)

	c.Set("a", "1")
	clock.Advance(2 * time.Minute)
	if n := m.Sweep(); n != 1 {
		t.Errorf("expected 1 swept, got %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
