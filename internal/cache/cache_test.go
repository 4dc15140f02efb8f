package cache

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](8)
	if _, ok := c.Get("missing"); ok {
		t.Error("hit on empty cache")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("overwrite kept %d", v)
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[int, string](8)
	calls := 0
	create := func() string {
		calls++
		return "built"
	}
	if v := c.GetOrCreate(1, create); v != "built" {
		t.Errorf("GetOrCreate = %q", v)
	}
	if v := c.GetOrCreate(1, create); v != "built" {
		t.Errorf("GetOrCreate on hit = %q", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	c := New[int, int](64)
	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCreate(7, func() int {
				calls.Add(1)
				return 42
			})
		}()
	}
	wg.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("create called %d times, want 1", got)
	}
}

func TestEviction(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 4; i++ {
		c.Set(i, i)
	}
	// Touch key 3 so it is the most recently used.
	c.Get(3)
	c.Set(4, 4) // exceeds the limit, evicts down to 3 entries

	if c.Len() > 4 {
		t.Errorf("Len() = %d after eviction, want <= 4", c.Len())
	}
	if _, ok := c.Get(3); !ok {
		t.Error("most recently used entry evicted")
	}
	if _, ok := c.Get(4); !ok {
		t.Error("just-inserted entry evicted")
	}
}

func TestUnboundedCache(t *testing.T) {
	c := New[int, int](0)
	for i := 0; i < 1000; i++ {
		c.Set(i, i)
	}
	if c.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", c.Len())
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[string, int](8)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still present")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
}
