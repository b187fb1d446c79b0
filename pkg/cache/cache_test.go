package cache

import (
	"testing"

	"github.com/appku/calku/pkg/types"
)

func tree(n int) []types.Token {
	return make([]types.Token, n)
}

func TestSetAndGet(t *testing.T) {
	c := New(2)
	c.Set("a", tree(1))
	got, ok := c.Get("a")
	if !ok || len(got) != 1 {
		t.Fatalf("Get(a) = %v, %v; want a 1-token tree", got, ok)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	c := New(2)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get on an empty cache should miss")
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Set("a", tree(1))
	c.Set("b", tree(2))
	c.Get("a") // promote a to MRU, b becomes LRU
	c.Set("c", tree(3))
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestGetOrCompileCachesOnlyOnSuccess(t *testing.T) {
	c := New(4)
	calls := 0
	compile := func() ([]types.Token, error) {
		calls++
		return tree(1), nil
	}
	if _, err := c.GetOrCompile("k", compile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.GetOrCompile("k", compile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("compile called %d times, want 1 (second call should hit cache)", calls)
	}
}

func TestKeyDistinguishesTimeZone(t *testing.T) {
	if Key("1+1", "UTC") == Key("1+1", "America/New_York") {
		t.Error("Key should differ by time zone for identical source text")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := New(4)
	c.Set("a", tree(1))
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone after Invalidate")
	}
	c.Set("b", tree(1))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestNewDefaultsCapacity(t *testing.T) {
	c := New(0)
	if c.Capacity() != 256 {
		t.Errorf("Capacity() = %d, want 256 default", c.Capacity())
	}
}
