package cache

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	c := New[int, string](3, "test")
	c.Put(1, "one")
	c.Put(2, "two")

	v, ok := c.Get(1)
	if !ok || v != "one" {
		t.Fatalf("Get(1) = %q, %v; want \"one\", true", v, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, string](2, "test")
	c.Put(1, "one")
	c.Put(2, "two")
	c.Put(3, "three") // evicts 1, the least recently touched

	if _, ok := c.Get(1); ok {
		t.Fatal("Get(1) found after eviction, want miss")
	}
	if _, ok := c.Get(2); !ok {
		t.Fatal("Get(2) miss, want hit")
	}
	if _, ok := c.Get(3); !ok {
		t.Fatal("Get(3) miss, want hit")
	}
}

func TestGetMovesEntryToMostRecentlyUsed(t *testing.T) {
	c := New[int, string](2, "test")
	c.Put(1, "one")
	c.Put(2, "two")
	c.Get(1) // touch 1, making 2 the least recently used
	c.Put(3, "three")

	if _, ok := c.Get(2); ok {
		t.Fatal("Get(2) found after eviction, want miss")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatal("Get(1) miss, want hit (recently touched)")
	}
}

func TestPutOverwriteDoesNotGrowSize(t *testing.T) {
	c := New[int, string](2, "test")
	c.Put(1, "one")
	c.Put(1, "uno")

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	v, ok := c.Get(1)
	if !ok || v != "uno" {
		t.Fatalf("Get(1) = %q, %v; want \"uno\", true", v, ok)
	}
}

func TestLenNeverExceedsCapacity(t *testing.T) {
	c := New[int, int](4, "test")
	for i := 0; i < 20; i++ {
		c.Put(i, i)
		if c.Len() > 4 {
			t.Fatalf("Len() = %d after %d puts, want <= 4", c.Len(), i+1)
		}
	}
}
