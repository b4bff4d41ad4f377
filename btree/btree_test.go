package btree

import (
	"testing"

	"ridgedb/keykind"
)

func TestInsertAndSearch(t *testing.T) {
	tree := New[int32](keykind.Int32Order{})
	for i := int32(0); i < 100; i++ {
		tree.Insert(i, Locator{PageID: uint64(i / 10), Slot: i % 10})
	}
	for i := int32(0); i < 100; i++ {
		loc, ok := tree.Search(i)
		if !ok {
			t.Fatalf("Search(%d) not found", i)
		}
		want := Locator{PageID: uint64(i / 10), Slot: i % 10}
		if loc != want {
			t.Fatalf("Search(%d) = %v, want %v", i, loc, want)
		}
	}
	if _, ok := tree.Search(int32(12345)); ok {
		t.Fatal("Search(12345) found, want miss")
	}
}

func TestInsertLastWriteWins(t *testing.T) {
	tree := New[int32](keykind.Int32Order{})
	tree.Insert(1, Locator{PageID: 0, Slot: 0})
	tree.Insert(1, Locator{PageID: 9, Slot: 9})

	loc, ok := tree.Search(1)
	if !ok {
		t.Fatal("Search(1) not found")
	}
	if loc != (Locator{PageID: 9, Slot: 9}) {
		t.Fatalf("Search(1) = %v, want last-written locator", loc)
	}
}

func TestWalkVisitsKeysInAscendingOrder(t *testing.T) {
	tree := New[int32](keykind.Int32Order{})
	inserted := []int32{50, 10, 30, 90, 20, 5, 70, 60, 40, 80}
	for _, k := range inserted {
		tree.Insert(k, Locator{PageID: uint64(k)})
	}

	var walked []int32
	tree.Walk(func(key int32, loc Locator) {
		walked = append(walked, key)
	})

	if len(walked) != len(inserted) {
		t.Fatalf("Walk visited %d keys, want %d", len(walked), len(inserted))
	}
	for i := 1; i < len(walked); i++ {
		if walked[i-1] >= walked[i] {
			t.Fatalf("Walk order violated at index %d: %d >= %d", i, walked[i-1], walked[i])
		}
	}
}

func TestSplitsPreserveAllKeys(t *testing.T) {
	tree := New[int32](keykind.Int32Order{})
	const n = 500
	for i := int32(0); i < n; i++ {
		tree.Insert(i, Locator{PageID: uint64(i)})
	}

	var count int
	tree.Walk(func(key int32, loc Locator) { count++ })
	if count != n {
		t.Fatalf("Walk visited %d keys after %d inserts, want %d", count, n, n)
	}
}

// TestTreeStructuralInvariants walks the tree's actual node structure (this
// file shares package btree, so node[T]'s unexported fields are visible
// directly) and checks the three shape invariants every insert must
// preserve: every leaf sits at the same depth, every non-root node holds
// between MinKeys and MaxKeys keys, and each node's keys are strictly
// ascending.
func TestTreeStructuralInvariants(t *testing.T) {
	tree := New[int32](keykind.Int32Order{})
	const n = 733 // not a multiple of MaxKeys+1, to force uneven splits
	for i := int32(0); i < n; i++ {
		tree.Insert(i, Locator{PageID: uint64(i)})
	}

	var leafDepths []int
	var walk func(nd *node[int32], depth int, isRoot bool)
	walk = func(nd *node[int32], depth int, isRoot bool) {
		if !isRoot {
			if len(nd.keys) < MinKeys || len(nd.keys) > MaxKeys {
				t.Fatalf("node at depth %d has %d keys, want between %d and %d", depth, len(nd.keys), MinKeys, MaxKeys)
			}
		}
		for i := 1; i < len(nd.keys); i++ {
			if nd.keys[i-1] >= nd.keys[i] {
				t.Fatalf("node at depth %d keys not strictly ascending: %v", depth, nd.keys)
			}
		}
		if nd.leaf {
			leafDepths = append(leafDepths, depth)
			return
		}
		if len(nd.children) != len(nd.keys)+1 {
			t.Fatalf("internal node at depth %d has %d children and %d keys, want children == keys+1", depth, len(nd.children), len(nd.keys))
		}
		for _, c := range nd.children {
			walk(c, depth+1, false)
		}
	}
	walk(tree.root, 0, true)

	for i, d := range leafDepths {
		if d != leafDepths[0] {
			t.Fatalf("leaf %d at depth %d, want every leaf at depth %d", i, d, leafDepths[0])
		}
	}
}

func TestStringKeyedTree(t *testing.T) {
	tree := New[string](keykind.StringOrder{})
	words := []string{"pear", "apple", "mango", "banana", "kiwi", "fig"}
	for i, w := range words {
		tree.Insert(w, Locator{Slot: int32(i)})
	}
	for i, w := range words {
		loc, ok := tree.Search(w)
		if !ok || loc.Slot != int32(i) {
			t.Fatalf("Search(%q) = %v, %v; want slot %d", w, loc, ok, i)
		}
	}
}
