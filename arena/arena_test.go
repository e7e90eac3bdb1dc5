package arena

import "testing"

func TestPoolAllocExhaustion(t *testing.T) {
	p := NewPool[int](2)

	if _, _, err := p.Alloc(); err != nil {
		t.Fatalf("first alloc should succeed: %v", err)
	}
	if _, _, err := p.Alloc(); err != nil {
		t.Fatalf("second alloc should succeed: %v", err)
	}
	if _, _, err := p.Alloc(); err != ErrFull {
		t.Fatalf("third alloc should return ErrFull, got %v", err)
	}
	if !p.IsFull() {
		t.Fatalf("pool should report full")
	}
}

func TestPoolResetRecyclesCapacity(t *testing.T) {
	p := NewPool[int](1)
	if _, _, err := p.Alloc(); err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if _, _, err := p.Alloc(); err != ErrFull {
		t.Fatalf("expected ErrFull before reset")
	}
	p.Reset()
	if _, _, err := p.Alloc(); err != nil {
		t.Fatalf("alloc after reset should succeed: %v", err)
	}
}

func TestPoolAllocNReservesContiguousRun(t *testing.T) {
	p := NewPool[int](10)
	slice, idx, err := p.AllocN(4)
	if err != nil {
		t.Fatalf("AllocN: %v", err)
	}
	if idx != 1 || len(slice) != 4 {
		t.Fatalf("expected index 1 and length 4, got idx=%d len=%d", idx, len(slice))
	}
	slice[0] = 42
	if p.Get(1) == nil || *p.Get(1) != 42 {
		t.Fatalf("AllocN slice should alias the pool's backing array")
	}
}

type testNode struct {
	Visits int
	Edges  []int
}

func (n *testNode) EdgeSlice() []int     { return n.Edges }
func (n *testNode) SetEdgeSlice(e []int) { n.Edges = e }

func TestLRTableLookupMissThenInsert(t *testing.T) {
	tbl := NewLRTable[testNode, *testNode, int](4, 4)
	hash := [16]byte{1}

	if _, _, ok := tbl.Lookup(hash); ok {
		t.Fatalf("expected miss on empty table")
	}

	n, h, err := tbl.AllocActiveNode()
	if err != nil {
		t.Fatalf("AllocActive: %v", err)
	}
	n.Visits = 7

	winner, existed := tbl.Insert(hash, h)
	if existed {
		t.Fatalf("first insert should not find an existing entry")
	}
	if winner != h {
		t.Fatalf("expected winner handle to equal the inserted handle")
	}

	got, gotHandle, ok := tbl.Lookup(hash)
	if !ok || got.Visits != 7 || gotHandle != h {
		t.Fatalf("lookup after insert should find the inserted node")
	}
}

func TestLRTablePromotesFromPreviousGeneration(t *testing.T) {
	tbl := NewLRTable[testNode, *testNode, int](4, 4)
	hash := [16]byte{2}

	n, h, err := tbl.AllocActiveNode()
	if err != nil {
		t.Fatalf("AllocActive: %v", err)
	}
	n.Visits = 99
	tbl.Insert(hash, h)

	tbl.FlipTables() // old active becomes previous

	got, gotHandle, ok := tbl.Lookup(hash)
	if !ok {
		t.Fatalf("expected promotion to find the entry in the previous generation")
	}
	if got.Visits != 99 {
		t.Fatalf("promoted node should carry over its value, got %d", got.Visits)
	}
	if gotHandle.Generation != 0 && gotHandle.Generation != 1 {
		t.Fatalf("unexpected generation tag %d", gotHandle.Generation)
	}

	// The promoted copy must now also be found directly in the active
	// generation without falling through to the previous one again.
	got2, _, ok := tbl.active().lookup(hash)
	if !ok || got2.Visits != 99 {
		t.Fatalf("promoted node should now live in the active generation")
	}
}

func TestLRTablePromotionReallocatesEdges(t *testing.T) {
	tbl := NewLRTable[testNode, *testNode, int](4, 8)
	hash := [16]byte{9}

	n, h, err := tbl.AllocActiveNode()
	if err != nil {
		t.Fatalf("AllocActive: %v", err)
	}
	edges, err := tbl.AllocActiveEdges(2)
	if err != nil {
		t.Fatalf("AllocActiveEdges: %v", err)
	}
	edges[0], edges[1] = 11, 22
	n.SetEdgeSlice(edges)
	tbl.Insert(hash, h)

	tbl.FlipTables() // the generation holding hash becomes previous

	got, _, ok := tbl.Lookup(hash)
	if !ok {
		t.Fatalf("expected promotion to find the entry")
	}
	if len(got.Edges) != 2 || got.Edges[0] != 11 || got.Edges[1] != 22 {
		t.Fatalf("promoted node should carry over its edge values, got %v", got.Edges)
	}

	// The generation the promotion borrowed edge memory from (the one
	// now previous) is exactly the one the next flip recycles. If the
	// promoted node's Edges still aliased it instead of a fresh
	// allocation, writing into the newly active edge pool here would
	// corrupt the values just asserted above.
	tbl.FlipTables()
	fresh, err := tbl.AllocActiveEdges(2)
	if err != nil {
		t.Fatalf("AllocActiveEdges: %v", err)
	}
	fresh[0], fresh[1] = -1, -1
	if got.Edges[0] != 11 || got.Edges[1] != 22 {
		t.Fatalf("promoted node's edges were overwritten by recycling, got %v", got.Edges)
	}
}

func TestFlipTablesClearsNewActiveGeneration(t *testing.T) {
	tbl := NewLRTable[testNode, *testNode, int](2, 2)
	hash := [16]byte{3}
	n, h, _ := tbl.AllocActiveNode()
	n.Visits = 5
	tbl.Insert(hash, h)

	tbl.FlipTables() // generation holding hash becomes previous; new active is empty
	tbl.FlipTables() // the generation holding hash is now active again, and was reset

	if _, _, ok := tbl.Lookup(hash); ok {
		t.Fatalf("expected the entry to have been recycled by the second flip")
	}
}
