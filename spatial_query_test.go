package main

import "testing"

// A big object spanning many cells must still come back once,
// exercising the linear-scan dedup path (few candidates).
func TestQueryDedupLinearPath(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	g.Insert(pRef(1), NewAABB(0, 0, 45, 45)) // 5x5 cells
	g.Insert(pRef(2), NewAABB(12, 12, 38, 38))

	got := g.Query(NewAABB(0, 0, 45, 45))
	if !refsEqualSet(got, []EntityRef{pRef(1), pRef(2)}) {
		t.Errorf("got %v, want both ids exactly once", got)
	}
}

// Enough overlapping entities to push the candidate estimate past the
// set threshold; results must be identical in kind.
func TestQueryDedupSetPath(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	want := make([]EntityRef, 0, 30)
	for i := int32(0); i < 30; i++ {
		ref := pRef(i)
		// All straddle a shared cell boundary so each occupies 4 cells
		g.Insert(ref, NewAABB(8, 8, 12, 12))
		want = append(want, ref)
	}

	got := g.Query(NewAABB(0, 0, 20, 20))
	if !refsEqualSet(got, want) {
		t.Errorf("set-path dedup returned %d refs, want %d unique", len(got), len(want))
	}
}

func TestNeighborsUnknownRef(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	g.Insert(pRef(1), NewAABB(0, 0, 5, 5))
	if nb := g.Neighbors(pRef(99)); len(nb) != 0 {
		t.Errorf("neighbors of unknown ref should be empty, got %v", nb)
	}
}

func TestNeighborsExcludesSelf(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	g.Insert(pRef(1), NewAABB(0, 0, 5, 5))
	g.Insert(pRef(2), NewAABB(3, 3, 8, 8))
	g.Insert(pRef(3), NewAABB(100, 100, 105, 105))

	nb := g.Neighbors(pRef(1))
	if refsContain(nb, pRef(1)) {
		t.Error("neighbors must not include the queried ref")
	}
	if !refsEqualSet(nb, []EntityRef{pRef(2)}) {
		t.Errorf("neighbors got %v, want only id 2", nb)
	}
}

// The allocating and scratch variants must agree for every query kind,
// and a reused scratch must keep agreeing across calls.
func TestScratchAllocatingParity(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	for i := int32(0); i < 25; i++ {
		x := float64(i%5) * 14
		y := float64(i/5) * 14
		g.Insert(pRef(i), NewAABB(x, y, x+9, y+9))
	}

	s := NewGridScratch()
	box := NewAABB(5, 5, 45, 45)
	from := Vec2{-5, -5}
	to := Vec2{70, 55}

	for round := 0; round < 3; round++ {
		if !refsEqualSet(g.Query(box), g.QueryBuf(box, s)) {
			t.Fatal("Query / QueryBuf disagree")
		}
		if !refsEqualSet(g.Neighbors(pRef(6)), g.NeighborsBuf(pRef(6), s)) {
			t.Fatal("Neighbors / NeighborsBuf disagree")
		}
		if !refsEqualSet(g.Raycast(from, to), g.RaycastBuf(from, to, s)) {
			t.Fatal("Raycast / RaycastBuf disagree")
		}
		if !refsEqualSet(g.RaycastDilated(from, to, 6), g.RaycastDilatedBuf(from, to, 6, s)) {
			t.Fatal("RaycastDilated / RaycastDilatedBuf disagree")
		}
		if !refsEqualSet(g.SweptCircleCandidates(from, to, 8), g.SweptCircleCandidatesBuf(from, to, 8, s)) {
			t.Fatal("SweptCircleCandidates / Buf disagree")
		}
		he := Vec2{7, 4}
		if !refsEqualSet(g.SweptAABBCandidates(from, to, he), g.SweptAABBCandidatesBuf(from, to, he, s)) {
			t.Fatal("SweptAABBCandidates / Buf disagree")
		}
		if !refsEqualSet(g.PointCandidates(Vec2{15, 15}), g.PointCandidatesBuf(Vec2{15, 15}, s)) {
			t.Fatal("PointCandidates / Buf disagree")
		}
		if !refsEqualSet(g.PointContaining(Vec2{15, 15}), g.PointContainingBuf(Vec2{15, 15}, s)) {
			t.Fatal("PointContaining / Buf disagree")
		}
	}
}

// Two boxes sharing two different cells: the pair comes out once.
func TestEnumeratePairsOnce(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	g.Insert(pRef(1), NewAABB(0, 0, 15, 5)) // cells (0,0) and (1,0)
	g.Insert(pRef(2), NewAABB(2, 2, 17, 7)) // same two cells

	count := 0
	g.EnumeratePairs(func(a, b EntityRef) bool {
		count++
		if !refLess(a, b) {
			t.Errorf("pair (%v,%v) not normalized", a, b)
		}
		if !(a == pRef(1) && b == pRef(2)) {
			t.Errorf("unexpected pair (%v,%v)", a, b)
		}
		return true
	})
	if count != 1 {
		t.Errorf("pair emitted %d times, want exactly once", count)
	}
}

func TestEnumeratePairsEarlyExit(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	// Several co-located entities produce many pairs
	for i := int32(0); i < 6; i++ {
		g.Insert(pRef(i), NewAABB(1, 1, 4, 4))
	}

	calls := 0
	g.EnumeratePairs(func(a, b EntityRef) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("enumeration continued after false: %d callbacks", calls)
	}
}

func TestEnumeratePairsDisjointEntitiesSilent(t *testing.T) {
	g := NewSpatialGrid(10, 0, 0)
	g.Insert(pRef(1), NewAABB(0, 0, 5, 5))
	g.Insert(pRef(2), NewAABB(100, 100, 105, 105))

	g.EnumeratePairs(func(a, b EntityRef) bool {
		t.Errorf("no pair expected, got (%v,%v)", a, b)
		return true
	})
}
