package main

// dedupSetThreshold is the candidate-count estimate above which query
// dedup switches from linear scans of the output list to a membership
// set. Small result sets are cheaper to scan than to hash.
const dedupSetThreshold = 16

// GridScratch holds reusable buffers for the *Buf query variants. A
// caller issuing the same query shape every frame keeps one of these
// around; after a few frames the buffers reach their working size and
// queries stop allocating. The slice returned by a *Buf call aliases
// the scratch and is valid until the next call with the same scratch.
type GridScratch struct {
	out   []EntityRef
	seen  map[EntityRef]struct{}
	cells []CellKey
}

// NewGridScratch creates an empty scratch buffer set
func NewGridScratch() *GridScratch {
	return &GridScratch{}
}

func (s *GridScratch) reset() {
	s.out = s.out[:0]
	s.cells = s.cells[:0]
}

// collectCells appends the unique contents of the given buckets to
// s.out, picking the dedup strategy from the summed bucket sizes.
// Correctness is identical on both paths; only the constant factor
// differs.
func (g *SpatialGrid) collectCells(cells []CellKey, s *GridScratch) []EntityRef {
	estimate := 0
	for _, key := range cells {
		estimate += len(g.buckets[key])
	}

	if estimate <= dedupSetThreshold {
		for _, key := range cells {
			for _, ref := range g.buckets[key] {
				dup := false
				for _, have := range s.out {
					if have == ref {
						dup = true
						break
					}
				}
				if !dup {
					s.out = append(s.out, ref)
				}
			}
		}
		return s.out
	}

	if s.seen == nil {
		s.seen = make(map[EntityRef]struct{}, estimate)
	} else {
		clear(s.seen)
	}
	for _, key := range cells {
		for _, ref := range g.buckets[key] {
			if _, dup := s.seen[ref]; dup {
				continue
			}
			s.seen[ref] = struct{}{}
			s.out = append(s.out, ref)
		}
	}
	return s.out
}

// Query returns the unique refs whose coverage shares at least one
// cell with box. Candidates only: caller confirms actual overlap.
func (g *SpatialGrid) Query(box AABB) []EntityRef {
	return g.QueryBuf(box, &GridScratch{})
}

// QueryBuf is Query with caller-owned scratch buffers
func (g *SpatialGrid) QueryBuf(box AABB, s *GridScratch) []EntityRef {
	s.reset()
	s.cells = g.coverCells(box, s.cells)
	return g.collectCells(s.cells, s)
}

// Neighbors returns every ref other than ref itself that shares a
// cell with ref's cached AABB. Unknown refs get an empty result.
func (g *SpatialGrid) Neighbors(ref EntityRef) []EntityRef {
	return g.NeighborsBuf(ref, &GridScratch{})
}

// NeighborsBuf is Neighbors with caller-owned scratch buffers
func (g *SpatialGrid) NeighborsBuf(ref EntityRef, s *GridScratch) []EntityRef {
	entry, ok := g.entries[ref]
	if !ok {
		s.reset()
		return s.out
	}
	out := g.QueryBuf(entry.aabb, s)
	for i, have := range out {
		if have == ref {
			last := len(out) - 1
			out[i] = out[last]
			out = out[:last]
			break
		}
	}
	s.out = out
	return out
}

// EnumeratePairs invokes fn for every unordered pair of refs sharing
// at least one cell, each pair exactly once even when the pair shares
// several cells. Pairs are normalized so refLess(a, b) holds. fn
// returning false stops the whole enumeration immediately.
func (g *SpatialGrid) EnumeratePairs(fn func(a, b EntityRef) bool) {
	emitted := make(map[[2]EntityRef]struct{})
	for _, bucket := range g.buckets {
		if len(bucket) < 2 {
			continue
		}
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if refLess(b, a) {
					a, b = b, a
				}
				pair := [2]EntityRef{a, b}
				if _, dup := emitted[pair]; dup {
					continue
				}
				emitted[pair] = struct{}{}
				if !fn(a, b) {
					return
				}
			}
		}
	}
}
