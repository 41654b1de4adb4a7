package main

import "math"

// traverseCells walks the grid cells intersected by the segment a→b
// in order, DDA style: step one axis at a time toward the nearest cell
// boundary. visit gets each cell's coordinates plus the parametric
// t in [0,1] at which the segment entered it; t never decreases across
// the walk. visit returning false stops the walk. A degenerate segment
// (a == b) visits exactly the one cell containing the point.
func (g *SpatialGrid) traverseCells(a, b Vec2, visit func(ix, iy int32, t float64) bool) {
	ix := g.cellCoord(a.X)
	iy := g.cellCoord(a.Y)
	endX := g.cellCoord(b.X)
	endY := g.cellCoord(b.Y)

	if !visit(ix, iy, 0) {
		return
	}

	dx := b.X - a.X
	dy := b.Y - a.Y

	var stepX, stepY int32
	tMaxX, tMaxY := math.Inf(1), math.Inf(1)
	tDeltaX, tDeltaY := math.Inf(1), math.Inf(1)

	if dx > 0 {
		stepX = 1
		tMaxX = ((float64(ix)+1)*g.cellSize - a.X) / dx
		tDeltaX = g.cellSize / dx
	} else if dx < 0 {
		stepX = -1
		tMaxX = (float64(ix)*g.cellSize - a.X) / dx
		tDeltaX = -g.cellSize / dx
	}
	if dy > 0 {
		stepY = 1
		tMaxY = ((float64(iy)+1)*g.cellSize - a.Y) / dy
		tDeltaY = g.cellSize / dy
	} else if dy < 0 {
		stepY = -1
		tMaxY = (float64(iy)*g.cellSize - a.Y) / dy
		tDeltaY = -g.cellSize / dy
	}

	// The walk takes exactly one axis step per visited cell, so the
	// remaining manhattan distance bounds the loop even if boundary
	// rounding keeps tMax fractionally below 1 at the last cell.
	steps := absInt32(endX-ix) + absInt32(endY-iy)
	for ; steps > 0; steps-- {
		var t float64
		if tMaxX < tMaxY {
			ix += stepX
			t = tMaxX
			tMaxX += tDeltaX
		} else {
			iy += stepY
			t = tMaxY
			tMaxY += tDeltaY
		}
		if t > 1 {
			t = 1
		}
		if !visit(ix, iy, t) {
			return
		}
	}
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// PointCandidates returns everything bucketed in the single cell
// containing p, without any exact test.
func (g *SpatialGrid) PointCandidates(p Vec2) []EntityRef {
	return g.PointCandidatesBuf(p, &GridScratch{})
}

// PointCandidatesBuf is PointCandidates with caller-owned buffers
func (g *SpatialGrid) PointCandidatesBuf(p Vec2, s *GridScratch) []EntityRef {
	s.reset()
	key := packCellKey(g.cellCoord(p.X), g.cellCoord(p.Y))
	s.out = append(s.out, g.buckets[key]...)
	return s.out
}

// PointContaining returns the refs whose cached AABB actually contains
// p. Point-in-box is cheap enough that the grid applies this one
// narrow-phase test itself.
func (g *SpatialGrid) PointContaining(p Vec2) []EntityRef {
	return g.PointContainingBuf(p, &GridScratch{})
}

// PointContainingBuf is PointContaining with caller-owned buffers
func (g *SpatialGrid) PointContainingBuf(p Vec2, s *GridScratch) []EntityRef {
	out := g.PointCandidatesBuf(p, s)
	kept := out[:0]
	for _, ref := range out {
		if entry, ok := g.entries[ref]; ok && entry.aabb.Contains(p) {
			kept = append(kept, ref)
		}
	}
	s.out = kept
	return kept
}

// Raycast gathers the unique refs bucketed in every cell the segment
// from→to passes through. Candidates only; callers run the exact
// segment-vs-shape test.
func (g *SpatialGrid) Raycast(from, to Vec2) []EntityRef {
	return g.RaycastBuf(from, to, &GridScratch{})
}

// RaycastBuf is Raycast with caller-owned scratch buffers
func (g *SpatialGrid) RaycastBuf(from, to Vec2, s *GridScratch) []EntityRef {
	s.reset()
	g.traverseCells(from, to, func(ix, iy int32, _ float64) bool {
		s.cells = append(s.cells, packCellKey(ix, iy))
		return true
	})
	return g.collectCells(s.cells, s)
}

// RaycastDilated is Raycast with the corridor widened by inflateBy on
// each side, approximating a thick ray or swept point.
func (g *SpatialGrid) RaycastDilated(from, to Vec2, inflateBy float64) []EntityRef {
	return g.RaycastDilatedBuf(from, to, inflateBy, &GridScratch{})
}

// RaycastDilatedBuf is RaycastDilated with caller-owned buffers
func (g *SpatialGrid) RaycastDilatedBuf(from, to Vec2, inflateBy float64, s *GridScratch) []EntityRef {
	s.reset()
	s.cells = g.sweptCells(from, to, inflateBy, inflateBy, s.cells)
	return g.collectCells(s.cells, s)
}

// SweptAABBCandidates gathers candidates from every cell a box of the
// given half-extent could touch while its center moves from→to. The
// cover is conservative: it may include cells the swept shape misses,
// but never omits one it touches — the broad-phase contract for CCD.
func (g *SpatialGrid) SweptAABBCandidates(from, to Vec2, halfExtent Vec2) []EntityRef {
	return g.SweptAABBCandidatesBuf(from, to, halfExtent, &GridScratch{})
}

// SweptAABBCandidatesBuf is SweptAABBCandidates with caller buffers
func (g *SpatialGrid) SweptAABBCandidatesBuf(from, to Vec2, halfExtent Vec2, s *GridScratch) []EntityRef {
	s.reset()
	s.cells = g.sweptCells(from, to, halfExtent.X, halfExtent.Y, s.cells)
	return g.collectCells(s.cells, s)
}

// SweptCircleCandidates is SweptAABBCandidates for a circle of the
// given radius (covered by its bounding square, so still conservative).
func (g *SpatialGrid) SweptCircleCandidates(from, to Vec2, radius float64) []EntityRef {
	return g.SweptCircleCandidatesBuf(from, to, radius, &GridScratch{})
}

// SweptCircleCandidatesBuf is SweptCircleCandidates with caller buffers
func (g *SpatialGrid) SweptCircleCandidatesBuf(from, to Vec2, radius float64, s *GridScratch) []EntityRef {
	s.reset()
	s.cells = g.sweptCells(from, to, radius, radius, s.cells)
	return g.collectCells(s.cells, s)
}

// sweptCells appends the keys of every cell overlapped by a box with
// half-extents (hx, hy) whose center moves along the segment a→b. Per
// cell row it clips the center segment to the row's y-slab expanded by
// hy, takes the x-range the center spans inside that slab, expands it
// by hx and emits those cells. That is the exact corridor per row, so
// the union is a superset of everything the swept shape touches and
// contains no duplicate keys.
func (g *SpatialGrid) sweptCells(a, b Vec2, hx, hy float64, buf []CellKey) []CellKey {
	if hx < 0 {
		hx = 0
	}
	if hy < 0 {
		hy = 0
	}
	dx := b.X - a.X
	dy := b.Y - a.Y

	iy0 := g.cellCoord(math.Min(a.Y, b.Y) - hy)
	iy1 := g.cellCoord(math.Max(a.Y, b.Y) + hy)

	for iy := iy0; iy <= iy1; iy++ {
		slabMin := float64(iy)*g.cellSize - hy
		slabMax := (float64(iy)+1)*g.cellSize + hy

		t0, t1 := 0.0, 1.0
		if dy != 0 {
			ta := (slabMin - a.Y) / dy
			tb := (slabMax - a.Y) / dy
			if ta > tb {
				ta, tb = tb, ta
			}
			t0 = math.Max(0, ta)
			t1 = math.Min(1, tb)
			if t0 > t1 {
				continue
			}
		} else if a.Y < slabMin || a.Y > slabMax {
			continue
		}

		x0 := a.X + dx*t0
		x1 := a.X + dx*t1
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		ix0 := g.cellCoord(x0 - hx)
		ix1 := g.cellCoord(x1 + hx)
		for ix := ix0; ix <= ix1; ix++ {
			buf = append(buf, packCellKey(ix, iy))
		}
	}
	return buf
}
