package main

import "math"

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte  // 'p'=player, 'r'=projectile, 'm'=mob, 'a'=asteroid, 'k'=pickup
	Idx  int32 // stable per-kind entity id
}

// refLess orders refs by Kind, then Idx. Used to normalize pairs.
func refLess(a, b EntityRef) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Idx < b.Idx
}

// CellKey packs two biased 32-bit cell coordinates into one uint64 so
// that plain uint64 comparison of keys matches row-major comparison of
// (ix, iy). The merge-diff in Update depends on this ordering; a hash
// of the pair would not work here.
type CellKey uint64

const cellKeySignBit = 0x80000000

func packCellKey(ix, iy int32) CellKey {
	return CellKey(uint64(uint32(ix)^cellKeySignBit)<<32 | uint64(uint32(iy)^cellKeySignBit))
}

func unpackCellKey(key CellKey) (ix, iy int32) {
	ix = int32(uint32(key>>32) ^ cellKeySignBit)
	iy = int32(uint32(key) ^ cellKeySignBit)
	return
}

// gridEntry is the per-entity record: the last AABB the caller gave us
// and the sorted cell keys whose buckets currently list the entity.
// The two are kept in lockstep by Insert/Update/Remove.
type gridEntry struct {
	aabb  AABB
	cells []CellKey
}

// bucketReserve is the initial capacity of a freshly created bucket.
// Occupancy is typically sparse, so keep it small.
const bucketReserve = 4

// SpatialGrid is a uniform hash grid used as the broad phase for
// collision and proximity queries. It maps each entity's AABB to the
// grid cells it covers and answers region, raycast and sweep queries
// with candidate sets; callers do the exact narrow-phase tests.
//
// The grid is maintained incrementally: Update only touches buckets
// for cells the entity entered or left, so per-frame cost follows the
// change in coverage, not the entity count. Not safe for concurrent
// use; the owning tick loop serializes all calls.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	entries     map[EntityRef]*gridEntry
	buckets     map[CellKey][]EntityRef
	keyScratch  []CellKey // reused by Update to compute new coverage
}

// NewSpatialGrid creates a grid with the given cell size. reserve and
// estimateCells pre-size the entry and bucket maps; they only affect
// allocation, never results. A non-positive cell size is a programmer
// error and panics.
func NewSpatialGrid(cellSize float64, reserve, estimateCells int) *SpatialGrid {
	if cellSize <= 0 {
		panic("SpatialGrid: cell size must be positive")
	}
	if reserve < 0 {
		reserve = 0
	}
	if estimateCells < 0 {
		estimateCells = 0
	}
	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		entries:     make(map[EntityRef]*gridEntry, reserve),
		buckets:     make(map[CellKey][]EntityRef, estimateCells),
	}
}

// Len returns the number of tracked entities
func (g *SpatialGrid) Len() int {
	return len(g.entries)
}

// CellSize returns the configured cell size
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

func (g *SpatialGrid) cellCoord(v float64) int32 {
	return int32(math.Floor(v * g.invCellSize))
}

// coverCells appends the keys of every cell overlapping box to buf, in
// ascending key order (ix-major, matching packed-key order).
func (g *SpatialGrid) coverCells(box AABB, buf []CellKey) []CellKey {
	minX := g.cellCoord(box.Min.X)
	maxX := g.cellCoord(box.Max.X)
	minY := g.cellCoord(box.Min.Y)
	maxY := g.cellCoord(box.Max.Y)
	for ix := minX; ix <= maxX; ix++ {
		for iy := minY; iy <= maxY; iy++ {
			buf = append(buf, packCellKey(ix, iy))
		}
	}
	return buf
}

func (g *SpatialGrid) bucketAdd(key CellKey, ref EntityRef) {
	bucket, ok := g.buckets[key]
	if !ok {
		bucket = make([]EntityRef, 0, bucketReserve)
	}
	g.buckets[key] = append(bucket, ref)
}

// bucketRemove deletes ref from the bucket via swap-and-pop and drops
// the bucket entirely once empty. Buckets are unordered, so moving the
// last element into the freed slot is fine.
func (g *SpatialGrid) bucketRemove(key CellKey, ref EntityRef) {
	bucket := g.buckets[key]
	for i := range bucket {
		if bucket[i] != ref {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket = bucket[:last]
		break
	}
	if len(bucket) == 0 {
		delete(g.buckets, key)
	} else {
		g.buckets[key] = bucket
	}
}

// Insert registers an entity with the given AABB. Returns false (and
// changes nothing) if the ref is already present.
func (g *SpatialGrid) Insert(ref EntityRef, box AABB) bool {
	if _, ok := g.entries[ref]; ok {
		return false
	}
	cells := g.coverCells(box, make([]CellKey, 0, 4))
	for _, key := range cells {
		g.bucketAdd(key, ref)
	}
	g.entries[ref] = &gridEntry{aabb: box, cells: cells}
	return true
}

// Remove deletes an entity from the grid. Unknown refs are a no-op.
func (g *SpatialGrid) Remove(ref EntityRef) {
	entry, ok := g.entries[ref]
	if !ok {
		return
	}
	for _, key := range entry.cells {
		g.bucketRemove(key, ref)
	}
	delete(g.entries, ref)
}

// Update moves an entity to a new AABB. Unknown refs are inserted.
// An AABB identical to the cached one returns immediately; an AABB
// with the same cell footprint just overwrites the cached box. Only
// when the footprint changed does Update touch buckets, and then only
// for cells entered or left, found by a two-cursor merge over the old
// and new sorted key lists.
func (g *SpatialGrid) Update(ref EntityRef, box AABB) {
	entry, ok := g.entries[ref]
	if !ok {
		g.Insert(ref, box)
		return
	}
	if box == entry.aabb {
		return
	}

	newCells := g.coverCells(box, g.keyScratch[:0])
	g.keyScratch = newCells

	if cellKeysEqual(entry.cells, newCells) {
		entry.aabb = box
		return
	}

	oldCells := entry.cells
	i, j := 0, 0
	for i < len(oldCells) && j < len(newCells) {
		switch {
		case oldCells[i] == newCells[j]:
			i++
			j++
		case oldCells[i] < newCells[j]: // left this cell
			g.bucketRemove(oldCells[i], ref)
			i++
		default: // entered this cell
			g.bucketAdd(newCells[j], ref)
			j++
		}
	}
	for ; i < len(oldCells); i++ {
		g.bucketRemove(oldCells[i], ref)
	}
	for ; j < len(newCells); j++ {
		g.bucketAdd(newCells[j], ref)
	}

	entry.aabb = box
	entry.cells = append(entry.cells[:0], newCells...)
}

// EntityAABB returns the cached AABB for a ref, or false if unknown
func (g *SpatialGrid) EntityAABB(ref EntityRef) (AABB, bool) {
	entry, ok := g.entries[ref]
	if !ok {
		return AABB{}, false
	}
	return entry.aabb, true
}

func cellKeysEqual(a, b []CellKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
