package main

// Vec2 is a 2D point or vector
type Vec2 struct {
	X, Y float64
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// AABB is an axis-aligned bounding box. Equality is exact struct
// equality, which the grid relies on to short-circuit no-op updates.
type AABB struct {
	Min, Max Vec2
}

// NewAABB builds a box from min/max corner coordinates
func NewAABB(minX, minY, maxX, maxY float64) AABB {
	return AABB{Min: Vec2{minX, minY}, Max: Vec2{maxX, maxY}}
}

// AABBFromCircle returns the bounding box of a circle
func AABBFromCircle(center Vec2, radius float64) AABB {
	return AABB{
		Min: Vec2{center.X - radius, center.Y - radius},
		Max: Vec2{center.X + radius, center.Y + radius},
	}
}

// Center returns the box midpoint
func (b AABB) Center() Vec2 {
	return Vec2{(b.Min.X + b.Max.X) * 0.5, (b.Min.Y + b.Max.Y) * 0.5}
}

// Extent returns the half-size of the box on each axis
func (b AABB) Extent() Vec2 {
	return Vec2{(b.Max.X - b.Min.X) * 0.5, (b.Max.Y - b.Min.Y) * 0.5}
}

// Inflate grows (or shrinks, for negative m) the box by m on every side
func (b AABB) Inflate(m float64) AABB {
	return AABB{
		Min: Vec2{b.Min.X - m, b.Min.Y - m},
		Max: Vec2{b.Max.X + m, b.Max.Y + m},
	}
}

// Contains reports whether the point lies inside the box (inclusive)
func (b AABB) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Intersects reports whether the two boxes overlap (touching counts)
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}
