package main

import "math"

// Narrow-phase tests. The spatial grid only proposes candidates whose
// cells overlap a query; these are the exact checks that confirm or
// reject a contact.

// CheckCollision checks if two circles overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// segmentCircleIntersect checks if a line segment (x1,y1)-(x2,y2)
// intersects a circle at (cx,cy) with radius r. Used to confirm hits
// for fast projectiles: the segment is the projectile's motion over
// one tick, the circle is the target inflated by the projectile radius.
func segmentCircleIntersect(x1, y1, x2, y2, cx, cy, r float64) bool {
	return segmentCircleHitT(x1, y1, x2, y2, cx, cy, r) >= 0
}

// segmentCircleHitT returns the earliest t in [0,1] at which the
// segment enters the circle, or -1 when it misses. Lets the caller
// resolve the first of several confirmed hits along a sweep.
func segmentCircleHitT(x1, y1, x2, y2, cx, cy, r float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	fx := x1 - cx
	fy := y1 - cy
	a := dx*dx + dy*dy
	if a == 0 {
		if fx*fx+fy*fy <= r*r {
			return 0
		}
		return -1
	}
	b := 2 * (fx*dx + fy*dy)
	c := fx*fx + fy*fy - r*r
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return -1
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	t2 := (-b + discriminant) / (2 * a)
	if t1 >= 0 && t1 <= 1 {
		return t1
	}
	if t1 < 0 && t2 >= 0 {
		return 0 // started inside the circle
	}
	return -1
}
