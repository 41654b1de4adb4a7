package main

import "math/rand"

const (
	AsteroidMinRadius = 30.0
	AsteroidMaxRadius = 60.0
	AsteroidCrashDmg  = 40
)

// Asteroid is a static obstacle. Asteroids are inserted into the grid
// once at session start and never updated; ships and projectiles run
// into them, they never move.
type Asteroid struct {
	ID     int32
	X, Y   float64
	Radius float64
}

// NewAsteroid places an asteroid at a random position away from the edges
func NewAsteroid(id int32, worldW, worldH float64) *Asteroid {
	r := AsteroidMinRadius + rand.Float64()*(AsteroidMaxRadius-AsteroidMinRadius)
	return &Asteroid{
		ID:     id,
		X:      r + rand.Float64()*(worldW-2*r),
		Y:      r + rand.Float64()*(worldH-2*r),
		Radius: r,
	}
}

// Ref returns the asteroid's grid handle
func (a *Asteroid) Ref() EntityRef {
	return EntityRef{Kind: 'a', Idx: a.ID}
}

// Bounds returns the asteroid's broad-phase AABB
func (a *Asteroid) Bounds() AABB {
	return AABBFromCircle(Vec2{a.X, a.Y}, a.Radius)
}

// ToState converts to protocol state
func (a *Asteroid) ToState() AsteroidState {
	return AsteroidState{
		ID: a.ID,
		X:  round1(a.X),
		Y:  round1(a.Y),
		R:  round1(a.Radius),
	}
}
