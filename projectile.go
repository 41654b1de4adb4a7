package main

import "math"

const (
	ProjectileSpeed    = 800.0 // pixels/s
	ProjectileLifetime = 2.0   // seconds
	ProjectileRadius   = 4.0
	ProjectileDamage   = 20
	ProjectileOffset   = 30.0 // spawn distance from ship center
)

// Projectile is a fast-moving laser bolt. At ProjectileSpeed it
// crosses several grid cells per tick, so hit detection sweeps its
// motion segment instead of sampling the end position.
type Projectile struct {
	ID           int32
	OwnerRef     EntityRef // shooter's grid handle, skipped during hit tests
	X, Y         float64
	PrevX, PrevY float64 // position at the start of the current tick
	VX, VY       float64
	Rotation     float64
	Life         float64
	Damage       int
	Alive        bool
}

// NewProjectile spawns a bolt from a shooter's position and facing.
// Inherits a fraction of the shooter's velocity.
func NewProjectile(id int32, owner EntityRef, x, y, rotation, vx, vy float64) *Projectile {
	bvx := math.Cos(rotation) * ProjectileSpeed
	bvy := math.Sin(rotation) * ProjectileSpeed
	px := x + math.Cos(rotation)*ProjectileOffset
	py := y + math.Sin(rotation)*ProjectileOffset
	return &Projectile{
		ID:       id,
		OwnerRef: owner,
		X:        px,
		Y:        py,
		PrevX:    px,
		PrevY:    py,
		VX:       bvx + vx*0.3,
		VY:       bvy + vy*0.3,
		Rotation: rotation,
		Life:     ProjectileLifetime,
		Damage:   ProjectileDamage,
		Alive:    true,
	}
}

// Ref returns the projectile's grid handle
func (pr *Projectile) Ref() EntityRef {
	return EntityRef{Kind: 'r', Idx: pr.ID}
}

// Bounds returns the projectile's broad-phase AABB at its current position
func (pr *Projectile) Bounds() AABB {
	return AABBFromCircle(Vec2{pr.X, pr.Y}, ProjectileRadius)
}

// Update advances the projectile one tick, remembering the previous
// position for the sweep test
func (pr *Projectile) Update(dt float64) {
	if !pr.Alive {
		return
	}
	pr.PrevX = pr.X
	pr.PrevY = pr.Y
	pr.X += pr.VX * dt
	pr.Y += pr.VY * dt
	pr.Life -= dt
	if pr.Life <= 0 {
		pr.Alive = false
	}
}

// ToState converts to protocol state
func (pr *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    pr.ID,
		X:     round1(pr.X),
		Y:     round1(pr.Y),
		R:     round1(pr.Rotation),
		Owner: pr.OwnerRef.Idx,
	}
}
