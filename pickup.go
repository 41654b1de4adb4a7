package main

import "math/rand"

const (
	PickupRadius  = 15.0
	PickupHeal    = 20
	PickupTimeout = 30.0
)

// Pickup is a health orb that heals on contact. Collection goes
// through the grid: a pickup is collected when it shows up in a
// player's neighbor query and the circle test confirms the touch.
type Pickup struct {
	ID    int32
	X, Y  float64
	Life  float64
	Alive bool
}

// NewPickup spawns a pickup at a random position away from edges
func NewPickup(id int32, worldW, worldH float64) *Pickup {
	return &Pickup{
		ID:    id,
		X:     50 + rand.Float64()*(worldW-100),
		Y:     50 + rand.Float64()*(worldH-100),
		Life:  PickupTimeout,
		Alive: true,
	}
}

// Ref returns the pickup's grid handle
func (p *Pickup) Ref() EntityRef {
	return EntityRef{Kind: 'k', Idx: p.ID}
}

// Bounds returns the pickup's broad-phase AABB
func (p *Pickup) Bounds() AABB {
	return AABBFromCircle(Vec2{p.X, p.Y}, PickupRadius)
}

// Update ticks down the pickup lifetime
func (p *Pickup) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.Life -= dt
	if p.Life <= 0 {
		p.Alive = false
	}
}

// ToState converts to protocol state
func (p *Pickup) ToState() PickupState {
	return PickupState{
		ID: p.ID,
		X:  round1(p.X),
		Y:  round1(p.Y),
	}
}
