package main

import (
	"math"
	"math/rand"
)

const (
	PlayerRadius   = 20.0
	PlayerMaxHP    = 100
	PlayerAccel    = 600.0 // pixels/s²
	PlayerMaxSpeed = 350.0 // pixels/s
	PlayerFriction = 0.97  // velocity multiplier per tick
	PlayerBoostMul = 1.6   // boost speed multiplier
	FireCooldown   = 0.15  // seconds between shots
	RespawnTime    = 3.0   // seconds before respawn
	TurnSpeed      = 8.0   // radians/s max turn rate
)

// Player represents a player ship in the simulation
type Player struct {
	ID       int32
	Name     string
	X, Y     float64
	VX, VY   float64
	Rotation float64
	HP       int
	MaxHP    int
	Score    int
	Alive    bool
	FireCD   float64 // fire cooldown remaining
	RespawnT float64 // respawn timer remaining
	TargetR  float64 // target rotation (toward pointer)
	Firing   bool
	Boosting bool
	worldW   float64
	worldH   float64
}

// NewPlayer creates a new player at a random position
func NewPlayer(id int32, name string, worldW, worldH float64) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		X:      worldW/4 + rand.Float64()*worldW/2,
		Y:      worldH/4 + rand.Float64()*worldH/2,
		HP:     PlayerMaxHP,
		MaxHP:  PlayerMaxHP,
		Alive:  true,
		worldW: worldW,
		worldH: worldH,
	}
}

// Ref returns the player's grid handle
func (p *Player) Ref() EntityRef {
	return EntityRef{Kind: 'p', Idx: p.ID}
}

// Bounds returns the player's current broad-phase AABB
func (p *Player) Bounds() AABB {
	return AABBFromCircle(Vec2{p.X, p.Y}, PlayerRadius)
}

// Update moves the player one tick (dt in seconds). Returns true while
// the player is alive, so the caller knows whether to re-index it.
func (p *Player) Update(dt float64) bool {
	if !p.Alive {
		p.RespawnT -= dt
		if p.RespawnT <= 0 {
			p.Respawn()
			return true
		}
		return false
	}

	// Rotate toward target
	diff := NormalizeAngle(p.TargetR - p.Rotation)
	maxTurn := TurnSpeed * dt
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	p.Rotation += diff

	// Accelerate in facing direction
	accel := PlayerAccel * dt
	if p.Boosting {
		accel *= PlayerBoostMul
	}
	p.VX += math.Cos(p.Rotation) * accel
	p.VY += math.Sin(p.Rotation) * accel

	p.VX *= PlayerFriction
	p.VY *= PlayerFriction

	// Clamp speed
	maxSpd := PlayerMaxSpeed
	if p.Boosting {
		maxSpd *= PlayerBoostMul
	}
	speed := math.Sqrt(p.VX*p.VX + p.VY*p.VY)
	if speed > maxSpd {
		scale := maxSpd / speed
		p.VX *= scale
		p.VY *= scale
	}

	// Move
	p.X += p.VX * dt
	p.Y += p.VY * dt

	// Wrap around world edges
	if p.X < 0 {
		p.X += p.worldW
	} else if p.X > p.worldW {
		p.X -= p.worldW
	}
	if p.Y < 0 {
		p.Y += p.worldH
	} else if p.Y > p.worldH {
		p.Y -= p.worldH
	}

	// Cooldown
	if p.FireCD > 0 {
		p.FireCD -= dt
	}
	return true
}

// Respawn resets the player after death
func (p *Player) Respawn() {
	p.X = p.worldW/4 + rand.Float64()*p.worldW/2
	p.Y = p.worldH/4 + rand.Float64()*p.worldH/2
	p.VX = 0
	p.VY = 0
	p.HP = PlayerMaxHP
	p.Alive = true
	p.FireCD = 0
	p.RespawnT = 0
}

// TakeDamage reduces HP and returns true if player died
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		p.RespawnT = RespawnTime
		return true
	}
	return false
}

// Heal restores HP up to the maximum
func (p *Player) Heal(amount int) {
	if !p.Alive {
		return
	}
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
}

// CanFire returns true if the player can fire a projectile
func (p *Player) CanFire() bool {
	return p.Alive && p.Firing && p.FireCD <= 0
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:    p.ID,
		Name:  p.Name,
		X:     round1(p.X),
		Y:     round1(p.Y),
		R:     round1(p.Rotation),
		VX:    round1(p.VX),
		VY:    round1(p.VY),
		HP:    p.HP,
		MaxHP: p.MaxHP,
		Score: p.Score,
		Alive: p.Alive,
		Boost: p.Boosting,
	}
}
