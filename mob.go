package main

import (
	"math"
	"math/rand"
)

const (
	MobRadius        = 20.0
	MobMaxHP         = 60
	MobSpeed         = 180.0
	MobDetectRange   = 655.0 // perception query half-extent
	MobShootRange    = 900.0 // start shooting when this close
	MobShootRangeSq  = MobShootRange * MobShootRange
	MobAccel         = 200.0
	MobFriction      = 0.96
	MobTurnSpeed     = 4.0
	MobKillScore     = 5
	MobCollisionDmg  = 30
	MobBurstSize     = 5
	MobBurstFireRate = 0.15 // seconds between shots in a burst
	MobBurstCooldown = 5.0  // seconds between bursts
	MobWanderDrift   = 1.0  // max radians/s the wander angle changes
	MobWanderTurn    = 1.5  // how fast mob turns toward wander heading (rad/s)

	MobDodgeLookahead = 0.35 // seconds of projectile flight checked for threats
	MobDodgeImpulse   = 120.0
	MobDodgeCooldown  = 0.3
)

// Mob is an AI-controlled enemy ship. Perception runs through the
// spatial grid: the game queries a detection box around the mob and
// hands over whatever players it found.
type Mob struct {
	ID          int32
	X, Y        float64
	VX, VY      float64
	Rotation    float64
	HP          int
	MaxHP       int
	Alive       bool
	FireCD      float64
	BurstCD     float64
	BurstLeft   int
	DodgeCD     float64
	WanderAngle float64
	worldW      float64
	worldH      float64
}

// NewMob spawns a mob at a random map edge facing the center
func NewMob(id int32, worldW, worldH float64) *Mob {
	m := &Mob{
		ID:     id,
		HP:     MobMaxHP,
		MaxHP:  MobMaxHP,
		Alive:  true,
		worldW: worldW,
		worldH: worldH,
	}

	// Pick a random edge: 0=left, 1=right, 2=top, 3=bottom
	edge := int(rand.Float64() * 4)
	switch edge {
	case 0:
		m.X = 0
		m.Y = rand.Float64() * worldH
	case 1:
		m.X = worldW
		m.Y = rand.Float64() * worldH
	case 2:
		m.X = rand.Float64() * worldW
		m.Y = 0
	default:
		m.X = rand.Float64() * worldW
		m.Y = worldH
	}

	m.Rotation = math.Atan2(worldH/2-m.Y, worldW/2-m.X)
	m.WanderAngle = m.Rotation
	return m
}

// Ref returns the mob's grid handle
func (m *Mob) Ref() EntityRef {
	return EntityRef{Kind: 'm', Idx: m.ID}
}

// Bounds returns the mob's broad-phase AABB
func (m *Mob) Bounds() AABB {
	return AABBFromCircle(Vec2{m.X, m.Y}, MobRadius)
}

// SenseBounds is the region the game queries for this mob's perception
func (m *Mob) SenseBounds() AABB {
	return AABBFromCircle(Vec2{m.X, m.Y}, MobDetectRange)
}

// Update steers and moves the mob one tick. target is the nearest
// perceived player (nil when perception found none). Returns true if
// the mob wants to fire this tick.
func (m *Mob) Update(dt float64, target *Player) bool {
	if !m.Alive {
		return false
	}

	if m.FireCD > 0 {
		m.FireCD -= dt
	}
	if m.BurstCD > 0 {
		m.BurstCD -= dt
	}
	if m.DodgeCD > 0 {
		m.DodgeCD -= dt
	}

	var targetDistSq float64
	if target != nil {
		dist := Distance(m.X, m.Y, target.X, target.Y)
		targetDistSq = dist * dist

		// Lead targeting: aim at the predicted position
		timeToHit := dist / ProjectileSpeed
		leadX := target.X + target.VX*timeToHit
		leadY := target.Y + target.VY*timeToHit

		desiredR := math.Atan2(leadY-m.Y, leadX-m.X)
		diff := NormalizeAngle(desiredR - m.Rotation)
		maxTurn := MobTurnSpeed * dt
		if diff > maxTurn {
			diff = maxTurn
		} else if diff < -maxTurn {
			diff = -maxTurn
		}
		m.Rotation += diff

		accel := MobAccel * dt
		m.VX += math.Cos(m.Rotation) * accel
		m.VY += math.Sin(m.Rotation) * accel
	} else {
		// Wander: drift the wander angle gently, then turn toward it
		m.WanderAngle += (rand.Float64()*2 - 1) * MobWanderDrift * dt
		diff := NormalizeAngle(m.WanderAngle - m.Rotation)
		maxTurn := MobWanderTurn * dt
		if diff > maxTurn {
			diff = maxTurn
		} else if diff < -maxTurn {
			diff = -maxTurn
		}
		m.Rotation += diff

		accel := MobAccel * dt
		m.VX += math.Cos(m.Rotation) * accel
		m.VY += math.Sin(m.Rotation) * accel
	}

	m.VX *= MobFriction
	m.VY *= MobFriction

	speed := math.Sqrt(m.VX*m.VX + m.VY*m.VY)
	if speed > MobSpeed {
		scale := MobSpeed / speed
		m.VX *= scale
		m.VY *= scale
	}

	m.X += m.VX * dt
	m.Y += m.VY * dt

	// Wrap around world edges
	if m.X < 0 {
		m.X += m.worldW
	} else if m.X > m.worldW {
		m.X -= m.worldW
	}
	if m.Y < 0 {
		m.Y += m.worldH
	} else if m.Y > m.worldH {
		m.Y -= m.worldH
	}

	// Burst fire
	wantFire := false
	if target != nil && targetDistSq < MobShootRangeSq {
		if m.BurstLeft > 0 && m.FireCD <= 0 {
			wantFire = true
			m.BurstLeft--
			m.FireCD = MobBurstFireRate
			if m.BurstLeft == 0 {
				m.BurstCD = MobBurstCooldown
			}
		} else if m.BurstLeft == 0 && m.BurstCD <= 0 {
			m.BurstLeft = MobBurstSize
			wantFire = true
			m.BurstLeft--
			m.FireCD = MobBurstFireRate
			if m.BurstLeft == 0 {
				m.BurstCD = MobBurstCooldown
			}
		}
	}

	return wantFire
}

// Dodge applies a lateral impulse away from an incoming projectile
// heading (pvx, pvy). No-op while the dodge cooldown runs.
func (m *Mob) Dodge(px, py, pvx, pvy float64) {
	if m.DodgeCD > 0 {
		return
	}
	perpX := -pvy
	perpY := pvx
	perpLen := math.Sqrt(perpX*perpX + perpY*perpY)
	if perpLen == 0 {
		return
	}
	perpX /= perpLen
	perpY /= perpLen

	// Pick the side that moves away from the projectile path
	dx := m.X - px
	dy := m.Y - py
	if dx*pvy-dy*pvx >= 0 {
		perpX = -perpX
		perpY = -perpY
	}
	m.VX += perpX * MobDodgeImpulse
	m.VY += perpY * MobDodgeImpulse
	m.DodgeCD = MobDodgeCooldown
}

// TakeDamage reduces HP and returns true if mob died
func (m *Mob) TakeDamage(dmg int) bool {
	if !m.Alive {
		return false
	}
	m.HP -= dmg
	if m.HP <= 0 {
		m.HP = 0
		m.Alive = false
		return true
	}
	return false
}

// ToState converts to protocol state
func (m *Mob) ToState() MobState {
	return MobState{
		ID:    m.ID,
		X:     round1(m.X),
		Y:     round1(m.Y),
		R:     round1(m.Rotation),
		HP:    m.HP,
		MaxHP: m.MaxHP,
		Alive: m.Alive,
	}
}
