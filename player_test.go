package main

import (
	"math"
	"testing"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer(7, "TestPilot", 2000, 2000)
	if p.ID != 7 {
		t.Errorf("expected ID 7, got %d", p.ID)
	}
	if p.Name != "TestPilot" {
		t.Errorf("expected name TestPilot, got %s", p.Name)
	}
	if p.HP != PlayerMaxHP {
		t.Errorf("expected HP %d, got %d", PlayerMaxHP, p.HP)
	}
	if !p.Alive {
		t.Error("expected player to be alive")
	}
	if p.X < 0 || p.X > 2000 || p.Y < 0 || p.Y > 2000 {
		t.Errorf("spawn out of bounds: (%f, %f)", p.X, p.Y)
	}
}

func TestPlayerUpdate(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)
	p.X, p.Y = 100, 100
	p.TargetR = 0 // facing right
	p.Update(1.0 / 60.0)

	// Player should have picked up speed
	if p.VX == 0 && p.VY == 0 {
		t.Error("expected velocity change after update")
	}
}

func TestPlayerBoundsFollowPosition(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)
	p.X, p.Y = 300, 400

	b := p.Bounds()
	want := AABBFromCircle(Vec2{300, 400}, PlayerRadius)
	if b != want {
		t.Errorf("bounds %+v, want %+v", b, want)
	}
	if !b.Contains(Vec2{300, 400}) {
		t.Error("bounds should contain the center")
	}
}

func TestPlayerTakeDamage(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)

	died := p.TakeDamage(30)
	if died {
		t.Error("should not have died from 30 damage")
	}
	if p.HP != 70 {
		t.Errorf("expected HP 70, got %d", p.HP)
	}

	died = p.TakeDamage(80)
	if !died {
		t.Error("should have died from 80 more damage")
	}
	if p.Alive {
		t.Error("expected player to be dead")
	}
	if p.HP != 0 {
		t.Errorf("expected HP 0, got %d", p.HP)
	}
}

func TestPlayerRespawn(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)
	p.TakeDamage(p.HP)

	p.Respawn()
	if !p.Alive {
		t.Error("expected player to be alive after respawn")
	}
	if p.HP != PlayerMaxHP {
		t.Errorf("expected full HP, got %d", p.HP)
	}
}

func TestPlayerWorldWrap(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)
	p.X, p.Y = 1999, 1999
	p.VX, p.VY = 100, 100

	// Move with large dt to go past the boundary
	p.Update(0.5)
	if p.X >= 2000 || p.X < 0 {
		t.Errorf("X should wrap, got %f", p.X)
	}
	if p.Y >= 2000 || p.Y < 0 {
		t.Errorf("Y should wrap, got %f", p.Y)
	}
}

func TestPlayerCanFire(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)
	p.Firing = true
	p.FireCD = 0
	if !p.CanFire() {
		t.Error("should be able to fire")
	}

	p.FireCD = 0.1
	if p.CanFire() {
		t.Error("should not fire during cooldown")
	}

	p.FireCD = 0
	p.Alive = false
	if p.CanFire() {
		t.Error("dead player should not fire")
	}
}

func TestPlayerHeal(t *testing.T) {
	p := NewPlayer(1, "test", 2000, 2000)
	p.HP = 50

	p.Heal(30)
	if p.HP != 80 {
		t.Errorf("expected HP 80, got %d", p.HP)
	}

	p.Heal(100)
	if p.HP != PlayerMaxHP {
		t.Errorf("heal should cap at max HP, got %d", p.HP)
	}
}

func TestPlayerToState(t *testing.T) {
	p := NewPlayer(3, "Pilot", 2000, 2000)
	p.X, p.Y = 100, 200
	p.Rotation = math.Pi / 4
	p.HP = 80
	p.Score = 5

	s := p.ToState()
	if s.ID != 3 || s.Name != "Pilot" || s.X != 100 || s.Y != 200 {
		t.Error("state mismatch")
	}
	if s.HP != 80 || s.MaxHP != PlayerMaxHP || s.Score != 5 {
		t.Error("state field mismatch")
	}
}
