package main

import (
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu     sync.Mutex
	json   []interface{}
	binary [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.json = append(m.json, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

func (m *mockBroadcaster) jsonTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.json {
		if env, ok := msg.(Envelope); ok {
			out = append(out, env.T)
		}
	}
	return out
}

// newTestGame returns a game with the random level content cleared out,
// so tests control exactly what is in the world
func newTestGame() *Game {
	g := NewGame(2000, 2000, 80, nil)
	g.mu.Lock()
	for id, m := range g.mobs {
		g.grid.Remove(m.Ref())
		delete(g.mobs, id)
	}
	for id, a := range g.asteroids {
		g.grid.Remove(a.Ref())
		delete(g.asteroids, id)
	}
	g.mu.Unlock()
	return g
}

func placePlayer(g *Game, p *Player, x, y float64) {
	g.mu.Lock()
	p.X, p.Y = x, y
	p.VX, p.VY = 0, 0
	p.Rotation, p.TargetR = 0, 0
	g.grid.Update(p.Ref(), p.Bounds())
	g.mu.Unlock()
}

func placeAsteroid(g *Game, id int32, x, y, r float64) *Asteroid {
	a := &Asteroid{ID: id, X: x, Y: y, Radius: r}
	g.mu.Lock()
	g.asteroids[a.ID] = a
	g.grid.Insert(a.Ref(), a.Bounds())
	g.mu.Unlock()
	return a
}

func TestGameAddRemovePlayer(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("TestPilot")
	if p.Name != "TestPilot" {
		t.Errorf("expected name TestPilot, got %s", p.Name)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}
	if _, ok := g.grid.EntityAABB(p.Ref()); !ok {
		t.Error("player should be indexed after AddPlayer")
	}

	g.RemovePlayer(p.ID)
	if g.PlayerCount() != 0 {
		t.Errorf("expected 0 players, got %d", g.PlayerCount())
	}
	if _, ok := g.grid.EntityAABB(p.Ref()); ok {
		t.Error("player should leave the index on removal")
	}
}

func TestGameRejectsWhenFull(t *testing.T) {
	g := newTestGame()
	for i := 0; i < maxPlayersPerSession; i++ {
		if g.AddPlayer("p") == nil {
			t.Fatalf("add %d should succeed", i)
		}
	}
	if g.AddPlayer("overflow") != nil {
		t.Error("add beyond capacity should fail")
	}
}

func TestGameHandleInput(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Test")

	input := ClientInput{
		MX:   p.X,
		MY:   p.Y + 100,
		Fire: true,
	}
	g.HandleInput(p.ID, input)

	g.mu.RLock()
	player := g.players[p.ID]
	g.mu.RUnlock()

	if !player.Firing {
		t.Error("player should be firing")
	}
	if player.TargetR < 1.5 || player.TargetR > 1.7 {
		t.Errorf("target rotation should point down, got %f", player.TargetR)
	}
}

func TestGameBroadcastsState(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Watcher")
	mock := &mockBroadcaster{}
	g.SetClient(p.ID, mock)

	for i := 0; i < BroadcastEvery; i++ {
		g.update()
	}

	mock.mu.Lock()
	frames := len(mock.binary)
	var data []byte
	if frames > 0 {
		data = mock.binary[0]
	}
	mock.mu.Unlock()

	if frames == 0 {
		t.Fatal("expected at least one binary state frame")
	}
	var state GameState
	if err := msgpack.Unmarshal(data, &state); err != nil {
		t.Fatalf("state frame should be msgpack: %v", err)
	}
	if len(state.Players) != 1 {
		t.Errorf("expected 1 player in state, got %d", len(state.Players))
	}
	if state.Tick == 0 {
		t.Error("state tick should advance")
	}
}

func TestGameProjectileCreation(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Shooter")
	p.Firing = true
	p.FireCD = 0

	g.update()

	g.mu.RLock()
	projCount := len(g.projectiles)
	g.mu.RUnlock()

	if projCount != 1 {
		t.Errorf("expected 1 projectile, got %d", projCount)
	}
	if p.FireCD <= 0 {
		t.Error("fire cooldown should be set after shooting")
	}
}

func TestGameProjectileExpires(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Shooter")
	placePlayer(g, p, 500, 500)

	g.mu.Lock()
	g.spawnProjectile(p.Ref(), p.X, p.Y, 0, 0, 0)
	var proj *Projectile
	for _, pr := range g.projectiles {
		proj = pr
	}
	proj.Life = 0.001
	g.mu.Unlock()

	g.update()

	g.mu.RLock()
	remaining := len(g.projectiles)
	_, indexed := g.grid.EntityAABB(proj.Ref())
	g.mu.RUnlock()

	if remaining != 0 {
		t.Errorf("expired projectile should be removed, %d left", remaining)
	}
	if indexed {
		t.Error("expired projectile should leave the index")
	}
}

func TestProjectileHitsTargetAcrossCells(t *testing.T) {
	g := newTestGame()
	shooter := g.AddPlayer("Shooter")
	target := g.AddPlayer("Target")
	placePlayer(g, shooter, 100, 100)
	placePlayer(g, target, 300, 100)

	// Bolt fired to the right; it crosses several cells per tick, so
	// the hit must come from the swept test, not the end position
	g.mu.Lock()
	g.spawnProjectile(shooter.Ref(), shooter.X, shooter.Y, 0, 0, 0)
	g.mu.Unlock()

	for i := 0; i < 30; i++ {
		g.update()
		if target.HP < PlayerMaxHP {
			break
		}
	}

	if target.HP != PlayerMaxHP-ProjectileDamage {
		t.Errorf("expected target HP %d, got %d", PlayerMaxHP-ProjectileDamage, target.HP)
	}
	g.mu.RLock()
	remaining := len(g.projectiles)
	g.mu.RUnlock()
	if remaining != 0 {
		t.Errorf("projectile should be consumed by the hit, %d left", remaining)
	}
}

func TestProjectileIgnoresOwner(t *testing.T) {
	g := newTestGame()
	shooter := g.AddPlayer("Shooter")
	placePlayer(g, shooter, 500, 500)

	// Bolt spawned on top of its owner must fly free
	g.mu.Lock()
	g.spawnProjectile(shooter.Ref(), shooter.X-ProjectileOffset, shooter.Y, 0, 0, 0)
	g.mu.Unlock()

	g.update()

	if shooter.HP != PlayerMaxHP {
		t.Errorf("owner should not be hit by own bolt, HP %d", shooter.HP)
	}
}

func TestShipAsteroidCrash(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Pilot")
	placePlayer(g, p, 600, 600)
	placeAsteroid(g, 9000, 610, 600, 40)

	g.update()

	if p.HP != PlayerMaxHP-AsteroidCrashDmg {
		t.Errorf("expected HP %d after crash, got %d", PlayerMaxHP-AsteroidCrashDmg, p.HP)
	}
}

func TestShipShipCollisionKillsBoth(t *testing.T) {
	g := newTestGame()
	p1 := g.AddPlayer("A")
	p2 := g.AddPlayer("B")
	mock1 := &mockBroadcaster{}
	mock2 := &mockBroadcaster{}
	g.SetClient(p1.ID, mock1)
	g.SetClient(p2.ID, mock2)
	placePlayer(g, p1, 400, 400)
	placePlayer(g, p2, 410, 400)

	g.update()

	if p1.Alive || p2.Alive {
		t.Error("head-on ship collision should kill both players")
	}
	for _, typ := range mock1.jsonTypes() {
		if typ == MsgDeath {
			return
		}
	}
	t.Error("victim should receive a death message")
}

func TestPickupCollection(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Collector")
	placePlayer(g, p, 500, 500)
	p.HP = 50

	k := &Pickup{ID: 9100, X: 505, Y: 500, Life: PickupTimeout, Alive: true}
	g.mu.Lock()
	g.pickups[k.ID] = k
	g.grid.Insert(k.Ref(), k.Bounds())
	g.mu.Unlock()

	g.update()

	if p.HP != 50+PickupHeal {
		t.Errorf("expected HP %d after pickup, got %d", 50+PickupHeal, p.HP)
	}
	g.mu.RLock()
	_, indexed := g.grid.EntityAABB(k.Ref())
	remaining := len(g.pickups)
	g.mu.RUnlock()
	if indexed || remaining != 0 {
		t.Error("collected pickup should be fully removed")
	}
}

func TestGameInspect(t *testing.T) {
	g := newTestGame()
	placeAsteroid(g, 9200, 700, 700, 50)

	msg := g.Inspect(700, 700)
	found := false
	for i, kind := range msg.Kinds {
		if kind == "a" && msg.IDs[i] == 9200 {
			found = true
		}
	}
	if !found {
		t.Error("inspect at asteroid center should report it")
	}

	empty := g.Inspect(1500, 1500)
	if len(empty.Kinds) != 0 {
		t.Errorf("inspect in empty space should report nothing, got %v", empty.Kinds)
	}
}

func TestDeadPlayerLeavesIndex(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("Doomed")
	placePlayer(g, p, 800, 800)

	g.mu.Lock()
	p.TakeDamage(p.HP)
	g.mu.Unlock()

	g.update()

	g.mu.RLock()
	_, indexed := g.grid.EntityAABB(p.Ref())
	g.mu.RUnlock()
	if indexed {
		t.Error("dead player should not be queryable")
	}
	if g.PlayerScore(p.ID) != 0 {
		t.Errorf("expected score 0, got %d", g.PlayerScore(p.ID))
	}
}

func TestPlayerScoreUnknown(t *testing.T) {
	g := newTestGame()
	if g.PlayerScore(12345) != 0 {
		t.Error("unknown player should have score 0")
	}
}

func TestSnapshotReflectsWorld(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("ace")
	placePlayer(g, p, 500, 500)
	placeAsteroid(g, 900, 300, 300, 40)

	g.update()
	g.update()

	snap := g.Snapshot()
	if snap.Tick != 2 {
		t.Errorf("tick = %d, want 2", snap.Tick)
	}
	if len(snap.Players) != 1 || snap.Players[0].ID != p.ID {
		t.Fatalf("snapshot players = %+v, want just %d", snap.Players, p.ID)
	}
	if len(snap.Mobs) != 0 || len(snap.Projectiles) != 0 {
		t.Errorf("empty world should have no mobs or projectiles: %+v", snap)
	}
}
