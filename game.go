package main

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxProjectilesPerSession = 500
	maxPlayersPerSession     = 20

	numAsteroids      = 24
	numMobs           = 6
	mobRespawnTicks   = 10 * TickRate
	maxPickups        = 8
	pickupSpawnTicks  = 5 * TickRate
	gridEntityReserve = 128
	gridCellEstimate  = 512
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// contact is a confirmed ship-vs-ship or ship-vs-asteroid touch,
// collected during pair enumeration and resolved afterwards so the
// grid isn't mutated mid-enumeration.
type contact struct {
	a, b EntityRef
}

// Game holds the state for one session: all entities plus the spatial
// grid that indexes them. The grid is maintained incrementally — one
// Insert per spawn, one Update per moved entity per tick, one Remove
// per despawn — and every collision or perception query in the tick
// goes through it. All access is serialized under mu.
type Game struct {
	mu          sync.RWMutex
	worldW      float64
	worldH      float64
	players     map[int32]*Player
	mobs        map[int32]*Mob
	projectiles map[int32]*Projectile
	pickups     map[int32]*Pickup
	asteroids   map[int32]*Asteroid
	clients     map[int32]Broadcaster
	grid        *SpatialGrid
	analytics   *Analytics
	nextID      int32
	tick        uint64
	running     bool
	stop        chan struct{}

	// Per-frame scratch buffers, one per query site
	sweep    *GridScratch // projectile CCD candidates
	sense    *GridScratch // mob perception
	near     *GridScratch // pickup collection
	threat   *GridScratch // dodge path confirmation
	contacts []contact
}

// NewGame creates a session world with its asteroid field and mobs
func NewGame(worldW, worldH, cellSize float64, analytics *Analytics) *Game {
	g := &Game{
		worldW:      worldW,
		worldH:      worldH,
		players:     make(map[int32]*Player),
		mobs:        make(map[int32]*Mob),
		projectiles: make(map[int32]*Projectile),
		pickups:     make(map[int32]*Pickup),
		asteroids:   make(map[int32]*Asteroid),
		clients:     make(map[int32]Broadcaster),
		grid:        NewSpatialGrid(cellSize, gridEntityReserve, gridCellEstimate),
		analytics:   analytics,
		stop:        make(chan struct{}),
		sweep:       NewGridScratch(),
		sense:       NewGridScratch(),
		near:        NewGridScratch(),
		threat:      NewGridScratch(),
	}

	// Static level geometry goes into the grid exactly once
	for i := 0; i < numAsteroids; i++ {
		a := NewAsteroid(g.allocID(), worldW, worldH)
		g.asteroids[a.ID] = a
		g.grid.Insert(a.Ref(), a.Bounds())
	}
	for i := 0; i < numMobs; i++ {
		g.spawnMob()
	}
	return g
}

func (g *Game) allocID() int32 {
	g.nextID++
	return g.nextID
}

func (g *Game) spawnMob() {
	m := NewMob(g.allocID(), g.worldW, g.worldH)
	g.mobs[m.ID] = m
	g.grid.Insert(m.Ref(), m.Bounds())
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// AddPlayer adds a new player to the game
func (g *Game) AddPlayer(name string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= maxPlayersPerSession {
		return nil
	}

	player := NewPlayer(g.allocID(), name, g.worldW, g.worldH)
	g.players[player.ID] = player
	g.grid.Insert(player.Ref(), player.Bounds())
	return player
}

// RemovePlayer removes a player from the game
func (g *Game) RemovePlayer(id int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		g.grid.Remove(p.Ref())
	}
	delete(g.players, id)
	delete(g.clients, id)
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID int32, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// HandleInput processes input from a player
func (g *Game) HandleInput(playerID int32, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return
	}
	aim := Vec2{input.MX, input.MY}.Sub(Vec2{p.X, p.Y})
	if aim.X*aim.X+aim.Y*aim.Y > 25 { // > 5px distance, avoids angle flicker when idle
		p.TargetR = math.Atan2(aim.Y, aim.X)
	}
	p.Firing = input.Fire
	p.Boosting = input.Boost
}

// Inspect reports the entities whose bounds contain the given point
func (g *Game) Inspect(x, y float64) InspectedMsg {
	g.mu.Lock()
	defer g.mu.Unlock()

	msg := InspectedMsg{X: x, Y: y}
	for _, ref := range g.grid.PointContaining(Vec2{x, y}) {
		msg.Kinds = append(msg.Kinds, string(ref.Kind))
		msg.IDs = append(msg.IDs, ref.Idx)
	}
	return msg
}

// PlayerScore returns a player's current score, or 0 if unknown
func (g *Game) PlayerScore(id int32) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if p, ok := g.players[id]; ok {
		return p.Score
	}
	return 0
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// AsteroidStates returns the static level geometry for the welcome message
func (g *Game) AsteroidStates() []AsteroidState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]AsteroidState, 0, len(g.asteroids))
	for _, a := range g.asteroids {
		out = append(out, a.ToState())
	}
	return out
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	g.tick++

	g.updatePlayers(dt)
	g.updateMobs(dt)
	g.updateProjectiles(dt)
	g.resolveShipContacts()
	g.updatePickups(dt)

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// updatePlayers integrates player motion and re-indexes each player in
// the grid. Dead players leave the grid until they respawn.
func (g *Game) updatePlayers(dt float64) {
	for _, p := range g.players {
		p.Update(dt)
		if p.Alive {
			g.grid.Update(p.Ref(), p.Bounds())
		} else {
			g.grid.Remove(p.Ref())
		}

		if p.CanFire() && len(g.projectiles) < maxProjectilesPerSession {
			g.spawnProjectile(p.Ref(), p.X, p.Y, p.Rotation, p.VX, p.VY)
			p.FireCD = FireCooldown
		}
	}
}

func (g *Game) spawnProjectile(owner EntityRef, x, y, rotation, vx, vy float64) {
	proj := NewProjectile(g.allocID(), owner, x, y, rotation, vx, vy)
	g.projectiles[proj.ID] = proj
	g.grid.Insert(proj.Ref(), proj.Bounds())
}

// updateMobs runs perception, steering and dodging for every mob.
// Perception is a grid region query around the mob; dodge threats are
// confirmed with a dilated raycast along the projectile's near-future
// path.
func (g *Game) updateMobs(dt float64) {
	for _, m := range g.mobs {
		if !m.Alive {
			continue
		}

		candidates := g.grid.QueryBuf(m.SenseBounds(), g.sense)
		var target *Player
		bestDistSq := math.MaxFloat64
		for _, ref := range candidates {
			if ref.Kind != 'p' {
				continue
			}
			p, ok := g.players[ref.Idx]
			if !ok || !p.Alive {
				continue
			}
			d2 := DistanceSq(m.X, m.Y, p.X, p.Y)
			if d2 < bestDistSq {
				bestDistSq = d2
				target = p
			}
		}

		// Dodge: for each perceived projectile heading our way, check
		// whether its widened flight path actually crosses us
		if m.DodgeCD <= 0 {
			for _, ref := range candidates {
				if ref.Kind != 'r' {
					continue
				}
				proj, ok := g.projectiles[ref.Idx]
				if !ok || !proj.Alive || proj.OwnerRef == m.Ref() {
					continue
				}
				// Heading toward the mob at all?
				if (m.X-proj.X)*proj.VX+(m.Y-proj.Y)*proj.VY <= 0 {
					continue
				}
				origin := Vec2{proj.X, proj.Y}
				path := origin.Add(Vec2{proj.VX, proj.VY}.Scale(MobDodgeLookahead))
				hits := g.grid.RaycastDilatedBuf(origin, path, MobRadius+ProjectileRadius, g.threat)
				if refsContainRef(hits, m.Ref()) {
					m.Dodge(proj.X, proj.Y, proj.VX, proj.VY)
					break
				}
			}
		}

		wantFire := m.Update(dt, target)
		g.grid.Update(m.Ref(), m.Bounds())

		if wantFire && len(g.projectiles) < maxProjectilesPerSession {
			g.spawnProjectile(m.Ref(), m.X, m.Y, m.Rotation, m.VX, m.VY)
		}
	}

	// Keep the mob population topped up
	if len(g.mobs) < numMobs && g.tick%mobRespawnTicks == 0 {
		g.spawnMob()
	}
}

func refsContainRef(refs []EntityRef, want EntityRef) bool {
	for _, r := range refs {
		if r == want {
			return true
		}
	}
	return false
}

// updateProjectiles advances each bolt and sweeps its motion segment
// through the grid for hit candidates. The sweep is what prevents
// tunneling: at 800px/s a bolt crosses several cells per tick.
func (g *Game) updateProjectiles(dt float64) {
	for id, proj := range g.projectiles {
		proj.Update(dt)
		if !proj.Alive {
			g.grid.Remove(proj.Ref())
			delete(g.projectiles, id)
			continue
		}
		g.grid.Update(proj.Ref(), proj.Bounds())

		from := Vec2{proj.PrevX, proj.PrevY}
		to := Vec2{proj.X, proj.Y}
		candidates := g.grid.SweptCircleCandidatesBuf(from, to, ProjectileRadius, g.sweep)

		// Earliest confirmed hit along the sweep wins
		bestT := math.MaxFloat64
		var hit EntityRef
		for _, ref := range candidates {
			if ref == proj.Ref() || ref == proj.OwnerRef || ref.Kind == 'r' || ref.Kind == 'k' {
				continue
			}
			cx, cy, cr, ok := g.circleOf(ref)
			if !ok {
				continue
			}
			t := segmentCircleHitT(proj.PrevX, proj.PrevY, proj.X, proj.Y, cx, cy, cr+ProjectileRadius)
			if t >= 0 && t < bestT {
				bestT = t
				hit = ref
			}
		}
		if bestT <= 1 {
			g.applyProjectileHit(proj, hit)
			g.grid.Remove(proj.Ref())
			delete(g.projectiles, id)
		}
	}
}

// circleOf returns the narrow-phase circle for a damageable entity
func (g *Game) circleOf(ref EntityRef) (x, y, r float64, ok bool) {
	switch ref.Kind {
	case 'p':
		if p, have := g.players[ref.Idx]; have && p.Alive {
			return p.X, p.Y, PlayerRadius, true
		}
	case 'm':
		if m, have := g.mobs[ref.Idx]; have && m.Alive {
			return m.X, m.Y, MobRadius, true
		}
	case 'a':
		if a, have := g.asteroids[ref.Idx]; have {
			return a.X, a.Y, a.Radius, true
		}
	}
	return 0, 0, 0, false
}

func (g *Game) applyProjectileHit(proj *Projectile, hit EntityRef) {
	switch hit.Kind {
	case 'p':
		p := g.players[hit.Idx]
		if p.TakeDamage(proj.Damage) {
			g.grid.Remove(p.Ref())
			g.creditKill(proj.OwnerRef, p.ID, p.Name)
		}
	case 'm':
		m := g.mobs[hit.Idx]
		if m.TakeDamage(proj.Damage) {
			g.grid.Remove(m.Ref())
			delete(g.mobs, m.ID)
			if killer, ok := g.players[proj.OwnerRef.Idx]; ok && proj.OwnerRef.Kind == 'p' {
				killer.Score += MobKillScore
			}
		}
	case 'a':
		// Asteroids absorb the bolt
	}
}

// creditKill awards a kill to the shooter and notifies clients
func (g *Game) creditKill(owner EntityRef, victimID int32, victimName string) {
	var killerID int32
	killerName := "mob"
	if owner.Kind == 'a' {
		killerName = "asteroid"
	}
	if owner.Kind == 'p' {
		if killer, ok := g.players[owner.Idx]; ok {
			killer.Score++
			killerID = killer.ID
			killerName = killer.Name
		}
	}
	g.broadcastMsg(Envelope{T: MsgKill, Data: KillMsg{
		KillerID:   killerID,
		KillerName: killerName,
		VictimID:   victimID,
		VictimName: victimName,
	}})
	if client, ok := g.clients[victimID]; ok {
		client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{
			KillerID:   killerID,
			KillerName: killerName,
		}})
	}
	if g.analytics != nil {
		g.analytics.Track(EvtKill, int64(killerID), "", "")
	}
}

// resolveShipContacts finds ship-vs-ship and ship-vs-asteroid touches.
// Pair enumeration over shared grid cells proposes candidates; the
// circle test confirms them. Contacts are collected first and resolved
// after, since resolution mutates the grid.
func (g *Game) resolveShipContacts() {
	g.contacts = g.contacts[:0]
	g.grid.EnumeratePairs(func(a, b EntityRef) bool {
		if a.Kind == 'r' || a.Kind == 'k' || b.Kind == 'r' || b.Kind == 'k' {
			return true
		}
		ax, ay, ar, ok := g.circleOf(a)
		if !ok {
			return true
		}
		bx, by, br, ok := g.circleOf(b)
		if !ok {
			return true
		}
		if CheckCollision(ax, ay, ar, bx, by, br) {
			g.contacts = append(g.contacts, contact{a, b})
		}
		return true
	})

	for _, c := range g.contacts {
		g.resolveContact(c.a, c.b)
	}
}

func (g *Game) resolveContact(a, b EntityRef) {
	// Normalize so asteroids are always on the b side
	if a.Kind == 'a' {
		a, b = b, a
	}
	switch {
	case a.Kind == 'p' && b.Kind == 'p':
		pa, pb := g.players[a.Idx], g.players[b.Idx]
		if pa == nil || pb == nil || !pa.Alive || !pb.Alive {
			return
		}
		// Head-on ship collision: both die
		pa.TakeDamage(pa.HP)
		pb.TakeDamage(pb.HP)
		g.grid.Remove(pa.Ref())
		g.grid.Remove(pb.Ref())
		g.creditKill(b, pa.ID, pa.Name)
		g.creditKill(a, pb.ID, pb.Name)
	case a.Kind == 'p' && b.Kind == 'm':
		p, m := g.players[a.Idx], g.mobs[b.Idx]
		if p == nil || m == nil || !p.Alive || !m.Alive {
			return
		}
		if m.TakeDamage(MobCollisionDmg) {
			g.grid.Remove(m.Ref())
			delete(g.mobs, m.ID)
		}
		if p.TakeDamage(MobCollisionDmg) {
			g.grid.Remove(p.Ref())
			g.creditKill(b, p.ID, p.Name)
		}
	case a.Kind == 'm' && b.Kind == 'p':
		g.resolveContact(b, a)
	case a.Kind == 'm' && b.Kind == 'm':
		// Mobs bump without damage
	case b.Kind == 'a':
		switch a.Kind {
		case 'p':
			p := g.players[a.Idx]
			if p != nil && p.Alive && p.TakeDamage(AsteroidCrashDmg) {
				g.grid.Remove(p.Ref())
				g.creditKill(b, p.ID, p.Name)
			}
		case 'm':
			m := g.mobs[a.Idx]
			if m != nil && m.Alive && m.TakeDamage(AsteroidCrashDmg) {
				g.grid.Remove(m.Ref())
				delete(g.mobs, m.ID)
			}
		}
	}
}

// updatePickups expires old pickups, spawns new ones and lets players
// collect any that their neighbor query reports
func (g *Game) updatePickups(dt float64) {
	for id, k := range g.pickups {
		k.Update(dt)
		if !k.Alive {
			g.grid.Remove(k.Ref())
			delete(g.pickups, id)
		}
	}

	if len(g.pickups) < maxPickups && g.tick%pickupSpawnTicks == 0 {
		k := NewPickup(g.allocID(), g.worldW, g.worldH)
		g.pickups[k.ID] = k
		g.grid.Insert(k.Ref(), k.Bounds())
	}

	for _, p := range g.players {
		if !p.Alive {
			continue
		}
		for _, ref := range g.grid.NeighborsBuf(p.Ref(), g.near) {
			if ref.Kind != 'k' {
				continue
			}
			k, ok := g.pickups[ref.Idx]
			if !ok || !k.Alive {
				continue
			}
			if CheckCollision(p.X, p.Y, PlayerRadius, k.X, k.Y, PickupRadius) {
				p.Heal(PickupHeal)
				k.Alive = false
				g.grid.Remove(k.Ref())
				delete(g.pickups, k.ID)
			}
		}
	}
}

// snapshotLocked builds a full world snapshot. Caller must hold g.mu.
func (g *Game) snapshotLocked() GameState {
	state := GameState{
		Players:     make([]PlayerState, 0, len(g.players)),
		Projectiles: make([]ProjectileState, 0, len(g.projectiles)),
		Mobs:        make([]MobState, 0, len(g.mobs)),
		Pickups:     make([]PickupState, 0, len(g.pickups)),
		Tick:        g.tick,
	}

	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, proj := range g.projectiles {
		state.Projectiles = append(state.Projectiles, proj.ToState())
	}
	for _, m := range g.mobs {
		state.Mobs = append(state.Mobs, m.ToState())
	}
	for _, k := range g.pickups {
		state.Pickups = append(state.Pickups, k.ToState())
	}
	return state
}

// Snapshot returns the current world state. Used by clients that ask
// for a one-off JSON snapshot instead of the binary stream.
func (g *Game) Snapshot() GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

// broadcastState sends a msgpack-encoded snapshot to all clients as a
// binary frame
func (g *Game) broadcastState() {
	data, err := msgpack.Marshal(g.snapshotLocked())
	if err != nil {
		log.Printf("state encode: %v", err)
		return
	}

	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a JSON message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
