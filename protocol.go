package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin    = "join"
	MsgLeave   = "leave"
	MsgInput   = "input"
	MsgCreate  = "create"  // create session
	MsgList    = "list"    // list sessions
	MsgInspect = "inspect" // what entities occupy this point
	MsgAuth    = "auth"    // login / register / token
)

// Server -> Client message types
const (
	MsgState     = "state" // JSON fallback; binary frames carry msgpack
	MsgWelcome   = "welcome"
	MsgDeath     = "death"
	MsgKill      = "kill"
	MsgSessions  = "sessions"
	MsgJoined    = "joined"
	MsgCreated   = "created" // session created, client should navigate
	MsgError     = "error"
	MsgInspected = "inspected"
	MsgAuthOK    = "auth_ok"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client at 20Hz
type ClientInput struct {
	MX    float64 `json:"mx"`    // mouse X (world coords)
	MY    float64 `json:"my"`    // mouse Y (world coords)
	Fire  bool    `json:"fire"`  // W key held
	Boost bool    `json:"boost"` // Shift key held
}

// JoinMsg is sent when player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
}

// InspectMsg asks the server what occupies a world-space point
type InspectMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AuthMsg carries register/login/token requests
type AuthMsg struct {
	Action   string `json:"action"` // "register", "login" or "token"
	Username string `json:"user,omitempty"`
	Password string `json:"pass,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AuthOKMsg confirms authentication and carries the account's
// lifetime stats
type AuthOKMsg struct {
	PlayerID int64   `json:"pid"`
	Username string  `json:"user"`
	Token    string  `json:"token"`
	Score    int     `json:"score"`
	Sessions int     `json:"sessions"`
	Playtime float64 `json:"playtime"` // seconds
}

// PlayerState is broadcast per player each tick
type PlayerState struct {
	ID    int32   `json:"id" msgpack:"id"`
	Name  string  `json:"n" msgpack:"n"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	R     float64 `json:"r" msgpack:"r"` // rotation radians
	VX    float64 `json:"vx" msgpack:"vx"`
	VY    float64 `json:"vy" msgpack:"vy"`
	HP    int     `json:"hp" msgpack:"hp"`
	MaxHP int     `json:"mhp" msgpack:"mhp"`
	Score int     `json:"sc" msgpack:"sc"`
	Alive bool    `json:"a" msgpack:"a"`
	Boost bool    `json:"b,omitempty" msgpack:"b"`
}

// ProjectileState is broadcast per projectile
type ProjectileState struct {
	ID    int32   `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	R     float64 `json:"r" msgpack:"r"`
	Owner int32   `json:"o" msgpack:"o"`
}

// MobState is broadcast per mob
type MobState struct {
	ID    int32   `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	R     float64 `json:"r" msgpack:"r"`
	HP    int     `json:"hp" msgpack:"hp"`
	MaxHP int     `json:"mhp" msgpack:"mhp"`
	Alive bool    `json:"a" msgpack:"a"`
}

// AsteroidState is sent once on join (asteroids never move)
type AsteroidState struct {
	ID int32   `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	R  float64 `json:"r" msgpack:"r"` // radius, not rotation
}

// PickupState is broadcast per live pickup
type PickupState struct {
	ID int32   `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
}

// GameState is the authoritative snapshot, msgpack-encoded into binary
// WebSocket frames at broadcast rate
type GameState struct {
	Players     []PlayerState     `json:"p" msgpack:"p"`
	Projectiles []ProjectileState `json:"r" msgpack:"r"`
	Mobs        []MobState        `json:"m" msgpack:"m"`
	Pickups     []PickupState     `json:"k" msgpack:"k"`
	Tick        uint64            `json:"t" msgpack:"t"`
}

// WelcomeMsg tells a joining client its player id and the static level
type WelcomeMsg struct {
	ID        int32           `json:"id"`
	WorldW    float64         `json:"ww"`
	WorldH    float64         `json:"wh"`
	Asteroids []AsteroidState `json:"ast"`
}

// KillMsg announces a kill to the session
type KillMsg struct {
	KillerID   int32  `json:"kid"`
	KillerName string `json:"kn"`
	VictimID   int32  `json:"vid"`
	VictimName string `json:"vn"`
}

// DeathMsg tells a player who killed them
type DeathMsg struct {
	KillerID   int32  `json:"kid"`
	KillerName string `json:"kn"`
}

// SessionInfo describes one joinable session
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// InspectedMsg reports the entities whose AABB contains the inspected point
type InspectedMsg struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Kinds []string `json:"kinds"`
	IDs   []int32  `json:"ids"`
}

// ErrorMsg carries a human-readable error
type ErrorMsg struct {
	Msg string `json:"msg"`
}
