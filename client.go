package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   int32
	sessionID  string
	remoteAddr string
	joinedAt   time.Time
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		// Rate limit incoming messages
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			continue
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages from the send channel to the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks pre-marshaled binary payloads
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	defer func() { recover() }() // send channel may be closed
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
func (c *Client) SendBinary(data []byte) {
	framed := make([]byte, 0, len(data)+1)
	framed = append(framed, 0xFF)
	framed = append(framed, data...)
	defer func() { recover() }()
	select {
	case c.send <- framed:
	default:
	}
}

// handleMessage dispatches one incoming JSON envelope
func (c *Client) handleMessage(message []byte) {
	var env InEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}

	switch env.T {
	case MsgInput:
		var input ClientInput
		if err := json.Unmarshal(env.D, &input); err != nil {
			return
		}
		if c.sessionID != "" {
			if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
				sess.Game.HandleInput(c.playerID, input)
			}
		}

	case MsgList:
		c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})

	case MsgCreate:
		var req CreateMsg
		if err := json.Unmarshal(env.D, &req); err != nil {
			return
		}
		sess := c.hub.sessions.CreateSession(req.SessionName)
		if sess == nil {
			c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "too many active sessions"}})
			return
		}
		c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})

	case MsgJoin:
		c.handleJoin(env.D)

	case MsgLeave:
		c.leaveSession()

	case MsgState:
		if c.sessionID != "" {
			if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
				c.SendJSON(Envelope{T: MsgState, Data: sess.Game.Snapshot()})
			}
		}

	case MsgInspect:
		var req InspectMsg
		if err := json.Unmarshal(env.D, &req); err != nil {
			return
		}
		if c.sessionID != "" {
			if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
				c.SendJSON(Envelope{T: MsgInspected, Data: sess.Game.Inspect(req.X, req.Y)})
			}
		}

	case MsgAuth:
		c.handleAuth(env.D)
	}
}

// leaveSession removes the client's player from its session, folding the
// run's score and playtime into the account's lifetime stats first.
func (c *Client) leaveSession() {
	if c.sessionID == "" {
		return
	}
	if c.authPlayerID != 0 && c.hub.db != nil {
		if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
			score := sess.Game.PlayerScore(c.playerID)
			playtime := time.Since(c.joinedAt).Seconds()
			if err := c.hub.db.RecordSessionStats(c.authPlayerID, score, playtime); err != nil {
				log.Printf("stats update error for account %d: %v", c.authPlayerID, err)
			}
		}
	}
	if c.hub.analytics != nil {
		c.hub.analytics.Track(EvtPlayerLeave, c.authPlayerID, c.sessionID, "")
	}
	c.hub.sessions.RemovePlayer(c.sessionID, c.playerID)
	c.sessionID = ""
	c.playerID = 0
}

func (c *Client) handleJoin(raw json.RawMessage) {
	var req JoinMsg
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}
	if c.sessionID != "" {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "already in a session"}})
		return
	}

	name := req.Name
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	if name == "" {
		name = "pilot-" + GenerateID(2)
	}

	sess := c.hub.sessions.GetSession(req.SessionID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session not found"}})
		return
	}

	player := sess.Game.AddPlayer(name)
	if player == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session full"}})
		return
	}

	c.sessionID = sess.ID
	c.playerID = player.ID
	c.joinedAt = time.Now()
	sess.Game.SetClient(player.ID, c)
	if c.hub.analytics != nil {
		c.hub.analytics.Track(EvtPlayerJoin, c.authPlayerID, sess.ID, "")
	}

	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]string{"sid": sess.ID}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		ID:        player.ID,
		WorldW:    sess.Game.worldW,
		WorldH:    sess.Game.worldH,
		Asteroids: sess.Game.AsteroidStates(),
	}})
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var req AuthMsg
	if err := json.Unmarshal(raw, &req); err != nil {
		return
	}

	var (
		playerID int64
		username string
		token    string
		err      error
	)
	switch req.Action {
	case "register":
		playerID, token, err = c.hub.auth.Register(req.Username, req.Password)
		username = req.Username
	case "login":
		playerID, token, err = c.hub.auth.Login(req.Username, req.Password, c.remoteAddr)
		username = req.Username
	case "token":
		playerID, username, err = c.hub.auth.Verify(req.Token)
		token = req.Token
	default:
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "unknown auth action"}})
		return
	}
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}

	c.authPlayerID = playerID
	c.authUsername = username
	if c.hub.analytics != nil {
		switch req.Action {
		case "register":
			c.hub.analytics.Track(EvtRegister, playerID, "", "")
		case "login":
			c.hub.analytics.Track(EvtLogin, playerID, "", "")
		}
	}
	reply := AuthOKMsg{PlayerID: playerID, Username: username, Token: token}
	if c.hub.db != nil {
		if s := c.hub.db.GetStats(playerID); s != nil {
			reply.Score = s.Score
			reply.Sessions = s.Sessions
			reply.Playtime = s.Playtime
		}
	}
	c.SendJSON(Envelope{T: MsgAuthOK, Data: reply})
	log.Printf("auth ok: %s (%d)", username, playerID)
}
