package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pitch/internal/auth"
	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/protocol"
)

// touchEvery limits how often pointer traffic refreshes the idle deadline.
const touchEvery = time.Second

// HandleWebSocket upgrades GET /pitch/:token/ws. The optional pt query parameter is a
// player token naming the paddle this connection drives; without it the connection
// only watches.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	gameToken := c.Param("token")
	playerToken := c.Query("pt")

	if gameToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	paddle := game.PaddleNone
	if playerToken != "" {
		claims, err := auth.ParsePlayerToken(h.manager.Config().JWTSecret, playerToken)
		if err != nil || claims.GameToken != gameToken {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid player token"})
			return
		}
		paddle = game.PaddleID(claims.Paddle)
	}

	var gameID string
	remote := false
	if g, err := h.manager.GetGameByToken(gameToken); err == nil {
		gameID = g.ID
	} else {
		// Players must reach the hosting instance; spectators may watch a game hosted
		// elsewhere through the shared cache and event channel.
		cached, cerr := h.manager.LoadCachedGame(c.Request.Context(), gameToken)
		if paddle != game.PaddleNone || cerr != nil || cached.Status == game.StatusEnded {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		gameID = cached.ID
		remote = true
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := h.newClient(conn, gameID, gameToken, paddle, remote)
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Run serializes client registration. It never returns.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	r, exists := h.gameRooms[client.gameID]
	if !exists {
		r = &room{
			gameID:  client.gameID,
			token:   client.gameToken,
			remote:  client.remote,
			clients: make(map[string]*Client),
		}
		h.gameRooms[client.gameID] = r
	}
	r.clients[client.id] = client
	h.clients[client.id] = client
	h.mu.Unlock()

	log.Printf("[WS] Client %s joined game %s (paddle=%d remote=%v)", client.id, client.gameID, client.paddle, client.remote)

	client.sendMessage(protocol.TypeJoined, protocol.Joined{
		GameID:    client.gameID,
		Paddle:    client.paddle,
		Spectator: client.paddle == game.PaddleNone,
	})
	client.sendState()

	if !exists && !r.remote {
		h.watchGame(r)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[client.id]; !ok || cur != client {
		// Already dropped by closeRoom.
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)

	var stops []func()
	if r, exists := h.gameRooms[client.gameID]; exists {
		delete(r.clients, client.id)
		if len(r.clients) == 0 {
			delete(h.gameRooms, client.gameID)
			stops = r.stops
		}
	}
	close(client.send)
	h.mu.Unlock()

	for _, stop := range stops {
		stop()
	}

	// Fingers still down on a closed connection would hold their paddles forever.
	if g, err := h.manager.GetGame(client.gameID); err == nil {
		g.Session.ReleasePointers(client.ownsPointer)
	}
	log.Printf("[WS] Client %s left game %s", client.id, client.gameID)
}

// watchGame feeds a new local room from the game's snapshots and lifecycle events.
func (h *Hub) watchGame(r *room) {
	g, err := h.manager.GetGame(r.gameID)
	if err != nil {
		h.closeRoom(r.gameID)
		return
	}

	// Subscribing takes the session's observer lock, so it must run without h.mu held.
	stops := []func(){
		g.Session.Subscribe(func(st game.PitchState) { h.onSnapshot(r, st) }),
		g.Listen(func(ev game.Event) { h.deliverEvent(r, ev) }),
	}

	h.mu.Lock()
	if h.gameRooms[r.gameID] == r {
		r.stops = append(r.stops, stops...)
		h.mu.Unlock()
		if g.Session.Status() == game.StatusEnded {
			h.closeRoom(r.gameID)
		}
		return
	}
	h.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// onSnapshot forwards st unless a newer snapshot already went out.
func (h *Hub) onSnapshot(r *room, st game.PitchState) {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()
	if st.Seq <= r.lastSeq {
		return
	}
	r.lastSeq = st.Seq

	data, err := protocol.Encode(protocol.TypePitchState, st)
	if err != nil {
		log.Printf("[WS] Error marshaling pitch_state: %v", err)
		return
	}
	h.broadcastRaw(r.gameID, data)
}

func (h *Hub) deliverEvent(r *room, ev game.Event) {
	h.BroadcastToGame(r.gameID, string(ev.Type), protocol.Lifecycle{
		GameID: ev.GameID,
		Goal:   ev.Goal,
		State:  ev.State,
		Reason: ev.Reason,
	})

	// Remote rooms have no local session; the event's snapshot is all they get.
	if r.remote && ev.State != nil {
		h.onSnapshot(r, *ev.State)
	}

	if ev.Type == game.EventSessionEnded || ev.Type == game.EventSessionExpired {
		h.closeRoom(r.gameID)
	}
}

// readPump reads pointer and control messages from the connection.
func (c *Client) readPump() {
	defer func() {
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg protocol.Envelope
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one inbound message.
func (c *Client) handleMessage(msg protocol.Envelope) {
	switch msg.Type {
	case protocol.TypePointer:
		var data protocol.Pointer
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid pointer data")
			return
		}
		c.handlePointer(data)

	case protocol.TypeGetState:
		c.sendState()

	case protocol.TypeDismiss:
		if c.paddle == game.PaddleNone {
			c.sendError("Spectators cannot dismiss the goal pause")
			return
		}
		// A second dismissal of the same pause is not an error: both players may tap.
		if _, err := c.hub.manager.DismissGoalPause(c.gameToken); err != nil {
			c.sendError(err.Error())
		}

	default:
		c.sendError("Unknown message type")
	}
}

func (c *Client) handlePointer(data protocol.Pointer) {
	if c.paddle == game.PaddleNone {
		c.sendError("Spectators cannot control paddles")
		return
	}
	phase, err := game.ParsePointerPhase(data.Phase)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	g, err := c.hub.manager.GetGame(c.gameID)
	if err != nil {
		c.sendError("Game not found")
		return
	}

	g.Session.SubmitPointerEvent(game.PointerEvent{
		ID:       c.pointerID(data.ID),
		Position: game.Vec2{X: data.X, Y: data.Y},
		Phase:    phase,
		Restrict: c.paddle,
	})

	if now := time.Now(); now.Sub(c.lastTouch) >= touchEvery {
		c.lastTouch = now
		c.hub.manager.Touch(c.gameID)
	}
}

// sendState sends the current snapshot: live for local games, cached for remote ones.
func (c *Client) sendState() {
	if !c.remote {
		g, err := c.hub.manager.GetGame(c.gameID)
		if err != nil {
			c.sendError("Game not found")
			return
		}
		c.sendMessage(protocol.TypePitchState, g.Session.State())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cached, err := c.hub.manager.LoadCachedGame(ctx, c.gameToken)
	if err != nil {
		c.sendError("Game not found")
		return
	}
	c.sendMessage(protocol.TypePitchState, cached.State)
}

// pointerID namespaces a client-chosen pointer id by connection so that two devices
// reusing id 0 never share a binding.
func (c *Client) pointerID(id int64) game.PointerID {
	return game.PointerID(uint64(c.conn32)<<32 | uint64(uint32(id)))
}

func (c *Client) ownsPointer(id game.PointerID) bool {
	return uint32(uint64(id)>>32) == c.conn32
}
