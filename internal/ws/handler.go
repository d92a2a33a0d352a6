package ws

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pitch/internal/config"
	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/middleware"
	"github.com/playmatatu/pitch/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
	sendBuffer     = 256
)

func newUpgrader(cfg *config.Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.AllowedOrigin(cfg, r.Header.Get("Origin"))
		},
	}
}

// Client represents a connected WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	id        string
	conn32    uint32        // connection number, the high half of every pointer id
	paddle    game.PaddleID // PaddleNone for spectators
	gameID    string
	gameToken string
	remote    bool
	send      chan []byte

	lastTouch time.Time // readPump only
}

// room is every local client watching one game
type room struct {
	gameID  string
	token   string
	remote  bool // hosted by another instance; fed only by relayed events
	clients map[string]*Client
	stops   []func()

	seqMu   sync.Mutex
	lastSeq uint64
}

// Hub maintains the set of active clients
type Hub struct {
	manager    *game.SessionManager
	upgrader   websocket.Upgrader
	clients    map[string]*Client // client ID -> Client
	gameRooms  map[string]*room   // game ID -> room
	register   chan *Client
	unregister chan *Client
	nextConn   atomic.Uint32
	mu         sync.RWMutex
}

// GameHub is the hub the server routes use.
var GameHub *Hub

// InitHub creates the global hub for manager and starts its loop.
func InitHub(manager *game.SessionManager) *Hub {
	GameHub = NewHub(manager)
	go GameHub.Run()
	return GameHub
}

// NewHub creates a new Hub
func NewHub(manager *game.SessionManager) *Hub {
	return &Hub{
		manager:    manager,
		upgrader:   newUpgrader(manager.Config()),
		clients:    make(map[string]*Client),
		gameRooms:  make(map[string]*room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) newClient(conn *websocket.Conn, gameID, gameToken string, paddle game.PaddleID, remote bool) *Client {
	return &Client{
		hub:       h,
		conn:      conn,
		id:        uuid.NewString(),
		conn32:    h.nextConn.Add(1),
		paddle:    paddle,
		gameID:    gameID,
		gameToken: gameToken,
		remote:    remote,
		send:      make(chan []byte, sendBuffer),
	}
}

// BroadcastToGame sends a message to every client watching a game
func (h *Hub) BroadcastToGame(gameID, msgType string, payload interface{}) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		log.Printf("[WS] Error marshaling %s: %v", msgType, err)
		return
	}
	h.broadcastRaw(gameID, data)
}

func (h *Hub) broadcastRaw(gameID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if r, exists := h.gameRooms[gameID]; exists {
		for _, client := range r.clients {
			select {
			case client.send <- data:
			default:
				// Snapshots are superseded by the next one; a slow client just misses frames.
			}
		}
	}
}

// RoomSize returns how many local clients watch a game.
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.gameRooms[gameID]; ok {
		return len(r.clients)
	}
	return 0
}

// closeRoom disconnects every client of a game.
func (h *Hub) closeRoom(gameID string) {
	h.mu.Lock()
	r, ok := h.gameRooms[gameID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.gameRooms, gameID)
	for id, client := range r.clients {
		delete(h.clients, id)
		close(client.send)
	}
	h.mu.Unlock()

	for _, stop := range r.stops {
		stop()
	}
	log.Printf("[WS] Room for game %s closed", gameID)
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
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
				// Channel closed: the game ended or the client was dropped.
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// trySend queues data without blocking; it fails once the client was dropped.
func (c *Client) trySend(data []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] dropped message for client %s (buffer full)", c.id)
	}
}

func (c *Client) sendMessage(msgType string, payload interface{}) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		log.Printf("[WS] Error marshaling %s: %v", msgType, err)
		return
	}
	c.trySend(data)
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendMessage(protocol.TypeError, protocol.Error{Message: message})
}
