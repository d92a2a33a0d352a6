package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/pitch/internal/protocol"
)

// Net is the client end of a pitch websocket.
type Net struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	inCh   chan protocol.Envelope
	closed bool
}

// JoinURL turns the server base URL into the websocket URL of one game. playerToken may
// be empty to watch.
func JoinURL(server, gameToken, playerToken string) (string, error) {
	u, err := neturl.Parse(strings.TrimSuffix(server, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	if gameToken == "" {
		return "", errors.New("game token required")
	}
	u.Path += "/api/v1/pitch/" + neturl.PathEscape(gameToken) + "/ws"
	if playerToken != "" {
		q := u.Query()
		q.Set("pt", playerToken)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Dial connects to wsURL and starts reading.
func Dial(wsURL string) (*Net, error) {
	log.Printf("WS dial: %s", wsURL)

	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
		Proxy:            http.ProxyFromEnvironment,
	}

	c, resp, err := dialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, fmt.Errorf("ws dial: %s: %s", resp.Status, strings.TrimSpace(string(body)))
		}
		return nil, err
	}

	n := &Net{conn: c, inCh: make(chan protocol.Envelope, 128)}
	go n.reader()
	return n, nil
}

// In delivers inbound messages. It is closed when the connection drops.
func (n *Net) In() <-chan protocol.Envelope { return n.inCh }

func (n *Net) reader() {
	defer close(n.inCh)
	for {
		n.mu.Lock()
		c := n.conn
		n.mu.Unlock()
		if c == nil {
			return
		}

		_, data, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			n.markClosed()
			return
		}
		var m protocol.Envelope
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		n.inCh <- m
	}
}

// Send writes one message. Only one goroutine may call Send.
func (n *Net) Send(t string, v interface{}) error {
	n.mu.Lock()
	if n.closed || n.conn == nil {
		n.mu.Unlock()
		return errors.New("net: write on closed")
	}
	c := n.conn
	n.mu.Unlock()

	b, err := protocol.Encode(t, v)
	if err != nil {
		return err
	}
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Println("write:", err)
		n.markClosed()
		return err
	}
	return nil
}

func (n *Net) markClosed() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
}

// IsClosed reports whether Close was called or the connection was torn down.
func (n *Net) IsClosed() bool {
	if n == nil {
		return true
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// Close closes the websocket.
func (n *Net) Close() error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	if n.closed && n.conn == nil {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	c := n.conn
	n.conn = nil
	n.mu.Unlock()

	if c != nil {
		return c.Close()
	}
	return nil
}
