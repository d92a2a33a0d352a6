package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/pitch/internal/protocol"
)


func TestJoinURL(t *testing.T) {
	cases := []struct {
		server, game, pt, want string
	}{
		{"http://127.0.0.1:8080", "abc", "", "ws://127.0.0.1:8080/api/v1/pitch/abc/ws"},
		{"https://pitch.example.com/", "abc", "p.t.x", "wss://pitch.example.com/api/v1/pitch/abc/ws?pt=p.t.x"},
		{"ws://host", "abc", "", "ws://host/api/v1/pitch/abc/ws"},
	}
	for _, tc := range cases {
		got, err := JoinURL(tc.server, tc.game, tc.pt)
		if err != nil || got != tc.want {
			t.Errorf("JoinURL(%q, %q, %q) = %q, %v; want %q", tc.server, tc.game, tc.pt, got, err, tc.want)
		}
	}

	if _, err := JoinURL("ftp://host", "abc", ""); err == nil {
		t.Error("ftp scheme accepted")
	}
	if _, err := JoinURL("http://host", "", ""); err == nil {
		t.Error("empty game token accepted")
	}
}

// echoServer answers every message with a pitch_state envelope and records what it got.
func echoServer(t *testing.T, got chan<- protocol.Envelope) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env protocol.Envelope
			if json.Unmarshal(raw, &env) == nil {
				got <- env
			}
			reply, _ := protocol.Encode(protocol.TypePitchState, map[string]int{"seq": 1})
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNetSendAndReceive(t *testing.T) {
	got := make(chan protocol.Envelope, 1)
	srv := echoServer(t, got)

	n, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer n.Close()

	if err := n.Send(protocol.TypePointer, protocol.Pointer{ID: 1, X: 2, Y: 3, Phase: "down"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case env := <-got:
		var p protocol.Pointer
		if env.Type != protocol.TypePointer || json.Unmarshal(env.Data, &p) != nil || p.ID != 1 || p.Phase != "down" {
			t.Errorf("server got %s %s", env.Type, env.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server got nothing")
	}

	select {
	case env := <-n.In():
		if env.Type != protocol.TypePitchState {
			t.Errorf("client got %s", env.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client got nothing")
	}

	n.Close()
	if !n.IsClosed() {
		t.Error("IsClosed false after Close")
	}
	if err := n.Send(protocol.TypeGetState, nil); err == nil {
		t.Error("Send after Close succeeded")
	}
	// The reader closes In once the socket is gone.
	select {
	case _, ok := <-n.In():
		if ok {
			t.Error("unexpected message after close")
		}
	case <-time.After(2 * time.Second):
		t.Error("In not closed after Close")
	}
}

func TestDialRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid player token"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want 403", err)
	}
}
