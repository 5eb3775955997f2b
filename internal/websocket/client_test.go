// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serveHub upgrades every request into a client bound to the "session"
// query parameter.
func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("session"))
		if !hub.Attach(client) {
			_ = conn.Close()
			return
		}
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/?session=" + sessionID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewClient(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil, "s1")

	if client.hub != hub || client.SessionID() != "s1" {
		t.Errorf("client not initialized: %+v", client)
	}
	if cap(client.send) != 256 {
		t.Errorf("send capacity = %d, want 256", cap(client.send))
	}
	other := NewClient(hub, nil, "s1")
	if other.ID() <= client.ID() {
		t.Error("client IDs should increase")
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := startHub(t)
	server := serveHub(t, hub)
	conn := dial(t, server, "s1")

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("got %q, want pong", msg.Type)
	}
}

func TestClient_ReceivesSessionMessages(t *testing.T) {
	hub := startHub(t)
	server := serveHub(t, hub)
	conn := dial(t, server, "s1")

	waitFor(func() bool { return hub.SessionClientCount("s1") == 1 })
	hub.SendToSession("s2", MessageTypeRisk, "other")
	hub.SendToSession("s1", MessageTypeRisk, "mine")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.SessionID != "s1" || msg.Data != "mine" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	server := serveHub(t, hub)
	conn := dial(t, server, "s1")

	waitFor(func() bool { return hub.GetClientCount() == 1 })
	_ = conn.Close()
	waitFor(func() bool { return hub.GetClientCount() == 0 })

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d after disconnect, want 0", got)
	}
}

func TestClient_Constants(t *testing.T) {
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
}
