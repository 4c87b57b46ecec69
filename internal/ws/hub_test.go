package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) subscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn1 := dialHub(t, server)
	conn2 := dialHub(t, server)
	waitFor(t, func() bool { return hub.clientCount() == 2 })

	hub.Broadcast(service.EventNewRide, map[string]any{"rideId": "ride-1"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}

		var msg struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if msg.Event != "new-ride" {
			t.Errorf("expected new-ride event, got %s", msg.Event)
		}
	}
}

func TestHub_PublishOnlyReachesSubscribers(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	subscriber := dialHub(t, server)
	bystander := dialHub(t, server)
	waitFor(t, func() bool { return hub.clientCount() == 2 })

	join := `{"event":"join-room","channel":"ride-1"}`
	if err := subscriber.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	waitFor(t, func() bool { return hub.subscriberCount("ride-1") == 1 })

	hub.Publish("ride-1", service.EventNewBid, map[string]any{"bidAmount": 400})

	subscriber.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := subscriber.ReadMessage()
	if err != nil {
		t.Fatalf("subscriber read failed: %v", err)
	}
	if !strings.Contains(string(data), "new-bid") {
		t.Errorf("expected new-bid event, got %s", data)
	}

	// The bystander must not receive the room event.
	bystander.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bystander.ReadMessage(); err == nil {
		t.Error("bystander unexpectedly received a room event")
	}
}

func TestHub_LeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	waitFor(t, func() bool { return hub.clientCount() == 1 })

	conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"join-room","channel":"ride-1"}`))
	waitFor(t, func() bool { return hub.subscriberCount("ride-1") == 1 })

	conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"leave-room","channel":"ride-1"}`))
	waitFor(t, func() bool { return hub.subscriberCount("ride-1") == 0 })

	hub.Publish("ride-1", service.EventBidUpdated, nil)

	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("unexpected delivery after leaving the room")
	}
}

func TestHub_DisconnectedClientIsDropped(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	waitFor(t, func() bool { return hub.clientCount() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.clientCount() == 0 })

	// Publishing after disconnect must not panic or deliver.
	hub.Broadcast(service.EventRideCompleted, nil)
}
