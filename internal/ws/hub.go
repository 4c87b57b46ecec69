package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// message is the envelope exchanged with clients in both directions.
type message struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client is one websocket connection. Writes are serialized through mu;
// gorilla connections do not allow concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks live connections and their channel subscriptions. It
// implements service.Notifier: events are delivered to whoever is
// connected at the moment they fire and are never queued or retried.
type Hub struct {
	mu sync.RWMutex

	// clients holds every open connection.
	clients map[*client]struct{}

	// channels maps a channel key (a ride ID) to its subscribers.
	channels map[string]map[*client]struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*client]struct{}),
		channels: make(map[string]map[*client]struct{}),
	}
}

var _ service.Notifier = (*Hub)(nil)

// ServeHTTP upgrades the request to a websocket connection and pumps
// subscription messages until the peer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.addClient(c)
	defer h.removeClient(c)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "join-room":
			if msg.Channel != "" {
				h.subscribe(c, msg.Channel)
			}
		case "leave-room":
			if msg.Channel != "" {
				h.unsubscribe(c, msg.Channel)
			}
		}
	}
}

// Publish sends an event to subscribers of a single channel.
func (h *Hub) Publish(channel string, event service.Event, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("websocket encode %s: %v", event, err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, data)
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event service.Event, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("websocket encode %s: %v", event, err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, data)
}

// deliver writes to each target, dropping connections that fail. A dead
// subscriber never blocks or fails the caller.
func (h *Hub) deliver(targets []*client, data []byte) {
	for _, c := range targets {
		if err := c.send(data); err != nil {
			h.removeClient(c)
			c.conn.Close()
		}
	}
}

func encode(event service.Event, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(message{Event: string(event), Payload: body})
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	for key, subs := range h.channels {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, key)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(c *client, channel string) {
	h.mu.Lock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*client]struct{})
	}
	h.channels[channel][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(c *client, channel string) {
	h.mu.Lock()
	if subs := h.channels[channel]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	h.mu.Unlock()
}
