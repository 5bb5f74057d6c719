package http

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// envelope is the wire format for every websocket frame in both directions.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// client is the hub's handle on one connection. Frames are queued on send and written by
// the connection's writer goroutine.
type client struct {
	id   string
	send chan outboundMessage
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks connections and room broadcast groups. It implements app.EventChannel; all
// methods are non-blocking and drop frames for clients whose queue is full.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]struct{} // room code -> connection ids
	member  map[string]map[string]struct{} // connection id -> room codes
	buffer  int
	log     *zap.Logger
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]struct{}),
		member:  make(map[string]map[string]struct{}),
		buffer:  buffer,
		log:     logger,
	}
}

// register adds a connection and returns its outbound queue.
func (h *Hub) register(id string) *client {
	c := &client{id: id, send: make(chan outboundMessage, h.buffer)}
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	return c
}

// unregister removes the connection from the hub and every group, then closes its queue.
func (h *Hub) unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	for code := range h.member[id] {
		delete(h.groups[code], id)
		if len(h.groups[code]) == 0 {
			delete(h.groups, code)
		}
	}
	delete(h.member, id)
	h.mu.Unlock()

	if ok {
		c.close()
	}
}

func (h *Hub) Join(connectionID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connectionID]; !ok {
		return
	}
	if h.groups[roomCode] == nil {
		h.groups[roomCode] = make(map[string]struct{})
	}
	h.groups[roomCode][connectionID] = struct{}{}
	if h.member[connectionID] == nil {
		h.member[connectionID] = make(map[string]struct{})
	}
	h.member[connectionID][roomCode] = struct{}{}
}

// Leave removes every connection from the room's group.
func (h *Hub) Leave(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.groups[roomCode] {
		delete(h.member[id], roomCode)
		if len(h.member[id]) == 0 {
			delete(h.member, id)
		}
	}
	delete(h.groups, roomCode)
}

func (h *Hub) Broadcast(roomCode, event string, payload any) {
	msg := outboundMessage{Type: event, Payload: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[roomCode] {
		h.enqueue(h.clients[id], msg)
	}
}

func (h *Hub) Send(connectionID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.enqueue(h.clients[connectionID], outboundMessage{Type: event, Payload: payload})
}

// Connections returns the number of registered connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// enqueue must be called with h.mu held; unregister closes queues only under the write lock.
func (h *Hub) enqueue(c *client, msg outboundMessage) {
	if c == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.log.Warn("dropping frame for slow client", zap.String("conn", c.id), zap.String("event", msg.Type))
	}
}
