package feed

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Subscription is one in-process consumer of a table's change events.
// Events arrive on C in publish order; Close detaches from the hub. The hub
// closes C itself when the consumer stops draining, so reading until C
// closes is the signal to resubscribe and refetch.
type Subscription struct {
	C     chan Event
	table string
	hub   *Hub
	once  sync.Once
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
	s.once.Do(func() { close(s.C) })
}

// Hub fans row-change events out to every connected dashboard session: remote
// ones over WebSocket and in-process ones over channel subscriptions. It also
// stamps each event with a monotonic version so subscribers can drop
// out-of-order deliveries.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan Event

	subscribers map[string][]*Subscription
	version     uint64
	mutex       sync.Mutex

	// publishMu keeps version stamping and enqueueing a single step so the
	// broadcast channel always carries events in version order.
	publishMu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:     make(map[*websocket.Conn]bool),
		Register:    make(chan *websocket.Conn),
		Unregister:  make(chan *websocket.Conn),
		Broadcast:   make(chan Event, 64),
		subscribers: make(map[string][]*Subscription),
	}
}

// Publish queues the event for delivery. Events without a row version get
// stamped with the next feed version; events carrying one pass through
// unchanged. Call only after the originating database transaction committed.
func (h *Hub) Publish(ev Event) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()
	if ev.Version == 0 {
		h.version++
		ev.Version = h.version
	}
	h.Broadcast <- ev
}

// Subscribe registers an in-process consumer for one table's events.
func (h *Hub) Subscribe(table string) *Subscription {
	sub := &Subscription{C: make(chan Event, 64), table: table, hub: h}
	h.mutex.Lock()
	h.subscribers[table] = append(h.subscribers[table], sub)
	h.mutex.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	subs := h.subscribers[sub.table]
	for i, s := range subs {
		if s == sub {
			h.subscribers[sub.table] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// dropLocked detaches a subscriber that fell behind. Caller holds h.mutex.
func (h *Hub) dropLocked(sub *Subscription) {
	h.removeLocked(sub)
	sub.once.Do(func() { close(sub.C) })
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Println("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case ev := <-h.Broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev Event) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// In-process subscribers for this table. A consumer that stopped
	// draining is cut off instead of blocking the hub: its channel is
	// closed, the owning session sees the stream end and recovers the
	// missed events through its resubscribe refetch.
	var stalled []*Subscription
	for _, sub := range h.subscribers[ev.Table] {
		select {
		case sub.C <- ev:
		default:
			stalled = append(stalled, sub)
		}
	}
	for _, sub := range stalled {
		h.dropLocked(sub)
	}

	payload := map[string]interface{}{
		"type":  "change",
		"event": ev,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for conn := range h.Clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.Clients, conn)
		}
	}
}
