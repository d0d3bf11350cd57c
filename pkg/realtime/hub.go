package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/metrics"
)

const sendBuffer = 32

// EventType labels the frames pushed to subscribers.
type EventType string

const (
	EventMessage      EventType = "message"
	EventMessagesRead EventType = "messages_read"
)

// Event is one frame broadcast to every subscriber of a post's room. The push
// channel carries no durability guarantee; the conversation store is the
// source of truth and polling clients reconstruct history from it.
type Event struct {
	Type    EventType       `json:"type"`
	PostID  uuid.UUID       `json:"postId"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks websocket subscribers per post room. Membership is mutated only
// by the owning connection's Join/Leave/Close calls.
type Hub struct {
	mu      sync.Mutex
	rooms   map[uuid.UUID]map[*Conn]struct{}
	metrics *metrics.ChatMetrics
}

// NewHub builds an empty hub.
func NewHub(m *metrics.ChatMetrics) *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[*Conn]struct{}),
		metrics: m,
	}
}

// Conn is one connected client. Frames queue on a buffered channel drained by
// the transport's write pump; a full queue drops the connection instead of
// blocking the broadcast path.
type Conn struct {
	hub    *Hub
	userID uuid.UUID
	send   chan []byte

	mu     sync.Mutex
	joined map[uuid.UUID]struct{}
	closed bool
}

// Register creates a connection for the given user.
func (h *Hub) Register(userID uuid.UUID) *Conn {
	h.metrics.ConnOpened()
	return &Conn{
		hub:    h,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		joined: make(map[uuid.UUID]struct{}),
	}
}

// Broadcast fans the event out to every live subscriber of its post room.
// Delivery is best-effort: subscribers that cannot keep up are disconnected.
func (h *Hub) Broadcast(event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	room := h.rooms[event.PostID]
	conns := make([]*Conn, 0, len(room))
	for conn := range room {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if !conn.trySend(raw) {
			conn.Close()
		}
	}
}

// RoomSize reports the current subscriber count for a post.
func (h *Hub) RoomSize(postID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[postID])
}

// UserID returns the authenticated user bound to this connection.
func (c *Conn) UserID() uuid.UUID {
	return c.userID
}

// Send exposes the outbound frame queue for the transport's write pump.
func (c *Conn) Send() <-chan []byte {
	return c.send
}

// Push queues a frame addressed to this connection only, such as a join ack
// or a protocol error. Returns false when the connection is closed or its
// queue is full.
func (c *Conn) Push(frame []byte) bool {
	return c.trySend(frame)
}

// trySend queues a frame without blocking. The connection mutex guards the
// closed flag so a send can never race the channel close.
func (c *Conn) trySend(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Join subscribes the connection to a post room. Idempotent.
func (c *Conn) Join(postID uuid.UUID) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.joined[postID] = struct{}{}
	c.mu.Unlock()

	c.hub.mu.Lock()
	room := c.hub.rooms[postID]
	if room == nil {
		room = make(map[*Conn]struct{})
		c.hub.rooms[postID] = room
	}
	room[c] = struct{}{}
	c.hub.mu.Unlock()
}

// Leave unsubscribes the connection from a post room. Idempotent.
func (c *Conn) Leave(postID uuid.UUID) {
	c.mu.Lock()
	delete(c.joined, postID)
	c.mu.Unlock()

	c.hub.removeFromRoom(postID, c)
}

// Close releases every subscription and the outbound queue. Safe to call more
// than once; persisted state is never touched.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	joined := make([]uuid.UUID, 0, len(c.joined))
	for postID := range c.joined {
		joined = append(joined, postID)
	}
	c.joined = make(map[uuid.UUID]struct{})
	close(c.send)
	c.mu.Unlock()

	for _, postID := range joined {
		c.hub.removeFromRoom(postID, c)
	}
	c.hub.metrics.ConnClosed()
}

func (h *Hub) removeFromRoom(postID uuid.UUID, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[postID]
	if room == nil {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(h.rooms, postID)
	}
}
