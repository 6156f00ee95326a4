package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/titoride/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	sendBufferSize = 16
)

// EventNotification is the single push event type carried on the channel.
const EventNotification = "notification:new"

// Event is the JSON payload delivered to connected clients.
type Event struct {
	Event        string               `json:"event"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// controlMessage is what clients send upstream. A connection must declare
// its owning user with {"action":"join","userId":N} as its first message;
// until then it is not addressable and receives nothing.
type controlMessage struct {
	Action string `json:"action"`
	UserID uint   `json:"userId"`
}

type client struct {
	hub    *Hub
	socket *websocket.Conn
	// authUserID is the identity established on the handshake; a join may
	// only claim this user's room.
	authUserID uint
	userID     uint
	joined     bool
	send       chan Event
	once       sync.Once
}

// Hub owns the per-user connection rooms and delivers push events to every
// open connection of a recipient. Membership is rebuilt purely from
// connect/join/disconnect events; nothing is persisted.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uint]map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub constructs a notification hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Cross-origin clients are expected; auth happens on the
				// endpoint before the upgrade.
				return true
			},
		},
	}
}

// Serve upgrades the HTTP connection to a WebSocket and runs it until the
// client disconnects. The connection stays unaddressable until it joins, and
// authUserID caps which room the join may claim.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, authUserID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("notify: websocket upgrade failed: %v", err)
		return
	}

	cl := &client{
		hub:        h,
		socket:     conn,
		authUserID: authUserID,
		send:       make(chan Event, sendBufferSize),
	}

	go cl.writeLoop()
	cl.readLoop()
}

// Push delivers a notification to every joined connection of the recipient.
// At-most-once: no connection open means no delivery, and a full send buffer
// drops the event rather than blocking the fan-out.
func (h *Hub) Push(userID uint, n *models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.rooms[userID] {
		select {
		case cl.send <- Event{Event: EventNotification, Notification: n}:
		default:
			log.Printf("notify: dropping push for slow connection (user=%d)", userID)
		}
	}
}

// Connections returns the number of joined connections for the user.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) join(cl *client, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cl.userID = userID
	cl.joined = true
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*client]struct{})
	}
	h.rooms[userID][cl] = struct{}{}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !cl.joined {
		return
	}
	if room := h.rooms[cl.userID]; room != nil {
		delete(room, cl)
		if len(room) == 0 {
			delete(h.rooms, cl.userID)
		}
	}
}

func (c *client) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("notify: unexpected close (user=%d): %v", c.userID, err)
			}
			return
		}
		if len(payload) == 0 {
			continue
		}

		var ctrl controlMessage
		if err := json.Unmarshal(payload, &ctrl); err != nil {
			log.Printf("notify: invalid control payload: %v", err)
			continue
		}

		switch ctrl.Action {
		case "join":
			if ctrl.UserID != c.authUserID {
				log.Printf("notify: rejecting join for user %d on a connection authenticated as user %d", ctrl.UserID, c.authUserID)
				continue
			}
			if !c.joined && ctrl.UserID != 0 {
				c.hub.join(c, ctrl.UserID)
			}
		default:
			log.Printf("notify: unsupported control action %q", ctrl.Action)
		}
	}
}

func (c *client) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		close(c.send)
		_ = c.socket.Close()
	})
}
