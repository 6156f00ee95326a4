package notify

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titoride/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newHubServer serves the hub with the authenticated user ID carried in the
// uid query parameter, standing in for the JWT handshake.
func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := strconv.ParseUint(r.URL.Query().Get("uid"), 10, 32)
		hub.Serve(w, r, uint(uid))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server, authUserID uint) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws%s?uid=%d", strings.TrimPrefix(srv.URL, "http"), authUserID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func joinAs(t *testing.T, conn *websocket.Conn, userID uint) {
	t.Helper()
	msg := fmt.Sprintf(`{"action":"join","userId":%d}`, userID)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func waitForConnections(t *testing.T, hub *Hub, userID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Connections(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("user %d never reached %d joined connections", userID, want)
}

func TestHubPushReachesEveryJoinedConnection(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	first := dialHub(t, srv, 7)
	second := dialHub(t, srv, 7)
	joinAs(t, first, 7)
	joinAs(t, second, 7)
	waitForConnections(t, hub, 7, 2)

	n := &models.Notification{
		UserID:  7,
		Type:    models.NotificationRideJoined,
		RideID:  primitive.NewObjectID(),
		Message: "👤 Dana joined your ride: Morning Loop",
	}
	hub.Push(7, n)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, EventNotification, event.Event)
		require.NotNil(t, event.Notification)
		assert.Equal(t, uint(7), event.Notification.UserID)
		assert.Equal(t, n.Message, event.Notification.Message)
	}
}

func TestHubPushSkipsOtherRooms(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	bystander := dialHub(t, srv, 8)
	joinAs(t, bystander, 8)
	waitForConnections(t, hub, 8, 1)

	hub.Push(7, &models.Notification{UserID: 7, Message: "not for user 8"})

	require.NoError(t, bystander.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var event Event
	err := bystander.ReadJSON(&event)
	assert.Error(t, err, "a connection in another room must receive nothing")
}

func TestHubPushWithNoConnectionsIsNoOp(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Push(42, &models.Notification{UserID: 42, Message: "offline"})
	})
	assert.Zero(t, hub.Connections(42))
}

func TestHubUnjoinedConnectionIsNotAddressable(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	conn := dialHub(t, srv, 5)
	// Never joins; the room count for any user stays zero.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, hub.Connections(5))

	hub.Push(5, &models.Notification{UserID: 5, Message: "nobody home"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var event Event
	assert.Error(t, conn.ReadJSON(&event))
}

func TestHubRejectsJoinForAnotherUsersRoom(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	// Authenticated as user 5, tries to claim user 7's room.
	intruder := dialHub(t, srv, 5)
	joinAs(t, intruder, 7)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, hub.Connections(7))
	assert.Zero(t, hub.Connections(5))

	hub.Push(7, &models.Notification{UserID: 7, Message: "for user 7 only"})

	require.NoError(t, intruder.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var event Event
	assert.Error(t, intruder.ReadJSON(&event))

	// The same connection can still join its own room.
	joinAs(t, intruder, 5)
	waitForConnections(t, hub, 5, 1)
}

func TestHubDisconnectLeavesRoom(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	conn := dialHub(t, srv, 9)
	joinAs(t, conn, 9)
	waitForConnections(t, hub, 9, 1)

	conn.Close()
	waitForConnections(t, hub, 9, 0)
}
