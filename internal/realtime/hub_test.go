package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, time.Second, 5*time.Millisecond)
}

func TestPublishReachesClients(t *testing.T) {
	hub := NewHub()
	first := dial(t, hub)
	second := dial(t, hub)
	waitForClients(t, hub, 2)

	hub.Publish(Event{Type: EventLevelUp, Payload: map[string]int{"level": 2}})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var ev struct {
			Type    string         `json:"type"`
			Payload map[string]int `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, EventLevelUp, ev.Type)
		assert.Equal(t, 2, ev.Payload["level"])
	}
}

func TestClientDisconnectIsRemoved(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub)
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	late := dial(t, hub)
	late.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Clients())
}

func TestPublishWithoutClients(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Publish(Event{Type: EventGameUpdate, GameID: "g1"})
	})
}
