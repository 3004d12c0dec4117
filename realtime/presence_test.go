package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestSocket upgrades a connection against an httptest server and hands
// the server-side conn to the caller.
func dialTestSocket(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-serverConns
	return serverConn, clientConn
}

func TestHub_RegisterAndDeliver(t *testing.T) {
	hub := NewHub()
	serverConn, clientConn := dialTestSocket(t)

	assert.False(t, hub.IsOnline(7))
	hub.Register(7, serverConn)
	assert.True(t, hub.IsOnline(7))

	ok := hub.Deliver(7, map[string]string{"event": "notification", "text": "hello"})
	require.True(t, ok)

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	var got map[string]string
	require.NoError(t, clientConn.ReadJSON(&got))
	assert.Equal(t, "hello", got["text"])
}

func TestHub_DeliverToOfflineUser(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.Deliver(99, map[string]string{"text": "nobody home"}))
}

func TestHub_Remove(t *testing.T) {
	hub := NewHub()
	serverConn, _ := dialTestSocket(t)

	hub.Register(7, serverConn)
	hub.Remove(7, serverConn)
	assert.False(t, hub.IsOnline(7))
	assert.False(t, hub.Deliver(7, map[string]string{"text": "gone"}))
}

func TestHub_StaleRemoveKeepsFreshConnection(t *testing.T) {
	hub := NewHub()
	oldServer, _ := dialTestSocket(t)
	newServer, newClient := dialTestSocket(t)

	hub.Register(7, oldServer)
	hub.Register(7, newServer)

	// The replaced handler's cleanup fires after the reconnect. It must
	// not evict the replacement socket.
	hub.Remove(7, oldServer)
	assert.True(t, hub.IsOnline(7))

	require.True(t, hub.Deliver(7, map[string]string{"text": "still here"}))
	newClient.SetReadDeadline(time.Now().Add(time.Second))
	var got map[string]string
	require.NoError(t, newClient.ReadJSON(&got))
	assert.Equal(t, "still here", got["text"])
}

func TestHub_ReplacingConnectionClosesOld(t *testing.T) {
	hub := NewHub()
	oldServer, oldClient := dialTestSocket(t)
	newServer, newClient := dialTestSocket(t)

	hub.Register(7, oldServer)
	hub.Register(7, newServer)

	// Old client sees the close.
	oldClient.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := oldClient.ReadMessage()
	assert.Error(t, err)

	// Delivery lands on the new socket.
	require.True(t, hub.Deliver(7, map[string]string{"text": "fresh"}))
	newClient.SetReadDeadline(time.Now().Add(time.Second))
	var got map[string]string
	require.NoError(t, newClient.ReadJSON(&got))
	assert.Equal(t, "fresh", got["text"])
}

func TestHub_DeliverRaw(t *testing.T) {
	hub := NewHub()
	serverConn, clientConn := dialTestSocket(t)
	hub.Register(3, serverConn)

	payload, err := json.Marshal(map[string]string{"text": "raw"})
	require.NoError(t, err)
	require.True(t, hub.DeliverRaw(3, payload))

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := clientConn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(data))
}
