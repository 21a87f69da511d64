package services

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

func dialHub(t *testing.T, hub *LiveHub, gameID uint, initial []byte) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, gameID, initial)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestLiveHubBroadcastsToGameSpectators(t *testing.T) {
	hub := NewLiveHub()
	first := dialHub(t, hub, 1, []byte(`{"type":"game"}`))
	second := dialHub(t, hub, 1, nil)
	other := dialHub(t, hub, 2, nil)

	assert.Equal(t, `{"type":"game"}`, readMessage(t, first))
	require.Eventually(t, func() bool {
		return hub.ClientCount(1) == 2 && hub.ClientCount(2) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(1, []byte(`{"type":"ended"}`))
	assert.Equal(t, `{"type":"ended"}`, readMessage(t, first))
	assert.Equal(t, `{"type":"ended"}`, readMessage(t, second))

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestLiveHubRemovesClosedClients(t *testing.T) {
	hub := NewLiveHub()
	conn := dialHub(t, hub, 7, nil)
	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount(7) == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(7, []byte("nobody listening"))
}
