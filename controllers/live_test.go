package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bellapacxx/academy-backend/controllers"
	"github.com/bellapacxx/academy-backend/testutil"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLive(t *testing.T, conn *websocket.Conn) controllers.LiveMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg controllers.LiveMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWatchGame(t *testing.T) {
	a := newAPI(t)
	alice, aliceAuth := a.user("alice")
	g := testutil.CreateGame(t, a.db, testutil.Epoch, alice)

	srv := httptest.NewServer(a.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/api/ws/games/%d", wsURL, g.ID), nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readLive(t, conn)
	assert.Equal(t, "game", msg.Type)
	assert.Equal(t, g.ID, msg.Game.ID)
	assert.Empty(t, msg.Game.Cards)
	require.Eventually(t, func() bool { return a.hub.ClientCount(g.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	path := fmt.Sprintf("/api/games/%d/update_state/", g.ID)
	w := a.request(http.MethodPost, path, aliceAuth, gin.H{"cards": []gin.H{card(8, "S", 1)}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	msg = readLive(t, conn)
	assert.Equal(t, "game", msg.Type)
	require.Len(t, msg.Game.Cards, 1)
	assert.Equal(t, 8, msg.Game.Cards[0].Value)

	w = a.request(http.MethodPost, path, aliceAuth, gin.H{
		"cards":        []gin.H{card(8, "S", 1)},
		"end_datetime": testutil.Epoch.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	msg = readLive(t, conn)
	assert.Equal(t, "ended", msg.Type)
	assert.True(t, msg.Game.HasEnded)
}

func TestWatchMissingGame(t *testing.T) {
	a := newAPI(t)
	w := a.request(http.MethodGet, "/api/ws/games/404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())
}
