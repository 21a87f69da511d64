package services

import (
	"net/http"

	"github.com/bellapacxx/academy-backend/utils/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades the request and subscribes the connection to the game.
// initial is sent before any broadcast.
func (h *LiveHub) Serve(w http.ResponseWriter, r *http.Request, gameID uint, initial []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("[WS] upgrade error: %v", err)
		return
	}

	client := &Client{
		gameID: gameID,
		conn:   conn,
		hub:    h,
		send:   make(chan []byte, sendBuffer),
	}
	if initial != nil {
		client.send <- initial
	}
	h.addClient(client)

	go client.writePump()
	go client.readPump()
}
