package controllers

import (
	"errors"

	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/utils/logger"
	"github.com/gin-gonic/gin"
)

type LiveController struct {
	games    *services.GameService
	hub      *services.LiveHub
	mediaURL string
}

func NewLiveController(games *services.GameService, hub *services.LiveHub, mediaURL string) *LiveController {
	return &LiveController{games: games, hub: hub, mediaURL: mediaURL}
}

// WatchGame upgrades to a WebSocket that receives the game after every update.
func (lc *LiveController) WatchGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	g, err := lc.games.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			notFound(c)
			return
		}
		respondError(c, err)
		return
	}

	initial, err := liveMessage(newSerializer(c, lc.mediaURL), liveGame, g)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Debugf("[WS] spectator joined game %d", id)
	lc.hub.Serve(c.Writer, c.Request, id, initial)
}
