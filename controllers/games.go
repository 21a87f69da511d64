package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bellapacxx/academy-backend/middleware"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/utils/logger"
	"github.com/gin-gonic/gin"
)

// gamesPageSize keeps one game per page, the way the app browses history.
const gamesPageSize = 1

type GameController struct {
	games    *services.GameService
	hub      *services.LiveHub
	mediaURL string
}

func NewGameController(games *services.GameService, hub *services.LiveHub, mediaURL string) *GameController {
	return &GameController{games: games, hub: hub, mediaURL: mediaURL}
}

type Page struct {
	Count    int64          `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []GameResponse `json:"results"`
}

// ListGames returns one page of games, newest first.
func (gc *GameController) ListGames(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, gin.H{"detail": msgInvalidPage})
			return
		}
		page = n
	}

	games, total, err := gc.games.List(c.Request.Context(), page, gamesPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	pages := int((total + gamesPageSize - 1) / gamesPageSize)
	if page > pages && page != 1 {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgInvalidPage})
		return
	}

	res := Page{
		Count:   total,
		Results: newSerializer(c, gc.mediaURL).Games(games),
	}
	if page < pages {
		next := pageURL(c, page+1)
		res.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		res.Previous = &prev
	}
	c.JSON(http.StatusOK, res)
}

// GetGame returns a game with what each player drank in it.
func (gc *GameController) GetGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	g, err := gc.games.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, gc.mediaURL).GameWithStats(g))
}

// CreateGame seats the players of a new game.
func (gc *GameController) CreateGame(c *gin.Context) {
	var in services.CreateGameInput
	if err := c.ShouldBind(&in); err != nil {
		if isEmptyBody(err) {
			respondError(c, &services.ValidationError{Fields: map[string][]string{
				"player_ids": {"This field is required."},
			}})
			return
		}
		respondError(c, bindingError(err))
		return
	}

	g, err := gc.games.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, gc.mediaURL).Game(g))
}

// UpdateState stores a player's view of the game and pushes the result to
// the game's spectators.
func (gc *GameController) UpdateState(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	if err := gc.games.Authorize(c.Request.Context(), id, user); err != nil {
		respondError(c, err)
		return
	}

	var in services.GameStateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		if isEmptyBody(err) {
			respondError(c, &services.ValidationError{Fields: map[string][]string{
				"cards": {"This field is required."},
			}})
			return
		}
		respondError(c, bindingError(err))
		return
	}

	g, finished, err := gc.games.UpdateState(c.Request.Context(), id, user, in)
	if err != nil {
		respondError(c, err)
		return
	}
	gc.publish(c, g, finished)
	c.JSON(http.StatusOK, gin.H{})
}

func (gc *GameController) publish(c *gin.Context, g *models.Game, finished bool) {
	if gc.hub == nil {
		return
	}
	kind := liveGame
	if finished {
		kind = liveEnded
	}
	msg, err := liveMessage(newSerializer(c, gc.mediaURL), kind, g)
	if err != nil {
		logger.Errorf("[Game %d] failed to encode live message: %v", g.ID, err)
		return
	}
	gc.hub.Broadcast(g.ID, msg)
}

func liveMessage(s serializer, kind string, g *models.Game) ([]byte, error) {
	return json.Marshal(LiveMessage{Type: kind, Game: s.Game(g)})
}

// gameID parses the :id path parameter. Malformed ids are reported like
// missing games.
func gameID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, services.ErrGameNotFound)
		return 0, false
	}
	return uint(id), true
}

// pageURL is the absolute URL of the current request on another page. Page 1
// drops the parameter.
func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return requestOrigin(c) + u.RequestURI()
}
