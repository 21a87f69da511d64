package controllers

import (
	"net/http"
	"strconv"

	"github.com/bellapacxx/academy-backend/services"
	"github.com/gin-gonic/gin"
)

type StatsController struct {
	stats    *services.StatsService
	rankings *services.RankingService
	mediaURL string
}

func NewStatsController(stats *services.StatsService, rankings *services.RankingService, mediaURL string) *StatsController {
	return &StatsController{stats: stats, rankings: rankings, mediaURL: mediaURL}
}

// PlayerStats lists a user's statistics, all time first, then by season.
func (sc *StatsController) PlayerStats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return
	}
	stats, err := sc.stats.ForUser(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, sc.mediaURL).PlayerStats(stats))
}

// RankedFacecards returns the players printed on the face cards this season.
func (sc *StatsController) RankedFacecards(c *gin.Context) {
	cards, err := sc.rankings.RankedFacecards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSerializer(c, sc.mediaURL).Facecards(cards))
}
