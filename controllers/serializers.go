package controllers

import (
	"strings"
	"time"

	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/gin-gonic/gin"
)

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

type PlayerResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

type ChugResponse struct {
	DurationInMilliseconds int `json:"duration_in_milliseconds"`
}

type CardResponse struct {
	Value         int           `json:"value"`
	Suit          string        `json:"suit"`
	DrawnDatetime time.Time     `json:"drawn_datetime"`
	Chug          *ChugResponse `json:"chug"`
}

type GameResponse struct {
	ID            uint             `json:"id"`
	StartDatetime time.Time        `json:"start_datetime"`
	EndDatetime   *time.Time       `json:"end_datetime"`
	Official      bool             `json:"official"`
	Description   string           `json:"description"`
	HasEnded      bool             `json:"has_ended"`
	PlayerIDs     []uint           `json:"player_ids"`
	Players       []PlayerResponse `json:"players"`
	Cards         []CardResponse   `json:"cards"`
}

// GamePlayerStats is how much one player drank in a single game.
type GamePlayerStats struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	TotalSips  int    `json:"total_sips"`
	TotalBeers string `json:"total_beers"`
	Chugs      []int  `json:"chugs"`
}

type GameWithStatsResponse struct {
	GameResponse
	PlayerStats []GamePlayerStats `json:"player_stats"`
}

type PlayerStatResponse struct {
	SeasonNumber           int    `json:"season_number"`
	SeasonName             string `json:"season_name"`
	TotalGames             int    `json:"total_games"`
	TotalTimePlayedSeconds int64  `json:"total_time_played_seconds"`
	TotalSips              int    `json:"total_sips"`
	TotalBeers             string `json:"total_beers"`
	BestGame               *uint  `json:"best_game"`
	BestGameSips           int    `json:"best_game_sips"`
	WorstGame              *uint  `json:"worst_game"`
	WorstGameSips          int    `json:"worst_game_sips"`
	TotalChugs             int    `json:"total_chugs"`
	FastestChugGame        *uint  `json:"fastest_chug_game"`
	FastestChugMs          *int   `json:"fastest_chug_ms"`
	AverageChugMs          *int   `json:"average_chug_ms"`
}

// LiveMessage is pushed to the spectators of a game.
type LiveMessage struct {
	Type string       `json:"type"`
	Game GameResponse `json:"game"`
}

const (
	liveGame  = "game"
	liveEnded = "ended"
)

// serializer renders models, resolving media paths against the request host.
type serializer struct {
	c        *gin.Context
	mediaURL string
}

func newSerializer(c *gin.Context, mediaURL string) serializer {
	return serializer{c: c, mediaURL: mediaURL}
}

func (s serializer) image(u *models.User) string {
	return absoluteURL(s.c, u.ImageURL(s.mediaURL))
}

func (s serializer) User(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Image:    s.image(u),
	}
}

func (s serializer) Users(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = s.User(&users[i])
	}
	return out
}

func (s serializer) Game(g *models.Game) GameResponse {
	res := GameResponse{
		ID:            g.ID,
		StartDatetime: g.StartDatetime,
		EndDatetime:   g.EndDatetime,
		Official:      g.Official,
		Description:   g.Description,
		HasEnded:      g.HasEnded(),
		PlayerIDs:     g.PlayerIDs(),
		Players:       make([]PlayerResponse, len(g.Players)),
		Cards:         make([]CardResponse, len(g.Cards)),
	}
	for i := range g.Players {
		u := &g.Players[i].User
		res.Players[i] = PlayerResponse{ID: u.ID, Username: u.Username, Image: s.image(u)}
	}
	for i, card := range g.Cards {
		res.Cards[i] = CardResponse{
			Value:         card.Value,
			Suit:          card.Suit,
			DrawnDatetime: card.DrawnDatetime,
		}
		if card.Chug != nil {
			res.Cards[i].Chug = &ChugResponse{DurationInMilliseconds: card.Chug.DurationInMilliseconds}
		}
	}
	return res
}

func (s serializer) Games(games []models.Game) []GameResponse {
	out := make([]GameResponse, len(games))
	for i := range games {
		out[i] = s.Game(&games[i])
	}
	return out
}

func (s serializer) GameWithStats(g *models.Game) GameWithStatsResponse {
	res := GameWithStatsResponse{
		GameResponse: s.Game(g),
		PlayerStats:  make([]GamePlayerStats, len(g.Players)),
	}
	for i, p := range g.Players {
		stat := models.PlayerStat{UserID: p.UserID, TotalSips: g.SipsFor(p.UserID)}
		chugs := g.ChugsFor(p.UserID)
		ms := make([]int, len(chugs))
		for j, chug := range chugs {
			ms[j] = chug.DurationInMilliseconds
		}
		res.PlayerStats[i] = GamePlayerStats{
			ID:         p.UserID,
			Username:   p.User.Username,
			TotalSips:  stat.TotalSips,
			TotalBeers: stat.TotalBeers().StringFixed(2),
			Chugs:      ms,
		}
	}
	return res
}

func (s serializer) PlayerStats(stats []models.PlayerStat) []PlayerStatResponse {
	out := make([]PlayerStatResponse, len(stats))
	for i := range stats {
		ps := &stats[i]
		out[i] = PlayerStatResponse{
			SeasonNumber:           ps.SeasonNumber,
			SeasonName:             ps.SeasonName(),
			TotalGames:             ps.TotalGames,
			TotalTimePlayedSeconds: ps.TotalTimePlayedSeconds,
			TotalSips:              ps.TotalSips,
			TotalBeers:             ps.TotalBeers().StringFixed(2),
			BestGame:               ps.BestGameID,
			BestGameSips:           ps.BestGameSips,
			WorstGame:              ps.WorstGameID,
			WorstGameSips:          ps.WorstGameSips,
			TotalChugs:             ps.TotalChugs,
			FastestChugGame:        ps.FastestChugGameID,
			FastestChugMs:          ps.FastestChugMs,
			AverageChugMs:          ps.AverageChugMs,
		}
	}
	return out
}

// Facecards resolves the card images against the request host.
func (s serializer) Facecards(cards map[string]services.Facecard) map[string]services.Facecard {
	out := make(map[string]services.Facecard, len(cards))
	for key, card := range cards {
		card.UserImage = absoluteURL(s.c, card.UserImage)
		out[key] = card
	}
	return out
}

// absoluteURL prefixes path with the scheme and host the request came in on.
func absoluteURL(c *gin.Context, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return requestOrigin(c) + "/" + strings.TrimPrefix(path, "/")
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
