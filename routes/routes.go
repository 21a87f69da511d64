package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/bellapacxx/academy-backend/controllers"
	"github.com/bellapacxx/academy-backend/middleware"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth      *services.AuthService
	Tokens    *controllers.AuthController
	Users     *controllers.UserController
	Games     *controllers.GameController
	Stats     *controllers.StatsController
	Live      *controllers.LiveController
	MediaURL  string
	MediaRoot string
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.MediaRoot != "" {
		r.Static(strings.TrimSuffix(h.MediaURL, "/"), h.MediaRoot)
	}

	api := r.Group("/api", middleware.TokenAuth(h.Auth))

	// ----------------------
	// Auth routes
	// ----------------------
	api.POST("/api-token-auth/", h.Tokens.ObtainToken)

	// ----------------------
	// User routes
	// ----------------------
	users := api.Group("/users", middleware.CreateOrAuthenticated())
	users.GET("/", h.Users.ListUsers)
	users.POST("/", h.Users.RegisterUser)
	users.GET("/:id/", h.Users.GetUser)
	users.PUT("/:id/", h.Users.UpdateUser)
	users.PATCH("/:id/", h.Users.UpdateUser)
	users.DELETE("/:id/", h.Users.DeleteUser)

	// ----------------------
	// Game routes
	// ----------------------
	games := api.Group("/games", middleware.CreateOrAuthenticated())
	games.GET("/", h.Games.ListGames)
	games.POST("/", h.Games.CreateGame)
	games.GET("/:id/", h.Games.GetGame)
	games.POST("/:id/update_state/", middleware.RequireAuthenticated(), h.Games.UpdateState)

	// ----------------------
	// Stats routes
	// ----------------------
	readOnly := api.Group("", middleware.IsAuthenticatedOrReadOnly())
	readOnly.GET("/ranked_cards/", h.Stats.RankedFacecards)
	readOnly.GET("/stats/:id/", h.Stats.PlayerStats)

	// ----------------------
	// Live game feed
	// ----------------------
	api.GET("/ws/games/:id", h.Live.WatchGame)
}
