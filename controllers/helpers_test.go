package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bellapacxx/academy-backend/controllers"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/routes"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	hub    *services.LiveHub
}

func newAPI(t *testing.T) *api {
	t.Helper()

	db := testutil.NewDB(t)
	mediaRoot := t.TempDir()
	seasons := services.NewSeasonService(models.SeasonCalendar{
		Origin: time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC),
		Months: 6,
	})
	stats := services.NewStatsService(db, seasons)
	rankings := services.NewRankingService(db, seasons, nil, time.Minute, "/media/")
	games := services.NewGameService(db, stats, rankings, nil, "https://academy.beer")
	auth := services.NewAuthService(db)
	hub := services.NewLiveHub()

	r := gin.New()
	routes.SetupRoutes(r, routes.Handlers{
		Auth:      auth,
		Tokens:    controllers.NewAuthController(auth, "/media/"),
		Users:     controllers.NewUserController(services.NewUserService(db, services.NewMediaStore(mediaRoot, "/media/")), "/media/"),
		Games:     controllers.NewGameController(games, hub, "/media/"),
		Stats:     controllers.NewStatsController(stats, rankings, "/media/"),
		Live:      controllers.NewLiveController(games, hub, "/media/"),
		MediaURL:  "/media/",
		MediaRoot: mediaRoot,
	})
	return &api{t: t, db: db, router: r, hub: hub}
}

// user creates a user and returns it with an Authorization header value.
func (a *api) user(name string) (*models.User, string) {
	a.t.Helper()
	u := testutil.CreateUser(a.t, a.db, name)
	return u, "Token " + testutil.CreateToken(a.t, a.db, u)
}

func (a *api) request(method, path, auth string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return a.serve(req)
}

func (a *api) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
