package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bellapacxx/academy-backend/config"
	"github.com/bellapacxx/academy-backend/controllers"
	"github.com/bellapacxx/academy-backend/middleware"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/routes"
	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/utils/logger"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// initSentry enables error reporting when a DSN is configured.
func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		logger.Errorf("[Sentry] init failed: %v", err)
		return false
	}
	return true
}

// newAnnouncer builds the page poster. Without a page id and token the
// poster skips every announcement itself.
func newAnnouncer(cfg *config.Config) *services.PagePoster {
	if !cfg.FacebookEnabled() {
		logger.Debug("[Facebook] page posting disabled")
	}
	return services.NewPagePoster(cfg.FacebookAPIURL, cfg.FacebookPageID, cfg.FacebookAccessToken)
}

// buildHandlers wires services and controllers on top of the database.
func buildHandlers(ctx context.Context, cfg *config.Config, db *gorm.DB) routes.Handlers {
	var cache services.RankingCache = services.NoopRankingCache{}
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warnf("[Redis] ranking cache disabled: %v", err)
		} else {
			cache = services.NewRedisRankingCache(client)
		}
	}

	announcer := newAnnouncer(cfg)

	seasons := services.NewSeasonService(models.SeasonCalendar{Origin: cfg.SeasonOrigin, Months: cfg.SeasonMonths})
	media := services.NewMediaStore(cfg.MediaRoot, cfg.MediaURL)
	stats := services.NewStatsService(db, seasons)
	rankings := services.NewRankingService(db, seasons, cache, cfg.RankingCacheTTL, cfg.MediaURL)
	games := services.NewGameService(db, stats, rankings, announcer, cfg.PublicURL)
	auth := services.NewAuthService(db)
	hub := services.NewLiveHub()

	return routes.Handlers{
		Auth:      auth,
		Tokens:    controllers.NewAuthController(auth, cfg.MediaURL),
		Users:     controllers.NewUserController(services.NewUserService(db, media), cfg.MediaURL),
		Games:     controllers.NewGameController(games, hub, cfg.MediaURL),
		Stats:     controllers.NewStatsController(stats, rankings, cfg.MediaURL),
		Live:      controllers.NewLiveController(games, hub, cfg.MediaURL),
		MediaURL:  cfg.MediaURL,
		MediaRoot: cfg.MediaRoot,
	}
}

// setupRouter initializes Gin routes and middleware
func setupRouter(cfg *config.Config, zl *zap.Logger, h routes.Handlers, withSentry bool) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(ginzap.Ginzap(zl, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(zl, true))
	if withSentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(otelgin.Middleware("academy-backend"))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics())

	routes.SetupRoutes(r, h)
	return r
}

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	zl, err := logger.Setup(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer logger.Sync()

	withSentry := initSentry(cfg)
	if withSentry {
		defer sentry.Flush(2 * time.Second)
	}

	db, err := config.SetupDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("Database setup failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := setupRouter(cfg, zl, buildHandlers(ctx, cfg, db), withSentry)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Academy backend server starting", zap.Int("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
}
