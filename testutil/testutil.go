// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/bellapacxx/academy-backend/config"
	"github.com/bellapacxx/academy-backend/game"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Password is the plain-text password of every user made by CreateUser.
const Password = "drink-responsibly"

// Epoch is a fixed instant fixtures are placed around.
var Epoch = time.Date(2024, time.March, 1, 20, 0, 0, 0, time.UTC)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// CreateUser stores a user whose password is Password.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateToken stores an API token for user and returns its key.
func CreateToken(t testing.TB, db *gorm.DB, user *models.User) string {
	t.Helper()

	token := &models.Token{Key: fmt.Sprintf("%040x", user.ID), UserID: user.ID}
	require.NoError(t, db.Create(token).Error)
	return token.Key
}

// CreateGame stores an official game started at start with players seated
// in the given order.
func CreateGame(t testing.TB, db *gorm.DB, start time.Time, players ...*models.User) *models.Game {
	t.Helper()

	g := &models.Game{StartDatetime: start.UTC(), Official: true}
	require.NoError(t, db.Omit("Players", "Cards").Create(g).Error)
	for i, p := range players {
		gp := models.GamePlayer{GameID: g.ID, UserID: p.ID, Position: i, User: *p}
		require.NoError(t, db.Omit("User").Create(&gp).Error)
		g.Players = append(g.Players, gp)
	}
	return g
}

// Card describes a card to draw in DrawCards.
type Card struct {
	Value   int
	Suit    game.Suit
	ChugMs  int
	DrawnAt time.Time
}

// DrawCards appends cards to g in order, after any it already holds.
func DrawCards(t testing.TB, db *gorm.DB, g *models.Game, cards ...Card) {
	t.Helper()

	for _, c := range cards {
		drawn := c.DrawnAt
		if drawn.IsZero() {
			drawn = g.StartDatetime.Add(time.Duration(len(g.Cards)+1) * time.Minute)
		}
		card := models.Card{
			GameID:        g.ID,
			Index:         len(g.Cards),
			Value:         c.Value,
			Suit:          string(c.Suit),
			DrawnDatetime: drawn.UTC(),
		}
		if c.ChugMs > 0 {
			card.Chug = &models.Chug{DurationInMilliseconds: c.ChugMs}
		}
		require.NoError(t, db.Create(&card).Error)
		g.Cards = append(g.Cards, card)
	}
}

// EndGame sets the end time of g.
func EndGame(t testing.TB, db *gorm.DB, g *models.Game, end time.Time) {
	t.Helper()

	end = end.UTC()
	g.EndDatetime = &end
	require.NoError(t, db.Model(g).Update("end_datetime", end).Error)
}
