package models

import (
	"time"

	"github.com/bellapacxx/academy-backend/game"
)

type Game struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	StartDatetime time.Time    `gorm:"not null;index" json:"start_datetime"`
	EndDatetime   *time.Time   `json:"end_datetime"`
	Official      bool         `gorm:"not null" json:"official"`
	Description   string       `gorm:"size:1000" json:"description"`
	Players       []GamePlayer `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Cards         []Card       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time    `json:"-"`
	UpdatedAt     time.Time    `json:"-"`
}

// GamePlayer seats a user at a game. Position is the 0-based seat and decides
// which cards the player draws.
type GamePlayer struct {
	ID       uint `gorm:"primaryKey"`
	GameID   uint `gorm:"not null;uniqueIndex:idx_game_player_user;uniqueIndex:idx_game_player_position"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_game_player_user"`
	User     User
	Position int `gorm:"not null;uniqueIndex:idx_game_player_position"`
}

type Card struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	GameID        uint      `gorm:"not null;uniqueIndex:idx_card_game_index" json:"-"`
	Index         int       `gorm:"column:draw_index;not null;uniqueIndex:idx_card_game_index" json:"-"`
	Value         int       `gorm:"not null" json:"value"`
	Suit          string    `gorm:"size:1;not null" json:"suit"`
	DrawnDatetime time.Time `gorm:"not null" json:"drawn_datetime"`
	Chug          *Chug     `gorm:"constraint:OnDelete:CASCADE" json:"chug"`
}

type Chug struct {
	ID                     uint `gorm:"primaryKey" json:"-"`
	CardID                 uint `gorm:"not null;uniqueIndex" json:"-"`
	DurationInMilliseconds int  `gorm:"not null" json:"duration_in_milliseconds"`
}

func (g *Game) HasEnded() bool {
	return g.EndDatetime != nil
}

// Duration is the wall-clock length of an ended game.
func (g *Game) Duration() time.Duration {
	if g.EndDatetime == nil {
		return 0
	}
	d := g.EndDatetime.Sub(g.StartDatetime)
	if d < 0 {
		return 0
	}
	return d
}

// PlayerIDs returns the ids of the seated users ordered by position.
// Players must be loaded ordered by position.
func (g *Game) PlayerIDs() []uint {
	ids := make([]uint, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.UserID
	}
	return ids
}

func (g *Game) HasPlayer(userID uint) bool {
	return g.PositionOf(userID) >= 0
}

// PositionOf returns the seat of the user, or -1 when the user is not playing.
func (g *Game) PositionOf(userID uint) int {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p.Position
		}
	}
	return -1
}

// LastCard returns the most recently drawn card. Cards must be loaded ordered by index.
func (g *Game) LastCard() *Card {
	if len(g.Cards) == 0 {
		return nil
	}
	return &g.Cards[len(g.Cards)-1]
}

// CardsDrawnBy returns the cards drawn by the player in the given seat.
func (g *Game) CardsDrawnBy(position int) []Card {
	var cards []Card
	for _, c := range g.Cards {
		if game.DrawerPosition(c.Index, len(g.Players)) == position {
			cards = append(cards, c)
		}
	}
	return cards
}

// SipsFor sums the values of the cards drawn by the user.
func (g *Game) SipsFor(userID uint) int {
	pos := g.PositionOf(userID)
	if pos < 0 {
		return 0
	}
	sips := 0
	for _, c := range g.CardsDrawnBy(pos) {
		sips += c.Value
	}
	return sips
}

// ChugsFor returns the chugs recorded on cards drawn by the user.
func (g *Game) ChugsFor(userID uint) []Chug {
	pos := g.PositionOf(userID)
	if pos < 0 {
		return nil
	}
	var chugs []Chug
	for _, c := range g.CardsDrawnBy(pos) {
		if c.Chug != nil {
			chugs = append(chugs, *c.Chug)
		}
	}
	return chugs
}
