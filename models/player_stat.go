package models

import (
	"time"

	"github.com/bellapacxx/academy-backend/game"
	"github.com/shopspring/decimal"
)

// AllTimeSeason is the season number of the statistics row spanning every season.
const AllTimeSeason = 0

// PlayerStat aggregates a user's ended, official games within one season
// (or all time). Rows are recomputed from the games when a game ends.
type PlayerStat struct {
	ID                     uint  `gorm:"primaryKey"`
	UserID                 uint  `gorm:"not null;uniqueIndex:idx_player_stat_user_season"`
	User                   User  `gorm:"constraint:OnDelete:CASCADE"`
	SeasonNumber           int   `gorm:"not null;uniqueIndex:idx_player_stat_user_season;index"`
	TotalGames             int   `gorm:"not null"`
	TotalTimePlayedSeconds int64 `gorm:"not null"`
	TotalSips              int   `gorm:"not null"`
	BestGameSips           int   `gorm:"not null"`
	BestGameID             *uint
	WorstGameSips          int `gorm:"not null"`
	WorstGameID            *uint
	TotalChugs             int   `gorm:"not null"`
	TotalChugMs            int64 `gorm:"not null"`
	FastestChugMs          *int
	FastestChugGameID      *uint
	AverageChugMs          *int
	UpdatedAt              time.Time
}

// TotalBeers converts sips to beers, rounded to two decimals.
func (ps *PlayerStat) TotalBeers() decimal.Decimal {
	return decimal.NewFromInt(int64(ps.TotalSips)).
		Div(decimal.NewFromInt(game.SipsPerBeer)).
		Round(2)
}

func (ps *PlayerStat) SeasonName() string {
	if ps.SeasonNumber == AllTimeSeason {
		return "All time"
	}
	s := Season{Number: ps.SeasonNumber}
	return s.Name()
}

// Reset clears the aggregates before a recomputation.
func (ps *PlayerStat) Reset() {
	userID, season := ps.UserID, ps.SeasonNumber
	id := ps.ID
	*ps = PlayerStat{ID: id, UserID: userID, SeasonNumber: season}
}

// AddGame folds one ended game into the aggregates.
func (ps *PlayerStat) AddGame(g *Game) {
	sips := g.SipsFor(ps.UserID)
	gameID := g.ID

	ps.TotalGames++
	ps.TotalTimePlayedSeconds += int64(g.Duration() / time.Second)
	ps.TotalSips += sips

	if ps.BestGameID == nil || sips > ps.BestGameSips {
		ps.BestGameSips = sips
		ps.BestGameID = &gameID
	}
	if ps.WorstGameID == nil || sips < ps.WorstGameSips {
		ps.WorstGameSips = sips
		ps.WorstGameID = &gameID
	}

	for _, chug := range g.ChugsFor(ps.UserID) {
		ms := chug.DurationInMilliseconds
		ps.TotalChugs++
		ps.TotalChugMs += int64(ms)
		if ps.FastestChugMs == nil || ms < *ps.FastestChugMs {
			fastest := ms
			ps.FastestChugMs = &fastest
			ps.FastestChugGameID = &gameID
		}
	}
	if ps.TotalChugs > 0 {
		avg := int(ps.TotalChugMs / int64(ps.TotalChugs))
		ps.AverageChugMs = &avg
	}
}
