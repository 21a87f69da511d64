package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bellapacxx/academy-backend/models"
	"gorm.io/gorm"
)

type StatsService struct {
	db      *gorm.DB
	seasons *SeasonService
}

func NewStatsService(db *gorm.DB, seasons *SeasonService) *StatsService {
	return &StatsService{db: db, seasons: seasons}
}

// ForUser returns the user's statistics, all-time first and then by season.
func (s *StatsService) ForUser(ctx context.Context, userID uint) ([]models.PlayerStat, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	var stats []models.PlayerStat
	if err := db.Where("user_id = ?", userID).Order("season_number").Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("stats for user %d: %w", userID, err)
	}
	return stats, nil
}

// UpdateOnGameFinished recomputes the season and all-time statistics of
// every player of g. It runs on the caller's transaction.
func (s *StatsService) UpdateOnGameFinished(tx *gorm.DB, g *models.Game) error {
	season, err := s.seasons.ForDate(tx, g.StartDatetime)
	if err != nil {
		return err
	}
	for _, p := range g.Players {
		if err := s.recalculate(tx, p.UserID, season); err != nil {
			return err
		}
		if err := s.recalculate(tx, p.UserID, nil); err != nil {
			return err
		}
	}
	return nil
}

// recalculate rebuilds one PlayerStat row from the user's ended, official
// games. A nil season means all time.
func (s *StatsService) recalculate(tx *gorm.DB, userID uint, season *models.Season) error {
	seasonNumber := models.AllTimeSeason
	if season != nil {
		seasonNumber = season.Number
	}

	seats := tx.Model(&models.GamePlayer{}).Select("game_id").Where("user_id = ?", userID)
	q := tx.Where("id IN (?)", seats).
		Where("end_datetime IS NOT NULL AND official = ?", true)
	if season != nil {
		q = q.Where("start_datetime >= ? AND start_datetime < ?", season.Start(), season.End())
	}

	var games []models.Game
	err := q.Order("start_datetime").
		Preload("Players", orderByPosition).
		Preload("Cards", orderByIndex).
		Preload("Cards.Chug").
		Find(&games).Error
	if err != nil {
		return fmt.Errorf("load games for user %d: %w", userID, err)
	}

	var stat models.PlayerStat
	err = tx.Where("user_id = ? AND season_number = ?", userID, seasonNumber).First(&stat).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load stat for user %d: %w", userID, err)
	}

	stat.UserID = userID
	stat.SeasonNumber = seasonNumber
	stat.Reset()
	for i := range games {
		stat.AddGame(&games[i])
	}

	if err := tx.Save(&stat).Error; err != nil {
		return fmt.Errorf("save stat for user %d: %w", userID, err)
	}
	return nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func orderByIndex(db *gorm.DB) *gorm.DB {
	return db.Order("draw_index")
}
