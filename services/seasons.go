package services

import (
	"fmt"
	"time"

	"github.com/bellapacxx/academy-backend/models"
	"gorm.io/gorm"
)

type SeasonService struct {
	calendar models.SeasonCalendar
	now      func() time.Time
}

func NewSeasonService(calendar models.SeasonCalendar) *SeasonService {
	return &SeasonService{calendar: calendar, now: time.Now}
}

// ForDate returns the season containing t, creating its row on first use.
func (s *SeasonService) ForDate(db *gorm.DB, t time.Time) (*models.Season, error) {
	season := s.calendar.Season(s.calendar.NumberAt(t))
	if err := db.Where(models.Season{Number: season.Number}).FirstOrCreate(&season).Error; err != nil {
		return nil, fmt.Errorf("season for %s: %w", t.Format(time.DateOnly), err)
	}
	return &season, nil
}

// Current returns the season containing the current time.
func (s *SeasonService) Current(db *gorm.DB) (*models.Season, error) {
	return s.ForDate(db, s.now())
}
