package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type Season struct {
	Number    int            `gorm:"primaryKey;autoIncrement:false" json:"number"`
	StartDate datatypes.Date `gorm:"not null" json:"start_date"`
	EndDate   datatypes.Date `gorm:"not null" json:"end_date"` // inclusive
}

func (s *Season) Name() string {
	return fmt.Sprintf("Season %d", s.Number)
}

// Start is the first instant of the season.
func (s *Season) Start() time.Time {
	return time.Time(s.StartDate)
}

// End is the first instant after the season.
func (s *Season) End() time.Time {
	return time.Time(s.EndDate).AddDate(0, 0, 1)
}

// SeasonCalendar splits time into consecutive seasons of Months months
// starting at Origin. Dates before Origin belong to season 1.
type SeasonCalendar struct {
	Origin time.Time
	Months int
}

func (c SeasonCalendar) NumberAt(t time.Time) int {
	t = t.UTC()
	origin := c.Origin.UTC()
	if !t.After(origin) || c.Months <= 0 {
		return 1
	}
	months := (t.Year()-origin.Year())*12 + int(t.Month()) - int(origin.Month())
	if t.Before(origin.AddDate(0, months, 0)) {
		months--
	}
	return months/c.Months + 1
}

// Season builds the season with the given number. It is not persisted.
func (c SeasonCalendar) Season(number int) Season {
	start := c.Origin.UTC().AddDate(0, (number-1)*c.Months, 0)
	end := c.Origin.UTC().AddDate(0, number*c.Months, -1)
	return Season{
		Number:    number,
		StartDate: datatypes.Date(start),
		EndDate:   datatypes.Date(end),
	}
}
