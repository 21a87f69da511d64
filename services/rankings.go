package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bellapacxx/academy-backend/game"
	"github.com/bellapacxx/academy-backend/metrics"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/utils/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ranking orders the PlayerStats of a season by one statistic.
type Ranking struct {
	Name      string
	Column    string
	Ascending bool
	Value     func(ps *models.PlayerStat) string
}

// Rankings are paired with the suits in deck order.
var Rankings = []Ranking{
	{
		Name:   "Total sips",
		Column: "total_sips",
		Value:  func(ps *models.PlayerStat) string { return strconv.Itoa(ps.TotalSips) },
	},
	{
		Name:   "Best game",
		Column: "best_game_sips",
		Value:  func(ps *models.PlayerStat) string { return strconv.Itoa(ps.BestGameSips) },
	},
	{
		Name:      "Fastest chug",
		Column:    "fastest_chug_ms",
		Ascending: true,
		Value: func(ps *models.PlayerStat) string {
			if ps.FastestChugMs == nil {
				return ""
			}
			return MillisecondsToSeconds(*ps.FastestChugMs)
		},
	},
	{
		Name:   "Games played",
		Column: "total_games",
		Value:  func(ps *models.PlayerStat) string { return strconv.Itoa(ps.TotalGames) },
	},
}

// MillisecondsToSeconds formats a duration as seconds with two decimals.
func MillisecondsToSeconds(ms int) string {
	return decimal.NewFromInt(int64(ms)).Shift(-3).StringFixed(2)
}

// Query returns the stats of the season ordered best first. Only users with
// an image are ranked since their picture is printed on the card.
func (r Ranking) Query(db *gorm.DB, seasonNumber int) *gorm.DB {
	column := "player_stats." + r.Column
	q := db.Model(&models.PlayerStat{}).
		Joins("JOIN users ON users.id = player_stats.user_id").
		Where("player_stats.season_number = ? AND player_stats.total_games > 0", seasonNumber).
		Where("users.image <> ''")
	if r.Ascending {
		q = q.Where(column + " IS NOT NULL").Order(column + " ASC")
	} else {
		q = q.Order(column + " DESC")
	}
	return q.Order("player_stats.user_id")
}

// Facecard is one face card of the deck printed with a ranked player.
type Facecard struct {
	UserID       uint   `json:"user_id"`
	UserUsername string `json:"user_username"`
	UserImage    string `json:"user_image"`
	RankingName  string `json:"ranking_name"`
	RankingValue string `json:"ranking_value"`
}

type RankingService struct {
	db       *gorm.DB
	seasons  *SeasonService
	cache    RankingCache
	ttl      time.Duration
	mediaURL string
}

func NewRankingService(db *gorm.DB, seasons *SeasonService, cache RankingCache, ttl time.Duration, mediaURL string) *RankingService {
	if cache == nil {
		cache = NoopRankingCache{}
	}
	return &RankingService{db: db, seasons: seasons, cache: cache, ttl: ttl, mediaURL: mediaURL}
}

// RankedFacecards maps "<suit>-<value>" to the player shown on that face card
// for the current season.
func (s *RankingService) RankedFacecards(ctx context.Context) (map[string]Facecard, error) {
	if data, ok, err := s.cache.Get(ctx); err != nil {
		logger.Warnf("[Rankings] cache read failed: %v", err)
	} else if ok {
		var cached map[string]Facecard
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.RankingCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}
	metrics.RankingCacheLookups.WithLabelValues("miss").Inc()

	facecards, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facecards); err == nil {
		if err := s.cache.Set(ctx, data, s.ttl); err != nil {
			logger.Warnf("[Rankings] cache write failed: %v", err)
		}
	}
	return facecards, nil
}

// Invalidate drops the cached face-cards after statistics changed.
func (s *RankingService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warnf("[Rankings] cache invalidation failed: %v", err)
	}
}

func (s *RankingService) compute(ctx context.Context) (map[string]Facecard, error) {
	db := s.db.WithContext(ctx)

	season, err := s.seasons.Current(db)
	if err != nil {
		return nil, err
	}

	facecards := make(map[string]Facecard)
	for i, ranking := range Rankings {
		if i >= len(game.Suits) {
			break
		}
		suit := game.Suits[i]

		var stats []models.PlayerStat
		err := ranking.Query(db, season.Number).
			Preload("User").
			Limit(len(game.FaceCardValues)).
			Find(&stats).Error
		if err != nil {
			return nil, fmt.Errorf("ranking %q: %w", ranking.Name, err)
		}

		for j := range stats {
			ps := &stats[j]
			value := game.FaceCardValues[j]
			facecards[fmt.Sprintf("%s-%d", suit, value)] = Facecard{
				UserID:       ps.User.ID,
				UserUsername: ps.User.Username,
				UserImage:    ps.User.ImageURL(s.mediaURL),
				RankingName:  ranking.Name,
				RankingValue: ranking.Value(ps),
			}
		}
	}
	return facecards, nil
}
