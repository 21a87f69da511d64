package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/testutil"
	"gorm.io/gorm"
)

// recordingAnnouncer remembers every announcement.
type recordingAnnouncer struct {
	mu    sync.Mutex
	posts []string
	done  chan struct{}
	err   error
}

func newRecordingAnnouncer() *recordingAnnouncer {
	return &recordingAnnouncer{done: make(chan struct{}, 8)}
}

func (a *recordingAnnouncer) Announce(_ context.Context, message, link string) error {
	a.mu.Lock()
	a.posts = append(a.posts, message+" "+link)
	a.mu.Unlock()
	a.done <- struct{}{}
	return a.err
}

func (a *recordingAnnouncer) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-a.done:
	case <-time.After(2 * time.Second):
		t.Fatal("announcement not posted")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.posts...)
}

// memoryCache is a RankingCache kept in memory.
type memoryCache struct {
	data        []byte
	invalidated int
}

func (c *memoryCache) Get(context.Context) ([]byte, bool, error) {
	return c.data, c.data != nil, nil
}

func (c *memoryCache) Set(_ context.Context, data []byte, _ time.Duration) error {
	c.data = data
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.data = nil
	c.invalidated++
	return nil
}

type fixture struct {
	db        *gorm.DB
	seasons   *SeasonService
	stats     *StatsService
	rankings  *RankingService
	games     *GameService
	cache     *memoryCache
	announcer *recordingAnnouncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:        db,
		cache:     &memoryCache{},
		announcer: newRecordingAnnouncer(),
	}
	f.seasons = NewSeasonService(models.SeasonCalendar{
		Origin: time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC),
		Months: 6,
	})
	f.seasons.now = func() time.Time { return testutil.Epoch.Add(time.Hour) }
	f.stats = NewStatsService(db, f.seasons)
	f.rankings = NewRankingService(db, f.seasons, f.cache, time.Minute, "/media/")
	f.games = NewGameService(db, f.stats, f.rankings, f.announcer, "https://academy.beer")
	f.games.now = func() time.Time { return testutil.Epoch }
	return f
}

func cards(values ...int) []CardInput {
	out := make([]CardInput, len(values))
	for i, v := range values {
		out[i] = CardInput{
			Value:         v,
			Suit:          "S",
			DrawnDatetime: testutil.Epoch.Add(time.Duration(i+1) * time.Minute),
		}
	}
	return out
}

func chug(ms int) *ChugInput {
	return &ChugInput{DurationInMilliseconds: &ms}
}

func ptr[T any](v T) *T {
	return &v
}
