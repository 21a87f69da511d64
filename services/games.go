package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bellapacxx/academy-backend/game"
	"github.com/bellapacxx/academy-backend/metrics"
	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/utils/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const announceTimeout = 15 * time.Second

type CreateGameInput struct {
	PlayerIDs     []uint     `json:"player_ids" form:"player_ids" binding:"required"`
	Official      *bool      `json:"official" form:"official"`
	Description   string     `json:"description" form:"description" binding:"max=1000"`
	StartDatetime *time.Time `json:"start_datetime" form:"start_datetime"`
}

type ChugInput struct {
	DurationInMilliseconds *int `json:"duration_in_milliseconds" binding:"omitempty,gt=0"`
}

type CardInput struct {
	Value         int        `json:"value" binding:"required,min=2,max=14"`
	Suit          string     `json:"suit" binding:"required,suit"`
	DrawnDatetime time.Time  `json:"drawn_datetime" binding:"required"`
	Chug          *ChugInput `json:"chug"`
}

// chugMs returns the chug duration, or 0 when the card carries none.
func (c CardInput) chugMs() int {
	if c.Chug == nil || c.Chug.DurationInMilliseconds == nil {
		return 0
	}
	return *c.Chug.DurationInMilliseconds
}

// GameStateInput is the full state of a game as tracked by a client. Nil
// fields are left unchanged; Cards always holds every card drawn so far.
type GameStateInput struct {
	PlayerIDs     []uint      `json:"player_ids"`
	StartDatetime *time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time  `json:"end_datetime"`
	Official      *bool       `json:"official"`
	Description   *string     `json:"description" binding:"omitempty,max=1000"`
	Cards         []CardInput `json:"cards" binding:"required,dive"`
}

// stateChange records what an update added, for metrics after commit.
type stateChange struct {
	finished bool
	cards    []models.Card
	chugs    []int
}

type GameService struct {
	db        *gorm.DB
	stats     *StatsService
	rankings  *RankingService
	announcer Announcer
	publicURL string
	now       func() time.Time
}

func NewGameService(db *gorm.DB, stats *StatsService, rankings *RankingService, announcer Announcer, publicURL string) *GameService {
	return &GameService{
		db:        db,
		stats:     stats,
		rankings:  rankings,
		announcer: announcer,
		publicURL: publicURL,
		now:       time.Now,
	}
}

// Get loads a game with its players and cards in order.
func (s *GameService) Get(ctx context.Context, id uint) (*models.Game, error) {
	return loadGame(s.db.WithContext(ctx), id)
}

// List returns one page of games, newest first, and the total number of games.
func (s *GameService) List(ctx context.Context, page, pageSize int) ([]models.Game, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Game{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	var games []models.Game
	err := withGameDetails(db).
		Order("start_datetime DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&games).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	return games, total, nil
}

// Create starts a game between the given players, seated in order, and
// announces it.
func (s *GameService) Create(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	if err := validatePlayerIDs(in.PlayerIDs).OrNil(); err != nil {
		return nil, err
	}

	start := s.now()
	if in.StartDatetime != nil {
		start = *in.StartDatetime
	}
	official := true
	if in.Official != nil {
		official = *in.Official
	}

	g := &models.Game{
		StartDatetime: start.UTC(),
		Official:      official,
		Description:   in.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkPlayersExist(tx, in.PlayerIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(g).Error; err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		return seatPlayers(tx, g, in.PlayerIDs)
	})
	if err != nil {
		return nil, err
	}
	metrics.GamesStarted.Inc()

	created, err := s.Get(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	s.announce(created)
	return created, nil
}

// GameURL is the public page of a game.
func (s *GameService) GameURL(id uint) string {
	return fmt.Sprintf("%s/games/%d/", s.publicURL, id)
}

func (s *GameService) announce(g *models.Game) {
	if s.announcer == nil {
		return
	}
	usernames := make([]string, len(g.Players))
	for i, p := range g.Players {
		usernames[i] = p.User.Username
	}
	message := AnnounceGame(usernames)
	link := s.GameURL(g.ID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
		defer cancel()
		if err := s.announcer.Announce(ctx, message, link); err != nil {
			logger.Errorf("[Game %d] failed to announce game: %v", g.ID, err)
		}
	}()
}

// Authorize checks that the game exists and that the user plays in it.
func (s *GameService) Authorize(ctx context.Context, id uint, user *models.User) error {
	g, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user == nil || !g.HasPlayer(user.ID) {
		return ErrNotPlayer
	}
	return nil
}

// UpdateState applies a client's view of the game on behalf of one of its
// players and returns the stored game afterwards. finished reports whether
// this update ended the game.
func (s *GameService) UpdateState(ctx context.Context, id uint, user *models.User, in GameStateInput) (g *models.Game, finished bool, err error) {
	var change stateChange
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadGame(tx, id)
		if err != nil {
			return err
		}
		if user == nil || !current.HasPlayer(user.ID) {
			return ErrNotPlayer
		}
		change, err = s.applyState(tx, current, in)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	for _, c := range change.cards {
		metrics.CardsDrawn.WithLabelValues(c.Suit).Inc()
	}
	for _, ms := range change.chugs {
		metrics.ChugsRecorded.Inc()
		metrics.ChugDuration.Observe(float64(ms) / 1000)
	}
	if change.finished {
		metrics.GamesFinished.Inc()
		s.rankings.Invalidate(ctx)
		logger.Infof("[Game %d] ended, player statistics updated", id)
	}

	g, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return g, change.finished, nil
}

// applyState updates g from in: seats the players of a game without any,
// copies the scalar fields that are present, records a chug added to the
// previously last card, appends the new cards and recomputes statistics
// when the game has just ended.
func (s *GameService) applyState(tx *gorm.DB, g *models.Game, in GameStateInput) (stateChange, error) {
	var change stateChange
	alreadyEnded := g.HasEnded()

	if len(g.Players) == 0 {
		if in.PlayerIDs == nil {
			return change, fieldError("player_ids", "This field is required.")
		}
		if err := validatePlayerIDs(in.PlayerIDs).OrNil(); err != nil {
			return change, err
		}
		if err := checkPlayersExist(tx, in.PlayerIDs); err != nil {
			return change, err
		}
		if err := seatPlayers(tx, g, in.PlayerIDs); err != nil {
			return change, err
		}
	}

	if in.StartDatetime != nil {
		g.StartDatetime = in.StartDatetime.UTC()
	}
	if in.EndDatetime != nil {
		end := in.EndDatetime.UTC()
		g.EndDatetime = &end
	}
	if in.Official != nil {
		g.Official = *in.Official
	}
	if in.Description != nil {
		g.Description = *in.Description
	}

	previous := len(g.Cards)
	if err := validateCards(in.Cards, len(g.Players), previous); err != nil {
		return change, err
	}

	if previous > 0 {
		last := g.LastCard()
		if ms := in.Cards[previous-1].chugMs(); ms > 0 && last.Chug == nil {
			if !game.IsAce(last.Value) {
				return change, fieldError(fmt.Sprintf("cards[%d].chug", previous-1), "Only aces can be chugged.")
			}
			chug := models.Chug{CardID: last.ID, DurationInMilliseconds: ms}
			if err := tx.Create(&chug).Error; err != nil {
				return change, fmt.Errorf("create chug: %w", err)
			}
			last.Chug = &chug
			change.chugs = append(change.chugs, ms)
		}
	}

	for i, data := range in.Cards[previous:] {
		card := models.Card{
			GameID:        g.ID,
			Index:         previous + i,
			Value:         data.Value,
			Suit:          data.Suit,
			DrawnDatetime: data.DrawnDatetime.UTC(),
		}
		if ms := data.chugMs(); ms > 0 {
			card.Chug = &models.Chug{DurationInMilliseconds: ms}
			change.chugs = append(change.chugs, ms)
		}
		if err := tx.Create(&card).Error; err != nil {
			return change, fmt.Errorf("create card %d: %w", card.Index, err)
		}
		g.Cards = append(g.Cards, card)
		change.cards = append(change.cards, card)
	}

	if err := tx.Omit(clause.Associations).Save(g).Error; err != nil {
		return change, fmt.Errorf("save game %d: %w", g.ID, err)
	}

	if g.HasEnded() && !alreadyEnded {
		change.finished = true
		if err := s.stats.UpdateOnGameFinished(tx, g); err != nil {
			return change, err
		}
	}
	return change, nil
}

func validatePlayerIDs(ids []uint) *ValidationError {
	verr := &ValidationError{}
	switch {
	case len(ids) < game.MinPlayers:
		verr.Add("player_ids", "This list may not be empty.")
	case len(ids) > game.MaxPlayers:
		verr.Add("player_ids", fmt.Sprintf("Ensure this field has no more than %d elements.", game.MaxPlayers))
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			verr.Add("player_ids", "A player can only be seated once.")
			break
		}
		seen[id] = true
	}
	return verr
}

func checkPlayersExist(tx *gorm.DB, ids []uint) error {
	var found []uint
	if err := tx.Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("check players: %w", err)
	}
	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	for _, id := range ids {
		if !exists[id] {
			return fieldError("player_ids", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return nil
}

func seatPlayers(tx *gorm.DB, g *models.Game, ids []uint) error {
	players := make([]models.GamePlayer, len(ids))
	for i, id := range ids {
		players[i] = models.GamePlayer{GameID: g.ID, UserID: id, Position: i}
	}
	if err := tx.Create(&players).Error; err != nil {
		return fmt.Errorf("seat players: %w", err)
	}
	g.Players = players
	return nil
}

func validateCards(cards []CardInput, players, previous int) error {
	if len(cards) < previous {
		return fieldError("cards", "Cards already drawn cannot be removed.")
	}
	if players > 0 && len(cards) > game.DeckSize(players) {
		return fieldError("cards", fmt.Sprintf("A game with %d players has at most %d cards.", players, game.DeckSize(players)))
	}

	inPlay := make(map[string]bool)
	for _, suit := range game.SuitsFor(players) {
		inPlay[string(suit)] = true
	}

	verr := &ValidationError{}
	for i, c := range cards[previous:] {
		idx := previous + i
		if !game.ValidValue(c.Value) {
			verr.Add(fmt.Sprintf("cards[%d].value", idx), "Ensure this value is between 2 and 14.")
		}
		if !inPlay[c.Suit] {
			verr.Add(fmt.Sprintf("cards[%d].suit", idx), fmt.Sprintf("\"%s\" is not a suit in play.", c.Suit))
		}
		if c.chugMs() > 0 && !game.IsAce(c.Value) {
			verr.Add(fmt.Sprintf("cards[%d].chug", idx), "Only aces can be chugged.")
		}
	}
	return verr.OrNil()
}

func loadGame(db *gorm.DB, id uint) (*models.Game, error) {
	var g models.Game
	if err := withGameDetails(db).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game %d: %w", id, err)
	}
	return &g, nil
}

func withGameDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Players", orderByPosition).
		Preload("Players.User").
		Preload("Cards", orderByIndex).
		Preload("Cards.Chug")
}
