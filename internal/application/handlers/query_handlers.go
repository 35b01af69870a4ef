package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/rules"
	"github.com/anhbaysgalan1/numpoker/internal/engine/repositories"
	"github.com/google/uuid"
)

// QueryHandler handles all query operations for the game engine
type QueryHandler struct {
	gameRepository *repositories.GameRepository
	eventStore     *repositories.MemoryEventStore
	cache          ViewCache
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(gameRepository *repositories.GameRepository, eventStore *repositories.MemoryEventStore) *QueryHandler {
	return &QueryHandler{
		gameRepository: gameRepository,
		eventStore:     eventStore,
	}
}

// UseCache stores every view built on a cache miss.
func (qh *QueryHandler) UseCache(cache ViewCache) {
	qh.cache = cache
}

// GetGame builds the current view of a game
func (qh *QueryHandler) GetGame(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error) {
	s, err := qh.gameRepository.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()

	view := BuildGameView(s.Game)
	// a game deleted while we waited for the lock must stay out of the cache
	if qh.cache != nil && qh.gameRepository.Exists(gameID) {
		if err := qh.cache.SetGameView(ctx, gameID, view); err != nil {
			slog.Warn("Failed to cache game view", "game_id", gameID, "error", err)
		}
	}
	return view, nil
}

// GetHistory lists the resolved rounds of a game, oldest first
func (qh *QueryHandler) GetHistory(ctx context.Context, gameID uuid.UUID) ([]dto.RoundView, error) {
	s, err := qh.gameRepository.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()

	history := s.Game.History()
	views := make([]dto.RoundView, len(history))
	for i, h := range history {
		views[i] = convertRound(h)
	}
	if qh.cache != nil && qh.gameRepository.Exists(gameID) {
		if err := qh.cache.SetHistory(ctx, gameID, views); err != nil {
			slog.Warn("Failed to cache history", "game_id", gameID, "error", err)
		}
	}
	return views, nil
}

// GetEvents returns the committed events of a game newer than fromVersion
func (qh *QueryHandler) GetEvents(ctx context.Context, gameID uuid.UUID, fromVersion int64) ([]dto.EventView, error) {
	if !qh.gameRepository.Exists(gameID) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrGameNotFound, gameID)
	}
	domainEvents, err := qh.eventStore.GetEventsFromVersion(ctx, gameID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return ConvertEvents(domainEvents), nil
}

// ListRules returns the rule table. Which rule a game uses stays secret.
func (qh *QueryHandler) ListRules(ctx context.Context) []dto.RuleView {
	all := rules.All()
	views := make([]dto.RuleView, len(all))
	for i, r := range all {
		views[i] = convertRule(r)
	}
	return views
}

// BuildGameView converts a game into its public view. The caller must hold
// the session lock.
func BuildGameView(g *game.Game) *dto.GameView {
	s := g.Snapshot()

	view := &dto.GameView{
		GameID:       s.GameID,
		Difficulty:   string(s.Difficulty),
		Phase:        string(s.Phase),
		Turn:         string(s.Turn),
		FirstBetter:  string(s.FirstBetter),
		Round:        s.Round,
		Ante:         s.Ante,
		Pot:          s.Pot,
		CallAmount:   s.CallAmount,
		MaxRaise:     s.MaxRaise,
		AILastAction: s.AILastAction,
		BannedCards:  convertCards(g.BannedCards()),
		AIBeliefs:    g.Beliefs(),
		Human: dto.PlayerView{
			Numbers:       s.Human.Numbers,
			NumbersLeft:   len(s.Human.Numbers),
			SelectedIndex: s.Human.SelectedIndex,
			Selected:      s.Human.Selected,
			Chips:         s.Human.Chips,
			Wins:          s.Human.Wins,
			Bet:           s.Human.Bet,
			Folded:        s.Human.Folded,
		},
		AI: dto.PlayerView{
			NumbersLeft:   s.AI.NumbersLeft,
			SelectedIndex: -1,
			Selected:      s.AI.Selected,
			Chips:         s.AI.Chips,
			Wins:          s.AI.Wins,
			Bet:           s.AI.Bet,
			Folded:        s.AI.Folded,
		},
	}

	if r := s.Result; r != nil {
		view.Result = &dto.ResultView{
			Round:       r.Round,
			Winner:      string(r.Winner),
			IsShowdown:  r.IsShowdown,
			Pot:         r.Pot,
			HumanNumber: r.HumanNumber,
			AINumber:    r.AINumber,
			HumanDelta:  r.HumanDelta,
			AIDelta:     r.AIDelta,
			Collision:   r.Collision,
			Penalty:     r.Penalty,
			Folder:      r.Folder,
		}
		if r.IsShowdown {
			view.Result.HumanHand = convertHand(r.HumanHand, r.HumanScore, r.HumanHandName, r.HumanMatched)
			view.Result.AIHand = convertHand(r.AIHand, r.AIScore, r.AIHandName, r.AIMatched)
		}
	}

	if rule, ok := g.RevealedRule(); ok {
		rv := convertRule(rule)
		view.Rule = &rv
	}
	return view
}

// ConvertEvents wraps domain events with their type and version.
func ConvertEvents(domainEvents []events.DomainEvent) []dto.EventView {
	views := make([]dto.EventView, len(domainEvents))
	for i, e := range domainEvents {
		views[i] = dto.EventView{
			ID:        e.GetID(),
			Type:      string(e.GetEventType()),
			Version:   e.GetVersion(),
			Timestamp: e.GetTimestamp(),
			Data:      e,
		}
	}
	return views
}

func convertHand(cs []cards.Card, score hand.Score, name string, matched bool) *dto.HandView {
	return &dto.HandView{
		Cards:   convertCards(cs),
		Score:   int(score),
		Name:    name,
		Matched: matched,
	}
}

// convertCards converts domain cards to card views
func convertCards(cs []cards.Card) []dto.CardView {
	views := make([]dto.CardView, len(cs))
	for i, c := range cs {
		views[i] = dto.CardView{
			Suit:  c.Suit.String(),
			Rank:  c.Rank.String(),
			Value: int(c.Rank),
			Label: c.String(),
		}
	}
	return views
}

func convertRound(h events.RoundResolved) dto.RoundView {
	return dto.RoundView{
		Round:       h.Round,
		HumanNumber: h.HumanNumber,
		AINumber:    h.AINumber,
		Winner:      h.Winner,
		Pot:         h.Pot,
		Method:      h.Method,
		HumanScore:  h.HumanScore,
		AIScore:     h.AIScore,
		Collision:   h.Collision,
		Penalty:     h.Penalty,
		Timestamp:   h.GetTimestamp(),
	}
}

func convertRule(r rules.Rule) dto.RuleView {
	return dto.RuleView{ID: r.ID, Name: r.Name, Description: r.Description}
}
