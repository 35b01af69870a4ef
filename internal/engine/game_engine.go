package engine

import (
	"context"
	"log/slog"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/application/handlers"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/anhbaysgalan1/numpoker/internal/engine/repositories"
	"github.com/google/uuid"
)

// gameEngineImpl implements the GameEngine interface
type gameEngineImpl struct {
	commandHandler *handlers.CommandHandler
	queryHandler   *handlers.QueryHandler
	cache          ViewCache
	publisher      Publisher
}

type Option func(*gameEngineImpl)

// WithCache serves views from cache when possible. The handlers refresh it
// under the game's session lock.
func WithCache(cache ViewCache) Option {
	return func(e *gameEngineImpl) { e.cache = cache }
}

func WithPublisher(p Publisher) Option {
	return func(e *gameEngineImpl) { e.publisher = p }
}

// Settings configures a new engine.
type Settings struct {
	Game              game.Config
	DefaultDifficulty ai.Difficulty
	// Seed for all game randomness; 0 seeds from the clock
	Seed int64
}

// NewGameEngine creates a new game engine holding games in memory
func NewGameEngine(settings Settings, opts ...Option) GameEngine {
	eventStore := repositories.NewMemoryEventStore()
	gameRepo := repositories.NewGameRepository(eventStore)

	e := &gameEngineImpl{
		commandHandler: handlers.NewCommandHandler(gameRepo, settings.Game, settings.DefaultDifficulty, settings.Seed),
		queryHandler:   handlers.NewQueryHandler(gameRepo, eventStore),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache != nil {
		e.commandHandler.UseCache(e.cache)
		e.queryHandler.UseCache(e.cache)
	}
	return e
}

// CreateGame deals a new game
func (e *gameEngineImpl) CreateGame(ctx context.Context, cmd dto.CreateGameCommand) (*dto.GameView, error) {
	res, err := e.commandHandler.CreateGame(ctx, cmd)
	if err != nil {
		return nil, err
	}
	e.committed(ctx, res)
	return res.View, nil
}

// DeleteGame removes a game and its cached views
func (e *gameEngineImpl) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	return e.commandHandler.DeleteGame(ctx, gameID)
}

func (e *gameEngineImpl) SelectCard(ctx context.Context, cmd dto.SelectCardCommand) (*dto.GameView, error) {
	res, err := e.commandHandler.SelectCard(ctx, cmd)
	if err != nil {
		return nil, err
	}
	e.committed(ctx, res)
	return res.View, nil
}

func (e *gameEngineImpl) PlaceBet(ctx context.Context, cmd dto.PlaceBetCommand) (*dto.GameView, error) {
	res, err := e.commandHandler.PlaceBet(ctx, cmd)
	if err != nil {
		return nil, err
	}
	e.committed(ctx, res)
	return res.View, nil
}

func (e *gameEngineImpl) StartRound(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error) {
	res, err := e.commandHandler.StartRound(ctx, gameID)
	if err != nil {
		return nil, err
	}
	e.committed(ctx, res)
	return res.View, nil
}

func (e *gameEngineImpl) DecayOxygen(ctx context.Context, gameID uuid.UUID) (*dto.DecayView, error) {
	res, err := e.commandHandler.DecayOxygen(ctx, gameID)
	if err != nil {
		return nil, err
	}
	e.committed(ctx, res)
	return decayView(res), nil
}

// GetGame serves the cached view when there is one
func (e *gameEngineImpl) GetGame(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error) {
	if e.cache != nil {
		view, err := e.cache.GetGameView(ctx, gameID)
		if err != nil {
			slog.Warn("Failed to read game cache", "game_id", gameID, "error", err)
		} else if view != nil {
			return view, nil
		}
	}

	return e.queryHandler.GetGame(ctx, gameID)
}

// GetHistory serves the cached history when there is one
func (e *gameEngineImpl) GetHistory(ctx context.Context, gameID uuid.UUID) ([]dto.RoundView, error) {
	if e.cache != nil {
		history, err := e.cache.GetHistory(ctx, gameID)
		if err != nil {
			slog.Warn("Failed to read history cache", "game_id", gameID, "error", err)
		} else if history != nil {
			return history, nil
		}
	}

	return e.queryHandler.GetHistory(ctx, gameID)
}

func (e *gameEngineImpl) GetEvents(ctx context.Context, gameID uuid.UUID, fromVersion int64) ([]dto.EventView, error) {
	return e.queryHandler.GetEvents(ctx, gameID, fromVersion)
}

func (e *gameEngineImpl) ListRules(ctx context.Context) []dto.RuleView {
	return e.queryHandler.ListRules(ctx)
}

// committed notifies the publisher. It cannot fail the command, which is
// already committed.
func (e *gameEngineImpl) committed(ctx context.Context, res *handlers.CommandResult) {
	if e.publisher != nil {
		e.publisher.Publish(ctx, Update{
			GameID: res.View.GameID,
			View:   res.View,
			Events: res.Events,
			Decay:  decayView(res),
		})
	}
}

func decayView(res *handlers.CommandResult) *dto.DecayView {
	if res.Decay == nil {
		return nil
	}
	return &dto.DecayView{
		HumanDecayed: res.Decay.HumanDecayed,
		AIDecayed:    res.Decay.AIDecayed,
		GameOver:     res.Decay.GameOver,
		Game:         res.View,
	}
}
