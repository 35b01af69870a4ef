package engine

import (
	"context"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/application/handlers"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/google/uuid"
)

// GameEngine interface defines the main game engine operations
type GameEngine interface {
	// Game management
	CreateGame(ctx context.Context, cmd dto.CreateGameCommand) (*dto.GameView, error)
	DeleteGame(ctx context.Context, gameID uuid.UUID) error

	// Game actions
	SelectCard(ctx context.Context, cmd dto.SelectCardCommand) (*dto.GameView, error)
	PlaceBet(ctx context.Context, cmd dto.PlaceBetCommand) (*dto.GameView, error)
	StartRound(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error)
	DecayOxygen(ctx context.Context, gameID uuid.UUID) (*dto.DecayView, error)

	// Queries
	GetGame(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error)
	GetHistory(ctx context.Context, gameID uuid.UUID) ([]dto.RoundView, error)
	GetEvents(ctx context.Context, gameID uuid.UUID, fromVersion int64) ([]dto.EventView, error)
	ListRules(ctx context.Context) []dto.RuleView
}

// Update is what a command changed, pushed to subscribers of a game.
type Update struct {
	GameID uuid.UUID
	View   *dto.GameView
	Events []events.DomainEvent
	Decay  *dto.DecayView
}

// Publisher receives every update after the command that caused it has
// been committed.
type Publisher interface {
	Publish(ctx context.Context, update Update)
}

// ViewCache caches read views; implemented by repositories.RedisCache.
type ViewCache = handlers.ViewCache

// GameWatcher is told when games appear and disappear so that something can
// run their oxygen clock.
type GameWatcher interface {
	Watch(gameID uuid.UUID)
	Forget(gameID uuid.UUID)
}
