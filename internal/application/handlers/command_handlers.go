package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/anhbaysgalan1/numpoker/internal/engine/repositories"
	"github.com/google/uuid"
)

// CommandResult is the outcome of a command: the view after it ran and the
// events it raised.
type CommandResult struct {
	View   *dto.GameView
	Events []events.DomainEvent
	Decay  *game.DecayResult
}

// ViewCache stores read views of games. Handlers only write to it while
// holding the game's session lock, so a stored view is never replaced by an
// older one.
type ViewCache interface {
	SetGameView(ctx context.Context, gameID uuid.UUID, view *dto.GameView) error
	GetGameView(ctx context.Context, gameID uuid.UUID) (*dto.GameView, error)
	SetHistory(ctx context.Context, gameID uuid.UUID, history []dto.RoundView) error
	GetHistory(ctx context.Context, gameID uuid.UUID) ([]dto.RoundView, error)
	InvalidateGame(ctx context.Context, gameID uuid.UUID) error
}

// CommandHandler handles all command operations for the game engine
type CommandHandler struct {
	gameRepository    *repositories.GameRepository
	config            game.Config
	defaultDifficulty ai.Difficulty
	cache             ViewCache

	// seeds hands every new game its own generator
	seedMu sync.Mutex
	seeds  *rand.Rand
}

// NewCommandHandler creates a new command handler. A zero seed seeds from
// the clock.
func NewCommandHandler(gameRepository *repositories.GameRepository, config game.Config, defaultDifficulty ai.Difficulty, seed int64) *CommandHandler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if defaultDifficulty == "" {
		defaultDifficulty = ai.Normal
	}
	return &CommandHandler{
		gameRepository:    gameRepository,
		config:            config,
		defaultDifficulty: defaultDifficulty,
		seeds:             rand.New(rand.NewSource(seed)),
	}
}

// UseCache makes every commit replace the cached views of its game.
func (ch *CommandHandler) UseCache(cache ViewCache) {
	ch.cache = cache
}

func (ch *CommandHandler) nextRand() *rand.Rand {
	ch.seedMu.Lock()
	defer ch.seedMu.Unlock()
	return rand.New(rand.NewSource(ch.seeds.Int63()))
}

// CreateGame deals a new game and registers it
func (ch *CommandHandler) CreateGame(ctx context.Context, cmd dto.CreateGameCommand) (*CommandResult, error) {
	difficulty := ch.defaultDifficulty
	if cmd.Difficulty != "" {
		d, err := ai.ParseDifficulty(cmd.Difficulty)
		if err != nil {
			return nil, err
		}
		difficulty = d
	}

	g := game.NewGame(ch.nextRand(), ch.config)
	if _, err := g.StartNewGame(difficulty); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	s := ch.gameRepository.Add(g)
	s.Lock()
	defer s.Unlock()

	saved, err := ch.gameRepository.Save(ctx, s)
	if err != nil {
		return nil, err
	}

	slog.Info("Game created", "game_id", g.ID(), "difficulty", difficulty)
	view := BuildGameView(g)
	ch.refresh(ctx, g.ID(), view)
	return &CommandResult{View: view, Events: saved}, nil
}

// SelectCard locks in the human's number
func (ch *CommandHandler) SelectCard(ctx context.Context, cmd dto.SelectCardCommand) (*CommandResult, error) {
	if cmd.Index == nil {
		return nil, fmt.Errorf("%w: missing index", game.ErrInvalidIndex)
	}
	return ch.execute(ctx, cmd.GameID, func(g *game.Game) error {
		_, err := g.SelectCard(*cmd.Index)
		return err
	})
}

// PlaceBet applies the human's bet, or a fold for -1
func (ch *CommandHandler) PlaceBet(ctx context.Context, cmd dto.PlaceBetCommand) (*CommandResult, error) {
	if cmd.Amount == nil {
		return nil, fmt.Errorf("%w: missing amount", game.ErrInvalidAmount)
	}
	return ch.execute(ctx, cmd.GameID, func(g *game.Game) error {
		_, err := g.ProcessPlayerBet(*cmd.Amount)
		return err
	})
}

// StartRound opens the next round. Running out of numbers is not an error
// here: the game is ended instead.
func (ch *CommandHandler) StartRound(ctx context.Context, gameID uuid.UUID) (*CommandResult, error) {
	return ch.execute(ctx, gameID, func(g *game.Game) error {
		_, err := g.StartRound()
		if errors.Is(err, game.ErrNumbersExhausted) {
			_, err = g.EndGame(game.ReasonNumbersExhausted)
		}
		return err
	})
}

// DecayOxygen applies one oxygen tick
func (ch *CommandHandler) DecayOxygen(ctx context.Context, gameID uuid.UUID) (*CommandResult, error) {
	var decay game.DecayResult
	res, err := ch.execute(ctx, gameID, func(g *game.Game) error {
		var err error
		decay, err = g.DecayOxygen()
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Decay = &decay
	return res, nil
}

// DeleteGame removes a game and its cached views
func (ch *CommandHandler) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	s, err := ch.gameRepository.GetByID(ctx, gameID)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	if err := ch.gameRepository.Delete(ctx, gameID); err != nil {
		return err
	}
	if ch.cache != nil {
		if err := ch.cache.InvalidateGame(ctx, gameID); err != nil {
			slog.Warn("Failed to invalidate game cache", "game_id", gameID, "error", err)
		}
	}
	return nil
}

// execute runs fn on the game under its session lock and commits the
// events it raised. A failed command leaves the game untouched.
func (ch *CommandHandler) execute(ctx context.Context, gameID uuid.UUID, fn func(g *game.Game) error) (*CommandResult, error) {
	s, err := ch.gameRepository.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.Lock()
	defer s.Unlock()

	if err := fn(s.Game); err != nil {
		return nil, err
	}
	saved, err := ch.gameRepository.Save(ctx, s)
	if err != nil {
		return nil, err
	}
	view := BuildGameView(s.Game)
	ch.refresh(ctx, gameID, view)
	return &CommandResult{View: view, Events: saved}, nil
}

// refresh drops the cached views of a game and stores view in their place.
// The caller must hold the session lock. Cache failures never fail the
// command, which is already committed.
func (ch *CommandHandler) refresh(ctx context.Context, gameID uuid.UUID, view *dto.GameView) {
	if ch.cache == nil {
		return
	}
	if err := ch.cache.InvalidateGame(ctx, gameID); err != nil {
		slog.Warn("Failed to invalidate game cache", "game_id", gameID, "error", err)
		return
	}
	if err := ch.cache.SetGameView(ctx, gameID, view); err != nil {
		slog.Warn("Failed to cache game view", "game_id", gameID, "error", err)
	}
}
