package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/google/uuid"
)

// OxygenScheduler runs one oxygen clock per live game. Every tick costs both
// sides a chip while a number is being chosen or bet on; ticks that land
// between rounds are skipped. A game's clock stops once the game is over or
// gone.
type OxygenScheduler struct {
	engine   engine.GameEngine
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	games map[uuid.UUID]*clock
}

type clock struct {
	cancel context.CancelFunc
}

// NewOxygenScheduler creates a scheduler ticking every interval. A zero
// interval disables oxygen decay.
func NewOxygenScheduler(e engine.GameEngine, interval time.Duration) *OxygenScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &OxygenScheduler{
		engine:   e,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		games:    make(map[uuid.UUID]*clock),
	}
}

// Watch starts the clock for a game. Watching a game twice is a no-op.
func (s *OxygenScheduler) Watch(gameID uuid.UUID) {
	if s.interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; ok || s.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	c := &clock{cancel: cancel}
	s.games[gameID] = c

	s.wg.Add(1)
	go s.run(ctx, gameID, c)
}

// Forget stops a game's clock.
func (s *OxygenScheduler) Forget(gameID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.games[gameID]; ok {
		c.cancel()
		delete(s.games, gameID)
	}
}

// release drops c unless the game has been watched again since.
func (s *OxygenScheduler) release(gameID uuid.UUID, c *clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.cancel()
	if s.games[gameID] == c {
		delete(s.games, gameID)
	}
}

// Active returns the number of running clocks.
func (s *OxygenScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// Stop halts every clock and waits for them to exit.
func (s *OxygenScheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *OxygenScheduler) run(ctx context.Context, gameID uuid.UUID, c *clock) {
	defer s.wg.Done()
	defer s.release(gameID, c)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			decay, err := s.engine.DecayOxygen(ctx, gameID)
			switch {
			case errors.Is(err, game.ErrWrongPhase):
				continue
			case err != nil:
				if !errors.Is(err, game.ErrGameOver) && !errors.Is(err, context.Canceled) {
					slog.Warn("Oxygen tick failed", "game_id", gameID, "error", err)
				}
				return
			case decay.GameOver:
				slog.Info("Game ended by oxygen depletion", "game_id", gameID)
				return
			}
		}
	}
}
