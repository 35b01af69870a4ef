package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// Session holds one live game. Callers lock it for the duration of a
// command so that a game only ever sees one actor at a time.
type Session struct {
	sync.Mutex
	Game      *game.Game
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameRepository is the registry of live games. Their committed events go
// to the event store.
type GameRepository struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*Session
	eventStore *MemoryEventStore
}

// NewGameRepository creates a new game repository
func NewGameRepository(eventStore *MemoryEventStore) *GameRepository {
	return &GameRepository{
		sessions:   make(map[uuid.UUID]*Session),
		eventStore: eventStore,
	}
}

// Add registers a freshly created game.
func (gr *GameRepository) Add(g *game.Game) *Session {
	now := time.Now()
	s := &Session{Game: g, CreatedAt: now, UpdatedAt: now}

	gr.mu.Lock()
	gr.sessions[g.ID()] = s
	gr.mu.Unlock()
	return s
}

// GetByID returns the session of a game. It is not locked.
func (gr *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	gr.mu.RLock()
	s, ok := gr.sessions[id]
	gr.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return s, nil
}

// Save commits the game's pending events to the event store and returns
// them. The caller must hold the session lock.
func (gr *GameRepository) Save(ctx context.Context, s *Session) ([]events.DomainEvent, error) {
	g := s.Game
	uncommitted := g.PendingEvents()
	if len(uncommitted) == 0 {
		return nil, nil
	}

	if err := gr.eventStore.SaveEvents(ctx, g.ID(), uncommitted, g.CommittedVersion()); err != nil {
		return nil, fmt.Errorf("failed to save events: %w", err)
	}

	saved := append([]events.DomainEvent(nil), uncommitted...)
	g.MarkEventsCommitted()
	s.UpdatedAt = time.Now()
	return saved, nil
}

// Delete removes a game and its event stream.
func (gr *GameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	gr.mu.Lock()
	_, ok := gr.sessions[id]
	delete(gr.sessions, id)
	gr.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return gr.eventStore.DeleteStream(ctx, id)
}

// Exists checks if a game is registered
func (gr *GameRepository) Exists(id uuid.UUID) bool {
	gr.mu.RLock()
	defer gr.mu.RUnlock()
	_, ok := gr.sessions[id]
	return ok
}

// Count is the number of live games.
func (gr *GameRepository) Count() int {
	gr.mu.RLock()
	defer gr.mu.RUnlock()
	return len(gr.sessions)
}
