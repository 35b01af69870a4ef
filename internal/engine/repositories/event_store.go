package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/google/uuid"
)

var ErrConcurrencyConflict = errors.New("concurrency conflict")

// MemoryEventStore keeps every game's event stream in process. Streams live
// as long as the process; nothing is persisted across restarts.
type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[uuid.UUID][]events.DomainEvent
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{streams: make(map[uuid.UUID][]events.DomainEvent)}
}

// SaveEvents appends a batch of events. expectedVersion must match the
// version of the last stored event (0 for a new stream).
func (es *MemoryEventStore) SaveEvents(ctx context.Context, aggregateID uuid.UUID, domainEvents []events.DomainEvent, expectedVersion int64) error {
	if len(domainEvents) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	stream := es.streams[aggregateID]
	var currentVersion int64
	if n := len(stream); n > 0 {
		currentVersion = stream[n-1].GetVersion()
	}
	if currentVersion != expectedVersion {
		return fmt.Errorf("%w: expected version %d, but current version is %d",
			ErrConcurrencyConflict, expectedVersion, currentVersion)
	}

	es.streams[aggregateID] = append(stream, domainEvents...)
	return nil
}

// GetEvents retrieves all events for an aggregate
func (es *MemoryEventStore) GetEvents(ctx context.Context, aggregateID uuid.UUID) ([]events.DomainEvent, error) {
	return es.GetEventsFromVersion(ctx, aggregateID, 0)
}

// GetEventsFromVersion retrieves events for an aggregate newer than version
func (es *MemoryEventStore) GetEventsFromVersion(ctx context.Context, aggregateID uuid.UUID, version int64) ([]events.DomainEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	stream := es.streams[aggregateID]
	out := make([]events.DomainEvent, 0, len(stream))
	for _, e := range stream {
		if e.GetVersion() > version {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeleteStream drops an aggregate's events.
func (es *MemoryEventStore) DeleteStream(ctx context.Context, aggregateID uuid.UUID) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	delete(es.streams, aggregateID)
	return nil
}
