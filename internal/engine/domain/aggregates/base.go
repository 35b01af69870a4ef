// Package aggregates keeps the event bookkeeping of a game: which stream it
// writes to, how far that stream has got, and the events the repository has
// not yet committed.
package aggregates

import (
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/google/uuid"
)

// AggregateRoot is embedded by game.Game. Each state change raises one event
// numbered one past the last, so a committed stream has versions 1..n with
// no gaps.
type AggregateRoot struct {
	id      uuid.UUID
	version int64
	pending []events.DomainEvent
}

// ID identifies the game and its event stream.
func (ar *AggregateRoot) ID() uuid.UUID {
	return ar.id
}

// GetVersion is the version of the last raised event, committed or not.
func (ar *AggregateRoot) GetVersion() int64 {
	return ar.version
}

// NextVersion is the version the next raised event must carry.
func (ar *AggregateRoot) NextVersion() int64 {
	return ar.version + 1
}

// Raise appends e, built with NextVersion, to the pending events.
func (ar *AggregateRoot) Raise(e events.DomainEvent) {
	ar.pending = append(ar.pending, e)
	ar.version++
}

// PendingEvents returns the events raised since the last commit.
func (ar *AggregateRoot) PendingEvents() []events.DomainEvent {
	return ar.pending
}

// CommittedVersion is the version the event store already holds.
func (ar *AggregateRoot) CommittedVersion() int64 {
	return ar.version - int64(len(ar.pending))
}

// MarkEventsCommitted is called once the pending events are in the store.
func (ar *AggregateRoot) MarkEventsCommitted() {
	ar.pending = nil
}

// Restart moves the game onto a fresh, empty stream.
func (ar *AggregateRoot) Restart(id uuid.UUID) {
	ar.id = id
	ar.version = 0
	ar.pending = nil
}
