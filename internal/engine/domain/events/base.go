package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event
type EventType string

// Domain event types
const (
	GameStartedEvent    EventType = "game.started"
	GameEndedEvent      EventType = "game.ended"
	RoundStartedEvent   EventType = "round.started"
	NumberSelectedEvent EventType = "round.number_selected"
	RoundResolvedEvent  EventType = "round.resolved"
	OxygenDecayedEvent  EventType = "oxygen.decayed"

	PlayerCheckEvent EventType = "player.check"
	PlayerCallEvent  EventType = "player.call"
	PlayerRaiseEvent EventType = "player.raise"
	PlayerFoldEvent  EventType = "player.fold"
	PlayerAllInEvent EventType = "player.all_in"
)

// BaseEvent contains common fields for all domain events
type BaseEvent struct {
	ID          uuid.UUID `json:"id"`
	EventType   EventType `json:"event_type"`
	AggregateID uuid.UUID `json:"aggregate_id"`
	Version     int64     `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}

// DomainEvent interface that all events must implement
type DomainEvent interface {
	GetID() uuid.UUID
	GetEventType() EventType
	GetAggregateID() uuid.UUID
	GetVersion() int64
	GetTimestamp() time.Time
}

func (e BaseEvent) GetID() uuid.UUID {
	return e.ID
}

func (e BaseEvent) GetEventType() EventType {
	return e.EventType
}

func (e BaseEvent) GetAggregateID() uuid.UUID {
	return e.AggregateID
}

func (e BaseEvent) GetVersion() int64 {
	return e.Version
}

func (e BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new base event
func NewBaseEvent(eventType EventType, aggregateID uuid.UUID, version int64) BaseEvent {
	return BaseEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Version:     version,
		Timestamp:   time.Now(),
	}
}
