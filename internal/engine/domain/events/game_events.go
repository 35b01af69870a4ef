package events

import (
	"github.com/google/uuid"
)

// Round resolution methods.
const (
	MethodShowdown = "showdown"
	MethodFold     = "fold"
)

// GameStarted event is emitted when a new game begins
type GameStarted struct {
	BaseEvent
	Difficulty    string `json:"difficulty"`
	StartingChips int    `json:"starting_chips"`
	HumanNumbers  []int  `json:"human_numbers"`
}

// NewGameStarted creates a new GameStarted event
func NewGameStarted(gameID uuid.UUID, difficulty string, startingChips int, humanNumbers []int, version int64) *GameStarted {
	return &GameStarted{
		BaseEvent:     NewBaseEvent(GameStartedEvent, gameID, version),
		Difficulty:    difficulty,
		StartingChips: startingChips,
		HumanNumbers:  append([]int(nil), humanNumbers...),
	}
}

// RoundStarted event is emitted once both antes are in the pot
type RoundStarted struct {
	BaseEvent
	Round int `json:"round"`
	Ante  int `json:"ante"`
	Pot   int `json:"pot"`
}

func NewRoundStarted(gameID uuid.UUID, round, ante, pot int, version int64) *RoundStarted {
	return &RoundStarted{
		BaseEvent: NewBaseEvent(RoundStartedEvent, gameID, version),
		Round:     round,
		Ante:      ante,
		Pot:       pot,
	}
}

// NumberSelected event is emitted when the human picks a number and betting opens.
// Both numbers are public from this point on.
type NumberSelected struct {
	BaseEvent
	Round       int    `json:"round"`
	HumanNumber int    `json:"human_number"`
	AINumber    int    `json:"ai_number"`
	FirstBetter string `json:"first_better"`
}

func NewNumberSelected(gameID uuid.UUID, round, humanNumber, aiNumber int, firstBetter string, version int64) *NumberSelected {
	return &NumberSelected{
		BaseEvent:   NewBaseEvent(NumberSelectedEvent, gameID, version),
		Round:       round,
		HumanNumber: humanNumber,
		AINumber:    aiNumber,
		FirstBetter: firstBetter,
	}
}

// PlayerAction represents a betting action by either side
type PlayerAction struct {
	BaseEvent
	Round  int    `json:"round"`
	Player string `json:"player"`
	Amount int    `json:"amount"`
	Pot    int    `json:"pot"`
}

// NewPlayerAction creates a new PlayerAction event; eventType names the action.
func NewPlayerAction(gameID uuid.UUID, eventType EventType, round int, player string, amount, pot int, version int64) *PlayerAction {
	return &PlayerAction{
		BaseEvent: NewBaseEvent(eventType, gameID, version),
		Round:     round,
		Player:    player,
		Amount:    amount,
		Pot:       pot,
	}
}

// RoundResolved is the immutable history record of one finished round
type RoundResolved struct {
	BaseEvent
	Round       int    `json:"round"`
	HumanNumber int    `json:"human_number"`
	AINumber    int    `json:"ai_number"`
	Winner      string `json:"winner"`
	Pot         int    `json:"pot"`
	Method      string `json:"method"`
	HumanScore  int    `json:"human_score"`
	AIScore     int    `json:"ai_score"`
	Collision   bool   `json:"collision"`
	Penalty     int    `json:"penalty"`
}

// NewRoundResolved creates a new RoundResolved event
func NewRoundResolved(gameID uuid.UUID, record RoundResolved, version int64) *RoundResolved {
	record.BaseEvent = NewBaseEvent(RoundResolvedEvent, gameID, version)
	return &record
}

// OxygenDecayed event is emitted for every decay tick that took chips
type OxygenDecayed struct {
	BaseEvent
	HumanDecayed bool `json:"human_decayed"`
	AIDecayed    bool `json:"ai_decayed"`
	HumanChips   int  `json:"human_chips"`
	AIChips      int  `json:"ai_chips"`
	GameOver     bool `json:"game_over"`
}

func NewOxygenDecayed(gameID uuid.UUID, humanDecayed, aiDecayed bool, humanChips, aiChips int, gameOver bool, version int64) *OxygenDecayed {
	return &OxygenDecayed{
		BaseEvent:    NewBaseEvent(OxygenDecayedEvent, gameID, version),
		HumanDecayed: humanDecayed,
		AIDecayed:    aiDecayed,
		HumanChips:   humanChips,
		AIChips:      aiChips,
		GameOver:     gameOver,
	}
}

// GameEnded event is emitted when the game reaches its terminal phase
type GameEnded struct {
	BaseEvent
	Reason     string `json:"reason"`
	Winner     string `json:"winner"`
	HumanChips int    `json:"human_chips"`
	AIChips    int    `json:"ai_chips"`
	HumanWins  int    `json:"human_wins"`
	AIWins     int    `json:"ai_wins"`
}

func NewGameEnded(gameID uuid.UUID, reason, winner string, humanChips, aiChips, humanWins, aiWins int, version int64) *GameEnded {
	return &GameEnded{
		BaseEvent:  NewBaseEvent(GameEndedEvent, gameID, version),
		Reason:     reason,
		Winner:     winner,
		HumanChips: humanChips,
		AIChips:    aiChips,
		HumanWins:  humanWins,
		AIWins:     aiWins,
	}
}
