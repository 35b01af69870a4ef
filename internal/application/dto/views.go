package dto

import (
	"time"

	"github.com/google/uuid"
)

// Views for queries
type GameView struct {
	GameID       uuid.UUID   `json:"game_id"`
	Difficulty   string      `json:"difficulty"`
	Phase        string      `json:"phase"`
	Turn         string      `json:"turn,omitempty"`
	FirstBetter  string      `json:"first_better,omitempty"`
	Round        int         `json:"round"`
	Ante         int         `json:"ante"`
	Pot          int         `json:"pot"`
	CallAmount   int         `json:"call_amount"`
	MaxRaise     int         `json:"max_raise"`
	AILastAction string      `json:"ai_last_action,omitempty"`
	BannedCards  []CardView  `json:"banned_cards"`
	AIBeliefs    int         `json:"ai_beliefs"`
	Human        PlayerView  `json:"human"`
	AI           PlayerView  `json:"ai"`
	Result       *ResultView `json:"result,omitempty"`
	// only set once the game is over
	Rule *RuleView `json:"rule,omitempty"`
}

// PlayerView is one seat. For the AI, Numbers is always empty and only
// NumbersLeft is meaningful.
type PlayerView struct {
	Numbers       []int `json:"numbers,omitempty"`
	NumbersLeft   int   `json:"numbers_left"`
	SelectedIndex int   `json:"selected_index"`
	Selected      *int  `json:"selected,omitempty"`
	Chips         int   `json:"chips"`
	Wins          int   `json:"wins"`
	Bet           int   `json:"bet"`
	Folded        bool  `json:"folded"`
}

type CardView struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

type HandView struct {
	Cards   []CardView `json:"cards,omitempty"`
	Score   int        `json:"score"`
	Name    string     `json:"name"`
	Matched bool       `json:"matched"`
}

type ResultView struct {
	Round       int       `json:"round"`
	Winner      string    `json:"winner"`
	IsShowdown  bool      `json:"is_showdown"`
	Pot         int       `json:"pot"`
	HumanNumber int       `json:"human_number"`
	AINumber    int       `json:"ai_number"`
	HumanDelta  int       `json:"human_delta"`
	AIDelta     int       `json:"ai_delta"`
	Collision   bool      `json:"collision"`
	Penalty     int       `json:"penalty"`
	Folder      string    `json:"folder,omitempty"`
	HumanHand   *HandView `json:"human_hand,omitempty"`
	AIHand      *HandView `json:"ai_hand,omitempty"`
}

// RoundView is one history entry.
type RoundView struct {
	Round       int       `json:"round"`
	HumanNumber int       `json:"human_number"`
	AINumber    int       `json:"ai_number"`
	Winner      string    `json:"winner"`
	Pot         int       `json:"pot"`
	Method      string    `json:"method"`
	HumanScore  int       `json:"human_score"`
	AIScore     int       `json:"ai_score"`
	Collision   bool      `json:"collision"`
	Penalty     int       `json:"penalty"`
	Timestamp   time.Time `json:"timestamp"`
}

type RuleView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DecayView struct {
	HumanDecayed bool      `json:"human_decayed"`
	AIDecayed    bool      `json:"ai_decayed"`
	GameOver     bool      `json:"game_over"`
	Game         *GameView `json:"game"`
}

// EventView is a stored domain event with its payload.
type EventView struct {
	ID        uuid.UUID   `json:"id"`
	Type      string      `json:"type"`
	Version   int64       `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}
