package game

import (
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
	"github.com/google/uuid"
)

// HumanView is what the human may see of their own seat.
type HumanView struct {
	Numbers       []int `json:"numbers"`
	SelectedIndex int   `json:"selected_index"`
	Selected      *int  `json:"selected,omitempty"`
	Chips         int   `json:"chips"`
	Wins          int   `json:"wins"`
	Bet           int   `json:"bet"`
	Folded        bool  `json:"folded"`
}

// OpponentView hides the AI's numbers; its pick is only shown once the human
// has picked too.
type OpponentView struct {
	NumbersLeft int  `json:"numbers_left"`
	Selected    *int `json:"selected,omitempty"`
	Chips       int  `json:"chips"`
	Wins        int  `json:"wins"`
	Bet         int  `json:"bet"`
	Folded      bool `json:"folded"`
}

// RoundResult describes how the last round was settled.
type RoundResult struct {
	Round       int    `json:"round"`
	Winner      Side   `json:"winner"`
	IsShowdown  bool   `json:"is_showdown"`
	Pot         int    `json:"pot"`
	HumanNumber int    `json:"human_number"`
	AINumber    int    `json:"ai_number"`
	HumanDelta  int    `json:"human_delta"`
	AIDelta     int    `json:"ai_delta"`
	Collision   bool   `json:"collision"`
	Penalty     int    `json:"penalty"`
	HumanChips  int    `json:"human_chips"`
	AIChips     int    `json:"ai_chips"`
	Folder      string `json:"folder,omitempty"`

	// showdown only
	HumanScore    hand.Score   `json:"human_score"`
	AIScore       hand.Score   `json:"ai_score"`
	HumanHand     []cards.Card `json:"human_hand,omitempty"`
	AIHand        []cards.Card `json:"ai_hand,omitempty"`
	HumanHandName string       `json:"human_hand_name,omitempty"`
	AIHandName    string       `json:"ai_hand_name,omitempty"`
	HumanMatched  bool         `json:"human_matched"`
	AIMatched     bool         `json:"ai_matched"`
}

// Snapshot is an immutable copy of the player visible state.
type Snapshot struct {
	GameID       uuid.UUID     `json:"game_id"`
	Difficulty   ai.Difficulty `json:"difficulty"`
	Phase        Phase         `json:"phase"`
	Turn         Side          `json:"turn,omitempty"`
	FirstBetter  Side          `json:"first_better,omitempty"`
	Round        int           `json:"round"`
	Ante         int           `json:"ante"`
	Pot          int           `json:"pot"`
	CallAmount   int           `json:"call_amount"`
	MaxRaise     int           `json:"max_raise"`
	AILastAction string        `json:"ai_last_action,omitempty"`
	BannedCards  int           `json:"banned_cards"`
	Human        HumanView     `json:"human"`
	AI           OpponentView  `json:"ai"`
	Result       *RoundResult  `json:"result,omitempty"`
}

// DecayResult reports one oxygen tick.
type DecayResult struct {
	HumanDecayed bool `json:"human_decayed"`
	AIDecayed    bool `json:"ai_decayed"`
	GameOver     bool `json:"game_over"`
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	human, opp := g.players[Human], g.players[AI]

	s := Snapshot{
		GameID:       g.ID(),
		Difficulty:   g.difficulty,
		Phase:        g.phase,
		Turn:         g.turn,
		FirstBetter:  g.firstBetter,
		Round:        g.round,
		Ante:         g.round,
		Pot:          g.pot,
		MaxRaise:     g.maxRaise(),
		AILastAction: g.lastAction,
		BannedCards:  g.banned.Len(),
		Human: HumanView{
			Numbers:       append([]int(nil), human.numbers...),
			SelectedIndex: -1,
			Chips:         human.chips,
			Wins:          human.wins,
			Bet:           human.bet,
			Folded:        human.folded,
		},
		AI: OpponentView{
			NumbersLeft: len(opp.numbers),
			Chips:       opp.chips,
			Wins:        opp.wins,
			Bet:         opp.bet,
			Folded:      opp.folded,
		},
	}
	if opp.bet > human.bet {
		s.CallAmount = opp.bet - human.bet
	}

	if p := g.picks[Human]; p.ok {
		n := p.number
		s.Human.Selected = &n
		if g.phase == PhaseSelect || g.phase == PhaseBetting {
			s.Human.SelectedIndex = p.index
		}
	}
	if p := g.picks[AI]; p.ok && g.picks[Human].ok {
		n := p.number
		s.AI.Selected = &n
	}
	if g.result != nil {
		r := *g.result
		r.HumanHand = append([]cards.Card(nil), r.HumanHand...)
		r.AIHand = append([]cards.Card(nil), r.AIHand...)
		s.Result = &r
	}
	return s
}
