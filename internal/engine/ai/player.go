package ai

import (
	"log/slog"
	"math/rand"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/rules"
	"github.com/anhbaysgalan1/numpoker/internal/engine/solver"
)

const (
	// minFoldRound is the first round in which the AI may fold.
	minFoldRound = 3
	// maxOpenRaise bounds the random raise proposal.
	maxOpenRaise = 5
)

type ActionType string

const (
	Fold  ActionType = "FOLD"
	Call  ActionType = "CALL"
	Raise ActionType = "RAISE"
)

// Action is a betting decision. Amount is what is put in on top of the call
// and is only set for Raise.
type Action struct {
	Type   ActionType `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

// Insight is the true hidden state handed to an omniscient player.
type Insight struct {
	Rule rules.Rule
	Pool []cards.Card
}

// BetContext is everything the AI sees when it is its turn to bet.
type BetContext struct {
	CallDiff int
	Chips    int
	MaxRaise int
	Round    int

	// exact scores, only provided to omniscient players
	MyScore       *hand.Score
	OpponentScore *hand.Score
}

type Option func(*Player)

func WithLookaheadTrials(n int) Option {
	return func(p *Player) { p.lookahead = n }
}

func WithSolver(s *solver.Solver) Option {
	return func(p *Player) { p.solver = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// Player is the computer opponent. It keeps a shrinking set of rules it
// still considers possible and, unless omniscient, assumes a full 52-card
// deck because it cannot see which cards were banned.
type Player struct {
	difficulty Difficulty
	beliefs    []rules.Rule
	imaginary  []cards.Card
	rng        *rand.Rand
	solver     *solver.Solver
	lookahead  int
	logger     *slog.Logger
}

func NewPlayer(difficulty Difficulty, rng *rand.Rand, opts ...Option) *Player {
	p := &Player{
		difficulty: difficulty,
		beliefs:    rules.All(),
		imaginary:  cards.All(),
		rng:        rng,
		lookahead:  solver.LookaheadTrials,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.solver == nil {
		p.solver = solver.New(rng)
	}
	return p
}

func (p *Player) Difficulty() Difficulty {
	return p.difficulty
}

// Beliefs returns a copy of the rules still considered possible.
func (p *Player) Beliefs() []rules.Rule {
	out := make([]rules.Rule, len(p.beliefs))
	copy(out, p.beliefs)
	return out
}

// DecideNumberToPlay picks the index of the number to reveal this round, or
// -1 when there is nothing to pick. Insight is only used by omniscient
// players and may be nil.
func (p *Player) DecideNumberToPlay(numbers []int, insight *Insight) int {
	if len(numbers) == 0 {
		return -1
	}
	if p.difficulty == Easy {
		return p.rng.Intn(len(numbers))
	}

	candidates, pool := p.beliefs, p.imaginary
	if p.difficulty.Omniscient() && insight != nil {
		candidates, pool = []rules.Rule{insight.Rule}, insight.Pool
	}
	if len(candidates) == 0 {
		return p.rng.Intn(len(numbers))
	}

	best, bestExpected := -1, -1.0
	for i, n := range numbers {
		expected := p.expectedScore(n, candidates, pool)
		if expected > bestExpected {
			best, bestExpected = i, expected
		}
	}

	p.logger.Debug("AI chose number",
		"difficulty", p.difficulty,
		"index", best,
		"number", numbers[best],
		"expected_score", bestExpected,
		"candidate_rules", len(candidates))
	return best
}

// expectedScore averages the best findable hand strength of n over the
// candidate rules. A rule with no matching hand contributes zero.
func (p *Player) expectedScore(n int, candidates []rules.Rule, pool []cards.Card) float64 {
	total := 0.0
	for _, r := range candidates {
		res := p.solver.FindBestHand(n, r, pool, p.lookahead)
		if res.Found() && res.Matched {
			total += float64(res.Score)
		}
	}
	return total / float64(len(candidates))
}

// DecideAction chooses what to do when it is the AI's turn to bet.
func (p *Player) DecideAction(bc BetContext) Action {
	if p.difficulty.Omniscient() && bc.MyScore != nil && bc.OpponentScore != nil {
		switch {
		case *bc.MyScore > *bc.OpponentScore:
			return p.raise(bc.MaxRaise, bc)
		case *bc.MyScore < *bc.OpponentScore:
			return Action{Type: Fold}
		default:
			return Action{Type: Call}
		}
	}

	prof := p.difficulty.profile()
	if bc.CallDiff == 0 {
		if p.rng.Float64() < prof.aggression {
			return p.raise(1+p.rng.Intn(maxOpenRaise), bc)
		}
		return Action{Type: Call}
	}

	if bc.Round >= minFoldRound && p.rng.Float64() < prof.fold {
		return Action{Type: Fold}
	}
	if p.rng.Float64() < prof.counterRaise {
		return p.raise(1+p.rng.Intn(maxOpenRaise), bc)
	}
	return Action{Type: Call}
}

// raise clamps a proposal to the table limit and to what is left after
// calling. Nothing left to raise with means a plain call.
func (p *Player) raise(proposed int, bc BetContext) Action {
	amount := min(proposed, bc.MaxRaise, bc.Chips-bc.CallDiff)
	if amount <= 0 {
		return Action{Type: Call}
	}
	return Action{Type: Raise, Amount: amount}
}

// Learn drops every believed rule that does not turn the revealed hand into
// the visible number. Beliefs never grow back.
func (p *Player) Learn(visible int, revealed []cards.Card) {
	if !p.difficulty.Learns() || len(revealed) != 5 {
		return
	}
	kept := p.beliefs[:0]
	for _, r := range p.beliefs {
		if r.Calc(revealed) == visible {
			kept = append(kept, r)
		}
	}
	before := len(p.beliefs)
	p.beliefs = kept
	p.logger.Debug("AI narrowed beliefs", "before", before, "after", len(kept))
}
