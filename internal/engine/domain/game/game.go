package game

import (
	"log/slog"
	"math/rand"

	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/aggregates"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/rules"
	"github.com/anhbaysgalan1/numpoker/internal/engine/solver"
	"github.com/google/uuid"
)

// Phase of the round state machine:
// SELECT -> BETTING -> RESULT -> SELECT | GAME_OVER.
type Phase string

const (
	PhaseSelect   Phase = "SELECT"
	PhaseBetting  Phase = "BETTING"
	PhaseResult   Phase = "RESULT"
	PhaseGameOver Phase = "GAME_OVER"
)

// Side identifies a seat, or the lack of a winner.
type Side string

const (
	Human Side = "human"
	AI    Side = "ai"
	Draw  Side = "draw"
)

func (s Side) Opponent() Side {
	if s == Human {
		return AI
	}
	return Human
}

// Reasons a game can end.
const (
	ReasonInsufficientChips = "insufficient_chips"
	ReasonOxygenDepleted    = "oxygen_depleted"
	ReasonNumbersExhausted  = "numbers_exhausted"
)

const numbersPerPlayer = 5

// Config tunes a game. Zero values fall back to DefaultConfig.
type Config struct {
	StartingChips   int
	LookaheadTrials int
	InsightTrials   int
	ShowdownTrials  int
	Fallback        solver.FallbackPolicy
	Logger          *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		StartingChips:   30,
		LookaheadTrials: solver.LookaheadTrials,
		InsightTrials:   solver.InsightTrials,
		ShowdownTrials:  solver.ShowdownTrials,
		Fallback:        solver.FallbackStrict,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StartingChips <= 0 {
		c.StartingChips = d.StartingChips
	}
	if c.LookaheadTrials <= 0 {
		c.LookaheadTrials = d.LookaheadTrials
	}
	if c.InsightTrials <= 0 {
		c.InsightTrials = d.InsightTrials
	}
	if c.ShowdownTrials <= 0 {
		c.ShowdownTrials = d.ShowdownTrials
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type player struct {
	numbers []int
	chips   int
	wins    int
	bet     int
	folded  bool
	// chips held when the round began, before the ante
	roundStart int
}

type pick struct {
	index  int
	number int
	ok     bool
}

// Game is the single authoritative state of one human vs AI match. All
// fields are private; callers drive it through the command methods and read
// it through Snapshot. A Game is not safe for concurrent use.
type Game struct {
	aggregates.AggregateRoot

	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger

	// showdown honours the configured fallback policy; insight is always strict
	showdown *solver.Solver
	insight  *solver.Solver

	difficulty ai.Difficulty
	opponent   *ai.Player
	rule       rules.Rule

	phase       Phase
	turn        Side
	firstBetter Side
	round       int
	pot         int
	actions     int
	lastAction  string

	players map[Side]*player
	picks   map[Side]pick
	banned  cards.Set
	history []*events.RoundResolved
	result  *RoundResult
}

// NewGame creates an idle game; StartNewGame deals it.
func NewGame(rng *rand.Rand, cfg Config) *Game {
	cfg = cfg.withDefaults()
	g := &Game{
		cfg:      cfg,
		rng:      rng,
		logger:   cfg.Logger,
		showdown: solver.New(rng, solver.WithFallback(cfg.Fallback)),
		insight:  solver.New(rng),
		players: map[Side]*player{
			Human: {},
			AI:    {},
		},
		picks:  map[Side]pick{},
		banned: cards.NewSet(),
	}
	g.Restart(uuid.New())
	return g
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Difficulty() ai.Difficulty {
	return g.difficulty
}

// History returns the resolved rounds, oldest first.
func (g *Game) History() []events.RoundResolved {
	out := make([]events.RoundResolved, len(g.history))
	for i, h := range g.history {
		out[i] = *h
	}
	return out
}

// BannedCards lists every card revealed by a showdown so far.
func (g *Game) BannedCards() []cards.Card {
	return g.banned.Cards()
}

// Beliefs is the number of rules the AI still considers possible.
func (g *Game) Beliefs() int {
	if g.opponent == nil {
		return 0
	}
	return len(g.opponent.Beliefs())
}

// RevealedRule is the secret rule, available only once the game is over.
func (g *Game) RevealedRule() (rules.Rule, bool) {
	if g.phase != PhaseGameOver {
		return rules.Rule{}, false
	}
	return g.rule, true
}

// NumbersExhausted reports whether either side has run out of numbers.
func (g *Game) NumbersExhausted() bool {
	return len(g.players[Human].numbers) == 0 || len(g.players[AI].numbers) == 0
}

func (g *Game) pool() []cards.Card {
	return cards.NewDeckExcluding(g.banned).Cards()
}

func (g *Game) maxRaise() int {
	return g.pot / 2
}

// pay moves up to amount chips from side's stack into the pot and returns
// what was actually paid.
func (g *Game) pay(side Side, amount int) int {
	p := g.players[side]
	if amount > p.chips {
		amount = p.chips
	}
	if amount < 0 {
		amount = 0
	}
	p.chips -= amount
	p.bet += amount
	g.pot += amount
	return amount
}
