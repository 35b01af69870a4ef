package solver

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/rules"
)

// Default trial budgets per call site.
const (
	LookaheadTrials = 2000
	InsightTrials   = 5000
	ShowdownTrials  = 50000
)

// FallbackPolicy decides what a search returns when no sampled hand matched.
type FallbackPolicy int

const (
	// FallbackStrict reports failure: no hand and a NoHand score.
	FallbackStrict FallbackPolicy = iota
	// FallbackAnyHand returns a random pool hand with its real score and
	// Matched set to false, so the target number is not honoured.
	FallbackAnyHand
)

func (p FallbackPolicy) String() string {
	if p == FallbackAnyHand {
		return "any"
	}
	return "strict"
}

// ParseFallback accepts "strict" or "any".
func ParseFallback(s string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return FallbackStrict, nil
	case "any", "any_hand":
		return FallbackAnyHand, nil
	}
	return FallbackStrict, fmt.Errorf("unknown solver fallback %q", s)
}

// Result of a search. Hand is nil when nothing was found.
type Result struct {
	Hand    []cards.Card
	Score   hand.Score
	Matched bool
}

func (r Result) Found() bool {
	return r.Hand != nil
}

type Option func(*Solver)

func WithFallback(p FallbackPolicy) Option {
	return func(s *Solver) { s.fallback = p }
}

// WithStopScore ends a search as soon as a match scores at least score.
func WithStopScore(score hand.Score) Option {
	return func(s *Solver) { s.stopAt = score }
}

// Solver approximately inverts a rule: given a visible number it searches
// for the strongest poker hand in a pool that produces that number.
//
// The search is Monte Carlo over random 5-card samples and only
// probabilistically correct. With a small budget or a rare target it may
// return a weaker hand than the true best, or nothing at all.
//
// A Solver owns its random source and is not safe for concurrent use.
type Solver struct {
	rng      *rand.Rand
	fallback FallbackPolicy
	stopAt   hand.Score
	idx      []int
}

func New(rng *rand.Rand, opts ...Option) *Solver {
	s := &Solver{
		rng:      rng,
		fallback: FallbackStrict,
		stopAt:   hand.StraightFlushBand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Fallback() FallbackPolicy {
	return s.fallback
}

// FindBestHand samples up to maxTrials hands from pool and keeps the best
// scoring one whose rule value equals target. Pools smaller than five cards
// fail immediately regardless of policy.
func (s *Solver) FindBestHand(target int, rule rules.Rule, pool []cards.Card, maxTrials int) Result {
	if len(pool) < 5 {
		return Result{Score: hand.NoHand}
	}
	s.resetIndex(len(pool))

	best := Result{Score: hand.NoHand}
	sample := make([]cards.Card, 5)
	for trial := 0; trial < maxTrials; trial++ {
		s.sample(pool, sample)
		if rule.Calc(sample) != target {
			continue
		}
		score := hand.Evaluate(sample)
		if score <= best.Score {
			continue
		}
		best = Result{Hand: append([]cards.Card(nil), sample...), Score: score, Matched: true}
		if score >= s.stopAt {
			break
		}
	}

	if !best.Found() && s.fallback == FallbackAnyHand {
		s.sample(pool, sample)
		return Result{Hand: append([]cards.Card(nil), sample...), Score: hand.Evaluate(sample)}
	}
	return best
}

// RandomHand draws five distinct cards from pool, or nil if it is too small.
func (s *Solver) RandomHand(pool []cards.Card) []cards.Card {
	if len(pool) < 5 {
		return nil
	}
	s.resetIndex(len(pool))
	out := make([]cards.Card, 5)
	s.sample(pool, out)
	return out
}

func (s *Solver) resetIndex(n int) {
	if cap(s.idx) < n {
		s.idx = make([]int, n)
	}
	s.idx = s.idx[:n]
	for i := range s.idx {
		s.idx[i] = i
	}
}

// sample fills out with len(out) distinct pool cards using a partial
// Fisher-Yates pass over the index buffer. The buffer stays a permutation
// between calls, so it never needs resetting within one search.
func (s *Solver) sample(pool, out []cards.Card) {
	n := len(s.idx)
	for k := range out {
		j := k + s.rng.Intn(n-k)
		s.idx[k], s.idx[j] = s.idx[j], s.idx[k]
		out[k] = pool[s.idx[k]]
	}
}
