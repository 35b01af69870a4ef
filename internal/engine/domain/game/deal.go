package game

import (
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
)

const (
	tierAttempts     = 1000
	fallbackAttempts = 100
	halfDeck         = 26
)

// tier is the half-open score range a dealt hand should land in.
type tier struct {
	min, max hand.Score
}

func (t tier) contains(s hand.Score) bool {
	return s >= t.min && s < t.max
}

// dealTiers gives every player one strong hand, three middling ones and one
// weak one, so no sequence is all bluff or all nuts.
var dealTiers = []tier{
	{min: hand.Straight.Band(), max: hand.StraightFlush.Band() + hand.BandWidth},
	{min: hand.OnePair.Band(), max: hand.StraightFlush.Band() + hand.BandWidth},
	{min: hand.OnePair.Band(), max: hand.StraightFlush.Band() + hand.BandWidth},
	{min: hand.OnePair.Band(), max: hand.StraightFlush.Band() + hand.BandWidth},
	{min: hand.HighCard.Band(), max: hand.OnePair.Band()},
}

// dealNumbers splits a shuffled deck in two halves and turns each half into
// a player's five visible numbers. The AI never holds a number the human
// also holds.
func (g *Game) dealNumbers() {
	deck := cards.NewDeck()
	deck.Shuffle(g.rng)
	humanHalf, _ := deck.DealN(halfDeck)
	aiHalf, _ := deck.DealN(halfDeck)

	g.players[Human].numbers = g.tieredNumbers(humanHalf, nil)

	forbidden := make(map[int]struct{}, numbersPerPlayer)
	for _, n := range g.players[Human].numbers {
		forbidden[n] = struct{}{}
	}
	g.players[AI].numbers = g.tieredNumbers(aiHalf, forbidden)
}

// tieredNumbers draws one hand per tier from pool without reusing cards and
// returns the rule values in random order. When a tier cannot be hit the
// hand only has to avoid the forbidden values; failing that, any hand is
// taken.
func (g *Game) tieredNumbers(pool []cards.Card, forbidden map[int]struct{}) []int {
	remaining := append([]cards.Card(nil), pool...)
	allowed := func(n int) bool {
		_, bad := forbidden[n]
		return !bad
	}

	numbers := make([]int, 0, len(dealTiers))
	for _, t := range dealTiers {
		if len(remaining) < 5 {
			break
		}

		var chosen []cards.Card
		for i := 0; i < tierAttempts && chosen == nil; i++ {
			h := g.showdown.RandomHand(remaining)
			if t.contains(hand.Evaluate(h)) && allowed(g.rule.Calc(h)) {
				chosen = h
			}
		}
		for i := 0; i < fallbackAttempts && chosen == nil; i++ {
			h := g.showdown.RandomHand(remaining)
			if allowed(g.rule.Calc(h)) || i == fallbackAttempts-1 {
				chosen = h
			}
		}

		numbers = append(numbers, g.rule.Calc(chosen))
		used := cards.NewSet(chosen...)
		kept := remaining[:0]
		for _, c := range remaining {
			if !used.Contains(c) {
				kept = append(kept, c)
			}
		}
		remaining = kept
	}

	g.rng.Shuffle(len(numbers), func(i, j int) {
		numbers[i], numbers[j] = numbers[j], numbers[i]
	})
	return numbers
}
