package hand

import (
	"fmt"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/paulhankin/poker"
)

// Score totally orders 5-card poker hands; higher is stronger. Each category
// owns a disjoint band of BandWidth values and the ranks inside a band are
// packed as base-16 digits, so any two hands compare with a single integer
// comparison.
type Score int

const (
	// Invalid is returned for anything that is not five distinct valid cards.
	Invalid Score = 0
	// NoHand marks a search that found no hand at all.
	NoHand Score = -1

	BandWidth = 10_000_000
)

// Category is a poker hand class, weakest first.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"High Card",
	"One Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
}

func (c Category) String() string {
	if c < HighCard || c > StraightFlush {
		return "Unknown"
	}
	return categoryNames[c]
}

// Band is the lowest score a hand of this category can have.
func (c Category) Band() Score {
	return Score(int(c) * BandWidth)
}

// StraightFlushBand is the floor of the strongest category.
var StraightFlushBand = StraightFlush.Band()

func (s Score) Category() Category {
	if s < 0 {
		return HighCard
	}
	c := Category(int(s) / BandWidth)
	if c > StraightFlush {
		return StraightFlush
	}
	return c
}

func (s Score) Found() bool {
	return s >= 0
}

// Evaluate scores a five card hand. It is pure and total: malformed input
// (wrong length, duplicates, out of range cards) yields Invalid.
//
// The wheel (A-2-3-4-5) is a five-high straight; the ace is read as 1 there
// and as 14 everywhere else.
func Evaluate(hand []cards.Card) Score {
	if len(hand) != 5 {
		return Invalid
	}

	var counts [cards.Ace + 1]int
	flush := true
	for i, c := range hand {
		if !c.Valid() {
			return Invalid
		}
		for _, prev := range hand[:i] {
			if prev == c {
				return Invalid
			}
		}
		counts[c.Rank]++
		if c.Suit != hand[0].Suit {
			flush = false
		}
	}

	// ranks grouped by multiplicity, then by rank, both descending
	kickers := make([]int, 0, 5)
	maxCount, pairs, distinct := 0, 0, 0
	for n := 4; n >= 1; n-- {
		for r := cards.Ace; r >= cards.Two; r-- {
			if counts[r] != n {
				continue
			}
			for i := 0; i < n; i++ {
				kickers = append(kickers, int(r))
			}
			distinct++
			if n == 2 {
				pairs++
			}
			if n > maxCount {
				maxCount = n
			}
		}
	}

	straight := false
	if distinct == 5 {
		switch {
		case kickers[0]-kickers[4] == 4:
			straight = true
		case kickers[0] == int(cards.Ace) && kickers[1] == 5:
			straight = true
			kickers = []int{5, 4, 3, 2, 1}
		}
	}

	var category Category
	switch {
	case straight && flush:
		category = StraightFlush
	case maxCount == 4:
		category = FourOfAKind
	case maxCount == 3 && pairs == 1:
		category = FullHouse
	case flush:
		category = Flush
	case straight:
		category = Straight
	case maxCount == 3:
		category = ThreeOfAKind
	case pairs == 2:
		category = TwoPair
	case pairs == 1:
		category = OnePair
	default:
		category = HighCard
	}

	packed := 0
	for _, k := range kickers {
		packed = packed*16 + k
	}
	return category.Band() + Score(packed)
}

// Name returns the category name of a hand, or "No Hand" for a failed search.
func Name(s Score) string {
	if !s.Found() {
		return "No Hand"
	}
	return s.Category().String()
}

// Describe gives a human readable description such as "ace-high flush".
func Describe(hand []cards.Card) (string, error) {
	if Evaluate(hand) == Invalid {
		return "", fmt.Errorf("describe hand %s: %w", cards.Format(hand), cards.ErrInvalidCard)
	}
	converted := make([]poker.Card, len(hand))
	for i, c := range hand {
		pc, err := toPokerCard(c)
		if err != nil {
			return "", err
		}
		converted[i] = pc
	}
	return poker.Describe(converted)
}

// toPokerCard maps a card onto the paulhankin encoding, where the ace is rank 1
// and suits run 0..3 as club, diamond, heart, spade.
func toPokerCard(c cards.Card) (poker.Card, error) {
	var suit uint8
	switch c.Suit {
	case cards.Clubs:
		suit = 0
	case cards.Diamonds:
		suit = 1
	case cards.Hearts:
		suit = 2
	default:
		suit = 3
	}
	rank := uint8(c.Rank)
	if c.Rank == cards.Ace {
		rank = 1
	}
	pc, err := poker.MakeCard(poker.Suit(suit), poker.Rank(rank))
	if err != nil {
		return pc, fmt.Errorf("convert card %s: %w", c, err)
	}
	return pc, nil
}
