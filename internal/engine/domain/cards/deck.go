package cards

import (
	"errors"
	"math/rand"
	"sort"
)

var ErrNoCardsLeft = errors.New("no cards left in deck")

// Deck is an ordered pile of cards dealt from the top.
type Deck struct {
	cards []Card
	index int
}

// All returns the standard 52 cards in suit then rank order.
func All() []Card {
	all := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			all = append(all, Card{Suit: suit, Rank: rank})
		}
	}
	return all
}

// NewDeck creates a new standard 52-card deck
func NewDeck() *Deck {
	return &Deck{cards: All()}
}

// NewDeckExcluding creates a deck, in suit then rank order, of every card
// not in banned.
func NewDeckExcluding(banned Set) *Deck {
	all := All()
	if banned.Len() == 0 {
		return &Deck{cards: all}
	}
	pool := all[:0]
	for _, c := range all {
		if !banned.Contains(c) {
			pool = append(pool, c)
		}
	}
	return &Deck{cards: pool}
}

// Shuffle shuffles the whole deck using Fisher-Yates and rewinds it.
func (d *Deck) Shuffle(rng *rand.Rand) {
	d.index = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DealN deals n cards, or none at all if fewer remain.
func (d *Deck) DealN(n int) ([]Card, error) {
	if n > d.RemainingCards() {
		return nil, ErrNoCardsLeft
	}
	hand := make([]Card, n)
	copy(hand, d.cards[d.index:d.index+n])
	d.index += n
	return hand, nil
}

// RemainingCards returns the number of cards left in the deck
func (d *Deck) RemainingCards() int {
	return len(d.cards) - d.index
}

// Cards returns a copy of the undealt cards.
func (d *Deck) Cards() []Card {
	out := make([]Card, d.RemainingCards())
	copy(out, d.cards[d.index:])
	return out
}

// Set is an unordered collection of distinct cards.
type Set map[Card]struct{}

func NewSet(cs ...Card) Set {
	s := make(Set, len(cs))
	s.Add(cs...)
	return s
}

func (s Set) Add(cs ...Card) {
	for _, c := range cs {
		s[c] = struct{}{}
	}
}

func (s Set) Contains(c Card) bool {
	_, ok := s[c]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Cards returns the members sorted by suit then rank.
func (s Set) Cards() []Card {
	out := make([]Card, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Suit != out[j].Suit {
			return out[i].Suit < out[j].Suit
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}
