package cards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidCard = errors.New("invalid card")

// Suit is one of the four french suits.
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

// Suits lists every suit in deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) Valid() bool {
	return s <= Clubs
}

func (s Suit) String() string {
	if !s.Valid() {
		return "?"
	}
	return suitSymbols[s]
}

// MarshalText renders the suit as its symbol.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: suit %d", ErrInvalidCard, s)
	}
	return []byte(suitSymbols[s]), nil
}

// Rank is a card rank from 2 to 14, where 14 is the ace.
type Rank uint8

const (
	Two   Rank = 2
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// RuleValue is the arithmetic value used by number rules. The ace counts as 1
// here, unlike hand ranking where it is high.
func (r Rank) RuleValue() int {
	if r == Ace {
		return 1
	}
	return int(r)
}

func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r.Valid() {
		return strconv.Itoa(int(r))
	}
	return "?"
}

// Card is an immutable playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func New(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// ID is the stable identifier of the card, e.g. "♠14" for the ace of spades.
func (c Card) ID() string {
	return c.Suit.String() + strconv.Itoa(int(c.Rank))
}

// String renders the card as rank then suit, e.g. "A♠".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Parse reads the short notation "As", "Td", "9h", "2c" (rank then suit letter).
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	var rank Rank
	switch r := s[0]; {
	case r >= '2' && r <= '9':
		rank = Rank(r - '0')
	default:
		switch strings.ToUpper(s[:1]) {
		case "T":
			rank = Ten
		case "J":
			rank = Jack
		case "Q":
			rank = Queen
		case "K":
			rank = King
		case "A":
			rank = Ace
		default:
			return Card{}, fmt.Errorf("%w: rank in %q", ErrInvalidCard, s)
		}
	}

	var suit Suit
	switch strings.ToLower(s[1:]) {
	case "s":
		suit = Spades
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("%w: suit in %q", ErrInvalidCard, s)
	}

	return Card{Suit: suit, Rank: rank}, nil
}

// MustParseHand parses space separated cards and panics on bad input.
// Intended for fixtures.
func MustParseHand(s string) []Card {
	fields := strings.Fields(s)
	hand := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			panic(err)
		}
		hand = append(hand, c)
	}
	return hand
}

// Format joins card strings with spaces.
func Format(hand []Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Overlaps reports whether the two hands share at least one physical card.
func Overlaps(a, b []Card) bool {
	seen := make(map[Card]struct{}, len(a))
	for _, c := range a {
		seen[c] = struct{}{}
	}
	for _, c := range b {
		if _, ok := seen[c]; ok {
			return true
		}
	}
	return false
}
