package cards

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck_HasFiftyTwoDistinctCards(t *testing.T) {
	deck := NewDeck()
	require.Equal(t, 52, deck.RemainingCards())

	seen := NewSet()
	for _, c := range deck.Cards() {
		assert.True(t, c.Valid(), "card %v", c)
		assert.False(t, seen.Contains(c), "duplicate %v", c)
		seen.Add(c)
	}
	assert.Equal(t, 52, seen.Len())

	_, err := deck.DealN(53)
	assert.ErrorIs(t, err, ErrNoCardsLeft)
}

func TestDeck_ShuffleIsReproducibleWithSeed(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(42)))
	b.Shuffle(rand.New(rand.NewSource(42)))
	assert.Equal(t, a.Cards(), b.Cards())

	c := NewDeck()
	c.Shuffle(rand.New(rand.NewSource(7)))
	assert.NotEqual(t, a.Cards(), c.Cards())
	assert.ElementsMatch(t, a.Cards(), c.Cards())
}

func TestDeck_DealN(t *testing.T) {
	deck := NewDeck()
	hand, err := deck.DealN(5)
	require.NoError(t, err)
	assert.Len(t, hand, 5)
	assert.Equal(t, 47, deck.RemainingCards())

	_, err = deck.DealN(48)
	assert.ErrorIs(t, err, ErrNoCardsLeft)
	assert.Equal(t, 47, deck.RemainingCards())

	// shuffling rewinds the deck
	deck.Shuffle(rand.New(rand.NewSource(1)))
	assert.Equal(t, 52, deck.RemainingCards())
}

func TestNewDeckExcluding(t *testing.T) {
	banned := NewSet(MustParseHand("As Kd 2c")...)
	deck := NewDeckExcluding(banned)
	assert.Equal(t, 49, deck.RemainingCards())
	for _, c := range deck.Cards() {
		assert.False(t, banned.Contains(c))
	}
	assert.Equal(t, NewDeck().Cards(), NewDeckExcluding(NewSet()).Cards())
}

func TestCard_Identifiers(t *testing.T) {
	c, err := Parse("As")
	require.NoError(t, err)
	assert.Equal(t, Card{Suit: Spades, Rank: Ace}, c)
	assert.Equal(t, "♠14", c.ID())
	assert.Equal(t, "A♠", c.String())
	assert.Equal(t, 1, c.Rank.RuleValue())
	assert.Equal(t, 10, Ten.RuleValue())

	_, err = Parse("1s")
	assert.ErrorIs(t, err, ErrInvalidCard)
	_, err = Parse("Ax")
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestOverlaps(t *testing.T) {
	a := MustParseHand("As Ks Qs Js Ts")
	assert.True(t, Overlaps(a, MustParseHand("2c 3c 4c 5c Ts")))
	assert.False(t, Overlaps(a, MustParseHand("2c 3c 4c 5c 6c")))
}

func TestSet_CardsSorted(t *testing.T) {
	s := NewSet(MustParseHand("2c As 3s")...)
	s.Add(MustParseHand("As")...)

	assert.Equal(t, MustParseHand("3s As 2c"), s.Cards())
	assert.Equal(t, 3, s.Len())
}
