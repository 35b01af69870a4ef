package rules

import (
	"math/rand"
	"testing"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRule(t *testing.T, id string) Rule {
	t.Helper()
	r, err := ByID(id)
	require.NoError(t, err)
	return r
}

func TestCalc_KnownHands(t *testing.T) {
	// values are 1 (ace), 2, 3, 12, 13
	h := cards.MustParseHand("As 2d 3c Qh Ks")

	tests := []struct {
		id   string
		want int
	}{
		{"SUM", 31},
		{"PRODUCT", 936},
		{"MAX", 13},
		{"RANGE", 12},
		{"SQ_SUM", 1 + 4 + 9 + 144 + 169},
		{"SORTED_DIFF_SUM", 12},
		{"LCM", 156},
		{"XOR_SUM", 1 ^ 2 ^ 3 ^ 12 ^ 13},
		{"MAX_NCR", 286},
		{"MEDIAN", 3},
		{"MAX_PAIR_SUM", 25},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, mustRule(t, tt.id).Calc(h))
		})
	}
}

func TestCalc_AceIsOne(t *testing.T) {
	h := cards.MustParseHand("Ac Ad Ah As 2c")
	assert.Equal(t, 6, mustRule(t, "SUM").Calc(h))
	assert.Equal(t, 2, mustRule(t, "MAX").Calc(h))
	assert.Equal(t, 2, mustRule(t, "PRODUCT").Calc(h))
}

func TestCalc_WrongSizeIsZero(t *testing.T) {
	for _, r := range All() {
		assert.Zero(t, r.Calc(cards.MustParseHand("As Kd")), r.ID)
		assert.Zero(t, r.Calc(nil), r.ID)
	}
}

func TestCalc_DeterministicAndOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	deck := cards.NewDeck()
	for i := 0; i < 200; i++ {
		deck.Shuffle(rng)
		h, err := deck.DealN(5)
		require.NoError(t, err)

		reversed := []cards.Card{h[4], h[3], h[2], h[1], h[0]}
		for _, r := range All() {
			first := r.Calc(h)
			assert.Equal(t, first, r.Calc(h), r.ID)
			assert.Equal(t, first, r.Calc(reversed), r.ID)
		}
	}
}

func TestAll(t *testing.T) {
	rs := All()
	assert.Len(t, rs, 11)

	ids := map[string]bool{}
	for _, r := range rs {
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
		_, ok := calcTable[r.Kind]
		assert.True(t, ok, "no calc for %s", r.ID)
	}

	rs[0].ID = "mutated"
	assert.Equal(t, "SUM", All()[0].ID)

	_, err := ByID("NOPE")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestBinomial(t *testing.T) {
	assert.Equal(t, 1, binomial(5, 0))
	assert.Equal(t, 1, binomial(5, 5))
	assert.Equal(t, 10, binomial(5, 2))
	assert.Equal(t, 1716, binomial(13, 6))
	assert.Equal(t, 0, binomial(2, 3))
}
