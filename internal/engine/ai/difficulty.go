package ai

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Normal Difficulty = "NORMAL"
	Hard   Difficulty = "HARD"
	God    Difficulty = "GOD"
)

// Difficulties lists every level, weakest first.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Normal, Hard, God}
}

// ParseDifficulty is case insensitive.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Difficulties() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Omniscient reports whether this level is handed the true hidden state
// (secret rule, real card pool, exact hand scores) by the game.
func (d Difficulty) Omniscient() bool {
	return d == God
}

// Learns reports whether this level narrows its beliefs from revealed hands.
func (d Difficulty) Learns() bool {
	return d == Normal || d == Hard
}

// profile holds the probabilities that drive non omniscient betting.
type profile struct {
	aggression   float64 // open with a raise when nothing is owed
	fold         float64 // give up when facing a bet, from minFoldRound on
	counterRaise float64 // re-raise when facing a bet
}

var profiles = map[Difficulty]profile{
	Easy:   {aggression: 0.1, fold: 0.15, counterRaise: 0.05},
	Normal: {aggression: 0.1, fold: 0.1, counterRaise: 0.1},
	Hard:   {aggression: 0.4, fold: 0.05, counterRaise: 0.25},
}

func (d Difficulty) profile() profile {
	if p, ok := profiles[d]; ok {
		return p
	}
	return profiles[Normal]
}
