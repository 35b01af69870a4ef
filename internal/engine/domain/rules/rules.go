package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
)

var ErrUnknownRule = errors.New("unknown rule")

// Kind tags one of the secret number rules.
type Kind int

const (
	Sum Kind = iota
	Product
	Max
	Range
	SumOfSquares
	SortedDiffSum
	LCM
	XorSum
	MaxBinomial
	Median
	MaxPairSum
)

// Rule maps a five card hand to the visible number a player reveals.
type Rule struct {
	Kind        Kind   `json:"-"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type calcFunc func(values []int) int

// calcTable dispatches a kind to its arithmetic. Every function receives the
// five rule values (ace as 1) sorted ascending.
var calcTable = map[Kind]calcFunc{
	Sum: func(v []int) int {
		total := 0
		for _, x := range v {
			total += x
		}
		return total
	},
	Product: func(v []int) int {
		total := 1
		for _, x := range v {
			total *= x
		}
		return total
	},
	Max: func(v []int) int {
		return v[len(v)-1]
	},
	Range: func(v []int) int {
		return v[len(v)-1] - v[0]
	},
	SumOfSquares: func(v []int) int {
		total := 0
		for _, x := range v {
			total += x * x
		}
		return total
	},
	SortedDiffSum: func(v []int) int {
		total := 0
		for i := 1; i < len(v); i++ {
			total += v[i] - v[i-1]
		}
		return total
	},
	LCM: func(v []int) int {
		acc := 1
		for _, x := range v {
			acc = acc / gcd(acc, x) * x
		}
		return acc
	},
	XorSum: func(v []int) int {
		acc := 0
		for _, x := range v {
			acc ^= x
		}
		return acc
	},
	MaxBinomial: func(v []int) int {
		best := 0
		for i := range v {
			for j := range v {
				if i == j || v[i] < v[j] {
					continue
				}
				if c := binomial(v[i], v[j]); c > best {
					best = c
				}
			}
		}
		return best
	},
	Median: func(v []int) int {
		return v[2]
	},
	MaxPairSum: func(v []int) int {
		return v[len(v)-1] + v[len(v)-2]
	},
}

var all = []Rule{
	{Kind: Sum, ID: "SUM", Name: "Sum", Description: "Sum of the five values"},
	{Kind: Product, ID: "PRODUCT", Name: "Product", Description: "Product of the five values"},
	{Kind: Max, ID: "MAX", Name: "Max", Description: "Largest value"},
	{Kind: Range, ID: "RANGE", Name: "Range", Description: "Largest value minus smallest value"},
	{Kind: SumOfSquares, ID: "SQ_SUM", Name: "Sum of Squares", Description: "Sum of each value squared"},
	{Kind: SortedDiffSum, ID: "SORTED_DIFF_SUM", Name: "Sorted Diff Sum", Description: "Sum of the gaps between adjacent values once sorted"},
	{Kind: LCM, ID: "LCM", Name: "LCM", Description: "Least common multiple of the five values"},
	{Kind: XorSum, ID: "XOR_SUM", Name: "XOR Sum", Description: "Bitwise XOR of the five values"},
	{Kind: MaxBinomial, ID: "MAX_NCR", Name: "Max nCr", Description: "Largest C(n, r) over any ordered pair of values with n >= r"},
	{Kind: Median, ID: "MEDIAN", Name: "Median", Description: "Middle value once sorted"},
	{Kind: MaxPairSum, ID: "MAX_PAIR_SUM", Name: "Max Pair Sum", Description: "Sum of the two largest values"},
}

// All returns every rule in table order. The slice is a copy.
func All() []Rule {
	out := make([]Rule, len(all))
	copy(out, all)
	return out
}

// ByID looks a rule up by its identifier.
func ByID(id string) (Rule, error) {
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRule, id)
}

// Calc computes the visible number for hand. Anything other than exactly five
// cards yields 0.
func (r Rule) Calc(hand []cards.Card) int {
	if len(hand) != 5 {
		return 0
	}
	fn, ok := calcTable[r.Kind]
	if !ok {
		return 0
	}
	return fn(Values(hand))
}

func (r Rule) String() string {
	return r.ID
}

// Values converts a hand to its rule values (ace as 1), sorted ascending.
func Values(hand []cards.Card) []int {
	v := make([]int, len(hand))
	for i, c := range hand {
		v[i] = c.Rank.RuleValue()
	}
	sort.Ints(v)
	return v
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// binomial computes C(n, r) exactly; intermediate products stay integral
// because each prefix is itself a binomial coefficient times i.
func binomial(n, r int) int {
	if r < 0 || r > n {
		return 0
	}
	if r > n-r {
		r = n - r
	}
	c := 1
	for i := 1; i <= r; i++ {
		c = c * (n - r + i) / i
	}
	return c
}
