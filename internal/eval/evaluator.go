// Package eval scores five-card poker hands and selects the best five-card
// hand out of seven candidates.
package eval

import (
	"sort"

	"github.com/lox/pokerroom/internal/deck"
)

// Category is the hand-ranking class, ascending in strength.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the display name used in showdown messaging
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Score is a comparable hand strength: category first, then kicker ranks
// most-significant first.
type Score struct {
	Category Category
	Tiebreak []int
}

// Compare returns -1, 0 or 1 as s is weaker than, equal to, or stronger
// than other. Scores within one category compare their tiebreak tuples
// lexicographically.
func (s Score) Compare(other Score) int {
	if s.Category != other.Category {
		if s.Category < other.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(s.Tiebreak) && i < len(other.Tiebreak); i++ {
		if s.Tiebreak[i] != other.Tiebreak[i] {
			if s.Tiebreak[i] < other.Tiebreak[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Beats returns true if s is strictly stronger than other
func (s Score) Beats(other Score) bool {
	return s.Compare(other) > 0
}

// Evaluate5 scores exactly five cards. Passing any other number of cards,
// or duplicates, violates the contract and panics.
func Evaluate5(cards []deck.Card) Score {
	if len(cards) != 5 {
		panic("eval: Evaluate5 requires exactly 5 cards")
	}

	vals := make([]int, 5)
	for i, c := range cards {
		vals[i] = c.Value()
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	straightTop := straightHigh(vals)

	counts := make(map[int]int)
	for _, v := range vals {
		counts[v]++
	}
	groups := rankGroups(counts)

	switch {
	case straightTop > 0 && flush:
		return Score{StraightFlush, []int{straightTop}}

	case groups[0].count == 4:
		four := groups[0].value
		return Score{FourOfAKind, append([]int{four}, valsExcept(vals, four)...)}

	case groups[0].count == 3 && len(groups) > 1 && groups[1].count == 2:
		return Score{FullHouse, []int{groups[0].value, groups[1].value}}

	case flush:
		return Score{Flush, vals}

	case straightTop > 0:
		return Score{Straight, []int{straightTop}}

	case groups[0].count == 3:
		trips := groups[0].value
		return Score{ThreeOfAKind, append([]int{trips}, valsExcept(vals, trips)...)}

	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		hi, lo := groups[0].value, groups[1].value
		return Score{TwoPair, append([]int{hi, lo}, valsExcept(vals, hi, lo)...)}

	case groups[0].count == 2:
		pair := groups[0].value
		return Score{Pair, append([]int{pair}, valsExcept(vals, pair)...)}

	default:
		return Score{HighCard, vals}
	}
}

// BestOf7 enumerates every five-card subset of five to seven cards and
// returns the strongest Score plus the subset that produced it. Fewer
// than seven cards happens when a player has no hole cards and plays the
// board alone. Ties keep the first subset found, so permuting the input
// never changes the Score.
func BestOf7(cards []deck.Card) (Score, []deck.Card) {
	n := len(cards)
	if n < 5 || n > 7 {
		panic("eval: BestOf7 requires 5 to 7 cards")
	}

	var best Score
	var bestCombo []deck.Card
	found := false

	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						combo := []deck.Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						score := Evaluate5(combo)
						if !found || score.Beats(best) {
							best = score
							bestCombo = combo
							found = true
						}
					}
				}
			}
		}
	}

	return best, bestCombo
}

// straightHigh returns the top rank of a straight in vals (sorted
// descending), 0 if there is none. The wheel A-2-3-4-5 scores as a
// straight to 5.
func straightHigh(vals []int) int {
	uniq := vals[:0:0]
	for i, v := range vals {
		if i == 0 || v != vals[i-1] {
			uniq = append(uniq, v)
		}
	}

	for i := 0; i+4 < len(uniq); i++ {
		if uniq[i]-uniq[i+4] == 4 {
			return uniq[i]
		}
	}

	if contains(uniq, 14) && contains(uniq, 5) && contains(uniq, 4) && contains(uniq, 3) && contains(uniq, 2) {
		return 5
	}
	return 0
}

type rankGroup struct {
	value int
	count int
}

// rankGroups orders the rank histogram by count then rank, both descending
func rankGroups(counts map[int]int) []rankGroup {
	groups := make([]rankGroup, 0, len(counts))
	for v, n := range counts {
		groups = append(groups, rankGroup{value: v, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].value > groups[j].value
	})
	return groups
}

// valsExcept returns the values of vals (already descending) that are not
// in excluded, preserving order
func valsExcept(vals []int, excluded ...int) []int {
	out := make([]int, 0, len(vals))
outer:
	for _, v := range vals {
		for _, e := range excluded {
			if v == e {
				continue outer
			}
		}
		out = append(out, v)
	}
	return out
}

func contains(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
