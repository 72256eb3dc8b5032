package eval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerroom/internal/deck"
)

func card(rank deck.Rank, suit deck.Suit) deck.Card {
	return deck.NewCard(rank, suit)
}

func TestEvaluate5Categories(t *testing.T) {
	tests := []struct {
		name     string
		cards    []deck.Card
		category Category
		tiebreak []int
	}{
		{
			name: "royal straight flush",
			cards: []deck.Card{
				card(deck.Ace, deck.Spades), card(deck.King, deck.Spades),
				card(deck.Queen, deck.Spades), card(deck.Jack, deck.Spades),
				card(deck.Ten, deck.Spades),
			},
			category: StraightFlush,
			tiebreak: []int{14},
		},
		{
			name: "steel wheel",
			cards: []deck.Card{
				card(deck.Ace, deck.Hearts), card(deck.Two, deck.Hearts),
				card(deck.Three, deck.Hearts), card(deck.Four, deck.Hearts),
				card(deck.Five, deck.Hearts),
			},
			category: StraightFlush,
			tiebreak: []int{5},
		},
		{
			name: "four of a kind",
			cards: []deck.Card{
				card(deck.Nine, deck.Spades), card(deck.Nine, deck.Hearts),
				card(deck.Nine, deck.Diamonds), card(deck.Nine, deck.Clubs),
				card(deck.King, deck.Spades),
			},
			category: FourOfAKind,
			tiebreak: []int{9, 13},
		},
		{
			name: "full house twos over fives",
			cards: []deck.Card{
				card(deck.Two, deck.Spades), card(deck.Two, deck.Hearts),
				card(deck.Two, deck.Diamonds), card(deck.Five, deck.Clubs),
				card(deck.Five, deck.Hearts),
			},
			category: FullHouse,
			tiebreak: []int{2, 5},
		},
		{
			name: "flush",
			cards: []deck.Card{
				card(deck.Ace, deck.Clubs), card(deck.Jack, deck.Clubs),
				card(deck.Eight, deck.Clubs), card(deck.Six, deck.Clubs),
				card(deck.Three, deck.Clubs),
			},
			category: Flush,
			tiebreak: []int{14, 11, 8, 6, 3},
		},
		{
			name: "straight",
			cards: []deck.Card{
				card(deck.Nine, deck.Spades), card(deck.Eight, deck.Hearts),
				card(deck.Seven, deck.Diamonds), card(deck.Six, deck.Clubs),
				card(deck.Five, deck.Hearts),
			},
			category: Straight,
			tiebreak: []int{9},
		},
		{
			name: "wheel with mixed suits",
			cards: []deck.Card{
				card(deck.Ace, deck.Spades), card(deck.Two, deck.Hearts),
				card(deck.Three, deck.Diamonds), card(deck.Four, deck.Clubs),
				card(deck.Five, deck.Hearts),
			},
			category: Straight,
			tiebreak: []int{5},
		},
		{
			name: "three of a kind",
			cards: []deck.Card{
				card(deck.Seven, deck.Spades), card(deck.Seven, deck.Hearts),
				card(deck.Seven, deck.Diamonds), card(deck.King, deck.Clubs),
				card(deck.Two, deck.Hearts),
			},
			category: ThreeOfAKind,
			tiebreak: []int{7, 13, 2},
		},
		{
			name: "two pair",
			cards: []deck.Card{
				card(deck.Jack, deck.Spades), card(deck.Jack, deck.Hearts),
				card(deck.Four, deck.Diamonds), card(deck.Four, deck.Clubs),
				card(deck.Ace, deck.Hearts),
			},
			category: TwoPair,
			tiebreak: []int{11, 4, 14},
		},
		{
			name: "one pair",
			cards: []deck.Card{
				card(deck.Ten, deck.Spades), card(deck.Ten, deck.Hearts),
				card(deck.Ace, deck.Diamonds), card(deck.Six, deck.Clubs),
				card(deck.Three, deck.Hearts),
			},
			category: Pair,
			tiebreak: []int{10, 14, 6, 3},
		},
		{
			name: "high card",
			cards: []deck.Card{
				card(deck.Ace, deck.Spades), card(deck.Jack, deck.Hearts),
				card(deck.Nine, deck.Diamonds), card(deck.Six, deck.Clubs),
				card(deck.Two, deck.Hearts),
			},
			category: HighCard,
			tiebreak: []int{14, 11, 9, 6, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Evaluate5(tt.cards)
			assert.Equal(t, tt.category, score.Category)
			assert.Equal(t, tt.tiebreak, score.Tiebreak)
		})
	}
}

func TestEvaluate5PicksHighestStraight(t *testing.T) {
	// Six consecutive ranks would match two windows; the higher one wins
	score := Evaluate5([]deck.Card{
		card(deck.Nine, deck.Spades), card(deck.Eight, deck.Hearts),
		card(deck.Seven, deck.Diamonds), card(deck.Six, deck.Clubs),
		card(deck.Ten, deck.Hearts),
	})
	assert.Equal(t, Straight, score.Category)
	assert.Equal(t, []int{10}, score.Tiebreak)
}

func TestEvaluate5WrongArityPanics(t *testing.T) {
	assert.Panics(t, func() {
		Evaluate5([]deck.Card{card(deck.Ace, deck.Spades)})
	})
}

func TestScoreCompare(t *testing.T) {
	flush := Score{Flush, []int{14, 11, 8, 6, 3}}
	straight := Score{Straight, []int{9}}
	lowerFlush := Score{Flush, []int{14, 11, 8, 6, 2}}

	assert.True(t, flush.Beats(straight))
	assert.True(t, flush.Beats(lowerFlush))
	assert.False(t, straight.Beats(flush))
	assert.Equal(t, 0, flush.Compare(flush))
}

func TestBestOf7FindsBestHand(t *testing.T) {
	// Hole pair plus a paired board: the best hand is the full house
	seven := []deck.Card{
		card(deck.Ace, deck.Spades), card(deck.Ace, deck.Hearts),
		card(deck.King, deck.Diamonds), card(deck.King, deck.Clubs),
		card(deck.Ace, deck.Diamonds), card(deck.Four, deck.Hearts),
		card(deck.Nine, deck.Clubs),
	}

	score, combo := BestOf7(seven)
	assert.Equal(t, FullHouse, score.Category)
	assert.Equal(t, []int{14, 13}, score.Tiebreak)
	require.Len(t, combo, 5)
}

func TestBestOfFewerThanSevenCards(t *testing.T) {
	board := []deck.Card{
		card(deck.King, deck.Spades), card(deck.King, deck.Hearts),
		card(deck.Seven, deck.Diamonds), card(deck.Four, deck.Clubs),
		card(deck.Two, deck.Hearts),
	}

	// a player with no hole cards plays the board exactly
	score, combo := BestOf7(board)
	assert.Equal(t, 0, Evaluate5(board).Compare(score))
	assert.ElementsMatch(t, board, combo)

	// six cards: the best five-card subset wins
	six := append(append([]deck.Card{}, board...), card(deck.King, deck.Diamonds))
	score, combo = BestOf7(six)
	assert.Equal(t, ThreeOfAKind, score.Category)
	require.Len(t, combo, 5)
}

func TestBestOf7WrongArityPanics(t *testing.T) {
	four := []deck.Card{
		card(deck.Ace, deck.Spades), card(deck.King, deck.Spades),
		card(deck.Queen, deck.Spades), card(deck.Jack, deck.Spades),
	}
	assert.Panics(t, func() { BestOf7(four) })

	eight := make([]deck.Card, 0, 8)
	for rank := deck.Two; rank <= deck.Nine; rank++ {
		eight = append(eight, card(rank, deck.Spades))
	}
	assert.Panics(t, func() { BestOf7(eight) })
}

func TestBestOf7IsOrderIndependent(t *testing.T) {
	seven := []deck.Card{
		card(deck.Queen, deck.Spades), card(deck.Jack, deck.Spades),
		card(deck.Ten, deck.Spades), card(deck.Nine, deck.Spades),
		card(deck.Eight, deck.Spades), card(deck.Two, deck.Hearts),
		card(deck.Two, deck.Diamonds),
	}

	want, _ := BestOf7(seven)
	assert.Equal(t, StraightFlush, want.Category)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := make([]deck.Card, len(seven))
		copy(shuffled, seven)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, combo := BestOf7(shuffled)
		require.Equal(t, 0, got.Compare(want), "score changed for permutation %d", i)
		require.Len(t, combo, 5)
		require.Equal(t, 0, Evaluate5(combo).Compare(want))
	}
}
