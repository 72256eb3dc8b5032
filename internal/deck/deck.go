package deck

import "math/rand"

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// New creates a new shuffled deck with an explicit RNG
func New(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}

	i := 0
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	d.Shuffle()
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.Intn(i + 1)
		} else {
			j = rand.Intn(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck. Running the deck dry is a sequencing
// bug in the caller, never a recoverable condition, so it panics.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		panic("deck: dealt past end of deck")
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() Card {
	return d.Deal(1)[0]
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
