package eval

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerroom/internal/deck"
)

// EstimateEquity calculates the hero's win probability against a number
// of random opponent hands by Monte Carlo sampling. Ties count as half
// a win. Returns 0 for malformed inputs.
func EstimateEquity(hole []deck.Card, community []deck.Card, opponents, numSamples int, rng *rand.Rand) float64 {
	if len(hole) != 2 || len(community) > 5 || opponents < 1 {
		return 0.0
	}

	available := unseenCards(hole, community)
	wins, ties, valid := runEquitySamples(hole, community, available, opponents, numSamples, rng)

	if valid == 0 {
		return 0.0
	}
	return (float64(wins) + float64(ties)/2.0) / float64(valid)
}

// EstimateEquityParallel is EstimateEquity with the samples divided
// across workers.
func EstimateEquityParallel(hole []deck.Card, community []deck.Card, opponents, numSamples int, rng *rand.Rand) float64 {
	if len(hole) != 2 || len(community) > 5 || opponents < 1 {
		return 0.0
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	samplesPerWorker := numSamples / workers
	remainder := numSamples % workers

	available := unseenCards(hole, community)

	type workerResult struct {
		wins, ties, valid int
	}

	g, ctx := errgroup.WithContext(context.Background())
	results := make(chan workerResult, workers)

	for w := 0; w < workers; w++ {
		workerSamples := samplesPerWorker
		if w < remainder {
			workerSamples++
		}

		// Independent RNG per worker to avoid contention
		workerSeed := rng.Int63()

		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(workerSeed))
			wins, ties, valid := runEquitySamples(hole, community, available, opponents, workerSamples, workerRng)

			select {
			case results <- workerResult{wins, ties, valid}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	go func() {
		defer close(results)
		_ = g.Wait()
	}()

	totalWins, totalTies, totalValid := 0, 0, 0
	for result := range results {
		totalWins += result.wins
		totalTies += result.ties
		totalValid += result.valid
	}

	if err := g.Wait(); err != nil {
		return EstimateEquity(hole, community, opponents, numSamples, rng)
	}

	if totalValid == 0 {
		return 0.0
	}
	return (float64(totalWins) + float64(totalTies)/2.0) / float64(totalValid)
}

// unseenCards returns the 52-card deck minus the hero's hole cards and
// the known community cards.
func unseenCards(hole, community []deck.Card) []deck.Card {
	used := make(map[deck.Card]bool, len(hole)+len(community))
	for _, card := range hole {
		used[card] = true
	}
	for _, card := range community {
		used[card] = true
	}

	available := make([]deck.Card, 0, 52-len(used))
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			card := deck.Card{Rank: rank, Suit: suit}
			if !used[card] {
				available = append(available, card)
			}
		}
	}
	return available
}

func runEquitySamples(hole, community, available []deck.Card, opponents, numSamples int, rng *rand.Rand) (wins, ties, valid int) {
	needed := (5 - len(community)) + 2*opponents
	if needed > len(available) {
		return 0, 0, 0
	}

	pool := make([]deck.Card, len(available))
	heroHand := make([]deck.Card, 0, 7)
	oppHand := make([]deck.Card, 0, 7)

	for i := 0; i < numSamples; i++ {
		copy(pool, available)

		// Partial Fisher-Yates: only the cards we deal need shuffling
		for j := 0; j < needed; j++ {
			k := j + rng.Intn(len(pool)-j)
			pool[j], pool[k] = pool[k], pool[j]
		}

		board := append(append([]deck.Card{}, community...), pool[:5-len(community)]...)
		next := 5 - len(community)

		heroHand = append(append(heroHand[:0], hole...), board...)
		heroScore, _ := BestOf7(heroHand)

		won, tied := true, false
		for o := 0; o < opponents; o++ {
			oppHand = append(append(oppHand[:0], pool[next:next+2]...), board...)
			next += 2

			oppScore, _ := BestOf7(oppHand)
			if oppScore.Beats(heroScore) {
				won, tied = false, false
				break
			}
			if oppScore.Compare(heroScore) == 0 {
				tied = true
			}
		}

		if won && !tied {
			wins++
		} else if won && tied {
			ties++
		}
		valid++
	}

	return wins, ties, valid
}
