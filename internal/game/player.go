package game

import "github.com/lox/pokerroom/internal/deck"

// PlayerID is an opaque, stable session identifier for a seated player.
// It is not tied to any transport connection object.
type PlayerID string

// Player is a seat in one room. All fields are guarded by the room's lock.
type Player struct {
	ID           PlayerID
	Name         string
	Chips        int
	HoleCards    []deck.Card
	InHand       bool
	Contribution int
	HasActed     bool

	// chip count at hand start, used to report per-hand deltas
	chipsBeforeHand int
}

// AllIn reports whether the player is still contesting the pot with an
// empty stack.
func (p *Player) AllIn() bool {
	return p.InHand && p.Chips == 0
}
