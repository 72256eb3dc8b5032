// Package game holds the authoritative state for a single poker room: the
// seated players, the deck, the betting state machine and the turn-timeout
// watchdog. A Room is the unit of mutation exclusivity; every path that
// mutates it takes the room lock, so rooms never block each other.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerroom/internal/deck"
	"github.com/lox/pokerroom/internal/eval"
)

// Phase is the lifecycle stage of a room's current hand.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// Settings carries the table stakes and timing configuration for a room.
type Settings struct {
	StartingChips int
	SmallBlind    int
	BigBlind      int
	TurnTimeout   time.Duration
}

// DefaultSettings mirrors the table defaults: 50 starting chips, 1/2
// blinds, 20 second turn clock.
func DefaultSettings() Settings {
	return Settings{
		StartingChips: 50,
		SmallBlind:    1,
		BigBlind:      2,
		TurnTimeout:   20 * time.Second,
	}
}

// Room is the per-table aggregate. The zero value is not usable; construct
// with NewRoom.
type Room struct {
	mu sync.Mutex

	id       string
	settings Settings
	rng      *rand.Rand
	clock    quartz.Clock
	emitter  Emitter
	logger   *log.Logger

	players    map[PlayerID]*Player
	order      []PlayerID // seating order; fixes blind and turn rotation
	deck       *deck.Deck
	community  []deck.Card
	pot        int
	dealerIdx  int
	toActIdx   int
	currentBet int
	phase      Phase

	handStartedAt time.Time

	// turn watchdog state; see timer.go
	turnDeadline   time.Time
	timerCancelled bool
	turnTimer      *quartz.Timer
}

// NewRoom creates an empty room in the waiting phase.
func NewRoom(id string, settings Settings, rng *rand.Rand, clock quartz.Clock, emitter Emitter, logger *log.Logger) *Room {
	return &Room{
		id:       id,
		settings: settings,
		rng:      rng,
		clock:    clock,
		emitter:  emitter,
		logger:   logger.WithPrefix("room").With("room", id),
		players:  make(map[PlayerID]*Player),
		phase:    PhaseWaiting,
	}
}

// ID returns the room code.
func (r *Room) ID() string {
	return r.id
}

// Join seats a player with the configured starting stack. Rejoining with
// an id already seated resets that seat's stack but keeps its position.
// Joining mid-hand is allowed; the seat contests the current pot with no
// hole cards and plays the board at showdown.
func (r *Room) Join(id PlayerID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seated := r.players[id]; !seated {
		r.order = append(r.order, id)
	}
	r.players[id] = &Player{
		ID:     id,
		Name:   name,
		Chips:  r.settings.StartingChips,
		InHand: true,
		// deltas for a mid-hand joiner are measured against the buy-in
		chipsBeforeHand: r.settings.StartingChips,
	}

	r.logger.Info("player joined", "player", name, "seats", len(r.order))
	r.broadcast()
}

// Leave removes a player from the room and the turn order. Returns the
// number of players remaining so the owner can reclaim empty rooms.
func (r *Room) Leave(id PlayerID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seated := r.players[id]; !seated {
		return len(r.players)
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("player left", "player", id, "seats", len(r.order))
	r.broadcast()
	return len(r.players)
}

// StartHand runs the waiting→preflop transition: rotates the dealer,
// shuffles a fresh deck, deals hole cards, posts blinds and arms the turn
// clock for the seat after the big blind.
func (r *Room) StartHand() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) < 2 {
		return ErrNotEnoughPlayers
	}

	nb := len(r.order)
	r.dealerIdx = (r.dealerIdx + 1) % nb
	r.deck = deck.New(r.rng)
	r.community = nil
	r.pot = 0
	r.currentBet = 0
	r.phase = PhasePreflop
	r.handStartedAt = r.clock.Now()

	for _, p := range r.players {
		p.HoleCards = r.deck.Deal(2)
		p.InHand = true
		p.Contribution = 0
		p.HasActed = false
		p.chipsBeforeHand = p.Chips
	}

	// Blinds come from the two seats after the dealer, capped at each
	// payer's stack. The short case leaves the payer all-in but in hand.
	sbIdx := (r.dealerIdx + 1) % nb
	bbIdx := (r.dealerIdx + 2) % nb
	sb := r.players[r.order[sbIdx]]
	bb := r.players[r.order[bbIdx]]

	sbPay := min(r.settings.SmallBlind, sb.Chips)
	bbPay := min(r.settings.BigBlind, bb.Chips)
	sb.Chips -= sbPay
	sb.Contribution = sbPay
	bb.Chips -= bbPay
	bb.Contribution = bbPay
	r.pot += sbPay + bbPay
	r.currentBet = bbPay
	sb.HasActed = true
	bb.HasActed = true

	r.toActIdx = (bbIdx + 1) % nb

	r.logger.Info("hand started",
		"dealer", r.order[r.dealerIdx],
		"smallBlind", sbPay,
		"bigBlind", bbPay,
		"players", nb)

	r.armTurnTimer()
	return nil
}

// currentActor returns the player whose turn it is, if any.
func (r *Room) currentActor() (PlayerID, bool) {
	if len(r.order) == 0 || r.toActIdx < 0 || r.toActIdx >= len(r.order) {
		return "", false
	}
	return r.order[r.toActIdx], true
}

// activeInHand returns the players still contesting the pot, in seating
// order.
func (r *Room) activeInHand() []*Player {
	var active []*Player
	for _, id := range r.order {
		if p := r.players[id]; p != nil && p.InHand {
			active = append(active, p)
		}
	}
	return active
}

// advanceStreet reveals the next community cards, resets per-street
// betting state, and points the action at the first in-hand seat after
// the dealer. On the river it runs the showdown instead.
func (r *Room) advanceStreet() {
	switch r.phase {
	case PhasePreflop:
		r.community = append(r.community, r.deck.Deal(3)...)
		r.phase = PhaseFlop
	case PhaseFlop:
		r.community = append(r.community, r.deck.DealOne())
		r.phase = PhaseTurn
	case PhaseTurn:
		r.community = append(r.community, r.deck.DealOne())
		r.phase = PhaseRiver
	case PhaseRiver:
		r.showdown()
		return
	default:
		return
	}

	r.logger.Debug("street advanced", "phase", r.phase, "board", deck.Strings(r.community))

	r.currentBet = 0
	for _, p := range r.players {
		if p.InHand && p.Chips > 0 {
			p.Contribution = 0
			p.HasActed = false
		} else {
			// all-in and folded players are skipped for the street
			p.HasActed = true
		}
	}

	nb := len(r.order)
	start := (r.dealerIdx + 1) % nb
	for i := 0; i < nb; i++ {
		idx := (start + i) % nb
		if r.players[r.order[idx]].InHand {
			r.toActIdx = idx
			break
		}
	}

	r.armTurnTimer()
}

// showdown evaluates every remaining player's best seven-card hand and
// splits the pot among the holders of the top score.
func (r *Room) showdown() {
	type contender struct {
		player *Player
		score  eval.Score
		combo  []deck.Card
	}

	var contenders []contender
	for _, id := range r.order {
		p := r.players[id]
		if p == nil || !p.InHand {
			continue
		}
		seven := make([]deck.Card, 0, 7)
		seven = append(seven, p.HoleCards...)
		seven = append(seven, r.community...)
		score, combo := eval.BestOf7(seven)
		contenders = append(contenders, contender{player: p, score: score, combo: combo})
	}
	if len(contenders) == 0 {
		return
	}

	best := contenders[0].score
	for _, c := range contenders[1:] {
		if c.score.Beats(best) {
			best = c.score
		}
	}

	var winners []*Player
	var infos []WinnerInfo
	for _, c := range contenders {
		if c.score.Compare(best) == 0 {
			winners = append(winners, c.player)
			infos = append(infos, WinnerInfo{
				ID:       c.player.ID,
				Name:     c.player.Name,
				HandName: c.score.Category.String(),
				Combo:    deck.Strings(c.combo),
			})
		}
	}

	r.settle(winners, infos)
}

// settle pays the pot out and returns the room to waiting. The pot is
// integer-divided among winners; the remainder is a known rounding loss
// and is not redistributed. Side pots for unequal all-in stacks are
// likewise not computed.
func (r *Room) settle(winners []*Player, infos []WinnerInfo) {
	if len(winners) == 0 {
		return
	}

	pot := r.pot
	share := pot / len(winners)
	for _, w := range winners {
		w.Chips += share
	}
	r.pot = 0

	results := make([]PlayerResult, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		results = append(results, PlayerResult{
			ID:         id,
			Name:       p.Name,
			FinalChips: p.Chips,
			Delta:      p.Chips - p.chipsBeforeHand,
		})
	}

	r.cancelTurnTimer()
	r.phase = PhaseWaiting

	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.Name
	}
	r.logger.Info("hand settled", "pot", pot, "share", share, "winners", names)

	r.emitter.Showdown(ShowdownResult{
		Winners:   infos,
		Community: deck.Strings(r.community),
		Results:   results,
		Pot:       pot,
		StartedAt: r.handStartedAt,
		EndedAt:   r.clock.Now(),
	})
	r.broadcast()
}

// broadcast publishes the public snapshot to the room and a private
// snapshot to every seat. Must be called with the lock held.
func (r *Room) broadcast() {
	pub := r.snapshot()
	r.emitter.RoomUpdate(pub)
	for _, id := range r.order {
		r.emitter.PlayerUpdate(id, PlayerSnapshot{
			RoomSnapshot:   pub,
			YourCards:      deck.Strings(r.players[id].HoleCards),
			AllowedActions: r.allowedActions(id),
		})
	}
}

// snapshot builds the public room view. Must be called with the lock held.
func (r *Room) snapshot() RoomSnapshot {
	seats := make([]SeatView, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		seats = append(seats, SeatView{ID: id, Name: p.Name, Chips: p.Chips, InHand: p.InHand})
	}

	s := RoomSnapshot{
		Players:    seats,
		Community:  deck.Strings(r.community),
		Pot:        r.pot,
		Phase:      r.phase,
		CurrentBet: r.currentBet,
	}
	if len(r.order) > 0 && r.dealerIdx < len(r.order) {
		s.Dealer = r.order[r.dealerIdx]
	}
	if r.phase != PhaseWaiting && r.phase != PhaseShowdown {
		if actor, ok := r.currentActor(); ok {
			s.CurrentTo = actor
		}
	}
	if !r.turnDeadline.IsZero() {
		deadline := r.turnDeadline
		s.TurnDeadline = &deadline
	}
	return s
}

// Snapshot returns a consistent public view of the room.
func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// PlayerView returns a consistent private view for one seat.
func (r *Room) PlayerView(id PlayerID) (PlayerSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, seated := r.players[id]
	if !seated {
		return PlayerSnapshot{}, false
	}
	return PlayerSnapshot{
		RoomSnapshot:   r.snapshot(),
		YourCards:      deck.Strings(p.HoleCards),
		AllowedActions: r.allowedActions(id),
	}, true
}
