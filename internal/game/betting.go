package game

import "fmt"

// Action is a betting action submitted by a player.
type Action string

const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
)

// ParseAction validates an action name from the wire. Unknown names are
// rejected at the boundary rather than tolerated downstream.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionFold, ActionCheck, ActionCall, ActionRaise:
		return Action(s), nil
	default:
		return "", ErrUnknownAction
	}
}

// HandleAction validates and applies one player action. For a raise,
// amount is the increment above the minimum call, not the absolute bet.
//
// A rejected action never mutates chip or hand state. Rejections other
// than "not your turn" re-arm the turn clock for the same player; an
// accepted action cancels the armed deadline before mutating, so a
// racing watchdog deterministically loses.
func (r *Room) HandleAction(id PlayerID, action Action, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	actor, ok := r.currentActor()
	if !ok || actor != id {
		return ErrNotYourTurn
	}
	p := r.players[id]

	r.cancelTurnTimer()

	switch action {
	case ActionFold:
		p.InHand = false
		p.HasActed = true
		r.emitter.Message(fmt.Sprintf("%s folded", p.Name))

	case ActionCheck:
		if r.currentBet != p.Contribution {
			r.armTurnTimer()
			return ErrMustCallOrRaise
		}
		p.HasActed = true
		r.emitter.Message(fmt.Sprintf("%s checked", p.Name))

	case ActionCall:
		need := r.currentBet - p.Contribution
		pay := min(need, p.Chips)
		p.Chips -= pay
		p.Contribution += pay
		p.HasActed = true
		r.pot += pay
		r.emitter.Message(fmt.Sprintf("%s called %d", p.Name, pay))

	case ActionRaise:
		if amount <= 0 {
			r.armTurnTimer()
			return ErrRaiseAmount
		}
		need := r.currentBet - p.Contribution
		pay := min(need+amount, p.Chips)
		p.Chips -= pay
		p.Contribution += pay
		r.pot += pay
		if p.Contribution > r.currentBet {
			r.currentBet = p.Contribution
			// everyone else with chips must respond to the new bet
			for oid, op := range r.players {
				if oid != id && op.InHand && op.Chips > 0 {
					op.HasActed = false
				}
			}
		}
		p.HasActed = true
		r.emitter.Message(fmt.Sprintf("%s raised, bet is %d", p.Name, r.currentBet))

	default:
		r.armTurnTimer()
		return ErrUnknownAction
	}

	r.afterAction()
	return nil
}

// afterAction applies the early-termination and round-completion rules
// shared by player actions and the timeout auto-fold. Must be called with
// the lock held.
func (r *Room) afterAction() {
	active := r.activeInHand()
	if len(active) == 1 {
		// everyone else folded; the survivor takes the pot without
		// revealing further streets
		r.settle(active, []WinnerInfo{{ID: active[0].ID, Name: active[0].Name}})
		return
	}

	if r.roundComplete() {
		r.advanceStreet()
		return
	}

	r.advanceTurn()
	r.armTurnTimer()
}

// roundComplete reports whether the current betting round is finished:
// at most one player in hand, or every in-hand player has acted and has
// either matched the current bet or is all-in.
func (r *Room) roundComplete() bool {
	active := r.activeInHand()
	if len(active) <= 1 {
		return true
	}
	for _, p := range active {
		if !p.HasActed {
			return false
		}
		if p.Contribution < r.currentBet && p.Chips > 0 {
			return false
		}
	}
	return true
}

// advanceTurn moves the action pointer to the next in-hand seat, scanning
// the seating order circularly.
func (r *Room) advanceTurn() {
	nb := len(r.order)
	if nb == 0 {
		return
	}
	for i := 1; i <= nb; i++ {
		idx := (r.toActIdx + i) % nb
		if r.players[r.order[idx]].InHand {
			r.toActIdx = idx
			return
		}
	}
}

// allowedActions mirrors the HandleAction preconditions for UI hinting.
// Must be called with the lock held.
func (r *Room) allowedActions(id PlayerID) AllowedActions {
	var a AllowedActions
	if r.phase == PhaseWaiting || r.phase == PhaseShowdown {
		return a
	}
	actor, ok := r.currentActor()
	if !ok || actor != id {
		return a
	}
	p := r.players[id]
	if p == nil || !p.InHand {
		return a
	}

	need := max(0, r.currentBet-p.Contribution)
	a.Fold = true
	if need == 0 {
		a.Check = true
		a.Raise = p.Chips > 0
	} else {
		a.Call = p.Chips > 0
		a.Raise = p.Chips > need
	}
	return a
}
