package game

import (
	"fmt"
	"time"
)

// Turn watchdog. Every time a seat becomes "to act" a fresh deadline is
// armed and a single scheduled task is created for it. The task may only
// take effect if the cancellation flag is clear, the room's armed deadline
// is still the one it captured, and the target seat is still to act.
// Arming a new deadline therefore always supersedes any previous watchdog:
// a superseded task observes a deadline mismatch and exits without effect.

// armTurnTimer arms the turn clock for the current actor and broadcasts
// the new deadline. Must be called with the lock held.
func (r *Room) armTurnTimer() {
	r.timerCancelled = false
	deadline := r.clock.Now().Add(r.settings.TurnTimeout)
	r.turnDeadline = deadline

	target, ok := r.currentActor()
	if !ok {
		r.broadcast()
		return
	}

	r.broadcast()
	r.turnTimer = r.clock.AfterFunc(r.settings.TurnTimeout, func() {
		r.turnExpired(target, deadline)
	})
}

// cancelTurnTimer clears the armed deadline. Must be called with the lock
// held. The identity check in turnExpired makes the Stop a best-effort
// optimization rather than the correctness mechanism.
func (r *Room) cancelTurnTimer() {
	r.timerCancelled = true
	r.turnDeadline = time.Time{}
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

// turnExpired is the watchdog body. It auto-folds the target player and
// then applies the same early-termination and round-completion logic as a
// live fold, re-arming the clock for whichever seat acts next.
func (r *Room) turnExpired(target PlayerID, deadline time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timerCancelled || !r.turnDeadline.Equal(deadline) {
		return
	}
	actor, ok := r.currentActor()
	if !ok || actor != target {
		return
	}
	p := r.players[target]
	if p == nil {
		return
	}

	r.logger.Info("turn timed out", "player", p.Name)

	p.InHand = false
	p.HasActed = true
	r.emitter.Message(fmt.Sprintf("%s auto-folded (timeout)", p.Name))

	r.afterAction()
}
