package game

import "time"

// SeatView is the public view of one seat.
type SeatView struct {
	ID     PlayerID `json:"sid"`
	Name   string   `json:"name"`
	Chips  int      `json:"chips"`
	InHand bool     `json:"in_hand"`
}

// RoomSnapshot is the public view of a room, broadcast to every member
// after each state change.
type RoomSnapshot struct {
	Players      []SeatView `json:"players"`
	Community    []string   `json:"community"`
	Pot          int        `json:"pot"`
	Phase        Phase      `json:"state"`
	Dealer       PlayerID   `json:"dealer,omitempty"`
	CurrentTo    PlayerID   `json:"current_to,omitempty"`
	CurrentBet   int        `json:"current_bet"`
	TurnDeadline *time.Time `json:"turn_deadline,omitempty"`
}

// AllowedActions is the action set available to the player to act,
// exposed for client-side UI hinting.
type AllowedActions struct {
	Fold  bool `json:"fold"`
	Check bool `json:"check"`
	Call  bool `json:"call"`
	Raise bool `json:"raise"`
}

// PlayerSnapshot is the per-player view: the public snapshot plus the
// player's private hole cards and allowed actions.
type PlayerSnapshot struct {
	RoomSnapshot
	YourCards      []string       `json:"your_cards"`
	AllowedActions AllowedActions `json:"allowed_actions"`
}

// WinnerInfo describes one pot winner. HandName and Combo are only set
// when the hand reached showdown; a win by folds carries neither.
type WinnerInfo struct {
	ID       PlayerID `json:"sid"`
	Name     string   `json:"name"`
	HandName string   `json:"hand_name,omitempty"`
	Combo    []string `json:"combo,omitempty"`
}

// PlayerResult reports one player's chips after a hand and the delta
// against their stack at hand start.
type PlayerResult struct {
	ID         PlayerID `json:"sid"`
	Name       string   `json:"name"`
	FinalChips int      `json:"final_chips"`
	Delta      int      `json:"delta"`
}

// ShowdownResult is emitted once per concluded hand, whether the hand
// reached showdown or ended early on folds.
type ShowdownResult struct {
	Winners   []WinnerInfo   `json:"winners"`
	Community []string       `json:"community"`
	Results   []PlayerResult `json:"results"`
	Pot       int            `json:"pot"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
}

// Emitter delivers room output to the transport layer. Methods are
// invoked with the room lock held: implementations must not call back
// into the room, and anything slow they do blocks only this room, never
// others.
type Emitter interface {
	// RoomUpdate broadcasts the public snapshot to every room member.
	RoomUpdate(snapshot RoomSnapshot)
	// PlayerUpdate delivers a private snapshot to a single player.
	PlayerUpdate(id PlayerID, snapshot PlayerSnapshot)
	// Showdown reports a concluded hand to the whole room.
	Showdown(result ShowdownResult)
	// Message broadcasts free-text narration ("X folded").
	Message(text string)
}

// NopEmitter discards all output. Useful for tests that only assert on
// room state.
type NopEmitter struct{}

func (NopEmitter) RoomUpdate(RoomSnapshot)             {}
func (NopEmitter) PlayerUpdate(PlayerID, PlayerSnapshot) {}
func (NopEmitter) Showdown(ShowdownResult)             {}
func (NopEmitter) Message(string)                      {}
