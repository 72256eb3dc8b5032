package game

import "errors"

// Client-caused errors. These are reported to the offending actor only and
// never mutate room state.
var (
	ErrNotEnoughPlayers = errors.New("need at least 2 players")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrMustCallOrRaise  = errors.New("cannot check, must call/raise")
	ErrRaiseAmount      = errors.New("raise amount must be > 0")
	ErrUnknownAction    = errors.New("unknown action")
)
