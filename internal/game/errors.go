/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "errors"

// Rejections surfaced to the connection that issued the command.
var (
	ErrRoomBusy       = errors.New("a game is already in progress in this room")
	ErrNotHost        = errors.New("only the host can start the game")
	ErrTooFewPlayers  = errors.New("at least 2 players are required")
	ErrNotReady       = errors.New("not every player is ready")
	ErrWrongPhase     = errors.New("that action is not allowed right now")
	ErrNotInRoom      = errors.New("you are not in a room")
	ErrInvalidVote    = errors.New("invalid vote")
	ErrNotLiar        = errors.New("only the liar may guess the keyword")
	ErrInvalidCommand = errors.New("invalid command")
	ErrStartFailed    = errors.New("the game could not be started")
)

var rejections = []error{
	ErrRoomBusy,
	ErrNotHost,
	ErrTooFewPlayers,
	ErrNotReady,
	ErrWrongPhase,
	ErrNotInRoom,
	ErrInvalidVote,
	ErrNotLiar,
	ErrInvalidCommand,
	ErrStartFailed,
}

// RejectionReason returns the user-facing text for err, hiding any wrapped
// internal detail behind the matching sentinel.
func RejectionReason(err error) string {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return "request failed"
}

// IsRejection reports whether err is one of the user-facing rejections.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
