/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "time"

// Phase is the coarse state of a room.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInProgress
	PhaseVoting
	PhaseLiarDefense
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseInProgress:
		return "in_progress"
	case PhaseVoting:
		return "voting"
	case PhaseLiarDefense:
		return "liar_defense"
	default:
		return "unknown"
	}
}

// Winner names the side that took a round.
type Winner string

const (
	WinnerLiar    Winner = "LIAR"
	WinnerCitizen Winner = "CITIZEN"
)

const (
	// LiarPlaceholder is sent to the liar in place of the keyword.
	LiarPlaceholder = "LIAR"

	// beforeFirstTurn is the turn index of a round whose first turn has not been issued.
	beforeFirstTurn = -1
)

// Settings holds the timing knobs of a round.
type Settings struct {
	TurnTime   time.Duration // speaking budget per turn
	StartDelay time.Duration // pause between role assignment and the first turn
	MaxRounds  int           // laps over the alive players before voting
}

func DefaultSettings() Settings {
	return Settings{
		TurnTime:   10 * time.Second,
		StartDelay: 2 * time.Second,
		MaxRounds:  2,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.TurnTime <= 0 {
		s.TurnTime = d.TurnTime
	}
	if s.StartDelay <= 0 {
		s.StartDelay = d.StartDelay
	}
	if s.MaxRounds < 1 {
		s.MaxRounds = d.MaxRounds
	}
	return s
}
