/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"time"
)

// Corpus supplies the secret for a round.
type Corpus interface {
	RandomThemeWithKeyword(ctx context.Context) (theme, keyword string, err error)
}

// Recorder receives the outcome of every round that ends with a winner.
// Record is called with the room lock held and must not block.
type Recorder interface {
	Record(o Outcome)
}

type Participant struct {
	Nickname string
	IsLiar   bool
	Won      bool
}

type Outcome struct {
	Room     string
	Theme    string
	Keyword  string
	Winner   Winner
	PlayedAt time.Time
	Players  []Participant
}
