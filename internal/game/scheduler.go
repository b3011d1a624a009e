/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "fmt"

// scheduleFirstTurn arms the delay between role assignment and the first turn.
func (c *Coordinator) scheduleFirstTurn(r *Room) {
	r.cancelTimer()

	gen := r.generation
	r.timer = c.clock.AfterFunc(c.settings.StartDelay, func() {
		c.onTimer(r, gen, c.nextTurn)
	})
}

// onTimer runs f under the room lock unless the timer has been superseded.
func (c *Coordinator) onTimer(r *Room, gen uint64, f func(*Room)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.generation != gen || r.phase != PhaseInProgress {
		return
	}
	r.timer = nil

	f(r)
}

// nextTurn hands the floor to the next alive player, or opens the vote once
// every alive player has spoken MaxRounds times.
func (c *Coordinator) nextTurn(r *Room) {
	r.cancelTimer()

	r.turnCount++
	if r.turnCount > r.aliveCount()*c.settings.MaxRounds {
		c.startVoting(r)
		return
	}

	n := len(r.players)
	next := r.turnIndex
	for probes := 1; ; probes++ {
		if n == 0 || probes > n+1 {
			c.log.Error().
				Str("room", r.name).
				Int("players", n).
				Int("eliminated", len(r.eliminated)).
				Msg("no alive speaker found, resetting round")
			c.resetRound(r)
			return
		}

		next = (next + 1) % n
		if !r.eliminated[r.players[next].ID] {
			break
		}
	}

	r.turnIndex = next
	speaker := r.players[next]

	c.multicast(r, TurnMessage{
		SpeakerID:       speaker.ID,
		Nickname:        speaker.Nickname,
		DurationSeconds: int(c.settings.TurnTime.Seconds()),
	})

	gen := r.generation
	r.timer = c.clock.AfterFunc(c.settings.TurnTime, func() {
		c.onTimer(r, gen, c.timeoutDefeat)
	})
}

// timeoutDefeat eliminates a speaker who let the clock run out.
func (c *Coordinator) timeoutDefeat(r *Room) {
	if r.turnIndex < 0 || r.turnIndex >= len(r.players) {
		c.nextTurn(r)
		return
	}

	speaker := r.players[r.turnIndex]
	r.eliminated[speaker.ID] = true

	c.log.Debug().Str("room", r.name).Str("player", speaker.ID).Msg("timeout defeat")

	c.notice(r, fmt.Sprintf("%s stayed silent and is out!", speaker.Nickname))
	c.multicast(r, EliminatedMessage{PlayerID: speaker.ID})

	switch {
	case speaker.ID == r.liarID:
		c.finishRound(r, WinnerCitizen, "The liar was eliminated! Citizens win!")
	case r.aliveCount() < 2:
		c.finishRound(r, WinnerLiar, "Not enough survivors. The liar wins!")
	default:
		c.nextTurn(r)
	}
}
