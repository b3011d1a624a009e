/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"slices"
)

// TallyResult is the count of one voting attempt.
type TallyResult struct {
	Counts     map[string]int
	Max        int
	Candidates []string // everyone who reached Max, sorted
}

// Unique reports the single most-voted candidate, if there is exactly one.
func (t TallyResult) Unique() (string, bool) {
	if len(t.Candidates) != 1 {
		return "", false
	}
	return t.Candidates[0], true
}

// Tally counts votes and collects every candidate holding the maximum.
func Tally(votes map[string]string) TallyResult {
	res := TallyResult{Counts: make(map[string]int)}

	for _, target := range votes {
		res.Counts[target]++
	}

	for _, n := range res.Counts {
		if n > res.Max {
			res.Max = n
		}
	}

	for target, n := range res.Counts {
		if n == res.Max {
			res.Candidates = append(res.Candidates, target)
		}
	}
	slices.Sort(res.Candidates)

	return res
}

// castVote records a vote from voter; the caller holds r.mu and has checked the phase.
func (c *Coordinator) castVote(r *Room, voter, target string) error {
	if !r.isAlive(voter) || !r.isAlive(target) || voter == target {
		return ErrInvalidVote
	}

	r.votes[voter] = target

	alive := r.aliveCount()
	if len(r.votes) >= alive {
		c.resolveVotes(r)
		return nil
	}

	c.notice(r, fmt.Sprintf("Votes: %d/%d", len(r.votes), alive))
	return nil
}

func (c *Coordinator) startVoting(r *Room) {
	r.cancelTimer()
	r.phase = PhaseVoting
	clear(r.votes)

	c.log.Debug().Str("room", r.name).Int("turns", r.turnCount).Msg("voting started")

	c.multicast(r, VotingMessage{Message: "Time to vote! Who is the liar?"})
	c.multicast(r, r.roster())
	c.store.publish(r.summary())
}

// resolveVotes applies the tally once every alive player has voted.
func (c *Coordinator) resolveVotes(r *Room) {
	res := Tally(r.votes)

	target, ok := res.Unique()
	if !ok {
		if len(res.Candidates) == 0 {
			c.notice(r, "No votes were cast. Vote again.")
		} else {
			c.notice(r, fmt.Sprintf("%d-way tie! Vote again.", len(res.Candidates)))
		}
		c.log.Debug().Str("room", r.name).Int("candidates", len(res.Candidates)).Msg("re-vote")

		clear(r.votes)
		c.multicast(r, VotingMessage{Message: "It's a tie! Vote again."})
		return
	}

	if target == r.liarID {
		r.phase = PhaseLiarDefense
		clear(r.votes)

		c.log.Debug().Str("room", r.name).Str("liar", r.liarID).Msg("liar caught")

		c.gateway.Unicast(r.liarID, DefenseMessage{})
		c.notice(r, "The liar was caught! One last chance to guess the keyword.")
		return
	}

	nickname := ""
	if p := r.player(target); p != nil {
		nickname = p.Nickname
	}
	c.finishRound(r, WinnerLiar, fmt.Sprintf("%s was a citizen... The liar wins!", nickname))
}
