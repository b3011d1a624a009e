/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "sync"

type Player struct {
	ID       string
	Nickname string
	Ready    bool
}

// Room holds the mutable state of one named room. Every field is guarded by mu.
type Room struct {
	mu sync.Mutex

	name   string
	closed bool // set once the room has left the store

	players []*Player // join order is turn order
	hostID  string
	phase   Phase

	theme        string
	keyword      string
	liarID       string
	liarNickname string

	turnIndex  int
	turnCount  int
	eliminated map[string]bool
	votes      map[string]string // voter -> target

	timer      Timer
	generation uint64 // bumped whenever the pending timer is replaced or canceled
}

func newRoom(name string) *Room {
	return &Room{
		name:       name,
		phase:      PhaseLobby,
		turnIndex:  beforeFirstTurn,
		eliminated: make(map[string]bool),
		votes:      make(map[string]string),
	}
}

func (r *Room) indexOf(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) player(id string) *Player {
	if i := r.indexOf(id); i >= 0 {
		return r.players[i]
	}
	return nil
}

func (r *Room) isAlive(id string) bool {
	return r.indexOf(id) >= 0 && !r.eliminated[id]
}

func (r *Room) aliveCount() int {
	n := 0
	for _, p := range r.players {
		if !r.eliminated[p.ID] {
			n++
		}
	}
	return n
}

func (r *Room) memberIDs() []string {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

func (r *Room) addPlayer(id, nickname string) {
	r.players = append(r.players, &Player{ID: id, Nickname: nickname})
	if r.hostID == "" {
		r.hostID = id
	}
}

// removeAt drops the player at i and keeps the turn index, eliminated set,
// votes and host pointing at current members. It reports whether the host moved.
func (r *Room) removeAt(i int) (hostChanged bool) {
	id := r.players[i].ID

	r.players = append(r.players[:i], r.players[i+1:]...)

	switch {
	case i < r.turnIndex:
		r.turnIndex--
	case i == r.turnIndex:
		// the next scan starts at whoever slid into slot i
		r.turnIndex = i - 1
	}

	delete(r.eliminated, id)
	delete(r.votes, id)
	for voter, target := range r.votes {
		if target == id {
			delete(r.votes, voter)
		}
	}

	if r.hostID == id {
		r.hostID = ""
		if len(r.players) > 0 {
			r.hostID = r.players[0].ID
		}
		return len(r.players) > 0
	}
	return false
}

func (r *Room) summary() Summary {
	return Summary{
		Name:        r.name,
		MemberCount: len(r.players),
		InProgress:  r.phase != PhaseLobby,
	}
}

func (r *Room) roster() RosterMessage {
	entries := make([]RosterEntry, len(r.players))
	for i, p := range r.players {
		entries[i] = RosterEntry{
			ID:       p.ID,
			Nickname: p.Nickname,
			Ready:    p.Ready,
			Alive:    !r.eliminated[p.ID],
			Host:     p.ID == r.hostID,
		}
	}
	return RosterMessage{Players: entries, HostID: r.hostID}
}

// cancelTimer stops the pending timer and invalidates any callback already in flight.
func (r *Room) cancelTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.generation++
}

func (r *Room) clearRound() {
	r.theme = ""
	r.keyword = ""
	r.liarID = ""
	r.liarNickname = ""
	r.turnIndex = beforeFirstTurn
	r.turnCount = 0
	clear(r.eliminated)
	clear(r.votes)
	for _, p := range r.players {
		p.Ready = false
	}
}

// Snapshot is a copy of a room's state for inspection.
type Snapshot struct {
	Name       string
	Phase      Phase
	HostID     string
	Players    []Player
	Theme      string
	Keyword    string
	LiarID     string
	TurnIndex  int
	TurnCount  int
	Eliminated []string
	Votes      map[string]string
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Name:      r.name,
		Phase:     r.phase,
		HostID:    r.hostID,
		Theme:     r.theme,
		Keyword:   r.keyword,
		LiarID:    r.liarID,
		TurnIndex: r.turnIndex,
		TurnCount: r.turnCount,
		Votes:     make(map[string]string, len(r.votes)),
	}
	for _, p := range r.players {
		s.Players = append(s.Players, *p)
		if r.eliminated[p.ID] {
			s.Eliminated = append(s.Eliminated, p.ID)
		}
	}
	for k, v := range r.votes {
		s.Votes[k] = v
	}
	return s
}
