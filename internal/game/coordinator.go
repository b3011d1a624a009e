/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const corpusTimeout = 5 * time.Second

// Options configures a Coordinator. Zero values fall back to defaults.
type Options struct {
	Settings Settings
	Clock    Clock
	Rand     Rand
	Recorder Recorder
	Logger   zerolog.Logger
}

// Coordinator is the room state machine. It validates every command against
// the phase of the caller's room and applies it under that room's lock.
type Coordinator struct {
	registry *Registry
	store    *Store
	gateway  Gateway
	corpus   Corpus
	recorder Recorder
	clock    Clock
	rand     Rand
	settings Settings
	log      zerolog.Logger
}

func NewCoordinator(gw Gateway, corpus Corpus, opts Options) *Coordinator {
	c := &Coordinator{
		registry: NewRegistry(),
		store:    NewStore(gw),
		gateway:  gw,
		corpus:   corpus,
		recorder: opts.Recorder,
		clock:    opts.Clock,
		rand:     opts.Rand,
		settings: opts.Settings.withDefaults(),
		log:      opts.Logger.With().Str("module", "game").Logger(),
	}
	if c.clock == nil {
		c.clock = RealClock()
	}
	if c.rand == nil {
		c.rand = globalRand{}
	}
	return c
}

func (c *Coordinator) Store() *Store {
	return c.store
}

func (c *Coordinator) Registry() *Registry {
	return c.registry
}

func (c *Coordinator) Settings() Settings {
	return c.settings
}

// Handle applies cmd on behalf of connID. Rejections are sent back to connID
// as well as returned.
func (c *Coordinator) Handle(ctx context.Context, connID string, cmd Command) error {
	var err error

	switch cmd := cmd.(type) {
	case RequestRoomList:
		c.gateway.Unicast(connID, RoomListMessage{Rooms: c.store.List()})
	case JoinRoom:
		err = c.join(connID, cmd.Room, cmd.Nickname)
	case ToggleReady:
		err = c.withRoom(connID, c.toggleReady)
	case StartGame:
		err = c.withRoom(connID, func(r *Room, id string) error {
			return c.startGame(ctx, r, id)
		})
	case SendChat:
		err = c.withRoom(connID, func(r *Room, id string) error {
			return c.chat(r, id, cmd.Text)
		})
	case SubmitVote:
		err = c.withRoom(connID, func(r *Room, id string) error {
			if r.phase != PhaseVoting {
				return ErrWrongPhase
			}
			return c.castVote(r, id, cmd.Target)
		})
	case SubmitGuess:
		err = c.withRoom(connID, func(r *Room, id string) error {
			return c.guess(r, id, cmd.Text)
		})
	case LeaveRoom:
		c.Leave(connID)
	default:
		err = ErrInvalidCommand
	}

	if err != nil {
		c.Reject(connID, err)
	}
	return err
}

// Reject tells connID why its command was refused.
func (c *Coordinator) Reject(connID string, err error) {
	c.gateway.Unicast(connID, RejectedMessage{Reason: RejectionReason(err)})
}

// Leave removes connID from whatever room it is in. It backs both the explicit
// leave command and a lost connection.
func (c *Coordinator) Leave(connID string) {
	b, ok := c.registry.Unbind(connID)
	if !ok {
		return
	}
	c.leaveRoom(b.Room, connID)
}

// withRoom runs f with the caller's room locked.
func (c *Coordinator) withRoom(connID string, f func(r *Room, connID string) error) error {
	b, ok := c.registry.Lookup(connID)
	if !ok {
		return ErrNotInRoom
	}

	r, ok := c.store.get(b.Room)
	if !ok {
		return ErrNotInRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.indexOf(connID) < 0 {
		return ErrNotInRoom
	}
	return f(r, connID)
}

func (c *Coordinator) join(connID, name, nickname string) error {
	prev, bound := c.registry.Lookup(connID)
	if bound && prev.Room == name {
		if r, ok := c.store.get(name); ok {
			r.mu.Lock()
			if !r.closed {
				c.gateway.Unicast(connID, r.roster())
			}
			r.mu.Unlock()
		}
		return nil
	}

	for {
		r := c.store.getOrCreate(name)

		r.mu.Lock()
		if r.closed {
			// lost a race with the last player leaving; the store has a fresh slot now
			r.mu.Unlock()
			continue
		}

		if r.phase != PhaseLobby {
			r.mu.Unlock()
			return ErrRoomBusy
		}

		r.addPlayer(connID, nickname)
		c.registry.Bind(connID, name, nickname)

		c.log.Info().Str("room", name).Str("player", connID).Str("nickname", nickname).Msg("player joined")

		c.notice(r, fmt.Sprintf("%s joined!", nickname))
		c.multicast(r, r.roster())
		c.store.publish(r.summary())
		r.mu.Unlock()

		break
	}

	if bound {
		c.leaveRoom(prev.Room, connID)
	}
	return nil
}

func (c *Coordinator) leaveRoom(name, connID string) {
	r, ok := c.store.get(name)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	i := r.indexOf(connID)
	if i < 0 {
		return
	}

	leaver := r.players[i]
	wasSpeaker := r.phase == PhaseInProgress && r.turnIndex == i
	hostChanged := r.removeAt(i)

	c.log.Info().Str("room", name).Str("player", connID).Str("nickname", leaver.Nickname).Msg("player left")

	if len(r.players) == 0 {
		r.cancelTimer()
		r.closed = true
		c.store.remove(r)

		c.log.Info().Str("room", name).Msg("room closed")
		return
	}

	if hostChanged {
		host := r.players[0]
		c.multicast(r, HostMessage{HostID: host.ID, Nickname: host.Nickname})
		c.notice(r, fmt.Sprintf("%s is now the host.", host.Nickname))
	}

	c.notice(r, fmt.Sprintf("%s left.", leaver.Nickname))
	c.multicast(r, r.roster())

	if r.phase != PhaseLobby {
		switch {
		case connID == r.liarID:
			c.notice(r, "The liar left. The game is over.")
			c.resetRound(r)
			return
		case r.aliveCount() < 2:
			c.notice(r, "Not enough players. The game is over.")
			c.resetRound(r)
			return
		case wasSpeaker:
			c.nextTurn(r)
		case r.phase == PhaseVoting && len(r.votes) >= r.aliveCount():
			c.resolveVotes(r)
		}
	}

	c.store.publish(r.summary())
}

func (c *Coordinator) toggleReady(r *Room, connID string) error {
	if r.phase != PhaseLobby {
		return ErrWrongPhase
	}

	p := r.player(connID)
	p.Ready = !p.Ready

	c.multicast(r, r.roster())
	return nil
}

func (c *Coordinator) startGame(ctx context.Context, r *Room, connID string) error {
	if r.phase != PhaseLobby {
		return ErrWrongPhase
	}
	if r.hostID != connID {
		return ErrNotHost
	}
	if len(r.players) < 2 {
		return ErrTooFewPlayers
	}
	for _, p := range r.players {
		if p.ID != r.hostID && !p.Ready {
			return ErrNotReady
		}
	}

	clear(r.eliminated)
	clear(r.votes)
	r.turnIndex = beforeFirstTurn
	r.turnCount = 0

	ctx, cancel := context.WithTimeout(ctx, corpusTimeout)
	defer cancel()

	theme, keyword, err := c.corpus.RandomThemeWithKeyword(ctx)
	if err != nil {
		c.log.Error().Err(err).Str("room", r.name).Msg("corpus lookup failed")
		r.phase = PhaseLobby
		return fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	liar := r.players[c.rand.IntN(len(r.players))]

	r.theme = theme
	r.keyword = keyword
	r.liarID = liar.ID
	r.liarNickname = liar.Nickname
	r.phase = PhaseInProgress

	c.log.Info().
		Str("room", r.name).
		Str("theme", theme).
		Int("players", len(r.players)).
		Msg("game started")

	for _, p := range r.players {
		role := RoleMessage{Theme: theme, Keyword: keyword}
		if p.ID == r.liarID {
			role.IsLiar = true
			role.Keyword = LiarPlaceholder
		}
		c.gateway.Unicast(p.ID, role)
		p.Ready = false
	}

	c.notice(r, fmt.Sprintf("Game started! Theme: %s", theme))
	c.multicast(r, r.roster())
	c.store.publish(r.summary())

	c.scheduleFirstTurn(r)
	return nil
}

func (c *Coordinator) chat(r *Room, connID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	p := r.player(connID)
	msg := ChatMessage{Nickname: p.Nickname, Text: text, SpeakerID: connID}

	switch r.phase {
	case PhaseLobby:
		c.multicast(r, msg)
	case PhaseInProgress:
		if r.turnIndex < 0 || r.players[r.turnIndex].ID != connID {
			return nil
		}
		c.multicast(r, msg)
		c.nextTurn(r)
	default:
		if r.eliminated[connID] {
			return nil
		}
		c.multicast(r, msg)
	}
	return nil
}

func (c *Coordinator) guess(r *Room, connID, text string) error {
	if r.phase != PhaseLiarDefense {
		return ErrWrongPhase
	}
	if connID != r.liarID {
		return ErrNotLiar
	}

	if strings.TrimSpace(text) == r.keyword {
		c.finishRound(r, WinnerLiar, "The liar guessed the keyword! The liar wins!")
	} else {
		c.finishRound(r, WinnerCitizen, "Wrong guess! Citizens win!")
	}
	return nil
}

// finishRound declares a winner, records the outcome and resets the room.
func (c *Coordinator) finishRound(r *Room, winner Winner, message string) {
	c.multicast(r, ResultMessage{
		Winner:       winner,
		Message:      message,
		Keyword:      r.keyword,
		LiarNickname: r.liarNickname,
	})

	c.log.Info().Str("room", r.name).Str("winner", string(winner)).Msg("round finished")

	if c.recorder != nil {
		c.recorder.Record(r.outcome(winner))
	}

	c.resetRound(r)
}

// resetRound returns the room to the lobby. Forced ends call it directly and
// so declare no winner.
func (c *Coordinator) resetRound(r *Room) {
	r.cancelTimer()
	r.phase = PhaseLobby
	r.clearRound()

	c.multicast(r, ResetMessage{HostID: r.hostID})
	c.multicast(r, r.roster())
	c.store.publish(r.summary())
}

func (r *Room) outcome(winner Winner) Outcome {
	o := Outcome{
		Room:     r.name,
		Theme:    r.theme,
		Keyword:  r.keyword,
		Winner:   winner,
		PlayedAt: time.Now().UTC(),
	}
	for _, p := range r.players {
		isLiar := p.ID == r.liarID
		o.Players = append(o.Players, Participant{
			Nickname: p.Nickname,
			IsLiar:   isLiar,
			Won:      isLiar == (winner == WinnerLiar),
		})
	}
	return o
}

func (c *Coordinator) multicast(r *Room, m Message) {
	c.gateway.Multicast(r.memberIDs(), m)
}

func (c *Coordinator) notice(r *Room, text string) {
	c.multicast(r, ChatMessage{Text: text})
}
