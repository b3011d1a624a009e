/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"bytes"
	"encoding/json"
)

// Message is one of the notifications defined in this file.
type Message interface {
	messageType() string
}

// Gateway delivers notifications to connections. Implementations must not block.
type Gateway interface {
	Unicast(connID string, m Message)
	Multicast(connIDs []string, m Message)
	Broadcast(m Message)
}

// Summary describes a room in the global listing.
type Summary struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	InProgress  bool   `json:"in_progress"`
}

type RoomListMessage struct {
	Rooms []Summary `json:"rooms"`
}

type RosterEntry struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Ready    bool   `json:"ready"`
	Alive    bool   `json:"alive"`
	Host     bool   `json:"host"`
}

type RosterMessage struct {
	Players []RosterEntry `json:"players"`
	HostID  string        `json:"host_id"`
}

// ChatMessage is either a system notice (Text only) or a player's message.
type ChatMessage struct {
	Nickname  string `json:"nickname,omitempty"`
	Text      string `json:"text"`
	SpeakerID string `json:"speaker_id,omitempty"`
}

type RejectedMessage struct {
	Reason string `json:"reason"`
}

type RoleMessage struct {
	IsLiar  bool   `json:"is_liar"`
	Theme   string `json:"theme"`
	Keyword string `json:"keyword"`
}

type TurnMessage struct {
	SpeakerID       string `json:"speaker_id"`
	Nickname        string `json:"nickname"`
	DurationSeconds int    `json:"duration_seconds"`
}

type EliminatedMessage struct {
	PlayerID string `json:"player_id"`
}

type VotingMessage struct {
	Message string `json:"message"`
}

type DefenseMessage struct{}

type ResultMessage struct {
	Winner       Winner `json:"winner"`
	Message      string `json:"message"`
	Keyword      string `json:"keyword"`
	LiarNickname string `json:"liar_nickname"`
}

type ResetMessage struct {
	HostID string `json:"host_id"`
}

type HostMessage struct {
	HostID   string `json:"host_id"`
	Nickname string `json:"nickname"`
}

// SessionMessage tells a freshly connected client its connection id.
type SessionMessage struct {
	ConnectionID string `json:"connection_id"`
	Nickname     string `json:"nickname,omitempty"`
}

func (RoomListMessage) messageType() string   { return "room_list" }
func (RosterMessage) messageType() string     { return "roster" }
func (ChatMessage) messageType() string       { return "chat" }
func (RejectedMessage) messageType() string   { return "action_rejected" }
func (RoleMessage) messageType() string       { return "role_assigned" }
func (TurnMessage) messageType() string       { return "turn_changed" }
func (EliminatedMessage) messageType() string { return "player_eliminated" }
func (VotingMessage) messageType() string     { return "voting_started" }
func (DefenseMessage) messageType() string    { return "liar_defense_turn" }
func (ResultMessage) messageType() string     { return "round_result" }
func (ResetMessage) messageType() string      { return "round_reset" }
func (HostMessage) messageType() string       { return "host_changed" }
func (SessionMessage) messageType() string    { return "session" }

// TypeOf returns the wire tag of m.
func TypeOf(m Message) string {
	return m.messageType()
}

// Encode renders m as a flat JSON object carrying a "type" tag.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	tag, err := json.Marshal(m.messageType())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
