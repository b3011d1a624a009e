/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxRoomName = 32
	maxNickname = 20
	maxChatText = 300
	maxGuess    = 100
)

// Command is one of the inbound actions defined in this file.
type Command interface {
	commandType() string
}

type RequestRoomList struct{}

type JoinRoom struct {
	Room     string
	Nickname string
}

type ToggleReady struct{}

type StartGame struct{}

type SendChat struct {
	Text string
}

type SubmitVote struct {
	Target string
}

type SubmitGuess struct {
	Text string
}

// LeaveRoom is an explicit leave; a lost connection takes the same path.
type LeaveRoom struct{}

func (RequestRoomList) commandType() string { return "request_room_list" }
func (JoinRoom) commandType() string        { return "join_room" }
func (ToggleReady) commandType() string     { return "toggle_ready" }
func (StartGame) commandType() string       { return "start_game" }
func (SendChat) commandType() string        { return "chat_message" }
func (SubmitVote) commandType() string      { return "submit_vote" }
func (SubmitGuess) commandType() string     { return "liar_guess" }
func (LeaveRoom) commandType() string       { return "leave_room" }

// wireCommand is the JSON shape clients send.
type wireCommand struct {
	Type     string `json:"type"`
	Room     string `json:"room,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Text     string `json:"text,omitempty"`
	Target   string `json:"target,omitempty"`
}

// DecodeCommand parses and validates a client frame. Every error wraps ErrInvalidCommand.
func DecodeCommand(data []byte) (Command, error) {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	switch w.Type {
	case "request_room_list":
		return RequestRoomList{}, nil
	case "join_room":
		room := strings.TrimSpace(w.Room)
		nickname := strings.TrimSpace(w.Nickname)
		if err := checkLength("room", room, maxRoomName); err != nil {
			return nil, err
		}
		if err := checkLength("nickname", nickname, maxNickname); err != nil {
			return nil, err
		}
		return JoinRoom{Room: room, Nickname: nickname}, nil
	case "toggle_ready":
		return ToggleReady{}, nil
	case "start_game":
		return StartGame{}, nil
	case "chat_message":
		text := strings.TrimSpace(w.Text)
		if err := checkLength("text", text, maxChatText); err != nil {
			return nil, err
		}
		return SendChat{Text: text}, nil
	case "submit_vote":
		if w.Target == "" {
			return nil, fmt.Errorf("%w: missing target", ErrInvalidCommand)
		}
		return SubmitVote{Target: w.Target}, nil
	case "liar_guess":
		if utf8.RuneCountInString(w.Text) > maxGuess {
			return nil, fmt.Errorf("%w: guess too long", ErrInvalidCommand)
		}
		return SubmitGuess{Text: w.Text}, nil
	case "leave_room":
		return LeaveRoom{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, w.Type)
	}
}

func checkLength(field, value string, limit int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCommand, field)
	}
	if n > limit {
		return fmt.Errorf("%w: %s longer than %d characters", ErrInvalidCommand, field, limit)
	}
	return nil
}
