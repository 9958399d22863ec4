package events

import (
	"encoding/json"
	"fmt"
)

// CommandType is the discriminator of client to server frames
type CommandType string

const (
	CommandCreateRoom CommandType = "create_room"
	CommandJoinRoom   CommandType = "join_room"
	CommandStartGame  CommandType = "start_game"
	CommandSubmitWord CommandType = "submit_word"
	CommandLeaveRoom  CommandType = "leave_room"
)

// Command is a client to server message. The set of implementations is closed.
type Command interface {
	CommandType() CommandType
}

type CreateRoom struct {
	PlayerName string        `json:"playerName"`
	Config     *RoomSettings `json:"config,omitempty"`
}

type JoinRoom struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type StartGame struct {
	RoomID string `json:"roomId"`
}

type SubmitWord struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Word     string `json:"word"`
}

type LeaveRoom struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

func (CreateRoom) CommandType() CommandType { return CommandCreateRoom }
func (JoinRoom) CommandType() CommandType   { return CommandJoinRoom }
func (StartGame) CommandType() CommandType  { return CommandStartGame }
func (SubmitWord) CommandType() CommandType { return CommandSubmitWord }
func (LeaveRoom) CommandType() CommandType  { return CommandLeaveRoom }

// ParseCommand decodes one client frame
func ParseCommand(data []byte) (Command, error) {
	var envelope struct {
		Type CommandType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command: %w", err)
	}

	switch envelope.Type {
	case CommandCreateRoom:
		return parseAs[CreateRoom](data)
	case CommandJoinRoom:
		return parseAs[JoinRoom](data)
	case CommandStartGame:
		return parseAs[StartGame](data)
	case CommandSubmitWord:
		return parseAs[SubmitWord](data)
	case CommandLeaveRoom:
		return parseAs[LeaveRoom](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
	}
}

// EncodeCommand is the client side counterpart of ParseCommand
func EncodeCommand(c Command) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", c.CommandType(), err)
	}
	return withType(string(c.CommandType()), body)
}

func parseAs[T Command](data []byte) (Command, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return v, nil
}
