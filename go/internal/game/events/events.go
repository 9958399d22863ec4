package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Type is the discriminator carried in the "type" field of every frame
type Type string

const (
	TypeRoomCreated      Type = "RoomCreated"
	TypeRoomJoined       Type = "RoomJoined"
	TypePlayerJoined     Type = "PlayerJoined"
	TypePlayerLeft       Type = "PlayerLeft"
	TypeGameStarted      Type = "GameStarted"
	TypeGameStateUpdate  Type = "GameStateUpdate"
	TypeNewSyllable      Type = "NewSyllable"
	TypeBombTimerUpdate  Type = "BombTimerUpdate"
	TypeWordAccepted     Type = "WordAccepted"
	TypeWordRejected     Type = "WordRejected"
	TypeBombExploded     Type = "BombExplodedEvent"
	TypePlayerEliminated Type = "PlayerEliminated"
	TypeGameFinished     Type = "GameFinished"
	TypeError            Type = "Error"
)

// Event is a server to client message. The set of implementations is closed.
type Event interface {
	EventType() Type
}

func (RoomCreated) EventType() Type      { return TypeRoomCreated }
func (RoomJoined) EventType() Type       { return TypeRoomJoined }
func (PlayerJoined) EventType() Type     { return TypePlayerJoined }
func (PlayerLeft) EventType() Type       { return TypePlayerLeft }
func (GameStarted) EventType() Type      { return TypeGameStarted }
func (GameStateUpdate) EventType() Type  { return TypeGameStateUpdate }
func (NewSyllable) EventType() Type      { return TypeNewSyllable }
func (BombTimerUpdate) EventType() Type  { return TypeBombTimerUpdate }
func (WordAccepted) EventType() Type     { return TypeWordAccepted }
func (WordRejected) EventType() Type     { return TypeWordRejected }
func (BombExploded) EventType() Type     { return TypeBombExploded }
func (PlayerEliminated) EventType() Type { return TypePlayerEliminated }
func (GameFinished) EventType() Type     { return TypeGameFinished }
func (Error) EventType() Type            { return TypeError }

// ErrUnknownType is returned when a frame carries a type we do not know
var ErrUnknownType = errors.New("unknown message type")

// Encode marshals an event into a single JSON object with the type field first
func Encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", e.EventType(), err)
	}
	return withType(string(e.EventType()), body)
}

func withType(typ string, body []byte) ([]byte, error) {
	head, err := json.Marshal(typ)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(head) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(head)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// Decode parses a server frame back into its concrete event type
func Decode(data []byte) (Event, error) {
	var envelope struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	switch envelope.Type {
	case TypeRoomCreated:
		return decodeAs[RoomCreated](data)
	case TypeRoomJoined:
		return decodeAs[RoomJoined](data)
	case TypePlayerJoined:
		return decodeAs[PlayerJoined](data)
	case TypePlayerLeft:
		return decodeAs[PlayerLeft](data)
	case TypeGameStarted:
		return decodeAs[GameStarted](data)
	case TypeGameStateUpdate:
		return decodeAs[GameStateUpdate](data)
	case TypeNewSyllable:
		return decodeAs[NewSyllable](data)
	case TypeBombTimerUpdate:
		return decodeAs[BombTimerUpdate](data)
	case TypeWordAccepted:
		return decodeAs[WordAccepted](data)
	case TypeWordRejected:
		return decodeAs[WordRejected](data)
	case TypeBombExploded:
		return decodeAs[BombExploded](data)
	case TypePlayerEliminated:
		return decodeAs[PlayerEliminated](data)
	case TypeGameFinished:
		return decodeAs[GameFinished](data)
	case TypeError:
		return decodeAs[Error](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
	}
}

func decodeAs[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
