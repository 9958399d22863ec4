package gateway

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bombparty/go/internal/game/events"
	"github.com/mcdev12/bombparty/go/internal/game/manager"
	"github.com/mcdev12/bombparty/go/internal/game/room"
)

const (
	tooManyMessages = "Too many messages"
	internalError   = "Internal server error"
)

// Games is what the gateway needs from the room manager
type Games interface {
	CreateRoom(connID string, config *events.RoomSettings, hostName string) (roomID, playerID string, err error)
	JoinRoom(connID, roomID, playerName string) (string, error)
	StartGame(connID, roomID string) error
	SubmitWord(connID, roomID, playerID, word string) error
	LeaveRoom(connID, roomID, playerID string) error
	HandleDisconnect(connID string)
}

// Dispatcher turns client frames into game operations
type Dispatcher struct {
	games Games
}

func NewDispatcher(games Games) *Dispatcher {
	return &Dispatcher{games: games}
}

// Dispatch decodes one frame and runs it. Undecodable frames are dropped.
func (d *Dispatcher) Dispatch(c *Connection, frame []byte) {
	cmd, err := events.ParseCommand(frame)
	if err != nil {
		log.Warn().Err(err).Str("conn_id", c.ID).Msg("dropping invalid client message")
		return
	}

	log.Debug().
		Str("conn_id", c.ID).
		Str("command", string(cmd.CommandType())).
		Msg("received client command")

	err = d.run(c.ID, cmd)
	switch {
	case err == nil:
	case errors.Is(err, manager.ErrInternal):
		// the aborted room already told every player, the sender included
	default:
		c.send(reply(c.ID, cmd, err))
	}
}

// Disconnect releases whatever the connection held
func (d *Dispatcher) Disconnect(connID string) {
	d.games.HandleDisconnect(connID)
}

func (d *Dispatcher) run(connID string, cmd events.Command) error {
	switch cmd := cmd.(type) {
	case events.CreateRoom:
		_, _, err := d.games.CreateRoom(connID, cmd.Config, cmd.PlayerName)
		return err
	case events.JoinRoom:
		_, err := d.games.JoinRoom(connID, cmd.RoomID, cmd.PlayerName)
		return err
	case events.StartGame:
		return d.games.StartGame(connID, cmd.RoomID)
	case events.SubmitWord:
		return d.games.SubmitWord(connID, cmd.RoomID, cmd.PlayerID, cmd.Word)
	case events.LeaveRoom:
		return d.games.LeaveRoom(connID, cmd.RoomID, cmd.PlayerID)
	default:
		return errors.New("unhandled command")
	}
}

// reply converts a failed command into the event shown to its sender
func reply(connID string, cmd events.Command, err error) events.Event {
	var rejection *room.RejectionError
	if errors.As(err, &rejection) {
		return events.WordRejected{Word: rejection.Word, Reason: string(rejection.Reason)}
	}
	if message, ok := room.ClientMessage(err); ok {
		log.Debug().
			Err(err).
			Str("conn_id", connID).
			Str("command", string(cmd.CommandType())).
			Msg("command refused")
		return events.Error{Message: message}
	}

	log.Error().
		Err(err).
		Str("conn_id", connID).
		Str("command", string(cmd.CommandType())).
		Msg("command failed")
	return events.Error{Message: internalError}
}
