package room

import (
	"time"

	"github.com/mcdev12/bombparty/go/internal/game/events"
)

// Message is an event addressed to a set of connections
type Message struct {
	To    []string
	Event events.Event
}

// Bomb is a countdown the owner of the room must arm
type Bomb struct {
	Token    uint64
	Duration time.Duration
}

// Outcome is everything a transition produced, in emission order
type Outcome struct {
	Messages []Message
	// Bomb is set when a new round started
	Bomb *Bomb
	// Disarm asks the owner to cancel the armed bomb
	Disarm bool
	// Finished is set when the game reached a winner
	Finished bool
}

func (o *Outcome) send(to []string, e events.Event) {
	if len(to) == 0 {
		return
	}
	o.Messages = append(o.Messages, Message{To: to, Event: e})
}

func (o *Outcome) broadcast(r *Room, e events.Event) {
	o.send(r.connIDs(), e)
}
