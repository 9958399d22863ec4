package room

import "errors"

// Client errors. They are reported to the offending connection and never
// end it.
var (
	ErrConfigInvalid      = errors.New("invalid room configuration")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotHost            = errors.New("not the host")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrGameNotInProgress  = errors.New("game not in progress")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidName        = errors.New("invalid player name")
	ErrAlreadyInRoom      = errors.New("already in a room")
	ErrNotInRoom          = errors.New("not in this room")
)

// ErrStaleRound is returned when a bomb expiry arrives for a round that has
// already ended. Callers drop it silently.
var ErrStaleRound = errors.New("stale round")

var clientMessages = []struct {
	err     error
	message string
}{
	{ErrConfigInvalid, "Invalid room configuration"},
	{ErrRoomNotFound, "Room not found"},
	{ErrRoomFull, "Room is full"},
	{ErrGameAlreadyStarted, "Game already started"},
	{ErrNotHost, "Only the host can start the game"},
	{ErrNotEnoughPlayers, "Need at least 2 players"},
	{ErrNotYourTurn, "Not your turn"},
	{ErrGameNotInProgress, "Game is not in progress"},
	{ErrPlayerNotFound, "Player not found"},
	{ErrInvalidName, "Player name must be 1 to 20 characters"},
	{ErrAlreadyInRoom, "Already in a room"},
	{ErrNotInRoom, "Not in this room"},
}

// ClientMessage maps a client error to the text shown to players. ok is
// false for anything that is not a client error.
func ClientMessage(err error) (message string, ok bool) {
	for _, cm := range clientMessages {
		if errors.Is(err, cm.err) {
			return cm.message, true
		}
	}
	return "", false
}

// Reason explains why a word was rejected
type Reason string

const (
	ReasonTooShort        Reason = "Word is too short"
	ReasonMissingSyllable Reason = "Word doesn't contain syllable"
	ReasonSyllableOnly    Reason = "Cannot submit only the syllable"
	ReasonAlreadyUsed     Reason = "Word already used"
	ReasonNotInDictionary Reason = "Word not in dictionary"
)

// RejectionError is a word that failed validation
type RejectionError struct {
	Word   string
	Reason Reason
}

func (e *RejectionError) Error() string {
	return "word rejected: " + string(e.Reason)
}
