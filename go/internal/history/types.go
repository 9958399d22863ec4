package history

import (
	"time"

	"github.com/google/uuid"
)

// Game is an archived finished game
type Game struct {
	ID         uuid.UUID `json:"id"`
	RoomCode   string    `json:"roomCode"`
	WinnerID   string    `json:"winnerId"`
	WinnerName string    `json:"winnerName"`
	Language   string    `json:"language"`
	Difficulty string    `json:"syllableDifficulty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Players    []Player  `json:"players"`
}

// Player is one participant's final standing in a Game
type Player struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Lives     int    `json:"lives"`
	WordsUsed int    `json:"wordsUsed"`
	Place     int    `json:"place"`
}
