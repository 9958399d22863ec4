package room

import (
	"time"

	"github.com/mcdev12/bombparty/go/internal/game/events"
)

func (r *Room) ID() string       { return r.id }
func (r *Room) HostID() string   { return r.hostID }
func (r *Room) Status() Status   { return r.status }
func (r *Room) Config() Config   { return r.config }
func (r *Room) Token() uint64    { return r.token }
func (r *Room) Syllable() string { return r.syllable }
func (r *Room) Len() int         { return len(r.players) }

// Player looks a player up by id
func (r *Room) Player(id string) (*Player, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.players[i], true
	}
	return nil, false
}

// CurrentPlayer is the player holding the bomb, nil unless playing
func (r *Room) CurrentPlayer() *Player {
	if r.status != StatusPlaying {
		return nil
	}
	return r.players[r.turn]
}

// TimeRemaining is how long the armed bomb has left
func (r *Room) TimeRemaining() time.Duration {
	if r.status != StatusPlaying || r.deadline.IsZero() {
		return 0
	}
	if left := r.deadline.Sub(r.clock.Now()); left > 0 {
		return left
	}
	return 0
}

// Lobby is the room as shown before and around a game
func (r *Room) Lobby() events.RoomDTO {
	players := make([]events.PlayerDTO, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.dto(false))
	}
	return events.RoomDTO{
		ID:        r.id,
		HostID:    r.hostID,
		Config:    r.config.DTO(),
		Players:   players,
		IsStarted: r.status != StatusWaiting,
	}
}

// GameState is the full snapshot broadcast during a game
func (r *Room) GameState() events.GameStateDTO {
	playing := r.status == StatusPlaying
	players := make([]events.PlayerDTO, 0, len(r.players))
	for i, p := range r.players {
		players = append(players, p.dto(playing && i == r.turn))
	}

	state := events.GameStateDTO{
		RoomID:              r.id,
		Players:             players,
		Config:              r.config.DTO(),
		Status:              string(r.status),
		CurrentPlayerIndex:  r.turn,
		UsedWordsInRound:    append([]string{}, r.usedList...),
		WinnerID:            r.winnerID,
		CurrentBonusLetters: []string{},
	}
	if r.syllable != "" {
		state.BombState = &events.BombStateDTO{
			CurrentSyllable:        r.syllable,
			TimeRemaining:          r.TimeRemaining().Seconds(),
			MaxTime:                r.bombDuration.Seconds(),
			SyllableTurnsRemaining: r.syllableTurns,
		}
	}
	if playing {
		state.CurrentBonusLetters = r.players[r.turn].missingLetters(r.config)
	}
	return state
}

// Summary is a one-line view of a room for listings
type Summary struct {
	ID         string    `json:"id"`
	Status     Status    `json:"status"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	Language   string    `json:"language"`
	Difficulty string    `json:"syllableDifficulty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *Room) Summary() Summary {
	return Summary{
		ID:         r.id,
		Status:     r.status,
		Players:    len(r.players),
		MaxPlayers: r.config.MaxPlayers,
		Language:   string(r.config.Language),
		Difficulty: string(r.config.Difficulty),
		CreatedAt:  r.createdAt,
	}
}

// Standing is the final position of one player
type Standing struct {
	PlayerID  string
	Name      string
	Lives     int
	WordsUsed int
	Place     int
}

// Result describes a finished game
type Result struct {
	RoomID     string
	WinnerID   string
	WinnerName string
	Language   string
	Difficulty string
	StartedAt  time.Time
	FinishedAt time.Time
	Standings  []Standing
	FinalState events.GameStateDTO
}

// Result is available once the game reached a winner
func (r *Room) Result() (Result, bool) {
	if r.status != StatusFinished || r.winnerID == "" {
		return Result{}, false
	}
	winner, ok := r.Player(r.winnerID)
	if !ok {
		return Result{}, false
	}

	standings := []Standing{standingOf(winner, 1)}
	total := len(r.standings) + 1
	for i := len(r.standings) - 1; i >= 0; i-- {
		standings = append(standings, standingOf(r.standings[i], total-i))
	}

	return Result{
		RoomID:     r.id,
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Language:   string(r.config.Language),
		Difficulty: string(r.config.Difficulty),
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
		Standings:  standings,
		FinalState: r.GameState(),
	}, true
}

func standingOf(p *Player, place int) Standing {
	return Standing{
		PlayerID:  p.ID,
		Name:      p.Name,
		Lives:     p.Lives,
		WordsUsed: len(p.UsedWords),
		Place:     place,
	}
}
