package events

// Wire shapes shared between the room state machine, the gateway and the relay.

// ConfigDTO is the effective room configuration the server reports
type ConfigDTO struct {
	Language            string         `json:"language"`
	SyllableDifficulty  string         `json:"syllableDifficulty"`
	CustomMinWords      int            `json:"customMinWords,omitempty"`
	CustomMaxWords      int            `json:"customMaxWords,omitempty"`
	MinTurnDuration     int            `json:"minTurnDuration"`
	MaxTurnDuration     int            `json:"maxTurnDuration,omitempty"`
	MaxSyllableLifespan int            `json:"maxSyllableLifespan"`
	InitialLives        int            `json:"initialLives"`
	MaxLives            int            `json:"maxLives"`
	MaxPlayers          int            `json:"maxPlayers"`
	BonusAlphabet       map[string]int `json:"bonusAlphabet,omitempty"`
}

// RoomSettings is the configuration a client asks for. Absent fields keep
// the server default; a field that is present, zero included, is validated.
type RoomSettings struct {
	Language            string         `json:"language,omitempty" yaml:"language"`
	SyllableDifficulty  string         `json:"syllableDifficulty,omitempty" yaml:"syllable_difficulty"`
	CustomMinWords      *int           `json:"customMinWords,omitempty" yaml:"custom_min_words"`
	CustomMaxWords      *int           `json:"customMaxWords,omitempty" yaml:"custom_max_words"`
	MinTurnDuration     *int           `json:"minTurnDuration,omitempty" yaml:"min_turn_duration"`
	MaxTurnDuration     *int           `json:"maxTurnDuration,omitempty" yaml:"max_turn_duration"`
	MaxSyllableLifespan *int           `json:"maxSyllableLifespan,omitempty" yaml:"max_syllable_lifespan"`
	InitialLives        *int           `json:"initialLives,omitempty" yaml:"initial_lives"`
	MaxLives            *int           `json:"maxLives,omitempty" yaml:"max_lives"`
	MaxPlayers          *int           `json:"maxPlayers,omitempty" yaml:"max_players"`
	BonusAlphabet       map[string]int `json:"bonusAlphabet,omitempty" yaml:"bonus_alphabet"`
}

// PlayerDTO is one player as seen by clients
type PlayerDTO struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Lives            int            `json:"lives"`
	IsAlive          bool           `json:"isAlive"`
	IsCurrentTurn    bool           `json:"isCurrentTurn"`
	UsedWords        []string       `json:"usedWords"`
	BonusLettersUsed map[string]int `json:"bonusLettersUsed"`
}

// RoomDTO is the lobby view of a room
type RoomDTO struct {
	ID        string      `json:"id"`
	HostID    string      `json:"hostId"`
	Config    ConfigDTO   `json:"config"`
	Players   []PlayerDTO `json:"players"`
	IsStarted bool        `json:"isStarted"`
}

// BombStateDTO describes the armed bomb
type BombStateDTO struct {
	CurrentSyllable        string  `json:"currentSyllable"`
	TimeRemaining          float64 `json:"timeRemaining"`
	MaxTime                float64 `json:"maxTime"`
	SyllableTurnsRemaining int     `json:"syllableTurnsRemaining"`
}

// GameStateDTO is the full in-game snapshot
type GameStateDTO struct {
	RoomID              string        `json:"roomId"`
	Players             []PlayerDTO   `json:"players"`
	Config              ConfigDTO     `json:"config"`
	Status              string        `json:"status"`
	CurrentPlayerIndex  int           `json:"currentPlayerIndex"`
	BombState           *BombStateDTO `json:"bombState,omitempty"`
	UsedWordsInRound    []string      `json:"usedWordsInRound"`
	WinnerID            string        `json:"winnerId,omitempty"`
	CurrentBonusLetters []string      `json:"currentBonusLetters"`
}

// RoomCreated is sent to the host after create_room
type RoomCreated struct {
	Room     RoomDTO `json:"room"`
	PlayerID string  `json:"playerId"`
}

// RoomJoined is sent to a player after join_room
type RoomJoined struct {
	Room     RoomDTO `json:"room"`
	PlayerID string  `json:"playerId"`
}

// PlayerJoined tells existing players about a newcomer
type PlayerJoined struct {
	Player PlayerDTO `json:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type GameStarted struct {
	GameState GameStateDTO `json:"gameState"`
}

type GameStateUpdate struct {
	GameState GameStateDTO `json:"gameState"`
}

// NewSyllable announces the syllable of a round and its bomb time in seconds
type NewSyllable struct {
	Syllable string  `json:"syllable"`
	BombTime float64 `json:"bombTime"`
}

// BombTimerUpdate is a periodic countdown sync, in seconds
type BombTimerUpdate struct {
	TimeRemaining float64 `json:"timeRemaining"`
}

type WordAccepted struct {
	Word       string `json:"word"`
	PlayerID   string `json:"playerId"`
	GainedLife bool   `json:"gainedLife"`
}

type WordRejected struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

type BombExploded struct {
	PlayerID       string `json:"playerId"`
	PlayerName     string `json:"playerName"`
	LivesRemaining int    `json:"livesRemaining"`
}

type PlayerEliminated struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type GameFinished struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}

// Error reports a rejected command to the connection that sent it
type Error struct {
	Message string `json:"message"`
}
