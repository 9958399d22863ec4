package room

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/bombparty/go/internal/game/dictionary"
	"github.com/mcdev12/bombparty/go/internal/game/events"
)

// Status is the lifecycle state of a room
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Dictionary is what a room needs to validate words and draw syllables
type Dictionary interface {
	Contains(lang dictionary.Language, word string) bool
	RandomSyllable(lang dictionary.Language, band dictionary.Band, rng *rand.Rand) (string, error)
}

// Options are the collaborators of a room. Zero fields get defaults, except
// Dictionary which is required.
type Options struct {
	Dictionary Dictionary
	Clock      clockwork.Clock
	Rand       *rand.Rand
	NewID      func() string
}

// Room is the state machine of one game. It is not safe for concurrent use;
// the owner serializes every call.
type Room struct {
	id      string
	hostID  string
	config  Config
	players []*Player
	status  Status

	// turn indexes players and always points at an alive player while playing
	turn          int
	syllable      string
	syllableTurns int
	bombDuration  time.Duration
	deadline      time.Time
	token         uint64
	usedWords     map[string]struct{}
	usedList      []string
	winnerID      string

	// standings lists players in the order they went out of a running game
	standings []*Player

	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	dict  Dictionary
	clock clockwork.Clock
	rng   *rand.Rand
	newID func() string
}

// Create opens a room in waiting status with the host as its only player.
// The outcome carries RoomCreated for the host.
func Create(id string, cfg Config, hostConn, hostName string, opts Options) (*Room, *Player, Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, Outcome{}, err
	}
	name, err := cleanName(hostName)
	if err != nil {
		return nil, nil, Outcome{}, err
	}
	if opts.Dictionary == nil {
		return nil, nil, Outcome{}, fmt.Errorf("room %s: dictionary is required", id)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	r := &Room{
		id:        id,
		config:    cfg,
		status:    StatusWaiting,
		usedWords: make(map[string]struct{}),
		dict:      opts.Dictionary,
		clock:     opts.Clock,
		rng:       opts.Rand,
		newID:     opts.NewID,
	}
	r.createdAt = r.clock.Now()

	host := newPlayer(r.newID(), hostConn, name, cfg.InitialLives)
	r.players = append(r.players, host)
	r.hostID = host.ID

	var out Outcome
	out.send([]string{host.ConnID}, events.RoomCreated{Room: r.Lobby(), PlayerID: host.ID})
	return r, host, out, nil
}

// AddPlayer appends a player to a waiting room
func (r *Room) AddPlayer(connID, name string) (*Player, Outcome, error) {
	if r.status != StatusWaiting {
		return nil, Outcome{}, ErrGameAlreadyStarted
	}
	if len(r.players) >= r.config.MaxPlayers {
		return nil, Outcome{}, ErrRoomFull
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, Outcome{}, err
	}

	p := newPlayer(r.newID(), connID, name, r.config.InitialLives)
	others := r.connIDs()
	r.players = append(r.players, p)

	var out Outcome
	out.send(others, events.PlayerJoined{Player: p.dto(false)})
	out.send([]string{p.ConnID}, events.RoomJoined{Room: r.Lobby(), PlayerID: p.ID})
	return p, out, nil
}

// Start moves a waiting room into play and begins the first round
func (r *Room) Start(requesterID string) (Outcome, error) {
	if r.status != StatusWaiting {
		return Outcome{}, ErrGameAlreadyStarted
	}
	if requesterID != r.hostID {
		return Outcome{}, ErrNotHost
	}
	if len(r.players) < MinPlayers {
		return Outcome{}, ErrNotEnoughPlayers
	}

	plan, err := r.planRound()
	if err != nil {
		return Outcome{}, err
	}

	r.status = StatusPlaying
	r.startedAt = r.clock.Now()
	r.turn = r.nextAliveFrom(0)

	var out Outcome
	r.applyRound(plan, &out)
	out.broadcast(r, events.GameStarted{GameState: r.GameState()})
	out.broadcast(r, events.NewSyllable{Syllable: r.syllable, BombTime: r.bombDuration.Seconds()})
	return out, nil
}

// SubmitWord validates a word from the current player. Rule violations come
// back as *RejectionError and leave the room untouched.
func (r *Room) SubmitWord(playerID, raw string) (Outcome, error) {
	if r.status != StatusPlaying {
		return Outcome{}, ErrGameNotInProgress
	}
	current := r.players[r.turn]
	if current.ID != playerID {
		return Outcome{}, ErrNotYourTurn
	}

	typed := strings.TrimSpace(raw)
	word := dictionary.Normalize(raw)
	reject := func(reason Reason) (Outcome, error) {
		return Outcome{}, &RejectionError{Word: typed, Reason: reason}
	}

	switch {
	case utf8.RuneCountInString(word) < dictionary.MinWordLength:
		return reject(ReasonTooShort)
	case !strings.Contains(word, r.syllable):
		return reject(ReasonMissingSyllable)
	case word == r.syllable:
		return reject(ReasonSyllableOnly)
	case r.isUsed(word):
		return reject(ReasonAlreadyUsed)
	case !r.dict.Contains(r.config.Language, word):
		return reject(ReasonNotInDictionary)
	}

	plan, err := r.planRound()
	if err != nil {
		return Outcome{}, err
	}

	display := strings.ToLower(typed)
	r.usedWords[word] = struct{}{}
	r.usedList = append(r.usedList, display)
	current.UsedWords = append(current.UsedWords, display)
	gained := current.applyBonus(word, r.config.BonusAlphabet, r.config.MaxLives)

	out := Outcome{Disarm: true}
	out.broadcast(r, events.WordAccepted{Word: display, PlayerID: current.ID, GainedLife: gained})

	r.advanceTurn()
	r.applyRound(plan, &out)
	r.announceRound(&out)
	return out, nil
}

// ExplodeBomb resolves the expiry of the round identified by token. An
// expiry for any other round returns ErrStaleRound without effect.
func (r *Room) ExplodeBomb(token uint64) (Outcome, error) {
	if r.status != StatusPlaying || token != r.token {
		return Outcome{}, ErrStaleRound
	}
	current := r.players[r.turn]

	finishing := current.Lives <= 1 && r.aliveCount() <= 2
	var plan roundPlan
	if !finishing {
		var err error
		if plan, err = r.planRound(); err != nil {
			return Outcome{}, err
		}
	}

	var out Outcome
	if current.loseLife() {
		r.standings = append(r.standings, current)
		out.broadcast(r, events.PlayerEliminated{PlayerID: current.ID, PlayerName: current.Name})
	} else {
		out.broadcast(r, events.BombExploded{
			PlayerID:       current.ID,
			PlayerName:     current.Name,
			LivesRemaining: current.Lives,
		})
	}

	if r.aliveCount() <= 1 {
		r.finish(&out)
		return out, nil
	}

	r.advanceTurn()
	r.applyRound(plan, &out)
	r.announceRound(&out)
	return out, nil
}

// Tick reports the time left on the bomb of round token
func (r *Room) Tick(token uint64) (Outcome, error) {
	if r.status != StatusPlaying || token != r.token {
		return Outcome{}, ErrStaleRound
	}
	var out Outcome
	out.broadcast(r, events.BombTimerUpdate{TimeRemaining: r.TimeRemaining().Seconds()})
	return out, nil
}

// RemovePlayer takes a player out of the room. A player holding the turn
// passes it on without losing a life.
func (r *Room) RemovePlayer(playerID string) (Outcome, error) {
	idx := r.indexOf(playerID)
	if idx < 0 {
		return Outcome{}, ErrPlayerNotFound
	}
	p := r.players[idx]

	playing := r.status == StatusPlaying
	heldTurn := playing && idx == r.turn
	aliveAfter := r.aliveCount()
	if p.Alive {
		aliveAfter--
	}

	var plan roundPlan
	if heldTurn && aliveAfter >= MinPlayers {
		var err error
		if plan, err = r.planRound(); err != nil {
			return Outcome{}, err
		}
	}

	r.players = append(r.players[:idx:idx], r.players[idx+1:]...)
	if playing && p.Alive {
		r.standings = append(r.standings, p)
	}

	var out Outcome
	out.send(append(r.connIDs(), p.ConnID), events.PlayerLeft{PlayerID: p.ID})

	if len(r.players) == 0 {
		out.Disarm = playing
		return out, nil
	}

	hostChanged := p.ID == r.hostID
	if hostChanged {
		r.hostID = r.players[0].ID
	}

	switch r.status {
	case StatusWaiting:
		if hostChanged {
			lobby := r.Lobby()
			for _, other := range r.players {
				out.send([]string{other.ConnID}, events.RoomJoined{Room: lobby, PlayerID: other.ID})
			}
		}

	case StatusPlaying:
		if idx < r.turn {
			r.turn--
		}
		if aliveAfter <= 1 {
			r.finish(&out)
			return out, nil
		}
		if heldTurn {
			out.Disarm = true
			r.turn = r.nextAliveFrom(idx % len(r.players))
			r.applyRound(plan, &out)
			r.announceRound(&out)
			return out, nil
		}
		out.broadcast(r, events.GameStateUpdate{GameState: r.GameState()})
	}
	return out, nil
}

// Abort finishes the room without a winner and tells every player why
func (r *Room) Abort(message string) Outcome {
	out := Outcome{Disarm: true}
	r.status = StatusFinished
	r.finishedAt = r.clock.Now()
	r.deadline = time.Time{}
	out.broadcast(r, events.Error{Message: message})
	return out
}

type roundPlan struct {
	syllable string
	fresh    bool
	turns    int
	duration time.Duration
}

// planRound decides the next syllable and bomb duration without mutating
// the room so a failing draw leaves the previous state intact
func (r *Room) planRound() (roundPlan, error) {
	plan := roundPlan{syllable: r.syllable, turns: r.syllableTurns - 1}
	if r.syllable == "" || r.syllableTurns <= 1 {
		syl, err := r.dict.RandomSyllable(r.config.Language, r.config.Band(), r.rng)
		if err != nil {
			return roundPlan{}, fmt.Errorf("failed to draw syllable for room %s: %w", r.id, err)
		}
		plan = roundPlan{syllable: syl, fresh: true, turns: r.config.MaxSyllableLifespan}
	}
	plan.duration = r.drawDuration()
	return plan, nil
}

func (r *Room) drawDuration() time.Duration {
	lo, hi := r.config.TurnBounds()
	spread := int64((hi - lo) / time.Millisecond)
	if spread <= 0 {
		return lo
	}
	return lo + time.Duration(r.rng.Int64N(spread+1))*time.Millisecond
}

func (r *Room) applyRound(plan roundPlan, out *Outcome) {
	if plan.fresh {
		r.usedWords = make(map[string]struct{})
		r.usedList = nil
	}
	r.syllable = plan.syllable
	r.syllableTurns = plan.turns
	r.bombDuration = plan.duration
	r.deadline = r.clock.Now().Add(plan.duration)
	r.token++
	out.Bomb = &Bomb{Token: r.token, Duration: plan.duration}
}

func (r *Room) announceRound(out *Outcome) {
	out.broadcast(r, events.NewSyllable{Syllable: r.syllable, BombTime: r.bombDuration.Seconds()})
	out.broadcast(r, events.GameStateUpdate{GameState: r.GameState()})
}

func (r *Room) finish(out *Outcome) {
	r.status = StatusFinished
	r.finishedAt = r.clock.Now()
	r.deadline = time.Time{}
	out.Disarm = true
	out.Finished = true

	var winner *Player
	for _, p := range r.players {
		if p.Alive {
			winner = p
			break
		}
	}
	finished := events.GameFinished{}
	if winner != nil {
		r.winnerID = winner.ID
		finished = events.GameFinished{WinnerID: winner.ID, WinnerName: winner.Name}
	}
	out.broadcast(r, finished)
	out.broadcast(r, events.GameStateUpdate{GameState: r.GameState()})
}

func (r *Room) advanceTurn() {
	r.turn = r.nextAliveFrom(r.turn + 1)
}

// nextAliveFrom walks the join order circularly starting at start
func (r *Room) nextAliveFrom(start int) int {
	n := len(r.players)
	for i := 0; i < n; i++ {
		j := (start + i) % n
		if r.players[j].Alive {
			return j
		}
	}
	return -1
}

func (r *Room) aliveCount() int {
	n := 0
	for _, p := range r.players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (r *Room) isUsed(word string) bool {
	_, ok := r.usedWords[word]
	return ok
}

func (r *Room) indexOf(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) connIDs() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ConnID)
	}
	return ids
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
