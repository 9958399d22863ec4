package manager

import (
	"errors"
	"math/rand/v2"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bombparty/go/internal/game/bomb"
	"github.com/mcdev12/bombparty/go/internal/game/events"
	"github.com/mcdev12/bombparty/go/internal/game/room"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6

	internalErrorMessage = "Internal server error"
)

// ErrInternal is returned when a room transition panicked
var ErrInternal = errors.New("internal error")

// Sink receives every event a room produces, addressed to connection ids.
// Deliver is called with the room locked and must not block.
type Sink interface {
	Deliver(roomID string, to []string, e events.Event)
}

// Recorder receives the result of every game that reached a winner. Record
// is called with the room locked and must not block.
type Recorder interface {
	Record(result room.Result)
}

type entry struct {
	mu     sync.Mutex
	room   *room.Room
	closed bool
}

type binding struct {
	roomID   string
	playerID string
}

// Manager owns every live room and serializes the transitions of each one
type Manager struct {
	dict         room.Dictionary
	defaults     room.Config
	clock        clockwork.Clock
	tickInterval time.Duration
	scheduler    *bomb.Scheduler
	newCode      func() string
	newID        func() string
	recorder     Recorder

	sinksMu sync.RWMutex
	sinks   []Sink

	mu    sync.RWMutex
	rooms map[string]*entry

	connMu sync.Mutex
	conns  map[string]binding
}

// Option configures a Manager
type Option func(*Manager)

// WithDefaults sets the config create_room overlays
func WithDefaults(cfg room.Config) Option {
	return func(m *Manager) { m.defaults = cfg }
}

// WithClock drives rooms and bombs from c
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithTickInterval broadcasts BombTimerUpdate every d while a bomb is armed
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) { m.tickInterval = d }
}

// WithRecorder archives finished games
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithRoomCodes replaces the random room code generator
func WithRoomCodes(fn func() string) Option {
	return func(m *Manager) { m.newCode = fn }
}

// WithPlayerIDs replaces the uuid player id generator
func WithPlayerIDs(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

func New(dict room.Dictionary, opts ...Option) *Manager {
	m := &Manager{
		dict:     dict,
		defaults: room.DefaultConfig(),
		clock:    clockwork.NewRealClock(),
		newCode:  randomRoomCode,
		rooms:    make(map[string]*entry),
		conns:    make(map[string]binding),
	}
	for _, opt := range opts {
		opt(m)
	}

	schedOpts := []bomb.Option{bomb.WithClock(m.clock)}
	if m.tickInterval > 0 {
		schedOpts = append(schedOpts, bomb.WithTicks(m.tickInterval, m.onBombTick))
	}
	m.scheduler = bomb.NewScheduler(m.onBombExpired, schedOpts...)
	return m
}

// AddSink registers s for every event produced from now on
func (m *Manager) AddSink(s Sink) {
	m.sinksMu.Lock()
	defer m.sinksMu.Unlock()
	m.sinks = append(m.sinks, s)
}

// Stop cancels every bomb. Rooms stay readable.
func (m *Manager) Stop() {
	m.scheduler.Stop()
}

// CreateRoom opens a room hosted by the player on connID
func (m *Manager) CreateRoom(connID string, dto *events.RoomSettings, hostName string) (roomID, playerID string, err error) {
	if _, bound := m.binding(connID); bound {
		return "", "", room.ErrAlreadyInRoom
	}
	cfg, err := room.ConfigFromSettings(dto, m.defaults)
	if err != nil {
		return "", "", err
	}

	// the entry is locked before it becomes visible so RoomCreated is
	// delivered ahead of anything a joiner triggers
	e := &entry{}
	e.mu.Lock()
	defer e.mu.Unlock()

	m.mu.Lock()
	code := m.uniqueCode()
	r, host, out, err := room.Create(code, cfg, connID, hostName, m.roomOptions())
	if err != nil {
		m.mu.Unlock()
		return "", "", err
	}
	e.room = r
	m.rooms[code] = e
	m.mu.Unlock()

	m.bind(connID, binding{roomID: code, playerID: host.ID})
	m.apply(e, out)

	log.Info().
		Str("room_id", code).
		Str("player_id", host.ID).
		Str("language", string(cfg.Language)).
		Str("difficulty", string(cfg.Difficulty)).
		Msg("room created")
	return code, host.ID, nil
}

// JoinRoom adds the player on connID to a waiting room
func (m *Manager) JoinRoom(connID, roomID, playerName string) (string, error) {
	if _, bound := m.binding(connID); bound {
		return "", room.ErrAlreadyInRoom
	}
	roomID = normalizeCode(roomID)

	var playerID string
	err := m.withRoom(roomID, func(e *entry) error {
		out, err := m.transition(e, func(r *room.Room) (room.Outcome, error) {
			p, out, err := r.AddPlayer(connID, playerName)
			if err == nil {
				playerID = p.ID
			}
			return out, err
		})
		if err != nil {
			return err
		}
		m.bind(connID, binding{roomID: roomID, playerID: playerID})
		m.apply(e, out)
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().Str("room_id", roomID).Str("player_id", playerID).Msg("player joined")
	return playerID, nil
}

// StartGame starts the game of roomID on behalf of the player on connID
func (m *Manager) StartGame(connID, roomID string) error {
	roomID = normalizeCode(roomID)
	requester := ""
	if b, ok := m.binding(connID); ok && b.roomID == roomID {
		requester = b.playerID
	}

	err := m.withRoom(roomID, func(e *entry) error {
		out, err := m.transition(e, func(r *room.Room) (room.Outcome, error) {
			return r.Start(requester)
		})
		if err != nil {
			return err
		}
		m.apply(e, out)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("room_id", roomID).Msg("game started")
	return nil
}

// SubmitWord plays word for playerID, who must be the player on connID.
// Rejected words come back as *room.RejectionError.
func (m *Manager) SubmitWord(connID, roomID, playerID, word string) error {
	roomID = normalizeCode(roomID)
	if !m.owns(connID, roomID, playerID) {
		if !m.exists(roomID) {
			return room.ErrRoomNotFound
		}
		return room.ErrNotInRoom
	}

	return m.withRoom(roomID, func(e *entry) error {
		out, err := m.transition(e, func(r *room.Room) (room.Outcome, error) {
			return r.SubmitWord(playerID, word)
		})
		if err != nil {
			return err
		}
		m.apply(e, out)
		return nil
	})
}

// LeaveRoom removes playerID, who must be the player on connID
func (m *Manager) LeaveRoom(connID, roomID, playerID string) error {
	roomID = normalizeCode(roomID)
	if !m.owns(connID, roomID, playerID) {
		if !m.exists(roomID) {
			return room.ErrRoomNotFound
		}
		return room.ErrNotInRoom
	}
	return m.leave(connID, binding{roomID: roomID, playerID: playerID})
}

// HandleDisconnect removes whatever player the connection was bound to
func (m *Manager) HandleDisconnect(connID string) {
	b, ok := m.binding(connID)
	if !ok {
		return
	}
	if err := m.leave(connID, b); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
		log.Error().Err(err).Str("conn_id", connID).Str("room_id", b.roomID).Msg("failed to remove disconnected player")
	}
}

func (m *Manager) leave(connID string, b binding) error {
	defer m.unbind(connID)

	return m.withRoom(b.roomID, func(e *entry) error {
		out, err := m.transition(e, func(r *room.Room) (room.Outcome, error) {
			return r.RemovePlayer(b.playerID)
		})
		if err != nil {
			return err
		}
		m.apply(e, out)

		log.Info().Str("room_id", b.roomID).Str("player_id", b.playerID).Msg("player left")

		if e.room.Len() == 0 {
			m.destroy(e)
		}
		return nil
	})
}

// destroy forgets an empty room. e must be locked.
func (m *Manager) destroy(e *entry) {
	e.closed = true
	m.scheduler.Cancel(e.room.ID())

	m.mu.Lock()
	if m.rooms[e.room.ID()] == e {
		delete(m.rooms, e.room.ID())
	}
	m.mu.Unlock()

	log.Info().Str("room_id", e.room.ID()).Msg("room destroyed")
}

func (m *Manager) onBombExpired(roomID string, token uint64) {
	e := m.lookup(roomID)
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	out, err := m.transition(e, func(r *room.Room) (room.Outcome, error) {
		return r.ExplodeBomb(token)
	})
	switch {
	case errors.Is(err, room.ErrStaleRound):
		log.Debug().Str("room_id", roomID).Uint64("token", token).Msg("ignored stale bomb")
		return
	case errors.Is(err, ErrInternal):
		return
	case err != nil:
		// the round cannot continue without a syllable
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to resolve bomb expiry")
		m.apply(e, e.room.Abort(internalErrorMessage))
		return
	}
	m.apply(e, out)
}

func (m *Manager) onBombTick(roomID string, token uint64) {
	e := m.lookup(roomID)
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	out, err := e.room.Tick(token)
	if err != nil {
		return
	}
	m.deliver(roomID, out)
}

// transition runs fn on the room of e, which must be locked. A panic aborts
// the room and nothing fn produced is delivered.
func (m *Manager) transition(e *entry, fn func(r *room.Room) (room.Outcome, error)) (out room.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("room_id", e.room.ID()).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("room transition panicked")
			m.apply(e, e.room.Abort(internalErrorMessage))
			out, err = room.Outcome{}, ErrInternal
		}
	}()
	return fn(e.room)
}

// apply arms or cancels the bomb and delivers events. e must be locked.
func (m *Manager) apply(e *entry, out room.Outcome) {
	roomID := e.room.ID()
	if out.Disarm {
		m.scheduler.Cancel(roomID)
	}
	if out.Bomb != nil {
		m.scheduler.Arm(roomID, out.Bomb.Token, out.Bomb.Duration)
	}
	m.deliver(roomID, out)

	if !out.Finished {
		return
	}
	result, ok := e.room.Result()
	if !ok {
		return
	}
	log.Info().
		Str("room_id", roomID).
		Str("winner_id", result.WinnerID).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("game finished")
	if m.recorder != nil {
		m.recorder.Record(result)
	}
}

func (m *Manager) deliver(roomID string, out room.Outcome) {
	m.sinksMu.RLock()
	defer m.sinksMu.RUnlock()

	for _, msg := range out.Messages {
		for _, s := range m.sinks {
			s.Deliver(roomID, msg.To, msg.Event)
		}
	}
}

// withRoom runs fn with the room locked
func (m *Manager) withRoom(roomID string, fn func(e *entry) error) error {
	e := m.lookup(roomID)
	if e == nil {
		return room.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return room.ErrRoomNotFound
	}
	return fn(e)
}

func (m *Manager) lookup(roomID string) *entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[roomID]
}

func (m *Manager) exists(roomID string) bool {
	return m.lookup(roomID) != nil
}

// uniqueCode draws room codes until one is free. m.mu must be held.
func (m *Manager) uniqueCode() string {
	for {
		code := m.newCode()
		if _, taken := m.rooms[code]; !taken {
			return code
		}
		log.Debug().Str("room_id", code).Msg("room code collision")
	}
}

func (m *Manager) roomOptions() room.Options {
	return room.Options{
		Dictionary: m.dict,
		Clock:      m.clock,
		NewID:      m.newID,
	}
}

func (m *Manager) binding(connID string) (binding, bool) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	b, ok := m.conns[connID]
	return b, ok
}

func (m *Manager) owns(connID, roomID, playerID string) bool {
	b, ok := m.binding(connID)
	return ok && b.roomID == roomID && b.playerID == playerID
}

func (m *Manager) bind(connID string, b binding) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	m.conns[connID] = b
}

func (m *Manager) unbind(connID string) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	delete(m.conns, connID)
}

// Snapshot returns the game state of roomID
func (m *Manager) Snapshot(roomID string) (events.GameStateDTO, error) {
	var state events.GameStateDTO
	err := m.withRoom(normalizeCode(roomID), func(e *entry) error {
		state = e.room.GameState()
		return nil
	})
	return state, err
}

// Rooms lists every live room, oldest first
func (m *Manager) Rooms() []room.Summary {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.rooms))
	for _, e := range m.rooms {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	summaries := make([]room.Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			summaries = append(summaries, e.room.Summary())
		}
		e.mu.Unlock()
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// Stats counts live rooms and players
type Stats struct {
	Rooms        int `json:"rooms"`
	PlayingRooms int `json:"playing_rooms"`
	Players      int `json:"players"`
	ArmedBombs   int `json:"armed_bombs"`
}

func (m *Manager) Stats() Stats {
	var s Stats
	for _, summary := range m.Rooms() {
		s.Rooms++
		s.Players += summary.Players
		if summary.Status == room.StatusPlaying {
			s.PlayingRooms++
		}
	}
	s.ArmedBombs = m.scheduler.Len()
	return s
}

func randomRoomCode() string {
	var b strings.Builder
	b.Grow(roomCodeLength)
	for i := 0; i < roomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))])
	}
	return b.String()
}

func normalizeCode(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}
