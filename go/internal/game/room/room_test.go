package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/bombparty/go/internal/game/dictionary"
	"github.com/mcdev12/bombparty/go/internal/game/events"
)

// stubDictionary hands out syllables in a fixed order
type stubDictionary struct {
	words     map[string]bool
	syllables []string
	next      int
	err       error
}

func newStubDictionary(syllables []string, words ...string) *stubDictionary {
	d := &stubDictionary{words: make(map[string]bool), syllables: syllables}
	for _, w := range words {
		d.words[dictionary.Normalize(w)] = true
	}
	return d
}

func (d *stubDictionary) Contains(_ dictionary.Language, word string) bool {
	return d.words[dictionary.Normalize(word)]
}

func (d *stubDictionary) RandomSyllable(dictionary.Language, dictionary.Band, *rand.Rand) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	if len(d.syllables) == 0 {
		return "", dictionary.ErrNoSyllables
	}
	s := d.syllables[d.next%len(d.syllables)]
	d.next++
	return s, nil
}

var testWords = []string{"tractor", "trampa", "contrato", "casa", "cama", "cantar", "patata", "sopa"}

type fixture struct {
	room  *Room
	dict  *stubDictionary
	clock *clockwork.FakeClock
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinTurnDuration = 10
	cfg.MaxTurnDuration = 10
	cfg.MaxSyllableLifespan = 1
	return cfg
}

// newFixture builds room AB12CD with host "Ana" (player p1 on conn c1) and
// one more player per extra name (p2/c2, p3/c3, ...)
func newFixture(t *testing.T, cfg Config, syllables []string, extra ...string) *fixture {
	t.Helper()

	dict := newStubDictionary(syllables, testWords...)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	n := 0
	opts := Options{
		Dictionary: dict,
		Clock:      clock,
		Rand:       rand.New(rand.NewPCG(7, 7)),
		NewID: func() string {
			n++
			return fmt.Sprintf("p%d", n)
		},
	}

	r, host, _, err := Create("AB12CD", cfg, "c1", "Ana", opts)
	require.NoError(t, err)
	require.Equal(t, "p1", host.ID)

	for i, name := range extra {
		_, _, err := r.AddPlayer(fmt.Sprintf("c%d", i+2), name)
		require.NoError(t, err)
	}
	return &fixture{room: r, dict: dict, clock: clock}
}

func (f *fixture) start(t *testing.T) Outcome {
	t.Helper()
	out, err := f.room.Start(f.room.HostID())
	require.NoError(t, err)
	return out
}

func typesOf(out Outcome) []events.Type {
	var types []events.Type
	for _, m := range out.Messages {
		types = append(types, m.Event.EventType())
	}
	return types
}

func find[T events.Event](t *testing.T, out Outcome) (T, Message) {
	t.Helper()
	for _, m := range out.Messages {
		if e, ok := m.Event.(T); ok {
			return e, m
		}
	}
	var zero T
	t.Fatalf("no %T in outcome %v", zero, typesOf(out))
	return zero, Message{}
}

func assertTurnOnAlivePlayer(t *testing.T, r *Room) {
	t.Helper()
	if r.Status() != StatusPlaying {
		return
	}
	require.GreaterOrEqual(t, r.turn, 0)
	require.Less(t, r.turn, len(r.players))
	assert.True(t, r.players[r.turn].Alive, "turn points at a dead player")
}

func TestCreate(t *testing.T) {
	dict := newStubDictionary([]string{"tra"}, testWords...)

	r, host, out, err := Create("AB12CD", DefaultConfig(), "c1", "  Ana ", Options{Dictionary: dict})
	require.NoError(t, err)

	assert.Equal(t, "Ana", host.Name)
	assert.Equal(t, 2, host.Lives)
	assert.Equal(t, host.ID, r.HostID())
	assert.Equal(t, StatusWaiting, r.Status())

	created, msg := find[events.RoomCreated](t, out)
	assert.Equal(t, []string{"c1"}, msg.To)
	assert.Equal(t, host.ID, created.PlayerID)
	assert.Equal(t, "AB12CD", created.Room.ID)
	assert.False(t, created.Room.IsStarted)
	assert.Len(t, created.Room.Players, 1)

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxPlayers = 1
		_, _, _, err := Create("X", cfg, "c1", "Ana", Options{Dictionary: dict})
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})

	t.Run("blank name", func(t *testing.T) {
		_, _, _, err := Create("X", DefaultConfig(), "c1", "   ", Options{Dictionary: dict})
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestAddPlayer(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"})

	p, out, err := f.room.AddPlayer("c2", "Bea")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
	assert.Equal(t, 2, p.Lives)

	joined, msg := find[events.PlayerJoined](t, out)
	assert.Equal(t, []string{"c1"}, msg.To)
	assert.Equal(t, "Bea", joined.Player.Name)

	roomJoined, msg := find[events.RoomJoined](t, out)
	assert.Equal(t, []string{"c2"}, msg.To)
	assert.Equal(t, "p2", roomJoined.PlayerID)
	assert.Equal(t, "p1", roomJoined.Room.HostID)
	assert.Len(t, roomJoined.Room.Players, 2)

	_, _, err = f.room.AddPlayer("c3", "")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, _, err = f.room.AddPlayer("c3", "a name far longer than twenty runes")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestAddPlayerNeverExceedsMax(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPlayers = 3
	f := newFixture(t, cfg, []string{"tra"})

	for i := 0; i < 10; i++ {
		_, _, err := f.room.AddPlayer(fmt.Sprintf("x%d", i), fmt.Sprintf("P%d", i))
		if f.room.Len() > 3 {
			t.Fatalf("room grew to %d players", f.room.Len())
		}
		if i >= 2 {
			assert.ErrorIs(t, err, ErrRoomFull)
		}
	}

	seen := make(map[string]bool)
	for _, p := range f.room.players {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestAddPlayerAfterStart(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
	f.start(t)

	_, _, err := f.room.AddPlayer("c3", "Cid")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestStart(t *testing.T) {
	t.Run("not host", func(t *testing.T) {
		f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
		_, err := f.room.Start("p2")
		assert.ErrorIs(t, err, ErrNotHost)
		assert.Equal(t, StatusWaiting, f.room.Status())
	})

	t.Run("not enough players", func(t *testing.T) {
		f := newFixture(t, testConfig(), []string{"tra"})
		_, err := f.room.Start("p1")
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	})

	t.Run("dictionary failure keeps the room waiting", func(t *testing.T) {
		f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
		f.dict.err = errors.New("boom")
		_, err := f.room.Start("p1")
		assert.Error(t, err)
		assert.Equal(t, StatusWaiting, f.room.Status())
	})

	t.Run("begins the first round", func(t *testing.T) {
		f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
		out := f.start(t)

		assert.Equal(t, StatusPlaying, f.room.Status())
		assert.Equal(t, "p1", f.room.CurrentPlayer().ID)
		assert.Equal(t, "tra", f.room.Syllable())
		require.NotNil(t, out.Bomb)
		assert.Equal(t, uint64(1), out.Bomb.Token)
		assert.Equal(t, 10*time.Second, out.Bomb.Duration)
		assert.Equal(t, []events.Type{events.TypeGameStarted, events.TypeNewSyllable}, typesOf(out))

		started, msg := find[events.GameStarted](t, out)
		assert.ElementsMatch(t, []string{"c1", "c2"}, msg.To)
		assert.Equal(t, "playing", started.GameState.Status)
		assert.True(t, started.GameState.Players[0].IsCurrentTurn)
		require.NotNil(t, started.GameState.BombState)
		assert.Equal(t, "tra", started.GameState.BombState.CurrentSyllable)
		assert.Equal(t, 10.0, started.GameState.BombState.MaxTime)

		_, err := f.room.Start("p1")
		assert.ErrorIs(t, err, ErrGameAlreadyStarted)
	})
}

func TestScenarioWordAcceptedPassesTurn(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra", "ca"}, "Bea")
	f.start(t)

	out, err := f.room.SubmitWord("p1", "Tractor")
	require.NoError(t, err)

	accepted, _ := find[events.WordAccepted](t, out)
	assert.Equal(t, events.WordAccepted{Word: "tractor", PlayerID: "p1"}, accepted)
	assert.Equal(t, []events.Type{
		events.TypeWordAccepted,
		events.TypeNewSyllable,
		events.TypeGameStateUpdate,
	}, typesOf(out))

	assert.True(t, out.Disarm)
	require.NotNil(t, out.Bomb)
	assert.Equal(t, uint64(2), out.Bomb.Token)

	assert.Equal(t, "p2", f.room.CurrentPlayer().ID)
	assert.Equal(t, "ca", f.room.Syllable())
	p1, _ := f.room.Player("p1")
	assert.Equal(t, 2, p1.Lives)
	assert.Equal(t, []string{"tractor"}, p1.UsedWords)
	assertTurnOnAlivePlayer(t, f.room)
}

func TestScenarioBombExpiryCostsALife(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra", "ca", "pa"}, "Bea")
	f.start(t)
	_, err := f.room.SubmitWord("p1", "tractor")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	out, err := f.room.ExplodeBomb(f.room.Token())
	require.NoError(t, err)

	exploded, _ := find[events.BombExploded](t, out)
	assert.Equal(t, events.BombExploded{PlayerID: "p2", PlayerName: "Bea", LivesRemaining: 1}, exploded)
	assert.Equal(t, []events.Type{
		events.TypeBombExploded,
		events.TypeNewSyllable,
		events.TypeGameStateUpdate,
	}, typesOf(out))

	p2, _ := f.room.Player("p2")
	assert.Equal(t, 1, p2.Lives)
	assert.True(t, p2.Alive)
	assert.Equal(t, "p1", f.room.CurrentPlayer().ID)
	require.NotNil(t, out.Bomb)
	assert.Equal(t, uint64(3), out.Bomb.Token)
	assertTurnOnAlivePlayer(t, f.room)
}

func TestScenarioSyllableOnlyIsRejected(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
	f.start(t)
	before := f.room.GameState()
	token := f.room.Token()

	out, err := f.room.SubmitWord("p1", "tra")

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, ReasonSyllableOnly, rejection.Reason)
	assert.Equal(t, "Cannot submit only the syllable", string(rejection.Reason))
	assert.Equal(t, "tra", rejection.Word)
	assert.Empty(t, out.Messages)
	assert.Nil(t, out.Bomb)
	assert.False(t, out.Disarm)

	assert.Equal(t, token, f.room.Token(), "timer keeps running")
	assert.Equal(t, before, f.room.GameState())
	assert.Equal(t, "p1", f.room.CurrentPlayer().ID)
}

func TestSubmitWordRejections(t *testing.T) {
	tests := []struct {
		name   string
		word   string
		reason Reason
	}{
		{"too short", "tr", ReasonTooShort},
		{"too short after trim", "  ab ", ReasonTooShort},
		{"missing syllable", "casa", ReasonMissingSyllable},
		{"only the syllable", "TRA", ReasonSyllableOnly},
		{"not in dictionary", "trabalenguas", ReasonNotInDictionary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
			f.start(t)

			_, err := f.room.SubmitWord("p1", tt.word)

			var rejection *RejectionError
			require.ErrorAs(t, err, &rejection)
			assert.Equal(t, tt.reason, rejection.Reason)
			assert.Equal(t, "p1", f.room.CurrentPlayer().ID)
		})
	}

	t.Run("already used while the syllable lives", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxSyllableLifespan = 2
		f := newFixture(t, cfg, []string{"tra"}, "Bea")
		f.start(t)

		_, err := f.room.SubmitWord("p1", "tractor")
		require.NoError(t, err)
		require.Equal(t, "tra", f.room.Syllable())

		_, err = f.room.SubmitWord("p2", "TRACTOR")
		var rejection *RejectionError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, ReasonAlreadyUsed, rejection.Reason)

		_, err = f.room.SubmitWord("p2", "trampa")
		assert.NoError(t, err)
	})

	t.Run("accepted with every rule satisfied", func(t *testing.T) {
		f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
		f.start(t)
		_, err := f.room.SubmitWord("p1", "contrato")
		assert.NoError(t, err)
	})
}

func TestSubmitWordOutOfTurn(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")

	_, err := f.room.SubmitWord("p1", "tractor")
	assert.ErrorIs(t, err, ErrGameNotInProgress)

	f.start(t)
	_, err = f.room.SubmitWord("p2", "tractor")
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = f.room.SubmitWord("ghost", "tractor")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestExplodeBombIsIdempotent(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
	f.start(t)
	token := f.room.Token()

	_, err := f.room.ExplodeBomb(token)
	require.NoError(t, err)

	out, err := f.room.ExplodeBomb(token)
	assert.ErrorIs(t, err, ErrStaleRound)
	assert.Empty(t, out.Messages)

	p1, _ := f.room.Player("p1")
	assert.Equal(t, 1, p1.Lives, "one firing costs one life")
}

func TestExpiryAfterAcceptedWordIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra", "ca"}, "Bea")
	f.start(t)
	token := f.room.Token()

	_, err := f.room.SubmitWord("p1", "tractor")
	require.NoError(t, err)

	_, err = f.room.ExplodeBomb(token)
	assert.ErrorIs(t, err, ErrStaleRound)

	for _, p := range f.room.players {
		assert.Equal(t, 2, p.Lives)
	}
}

func TestEliminationFinishesGame(t *testing.T) {
	cfg := testConfig()
	cfg.InitialLives = 1
	f := newFixture(t, cfg, []string{"tra"}, "Bea")
	f.start(t)

	out, err := f.room.ExplodeBomb(f.room.Token())
	require.NoError(t, err)

	assert.Equal(t, []events.Type{
		events.TypePlayerEliminated,
		events.TypeGameFinished,
		events.TypeGameStateUpdate,
	}, typesOf(out))
	finished, _ := find[events.GameFinished](t, out)
	assert.Equal(t, events.GameFinished{WinnerID: "p2", WinnerName: "Bea"}, finished)

	assert.Nil(t, out.Bomb)
	assert.True(t, out.Disarm)
	assert.True(t, out.Finished)
	assert.Equal(t, StatusFinished, f.room.Status())
	assert.Zero(t, f.room.TimeRemaining())

	_, err = f.room.ExplodeBomb(f.room.Token())
	assert.ErrorIs(t, err, ErrStaleRound)
	_, err = f.room.SubmitWord("p2", "tractor")
	assert.ErrorIs(t, err, ErrGameNotInProgress)

	result, ok := f.room.Result()
	require.True(t, ok)
	assert.Equal(t, "p2", result.WinnerID)
	require.Len(t, result.Standings, 2)
	assert.Equal(t, Standing{PlayerID: "p2", Name: "Bea", Lives: 1, Place: 1}, result.Standings[0])
	assert.Equal(t, Standing{PlayerID: "p1", Name: "Ana", Lives: 0, Place: 2}, result.Standings[1])
	assert.Equal(t, "p2", result.FinalState.WinnerID)
}

func TestTurnSkipsEliminatedPlayers(t *testing.T) {
	cfg := testConfig()
	cfg.InitialLives = 1
	f := newFixture(t, cfg, []string{"tra"}, "Bea", "Cid")
	f.start(t)

	_, err := f.room.ExplodeBomb(f.room.Token())
	require.NoError(t, err)
	assert.Equal(t, "p2", f.room.CurrentPlayer().ID)

	order := []string{}
	for _, word := range []string{"tractor", "trampa", "contrato"} {
		order = append(order, f.room.CurrentPlayer().ID)
		_, err := f.room.SubmitWord(f.room.CurrentPlayer().ID, word)
		require.NoError(t, err)
		assertTurnOnAlivePlayer(t, f.room)
	}
	assert.Equal(t, []string{"p2", "p3", "p2"}, order)
}

func TestRemoveTurnHolderPassesTurnWithoutLifeLoss(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra", "ca", "pa"}, "Bea", "Cid")
	f.start(t)
	_, err := f.room.SubmitWord("p1", "tractor")
	require.NoError(t, err)
	_, err = f.room.SubmitWord("p2", "cama")
	require.NoError(t, err)
	require.Equal(t, "p3", f.room.CurrentPlayer().ID)
	cid, _ := f.room.Player("p3")
	token := f.room.Token()

	out, err := f.room.RemovePlayer("p3")
	require.NoError(t, err)

	assert.True(t, out.Disarm)
	require.NotNil(t, out.Bomb)
	assert.Greater(t, out.Bomb.Token, token)
	assert.Equal(t, []events.Type{
		events.TypePlayerLeft,
		events.TypeNewSyllable,
		events.TypeGameStateUpdate,
	}, typesOf(out))

	assert.Equal(t, "p1", f.room.CurrentPlayer().ID, "wraps to the first alive player")
	assert.Equal(t, 2, cid.Lives)
	assertTurnOnAlivePlayer(t, f.room)

	_, err = f.room.ExplodeBomb(token)
	assert.ErrorIs(t, err, ErrStaleRound)
}

func TestRemovePlayerBeforeTurnKeepsTurnHolder(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra", "ca"}, "Bea", "Cid")
	f.start(t)
	_, err := f.room.SubmitWord("p1", "tractor")
	require.NoError(t, err)
	require.Equal(t, "p2", f.room.CurrentPlayer().ID)
	token := f.room.Token()

	out, err := f.room.RemovePlayer("p1")
	require.NoError(t, err)

	assert.False(t, out.Disarm)
	assert.Nil(t, out.Bomb)
	assert.Equal(t, []events.Type{events.TypePlayerLeft, events.TypeGameStateUpdate}, typesOf(out))
	assert.Equal(t, "p2", f.room.CurrentPlayer().ID)
	assert.Equal(t, token, f.room.Token())
	assert.Equal(t, "p2", f.room.HostID())
}

func TestRemovePlayerLeavingOneAliveFinishes(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
	f.start(t)

	out, err := f.room.RemovePlayer("p1")
	require.NoError(t, err)

	assert.True(t, out.Finished)
	assert.Nil(t, out.Bomb)
	finished, _ := find[events.GameFinished](t, out)
	assert.Equal(t, "p2", finished.WinnerID)
	assert.Equal(t, StatusFinished, f.room.Status())

	result, ok := f.room.Result()
	require.True(t, ok)
	assert.Equal(t, 2, result.Standings[1].Place)
	assert.Equal(t, "p1", result.Standings[1].PlayerID)
}

func TestRemovePlayerInLobby(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea", "Cid")

	out, err := f.room.RemovePlayer("p1")
	require.NoError(t, err)

	left, msg := find[events.PlayerLeft](t, out)
	assert.Equal(t, "p1", left.PlayerID)
	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, msg.To)
	assert.Equal(t, "p2", f.room.HostID(), "host passes to the earliest player")

	var refreshed []string
	for _, m := range out.Messages {
		if joined, ok := m.Event.(events.RoomJoined); ok {
			assert.Equal(t, "p2", joined.Room.HostID)
			refreshed = append(refreshed, joined.PlayerID)
		}
	}
	assert.Equal(t, []string{"p2", "p3"}, refreshed)

	_, err = f.room.RemovePlayer("p1")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRemoveLastPlayer(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"})

	out, err := f.room.RemovePlayer("p1")
	require.NoError(t, err)
	assert.Zero(t, f.room.Len())

	_, msg := find[events.PlayerLeft](t, out)
	assert.Equal(t, []string{"c1"}, msg.To)
}

func TestSyllableLifespan(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSyllableLifespan = 2
	cfg.InitialLives = 3
	f := newFixture(t, cfg, []string{"tra", "ca"}, "Bea")
	f.start(t)

	state := f.room.GameState()
	assert.Equal(t, "tra", state.BombState.CurrentSyllable)
	assert.Equal(t, 2, state.BombState.SyllableTurnsRemaining)

	_, err := f.room.SubmitWord("p1", "tractor")
	require.NoError(t, err)
	state = f.room.GameState()
	assert.Equal(t, "tra", state.BombState.CurrentSyllable, "carries over")
	assert.Equal(t, 1, state.BombState.SyllableTurnsRemaining)
	assert.Equal(t, []string{"tractor"}, state.UsedWordsInRound)

	_, err = f.room.ExplodeBomb(f.room.Token())
	require.NoError(t, err)
	state = f.room.GameState()
	assert.Equal(t, "ca", state.BombState.CurrentSyllable, "expired after two turns")
	assert.Equal(t, 2, state.BombState.SyllableTurnsRemaining)
	assert.Empty(t, state.UsedWordsInRound)
}

func TestBonusLettersGrantLife(t *testing.T) {
	cfg := testConfig()
	cfg.BonusAlphabet = map[rune]int{'t': 1, 'r': 1, 'a': 1, 'p': 1}
	f := newFixture(t, cfg, []string{"tra"}, "Bea")
	f.start(t)

	state := f.room.GameState()
	assert.Equal(t, []string{"a", "p", "r", "t"}, state.CurrentBonusLetters)

	out, err := f.room.SubmitWord("p1", "tractor")
	require.NoError(t, err)
	accepted, _ := find[events.WordAccepted](t, out)
	assert.False(t, accepted.GainedLife)

	p1, _ := f.room.Player("p1")
	assert.Equal(t, map[rune]int{'t': 1, 'r': 1, 'a': 1}, p1.bonus)

	_, err = f.room.SubmitWord("p2", "contrato")
	require.NoError(t, err)

	out, err = f.room.SubmitWord("p1", "trampa")
	require.NoError(t, err)
	accepted, _ = find[events.WordAccepted](t, out)
	assert.True(t, accepted.GainedLife)
	assert.Equal(t, 3, p1.Lives)
	assert.Empty(t, p1.bonus, "progress resets")
}

func TestBonusLettersAtMaxLives(t *testing.T) {
	p := newPlayer("p1", "c1", "Ana", 3)
	gained := p.applyBonus("tractor", map[rune]int{'t': 1, 'r': 1}, 3)
	assert.False(t, gained)
	assert.Equal(t, 3, p.Lives)
	assert.Empty(t, p.bonus)
}

func TestBonusLettersWithWeights(t *testing.T) {
	p := newPlayer("p1", "c1", "Ana", 1)
	alphabet := map[rune]int{'a': 2, 'x': 0}

	assert.False(t, p.applyBonus("casa", alphabet, 3), "repeated letters count once per word")
	assert.Equal(t, 1, p.bonus['a'])
	assert.True(t, p.applyBonus("cama", alphabet, 3))
	assert.Equal(t, 2, p.Lives)
}

func TestBombDurationWithinBounds(t *testing.T) {
	cfg := testConfig()
	cfg.MinTurnDuration = 5
	cfg.MaxTurnDuration = 8
	f := newFixture(t, cfg, []string{"tra"}, "Bea")

	for i := 0; i < 200; i++ {
		d := f.room.drawDuration()
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.LessOrEqual(t, d, 8*time.Second)
	}
}

func TestTimeRemainingFollowsClock(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
	f.start(t)

	f.clock.Advance(3 * time.Second)
	assert.Equal(t, 7*time.Second, f.room.TimeRemaining())
	assert.Equal(t, 7.0, f.room.GameState().BombState.TimeRemaining)

	f.clock.Advance(20 * time.Second)
	assert.Zero(t, f.room.TimeRemaining())
}

func TestTick(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")

	_, err := f.room.Tick(0)
	assert.ErrorIs(t, err, ErrStaleRound)

	f.start(t)
	f.clock.Advance(4 * time.Second)

	out, err := f.room.Tick(f.room.Token())
	require.NoError(t, err)
	update, msg := find[events.BombTimerUpdate](t, out)
	assert.Equal(t, 6.0, update.TimeRemaining)
	assert.ElementsMatch(t, []string{"c1", "c2"}, msg.To)

	_, err = f.room.Tick(f.room.Token() - 1)
	assert.ErrorIs(t, err, ErrStaleRound)
}

func TestAbort(t *testing.T) {
	f := newFixture(t, testConfig(), []string{"tra"}, "Bea")
	f.start(t)

	out := f.room.Abort("Internal server error")

	assert.True(t, out.Disarm)
	assert.False(t, out.Finished)
	assert.Equal(t, StatusFinished, f.room.Status())
	e, msg := find[events.Error](t, out)
	assert.Equal(t, "Internal server error", e.Message)
	assert.ElementsMatch(t, []string{"c1", "c2"}, msg.To)

	_, ok := f.room.Result()
	assert.False(t, ok)
}

func TestClientMessage(t *testing.T) {
	msg, ok := ClientMessage(fmt.Errorf("join: %w", ErrRoomFull))
	assert.True(t, ok)
	assert.Equal(t, "Room is full", msg)

	_, ok = ClientMessage(errors.New("disk on fire"))
	assert.False(t, ok)
}
