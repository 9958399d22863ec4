package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePutsTypeDiscriminator(t *testing.T) {
	data, err := Encode(BombExploded{PlayerID: "p2", PlayerName: "Bea", LivesRemaining: 1})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "BombExplodedEvent", raw["type"])
	assert.Equal(t, "p2", raw["playerId"])
	assert.Equal(t, "Bea", raw["playerName"])
	assert.EqualValues(t, 1, raw["livesRemaining"])
}

func TestEncodeEmptyPayload(t *testing.T) {
	data, err := Encode(PlayerLeft{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PlayerLeft","playerId":""}`, string(data))
}

func TestDecodeRoundTripsEveryEvent(t *testing.T) {
	state := GameStateDTO{
		RoomID:  "AB12CD",
		Status:  "playing",
		Players: []PlayerDTO{{ID: "p1", Name: "Ana", Lives: 2, IsAlive: true, IsCurrentTurn: true}},
		BombState: &BombStateDTO{
			CurrentSyllable:        "tra",
			TimeRemaining:          7.5,
			MaxTime:                9,
			SyllableTurnsRemaining: 1,
		},
	}

	all := []Event{
		RoomCreated{Room: RoomDTO{ID: "AB12CD", HostID: "p1"}, PlayerID: "p1"},
		RoomJoined{Room: RoomDTO{ID: "AB12CD"}, PlayerID: "p2"},
		PlayerJoined{Player: PlayerDTO{ID: "p2", Name: "Bea", Lives: 2, IsAlive: true}},
		PlayerLeft{PlayerID: "p2"},
		GameStarted{GameState: state},
		GameStateUpdate{GameState: state},
		NewSyllable{Syllable: "tra", BombTime: 12.25},
		BombTimerUpdate{TimeRemaining: 3.5},
		WordAccepted{Word: "tractor", PlayerID: "p1", GainedLife: true},
		WordRejected{Word: "tra", Reason: "Cannot submit only the syllable"},
		BombExploded{PlayerID: "p2", PlayerName: "Bea", LivesRemaining: 1},
		PlayerEliminated{PlayerID: "p2", PlayerName: "Bea"},
		GameFinished{WinnerID: "p1", WinnerName: "Ana"},
		Error{Message: "Room not found"},
	}

	for _, want := range all {
		t.Run(string(want.EventType()), func(t *testing.T) {
			data, err := Encode(want)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"Teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func intp(v int) *int { return &v }

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Command
	}{
		{
			name:  "create room with partial config",
			frame: `{"type":"create_room","playerName":"Ana","config":{"language":"ENGLISH","maxPlayers":4}}`,
			want: CreateRoom{
				PlayerName: "Ana",
				Config:     &RoomSettings{Language: "ENGLISH", MaxPlayers: intp(4)},
			},
		},
		{
			name:  "create room keeps an explicit zero",
			frame: `{"type":"create_room","playerName":"Ana","config":{"maxPlayers":0}}`,
			want: CreateRoom{
				PlayerName: "Ana",
				Config:     &RoomSettings{MaxPlayers: intp(0)},
			},
		},
		{
			name:  "create room without config",
			frame: `{"type":"create_room","playerName":"Ana"}`,
			want:  CreateRoom{PlayerName: "Ana"},
		},
		{
			name:  "join",
			frame: `{"type":"join_room","roomId":"AB12CD","playerName":"Bea"}`,
			want:  JoinRoom{RoomID: "AB12CD", PlayerName: "Bea"},
		},
		{
			name:  "start",
			frame: `{"type":"start_game","roomId":"AB12CD"}`,
			want:  StartGame{RoomID: "AB12CD"},
		},
		{
			name:  "submit",
			frame: `{"type":"submit_word","roomId":"AB12CD","playerId":"p1","word":"tractor"}`,
			want:  SubmitWord{RoomID: "AB12CD", PlayerID: "p1", Word: "tractor"},
		},
		{
			name:  "leave",
			frame: `{"type":"leave_room","roomId":"AB12CD","playerId":"p1"}`,
			want:  LeaveRoom{RoomID: "AB12CD", PlayerID: "p1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.frame))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		_, err := ParseCommand([]byte("hello"))
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := ParseCommand([]byte(`{"type":"fly"}`))
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := ParseCommand([]byte(`{"type":"join_room","roomId":42}`))
		assert.Error(t, err)
	})
}

func TestEncodeCommand(t *testing.T) {
	data, err := EncodeCommand(SubmitWord{RoomID: "AB12CD", PlayerID: "p1", Word: "tractor"})
	require.NoError(t, err)

	got, err := ParseCommand(data)
	require.NoError(t, err)
	assert.Equal(t, SubmitWord{RoomID: "AB12CD", PlayerID: "p1", Word: "tractor"}, got)
}
