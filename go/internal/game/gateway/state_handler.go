package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bombparty/go/internal/game/events"
	"github.com/mcdev12/bombparty/go/internal/game/room"
	"github.com/mcdev12/bombparty/go/internal/history"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// StateProvider exposes read-only views of live rooms
type StateProvider interface {
	Rooms() []room.Summary
	Snapshot(roomID string) (events.GameStateDTO, error)
}

// Archive lists finished games
type Archive interface {
	Recent(ctx context.Context, limit int) ([]history.Game, error)
}

// StateHandler handles HTTP requests for room state
type StateHandler struct {
	stateProvider StateProvider
	archive       Archive
}

// NewStateHandler creates a new state handler. archive may be nil.
func NewStateHandler(provider StateProvider, archive Archive) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
		archive:       archive,
	}
}

// HandleListRooms handles GET /api/rooms
func (h *StateHandler) HandleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stateProvider.Rooms())
}

// HandleGetRoomState handles GET /api/rooms/{id}/state
func (h *StateHandler) HandleGetRoomState(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	state, err := h.stateProvider.Snapshot(roomID)
	if errors.Is(err, room.ErrRoomNotFound) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room state")
		http.Error(w, "Failed to get room state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleRecentGames handles GET /api/games/recent?limit=n
func (h *StateHandler) HandleRecentGames(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecentLimit)
	}

	games, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list recent games")
		http.Error(w, "Failed to list recent games", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", h.HandleListRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/state", h.HandleGetRoomState).Methods(http.MethodGet)
	if h.archive != nil {
		api.HandleFunc("/games/recent", h.HandleRecentGames).Methods(http.MethodGet)
	}
}
