package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bombparty/go/internal/game/room"
)

const (
	DefaultQueueSize = 64
	saveTimeout      = 5 * time.Second
	maxRecentLimit   = 100
)

var ErrInvalidLimit = errors.New("limit must be between 1 and 100")

// GamesRepository defines what the app layer needs from the repository
type GamesRepository interface {
	SaveGame(ctx context.Context, result room.Result) (uuid.UUID, error)
	RecentGames(ctx context.Context, limit int) ([]Game, error)
}

// App archives finished games off the room critical path
type App struct {
	repo  GamesRepository
	queue chan room.Result

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewApp creates a new history App with a queue of the given size
func NewApp(repo GamesRepository, queueSize int) *App {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &App{
		repo:  repo,
		queue: make(chan room.Result, queueSize),
		done:  make(chan struct{}),
	}
}

// Record queues a finished game. It never blocks; a full queue drops the game.
func (a *App) Record(result room.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		log.Warn().Str("room_id", result.RoomID).Msg("history recorder stopped, dropping game")
		return
	}

	select {
	case a.queue <- result:
	default:
		log.Warn().Str("room_id", result.RoomID).Msg("history queue full, dropping game")
	}
}

// Start drains the queue until ctx is done, then saves whatever is still queued
func (a *App) Start(ctx context.Context) error {
	defer close(a.done)
	log.Info().Msg("history recorder started")

	for {
		select {
		case result := <-a.queue:
			a.save(result)
		case <-ctx.Done():
			a.mu.Lock()
			a.stopped = true
			close(a.queue)
			a.mu.Unlock()

			for result := range a.queue {
				a.save(result)
			}
			log.Info().Msg("history recorder stopped")
			return nil
		}
	}
}

// Done is closed once Start has returned
func (a *App) Done() <-chan struct{} {
	return a.done
}

func (a *App) save(result room.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	id, err := a.repo.SaveGame(ctx, result)
	if err != nil {
		log.Error().Err(err).Str("room_id", result.RoomID).Msg("failed to archive game")
		return
	}
	log.Info().
		Str("room_id", result.RoomID).
		Str("game_id", id.String()).
		Str("winner_id", result.WinnerID).
		Msg("game archived")
}

// Recent lists the most recently finished games
func (a *App) Recent(ctx context.Context, limit int) ([]Game, error) {
	if limit < 1 || limit > maxRecentLimit {
		return nil, ErrInvalidLimit
	}
	return a.repo.RecentGames(ctx, limit)
}
