package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/bombparty/go/internal/game/room"
	"github.com/mcdev12/bombparty/go/internal/history/db"
	"github.com/mcdev12/bombparty/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	InsertGame(ctx context.Context, arg db.InsertGameParams) error
	InsertGamePlayer(ctx context.Context, arg db.InsertGamePlayerParams) error
	ListRecentGames(ctx context.Context, limit int32) ([]db.Game, error)
	ListGamePlayers(ctx context.Context, gameIds []uuid.UUID) ([]db.GamePlayer, error)
}

// Repository implements archive data access operations
type Repository struct {
	queries Querier
	sqlDB   *sql.DB
}

// NewRepository creates a new history repository
func NewRepository(queries Querier, sqlDB *sql.DB) *Repository {
	return &Repository{
		queries: queries,
		sqlDB:   sqlDB,
	}
}

// SaveGame stores a finished game and its standings in one transaction
func (r *Repository) SaveGame(ctx context.Context, result room.Result) (uuid.UUID, error) {
	finalState, err := json.Marshal(result.FinalState)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal final state: %w", err)
	}

	id := uuid.New()
	err = sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) *db.Queries { return db.New(tx) }, func(q *db.Queries) error {
		if err := q.InsertGame(ctx, db.InsertGameParams{
			ID:         id,
			RoomCode:   result.RoomID,
			WinnerID:   result.WinnerID,
			WinnerName: result.WinnerName,
			Language:   result.Language,
			Difficulty: result.Difficulty,
			StartedAt:  result.StartedAt,
			FinishedAt: result.FinishedAt,
			FinalState: pqtype.NullRawMessage{RawMessage: finalState, Valid: len(finalState) > 0},
		}); err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}

		for _, s := range result.Standings {
			if err := q.InsertGamePlayer(ctx, db.InsertGamePlayerParams{
				GameID:    id,
				PlayerID:  s.PlayerID,
				Name:      s.Name,
				Lives:     int32(s.Lives),
				WordsUsed: int32(s.WordsUsed),
				Place:     int32(s.Place),
			}); err != nil {
				return fmt.Errorf("failed to insert game player %s: %w", s.PlayerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// RecentGames returns the most recently finished games, newest first
func (r *Repository) RecentGames(ctx context.Context, limit int) ([]Game, error) {
	rows, err := r.queries.ListRecentGames(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games: %w", err)
	}
	if len(rows) == 0 {
		return []Game{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, g := range rows {
		ids[i] = g.ID
	}
	players, err := r.queries.ListGamePlayers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list game players: %w", err)
	}

	byGame := make(map[uuid.UUID][]Player, len(rows))
	for _, p := range players {
		byGame[p.GameID] = append(byGame[p.GameID], r.dbPlayerToModel(p))
	}

	games := make([]Game, len(rows))
	for i, g := range rows {
		games[i] = r.dbGameToModel(g, byGame[g.ID])
	}
	return games, nil
}

func (r *Repository) dbGameToModel(g db.Game, players []Player) Game {
	if players == nil {
		players = []Player{}
	}
	return Game{
		ID:         g.ID,
		RoomCode:   g.RoomCode,
		WinnerID:   g.WinnerID,
		WinnerName: g.WinnerName,
		Language:   g.Language,
		Difficulty: g.Difficulty,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
		Players:    players,
	}
}

func (r *Repository) dbPlayerToModel(p db.GamePlayer) Player {
	return Player{
		PlayerID:  p.PlayerID,
		Name:      p.Name,
		Lives:     int(p.Lives),
		WordsUsed: int(p.WordsUsed),
		Place:     int(p.Place),
	}
}
