package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bombparty/go/internal/game/dictionary"
	"github.com/mcdev12/bombparty/go/internal/game/gateway"
	"github.com/mcdev12/bombparty/go/internal/game/manager"
	"github.com/mcdev12/bombparty/go/internal/game/relay"
	"github.com/mcdev12/bombparty/go/internal/game/room"
	"github.com/mcdev12/bombparty/go/internal/history"
	historydb "github.com/mcdev12/bombparty/go/internal/history/db"
)

type Services struct {
	Manager *manager.Manager
	Gateway *gateway.Service

	// optional, nil when disabled
	Relay   *relay.Publisher
	History *history.App
	DB      *sql.DB
}

// thinWordLists lists the language and difficulty pairs whose frequency band
// no syllable of the loaded word lists satisfies
func thinWordLists(dict *dictionary.Dictionary, defaults room.Config) []room.Config {
	var thin []room.Config
	for _, lang := range []dictionary.Language{dictionary.Spanish, dictionary.English} {
		for _, difficulty := range []room.Difficulty{room.Beginner, room.Intermediate, room.Advanced} {
			cfg := defaults
			cfg.Language, cfg.Difficulty = lang, difficulty
			if !dict.Covers(lang, cfg.Band()) {
				thin = append(thin, cfg)
			}
		}
	}
	return thin
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Dictionary → optional archive and relay → Manager → Gateway

	paths, err := config.wordLists()
	if err != nil {
		return nil, err
	}
	dict, err := dictionary.LoadFiles(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	log.Info().
		Int("spanish_words", dict.Size(dictionary.Spanish)).
		Int("english_words", dict.Size(dictionary.English)).
		Msg("dictionary loaded")

	defaults, err := config.roomDefaults()
	if err != nil {
		return nil, err
	}

	for _, thin := range thinWordLists(dict, defaults) {
		log.Warn().
			Str("language", string(thin.Language)).
			Str("difficulty", string(thin.Difficulty)).
			Msg("word list too small for difficulty, drawing from the most common syllables; set dictionary.word_lists")
	}

	services := &Services{}
	opts := []manager.Option{
		manager.WithDefaults(defaults),
		manager.WithTickInterval(getEnvAsDuration("BOMB_TICK_INTERVAL", config.Bomb.TickInterval)),
	}

	// History: Database layer → Repository layer → App layer
	var archive gateway.Archive
	if getEnvAsBool("HISTORY_ENABLED", false) {
		database, err := setupDatabase(ctx)
		if err != nil {
			return nil, err
		}
		queries := historydb.New(database)
		historyRepo := history.NewRepository(queries, database)
		services.History = history.NewApp(historyRepo, config.History.QueueSize)
		services.DB = database

		opts = append(opts, manager.WithRecorder(services.History))
		archive = services.History
	}

	services.Manager = manager.New(dict, opts...)

	if natsURL := getEnv("NATS_URL", ""); natsURL != "" {
		publisher, err := relay.NewPublisher(ctx, config.relayConfig(natsURL))
		if err != nil {
			services.close()
			return nil, fmt.Errorf("failed to start relay: %w", err)
		}
		services.Relay = publisher
		services.Manager.AddSink(publisher)
	}

	services.Gateway = gateway.NewService(
		gateway.Config{ConnectionConfig: config.connectionConfig()},
		services.Manager,
		services.Manager,
		archive,
	)
	services.Manager.AddSink(services.Gateway.Connections())

	return services, nil
}

// close releases what setupServices opened, in reverse order
func (s *Services) close() {
	if s.Manager != nil {
		s.Manager.Stop()
	}
	if s.Relay != nil {
		s.Relay.Close()
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
