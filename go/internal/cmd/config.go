package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/bombparty/go/internal/game/dictionary"
	"github.com/mcdev12/bombparty/go/internal/game/events"
	"github.com/mcdev12/bombparty/go/internal/game/gateway"
	"github.com/mcdev12/bombparty/go/internal/game/relay"
	"github.com/mcdev12/bombparty/go/internal/game/room"
	"github.com/mcdev12/bombparty/go/internal/history"
)

type Config struct {
	// Room holds the defaults a create_room without config gets
	Room events.RoomSettings `yaml:"room"`

	Dictionary struct {
		WordLists map[string]string `yaml:"word_lists"`
	} `yaml:"dictionary"`

	Bomb struct {
		TickInterval time.Duration `yaml:"tick_interval"`
	} `yaml:"bomb"`

	Gateway struct {
		AllowedOrigins    []string `yaml:"allowed_origins"`
		MaxMessageSize    int64    `yaml:"max_message_size"`
		SendBufferSize    int      `yaml:"send_buffer_size"`
		MessagesPerSecond float64  `yaml:"messages_per_second"`
		MessageBurst      int      `yaml:"message_burst"`
	} `yaml:"gateway"`

	Relay struct {
		Stream        string        `yaml:"stream"`
		SubjectPrefix string        `yaml:"subject_prefix"`
		QueueSize     int           `yaml:"queue_size"`
		MaxAge        time.Duration `yaml:"max_age"`
	} `yaml:"relay"`

	History struct {
		QueueSize int `yaml:"queue_size"`
	} `yaml:"history"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Bomb.TickInterval = time.Second

	conn := gateway.DefaultConnectionConfig()
	cfg.Gateway.AllowedOrigins = []string{"*"}
	cfg.Gateway.MaxMessageSize = conn.MaxMessageSize
	cfg.Gateway.SendBufferSize = conn.SendBufferSize
	cfg.Gateway.MessagesPerSecond = conn.MessagesPerSecond
	cfg.Gateway.MessageBurst = conn.MessageBurst

	rel := relay.DefaultConfig()
	cfg.Relay.Stream = rel.StreamName
	cfg.Relay.SubjectPrefix = rel.SubjectPrefix
	cfg.Relay.QueueSize = rel.QueueSize
	cfg.Relay.MaxAge = rel.MaxAge

	cfg.History.QueueSize = history.DefaultQueueSize
	return &cfg
}

// loadConfig reads the YAML file over the defaults. A missing file yields
// the defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// roomDefaults validates the configured room defaults
func (c *Config) roomDefaults() (room.Config, error) {
	cfg, err := room.ConfigFromSettings(&c.Room, room.DefaultConfig())
	if err != nil {
		return room.Config{}, fmt.Errorf("invalid room defaults: %w", err)
	}
	return cfg, nil
}

func (c *Config) wordLists() (map[dictionary.Language]string, error) {
	paths := make(map[dictionary.Language]string, len(c.Dictionary.WordLists))
	for name, path := range c.Dictionary.WordLists {
		lang, ok := dictionary.ParseLanguage(name)
		if !ok {
			return nil, fmt.Errorf("unknown word list language %q", name)
		}
		paths[lang] = path
	}
	return paths, nil
}

func (c *Config) connectionConfig() gateway.ConnectionConfig {
	conn := gateway.DefaultConnectionConfig()
	if c.Gateway.MaxMessageSize > 0 {
		conn.MaxMessageSize = c.Gateway.MaxMessageSize
	}
	if c.Gateway.SendBufferSize > 0 {
		conn.SendBufferSize = c.Gateway.SendBufferSize
	}
	if c.Gateway.MessagesPerSecond > 0 {
		conn.MessagesPerSecond = c.Gateway.MessagesPerSecond
	}
	if c.Gateway.MessageBurst > 0 {
		conn.MessageBurst = c.Gateway.MessageBurst
	}
	return conn
}

func (c *Config) relayConfig(url string) relay.Config {
	rel := relay.DefaultConfig()
	rel.URL = url
	if c.Relay.Stream != "" {
		rel.StreamName = c.Relay.Stream
	}
	if c.Relay.SubjectPrefix != "" {
		rel.SubjectPrefix = c.Relay.SubjectPrefix
	}
	if c.Relay.QueueSize > 0 {
		rel.QueueSize = c.Relay.QueueSize
	}
	if c.Relay.MaxAge > 0 {
		rel.MaxAge = c.Relay.MaxAge
	}
	return rel
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
