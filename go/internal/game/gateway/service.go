package gateway

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Service is the player-facing gateway: WebSocket transport plus the JSON
// state endpoints
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a new gateway service. archive may be nil.
func NewService(config Config, games Games, state StateProvider, archive Archive) *Service {
	connectionManager := NewConnectionManager(config.ConnectionConfig, NewDispatcher(games))

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		stateHandler:      NewStateHandler(state, archive),
	}
}

// Connections is the sink that routes room events to sockets
func (s *Service) Connections() *ConnectionManager {
	return s.connectionManager
}

// Start blocks until ctx is done, then closes every connection
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting gateway service")
	<-ctx.Done()

	log.Info().Msg("gateway service shutting down")
	return s.Stop()
}

// Stop closes every connection
func (s *Service) Stop() error {
	s.connectionManager.CloseAll()
	log.Info().Msg("gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and state routes
func (s *Service) RegisterRoutes(r *mux.Router) {
	s.wsHandler.RegisterRoutes(r)
	s.stateHandler.RegisterStateRoutes(r)
	log.Info().Msg("gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "bombparty_gateway"
	stats["status"] = "running"
	return stats
}
