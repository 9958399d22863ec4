package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const serviceVersion = "1.0.0"

func setupServer(services *Services, config *Config) *http.Server {
	router := mux.NewRouter()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodOptions,
		},
		AllowedOrigins: config.Gateway.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	// Register WebSocket and state routes
	services.Gateway.RegisterRoutes(router)

	// Add health check endpoint
	setupHealthCheck(router)

	// Add service info
	setupInfo(router, services)

	// Wrap with CORS
	handler := c.Handler(router)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", getEnvAsInt("PORT", 8080)),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupHealthCheck(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	}).Methods(http.MethodGet)
}

func setupInfo(router *mux.Router, services *Services) {
	router.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		gatewayStats := services.Gateway.GetStats()
		info := map[string]interface{}{
			"service":     "bombparty",
			"version":     serviceVersion,
			"connections": gatewayStats["total_connections"],
			"game":        services.Manager.Stats(),
			"relay":       services.Relay != nil,
			"history":     services.History != nil,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			log.Error().Err(err).Msg("failed to write info response")
		}
	}).Methods(http.MethodGet)
}
