// Package server wires the HTTP routes and runs the API server.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"railmart/internal/config"
	"railmart/internal/handler"
	"railmart/internal/warehouse"
)

// Server is the HTTP server for the warehouse readout.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, store *warehouse.Store, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	h := handler.New(store, logger)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /trips", h.Trips)
	mux.HandleFunc("GET /trip_stops", h.TripStops)
	mux.HandleFunc("GET /countries", h.Countries)
	mux.HandleFunc("GET /operators", h.Operators)
	mux.HandleFunc("GET /coverage", h.Coverage)
	mux.HandleFunc("GET /stats/coverage", h.CoverageStats)

	return &Server{mux: mux, cfg: cfg, logger: logger}
}

// ListenAndServe starts the HTTP server on the configured port.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("listening", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(s.mux, s.logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv.ListenAndServe()
}
