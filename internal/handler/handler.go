// Package handler serves the warehouse readout as JSON.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"railmart/internal/warehouse"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	store  *warehouse.Store
	logger *slog.Logger
}

// New creates a Handler.
func New(store *warehouse.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
