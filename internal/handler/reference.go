package handler

import (
	"net/http"

	"railmart/internal/warehouse"
)

// Countries lists the countries that have trips in the warehouse.
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.store.Countries(r.Context())
	if err != nil {
		h.logger.Error("list countries", "error", err)
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if countries == nil {
		countries = []warehouse.Country{}
	}
	h.writeJSON(w, http.StatusOK, countries)
}

// Operators lists all known operators.
func (h *Handler) Operators(w http.ResponseWriter, r *http.Request) {
	ops, err := h.store.Operators(r.Context())
	if err != nil {
		h.logger.Error("list operators", "error", err)
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if ops == nil {
		ops = []warehouse.Operator{}
	}
	h.writeJSON(w, http.StatusOK, ops)
}

// Coverage reports per-country trip counts for EU, EFTA and candidate
// countries, including members with zero coverage.
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	cov, err := h.store.Coverage(r.Context())
	if err != nil {
		h.logger.Error("coverage", "error", err)
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if cov == nil {
		cov = []warehouse.CountryCoverage{}
	}
	h.writeJSON(w, http.StatusOK, cov)
}

// CoverageStats reports warehouse-wide totals.
func (h *Handler) CoverageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Error("coverage stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
