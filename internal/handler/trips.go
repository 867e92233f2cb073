package handler

import (
	"net/http"
	"strconv"

	"railmart/internal/warehouse"
)

const (
	defaultTripLimit = 100
	maxTripLimit     = 10000
)

// Trips lists fact rows joined out to their dimensions. Filters come from
// the query string; all are optional.
func (h *Handler) Trips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := warehouse.TripFilter{
		CountryCode:      q.Get("country_code"),
		OperatorID:       q.Get("operator_id"),
		DepartureStation: q.Get("departure_station"),
		ArrivalStation:   q.Get("arrival_station"),
		Limit:            defaultTripLimit,
	}

	if v := q.Get("is_night"); v != "" {
		night, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "is_night must be true or false")
			return
		}
		filter.IsNight = &night
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxTripLimit {
			n = maxTripLimit
		}
		filter.Limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	trips, err := h.store.Trips(r.Context(), filter)
	if err != nil {
		h.logger.Error("list trips", "error", err)
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if trips == nil {
		trips = []warehouse.Trip{}
	}
	h.writeJSON(w, http.StatusOK, trips)
}

// TripStops returns the ordered itinerary of one trip. The trip is addressed
// by its business id plus operator and country, all required.
func (h *Handler) TripStops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tripID := q.Get("trip_id")
	operator := q.Get("operator_id")
	country := q.Get("country_code")
	if tripID == "" || operator == "" || country == "" {
		h.writeError(w, http.StatusBadRequest, "trip_id, operator_id and country_code are required")
		return
	}

	stops, err := h.store.TripStops(r.Context(), tripID, operator, country)
	if err != nil {
		h.logger.Error("list trip stops", "error", err)
		h.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if stops == nil {
		stops = []warehouse.TripStop{}
	}
	h.writeJSON(w, http.StatusOK, stops)
}
