package transform

import (
	"strings"
	"time"

	"railmart/internal/gtfs"
)

// Segments canonicalizes trip segments from all sources: times and station
// names are normalized, departure time falls back to arrival time, the night
// flag is derived from the departure hour, duplicates collapse on
// (departure stop, arrival stop, departure time, arrival time, operator,
// route), and rows missing any of the four stop/time fields are dropped
// since those fields are mandatory for a fact row to be meaningful.
func Segments(segments []gtfs.TripSegment, now time.Time) []gtfs.TripSegment {
	loadTS := now.UTC().Format(time.RFC3339)

	type dedupKey struct {
		depStop, arrStop, depTime, arrTime, operator, route string
	}
	seen := make(map[dedupKey]bool, len(segments))

	out := make([]gtfs.TripSegment, 0, len(segments))
	for _, seg := range segments {
		seg.Country = NormalizeCountry(seg.Country)
		seg.DepartureStation = NormalizeStationName(seg.DepartureStation)
		seg.ArrivalStation = NormalizeStationName(seg.ArrivalStation)
		seg.DepartureTime = normalizeTimePtr(seg.DepartureTime)
		seg.ArrivalTime = normalizeTimePtr(seg.ArrivalTime)
		if seg.ServiceDate != nil {
			d := strings.TrimSpace(*seg.ServiceDate)
			if d == "" {
				seg.ServiceDate = nil
			} else {
				seg.ServiceDate = &d
			}
		}

		if seg.DepartureTime == nil {
			seg.DepartureTime = seg.ArrivalTime
		}
		seg.IsNight = IsNight(deref(seg.DepartureTime))

		if seg.DepartureStopID == "" || seg.ArrivalStopID == "" ||
			seg.DepartureTime == nil || seg.ArrivalTime == nil {
			continue
		}

		key := dedupKey{
			depStop:  seg.DepartureStopID,
			arrStop:  seg.ArrivalStopID,
			depTime:  deref(seg.DepartureTime),
			arrTime:  deref(seg.ArrivalTime),
			operator: seg.Operator,
			route:    seg.RouteID,
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		seg.LoadTimestamp = loadTS
		out = append(out, seg)
	}
	return out
}

// TripStops canonicalizes itinerary rows: times are normalized and rows
// missing a trip or stop id are dropped.
func TripStops(stops []gtfs.TripStop) []gtfs.TripStop {
	out := make([]gtfs.TripStop, 0, len(stops))
	for _, st := range stops {
		if st.TripID == "" || st.StopID == "" {
			continue
		}
		st.Country = NormalizeCountry(st.Country)
		st.ArrivalTime = normalizeTimePtr(st.ArrivalTime)
		st.DepartureTime = normalizeTimePtr(st.DepartureTime)
		out = append(out, st)
	}
	return out
}

func normalizeTimePtr(value *string) *string {
	if value == nil {
		return nil
	}
	normalized, ok := NormalizeTime(*value)
	if !ok {
		return nil
	}
	return &normalized
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
