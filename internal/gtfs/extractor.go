// Package gtfs extracts rail trip segments and full itineraries from GTFS
// schedule archives held in memory.
package gtfs

import (
	"archive/zip"
	"bytes"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"railmart/internal/csvio"
)

// ExtractFeed parses one feed archive into trip segments and itinerary rows.
// It fails softly: an invalid archive or a missing/empty mandatory table
// (trips, stop_times, stops) yields an empty Extract, never an error; the
// offending source simply contributes nothing to the run.
//
// Cross-border detection relies on a per-stop country attribute that only
// some feeds carry. When absent the flag is always false: unknown is
// deliberately not distinguished from not-cross-border, a known precision
// limitation.
func ExtractFeed(content []byte, country, operator string, logger *slog.Logger) *Extract {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		logger.Warn("feed is not a valid zip archive", "operator", operator, "country", country)
		return &Extract{}
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	trips := decodeTable[Trip](files, "trips.txt", logger)
	stopTimes := decodeTable[StopTime](files, "stop_times.txt", logger)
	stops := decodeTable[Stop](files, "stops.txt", logger)
	calendar := decodeTable[CalendarEntry](files, "calendar.txt", logger)
	calendarDates := decodeTable[CalendarDate](files, "calendar_dates.txt", logger)

	if len(trips) == 0 || len(stopTimes) == 0 || len(stops) == 0 {
		logger.Warn("feed missing mandatory table, treating as empty",
			"operator", operator,
			"trips", len(trips), "stop_times", len(stopTimes), "stops", len(stops),
		)
		return &Extract{}
	}

	sortStopTimes(stopTimes)

	first := make(map[string]StopTime, len(trips))
	last := make(map[string]StopTime, len(trips))
	for _, st := range stopTimes {
		if _, ok := first[st.TripID]; !ok {
			first[st.TripID] = st
		}
		last[st.TripID] = st
	}

	stopsByID := make(map[string]Stop, len(stops))
	for _, s := range stops {
		if _, ok := stopsByID[s.StopID]; !ok {
			stopsByID[s.StopID] = s
		}
	}

	serviceDates := buildServiceDateMap(calendar, calendarDates)

	countryCode := strings.ToUpper(strings.TrimSpace(country))

	ex := &Extract{}
	for _, trip := range trips {
		f, ok := first[trip.TripID]
		if !ok {
			continue
		}
		l := last[trip.TripID]

		// Endpoint boarding can be encoded as arrival-only or departure-only;
		// fall back to the paired field when the primary one is blank.
		depTime := firstNonBlank(f.ArrivalTime, f.DepartureTime)
		arrTime := firstNonBlank(l.ArrivalTime, l.DepartureTime)

		depStop := stopsByID[f.StopID]
		arrStop := stopsByID[l.StopID]

		seg := TripSegment{
			Country:          countryCode,
			Operator:         operator,
			TripID:           trip.TripID,
			RouteID:          trip.RouteID,
			DepartureStopID:  f.StopID,
			ArrivalStopID:    l.StopID,
			DepartureTime:    depTime,
			ArrivalTime:      arrTime,
			DepartureStation: depStop.StopName,
			ArrivalStation:   arrStop.StopName,
			DepartureLat:     parseFloat(depStop.StopLat),
			DepartureLon:     parseFloat(depStop.StopLon),
			ArrivalLat:       parseFloat(arrStop.StopLat),
			ArrivalLon:       parseFloat(arrStop.StopLon),
			IsCrossBorder:    isCrossBorder(depStop.StopCountry, arrStop.StopCountry),
		}
		if date, ok := serviceDates[trip.ServiceID]; ok {
			seg.ServiceDate = &date
		}
		ex.Segments = append(ex.Segments, seg)
	}

	tripsByID := make(map[string]Trip, len(trips))
	for _, t := range trips {
		if _, ok := tripsByID[t.TripID]; !ok {
			tripsByID[t.TripID] = t
		}
	}

	for _, st := range stopTimes {
		stop := stopsByID[st.StopID]
		row := TripStop{
			Country:       countryCode,
			Operator:      operator,
			TripID:        st.TripID,
			StopSequence:  parseIntDefault(st.StopSequence, 0),
			StopID:        st.StopID,
			StopName:      stop.StopName,
			StopLat:       parseFloat(stop.StopLat),
			StopLon:       parseFloat(stop.StopLon),
			ArrivalTime:   firstNonBlank(st.ArrivalTime),
			DepartureTime: firstNonBlank(st.DepartureTime),
		}
		if trip, ok := tripsByID[st.TripID]; ok {
			if date, ok := serviceDates[trip.ServiceID]; ok {
				row.ServiceDate = &date
			}
		}
		ex.TripStops = append(ex.TripStops, row)
	}

	logger.Info("feed extracted",
		"operator", operator,
		"country", countryCode,
		"segments", len(ex.Segments),
		"trip_stops", len(ex.TripStops),
	)
	return ex
}

func decodeTable[T any](files map[string]*zip.File, name string, logger *slog.Logger) []T {
	f, ok := files[name]
	if !ok {
		return nil
	}
	rows, err := csvio.DecodeZipFile[T](f)
	if err != nil {
		logger.Warn("unreadable table in feed", "table", name, "error", err)
		return nil
	}
	return rows
}

// sortStopTimes orders rows by (trip id, numeric stop sequence) so the first
// and last row per trip are the trip's endpoints.
func sortStopTimes(stopTimes []StopTime) {
	sort.SliceStable(stopTimes, func(i, j int) bool {
		if stopTimes[i].TripID != stopTimes[j].TripID {
			return stopTimes[i].TripID < stopTimes[j].TripID
		}
		return parseIntDefault(stopTimes[i].StopSequence, 0) < parseIntDefault(stopTimes[j].StopSequence, 0)
	})
}

// buildServiceDateMap derives each service's date: the minimum "added"
// exception date (exception_type = 1) when present, else the minimum
// calendar start date.
func buildServiceDateMap(calendar []CalendarEntry, calendarDates []CalendarDate) map[string]string {
	dates := make(map[string]string)
	fromException := make(map[string]bool)

	for _, cd := range calendarDates {
		if strings.TrimSpace(cd.ExceptionType) != "1" || cd.Date == "" {
			continue
		}
		if cur, ok := dates[cd.ServiceID]; !ok || cd.Date < cur {
			dates[cd.ServiceID] = cd.Date
			fromException[cd.ServiceID] = true
		}
	}

	for _, c := range calendar {
		if c.StartDate == "" || fromException[c.ServiceID] {
			continue
		}
		if cur, ok := dates[c.ServiceID]; !ok || c.StartDate < cur {
			dates[c.ServiceID] = c.StartDate
		}
	}

	return dates
}

// isCrossBorder is true only when both endpoint stops carry a country
// attribute and those differ, compared case- and whitespace-insensitively.
func isCrossBorder(depCountry, arrCountry string) bool {
	dep := strings.ToUpper(strings.TrimSpace(depCountry))
	arr := strings.ToUpper(strings.TrimSpace(arrCountry))
	if dep == "" || arr == "" {
		return false
	}
	return dep != arr
}

func firstNonBlank(values ...string) *string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			v := v
			return &v
		}
	}
	return nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
