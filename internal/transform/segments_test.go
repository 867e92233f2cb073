package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railmart/internal/gtfs"
)

func strp(s string) *string { return &s }

func baseSegment() gtfs.TripSegment {
	return gtfs.TripSegment{
		Country:          "france",
		Operator:         "sncf_voyageurs",
		TripID:           "trip-1",
		RouteID:          "route-1",
		DepartureStopID:  "A",
		ArrivalStopID:    "B",
		DepartureTime:    strp("8:30"),
		ArrivalTime:      strp("10:45:00"),
		DepartureStation: "PARIS GARE DE LYON",
		ArrivalStation:   "lyon part-dieu",
	}
}

func TestSegments_Normalizes(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	out := Segments([]gtfs.TripSegment{baseSegment()}, now)
	require.Len(t, out, 1)

	seg := out[0]
	assert.Equal(t, "FRANCE", seg.Country)
	assert.Equal(t, "Paris Gare De Lyon", seg.DepartureStation)
	assert.Equal(t, "Lyon Part-Dieu", seg.ArrivalStation)
	require.NotNil(t, seg.DepartureTime)
	assert.Equal(t, "08:30:00", *seg.DepartureTime)
	assert.False(t, seg.IsNight)
	assert.Equal(t, "2026-08-23T12:00:00Z", seg.LoadTimestamp)
}

func TestSegments_DepartureFallsBackToArrival(t *testing.T) {
	seg := baseSegment()
	seg.DepartureTime = nil
	seg.ArrivalTime = strp("21:05:00")

	out := Segments([]gtfs.TripSegment{seg}, time.Now())
	require.Len(t, out, 1)
	require.NotNil(t, out[0].DepartureTime)
	assert.Equal(t, "21:05:00", *out[0].DepartureTime)
	assert.True(t, out[0].IsNight, "night flag derives from the fallback departure")
}

func TestSegments_DropsRowsMissingCriticalFields(t *testing.T) {
	missingStop := baseSegment()
	missingStop.ArrivalStopID = ""

	missingTimes := baseSegment()
	missingTimes.DepartureTime = nil
	missingTimes.ArrivalTime = nil

	blankTime := baseSegment()
	blankTime.ArrivalTime = strp("   ")

	out := Segments([]gtfs.TripSegment{missingStop, missingTimes, blankTime, baseSegment()}, time.Now())
	require.Len(t, out, 1)
	assert.Equal(t, "trip-1", out[0].TripID)
}

func TestSegments_Dedupes(t *testing.T) {
	a := baseSegment()
	b := baseSegment()
	b.TripID = "trip-2" // trip id is not part of the dedup key

	c := baseSegment()
	c.RouteID = "route-2" // different route survives

	out := Segments([]gtfs.TripSegment{a, b, c}, time.Now())
	require.Len(t, out, 2)
	assert.Equal(t, "trip-1", out[0].TripID, "first occurrence wins")
	assert.Equal(t, "route-2", out[1].RouteID)
}

func TestSegments_NightFromWrappedHour(t *testing.T) {
	seg := baseSegment()
	seg.DepartureTime = strp("23:50:00")
	seg.ArrivalTime = strp("25:10:00")

	out := Segments([]gtfs.TripSegment{seg}, time.Now())
	require.Len(t, out, 1)
	assert.True(t, out[0].IsNight)
	assert.Equal(t, "01:10:00", *out[0].ArrivalTime)
}

func TestSegments_BlankServiceDateBecomesAbsent(t *testing.T) {
	seg := baseSegment()
	seg.ServiceDate = strp("  ")
	out := Segments([]gtfs.TripSegment{seg}, time.Now())
	require.Len(t, out, 1)
	assert.Nil(t, out[0].ServiceDate)
}

func TestTripStops(t *testing.T) {
	stops := []gtfs.TripStop{
		{Country: "france", Operator: "sncf", TripID: "t1", StopID: "A", ArrivalTime: strp("26:00"), DepartureTime: strp("")},
		{TripID: "", StopID: "B"},
		{TripID: "t1", StopID: ""},
	}
	out := TripStops(stops)
	require.Len(t, out, 1)
	assert.Equal(t, "FRANCE", out[0].Country)
	require.NotNil(t, out[0].ArrivalTime)
	assert.Equal(t, "02:00:00", *out[0].ArrivalTime)
	assert.Nil(t, out[0].DepartureTime, "blank time normalizes to absent")
}
