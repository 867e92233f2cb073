package gtfs

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildFeed assembles an in-memory GTFS zip from table name to CSV content.
func buildFeed(t *testing.T, tables map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range tables {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func minimalFeed(t *testing.T) []byte {
	return buildFeed(t, map[string]string{
		"trips.txt": "trip_id,route_id,service_id\n" +
			"t1,r1,s1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"t1,08:00:00,08:05:00,A,1\n" +
			"t1,09:00:00,09:05:00,B,2\n" +
			"t1,10:30:00,,C,3\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"A,Paris,48.84,2.37\n" +
			"B,Dijon,47.32,5.02\n" +
			"C,Lyon,45.76,4.86\n",
		"calendar.txt": "service_id,start_date,end_date\n" +
			"s1,20260101,20261231\n",
	})
}

func TestExtractFeed_Endpoints(t *testing.T) {
	ex := ExtractFeed(minimalFeed(t), "france", "sncf", testLogger())
	require.Len(t, ex.Segments, 1)

	seg := ex.Segments[0]
	assert.Equal(t, "FRANCE", seg.Country)
	assert.Equal(t, "sncf", seg.Operator)
	assert.Equal(t, "t1", seg.TripID)
	assert.Equal(t, "r1", seg.RouteID)
	assert.Equal(t, "A", seg.DepartureStopID)
	assert.Equal(t, "C", seg.ArrivalStopID)
	assert.Equal(t, "Paris", seg.DepartureStation)
	assert.Equal(t, "Lyon", seg.ArrivalStation)

	// Arrival time is preferred at both endpoints.
	require.NotNil(t, seg.DepartureTime)
	assert.Equal(t, "08:00:00", *seg.DepartureTime)
	require.NotNil(t, seg.ArrivalTime)
	assert.Equal(t, "10:30:00", *seg.ArrivalTime)

	require.NotNil(t, seg.DepartureLat)
	assert.InDelta(t, 48.84, *seg.DepartureLat, 1e-9)
	require.NotNil(t, seg.ArrivalLon)
	assert.InDelta(t, 4.86, *seg.ArrivalLon, 1e-9)

	require.NotNil(t, seg.ServiceDate)
	assert.Equal(t, "20260101", *seg.ServiceDate)
}

func TestExtractFeed_TimeFallback(t *testing.T) {
	feed := buildFeed(t, map[string]string{
		"trips.txt": "trip_id,route_id,service_id\nt1,r1,s1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"t1,,07:00:00,A,1\n" +
			"t1,,07:45:00,B,2\n",
		"stops.txt": "stop_id,stop_name\nA,Start\nB,End\n",
	})

	ex := ExtractFeed(feed, "de", "db", testLogger())
	require.Len(t, ex.Segments, 1)
	seg := ex.Segments[0]
	require.NotNil(t, seg.DepartureTime)
	assert.Equal(t, "07:00:00", *seg.DepartureTime, "blank arrival falls back to departure")
	require.NotNil(t, seg.ArrivalTime)
	assert.Equal(t, "07:45:00", *seg.ArrivalTime)
}

func TestExtractFeed_NumericSequenceOrder(t *testing.T) {
	// Sequences 2 and 10 must sort numerically, not lexicographically.
	feed := buildFeed(t, map[string]string{
		"trips.txt": "trip_id,route_id,service_id\nt1,r1,s1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"t1,11:00:00,,LAST,10\n" +
			"t1,09:00:00,,FIRST,2\n",
		"stops.txt": "stop_id,stop_name\nFIRST,First\nLAST,Last\n",
	})

	ex := ExtractFeed(feed, "at", "oebb", testLogger())
	require.Len(t, ex.Segments, 1)
	assert.Equal(t, "FIRST", ex.Segments[0].DepartureStopID)
	assert.Equal(t, "LAST", ex.Segments[0].ArrivalStopID)
}

func TestExtractFeed_CrossBorder(t *testing.T) {
	feed := buildFeed(t, map[string]string{
		"trips.txt": "trip_id,route_id,service_id\n" +
			"cross,r1,s1\n" +
			"domestic,r1,s1\n" +
			"unknown,r1,s1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"cross,08:00:00,,FR1,1\n" +
			"cross,12:00:00,,DE1,2\n" +
			"domestic,08:00:00,,FR1,1\n" +
			"domestic,09:00:00,,FR2,2\n" +
			"unknown,08:00:00,,FR1,1\n" +
			"unknown,09:00:00,,X1,2\n",
		"stops.txt": "stop_id,stop_name,stop_country\n" +
			"FR1,Strasbourg,fr\n" +
			"FR2,Paris, FR \n" +
			"DE1,Offenburg,DE\n" +
			"X1,Somewhere,\n",
	})

	ex := ExtractFeed(feed, "fr", "sncf", testLogger())
	require.Len(t, ex.Segments, 3)

	byTrip := make(map[string]TripSegment)
	for _, s := range ex.Segments {
		byTrip[s.TripID] = s
	}
	assert.True(t, byTrip["cross"].IsCrossBorder)
	assert.False(t, byTrip["domestic"].IsCrossBorder, "case and whitespace do not count as a border")
	assert.False(t, byTrip["unknown"].IsCrossBorder, "missing country never counts as cross-border")
}

func TestExtractFeed_ServiceDates(t *testing.T) {
	feed := buildFeed(t, map[string]string{
		"trips.txt": "trip_id,route_id,service_id\n" +
			"t1,r1,exc\n" +
			"t2,r1,cal\n" +
			"t3,r1,none\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"t1,08:00:00,,A,1\nt1,09:00:00,,B,2\n" +
			"t2,08:00:00,,A,1\nt2,09:00:00,,B,2\n" +
			"t3,08:00:00,,A,1\nt3,09:00:00,,B,2\n",
		"stops.txt": "stop_id,stop_name\nA,Start\nB,End\n",
		"calendar.txt": "service_id,start_date,end_date\n" +
			"exc,20260301,20261231\n" +
			"cal,20260215,20261231\n",
		"calendar_dates.txt": "service_id,date,exception_type\n" +
			"exc,20260120,1\n" +
			"exc,20260110,1\n" +
			"exc,20260101,2\n",
	})

	ex := ExtractFeed(feed, "fr", "sncf", testLogger())
	require.Len(t, ex.Segments, 3)

	byTrip := make(map[string]TripSegment)
	for _, s := range ex.Segments {
		byTrip[s.TripID] = s
	}

	require.NotNil(t, byTrip["t1"].ServiceDate)
	assert.Equal(t, "20260110", *byTrip["t1"].ServiceDate,
		"minimum added exception wins over the calendar start date")

	require.NotNil(t, byTrip["t2"].ServiceDate)
	assert.Equal(t, "20260215", *byTrip["t2"].ServiceDate)

	assert.Nil(t, byTrip["t3"].ServiceDate, "no calendar entry means no date")
}

func TestExtractFeed_TripStops(t *testing.T) {
	ex := ExtractFeed(minimalFeed(t), "france", "sncf", testLogger())
	require.Len(t, ex.TripStops, 3)

	first := ex.TripStops[0]
	assert.Equal(t, "t1", first.TripID)
	assert.Equal(t, 1, first.StopSequence)
	assert.Equal(t, "A", first.StopID)
	assert.Equal(t, "Paris", first.StopName)
	require.NotNil(t, first.ServiceDate)
	assert.Equal(t, "20260101", *first.ServiceDate)

	last := ex.TripStops[2]
	assert.Equal(t, "C", last.StopID)
	assert.Nil(t, last.DepartureTime, "blank departure stays absent")
	require.NotNil(t, last.ArrivalTime)
	assert.Equal(t, "10:30:00", *last.ArrivalTime)
}

func TestExtractFeed_MissingMandatoryTable(t *testing.T) {
	feed := buildFeed(t, map[string]string{
		"trips.txt":      "trip_id,route_id,service_id\nt1,r1,s1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\nt1,08:00:00,,A,1\n",
		// stops.txt absent
	})

	ex := ExtractFeed(feed, "fr", "sncf", testLogger())
	assert.Empty(t, ex.Segments)
	assert.Empty(t, ex.TripStops)
}

func TestExtractFeed_InvalidArchive(t *testing.T) {
	ex := ExtractFeed([]byte("not a zip"), "fr", "sncf", testLogger())
	assert.Empty(t, ex.Segments)
	assert.Empty(t, ex.TripStops)
}

func TestExtractFeed_Deterministic(t *testing.T) {
	feed := minimalFeed(t)
	a := ExtractFeed(feed, "france", "sncf", testLogger())
	b := ExtractFeed(feed, "france", "sncf", testLogger())
	assert.Equal(t, a, b)
}
