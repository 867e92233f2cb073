package gtfs

// Raw GTFS rows as they appear in the archive's CSV tables. Everything is a
// string at this stage; typing happens during extraction and normalization.

type Trip struct {
	TripID    string `csv:"trip_id"`
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
}

type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
}

type Stop struct {
	StopID      string `csv:"stop_id"`
	StopName    string `csv:"stop_name"`
	StopLat     string `csv:"stop_lat"`
	StopLon     string `csv:"stop_lon"`
	StopCountry string `csv:"stop_country"` // non-standard, carried by some feeds
}

type CalendarEntry struct {
	ServiceID string `csv:"service_id"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

type CalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType string `csv:"exception_type"`
}

// TripSegment is one trip's endpoint view: first and last stop with their
// times and station attributes. One row per trip per feed.
type TripSegment struct {
	Country  string
	Operator string
	TripID   string
	RouteID  string

	DepartureStopID string
	ArrivalStopID   string

	// Times are nil when the feed left them blank. Normalization keeps the
	// distinction between absent and empty.
	DepartureTime *string
	ArrivalTime   *string

	DepartureStation string
	ArrivalStation   string

	DepartureLat *float64
	DepartureLon *float64
	ArrivalLat   *float64
	ArrivalLon   *float64

	IsCrossBorder bool
	IsNight       bool

	ServiceDate   *string // YYYYMMDD as carried by the feed
	LoadTimestamp string  // RFC3339 UTC, set during transformation
}

// TripStop is one stop of a trip's full itinerary. One row per (trip, stop).
type TripStop struct {
	Country      string
	Operator     string
	TripID       string
	StopSequence int
	StopID       string
	StopName     string
	StopLat      *float64
	StopLon      *float64

	ArrivalTime   *string
	DepartureTime *string

	ServiceDate *string // YYYYMMDD
}

// Extract is the result of processing one feed archive.
type Extract struct {
	Segments  []TripSegment
	TripStops []TripStop
}
