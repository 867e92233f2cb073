// Package mart builds the dimensional model: six dimension tables with dense
// surrogate keys and the fact table assembled by resolving natural keys
// through hash-indexed lookups.
package mart

import "time"

type DimCountry struct {
	Key             int
	Code            string
	NameEN          string
	NameFR          string
	ISO3            string
	EUMember        string
	EFTAMember      string
	CandidateMember string
}

type DimOperator struct {
	Key             int
	OperatorID      string
	Name            string
	Country         string
	IsNightOperator bool
}

type DimStation struct {
	Key         int
	StopID      string
	Name        string
	Lat         *float64
	Lon         *float64
	CountryCode string
}

type DimRoute struct {
	Key         int
	RouteID     string
	OperatorID  string
	CountryCode string
}

type DimTime struct {
	Key     int
	Value   string // HH:MM:SS
	Hour    int
	Minute  int
	Second  int
	IsNight bool
}

// DimDate's key is meaningful: the integer YYYYMMDD of the value, not a
// dense sequence like the other dimensions.
type DimDate struct {
	Key   int
	Value time.Time
	Year  int
	Month int
	Day   int
}

// FactTripSegment references each dimension by surrogate key. Foreign keys
// are nullable: a lookup miss is tolerated, never fatal.
type FactTripSegment struct {
	Key                 int
	CountryKey          *int
	OperatorKey         *int
	RouteKey            *int
	DepartureStationKey *int
	ArrivalStationKey   *int
	DepartureTimeKey    *int
	ArrivalTimeKey      *int
	DateKey             *int

	TripBusinessID string // preserved verbatim for itinerary lookups
	IsNight        bool
	IsCrossBorder  bool
}

// TripStopRow is one loaded itinerary row.
type TripStopRow struct {
	Key          int
	CountryCode  string
	OperatorID   string
	TripID       string
	StopSequence int
	StopID       string
	StopName     string
	StopLat      *float64
	StopLon      *float64

	ArrivalTime   *string
	DepartureTime *string
	DateValue     *time.Time
}

// Mart is the fully built warehouse content for one run.
type Mart struct {
	Countries []DimCountry
	Operators []DimOperator
	Stations  []DimStation
	Routes    []DimRoute
	Times     []DimTime
	Dates     []DimDate
	Facts     []FactTripSegment
	TripStops []TripStopRow
}
