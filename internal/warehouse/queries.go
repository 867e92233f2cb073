package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store issues the read-only queries the API serves. All joins are left
// joins from the fact row's perspective, matching how the warehouse was
// assembled: a null foreign key reads back as null attributes.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// NewStore creates a Store over the given schema.
func NewStore(pool *pgxpool.Pool, schema string) *Store {
	return &Store{pool: pool, schema: schema}
}

// Trip is one fact row joined out to its dimensions.
type Trip struct {
	FactTripKey      int      `json:"fact_trip_key"`
	Country          *string  `json:"country"`
	Operator         *string  `json:"operator"`
	TripID           *string  `json:"trip_id"`
	RouteID          *string  `json:"route_id"`
	DepartureStation *string  `json:"departure_station"`
	ArrivalStation   *string  `json:"arrival_station"`
	DepartureTime    *string  `json:"departure_time"`
	ArrivalTime      *string  `json:"arrival_time"`
	DepartureDate    *string  `json:"departure_date"`
	ArrivalDate      *string  `json:"arrival_date"`
	DepartureLat     *float64 `json:"departure_lat"`
	DepartureLon     *float64 `json:"departure_lon"`
	ArrivalLat       *float64 `json:"arrival_lat"`
	ArrivalLon       *float64 `json:"arrival_lon"`
	IsNight          bool     `json:"is_night"`
	IsCrossBorder    bool     `json:"is_cross_border"`
}

// TripFilter narrows the /trips readout. Zero values mean "no filter".
type TripFilter struct {
	IsNight          *bool
	CountryCode      string
	OperatorID       string
	DepartureStation string // substring, case-insensitive
	ArrivalStation   string // substring, case-insensitive
	Limit            int
	Offset           int
}

// whereClause renders the filter as SQL conditions with positional args.
func (f TripFilter) whereClause() (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.IsNight != nil {
		add("f.is_night = $%d", *f.IsNight)
	}
	if f.CountryCode != "" {
		add("c.country_code = $%d", strings.ToUpper(f.CountryCode))
	}
	if f.OperatorID != "" {
		add("o.operator_id = $%d", f.OperatorID)
	}
	if f.DepartureStation != "" {
		add("ds.station_name ILIKE $%d", "%"+f.DepartureStation+"%")
	}
	if f.ArrivalStation != "" {
		add("arr.station_name ILIKE $%d", "%"+f.ArrivalStation+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Trips returns fact rows matching the filter, ordered by fact key.
func (s *Store) Trips(ctx context.Context, f TripFilter) ([]Trip, error) {
	where, args := f.whereClause()

	q := fmt.Sprintf(`
SELECT
    f.fact_trip_key,
    c.country_code,
    o.operator_id,
    f.trip_business_id,
    r.route_id,
    ds.station_name, ds.station_lat, ds.station_lon,
    arr.station_name, arr.station_lat, arr.station_lon,
    dt.time_value,
    at.time_value,
    d.date_value::text,
    f.is_night,
    f.is_cross_border
FROM %[1]s.fact_trip_segment f
LEFT JOIN %[1]s.dim_country c ON c.country_key = f.country_key
LEFT JOIN %[1]s.dim_operator o ON o.operator_key = f.operator_key
LEFT JOIN %[1]s.dim_route r ON r.route_key = f.route_key
LEFT JOIN %[1]s.dim_station ds ON ds.station_key = f.departure_station_key
LEFT JOIN %[1]s.dim_station arr ON arr.station_key = f.arrival_station_key
LEFT JOIN %[1]s.dim_time dt ON dt.time_key = f.departure_time_key
LEFT JOIN %[1]s.dim_time at ON at.time_key = f.arrival_time_key
LEFT JOIN %[1]s.dim_date d ON d.date_key = f.date_key
%[2]s
ORDER BY f.fact_trip_key
LIMIT $%[3]d OFFSET $%[4]d`, s.schema, where, len(args)+1, len(args)+2)

	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		var date *string
		if err := rows.Scan(
			&t.FactTripKey, &t.Country, &t.Operator, &t.TripID, &t.RouteID,
			&t.DepartureStation, &t.DepartureLat, &t.DepartureLon,
			&t.ArrivalStation, &t.ArrivalLat, &t.ArrivalLon,
			&t.DepartureTime, &t.ArrivalTime, &date,
			&t.IsNight, &t.IsCrossBorder,
		); err != nil {
			return nil, err
		}
		t.DepartureDate = date
		t.ArrivalDate = date
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// TripStop is one itinerary row of a trip.
type TripStop struct {
	StopSequence  int      `json:"stop_sequence"`
	StopID        string   `json:"stop_id"`
	StopName      *string  `json:"stop_name"`
	StopLat       *float64 `json:"stop_lat"`
	StopLon       *float64 `json:"stop_lon"`
	ArrivalTime   *string  `json:"arrival_time"`
	DepartureTime *string  `json:"departure_time"`
	DateValue     *string  `json:"date_value"`
}

// TripStops returns the full itinerary of one trip, in stop order. The trip
// is identified by its verbatim business id plus operator and country.
func (s *Store) TripStops(ctx context.Context, tripID, operatorID, countryCode string) ([]TripStop, error) {
	q := fmt.Sprintf(`
SELECT stop_sequence, stop_id, stop_name, stop_lat, stop_lon,
       arrival_time, departure_time, date_value::text
FROM %s.trip_stop
WHERE trip_id = $1 AND operator_id = $2 AND country_code = $3
ORDER BY stop_sequence ASC`, s.schema)

	rows, err := s.pool.Query(ctx, q, tripID, operatorID, strings.ToUpper(countryCode))
	if err != nil {
		return nil, fmt.Errorf("query trip stops: %w", err)
	}
	defer rows.Close()

	var stops []TripStop
	for rows.Next() {
		var st TripStop
		if err := rows.Scan(&st.StopSequence, &st.StopID, &st.StopName,
			&st.StopLat, &st.StopLon, &st.ArrivalTime, &st.DepartureTime, &st.DateValue); err != nil {
			return nil, err
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// Country is one dim_country row that has fact rows referencing it.
type Country struct {
	CountryCode string  `json:"country_code"`
	NameFR      *string `json:"name_fr"`
	NameEN      *string `json:"name_en"`
}

// Countries lists countries that appear in the fact table.
func (s *Store) Countries(ctx context.Context) ([]Country, error) {
	q := fmt.Sprintf(`
SELECT DISTINCT c.country_code, c.country_name_fr, c.country_name_en
FROM %[1]s.dim_country c
INNER JOIN %[1]s.fact_trip_segment f ON f.country_key = c.country_key
ORDER BY c.country_name_en`, s.schema)

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.CountryCode, &c.NameFR, &c.NameEN); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// Operator is one dim_operator row.
type Operator struct {
	OperatorID      string  `json:"operator_id"`
	OperatorName    *string `json:"operator_name"`
	OperatorCountry *string `json:"operator_country"`
	IsNightOperator bool    `json:"is_night_operator"`
}

// Operators lists all operators.
func (s *Store) Operators(ctx context.Context) ([]Operator, error) {
	q := fmt.Sprintf(`
SELECT operator_id, operator_name, operator_country, is_night_operator
FROM %s.dim_operator
ORDER BY operator_name`, s.schema)

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query operators: %w", err)
	}
	defer rows.Close()

	var ops []Operator
	for rows.Next() {
		var o Operator
		if err := rows.Scan(&o.OperatorID, &o.OperatorName, &o.OperatorCountry, &o.IsNightOperator); err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

// CountryCoverage is the per-country trip count for EU/EFTA/candidate members.
type CountryCoverage struct {
	CountryCode string  `json:"country_code"`
	ISO3Code    *string `json:"iso3_code"`
	NameFR      *string `json:"name_fr"`
	NameEN      *string `json:"name_en"`
	Trips       int     `json:"trips"`
}

// Coverage counts fact rows per EU/EFTA/candidate country, busiest first.
func (s *Store) Coverage(ctx context.Context) ([]CountryCoverage, error) {
	q := fmt.Sprintf(`
SELECT c.country_code, c.iso3_code, c.country_name_fr, c.country_name_en,
       COALESCE(COUNT(f.fact_trip_key), 0) AS trips
FROM %[1]s.dim_country c
LEFT JOIN %[1]s.fact_trip_segment f ON f.country_key = c.country_key
WHERE (c.eu_member = 'T' OR c.efta_member = 'T' OR c.candidate_member = 'T')
GROUP BY c.country_code, c.iso3_code, c.country_name_fr, c.country_name_en
ORDER BY trips DESC`, s.schema)

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query coverage: %w", err)
	}
	defer rows.Close()

	var cov []CountryCoverage
	for rows.Next() {
		var c CountryCoverage
		if err := rows.Scan(&c.CountryCode, &c.ISO3Code, &c.NameFR, &c.NameEN, &c.Trips); err != nil {
			return nil, err
		}
		cov = append(cov, c)
	}
	return cov, rows.Err()
}

// CoverageStats aggregates the fact table: totals plus night and
// cross-border counts.
type CoverageStats struct {
	TotalTrips       int     `json:"total_trips"`
	NightTrips       int     `json:"night_trips"`
	NightRatio       float64 `json:"night_ratio"`
	CrossBorderTrips int     `json:"cross_border_trips"`
}

// Stats returns whole-warehouse coverage statistics.
func (s *Store) Stats(ctx context.Context) (*CoverageStats, error) {
	q := fmt.Sprintf(`
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN is_night THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN is_cross_border THEN 1 ELSE 0 END), 0)
FROM %s.fact_trip_segment`, s.schema)

	var st CoverageStats
	if err := s.pool.QueryRow(ctx, q).Scan(&st.TotalTrips, &st.NightTrips, &st.CrossBorderTrips); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	if st.TotalTrips > 0 {
		st.NightRatio = float64(st.NightTrips) / float64(st.TotalTrips)
	}
	return &st, nil
}
