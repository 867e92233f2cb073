// Package warehouse loads the dimensional model into Postgres and serves the
// read queries over it.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"railmart/internal/mart"
	"railmart/internal/metrics"
)

// Loader bulk-loads a built mart into a schema-qualified namespace. The whole
// refresh runs in one transaction: ensure tables, truncate, COPY each table.
// Any failure rolls back and leaves the previous warehouse content untouched.
type Loader struct {
	pool    *pgxpool.Pool
	schema  string
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewLoader creates a Loader targeting the given schema.
func NewLoader(pool *pgxpool.Pool, schema string, logger *slog.Logger, mcol *metrics.Collector) *Loader {
	return &Loader{pool: pool, schema: schema, logger: logger, metrics: mcol}
}

// Load replaces the warehouse contents with m. No partial commits: either the
// whole refresh lands or the prior state is preserved.
func (l *Loader) Load(ctx context.Context, m *mart.Mart) error {
	start := time.Now()

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schemaStatements(l.schema) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, truncateStatement(l.schema)); err != nil {
		return fmt.Errorf("truncate warehouse: %w", err)
	}

	for _, t := range tableLoads(m) {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{l.schema, t.name}, t.columns, pgx.CopyFromRows(t.rows))
		if err != nil {
			return fmt.Errorf("copy %s: %w", t.name, err)
		}
		if l.metrics != nil {
			l.metrics.RowsLoaded.WithLabelValues(t.name).Add(float64(n))
		}
		l.logger.Info("table loaded", "table", t.name, "rows", n)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if l.metrics != nil {
		l.metrics.LoadDuration.Observe(time.Since(start).Seconds())
		l.metrics.LastRunTimestamp.SetToCurrentTime()
	}
	l.logger.Info("warehouse refresh complete",
		"duration", time.Since(start).Round(time.Millisecond),
		"facts", len(m.Facts),
		"trip_stops", len(m.TripStops),
	)
	return nil
}

type tableLoad struct {
	name    string
	columns []string
	rows    [][]any
}

// tableLoads lays the mart out as COPY payloads, dimensions before the
// referencing tables.
func tableLoads(m *mart.Mart) []tableLoad {
	return []tableLoad{
		{"dim_country", countryColumns, countryRows(m.Countries)},
		{"dim_operator", operatorColumns, operatorRows(m.Operators)},
		{"dim_station", stationColumns, stationRows(m.Stations)},
		{"dim_route", routeColumns, routeRows(m.Routes)},
		{"dim_time", timeColumns, timeRows(m.Times)},
		{"dim_date", dateColumns, dateRows(m.Dates)},
		{"fact_trip_segment", factColumns, factRows(m.Facts)},
		{"trip_stop", tripStopColumns, tripStopRows(m.TripStops)},
	}
}

var (
	countryColumns  = []string{"country_key", "country_code", "country_name_en", "country_name_fr", "iso3_code", "eu_member", "efta_member", "candidate_member"}
	operatorColumns = []string{"operator_key", "operator_id", "operator_name", "operator_country", "is_night_operator"}
	stationColumns  = []string{"station_key", "stop_id", "station_name", "station_lat", "station_lon", "country_code"}
	routeColumns    = []string{"route_key", "route_id", "operator_id", "country_code"}
	timeColumns     = []string{"time_key", "time_value", "hour", "minute", "second", "is_night"}
	dateColumns     = []string{"date_key", "date_value", "year", "month", "day"}
	factColumns     = []string{"fact_trip_key", "country_key", "operator_key", "route_key", "departure_station_key", "arrival_station_key", "departure_time_key", "arrival_time_key", "date_key", "trip_business_id", "is_night", "is_cross_border"}
	tripStopColumns = []string{"trip_stop_key", "country_code", "operator_id", "trip_id", "stop_sequence", "stop_id", "stop_name", "stop_lat", "stop_lon", "arrival_time", "departure_time", "date_value"}
)

func countryRows(dim []mart.DimCountry) [][]any {
	rows := make([][]any, 0, len(dim))
	for _, c := range dim {
		rows = append(rows, []any{c.Key, c.Code, c.NameEN, c.NameFR, c.ISO3, c.EUMember, c.EFTAMember, c.CandidateMember})
	}
	return rows
}

func operatorRows(dim []mart.DimOperator) [][]any {
	rows := make([][]any, 0, len(dim))
	for _, o := range dim {
		rows = append(rows, []any{o.Key, o.OperatorID, o.Name, o.Country, o.IsNightOperator})
	}
	return rows
}

func stationRows(dim []mart.DimStation) [][]any {
	rows := make([][]any, 0, len(dim))
	for _, s := range dim {
		rows = append(rows, []any{s.Key, s.StopID, s.Name, s.Lat, s.Lon, s.CountryCode})
	}
	return rows
}

func routeRows(dim []mart.DimRoute) [][]any {
	rows := make([][]any, 0, len(dim))
	for _, r := range dim {
		rows = append(rows, []any{r.Key, r.RouteID, r.OperatorID, r.CountryCode})
	}
	return rows
}

func timeRows(dim []mart.DimTime) [][]any {
	rows := make([][]any, 0, len(dim))
	for _, t := range dim {
		rows = append(rows, []any{t.Key, t.Value, t.Hour, t.Minute, t.Second, t.IsNight})
	}
	return rows
}

func dateRows(dim []mart.DimDate) [][]any {
	rows := make([][]any, 0, len(dim))
	for _, d := range dim {
		rows = append(rows, []any{d.Key, d.Value, d.Year, d.Month, d.Day})
	}
	return rows
}

func factRows(facts []mart.FactTripSegment) [][]any {
	rows := make([][]any, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, []any{
			f.Key, f.CountryKey, f.OperatorKey, f.RouteKey,
			f.DepartureStationKey, f.ArrivalStationKey,
			f.DepartureTimeKey, f.ArrivalTimeKey, f.DateKey,
			f.TripBusinessID, f.IsNight, f.IsCrossBorder,
		})
	}
	return rows
}

func tripStopRows(stops []mart.TripStopRow) [][]any {
	rows := make([][]any, 0, len(stops))
	for _, st := range stops {
		rows = append(rows, []any{
			st.Key, st.CountryCode, st.OperatorID, st.TripID,
			st.StopSequence, st.StopID, st.StopName,
			st.StopLat, st.StopLon, st.ArrivalTime, st.DepartureTime, st.DateValue,
		})
	}
	return rows
}
