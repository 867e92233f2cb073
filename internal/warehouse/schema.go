package warehouse

import "fmt"

// Destination tables in dependency order: referencing tables first so
// truncation can run in one statement without deferring constraints.
var tables = []string{
	"fact_trip_segment",
	"trip_stop",
	"dim_time",
	"dim_date",
	"dim_route",
	"dim_station",
	"dim_operator",
	"dim_country",
}

// schemaStatements returns the DDL ensuring the warehouse namespace and all
// destination tables exist. The schema name is interpolated, so it must come
// from validated configuration, never from request input.
func schemaStatements(schema string) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dim_country (
			country_key      INTEGER PRIMARY KEY,
			country_code     TEXT NOT NULL,
			country_name_en  TEXT,
			country_name_fr  TEXT,
			iso3_code        TEXT,
			eu_member        TEXT,
			efta_member      TEXT,
			candidate_member TEXT
		)`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dim_operator (
			operator_key      INTEGER PRIMARY KEY,
			operator_id       TEXT NOT NULL,
			operator_name     TEXT,
			operator_country  TEXT,
			is_night_operator BOOLEAN NOT NULL DEFAULT FALSE
		)`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dim_station (
			station_key  INTEGER PRIMARY KEY,
			stop_id      TEXT NOT NULL,
			station_name TEXT,
			station_lat  DOUBLE PRECISION,
			station_lon  DOUBLE PRECISION,
			country_code TEXT
		)`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dim_route (
			route_key    INTEGER PRIMARY KEY,
			route_id     TEXT NOT NULL,
			operator_id  TEXT NOT NULL,
			country_code TEXT
		)`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dim_time (
			time_key   INTEGER PRIMARY KEY,
			time_value TEXT NOT NULL,
			hour       INTEGER NOT NULL,
			minute     INTEGER NOT NULL,
			second     INTEGER NOT NULL,
			is_night   BOOLEAN NOT NULL
		)`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dim_date (
			date_key   INTEGER PRIMARY KEY,
			date_value DATE NOT NULL,
			year       INTEGER NOT NULL,
			month      INTEGER NOT NULL,
			day        INTEGER NOT NULL
		)`, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.fact_trip_segment (
			fact_trip_key         INTEGER PRIMARY KEY,
			country_key           INTEGER REFERENCES %s.dim_country(country_key),
			operator_key          INTEGER REFERENCES %s.dim_operator(operator_key),
			route_key             INTEGER REFERENCES %s.dim_route(route_key),
			departure_station_key INTEGER REFERENCES %s.dim_station(station_key),
			arrival_station_key   INTEGER REFERENCES %s.dim_station(station_key),
			departure_time_key    INTEGER REFERENCES %s.dim_time(time_key),
			arrival_time_key      INTEGER REFERENCES %s.dim_time(time_key),
			date_key              INTEGER REFERENCES %s.dim_date(date_key),
			trip_business_id      TEXT,
			is_night              BOOLEAN NOT NULL DEFAULT FALSE,
			is_cross_border       BOOLEAN NOT NULL DEFAULT FALSE
		)`, schema, schema, schema, schema, schema, schema, schema, schema, schema),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.trip_stop (
			trip_stop_key  INTEGER PRIMARY KEY,
			country_code   TEXT,
			operator_id    TEXT,
			trip_id        TEXT NOT NULL,
			stop_sequence  INTEGER,
			stop_id        TEXT NOT NULL,
			stop_name      TEXT,
			stop_lat       DOUBLE PRECISION,
			stop_lon       DOUBLE PRECISION,
			arrival_time   TEXT,
			departure_time TEXT,
			date_value     DATE
		)`, schema),
	}
}

// truncateStatement truncates every destination table in one statement so
// the refresh replaces prior contents atomically within the transaction.
func truncateStatement(schema string) string {
	stmt := "TRUNCATE "
	for i, t := range tables {
		if i > 0 {
			stmt += ", "
		}
		stmt += schema + "." + t
	}
	return stmt
}
