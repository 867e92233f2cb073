package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default URLs for the auxiliary registries. All three can be overridden
// through the environment, which also makes them easy to point at fixtures.
const (
	DefaultCatalogURL = "https://files.mobilitydatabase.org/feeds_v2.csv"

	DefaultNightTrainsURL = "https://docs.google.com/spreadsheets/d/" +
		"15zsK-lBuibUtZ1s2FxVHvAmSu-pEuE0NDT6CAMYL2TY/export?format=csv"

	DefaultGeoURL = "https://gisco-services.ec.europa.eu/distribution/v2/countries/csv/CNTR_AT_2024.csv"
)

// DefaultTargetCountries is the built-in target set used when
// TARGET_COUNTRIES is not supplied.
var DefaultTargetCountries = []string{
	"FR", "DE", "GB", "IT", "ES", "NL", "BE", "CH", "AT", "PL", "SE", "NO", "DK",
}

// Config holds application configuration from .env and environment variables.
type Config struct {
	DatabaseURL     string
	WarehouseSchema string

	TargetCountries    map[string]bool
	MaxFeedsPerCountry int

	FetchTimeout time.Duration

	CatalogURL     string
	NightTrainsURL string
	GeoURL         string

	Port        int
	MetricsAddr string // empty disables the metrics server
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		WarehouseSchema:    envStr("WAREHOUSE_SCHEMA", "railmart"),
		MaxFeedsPerCountry: envInt("MAX_FEEDS_PER_COUNTRY", 3),
		CatalogURL:         envStr("FEED_CATALOG_URL", DefaultCatalogURL),
		NightTrainsURL:     envStr("NIGHT_TRAINS_URL", DefaultNightTrainsURL),
		GeoURL:             envStr("GEO_REGISTRY_URL", DefaultGeoURL),
		Port:               envInt("PORT", 8080),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
	}

	if cfg.MaxFeedsPerCountry < 1 {
		return nil, fmt.Errorf("invalid MAX_FEEDS_PER_COUNTRY: %d", cfg.MaxFeedsPerCountry)
	}

	cfg.TargetCountries = ParseCountryCodes(os.Getenv("TARGET_COUNTRIES"))
	if len(cfg.TargetCountries) == 0 {
		cfg.TargetCountries = ParseCountryCodes(strings.Join(DefaultTargetCountries, ","))
	}

	sec := envInt("FETCH_TIMEOUT_SEC", 120)
	if sec <= 0 {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT_SEC: %d", sec)
	}
	cfg.FetchTimeout = time.Duration(sec) * time.Second

	// Database DSN: prefer DATABASE_URL / PG_DSN, else build from PG* vars
	dsn := firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"))
	if dsn == "" {
		host := envStr("PGHOST", "127.0.0.1")
		port := envStr("PGPORT", "5432")
		user := envStr("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		db := os.Getenv("PGDATABASE")
		if db == "" {
			return nil, errors.New("PGDATABASE or DATABASE_URL must be set")
		}
		sslmode := envStr("PGSSLMODE", "disable")
		if pass != "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
		} else {
			dsn = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
		}
	}
	cfg.DatabaseURL = dsn

	return cfg, nil
}

// ParseCountryCodes splits a comma-separated list of country codes into a
// set of trimmed, uppercased codes. Blank items are ignored.
func ParseCountryCodes(value string) map[string]bool {
	codes := make(map[string]bool)
	for _, item := range strings.Split(value, ",") {
		item = strings.ToUpper(strings.TrimSpace(item))
		if item != "" {
			codes[item] = true
		}
	}
	return codes
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
