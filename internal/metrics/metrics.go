// Package metrics exposes pipeline and loader instrumentation on a private
// prometheus registry.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	SourcesResolved prometheus.Gauge
	FeedsFetched    prometheus.Counter
	FeedsSkipped    prometheus.Counter

	SegmentsExtracted  prometheus.Counter
	TripStopsExtracted prometheus.Counter

	RowsLoaded *prometheus.CounterVec // table label

	FetchDuration prometheus.Histogram
	LoadDuration  prometheus.Histogram

	LastRunTimestamp prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SourcesResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railmart_sources_resolved",
			Help: "Number of feed sources resolved for the current run.",
		}),
		FeedsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmart_feeds_fetched_total",
			Help: "Total feeds fetched successfully.",
		}),
		FeedsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmart_feeds_skipped_total",
			Help: "Total feeds skipped after fetch or extraction failure.",
		}),
		SegmentsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmart_segments_extracted_total",
			Help: "Total trip segments extracted across all feeds.",
		}),
		TripStopsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmart_trip_stops_extracted_total",
			Help: "Total itinerary rows extracted across all feeds.",
		}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railmart_rows_loaded_total",
			Help: "Rows bulk-loaded into the warehouse, per table.",
		}, []string{"table"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railmart_fetch_duration_seconds",
			Help:    "Duration of feed downloads.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railmart_load_duration_seconds",
			Help:    "Duration of the warehouse load transaction.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railmart_last_run_timestamp_seconds",
			Help: "Unix time of the last completed warehouse refresh.",
		}),
	}

	reg.MustRegister(
		c.SourcesResolved, c.FeedsFetched, c.FeedsSkipped,
		c.SegmentsExtracted, c.TripStopsExtracted,
		c.RowsLoaded, c.FetchDuration, c.LoadDuration,
		c.LastRunTimestamp,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return srv
}
