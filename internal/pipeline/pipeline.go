// Package pipeline runs one full warehouse refresh: resolve sources, fetch
// and extract each feed, normalize, build the dimensional model, load.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"railmart/internal/config"
	"railmart/internal/feeds"
	"railmart/internal/gtfs"
	"railmart/internal/mart"
	"railmart/internal/metrics"
	"railmart/internal/registry"
	"railmart/internal/transform"
	"railmart/internal/warehouse"
)

// Pipeline holds the collaborators of one ETL run.
type Pipeline struct {
	cfg     *config.Config
	fetcher *feeds.Fetcher
	loader  *warehouse.Loader
	metrics *metrics.Collector
	logger  *slog.Logger
}

// Result summarizes a completed run. SourceErrors aggregates per-source
// fetch failures; they are warnings, not run failures.
type Result struct {
	Sources      int
	Skipped      int
	Segments     int
	TripStops    int
	Loaded       bool
	SourceErrors error
}

// New creates a Pipeline.
func New(cfg *config.Config, fetcher *feeds.Fetcher, loader *warehouse.Loader, mcol *metrics.Collector, logger *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, fetcher: fetcher, loader: loader, metrics: mcol, logger: logger}
}

// Run executes the full refresh. Unreachable sources and registries degrade
// the run; only the final load transaction can fail it.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sources := p.resolveSources(ctx)
	p.logger.Info("sources resolved", "count", len(sources))
	if p.metrics != nil {
		p.metrics.SourcesResolved.Set(float64(len(sources)))
	}

	res := &Result{Sources: len(sources)}
	var srcErrs *multierror.Error

	var segments []gtfs.TripSegment
	var tripStops []gtfs.TripStop
	for _, src := range sources {
		if src.URL == "" {
			continue
		}
		start := time.Now()
		content, err := p.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			p.logger.Warn("feed unreachable, skipping source",
				"operator", src.Operator, "url", src.URL, "error", err)
			srcErrs = multierror.Append(srcErrs, fmt.Errorf("source %s: %w", src.Operator, err))
			res.Skipped++
			if p.metrics != nil {
				p.metrics.FeedsSkipped.Inc()
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.FetchDuration.Observe(time.Since(start).Seconds())
			p.metrics.FeedsFetched.Inc()
		}

		ex := gtfs.ExtractFeed(content, src.Country, src.Operator, p.logger)
		segments = append(segments, ex.Segments...)
		tripStops = append(tripStops, ex.TripStops...)
		if p.metrics != nil {
			p.metrics.SegmentsExtracted.Add(float64(len(ex.Segments)))
			p.metrics.TripStopsExtracted.Add(float64(len(ex.TripStops)))
		}
	}
	res.SourceErrors = srcErrs.ErrorOrNil()

	if len(segments) == 0 {
		p.logger.Warn("no trip segments extracted, warehouse left untouched")
		return res, nil
	}

	now := time.Now()
	segments = transform.Segments(segments, now)
	tripStops = transform.TripStops(tripStops)
	res.Segments = len(segments)
	res.TripStops = len(tripStops)

	nightOps := p.loadNightTrains(ctx)
	countries := p.loadCountries(ctx)

	m := mart.Build(segments, tripStops, nightOps, countries, now)

	if err := p.loader.Load(ctx, m); err != nil {
		return res, fmt.Errorf("warehouse load: %w", err)
	}
	res.Loaded = true

	p.logger.Info("run complete",
		"sources", res.Sources,
		"skipped", res.Skipped,
		"segments", res.Segments,
		"trip_stops", res.TripStops,
	)
	return res, nil
}

// resolveSources combines the static registry with dynamically discovered
// catalog sources. A catalog failure degrades to static sources only.
func (p *Pipeline) resolveSources(ctx context.Context) []feeds.Source {
	sources := feeds.FilterStatic(p.cfg.TargetCountries)

	data, err := p.fetcher.Fetch(ctx, p.cfg.CatalogURL)
	if err != nil {
		p.logger.Warn("feed catalog unavailable, using static sources only", "error", err)
		return sources
	}
	entries, err := feeds.ParseCatalog(data)
	if err != nil {
		p.logger.Warn("feed catalog unreadable, using static sources only", "error", err)
		return sources
	}

	discovered := feeds.DiscoverSources(entries, p.cfg.TargetCountries, p.cfg.MaxFeedsPerCountry, feeds.DefaultScoreWeights)
	p.logger.Info("catalog sources discovered", "count", len(discovered))
	return append(sources, discovered...)
}

// loadNightTrains fetches the night-train registry; failure means reduced
// operator coverage, nothing more.
func (p *Pipeline) loadNightTrains(ctx context.Context) []registry.NightTrainOperator {
	data, err := p.fetcher.Fetch(ctx, p.cfg.NightTrainsURL)
	if err != nil {
		p.logger.Warn("night-train registry unavailable", "error", err)
		return nil
	}
	ops, err := registry.ParseNightTrains(data)
	if err != nil {
		p.logger.Warn("night-train registry unreadable", "error", err)
		return nil
	}
	return ops
}

// loadCountries fetches the geography registry; failure leaves dim_country
// empty and country lookups unresolved.
func (p *Pipeline) loadCountries(ctx context.Context) []registry.Country {
	data, err := p.fetcher.Fetch(ctx, p.cfg.GeoURL)
	if err != nil {
		p.logger.Warn("geography registry unavailable", "error", err)
		return nil
	}
	countries, err := registry.ParseCountries(data)
	if err != nil {
		p.logger.Warn("geography registry unreadable", "error", err)
		return nil
	}
	return countries
}
