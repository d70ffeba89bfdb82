// Package collector drives the sequential collection loop: countries →
// regions → seasons → activities, with a failure ceiling and an optional
// row target.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// StopReason tells why a run ended.
type StopReason string

const (
	StopExhausted      StopReason = "exhausted"
	StopFailureCeiling StopReason = "failure_ceiling"
	StopTargetReached  StopReason = "target_reached"
	StopCancelled      StopReason = "cancelled"
)

const (
	stageGeocode = "geocode"
	stageWeather = "weather"
	stageTrends  = "trends"
)

// Policy bounds a run.
type Policy struct {
	MaxFailures int           // stop once this many failures are counted; <= 0 disables
	TargetRows  int           // stop once this many rows exist; <= 0 disables
	TrendsDelay time.Duration // pause before every trends call
	MaxRegions  int           // regions sampled per country; <= 0 means all
	MaxSeasons  int           // seasons sampled per country; <= 0 means all
	Seasons     []string      // requested seasons in order; empty means calendar order
}

// Result is the outcome of one run.
type Result struct {
	RunID      string
	Rows       []domain.CollectedRow
	Failures   int
	Reason     StopReason
	StartedAt  time.Time
	FinishedAt time.Time
}

// CountByCountry returns the number of rows per country.
func (r Result) CountByCountry() map[string]int {
	counts := make(map[string]int)
	for _, row := range r.Rows {
		counts[row.Country]++
	}
	return counts
}

// Collector joins geocoding, weather history and search trends into rows.
type Collector struct {
	catalog  *domain.Catalog
	geocoder domain.Geocoder
	weather  domain.WeatherClient
	trends   domain.TrendsClient
	policy   Policy
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	started  atomic.Bool
	running  atomic.Bool
	rows     atomic.Int64
	failures atomic.Int64
}

// Progress is a point-in-time view of the current or last run.
type Progress struct {
	Running  bool `json:"running"`
	Rows     int  `json:"rows"`
	Failures int  `json:"failures"`
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock sets the clock used for the trends delay and call timings. The
// default is the domain package clock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Collector) { c.clock = clock }
}

// New creates a Collector over an immutable catalog.
func New(cat *domain.Catalog, g domain.Geocoder, w domain.WeatherClient, t domain.TrendsClient, policy Policy, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Collector {
	c := &Collector{
		catalog:  cat,
		geocoder: g,
		weather:  w,
		trends:   t,
		policy:   policy,
		logger:   logger,
		metrics:  metrics,
		clock:    domain.Clock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckReadiness returns nil once a run has started.
func (c *Collector) CheckReadiness(_ context.Context) error {
	if !c.started.Load() {
		return errors.New("collector has not started a run yet")
	}
	return nil
}

// Progress reports how far the current or last run has got. It is safe to
// call from other goroutines.
func (c *Collector) Progress() Progress {
	return Progress{
		Running:  c.running.Load(),
		Rows:     int(c.rows.Load()),
		Failures: int(c.failures.Load()),
	}
}

// run is the mutable state of one collection run. Rows are append-only and
// failures only grow.
type run struct {
	rows     []domain.CollectedRow
	failures int
	logger   *slog.Logger
}

// Run walks the catalog depth-first in configuration order. It returns the
// rows gathered before the first stop condition. The error is non-nil only
// when ctx is cancelled.
func (c *Collector) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString(), StartedAt: domain.Now()}
	r := &run{logger: c.logger.With("run_id", res.RunID)}

	c.started.Store(true)
	c.running.Store(true)
	c.rows.Store(0)
	c.failures.Store(0)
	c.metrics.CollectorRunning.Set(1)
	defer func() {
		c.running.Store(false)
		c.metrics.CollectorRunning.Set(0)
	}()

	r.logger.Info("collection started",
		"countries", len(c.catalog.Countries()),
		"activities", len(c.catalog.Activities()),
		"max_failures", c.policy.MaxFailures,
		"target_rows", c.policy.TargetRows,
	)

	reason, err := c.collect(ctx, r)

	res.Rows = r.rows
	res.Failures = r.failures
	res.Reason = reason
	res.FinishedAt = domain.Now()
	c.metrics.RunsStopped.WithLabelValues(string(reason)).Inc()

	r.logger.Info("collection finished",
		"reason", reason,
		"rows", len(res.Rows),
		"failures", res.Failures,
	)
	return res, err
}

func (c *Collector) collect(ctx context.Context, r *run) (StopReason, error) {
	activities := c.catalog.Activities()
	for _, country := range c.catalog.Countries() {
		r.logger.Info("processing country", "country", country.Name)
		seasons := c.seasonsFor(country, r.logger)

		for _, region := range c.regionsFor(country) {
			reason, err := c.collectRegion(ctx, r, country, region, seasons, activities)
			if reason != "" {
				return reason, err
			}
		}
	}
	return StopExhausted, nil
}

// collectRegion processes every season and activity for one region. It
// returns a non-empty reason when the run must stop.
func (c *Collector) collectRegion(ctx context.Context, r *run, country domain.Country, region string, seasons []domain.Season, activities []string) (StopReason, error) {
	logger := r.logger.With("country", country.Name, "region", region)
	if err := ctx.Err(); err != nil {
		return StopCancelled, err
	}

	coords, err := c.geocode(ctx, region, country.GeoCode)
	if err != nil {
		if ctx.Err() != nil {
			return StopCancelled, ctx.Err()
		}
		logger.Warn("geocoding failed, skipping region", "error", err)
		return c.fail(r, stageGeocode), nil
	}
	logger.Debug("region geocoded", "lat", coords.Lat, "lon", coords.Lon)

	for _, season := range seasons {
		rng, _ := c.catalog.Range(country.Name, season.Name)
		seasonLog := logger.With("season", season.Name)

		agg, err := c.fetchWeather(ctx, coords, rng)
		if err != nil {
			if ctx.Err() != nil {
				return StopCancelled, ctx.Err()
			}
			seasonLog.Warn("weather lookup failed, skipping season", "error", err, "range", rng.String())
			if reason := c.fail(r, stageWeather); reason != "" {
				return reason, nil
			}
			continue
		}

		for _, activity := range activities {
			score, err := c.trendScore(ctx, activity, country.GeoCode, rng.Historical(), seasonLog)
			switch {
			case err != nil && ctx.Err() != nil:
				return StopCancelled, ctx.Err()
			case err != nil:
				seasonLog.Warn("trend lookup failed, skipping row", "activity", activity, "error", err)
				if reason := c.fail(r, stageTrends); reason != "" {
					return reason, nil
				}
				continue
			}

			r.rows = append(r.rows, domain.NewRow(country.Name, region, activity, season, score, agg))
			c.rows.Add(1)
			c.metrics.RowsCollected.Inc()
			seasonLog.Debug("row added", "activity", activity, "trend_score", score)

			if reason := c.stopReason(r); reason != "" {
				return reason, nil
			}
		}
	}
	return "", nil
}

// fail counts one collaborator failure and evaluates the stop predicate.
func (c *Collector) fail(r *run, stage string) StopReason {
	r.failures++
	c.failures.Add(1)
	c.metrics.Failures.WithLabelValues(stage).Inc()
	return c.stopReason(r)
}

// stopReason is the single early-termination predicate. The failure
// ceiling takes priority over the row target.
func (c *Collector) stopReason(r *run) StopReason {
	if c.policy.MaxFailures > 0 && r.failures >= c.policy.MaxFailures {
		r.logger.Warn("too many failures, stopping", "failures", r.failures)
		return StopFailureCeiling
	}
	if c.policy.TargetRows > 0 && len(r.rows) >= c.policy.TargetRows {
		r.logger.Info("row target reached, stopping", "rows", len(r.rows))
		return StopTargetReached
	}
	return ""
}

func (c *Collector) regionsFor(country domain.Country) []string {
	if c.policy.MaxRegions > 0 && len(country.Regions) > c.policy.MaxRegions {
		return country.Regions[:c.policy.MaxRegions]
	}
	return country.Regions
}

// seasonsFor resolves the seasons sampled for a country. A requested season
// the calendar lacks is a configuration gap: logged and skipped, never
// counted as a failure.
func (c *Collector) seasonsFor(country domain.Country, logger *slog.Logger) []domain.Season {
	seasons := country.Seasons
	if len(c.policy.Seasons) > 0 {
		seasons = make([]domain.Season, 0, len(c.policy.Seasons))
		for _, name := range c.policy.Seasons {
			s, ok := country.Seasons.Lookup(name)
			if !ok {
				logger.Warn("no calendar entry for season, skipping", "country", country.Name, "season", name)
				c.metrics.ConfigGaps.Inc()
				continue
			}
			seasons = append(seasons, s)
		}
	}
	if c.policy.MaxSeasons > 0 && len(seasons) > c.policy.MaxSeasons {
		seasons = seasons[:c.policy.MaxSeasons]
	}
	for _, s := range seasons {
		if s.Days <= 0 {
			logger.Info("no configured duration, using default", "country", country.Name, "season", s.Name, "days", domain.DefaultSeasonDays)
		}
	}
	return seasons
}

func (c *Collector) geocode(ctx context.Context, region, countryCode string) (domain.Coordinates, error) {
	defer c.observe("geocoder", c.clock.Now())
	return c.geocoder.Lookup(ctx, region, countryCode)
}

func (c *Collector) fetchWeather(ctx context.Context, coords domain.Coordinates, rng domain.SeasonRange) (domain.WeatherAggregate, error) {
	start := c.clock.Now()
	series, err := c.weather.Daily(ctx, domain.WeatherQuery{Coordinates: coords, Range: rng})
	c.observe("weather", start)
	if err != nil {
		return domain.WeatherAggregate{}, err
	}
	return domain.AggregateWeather(series)
}

// trendScore waits out the rate-limit delay, fetches regional interest and
// normalizes it. An error means the fetch itself failed.
func (c *Collector) trendScore(ctx context.Context, activity, geoCode string, rng domain.SeasonRange, logger *slog.Logger) (float64, error) {
	if !sleepWithContext(ctx, c.clock, c.policy.TrendsDelay) {
		return 0, ctx.Err()
	}

	start := c.clock.Now()
	regions, err := c.trends.Interest(ctx, domain.TrendQuery{Keyword: activity, GeoCode: geoCode, Range: rng})
	c.observe("trends", start)
	if err != nil {
		return 0, err
	}

	score, signal := domain.NormalizeTrendScore(regions)
	if !signal {
		c.metrics.BaselineScores.Inc()
		logger.Info("no regional signal, using baseline score", "activity", activity, "regions", len(regions))
	}
	return score, nil
}

func (c *Collector) observe(collaborator string, start time.Time) {
	c.metrics.RequestDuration.WithLabelValues(collaborator).Observe(c.clock.Since(start).Seconds())
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
