// Command collect runs one collection over the configured catalog and
// writes the scoring dataset CSV. Progress and metrics are served over HTTP
// while it runs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/couchcryptid/travel-trends-collector/internal/adapter/csvout"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/geocsv"
	httpadapter "github.com/couchcryptid/travel-trends-collector/internal/adapter/http"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/httpcache"
	kafkaadapter "github.com/couchcryptid/travel-trends-collector/internal/adapter/kafka"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/mapbox"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/openmeteo"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/serpapi"
	"github.com/couchcryptid/travel-trends-collector/internal/catalog"
	"github.com/couchcryptid/travel-trends-collector/internal/collector"
	"github.com/couchcryptid/travel-trends-collector/internal/config"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("collection failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	cat, err := catalog.MustDefault().Restrict(cfg.Countries)
	if err != nil {
		return err
	}

	geocoder, err := newGeocoder(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	weatherOpts := []openmeteo.Option{openmeteo.WithRetry(cfg.WeatherRetries, cfg.WeatherBackoff)}
	if cfg.CacheEnabled {
		store, err := httpcache.Open(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer store.Close()
		if n, err := store.Purge(ctx); err != nil {
			logger.Warn("response cache purge failed", "error", err)
		} else {
			logger.Info("response cache ready", "path", cfg.CachePath, "ttl", cfg.CacheTTL, "purged", n)
		}
		weatherOpts = append(weatherOpts, openmeteo.WithCache(store))
	}
	weather := openmeteo.NewClient(cfg.WeatherURL, cfg.WeatherTimeout, logger, metrics, weatherOpts...)
	trends := serpapi.NewClient(cfg.SerpAPIKey, cfg.SerpAPIURL, cfg.TrendsTimeout, logger)

	c := collector.New(cat, geocoder, weather, trends, collector.Policy{
		MaxFailures: cfg.MaxFailures,
		TargetRows:  cfg.TargetRows,
		TrendsDelay: cfg.TrendsDelay,
		MaxRegions:  cfg.MaxRegions,
		MaxSeasons:  cfg.MaxSeasons,
		Seasons:     cfg.Seasons,
	}, logger, metrics)

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, c, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	res, err := c.Run(ctx)
	if err != nil {
		// Interrupted runs leave no partial dataset behind.
		logger.Warn("collection interrupted, no output written", "rows_discarded", len(res.Rows))
		return err
	}

	if err := csvout.WriteFile(cfg.OutputPath, res.Rows); err != nil {
		return err
	}
	logger.Info("dataset written", "path", cfg.OutputPath, "rows", len(res.Rows))

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		if err := writer.Publish(ctx, res.RunID, res.FinishedAt, res.Rows); err != nil {
			logger.Error("kafka publish failed", "error", err)
		}
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logSummary(logger, res)
	return nil
}

func newGeocoder(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.Geocoder, error) {
	if cfg.Geocoder == config.GeocoderMapbox {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
		return mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics), nil
	}

	g, err := geocsv.Load(ctx, cfg.GeocoderSource, &http.Client{Timeout: time.Minute})
	if err != nil {
		return nil, err
	}
	logger.Info("places table loaded", "source", cfg.GeocoderSource, "places", g.Len())
	return g, nil
}

func logSummary(logger *slog.Logger, res collector.Result) {
	counts := res.CountByCountry()
	countries := make([]string, 0, len(counts))
	for name := range counts {
		countries = append(countries, name)
	}
	slices.Sort(countries)

	for _, name := range countries {
		logger.Info("rows per country", "country", name, "rows", counts[name])
	}
	logger.Info("collection summary",
		"run_id", res.RunID,
		"rows", len(res.Rows),
		"failures", res.Failures,
		"reason", res.Reason,
		"duration", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
	)
}
