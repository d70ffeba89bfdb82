// Command genmock produces a deterministic scoring dataset fixture by running
// the real collector over the embedded catalog with synthetic geocoding,
// weather and trends collaborators. No network access is needed.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/scoring_dataset.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/travel-trends-collector/internal/adapter/csvout"
	"github.com/couchcryptid/travel-trends-collector/internal/catalog"
	"github.com/couchcryptid/travel-trends-collector/internal/collector"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"github.com/couchcryptid/travel-trends-collector/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/scoring_dataset.csv", "output path for the dataset fixture")
	countries := flag.String("countries", "", "comma-separated countries to include (default all)")
	maxRegions := flag.Int("max-regions", 4, "regions per country (0 = all)")
	maxSeasons := flag.Int("max-seasons", 2, "seasons per country (0 = all)")
	flag.Parse()

	// Fixed clock for reproducible run timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.December, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	cat, err := catalog.MustDefault().Restrict(sharedcfg.ParseBrokers(*countries))
	if err != nil {
		return err
	}

	c := collector.New(cat, syntheticGeocoder{}, syntheticWeather{}, syntheticTrends{}, collector.Policy{
		MaxRegions: *maxRegions,
		MaxSeasons: *maxSeasons,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	res, err := c.Run(context.Background())
	if err != nil {
		return err
	}
	if err := csvout.WriteFile(*out, res.Rows); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d rows to %s", len(res.Rows), *out)

	for _, line := range summaryLines(res) {
		log.Print(line)
	}
	return nil
}

// summaryLines reports rows per country in name order.
func summaryLines(res collector.Result) []string {
	counts := res.CountByCountry()
	lines := make([]string, 0, len(counts))
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		lines = append(lines, fmt.Sprintf("  %-20s %d rows", name, counts[name]))
	}
	return lines
}

// unit hashes parts to a stable value in [0, 1).
func unit(parts ...string) float64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return float64(h.Sum64()%1_000_000) / 1_000_000
}

// syntheticGeocoder places every region at a stable pseudo-random point.
type syntheticGeocoder struct{}

func (syntheticGeocoder) Lookup(_ context.Context, name, countryCode string) (domain.Coordinates, error) {
	return domain.Coordinates{
		Lat: math.Round((unit(countryCode, name, "lat")*120-60)*1e4) / 1e4,
		Lon: math.Round((unit(countryCode, name, "lon")*360-180)*1e4) / 1e4,
	}, nil
}

// syntheticWeather derives a plausible daily series from latitude and the
// season's start month.
type syntheticWeather struct{}

func (syntheticWeather) Daily(_ context.Context, q domain.WeatherQuery) (domain.DailySeries, error) {
	days := q.Range.Days()
	lat := q.Coordinates.Lat
	// Northern summer peaks in July, southern in January.
	phase := 2 * math.Pi * float64(q.Range.Start.Month()-time.July) / 12
	if lat < 0 {
		phase += math.Pi
	}
	warmth := math.Cos(phase)

	s := domain.DailySeries{
		Precipitation: make([]float64, days),
		Temperature:   make([]float64, days),
		Daylight:      make([]float64, days),
		WindSpeed:     make([]float64, days),
	}
	for d := range days {
		wobble := math.Sin(float64(d) / 7)
		s.Precipitation[d] = math.Max(0, 2.5+1.5*wobble-warmth)
		s.Temperature[d] = 25 - math.Abs(lat)/3 + 8*warmth + wobble
		s.Daylight[d] = 43200 * (1 + 0.25*warmth*math.Abs(lat)/60)
		s.WindSpeed[d] = 15 + 3*wobble + math.Abs(lat)/10
	}
	return s, nil
}

// syntheticTrends scores each keyword, country and period stably.
type syntheticTrends struct{}

func (syntheticTrends) Interest(_ context.Context, q domain.TrendQuery) ([]domain.RegionalInterest, error) {
	regions := make([]domain.RegionalInterest, 3)
	for i := range regions {
		loc := fmt.Sprintf("%s-%d", q.GeoCode, i)
		regions[i] = domain.RegionalInterest{
			Location: loc,
			Value:    math.Floor(unit(q.Keyword, q.GeoCode, q.Range.String(), loc) * 100),
		}
	}
	return regions, nil
}
