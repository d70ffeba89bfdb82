// Command validate checks a scoring dataset CSV against the embedded
// catalog: schema, value ranges, catalog membership, configured season
// durations, duplicate samples and per-season weather consistency.
//
// Usage:
//
//	go run ./cmd/validate -input scoring_dataset.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/travel-trends-collector/internal/adapter/csvout"
	"github.com/couchcryptid/travel-trends-collector/internal/catalog"
	"github.com/couchcryptid/travel-trends-collector/internal/domain"
)

const secondsPerDay = 86400

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "scoring_dataset.csv", "path to the dataset CSV")
	flag.Parse()

	if code := run(*input); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Travel Trends Dataset Validation ===")
	fmt.Println()

	rows, err := csvout.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read dataset: %v\n", err)
		return 1
	}
	cat, err := catalog.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	phases := validate(rows, cat)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d across %d countries\n", len(rows), countCountries(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(rows []domain.CollectedRow, cat *domain.Catalog) []*phase {
	return []*phase{
		validateRanges(rows),
		validateCatalogMembership(rows, cat),
		validateUniqueness(rows),
		validateWeatherConsistency(rows),
	}
}

// validateRanges checks per-row value bounds.
func validateRanges(rows []domain.CollectedRow) *phase {
	p := &phase{name: "Value ranges"}
	for _, r := range rows {
		if r.TrendScore < domain.BaselineTrendScore || r.TrendScore > 1 {
			p.errorf("%s: trend_score %v outside [%v, 1]", r.Key(), r.TrendScore, domain.BaselineTrendScore)
		}
		if r.SeasonDuration <= 0 {
			p.errorf("%s: season_duration %d is not positive", r.Key(), r.SeasonDuration)
		}
		for name, v := range map[string]float64{
			"avg_daily_precipitation": r.AvgDailyPrecipitation,
			"avg_daily_temperature":   r.AvgDailyTemperature,
			"avg_daily_daylight":      r.AvgDailyDaylight,
			"avg_daily_wind_speed":    r.AvgDailyWindSpeed,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("%s: %s is %v", r.Key(), name, v)
			}
		}
		if r.AvgDailyPrecipitation < 0 {
			p.errorf("%s: negative precipitation %v", r.Key(), r.AvgDailyPrecipitation)
		}
		if r.AvgDailyDaylight < 0 || r.AvgDailyDaylight > secondsPerDay {
			p.errorf("%s: daylight %v outside a day", r.Key(), r.AvgDailyDaylight)
		}
		if r.AvgDailyWindSpeed < 0 {
			p.errorf("%s: negative wind speed %v", r.Key(), r.AvgDailyWindSpeed)
		}
	}
	return p
}

// validateCatalogMembership checks that every triple comes from the catalog
// and carries the configured season duration.
func validateCatalogMembership(rows []domain.CollectedRow, cat *domain.Catalog) *phase {
	p := &phase{name: "Catalog membership"}
	activities := cat.Activities()
	for _, r := range rows {
		country, ok := cat.Country(r.Country)
		if !ok {
			p.errorf("%s: unknown country", r.Key())
			continue
		}
		if !slices.Contains(country.Regions, r.City) {
			p.errorf("%s: %q is not a region of %s", r.Key(), r.City, r.Country)
		}
		if !slices.Contains(activities, r.Activity) {
			p.errorf("%s: unknown activity %q", r.Key(), r.Activity)
		}
		season, ok := country.Seasons.Lookup(r.Season)
		if !ok {
			p.errorf("%s: %s has no season %q", r.Key(), r.Country, r.Season)
			continue
		}
		if want := season.Duration(); r.SeasonDuration != want {
			p.errorf("%s: season_duration %d, catalog says %d", r.Key(), r.SeasonDuration, want)
		}
	}
	return p
}

// validateUniqueness checks that each (country, city, season, activity)
// sample appears once.
func validateUniqueness(rows []domain.CollectedRow) *phase {
	p := &phase{name: "Unique samples"}
	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		if first, dup := seen[r.Key()]; dup {
			p.errorf("%s: rows %d and %d", r.Key(), first+1, i+1)
			continue
		}
		seen[r.Key()] = i
	}
	return p
}

// validateWeatherConsistency checks that all activities of one (region,
// season) share the same weather aggregates.
func validateWeatherConsistency(rows []domain.CollectedRow) *phase {
	p := &phase{name: "Shared weather per region and season"}
	type weather [4]float64
	first := make(map[string]weather)
	for _, r := range rows {
		key := r.Country + "|" + r.City + "|" + r.Season
		w := weather{r.AvgDailyPrecipitation, r.AvgDailyTemperature, r.AvgDailyDaylight, r.AvgDailyWindSpeed}
		if prev, ok := first[key]; ok && prev != w {
			p.errorf("%s: activity %q has weather %v, expected %v", key, r.Activity, w, prev)
			continue
		}
		first[key] = w
	}
	return p
}

func countCountries(rows []domain.CollectedRow) int {
	seen := make(map[string]bool)
	for _, r := range rows {
		seen[r.Country] = true
	}
	return len(seen)
}
