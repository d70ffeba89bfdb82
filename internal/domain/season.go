package domain

import (
	"errors"
	"fmt"
)

// DefaultSeasonDays is the duration reported for a season whose calendar
// entry has no configured day count.
const DefaultSeasonDays = 90

var (
	ErrSingleSeason         = errors.New("calendar needs at least two seasons")
	ErrDuplicateSeasonStart = errors.New("seasons share a start day")
	ErrCalendarOrder        = errors.New("seasons do not wrap exactly once per year")
)

// Season is one named entry of a country calendar.
type Season struct {
	Name  string
	Start Date
	Days  int // configured duration, independent of the derived range
}

// Duration returns the configured day count or DefaultSeasonDays.
func (s Season) Duration() int {
	if s.Days > 0 {
		return s.Days
	}
	return DefaultSeasonDays
}

// Calendar is an ordered list of seasons for one country.
type Calendar []Season

// Lookup returns the season with the given name.
func (c Calendar) Lookup(name string) (Season, bool) {
	for _, s := range c {
		if s.Name == name {
			return s, true
		}
	}
	return Season{}, false
}

// Names returns season names in calendar order.
func (c Calendar) Names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name
	}
	return names
}

// SeasonRange is the half-open interval [Start, End) covered by a season.
type SeasonRange struct {
	Start Date
	End   Date
}

// Days returns the number of days in the range.
func (r SeasonRange) Days() int {
	return r.Start.DaysUntil(r.End)
}

// Historical returns the range moved one year back. Trend queries use it
// because search history for the reference year may be incomplete.
func (r SeasonRange) Historical() SeasonRange {
	return SeasonRange{
		Start: r.Start.WithYear(r.Start.Year() - 1),
		End:   r.End.WithYear(r.End.Year() - 1),
	}
}

func (r SeasonRange) String() string {
	return r.Start.String() + " " + r.End.String()
}

// DeriveRanges computes the range of every season in cal. Each season ends
// on the first occurrence of the next season's start day after its own
// start; the last season wraps to the first.
func DeriveRanges(cal Calendar) (map[string]SeasonRange, error) {
	if len(cal) < 2 {
		return nil, fmt.Errorf("derive ranges for %d season(s): %w", len(cal), ErrSingleSeason)
	}

	seen := make(map[string]string, len(cal))
	for _, s := range cal {
		if s.Start.IsZero() {
			return nil, fmt.Errorf("season %q has no start date", s.Name)
		}
		key := s.Start.Time().Format("01-02")
		if other, ok := seen[key]; ok {
			return nil, fmt.Errorf("seasons %q and %q start on %s: %w", other, s.Name, key, ErrDuplicateSeasonStart)
		}
		seen[key] = s.Name
	}

	ranges := make(map[string]SeasonRange, len(cal))
	wraps := 0
	for i, s := range cal {
		next := cal[(i+1)%len(cal)].Start
		if dayKey(next) < dayKey(s.Start) {
			wraps++
		}
		end := next.WithYear(s.Start.Year())
		if !end.After(s.Start) {
			end = next.WithYear(s.Start.Year() + 1)
		}
		ranges[s.Name] = SeasonRange{Start: s.Start, End: end}
	}
	if wraps != 1 {
		return nil, fmt.Errorf("calendar %v wraps %d times: %w", cal.Names(), wraps, ErrCalendarOrder)
	}
	return ranges, nil
}

// dayKey orders dates by month and day, ignoring the year.
func dayKey(d Date) int {
	return int(d.Month())*100 + d.Day()
}
