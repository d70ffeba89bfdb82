package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func calendar(t *testing.T, entries ...string) Calendar {
	t.Helper()
	require.Zero(t, len(entries)%2, "entries are name/date pairs")
	cal := make(Calendar, 0, len(entries)/2)
	for i := 0; i < len(entries); i += 2 {
		cal = append(cal, Season{Name: entries[i], Start: mustDate(t, entries[i+1])})
	}
	return cal
}

func TestDeriveRanges_FourSeasons(t *testing.T) {
	cal := calendar(t,
		"spring", "2024-03-01",
		"summer", "2024-06-01",
		"fall", "2024-09-01",
		"winter", "2024-12-01",
	)

	ranges, err := DeriveRanges(cal)
	require.NoError(t, err)
	require.Len(t, ranges, 4)

	assert.Equal(t, "2024-03-01 2024-06-01", ranges["spring"].String())
	assert.Equal(t, "2024-06-01 2024-09-01", ranges["summer"].String())
	assert.Equal(t, "2024-09-01 2024-12-01", ranges["fall"].String())
	assert.Equal(t, "2024-12-01 2025-03-01", ranges["winter"].String(), "last season wraps one year later")
}

func TestDeriveRanges_Properties(t *testing.T) {
	cases := map[string]Calendar{
		"northern": calendar(t, "spring", "2024-03-01", "summer", "2024-06-01", "fall", "2024-09-01", "winter", "2024-12-01"),
		"southern": calendar(t, "spring", "2024-09-01", "summer", "2024-12-01", "fall", "2024-03-01", "winter", "2024-06-01"),
		"thailand": calendar(t, "dry", "2024-11-01", "hot", "2024-03-01", "wet", "2024-06-01"),
		"brazil":   calendar(t, "dry", "2024-05-01", "wet", "2024-10-01"),
		"mexico":   calendar(t, "dry", "2024-11-01", "wet", "2024-05-01"),
		"kenya":    calendar(t, "dry", "2024-06-01", "wet", "2024-03-01"),
		"january":  calendar(t, "second", "2024-07-01", "first", "2024-01-01"),
	}

	for name, cal := range cases {
		t.Run(name, func(t *testing.T) {
			ranges, err := DeriveRanges(cal)
			require.NoError(t, err)
			require.Len(t, ranges, len(cal))

			total := 0
			for i, s := range cal {
				r := ranges[s.Name]
				assert.True(t, r.End.After(r.Start), "%s: end %s must follow start %s", s.Name, r.End, r.Start)
				assert.Equal(t, s.Start, r.Start)

				// Each range ends where the next season begins (same day of year).
				next := cal[(i+1)%len(cal)].Start
				assert.Equal(t, next.Month(), r.End.Month())
				assert.Equal(t, next.Day(), r.End.Day())
				assert.LessOrEqual(t, r.Days(), 366)
				total += r.Days()
			}
			// No gaps and no overlap: one full year, allowing for Feb 29.
			assert.Contains(t, []int{365, 366}, total)
		})
	}
}

func TestDeriveRanges_SouthernHemisphereStaysWithinYear(t *testing.T) {
	cal := calendar(t, "spring", "2024-09-01", "summer", "2024-12-01", "fall", "2024-03-01", "winter", "2024-06-01")

	ranges, err := DeriveRanges(cal)
	require.NoError(t, err)

	assert.Equal(t, "2024-12-01 2025-03-01", ranges["summer"].String())
	assert.Equal(t, "2024-06-01 2024-09-01", ranges["winter"].String())
}

func TestDeriveRanges_Errors(t *testing.T) {
	t.Run("single season", func(t *testing.T) {
		_, err := DeriveRanges(calendar(t, "always", "2024-01-01"))
		require.ErrorIs(t, err, ErrSingleSeason)
		assert.Contains(t, err.Error(), "at least two seasons")
	})

	t.Run("empty calendar", func(t *testing.T) {
		_, err := DeriveRanges(nil)
		require.ErrorIs(t, err, ErrSingleSeason)
	})

	t.Run("duplicate start day", func(t *testing.T) {
		_, err := DeriveRanges(calendar(t, "a", "2024-03-01", "b", "2025-03-01"))
		require.ErrorIs(t, err, ErrDuplicateSeasonStart)
	})

	t.Run("out of cyclic order", func(t *testing.T) {
		_, err := DeriveRanges(calendar(t, "a", "2024-03-01", "b", "2024-12-01", "c", "2024-06-01", "d", "2024-09-01"))
		require.ErrorIs(t, err, ErrCalendarOrder)
	})

	t.Run("missing start", func(t *testing.T) {
		_, err := DeriveRanges(Calendar{{Name: "a"}, {Name: "b", Start: NewDate(2024, time.March, 1)}})
		require.Error(t, err)
	})
}

func TestSeasonRange_Historical(t *testing.T) {
	r := SeasonRange{Start: NewDate(2024, time.December, 1), End: NewDate(2025, time.March, 1)}

	h := r.Historical()

	assert.Equal(t, "2023-12-01", h.Start.String())
	assert.Equal(t, "2024-03-01", h.End.String())
	assert.Equal(t, r.Start.Month(), h.Start.Month())
	assert.Equal(t, r.Start.Day(), h.Start.Day())
}

func TestSeasonRange_HistoricalLeapDay(t *testing.T) {
	r := SeasonRange{Start: NewDate(2024, time.February, 29), End: NewDate(2024, time.June, 1)}

	h := r.Historical()

	assert.Equal(t, "2023-02-28", h.Start.String())
	assert.Equal(t, "2023-06-01", h.End.String())
}

func TestSeason_Duration(t *testing.T) {
	assert.Equal(t, 92, Season{Name: "spring", Days: 92}.Duration())
	assert.Equal(t, DefaultSeasonDays, Season{Name: "spring"}.Duration())
}

func TestCalendar_Lookup(t *testing.T) {
	cal := calendar(t, "dry", "2024-05-01", "wet", "2024-10-01")

	s, ok := cal.Lookup("wet")
	require.True(t, ok)
	assert.Equal(t, "2024-10-01", s.Start.String())

	_, ok = cal.Lookup("monsoon")
	assert.False(t, ok)
	assert.Equal(t, []string{"dry", "wet"}, cal.Names())
}
