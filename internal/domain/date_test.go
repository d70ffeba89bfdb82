package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 1, d.Day())
	assert.Equal(t, "2024-06-01", d.String())

	_, err = ParseDate("01/06/2024")
	require.Error(t, err)
}

func TestDate_WithYear(t *testing.T) {
	// Only the year field changes, even when the day repeats its digits.
	d := NewDate(2020, time.December, 20)
	assert.Equal(t, "2019-12-20", d.WithYear(2019).String())

	leap := NewDate(2024, time.February, 29)
	assert.Equal(t, "2023-02-28", leap.WithYear(2023).String())
	assert.Equal(t, "2028-02-29", leap.WithYear(2028).String())
}

func TestDate_Arithmetic(t *testing.T) {
	start := NewDate(2024, time.December, 1)
	end := NewDate(2025, time.March, 1)

	assert.Equal(t, 90, start.DaysUntil(end))
	assert.True(t, start.Before(end))
	assert.True(t, end.After(start))
	assert.Equal(t, "2025-02-28", end.AddDays(-1).String())
	assert.True(t, start.Equal(NewDate(2024, time.December, 1)))
}
