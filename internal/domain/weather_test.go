package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateWeather_ConstantSeries(t *testing.T) {
	for _, c := range []float64{0, 3.5, -12, 43200} {
		series := []float64{c, c, c}
		agg, err := AggregateWeather(DailySeries{
			Precipitation: series,
			Temperature:   series,
			Daylight:      series,
			WindSpeed:     series,
		})
		require.NoError(t, err)

		assert.Equal(t, c, agg.Precipitation)
		assert.Equal(t, c, agg.Temperature)
		assert.Equal(t, c, agg.Daylight)
		assert.Equal(t, c, agg.WindSpeed)
	}
}

func TestAggregateWeather_MeanOverSeriesLength(t *testing.T) {
	agg, err := AggregateWeather(DailySeries{
		Precipitation: []float64{0, 2, 4},
		Temperature:   []float64{10, 20},
		Daylight:      []float64{36000, 40000, 44000, 48000},
		WindSpeed:     []float64{15},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, agg.Precipitation, 1e-9)
	assert.InDelta(t, 15.0, agg.Temperature, 1e-9)
	assert.InDelta(t, 42000.0, agg.Daylight, 1e-9)
	assert.InDelta(t, 15.0, agg.WindSpeed, 1e-9)
}

func TestAggregateWeather_SkipsMissingDays(t *testing.T) {
	agg, err := AggregateWeather(DailySeries{
		Precipitation: []float64{1, math.NaN(), 3},
		Temperature:   []float64{5},
		Daylight:      []float64{1},
		WindSpeed:     []float64{math.NaN(), 8},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, agg.Precipitation, 1e-9)
	assert.InDelta(t, 8.0, agg.WindSpeed, 1e-9)
}

func TestAggregateWeather_EmptySeries(t *testing.T) {
	_, err := AggregateWeather(DailySeries{
		Precipitation: []float64{1},
		Temperature:   []float64{math.NaN()},
		Daylight:      []float64{1},
		WindSpeed:     []float64{1},
	})
	require.ErrorIs(t, err, ErrEmptySeries)
	assert.Contains(t, err.Error(), "temperature")
}
