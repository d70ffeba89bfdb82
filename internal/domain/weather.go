package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrEmptySeries = errors.New("weather series has no values")

// WeatherQuery asks for daily history at a point over a season range.
type WeatherQuery struct {
	Coordinates Coordinates
	Range       SeasonRange
}

// DailySeries holds the four daily variables for a query. NaN marks a day
// the provider reported no value for.
type DailySeries struct {
	Precipitation []float64 // mm
	Temperature   []float64 // °C, daily mean
	Daylight      []float64 // seconds
	WindSpeed     []float64 // km/h, daily max
}

// WeatherClient fetches daily weather history.
type WeatherClient interface {
	Daily(ctx context.Context, q WeatherQuery) (DailySeries, error)
}

// WeatherAggregate is the per-day average of each series over a season.
type WeatherAggregate struct {
	Precipitation float64
	Temperature   float64
	Daylight      float64
	WindSpeed     float64
}

// AggregateWeather averages each series over the days it has values for.
func AggregateWeather(s DailySeries) (WeatherAggregate, error) {
	var (
		agg WeatherAggregate
		err error
	)
	if agg.Precipitation, err = mean("precipitation", s.Precipitation); err != nil {
		return WeatherAggregate{}, err
	}
	if agg.Temperature, err = mean("temperature", s.Temperature); err != nil {
		return WeatherAggregate{}, err
	}
	if agg.Daylight, err = mean("daylight", s.Daylight); err != nil {
		return WeatherAggregate{}, err
	}
	if agg.WindSpeed, err = mean("wind_speed", s.WindSpeed); err != nil {
		return WeatherAggregate{}, err
	}
	return agg, nil
}

func mean(name string, values []float64) (float64, error) {
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("%s: %w", name, ErrEmptySeries)
	}
	return sum / float64(n), nil
}
