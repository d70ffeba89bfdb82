package domain

// CollectedRow is one (region, season, activity) sample of the dataset.
type CollectedRow struct {
	Country               string  `json:"country"`
	City                  string  `json:"city"`
	Activity              string  `json:"activity"`
	Season                string  `json:"season"`
	TrendScore            float64 `json:"trend_score"`
	AvgDailyPrecipitation float64 `json:"avg_daily_precipitation"`
	AvgDailyTemperature   float64 `json:"avg_daily_temperature"`
	AvgDailyDaylight      float64 `json:"avg_daily_daylight"`
	AvgDailyWindSpeed     float64 `json:"avg_daily_wind_speed"`
	SeasonDuration        int     `json:"season_duration"`
}

// NewRow joins the shared weather aggregate of a (region, season) pair with
// the trend score of one activity.
func NewRow(country, city, activity string, season Season, score float64, w WeatherAggregate) CollectedRow {
	return CollectedRow{
		Country:               country,
		City:                  city,
		Activity:              activity,
		Season:                season.Name,
		TrendScore:            score,
		AvgDailyPrecipitation: w.Precipitation,
		AvgDailyTemperature:   w.Temperature,
		AvgDailyDaylight:      w.Daylight,
		AvgDailyWindSpeed:     w.WindSpeed,
		SeasonDuration:        season.Duration(),
	}
}

// Key identifies the sample a row belongs to.
func (r CollectedRow) Key() string {
	return r.Country + "|" + r.City + "|" + r.Season + "|" + r.Activity
}
