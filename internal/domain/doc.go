// Package domain models the travel-trend scoring dataset: season calendars,
// the regions and activities sampled per country, and the rows that join
// weather history with search interest.
//
// # Data Sources
//
// Three collaborators feed every row:
//
//	Geocoder       region display name → latitude/longitude
//	WeatherClient  coordinates + season range → daily weather series
//	TrendsClient   activity + country geo code + date range → interest per location
//
// The interfaces live in this package; concrete adapters live under
// internal/adapter.
//
// # Season Calendars
//
// Each country lists its seasons in a fixed order with a nominal start date
// in the reference year (2024 in the shipped catalog):
//
//	France:    spring 03-01, summer 06-01, fall 09-01, winter 12-01
//	Australia: spring 09-01, summer 12-01, fall 03-01, winter 06-01
//	Thailand:  dry 11-01, hot 03-01, wet 06-01
//
// A season ends where the next one in list order starts; the last season
// wraps to the first. An end date is always the first occurrence of the
// next start's month/day strictly after the season's own start, so
// "winter 2024-12-01" ends on 2025-03-01 and Australian "winter 2024-06-01"
// ends on 2024-09-01. See [DeriveRanges].
//
// Trend history for the reference year may not exist yet, so trend queries
// use the same range one year earlier. See [SeasonRange.Historical].
//
// # Trend Scores
//
// Google Trends GEO_MAP_0 returns interest per location on a 0–100 scale.
// Non-positive entries carry no signal and are dropped. The score is the
// mean of the rest divided by 100, kept within [BaselineTrendScore, 1].
// When nothing is left the score is BaselineTrendScore, so a row is never
// lost only because a country has no regional breakdown.
//
// # Weather Aggregates
//
// Open-Meteo daily variables, averaged over the days actually returned:
//
//	precipitation_sum     mm/day
//	temperature_2m_mean   °C
//	daylight_duration     seconds/day
//	wind_speed_10m_max    km/h
//
// The configured season duration is carried through as metadata only.
package domain
