package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

const (
	GeocoderCSV    = "csv"
	GeocoderMapbox = "mapbox"

	defaultStatesCSV = "https://raw.githubusercontent.com/dr5hn/countries-states-cities-database/master/csv/states.csv"
)

// Config holds all collector settings, populated from environment variables.
type Config struct {
	OutputPath string
	HTTPAddr   string // empty disables the metrics server
	LogLevel   string
	LogFormat  string

	ShutdownTimeout time.Duration

	// Sampling and stop policy.
	Countries   []string
	Seasons     []string
	MaxRegions  int
	MaxSeasons  int
	MaxFailures int
	TargetRows  int
	TrendsDelay time.Duration

	// Geocoding configuration.
	Geocoder        string
	GeocoderSource  string
	MapboxToken     string
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Open-Meteo archive configuration.
	WeatherURL     string
	WeatherTimeout time.Duration
	WeatherRetries int
	WeatherBackoff time.Duration

	// On-disk response cache for weather lookups.
	CacheEnabled bool
	CachePath    string
	CacheTTL     time.Duration

	// SerpAPI Google Trends configuration.
	SerpAPIKey    string
	SerpAPIURL    string
	TrendsTimeout time.Duration

	// Optional Kafka sink for the collected rows.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment (and a .env file when one
// exists), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", "scoring_dataset.csv"),
		HTTPAddr:        envOrEmpty("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Countries: sharedcfg.ParseBrokers(os.Getenv("COUNTRIES")),
		Seasons:   sharedcfg.ParseBrokers(os.Getenv("SEASONS")),

		Geocoder:       strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER", GeocoderCSV)),
		GeocoderSource: sharedcfg.EnvOrDefault("GEOCODER_CSV_SOURCE", defaultStatesCSV),
		MapboxToken:    os.Getenv("MAPBOX_TOKEN"),

		WeatherURL: sharedcfg.EnvOrDefault("OPEN_METEO_URL", "https://archive-api.open-meteo.com/v1/archive"),

		CachePath: sharedcfg.EnvOrDefault("CACHE_PATH", ".cache/responses.db"),

		SerpAPIKey: os.Getenv("SERPAPI_KEY"),
		SerpAPIURL: sharedcfg.EnvOrDefault("SERPAPI_URL", "https://serpapi.com/search"),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "travel-trend-rows"),
	}

	ints := []struct {
		key string
		def int
		min int
		dst *int
	}{
		{"MAX_REGIONS", 4, 0, &cfg.MaxRegions},
		{"MAX_SEASONS", 2, 0, &cfg.MaxSeasons},
		{"MAX_FAILURES", 20, 1, &cfg.MaxFailures},
		{"TARGET_ROWS", 0, 0, &cfg.TargetRows},
		{"MAPBOX_CACHE_SIZE", 1000, 1, &cfg.MapboxCacheSize},
		{"WEATHER_RETRIES", 5, 0, &cfg.WeatherRetries},
	}
	for _, v := range ints {
		if *v.dst, err = parseInt(v.key, v.def, v.min); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key  string
		def  string
		zero bool // zero allowed
		dst  *time.Duration
	}{
		{"TRENDS_DELAY", "2s", true, &cfg.TrendsDelay},
		{"MAPBOX_TIMEOUT", "5s", false, &cfg.MapboxTimeout},
		{"WEATHER_TIMEOUT", "60s", false, &cfg.WeatherTimeout},
		{"WEATHER_BACKOFF", "200ms", false, &cfg.WeatherBackoff},
		{"CACHE_TTL", "1h", false, &cfg.CacheTTL},
		{"TRENDS_TIMEOUT", "120s", false, &cfg.TrendsTimeout},
	}
	for _, v := range durations {
		if *v.dst, err = parseDuration(v.key, v.def, v.zero); err != nil {
			return nil, err
		}
	}

	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}

	if cfg.SerpAPIKey == "" {
		return nil, errors.New("SERPAPI_KEY is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	switch cfg.Geocoder {
	case GeocoderCSV:
		if cfg.GeocoderSource == "" {
			return nil, errors.New("GEOCODER_CSV_SOURCE is required for the csv geocoder")
		}
	case GeocoderMapbox:
		if cfg.MapboxToken == "" {
			return nil, errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q: want %s or %s", cfg.Geocoder, GeocoderCSV, GeocoderMapbox)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// envOrEmpty is EnvOrDefault that lets an explicitly empty value through.
func envOrEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseInt(key string, def, minValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minValue {
		return 0, fmt.Errorf("invalid %s %q: want an integer >= %d", key, s, minValue)
	}
	return n, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}
