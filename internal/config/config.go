package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"

	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Port        string `envconfig:"PORT" default:"8080" validate:"required,numeric"`

	// Provider selects the upstream weather API.
	Provider          string `envconfig:"WEATHER_PROVIDER" default:"openweather" validate:"oneof=openweather openmeteo"`
	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY"`
	GeocoderAPIKey    string `envconfig:"GEOCODER_API_KEY"`
	Language          string `envconfig:"WEATHER_LANGUAGE" default:"en" validate:"required,min=2"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`

	// CacheTTL is the freshness window for provider payloads.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"10m" validate:"gt=0"`

	// Lookup retry: RetryMax further attempts, RetryDelay apart.
	RetryMax   int           `envconfig:"RETRY_MAX" default:"3" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" default:"2s" validate:"gte=0"`

	AutoRefreshInterval time.Duration `envconfig:"AUTO_REFRESH_INTERVAL" default:"10m" validate:"gte=1m"`
	DebounceDelay       time.Duration `envconfig:"DEBOUNCE_DELAY" default:"500ms" validate:"gt=0"`

	Store StoreConfig
}

// StoreConfig selects and configures the preference store backend.
type StoreConfig struct {
	Backend       string `envconfig:"PREFS_BACKEND" default:"sqlite" validate:"oneof=memory sqlite redis"`
	SQLitePath    string `envconfig:"PREFS_SQLITE_PATH" default:"preferences.db"`
	RedisAddr     string `envconfig:"PREFS_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"PREFS_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"PREFS_REDIS_DB" default:"0" validate:"gte=0"`
	RedisPrefix   string `envconfig:"PREFS_REDIS_PREFIX" default:"weather-dashboard:"`
}

// Load reads configuration from the environment (and a .env file, if any)
// and validates it.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Provider == ProviderOpenWeather && c.OpenWeatherAPIKey == "" {
		return fmt.Errorf("invalid configuration: OPENWEATHER_API_KEY is required for provider %q", c.Provider)
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("invalid configuration: PREFS_SQLITE_PATH is required for the sqlite backend")
	}
	return nil
}
