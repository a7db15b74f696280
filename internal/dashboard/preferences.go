package dashboard

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/i474232898/weather-dashboard/internal/logger"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Fixed preference keys.
const (
	KeyFavorites     = "weatherFavorites"
	KeyRecent        = "weatherRecentSearches"
	KeyUnit          = "weatherUnit"
	KeyLanguage      = "weatherLanguage"
	KeyAutoRefresh   = "weatherAutoRefresh"
	KeyNotifications = "weatherNotifications"
	KeyTheme         = "weatherTheme"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Favorite is a saved city.
type Favorite struct {
	Name        string            `json:"name"`
	City        string            `json:"city"`
	CountryCode string            `json:"countryCode"`
	Temp        int               `json:"temp"`
	Condition   weather.Condition `json:"condition"`
}

// Settings are the scalar preferences.
type Settings struct {
	Unit          weather.Unit `json:"unit"`
	Language      string       `json:"language"`
	AutoRefresh   bool         `json:"autoRefresh"`
	Notifications bool         `json:"notifications"`
	Theme         Theme        `json:"theme"`
}

// DefaultSettings are used for preferences never saved.
func DefaultSettings(language string) Settings {
	return Settings{
		Unit:     weather.UnitMetric,
		Language: language,
		Theme:    ThemeDark,
	}
}

// Preferences is a best-effort JSON view over a key-value store: reads of
// missing or unreadable keys yield nothing, writes report success as a flag.
// Failures are logged, never returned.
type Preferences struct {
	kv store.KV
}

// NewPreferences wraps kv.
func NewPreferences(kv store.KV) *Preferences {
	return &Preferences{kv: kv}
}

// Get decodes the value under key into v and reports whether it was present.
func (p *Preferences) Get(ctx context.Context, key string, v any) bool {
	raw, err := p.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Get().Warnw("preferences: read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Get().Warnw("preferences: stored value is not valid", "key", key, "error", err)
		return false
	}
	return true
}

// Set encodes v and stores it under key.
func (p *Preferences) Set(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Get().Warnw("preferences: encode failed", "key", key, "error", err)
		return false
	}
	if err := p.kv.Set(ctx, key, raw); err != nil {
		logger.Get().Warnw("preferences: write failed", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes key.
func (p *Preferences) Delete(ctx context.Context, key string) bool {
	if err := p.kv.Delete(ctx, key); err != nil {
		logger.Get().Warnw("preferences: delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// List returns the keys starting with prefix, or none on failure.
func (p *Preferences) List(ctx context.Context, prefix string) []string {
	keys, err := p.kv.List(ctx, prefix)
	if err != nil {
		logger.Get().Warnw("preferences: list failed", "prefix", prefix, "error", err)
		return []string{}
	}
	return keys
}
