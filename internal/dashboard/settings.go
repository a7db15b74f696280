package dashboard

import (
	"context"
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/logger"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Settings returns the current preferences.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetUnit changes the temperature unit shown in State.
func (s *Session) SetUnit(ctx context.Context, unit weather.Unit) error {
	if err := validate.Var(string(unit), "oneof=metric imperial"); err != nil {
		return fmt.Errorf("unsupported unit %q", unit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Unit = unit
	s.prefs.Set(ctx, KeyUnit, unit)
	return nil
}

// SetLanguage changes the language of provider descriptions. It applies
// from the next lookup on.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	if err := validate.Var(lang, "required,min=2,max=5"); err != nil {
		return fmt.Errorf("unsupported language %q", lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Language = lang
	s.prefs.Set(ctx, KeyLanguage, lang)
	return nil
}

// ToggleAutoRefresh flips auto-refresh and returns the new value.
func (s *Session) ToggleAutoRefresh(ctx context.Context) bool {
	s.mu.Lock()
	s.settings.AutoRefresh = !s.settings.AutoRefresh
	on := s.settings.AutoRefresh
	s.prefs.Set(ctx, KeyAutoRefresh, on)
	s.mu.Unlock()

	s.syncRefresher()
	return on
}

// ToggleNotifications flips notifications and returns the new value. When
// turning them on, permission is requested and a refusal is returned as
// weather.ErrPermissionDenied; the setting stays on.
func (s *Session) ToggleNotifications(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.settings.Notifications = !s.settings.Notifications
	on := s.settings.Notifications
	s.prefs.Set(ctx, KeyNotifications, on)
	s.mu.Unlock()

	if !on {
		return false, nil
	}
	if err := s.notifier.RequestPermission(ctx); err != nil {
		logger.Get().Warnw("notifications: permission not granted", "error", err)
		return true, err
	}
	return true, nil
}

// ToggleTheme switches between the dark and light themes.
func (s *Session) ToggleTheme(ctx context.Context) Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.Theme == ThemeDark {
		s.settings.Theme = ThemeLight
	} else {
		s.settings.Theme = ThemeDark
	}
	s.prefs.Set(ctx, KeyTheme, s.settings.Theme)
	return s.settings.Theme
}

// ClearAllData forgets favorites and recent searches. Settings are kept.
func (s *Session) ClearAllData(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = []Favorite{}
	s.recent = []string{}
	s.prefs.Delete(ctx, KeyFavorites)
	s.prefs.Delete(ctx, KeyRecent)

	logger.Get().Infow("dashboard: favorites and recent searches cleared")
}
