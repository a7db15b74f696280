package dashboard

import (
	"context"
	"strings"
)

// AddFavorite saves the city on screen. It reports false when the city is
// already a favorite.
func (s *Session) AddFavorite(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report == nil {
		return false, ErrNoReport
	}
	if s.isFavoriteLocked() {
		return false, nil
	}

	cur := s.report.Current
	s.favorites = append(s.favorites, Favorite{
		Name:        cur.Name,
		City:        cur.City,
		CountryCode: cur.CountryCode,
		Temp:        cur.Temp,
		Condition:   cur.Condition,
	})
	s.prefs.Set(ctx, KeyFavorites, s.favorites)
	return true, nil
}

// RemoveFavorite drops city from the favorites. It reports whether the
// city was saved.
func (s *Session) RemoveFavorite(ctx context.Context, city string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Favorite, 0, len(s.favorites))
	for _, f := range s.favorites {
		if !strings.EqualFold(f.City, city) {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(s.favorites) {
		return false
	}

	s.favorites = kept
	s.prefs.Set(ctx, KeyFavorites, s.favorites)
	return true
}

// IsFavorite reports whether the city on screen is saved.
func (s *Session) IsFavorite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFavoriteLocked()
}

// ToggleFavorite adds the city on screen, or removes it when already saved.
// It reports whether the city is a favorite afterwards.
func (s *Session) ToggleFavorite(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.report == nil {
		s.mu.Unlock()
		return false, ErrNoReport
	}
	city := s.report.Current.City
	saved := s.isFavoriteLocked()
	s.mu.Unlock()

	if saved {
		s.RemoveFavorite(ctx, city)
		return false, nil
	}
	if _, err := s.AddFavorite(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Favorites returns the saved cities in the order they were added.
func (s *Session) Favorites() []Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Favorite{}, s.favorites...)
}

// RecentSearches returns up to five cities, most recent first.
func (s *Session) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.recent...)
}

func (s *Session) isFavoriteLocked() bool {
	if s.report == nil {
		return false
	}
	for _, f := range s.favorites {
		if strings.EqualFold(f.City, s.report.Current.City) {
			return true
		}
	}
	return false
}

func (s *Session) addRecentLocked(ctx context.Context, city string) {
	recent := make([]string, 0, maxRecentSearches)
	recent = append(recent, city)
	for _, c := range s.recent {
		if len(recent) == maxRecentSearches {
			break
		}
		if !strings.EqualFold(c, city) {
			recent = append(recent, c)
		}
	}
	s.recent = recent
	s.prefs.Set(ctx, KeyRecent, s.recent)
}
