// Package dashboard holds the state of one user's weather dashboard: the
// last lookup, favorites, recent searches and preferences.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/logger"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	maxRecentSearches  = 5
	inputSearchTimeout = time.Minute
)

// ErrNoReport is returned by operations that need a displayed city.
var ErrNoReport = errors.New("no weather report to act on")

var validate = validator.New()

// WeatherService runs single lookups.
type WeatherService interface {
	Lookup(ctx context.Context, q weather.Query) (weather.Report, error)
	Compare(ctx context.Context, first, second string) (weather.Comparison, error)
}

// Refresher re-runs the lookup for a city on a timer.
type Refresher interface {
	Watch(city string) error
	Unwatch()
	Stop()
}

// LookupError reports a search that failed after exhausting its retries.
type LookupError struct {
	Query    string
	Attempts int
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no city named %q was found or a connection error occurred", e.Query)
}

func (e *LookupError) Unwrap() error { return e.Err }

// State is a snapshot of what the dashboard shows.
type State struct {
	Query      string          `json:"query"`
	Report     *weather.Report `json:"report,omitempty"`
	UnitSymbol string          `json:"unitSymbol"`
	Error      string          `json:"error,omitempty"`
	Offline    bool            `json:"offline"`
	Loading    bool            `json:"loading"`
	Retries    int             `json:"retries"`
	IsFavorite bool            `json:"isFavorite"`
	Favorites  []Favorite      `json:"favorites"`
	Recent     []string        `json:"recentSearches"`
	Settings   Settings        `json:"settings"`
}

// Options configure a Session. A nil Retry means DefaultRetryPolicy.
type Options struct {
	Retry           *RetryPolicy
	DebounceDelay   time.Duration
	DefaultLanguage string
	Notifier        Notifier
}

// Session is the dashboard of a single user. Its lifetime is the
// application's; Close releases its timers.
type Session struct {
	svc      WeatherService
	prefs    *Preferences
	retry    RetryPolicy
	notifier Notifier
	debounce *debouncer

	mu        sync.Mutex
	refresher Refresher
	query     string
	report    *weather.Report
	errMsg    string
	offline   bool
	inFlight  int
	retries   int
	favorites []Favorite
	recent    []string
	settings  Settings
}

// NewSession creates a session with default settings. Call Load to restore
// saved preferences.
func NewSession(svc WeatherService, prefs *Preferences, opts Options) *Session {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = 500 * time.Millisecond
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	retry := DefaultRetryPolicy()
	if opts.Retry != nil {
		retry = *opts.Retry
	}

	return &Session{
		svc:       svc,
		prefs:     prefs,
		retry:     retry,
		notifier:  opts.Notifier,
		debounce:  newDebouncer(opts.DebounceDelay),
		favorites: []Favorite{},
		recent:    []string{},
		settings:  DefaultSettings(opts.DefaultLanguage),
	}
}

// AttachRefresher sets the auto-refresh timer. The session owns it from then on.
func (s *Session) AttachRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// Load restores favorites, recent searches and settings from the store.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var favorites []Favorite
	if s.prefs.Get(ctx, KeyFavorites, &favorites) && favorites != nil {
		s.favorites = favorites
	}
	var recent []string
	if s.prefs.Get(ctx, KeyRecent, &recent) && recent != nil {
		s.recent = recent
	}

	var unit weather.Unit
	if s.prefs.Get(ctx, KeyUnit, &unit) && (unit == weather.UnitMetric || unit == weather.UnitImperial) {
		s.settings.Unit = unit
	}
	var lang string
	if s.prefs.Get(ctx, KeyLanguage, &lang) && lang != "" {
		s.settings.Language = lang
	}
	var theme Theme
	if s.prefs.Get(ctx, KeyTheme, &theme) && (theme == ThemeDark || theme == ThemeLight) {
		s.settings.Theme = theme
	}
	s.prefs.Get(ctx, KeyAutoRefresh, &s.settings.AutoRefresh)
	s.prefs.Get(ctx, KeyNotifications, &s.settings.Notifications)

	logger.Get().Infow("dashboard: preferences loaded",
		"favorites", len(s.favorites),
		"recent", len(s.recent),
		"unit", s.settings.Unit,
	)
}

// Search looks up the weather for query, retrying fetch failures according
// to the retry policy. Each call starts with a fresh retry budget; nothing is
// retried automatically after it gives up.
//
// A silent search (auto-refresh) neither records a recent search nor sends
// the "updated" notification.
func (s *Session) Search(ctx context.Context, query string, silent bool) (weather.Report, error) {
	city := strings.TrimSpace(query)
	if err := validateQuery(city); err != nil {
		s.mu.Lock()
		s.errMsg = err.Error()
		s.mu.Unlock()
		return weather.Report{}, err
	}

	log := logger.Get().With("lookup_id", uuid.NewString(), "city", city)

	s.mu.Lock()
	s.inFlight++
	s.errMsg = ""
	s.retries = 0
	q := weather.Query{City: city, Language: s.settings.Language}
	s.mu.Unlock()
	defer s.doneLoading()

	maxAttempts := s.retry.MaxAttempts()
	var lastErr error
	attempt := 0
	for attempt < maxAttempts {
		attempt++
		lookupAttempts.Inc()

		report, err := s.svc.Lookup(ctx, q)
		if err == nil {
			s.succeed(ctx, city, report, silent)
			log.Infow("search succeeded", "attempt", attempt)
			return report, nil
		}

		lastErr = err
		log.Warnw("search attempt failed", "attempt", attempt, "error", err)
		if !weather.IsRetryable(err) || attempt == maxAttempts {
			break
		}

		s.mu.Lock()
		s.retries = attempt
		s.mu.Unlock()

		if werr := s.retry.wait(ctx); werr != nil {
			lastErr = werr
			break
		}
	}

	lookupFailures.Inc()
	lerr := &LookupError{Query: city, Attempts: attempt, Err: lastErr}
	s.fail(lerr)
	log.Errorw("search failed", "attempts", attempt, "error", lastErr)
	return weather.Report{}, lerr
}

// SearchByLocation looks up the weather at the device position. It is not
// retried; a refused permission is reported as weather.ErrPermissionDenied.
func (s *Session) SearchByLocation(ctx context.Context, loc Locator) (weather.Report, error) {
	coords, err := loc.Locate(ctx)
	if err == nil {
		if verr := validate.Struct(coords); verr != nil {
			err = fmt.Errorf("%w: %v", weather.ErrInvalidCoordinates, verr)
		}
	}
	if err != nil {
		msg := "location information could not be retrieved"
		if errors.Is(err, weather.ErrPermissionDenied) {
			msg = "location permission was not granted"
		}
		s.mu.Lock()
		s.errMsg = msg
		s.mu.Unlock()
		return weather.Report{}, err
	}

	s.mu.Lock()
	s.inFlight++
	s.errMsg = ""
	lang := s.settings.Language
	s.mu.Unlock()
	defer s.doneLoading()

	q := weather.CoordsQuery(coords.Lat, coords.Lon)
	q.Language = lang

	lookupAttempts.Inc()
	report, err := s.svc.Lookup(ctx, q)
	if err != nil {
		lookupFailures.Inc()
		s.mu.Lock()
		s.errMsg = "location information could not be retrieved"
		s.mu.Unlock()
		logger.Get().Warnw("location search failed", "query", q.String(), "error", err)
		return weather.Report{}, err
	}

	s.mu.Lock()
	s.query = q.String()
	s.report = &report
	s.mu.Unlock()
	s.syncRefresher()
	return report, nil
}

// Input handles typed search text: a search runs once the text has been
// stable for the debounce delay and is at least two characters long.
func (s *Session) Input(text string) {
	if text == "" {
		s.debounce.cancel()
		return
	}
	armed := s.debounce.trigger(func() {
		if validateQuery(strings.TrimSpace(text)) != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), inputSearchTimeout)
		defer cancel()
		_, _ = s.Search(ctx, text, false)
	})
	if !armed {
		logger.Get().Debugw("input ignored on a closed session", "text", text)
	}
}

// Refresh re-runs the lookup for city silently. It is the auto-refresh callback.
func (s *Session) Refresh(ctx context.Context, city string) {
	if _, err := s.Search(ctx, city, true); err != nil {
		logger.Get().Warnw("auto-refresh failed", "city", city, "error", err)
	}
}

// Compare fetches two cities side by side.
func (s *Session) Compare(ctx context.Context, first, second string) (weather.Comparison, error) {
	first, second = strings.TrimSpace(first), strings.TrimSpace(second)
	if err := validateQuery(first); err != nil {
		return weather.Comparison{}, err
	}
	if err := validateQuery(second); err != nil {
		return weather.Comparison{}, err
	}
	return s.svc.Compare(ctx, first, second)
}

// State returns a snapshot with temperatures in the preferred unit.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Query:      s.query,
		Error:      s.errMsg,
		Offline:    s.offline,
		Loading:    s.inFlight > 0,
		Retries:    s.retries,
		IsFavorite: s.isFavoriteLocked(),
		Favorites:  append([]Favorite(nil), s.favorites...),
		Recent:     append([]string(nil), s.recent...),
		UnitSymbol: weather.TempUnitSymbol(s.settings.Unit),
		Settings:   s.settings,
	}
	if s.report != nil {
		r := s.report.InUnit(s.settings.Unit)
		st.Report = &r
	}
	return st
}

// Close cancels the debounce timer and the auto-refresh job.
func (s *Session) Close() {
	s.debounce.close()

	s.mu.Lock()
	r := s.refresher
	s.mu.Unlock()
	if r != nil {
		r.Stop()
	}
}

func (s *Session) succeed(ctx context.Context, city string, report weather.Report, silent bool) {
	s.mu.Lock()
	s.query = city
	s.report = &report
	s.errMsg = ""
	s.offline = false
	s.retries = 0
	notify := s.settings.Notifications
	if !silent {
		s.addRecentLocked(ctx, city)
	}
	s.mu.Unlock()

	if !silent && notify {
		s.notifier.Notify("Weather updated", fmt.Sprintf("%s: %d°C, %s",
			report.Current.Name, report.Current.Temp, report.Current.Description))
	}
	s.syncRefresher()
}

func (s *Session) fail(err *LookupError) {
	s.mu.Lock()
	s.query = err.Query
	s.report = nil
	s.errMsg = err.Error()
	s.offline = true
	notify := s.settings.Notifications
	s.mu.Unlock()

	if notify {
		s.notifier.Notify("Error", "Weather information could not be retrieved")
	}
	s.syncRefresher()
}

func (s *Session) doneLoading() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

// syncRefresher keeps the auto-refresh job in line with the setting and the
// city on screen.
func (s *Session) syncRefresher() {
	s.mu.Lock()
	r := s.refresher
	enabled := s.settings.AutoRefresh
	city := ""
	if s.report != nil {
		city = s.report.Current.City
	}
	s.mu.Unlock()

	if r == nil {
		return
	}
	if !enabled || city == "" {
		r.Unwatch()
		return
	}
	if err := r.Watch(city); err != nil {
		logger.Get().Errorw("auto-refresh: failed to schedule", "city", city, "error", err)
	}
}

func validateQuery(q string) error {
	if err := validate.Var(q, "required"); err != nil {
		return weather.ErrEmptyQuery
	}
	if err := validate.Var(q, "min=2"); err != nil {
		return weather.ErrQueryTooShort
	}
	return nil
}
