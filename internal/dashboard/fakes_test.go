package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// fakeProvider answers every query with fixed weather. Cities listed in
// failFirst fail that many times first; a negative count fails forever.
type fakeProvider struct {
	mu        sync.Mutex
	failFirst map[string]int
	err       error
	calls     map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		failFirst: map[string]int{},
		err:       weather.ErrLocationNotFound,
		calls:     map[string]int{},
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(_ context.Context, q weather.Query) (weather.CurrentConditions, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := q.String()
	p.calls[key]++
	if n, ok := p.failFirst[key]; ok && (n < 0 || p.calls[key] <= n) {
		return weather.CurrentConditions{}, p.err
	}

	city := q.City
	if city == "" {
		city = "Çankaya"
	}
	return weather.CurrentConditions{
		Name:        city + ", Türkiye",
		City:        city,
		CountryCode: "TR",
		Temp:        21,
		Condition:   weather.ConditionClear,
		Description: "Clear sky",
		Humidity:    40,
		WindSpeed:   10,
		Coord:       weather.Coordinates{Lat: 39.93, Lon: 32.85},
	}, nil
}

func (p *fakeProvider) Forecast(_ context.Context, _ weather.Query) ([]weather.RawForecastSample, error) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []weather.RawForecastSample{
		{Timestamp: base, Temperature: 18, TempMin: 17, TempMax: 19, Condition: weather.ConditionClear, Description: "clear sky"},
		{Timestamp: base.Add(3 * time.Hour), Temperature: 22, TempMin: 21, TempMax: 23, Condition: weather.ConditionClouds, Description: "few clouds"},
	}, nil
}

func (p *fakeProvider) AirQuality(_ context.Context, _ weather.Coordinates) (weather.AirQuality, error) {
	return weather.NewAirQuality(2), nil
}

func (p *fakeProvider) setFailures(city string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failFirst[city] = n
}

func (p *fakeProvider) callsFor(city string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[city]
}

type notification struct{ title, body string }

type fakeNotifier struct {
	mu        sync.Mutex
	permErr   error
	requested int
	sent      []notification
}

func (n *fakeNotifier) RequestPermission(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested++
	return n.permErr
}

func (n *fakeNotifier) Notify(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{title, body})
}

func (n *fakeNotifier) notifications() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type fakeRefresher struct {
	mu      sync.Mutex
	city    string
	stopped bool
}

func (r *fakeRefresher) Watch(city string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.city = city
	return nil
}

func (r *fakeRefresher) Unwatch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.city = ""
}

func (r *fakeRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.city = ""
	r.stopped = true
}

func (r *fakeRefresher) watching() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.city
}

type fixture struct {
	provider *fakeProvider
	notifier *fakeNotifier
	kv       *store.MemoryStore
	session  *Session
}

func newFixture() *fixture {
	f := &fixture{
		provider: newFakeProvider(),
		notifier: &fakeNotifier{},
		kv:       store.NewMemoryStore(),
	}
	f.session = f.open()
	return f
}

// open starts another session over the same provider and store.
func (f *fixture) open() *Session {
	s := NewSession(weather.NewService(f.provider), NewPreferences(f.kv), Options{
		Retry:         &RetryPolicy{MaxRetries: 3},
		DebounceDelay: 20 * time.Millisecond,
		Notifier:      f.notifier,
	})
	s.Load(context.Background())
	return s
}
