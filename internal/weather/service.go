package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-dashboard/internal/logger"
)

// Service runs single weather lookups against a provider.
type Service struct {
	provider Provider
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
		now:      time.Now,
	}
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Lookup fetches current conditions, then the forecast, then air quality,
// each awaited before the next begins, and assembles a Report.
// Any step failing fails the whole lookup.
func (s *Service) Lookup(ctx context.Context, q Query) (Report, error) {
	log := logger.Get()

	current, err := s.provider.Current(ctx, q)
	if err != nil {
		return Report{}, fmt.Errorf("current conditions for %s: %w", q, err)
	}

	samples, err := s.provider.Forecast(ctx, q)
	if err != nil {
		return Report{}, fmt.Errorf("forecast for %s: %w", q, err)
	}

	aqi, err := s.provider.AirQuality(ctx, current.Coord)
	if err != nil {
		return Report{}, fmt.Errorf("air quality for %s: %w", q, err)
	}

	report := Report{
		Current:     current,
		Daily:       AggregateDaily(samples),
		Hourly:      AggregateHourly(samples),
		AirQuality:  aqi,
		Suggestions: Suggest(current),
		Unit:        UnitMetric,
		FetchedAt:   s.now().UTC(),
	}

	log.Debugw("lookup completed",
		"provider", s.provider.Name(),
		"query", q.String(),
		"samples", len(samples),
		"days", len(report.Daily),
	)
	return report, nil
}

// Compare fetches current conditions for two cities and reports their differences.
func (s *Service) Compare(ctx context.Context, first, second string) (Comparison, error) {
	a, err := s.provider.Current(ctx, CityQuery(first))
	if err != nil {
		return Comparison{}, fmt.Errorf("current conditions for %s: %w", first, err)
	}
	b, err := s.provider.Current(ctx, CityQuery(second))
	if err != nil {
		return Comparison{}, fmt.Errorf("current conditions for %s: %w", second, err)
	}

	return Comparison{
		First:        a,
		Second:       b,
		TempDiff:     absInt(a.Temp - b.Temp),
		HumidityDiff: absInt(a.Humidity - b.Humidity),
		WindDiff:     absInt(a.WindSpeed - b.WindSpeed),
	}, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
