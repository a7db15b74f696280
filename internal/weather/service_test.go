package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	calls      []string
	currentErr error
	forecast   []RawForecastSample
	temps      map[string]int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Current(_ context.Context, q Query) (CurrentConditions, error) {
	p.calls = append(p.calls, "current:"+q.String())
	if p.currentErr != nil {
		return CurrentConditions{}, p.currentErr
	}
	return CurrentConditions{
		City:      q.City,
		Temp:      p.temps[q.City],
		Humidity:  40,
		WindSpeed: 12,
		Condition: ConditionClear,
		Coord:     Coordinates{Lat: 39.93, Lon: 32.85},
	}, nil
}

func (p *scriptedProvider) Forecast(_ context.Context, q Query) ([]RawForecastSample, error) {
	p.calls = append(p.calls, "forecast:"+q.String())
	return p.forecast, nil
}

func (p *scriptedProvider) AirQuality(_ context.Context, c Coordinates) (AirQuality, error) {
	p.calls = append(p.calls, "aqi:"+c.AirQualityKey())
	return NewAirQuality(3), nil
}

func TestLookupRunsStepsInOrder(t *testing.T) {
	p := &scriptedProvider{
		forecast: feed(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), 40),
		temps:    map[string]int{"Ankara": 22},
	}
	svc := NewService(p)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	report, err := svc.Lookup(context.Background(), CityQuery("Ankara"))
	require.NoError(t, err)

	assert.Equal(t, []string{"current:Ankara", "forecast:Ankara", "aqi:aqi_39.93_32.85"}, p.calls)
	assert.Equal(t, 22, report.Current.Temp)
	assert.Len(t, report.Daily, MaxDailySummaries)
	assert.Len(t, report.Hourly, MaxHourlySummaries)
	assert.Equal(t, "Moderate", report.AirQuality.Label)
	assert.Equal(t, "Perfect for outdoor activities!", report.Suggestions.Activity)
	assert.Equal(t, UnitMetric, report.Unit)
	assert.Equal(t, fixed, report.FetchedAt)
	assert.Equal(t, "scripted", svc.ProviderName())
}

func TestLookupStopsAtFirstFailure(t *testing.T) {
	p := &scriptedProvider{currentErr: ErrLocationNotFound}

	_, err := NewService(p).Lookup(context.Background(), CityQuery("Nowhereville"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocationNotFound))
	assert.Contains(t, err.Error(), "Nowhereville")
	assert.Equal(t, []string{"current:Nowhereville"}, p.calls)
}

func TestCompare(t *testing.T) {
	p := &scriptedProvider{temps: map[string]int{"Ankara": 18, "Izmir": 27}}

	cmp, err := NewService(p).Compare(context.Background(), "Ankara", "Izmir")
	require.NoError(t, err)
	assert.Equal(t, "Ankara", cmp.First.City)
	assert.Equal(t, "Izmir", cmp.Second.City)
	assert.Equal(t, 9, cmp.TempDiff)
	assert.Zero(t, cmp.HumidityDiff)
	assert.Zero(t, cmp.WindDiff)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "weather_Ankara", CityQuery("Ankara").CacheKey("weather"))
	assert.Equal(t, "forecast_Ankara", CityQuery("Ankara").CacheKey("forecast"))
	assert.Equal(t, "weather_39.93_32.85", CoordsQuery(39.93, 32.85).CacheKey("weather"))
	assert.Equal(t, "aqi_-33.86_151.2", Coordinates{Lat: -33.86, Lon: 151.2}.AirQualityKey())

	// A name wins over coordinates.
	q := CoordsQuery(1, 2)
	q.City = "Izmir"
	assert.Equal(t, "weather_Izmir", q.CacheKey("weather"))
	assert.Equal(t, "Izmir", q.String())
	assert.Equal(t, "1,2", CoordsQuery(1, 2).String())
}

func TestErrorClasses(t *testing.T) {
	assert.True(t, IsValidationError(ErrEmptyQuery))
	assert.False(t, IsRetryable(ErrQueryTooShort))
	assert.False(t, IsRetryable(ErrPermissionDenied))
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(ErrLocationNotFound))
	assert.True(t, IsRetryable(ErrUpstream))
}
