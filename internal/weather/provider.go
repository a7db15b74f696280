package weather

import (
	"context"
)

// Provider abstracts a weather data source (OpenWeatherMap, Open-Meteo).
// Implementations memoize their payloads in the shared response cache.
type Provider interface {
	Name() string
	Current(ctx context.Context, q Query) (CurrentConditions, error)
	Forecast(ctx context.Context, q Query) ([]RawForecastSample, error)
	AirQuality(ctx context.Context, c Coordinates) (AirQuality, error)
}
