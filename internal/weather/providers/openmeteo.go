package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	openMeteoAirURL      = "https://air-quality-api.open-meteo.com/v1/air-quality"

	// Open-Meteo forecasts hourly; the dashboard works on 3-hour steps.
	openMeteoStepHours = 3
	openMeteoDays      = 6
)

// OpenMeteoProvider implements weather.Provider for Open-Meteo. The API is
// coordinate-based, so city queries are geocoded first.
type OpenMeteoProvider struct {
	name        string
	forecastURL string
	airURL      string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
	geocoder    Geocoder
	now         func() time.Time
}

// OpenMeteoOption configures an OpenMeteoProvider.
type OpenMeteoOption func(*OpenMeteoProvider)

// WithOpenMeteoURLs overrides the forecast and air-quality endpoints.
func WithOpenMeteoURLs(forecastURL, airURL string) OpenMeteoOption {
	return func(p *OpenMeteoProvider) {
		p.forecastURL = forecastURL
		p.airURL = airURL
	}
}

// WithOpenMeteoClock overrides the time source used to skip past forecast hours.
func WithOpenMeteoClock(now func() time.Time) OpenMeteoOption {
	return func(p *OpenMeteoProvider) { p.now = now }
}

func NewOpenMeteoProvider(cfg HTTPClientConfig, geo Geocoder, opts ...OpenMeteoOption) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:        "openmeteo",
		forecastURL: openMeteoForecastURL,
		airURL:      openMeteoAirURL,
		httpCfg:     cfg,
		circuit:     newBreaker("openmeteo"),
		geocoder:    geo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type meteoCurrentPayload struct {
	Current *struct {
		Time          int64   `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		ApparentTemp  float64 `json:"apparent_temperature"`
		Pressure      float64 `json:"surface_pressure"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		WeatherCode   int     `json:"weather_code"`
		VisibilityMtr float64 `json:"visibility"`
	} `json:"current"`
	Daily struct {
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

type meteoForecastPayload struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Hourly           *struct {
		Time        []int64   `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Humidity    []float64 `json:"relative_humidity_2m"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"hourly"`
}

type meteoAirPayload struct {
	Current *struct {
		EuropeanAQI *float64 `json:"european_aqi"`
	} `json:"current"`
}

func (p *OpenMeteoProvider) Current(ctx context.Context, q weather.Query) (weather.CurrentConditions, error) {
	place, err := p.resolve(q)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	buildRequest := func() (*http.Request, error) {
		values := coordValues(place.Coord)
		values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,surface_pressure,wind_speed_10m,weather_code,visibility")
		values.Set("daily", "sunrise,sunset")
		values.Set("forecast_days", "1")
		return newGetRequest(p.forecastURL, values.Encode())
	}

	raw, err := fetchCached(ctx, p.httpCfg, p.circuit, q.CacheKey("weather"), buildRequest)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload meteoCurrentPayload
	if err := decodePayload(raw, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	if payload.Current == nil {
		return weather.CurrentConditions{}, fmt.Errorf("%w: current block missing", weather.ErrMalformedPayload)
	}

	cur := payload.Current
	cond, desc := mapWMOCode(cur.WeatherCode)
	out := weather.CurrentConditions{
		Name:        DisplayName(place.City, place.CountryCode),
		City:        place.City,
		CountryCode: place.CountryCode,
		Temp:        weather.Round(cur.Temperature),
		Condition:   cond,
		Description: weather.Capitalize(desc),
		Humidity:    weather.Round(cur.Humidity),
		WindSpeed:   weather.Round(cur.WindSpeed * 3.6),
		Visibility:  weather.Round(cur.VisibilityMtr / 1000),
		Pressure:    weather.Round(cur.Pressure),
		FeelsLike:   weather.Round(cur.ApparentTemp),
		Coord:       place.Coord,
	}
	if len(payload.Daily.Sunrise) > 0 && len(payload.Daily.Sunset) > 0 {
		out.Sunrise = time.Unix(payload.Daily.Sunrise[0], 0).UTC()
		out.Sunset = time.Unix(payload.Daily.Sunset[0], 0).UTC()
	}
	return out, nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, q weather.Query) ([]weather.RawForecastSample, error) {
	place, err := p.resolve(q)
	if err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		values := coordValues(place.Coord)
		values.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
		values.Set("forecast_days", strconv.Itoa(openMeteoDays))
		return newGetRequest(p.forecastURL, values.Encode())
	}

	raw, err := fetchCached(ctx, p.httpCfg, p.circuit, q.CacheKey("forecast"), buildRequest)
	if err != nil {
		return nil, err
	}

	var payload meteoForecastPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}
	h := payload.Hourly
	if h == nil {
		return nil, fmt.Errorf("%w: hourly block missing", weather.ErrMalformedPayload)
	}
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.Humidity) != n || len(h.WindSpeed) != n || len(h.WeatherCode) != n {
		return nil, fmt.Errorf("%w: hourly arrays differ in length", weather.ErrMalformedPayload)
	}

	zone := time.FixedZone("", payload.UTCOffsetSeconds)
	from := p.now().Truncate(time.Hour)

	samples := make([]weather.RawForecastSample, 0, n/openMeteoStepHours)
	for i := 0; i < n; i++ {
		ts := time.Unix(h.Time[i], 0).In(zone)
		if ts.Before(from) || ts.Hour()%openMeteoStepHours != 0 {
			continue
		}
		cond, desc := mapWMOCode(h.WeatherCode[i])
		samples = append(samples, weather.RawForecastSample{
			Timestamp:    ts,
			Temperature:  h.Temperature[i],
			TempMin:      h.Temperature[i],
			TempMax:      h.Temperature[i],
			Humidity:     weather.Round(h.Humidity[i]),
			WindSpeed:    h.WindSpeed[i],
			Condition:    cond,
			Description:  desc,
			DateTimeText: ts.Format("2006-01-02 15:04:05"),
		})
	}
	return samples, nil
}

func (p *OpenMeteoProvider) AirQuality(ctx context.Context, c weather.Coordinates) (weather.AirQuality, error) {
	buildRequest := func() (*http.Request, error) {
		values := coordValues(c)
		values.Set("current", "european_aqi")
		return newGetRequest(p.airURL, values.Encode())
	}

	raw, err := fetchCached(ctx, p.httpCfg, p.circuit, c.AirQualityKey(), buildRequest)
	if err != nil {
		return weather.AirQuality{}, err
	}

	var payload meteoAirPayload
	if err := decodePayload(raw, &payload); err != nil {
		return weather.AirQuality{}, err
	}
	if payload.Current == nil || payload.Current.EuropeanAQI == nil {
		return weather.AirQuality{}, fmt.Errorf("%w: european_aqi missing", weather.ErrMalformedPayload)
	}
	return weather.NewAirQuality(europeanAQIToIndex(*payload.Current.EuropeanAQI)), nil
}

// resolve turns a query into a place, geocoding city names. Geocoding results
// are memoized in the response cache like any other payload.
func (p *OpenMeteoProvider) resolve(q weather.Query) (Place, error) {
	if q.City == "" && q.Coords != nil {
		return p.cachedPlace(q.CacheKey("geocode"), func() (Place, error) {
			place, err := p.geocoder.Reverse(*q.Coords)
			if err != nil {
				// The weather itself is still available without a name.
				return Place{City: q.String(), Coord: *q.Coords}, nil
			}
			return place, nil
		})
	}
	if q.City == "" {
		return Place{}, weather.ErrEmptyQuery
	}
	return p.cachedPlace(q.CacheKey("geocode"), func() (Place, error) {
		return p.geocoder.Locate(q.City)
	})
}

func (p *OpenMeteoProvider) cachedPlace(key string, locate func() (Place, error)) (Place, error) {
	if p.geocoder == nil {
		return Place{}, fmt.Errorf("%w: geocoder not configured", weather.ErrUnauthorized)
	}
	if p.httpCfg.Cache == nil {
		return Place{}, errNoCache
	}

	raw, err := p.httpCfg.Cache.GetOrFetch(key, func() (json.RawMessage, error) {
		result, err := p.circuit.Execute(func() (interface{}, error) {
			place, err := locate()
			if err != nil {
				return nil, err
			}
			return json.Marshal(place)
		})
		if err != nil {
			return nil, breakerError(p.circuit, err)
		}
		return json.RawMessage(result.([]byte)), nil
	}, p.httpCfg.CacheTTL)
	if err != nil {
		return Place{}, err
	}

	var place Place
	if err := decodePayload(raw, &place); err != nil {
		return Place{}, err
	}
	return place, nil
}

func coordValues(c weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("timezone", "auto")
	values.Set("timeformat", "unixtime")
	values.Set("wind_speed_unit", "ms")
	return values
}

// europeanAQIToIndex folds the European AQI (0-100+) onto the 1-5 scale.
func europeanAQIToIndex(v float64) int {
	switch {
	case v < 20:
		return 1
	case v < 40:
		return 2
	case v < 60:
		return 3
	case v < 80:
		return 4
	default:
		return 5
	}
}

// mapWMOCode maps WMO weather interpretation codes onto condition groups.
func mapWMOCode(code int) (weather.Condition, string) {
	switch {
	case code == 0:
		return weather.ConditionClear, "clear sky"
	case code == 1:
		return weather.ConditionClouds, "mainly clear"
	case code == 2:
		return weather.ConditionClouds, "partly cloudy"
	case code == 3:
		return weather.ConditionClouds, "overcast"
	case code == 45 || code == 48:
		return weather.ConditionFog, "fog"
	case code >= 51 && code <= 57:
		return weather.ConditionDrizzle, "drizzle"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain, "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow, "snow"
	case code >= 95:
		return weather.ConditionThunderstorm, "thunderstorm"
	default:
		return weather.ConditionUnknown, "unknown"
	}
}
