package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	language string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// OpenWeatherOption configures an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithOpenWeatherBaseURL points the provider at another endpoint (tests, proxies).
func WithOpenWeatherBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.baseURL = u }
}

// WithOpenWeatherLanguage sets the default language for descriptions.
func WithOpenWeatherLanguage(lang string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.language = lang }
}

func NewOpenWeatherProvider(cfg HTTPClientConfig, apiKey string, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   apiKey,
		baseURL:  openWeatherBaseURL,
		language: "en",
		httpCfg:  cfg,
		circuit:  newBreaker("openweather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmCurrentPayload struct {
	Name  string `json:"name"`
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int            `json:"visibility"`
	Weather    []owmCondition `json:"weather"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

type owmForecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []owmCondition `json:"weather"`
		DtTxt   string         `json:"dt_txt"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

type owmAirPayload struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) Current(ctx context.Context, q weather.Query) (weather.CurrentConditions, error) {
	if p.apiKey == "" {
		return weather.CurrentConditions{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnauthorized)
	}

	raw, err := fetchCached(ctx, p.httpCfg, p.circuit, q.CacheKey("weather"), p.request("/weather", q))
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload owmCurrentPayload
	if err := decodePayload(raw, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}
	if payload.Main == nil || payload.Coord == nil || len(payload.Weather) == 0 {
		return weather.CurrentConditions{}, fmt.Errorf("%w: current weather missing main, coord or weather", weather.ErrMalformedPayload)
	}

	return weather.CurrentConditions{
		Name:        DisplayName(payload.Name, payload.Sys.Country),
		City:        payload.Name,
		CountryCode: payload.Sys.Country,
		Temp:        weather.Round(payload.Main.Temp),
		Condition:   weather.Condition(payload.Weather[0].Main),
		Description: weather.Capitalize(payload.Weather[0].Description),
		Humidity:    payload.Main.Humidity,
		WindSpeed:   weather.Round(payload.Wind.Speed * 3.6),
		Visibility:  weather.Round(float64(payload.Visibility) / 1000),
		Pressure:    payload.Main.Pressure,
		FeelsLike:   weather.Round(payload.Main.FeelsLike),
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(payload.Sys.Sunset, 0).UTC(),
		Coord:       weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
	}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, q weather.Query) ([]weather.RawForecastSample, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnauthorized)
	}

	raw, err := fetchCached(ctx, p.httpCfg, p.circuit, q.CacheKey("forecast"), p.request("/forecast", q))
	if err != nil {
		return nil, err
	}

	var payload owmForecastPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	// Hour labels are rendered in the city's own time zone.
	zone := time.FixedZone("", payload.City.Timezone)

	samples := make([]weather.RawForecastSample, 0, len(payload.List))
	for i, item := range payload.List {
		if item.Main == nil || len(item.Weather) == 0 || item.Dt == 0 {
			return nil, fmt.Errorf("%w: forecast item %d missing dt, main or weather", weather.ErrMalformedPayload, i)
		}
		ts := time.Unix(item.Dt, 0).In(zone)
		dtText := item.DtTxt
		if dtText == "" {
			dtText = ts.Format("2006-01-02 15:04:05")
		}
		samples = append(samples, weather.RawForecastSample{
			Timestamp:    ts,
			Temperature:  item.Main.Temp,
			TempMin:      item.Main.TempMin,
			TempMax:      item.Main.TempMax,
			Humidity:     item.Main.Humidity,
			WindSpeed:    item.Wind.Speed,
			Condition:    weather.Condition(item.Weather[0].Main),
			Description:  item.Weather[0].Description,
			DateTimeText: dtText,
		})
	}
	return samples, nil
}

func (p *OpenWeatherProvider) AirQuality(ctx context.Context, c weather.Coordinates) (weather.AirQuality, error) {
	if p.apiKey == "" {
		return weather.AirQuality{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnauthorized)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
		return newGetRequest(p.baseURL+"/air_pollution", values.Encode())
	}

	raw, err := fetchCached(ctx, p.httpCfg, p.circuit, c.AirQualityKey(), buildRequest)
	if err != nil {
		return weather.AirQuality{}, err
	}

	var payload owmAirPayload
	if err := decodePayload(raw, &payload); err != nil {
		return weather.AirQuality{}, err
	}
	if len(payload.List) == 0 {
		return weather.AirQuality{}, fmt.Errorf("%w: air pollution list is empty", weather.ErrMalformedPayload)
	}
	return weather.NewAirQuality(payload.List[0].Main.AQI), nil
}

func (p *OpenWeatherProvider) request(path string, q weather.Query) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		lang := q.Language
		if lang == "" {
			lang = p.language
		}
		values.Set("lang", lang)

		if q.City != "" || q.Coords == nil {
			values.Set("q", q.City)
		} else {
			values.Set("lat", strconv.FormatFloat(q.Coords.Lat, 'f', -1, 64))
			values.Set("lon", strconv.FormatFloat(q.Coords.Lon, 'f', -1, 64))
		}
		return newGetRequest(p.baseURL+path, values.Encode())
	}
}
