package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// stubProvider knows a fixed set of cities; anything else is not found.
type stubProvider struct {
	down bool
}

var knownCities = map[string]int{"Ankara": 21, "Izmir": 26}

func (p stubProvider) Name() string { return "stub" }

func (p stubProvider) Current(_ context.Context, q weather.Query) (weather.CurrentConditions, error) {
	if p.down {
		return weather.CurrentConditions{}, weather.ErrUpstream
	}
	city := q.City
	if city == "" {
		city = "Ankara"
	}
	temp, ok := knownCities[city]
	if !ok {
		return weather.CurrentConditions{}, weather.ErrLocationNotFound
	}
	return weather.CurrentConditions{
		Name:        city + ", Türkiye",
		City:        city,
		CountryCode: "TR",
		Temp:        temp,
		Condition:   weather.ConditionClear,
		Description: "Clear sky",
	}, nil
}

func (p stubProvider) Forecast(context.Context, weather.Query) ([]weather.RawForecastSample, error) {
	return nil, nil
}

func (p stubProvider) AirQuality(context.Context, weather.Coordinates) (weather.AirQuality, error) {
	return weather.NewAirQuality(1), nil
}

func newTestApp(t *testing.T, p weather.Provider) *fiber.App {
	t.Helper()

	session := dashboard.NewSession(
		weather.NewService(p),
		dashboard.NewPreferences(store.NewMemoryStore()),
		dashboard.Options{Retry: &dashboard.RetryPolicy{MaxRetries: 1}},
	)
	t.Cleanup(session.Close)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, session)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestSearchRoute(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, body := call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": "Ankara"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ankara", body["query"])
	assert.Equal(t, false, body["offline"])

	report, ok := body["report"].(map[string]any)
	require.True(t, ok)
	current := report["current"].(map[string]any)
	assert.Equal(t, "Ankara", current["city"])
	assert.Equal(t, []any{"Ankara"}, body["recentSearches"])
	assert.Equal(t, "°C", body["unitSymbol"])
}

func TestSearchRouteErrors(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, body := call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, weather.ErrEmptyQuery.Error(), body["message"])

	code, _ = call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": "A"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": "Nowhereville"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["message"], "Nowhereville")

	code, body = call(t, app, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["offline"])
}

func TestSearchRouteUpstreamDown(t *testing.T) {
	app := newTestApp(t, stubProvider{down: true})

	code, body := call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": "Ankara"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, true, body["error"])
}

func TestSearchInputRoute(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, body := call(t, app, http.MethodPost, "/api/v1/search/input", map[string]string{"text": "Izm"})
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, true, body["accepted"])
}

func TestLocationRoute(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, _ := call(t, app, http.MethodPost, "/api/v1/search/location", map[string]any{"denied": true})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, app, http.MethodPost, "/api/v1/search/location", map[string]any{"lat": 39.93})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, app, http.MethodPost, "/api/v1/search/location", map[string]any{"lat": 95.0, "lon": 32.85})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := call(t, app, http.MethodPost, "/api/v1/search/location", map[string]any{"lat": 39.93, "lon": 32.85})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "39.93,32.85", body["query"])
}

func TestFavoriteRoutes(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, _ := call(t, app, http.MethodPost, "/api/v1/favorites/toggle", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": "Ankara"})
	require.Equal(t, http.StatusOK, code)

	code, body := call(t, app, http.MethodPost, "/api/v1/favorites/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["favorite"])
	assert.Len(t, body["favorites"], 1)

	code, body = call(t, app, http.MethodPost, "/api/v1/favorites/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["favorite"])
	assert.Empty(t, body["favorites"])

	code, _ = call(t, app, http.MethodDelete, "/api/v1/favorites/Ankara", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, app, http.MethodPost, "/api/v1/favorites/toggle", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, app, http.MethodDelete, "/api/v1/favorites/ankara", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["favorite"])
	assert.Empty(t, body["favorites"])
}

func TestPreferenceRoutes(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, body := call(t, app, http.MethodGet, "/api/v1/preferences", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "metric", body["unit"])
	assert.Equal(t, "dark", body["theme"])

	code, _ = call(t, app, http.MethodPut, "/api/v1/preferences/unit", map[string]string{"unit": "kelvin"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = call(t, app, http.MethodPut, "/api/v1/preferences/unit", map[string]string{"unit": "imperial"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "imperial", body["unit"])

	code, body = call(t, app, http.MethodPut, "/api/v1/preferences/language", map[string]string{"language": "tr"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "tr", body["language"])

	code, body = call(t, app, http.MethodPost, "/api/v1/preferences/theme/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "light", body["theme"])

	code, body = call(t, app, http.MethodPost, "/api/v1/preferences/auto-refresh/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["autoRefresh"])

	code, body = call(t, app, http.MethodPost, "/api/v1/preferences/notifications/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["notifications"])
}

func TestCompareRoute(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, _ := call(t, app, http.MethodGet, "/api/v1/compare?city1=Ankara", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := call(t, app, http.MethodGet, "/api/v1/compare?city1=Ankara&city2=Izmir", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 5, body["tempDiff"])
}

func TestClearDataRoute(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	code, _ := call(t, app, http.MethodPost, "/api/v1/search", map[string]string{"city": "Izmir"})
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, app, http.MethodDelete, "/api/v1/data", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body := call(t, app, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["recentSearches"])
	assert.Empty(t, body["favorites"])
}
