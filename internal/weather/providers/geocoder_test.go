package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const googleAnkaraJSON = `{"status": "OK", "results": [{
	"types": ["locality", "political"],
	"geometry": {"location": {"lat": 39.93, "lng": 32.85}}
}]}`

const googleIzmirJSON = `{"status": "OK", "results": [{
	"types": ["locality", "political"],
	"geometry": {"location": {"lat": 38.42, "lng": 27.14}}
}]}`

const googleReverseJSON = `{"status": "OK", "results": [{
	"types": ["locality", "political"],
	"formatted_address": "Ankara, Turkey",
	"address_components": [
		{"long_name": "Ankara", "short_name": "Ankara", "types": ["locality", "political"]},
		{"long_name": "Turkey", "short_name": "TR", "types": ["country", "political"]}
	]
}]}`

// newGoogleServer stands in for the Google Geocoding API and points the
// geocoder package at it for the duration of the test.
func newGoogleServer(t *testing.T, hits *hitCounter) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.record(r)
		q := r.URL.Query()

		var body string
		switch {
		case q.Get("latlng") != "" && strings.HasPrefix(q.Get("latlng"), "0.0"):
			body = `{"status": "ZERO_RESULTS", "results": []}`
		case q.Get("latlng") != "":
			body = googleReverseJSON
		case q.Get("address") == "Ankara":
			body = googleAnkaraJSON
		case q.Get("address") == "Izmir, Turkey":
			body = googleIzmirJSON
		case q.Get("address") == "Quota":
			body = `{"status": "OVER_QUERY_LIMIT", "results": []}`
		default:
			body = `{"status": "ZERO_RESULTS", "results": []}`
		}
		_, _ = w.Write([]byte(body))
	}))

	prevURL, prevKey := geocoder.ApiUrl, geocoder.ApiKey
	geocoder.ApiUrl = srv.URL + "/json?"
	t.Cleanup(func() {
		geocoder.ApiUrl, geocoder.ApiKey = prevURL, prevKey
		srv.Close()
	})
}

func TestGoogleGeocoderLocate(t *testing.T) {
	hits := &hitCounter{}
	newGoogleServer(t, hits)
	g := NewGoogleGeocoder("test-key")

	place, err := g.Locate("Ankara")
	require.NoError(t, err)
	assert.Equal(t, Place{
		City:        "Ankara",
		CountryCode: "TR",
		Coord:       weather.Coordinates{Lat: 39.93, Lon: 32.85},
	}, place)
	// The country came from a reverse lookup of the coordinates.
	assert.Equal(t, 2, hits.count("/json"))
	assert.Contains(t, hits.query("/json"), "latlng=")
}

func TestGoogleGeocoderLocateWithCountry(t *testing.T) {
	hits := &hitCounter{}
	newGoogleServer(t, hits)
	g := NewGoogleGeocoder("test-key")

	place, err := g.Locate("Izmir, Turkey")
	require.NoError(t, err)
	assert.Equal(t, "Izmir", place.City)
	assert.Equal(t, "TR", place.CountryCode)
	assert.Equal(t, 1, hits.count("/json"))
}

func TestGoogleGeocoderReverse(t *testing.T) {
	hits := &hitCounter{}
	newGoogleServer(t, hits)
	g := NewGoogleGeocoder("test-key")

	place, err := g.Reverse(weather.Coordinates{Lat: 39.93, Lon: 32.85})
	require.NoError(t, err)
	assert.Equal(t, "Ankara", place.City)
	assert.Equal(t, "TR", place.CountryCode)

	_, err = g.Reverse(weather.Coordinates{Lat: 0, Lon: 0})
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestGoogleGeocoderErrorClasses(t *testing.T) {
	hits := &hitCounter{}
	newGoogleServer(t, hits)
	g := NewGoogleGeocoder("test-key")

	_, err := g.Locate("Nowhereville")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)

	_, err = g.Locate("Quota")
	assert.ErrorIs(t, err, weather.ErrUpstream)
	assert.NotErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestOpenMeteoBreakerCountsGeocoderOutages(t *testing.T) {
	hits := &hitCounter{}
	newGoogleServer(t, hits)
	p := newTestMeteo(newMeteoServer(t, &hitCounter{}, `{}`), NewGoogleGeocoder("test-key"))
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := p.Current(ctx, weather.CityQuery("Nowhereville"))
		require.ErrorIs(t, err, weather.ErrLocationNotFound)
	}
	assert.Equal(t, 7, hits.count("/json"))

	for i := 0; i < 5; i++ {
		_, err := p.Current(ctx, weather.CityQuery("Quota"))
		require.ErrorIs(t, err, weather.ErrUpstream)
	}
	assert.Equal(t, 12, hits.count("/json"))

	_, err := p.Current(ctx, weather.CityQuery("Quota"))
	assert.ErrorIs(t, err, weather.ErrUpstream)
	assert.Equal(t, 12, hits.count("/json"))
}

func TestGoogleGeocoderRequiresKey(t *testing.T) {
	hits := &hitCounter{}
	newGoogleServer(t, hits)
	g := NewGoogleGeocoder("")

	_, err := g.Locate("Ankara")
	assert.ErrorIs(t, err, weather.ErrUnauthorized)
	assert.Zero(t, hits.count("/json"))
}

func TestOpenMeteoWithGoogleGeocoder(t *testing.T) {
	newGoogleServer(t, &hitCounter{})
	p := newTestMeteo(newMeteoServer(t, &hitCounter{}, `{}`), NewGoogleGeocoder("test-key"))

	cur, err := p.Current(context.Background(), weather.CityQuery("Ankara"))
	require.NoError(t, err)
	assert.Equal(t, "TR", cur.CountryCode)
	assert.Equal(t, "Ankara, Türkiye", cur.Name)
}

func TestCountryCodeFor(t *testing.T) {
	assert.Equal(t, "TR", countryCodeFor("Turkey"))
	assert.Equal(t, "TR", countryCodeFor("Türkiye"))
	assert.Equal(t, "TR", countryCodeFor(" tr "))
	assert.Equal(t, "GB", countryCodeFor("UK"))
	assert.Equal(t, "DE", countryCodeFor("germany"))
	assert.Equal(t, "IS", countryCodeFor("IS"))
	assert.Empty(t, countryCodeFor("Atlantis"))
	assert.Empty(t, countryCodeFor(""))
}
