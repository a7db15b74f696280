package providers

import (
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// geocoderZeroResults is the error text kelvins/geocoder returns for a
// ZERO_RESULTS status. Every other failure is a transport or quota problem.
const geocoderZeroResults = "No results found."

// Place is a geocoded location. CountryCode is an ISO 3166-1 alpha-2 code,
// or empty when the country could not be identified.
type Place struct {
	City        string              `json:"city"`
	CountryCode string              `json:"countryCode"`
	Coord       weather.Coordinates `json:"coord"`
}

// Geocoder resolves city names to coordinates and back.
type Geocoder interface {
	Locate(city string) (Place, error)
	Reverse(c weather.Coordinates) (Place, error)
}

// GoogleGeocoder resolves places through the Google Geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoding client with apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Locate geocodes "City" or "City, Country". The forward API only returns
// coordinates, so the country is taken from the query when it names one and
// from a reverse lookup otherwise.
func (g *GoogleGeocoder) Locate(city string) (Place, error) {
	if geocoder.ApiKey == "" {
		return Place{}, fmt.Errorf("%w: geocoder api key is not configured", weather.ErrUnauthorized)
	}

	name, country, _ := strings.Cut(city, ",")
	name, country = strings.TrimSpace(name), strings.TrimSpace(country)

	loc, err := geocoder.Geocoding(geocoder.Address{City: name, Country: country})
	if err != nil {
		return Place{}, geocodeError(fmt.Sprintf("geocoding %q", city), err)
	}

	place := Place{
		City:        name,
		CountryCode: countryCodeFor(country),
		Coord:       weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude},
	}
	if place.CountryCode == "" {
		addresses, err := geocoder.GeocodingReverse(loc)
		if err == nil && len(addresses) > 0 {
			place.CountryCode = countryCodeFor(addresses[0].Country)
		}
	}
	return place, nil
}

func (g *GoogleGeocoder) Reverse(c weather.Coordinates) (Place, error) {
	if geocoder.ApiKey == "" {
		return Place{}, fmt.Errorf("%w: geocoder api key is not configured", weather.ErrUnauthorized)
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: c.Lat, Longitude: c.Lon})
	if err != nil {
		return Place{}, geocodeError("reverse geocoding", err)
	}
	if len(addresses) == 0 {
		return Place{}, weather.ErrLocationNotFound
	}

	addr := addresses[0]
	return Place{
		City:        common.FirstNonEmpty(addr.City, addr.County, addr.State),
		CountryCode: countryCodeFor(addr.Country),
		Coord:       c,
	}, nil
}

func geocodeError(op string, err error) error {
	if err.Error() == geocoderZeroResults {
		return fmt.Errorf("%w: %s", weather.ErrLocationNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", weather.ErrUpstream, op, err)
}
