package weather

import (
	"strconv"
	"time"
)

// Condition is the provider's high-level condition group (OpenWeatherMap "main" values).
type Condition string

const (
	ConditionUnknown      Condition = ""
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	ConditionHaze         Condition = "Haze"
	ConditionSmoke        Condition = "Smoke"
	ConditionDust         Condition = "Dust"
)

// Unit is the temperature unit preference.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Query identifies a location either by name or by coordinates.
// City takes precedence when both are set.
type Query struct {
	City     string
	Coords   *Coordinates
	Language string
}

// CityQuery builds a name-based query.
func CityQuery(city string) Query {
	return Query{City: city}
}

// CoordsQuery builds a coordinate-based query.
func CoordsQuery(lat, lon float64) Query {
	return Query{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// CacheKey returns the response cache key for the given payload kind,
// e.g. "weather_Ankara" or "forecast_39.93_32.85".
func (q Query) CacheKey(kind string) string {
	if q.City != "" || q.Coords == nil {
		return kind + "_" + q.City
	}
	return kind + "_" + q.Coords.keySuffix()
}

// AirQualityKey returns the cache key for an air-quality payload.
func (c Coordinates) AirQualityKey() string {
	return "aqi_" + c.keySuffix()
}

func (c Coordinates) keySuffix() string {
	return formatCoord(c.Lat) + "_" + formatCoord(c.Lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String renders the query for log lines and messages.
func (q Query) String() string {
	if q.City != "" || q.Coords == nil {
		return q.City
	}
	return formatCoord(q.Coords.Lat) + "," + formatCoord(q.Coords.Lon)
}

// RawForecastSample is one step of the provider's 3-hourly forecast feed.
type RawForecastSample struct {
	Timestamp    time.Time
	Temperature  float64
	TempMin      float64
	TempMax      float64
	Humidity     int
	WindSpeed    float64 // m/s
	Condition    Condition
	Description  string
	DateTimeText string // "2006-01-02 15:04:05", provider-local
}

// DailySummary is the representative reading for one calendar day.
type DailySummary struct {
	Date        string    `json:"date"`
	Temp        int       `json:"temp"`
	TempMin     int       `json:"tempMin"`
	TempMax     int       `json:"tempMax"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
	WindSpeed   int       `json:"windSpeed"` // km/h
}

// HourlySummary is one near-term forecast step.
type HourlySummary struct {
	Hour        string    `json:"time"`
	Temp        int       `json:"temp"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
}

// CurrentConditions is the normalized current-weather view.
type CurrentConditions struct {
	Name        string      `json:"name"`
	City        string      `json:"city"`
	CountryCode string      `json:"countryCode"`
	Temp        int         `json:"temp"`
	Condition   Condition   `json:"condition"`
	Description string      `json:"description"`
	Humidity    int         `json:"humidity"`
	WindSpeed   int         `json:"windSpeed"`  // km/h
	Visibility  int         `json:"visibility"` // km
	Pressure    int         `json:"pressure"`   // hPa
	FeelsLike   int         `json:"feelsLike"`
	Sunrise     time.Time   `json:"sunrise"`
	Sunset      time.Time   `json:"sunset"`
	Coord       Coordinates `json:"coord"`
}

// AirQuality is an index on the 1 (good) to 5 (very poor) scale.
type AirQuality struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Suggestions are derived hints for the current conditions.
type Suggestions struct {
	Clothing string `json:"clothing"`
	Activity string `json:"activity"`
}

// Report is everything one lookup produces.
type Report struct {
	Current     CurrentConditions `json:"current"`
	Daily       []DailySummary    `json:"daily"`
	Hourly      []HourlySummary   `json:"hourly"`
	AirQuality  AirQuality        `json:"airQuality"`
	Suggestions Suggestions       `json:"suggestions"`
	Unit        Unit              `json:"unit"`
	FetchedAt   time.Time         `json:"fetchedAt"`
}

// Comparison holds two cities side by side.
type Comparison struct {
	First        CurrentConditions `json:"first"`
	Second       CurrentConditions `json:"second"`
	TempDiff     int               `json:"tempDiff"`
	HumidityDiff int               `json:"humidityDiff"`
	WindDiff     int               `json:"windDiff"`
}
