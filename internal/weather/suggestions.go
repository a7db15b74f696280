package weather

import (
	"github.com/i474232898/weather-dashboard/internal/common"
)

// ClothingSuggestion picks an outfit hint from the temperature (°C) and condition.
func ClothingSuggestion(temp int, cond Condition) string {
	var s string
	switch {
	case temp < 0:
		s = "Very cold! A heavy coat, gloves and a beanie are a must"
	case temp < 10:
		s = "Cold weather. Wear a coat or a thick jacket"
	case temp < 20:
		s = "Mild weather. A cardigan or a light jacket is enough"
	case temp < 25:
		s = "Comfortable weather. A t-shirt or shirt works"
	default:
		s = "Hot weather! Prefer light clothes"
	}

	if common.HasAny(string(cond), "rain") {
		s += " + don't forget an umbrella!"
	}
	if common.HasAny(string(cond), "snow") {
		s += " + wear snow boots!"
	}
	return s
}

// ActivitySuggestion picks an activity hint from the temperature (°C) and condition.
func ActivitySuggestion(temp int, cond Condition) string {
	c := string(cond)
	switch {
	case common.HasAny(c, "rain"):
		return "Ideal for indoor activities"
	case common.HasAny(c, "snow"):
		return "Great for winter sports!"
	case common.HasAny(c, "clear") && temp > 15 && temp < 30:
		return "Perfect for outdoor activities!"
	case temp > 30:
		return "Swimming or activities in the shade are recommended"
	case temp < 5:
		return "Stay inside with a hot drink"
	default:
		return "Suitable for light activities"
	}
}

// Suggest builds both hints for the current conditions.
func Suggest(c CurrentConditions) Suggestions {
	return Suggestions{
		Clothing: ClothingSuggestion(c.Temp, c.Condition),
		Activity: ActivitySuggestion(c.Temp, c.Condition),
	}
}

// AirQualityLabel names an index on the 1-5 scale.
func AirQualityLabel(index int) string {
	switch index {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Very Poor"
	default:
		return "Unknown"
	}
}

// NewAirQuality builds an AirQuality with its label.
func NewAirQuality(index int) AirQuality {
	return AirQuality{Index: index, Label: AirQualityLabel(index)}
}

// ConvertTemp converts a Celsius value for display in the given unit.
func ConvertTemp(celsius int, unit Unit) int {
	if unit == UnitImperial {
		return Round(float64(celsius)*9/5 + 32)
	}
	return celsius
}

// TempUnitSymbol returns the display symbol for unit.
func TempUnitSymbol(unit Unit) string {
	if unit == UnitImperial {
		return "°F"
	}
	return "°C"
}

// InUnit returns a copy of the report with every temperature converted to unit.
// Suggestions are left alone; they were derived from Celsius values.
func (r Report) InUnit(unit Unit) Report {
	out := r
	out.Unit = unit
	if unit != UnitImperial {
		out.Unit = UnitMetric
		return out
	}

	out.Current.Temp = ConvertTemp(r.Current.Temp, unit)
	out.Current.FeelsLike = ConvertTemp(r.Current.FeelsLike, unit)

	out.Daily = make([]DailySummary, len(r.Daily))
	for i, d := range r.Daily {
		d.Temp = ConvertTemp(d.Temp, unit)
		d.TempMin = ConvertTemp(d.TempMin, unit)
		d.TempMax = ConvertTemp(d.TempMax, unit)
		out.Daily[i] = d
	}

	out.Hourly = make([]HourlySummary, len(r.Hourly))
	for i, h := range r.Hourly {
		h.Temp = ConvertTemp(h.Temp, unit)
		out.Hourly[i] = h
	}
	return out
}
