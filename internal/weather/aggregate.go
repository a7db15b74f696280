package weather

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxDailySummaries is the number of days shown in the daily forecast.
	MaxDailySummaries = 5

	// MaxHourlySummaries is the number of 3-hour steps shown in the hourly forecast.
	MaxHourlySummaries = 8

	middayClock    = "12:00:00"
	dateTimeLayout = "2006-01-02 15:04:05"
	msToKmh        = 3.6
)

// AggregateDaily collapses the 3-hourly feed into one summary per calendar day.
//
// The first sample seen for a date represents it, unless a later sample for the
// same date falls at exactly 12:00:00, in which case the midday sample wins.
// Min/max temperatures come from the selected sample, not from a scan over the
// whole day. Days keep the order in which they first appear and at most
// MaxDailySummaries are returned.
func AggregateDaily(samples []RawForecastSample) []DailySummary {
	if len(samples) == 0 {
		return []DailySummary{}
	}

	order := make([]string, 0, MaxDailySummaries+1)
	selected := make(map[string]RawForecastSample)

	for _, s := range samples {
		date, clock := splitDateTime(s)
		if _, seen := selected[date]; !seen {
			order = append(order, date)
			selected[date] = s
			continue
		}
		if clock == middayClock {
			selected[date] = s
		}
	}

	if len(order) > MaxDailySummaries {
		order = order[:MaxDailySummaries]
	}

	out := make([]DailySummary, 0, len(order))
	for _, date := range order {
		s := selected[date]
		out = append(out, DailySummary{
			Date:        date,
			Temp:        Round(s.Temperature),
			TempMin:     Round(s.TempMin),
			TempMax:     Round(s.TempMax),
			Condition:   s.Condition,
			Description: Capitalize(s.Description),
			Humidity:    s.Humidity,
			WindSpeed:   Round(s.WindSpeed * msToKmh),
		})
	}
	return out
}

// AggregateHourly returns the first MaxHourlySummaries samples as hourly
// summaries, labelled with the local hour of each sample ("9:00", "15:00").
func AggregateHourly(samples []RawForecastSample) []HourlySummary {
	n := len(samples)
	if n > MaxHourlySummaries {
		n = MaxHourlySummaries
	}

	out := make([]HourlySummary, 0, n)
	for _, s := range samples[:n] {
		out = append(out, HourlySummary{
			Hour:        strconv.Itoa(s.Timestamp.Hour()) + ":00",
			Temp:        Round(s.Temperature),
			Condition:   s.Condition,
			Description: s.Description,
			Humidity:    s.Humidity,
		})
	}
	return out
}

// splitDateTime returns the provider-local date and clock of a sample. The
// provider text is authoritative; the timestamp is only a fallback.
func splitDateTime(s RawForecastSample) (string, string) {
	if date, clock, ok := strings.Cut(s.DateTimeText, " "); ok && date != "" {
		return date, clock
	}
	date, clock, _ := strings.Cut(s.Timestamp.Format(dateTimeLayout), " ")
	return date, clock
}

// Round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
