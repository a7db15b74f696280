package providers

import "strings"

var countryNames = map[string]string{
	"TR": "Türkiye",
	"US": "United States",
	"GB": "United Kingdom",
	"FR": "France",
	"DE": "Germany",
	"IT": "Italy",
	"ES": "Spain",
	"NL": "Netherlands",
	"BE": "Belgium",
	"CH": "Switzerland",
	"AT": "Austria",
	"GR": "Greece",
	"RU": "Russia",
	"CN": "China",
	"JP": "Japan",
	"KR": "South Korea",
	"IN": "India",
	"AU": "Australia",
	"CA": "Canada",
	"BR": "Brazil",
	"MX": "Mexico",
	"AR": "Argentina",
	"EG": "Egypt",
	"SA": "Saudi Arabia",
	"AE": "UAE",
	"SE": "Sweden",
	"NO": "Norway",
	"DK": "Denmark",
	"FI": "Finland",
	"PL": "Poland",
}

// DisplayName renders "City, Country", falling back to the ISO code for
// countries without a known name.
func DisplayName(city, countryCode string) string {
	country, ok := countryNames[countryCode]
	if !ok {
		country = countryCode
	}
	if country == "" {
		return city
	}
	return city + ", " + country
}

// countryAliases covers the long names geocoders use that differ from the
// display names above.
var countryAliases = map[string]string{
	"turkey":                   "TR",
	"united states of america": "US",
	"usa":                      "US",
	"uk":                       "GB",
	"united arab emirates":     "AE",
	"republic of korea":        "KR",
	"russian federation":       "RU",
	"the netherlands":          "NL",
}

// countryCodeFor maps a country as geocoders spell it ("Turkey", "Türkiye",
// "tr") to its ISO code. Unknown names map to "".
func countryCodeFor(country string) string {
	country = strings.TrimSpace(country)
	if code, ok := countryAliases[strings.ToLower(country)]; ok {
		return code
	}
	if len(country) == 2 && isASCIILetters(country) {
		return strings.ToUpper(country)
	}
	for code, name := range countryNames {
		if strings.EqualFold(name, country) {
			return code
		}
	}
	return ""
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
