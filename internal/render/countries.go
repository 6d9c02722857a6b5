package render

import "github.com/aryaawcksn/counter/internal/domain"

// CountryInfo is display enrichment for a country code.
type CountryInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// countryNames covers the codes this service actually sees in practice;
// anything else falls back to the bare code.
var countryNames = map[string]string{
	"AU": "Australia",
	"BR": "Brazil",
	"CA": "Canada",
	"CN": "China",
	"DE": "Germany",
	"ES": "Spain",
	"FR": "France",
	"GB": "United Kingdom",
	"HK": "Hong Kong",
	"ID": "Indonesia",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KR": "South Korea",
	"MY": "Malaysia",
	"NL": "Netherlands",
	"PH": "Philippines",
	"RU": "Russia",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"TW": "Taiwan",
	"US": "United States",
	"VN": "Vietnam",
}

// Country returns display info for a country code. The flag is built from
// Unicode regional indicators, so it works for every alpha-2 code, not
// just the ones with a curated name.
func Country(code string) CountryInfo {
	if code == domain.CountryUnknown || code == "" {
		return CountryInfo{Code: domain.CountryUnknown, Name: "Unknown", Flag: "🏳️"}
	}

	name, ok := countryNames[code]
	if !ok {
		name = code
	}
	return CountryInfo{Code: code, Name: name, Flag: flagEmoji(code)}
}

func flagEmoji(code string) string {
	if len(code) != 2 {
		return "🏳️"
	}
	flag := make([]rune, 0, 2)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "🏳️"
		}
		flag = append(flag, rune(0x1F1E6+c-'A'))
	}
	return string(flag)
}
