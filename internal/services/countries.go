package services

import "strings"

const (
	DefaultCountryCode    = "US"
	defaultCountryName    = "United States"
	defaultCurrencyCode   = "USD"
	defaultCurrencySymbol = "$"
)

type countryInfo struct {
	Name           string
	CurrencyCode   string
	CurrencySymbol string
}

var countries = map[string]countryInfo{
	"US": {"United States", "USD", "$"},
	"GB": {"United Kingdom", "GBP", "£"},
	"CA": {"Canada", "CAD", "CA$"},
	"AU": {"Australia", "AUD", "A$"},
	"NZ": {"New Zealand", "NZD", "NZ$"},
	"IE": {"Ireland", "EUR", "€"},
	"DE": {"Germany", "EUR", "€"},
	"FR": {"France", "EUR", "€"},
	"ES": {"Spain", "EUR", "€"},
	"IT": {"Italy", "EUR", "€"},
	"NL": {"Netherlands", "EUR", "€"},
	"BE": {"Belgium", "EUR", "€"},
	"SE": {"Sweden", "SEK", "kr"},
	"NO": {"Norway", "NOK", "kr"},
	"DK": {"Denmark", "DKK", "kr"},
	"FI": {"Finland", "EUR", "€"},
	"CH": {"Switzerland", "CHF", "CHF"},
	"AT": {"Austria", "EUR", "€"},
	"PT": {"Portugal", "EUR", "€"},
	"PL": {"Poland", "PLN", "zł"},
	"JP": {"Japan", "JPY", "¥"},
	"KR": {"South Korea", "KRW", "₩"},
	"SG": {"Singapore", "SGD", "S$"},
	"IN": {"India", "INR", "₹"},
	"BR": {"Brazil", "BRL", "R$"},
	"MX": {"Mexico", "MXN", "MX$"},
	"ZA": {"South Africa", "ZAR", "R"},
	"AE": {"United Arab Emirates", "AED", "AED"},
	"HK": {"Hong Kong", "HKD", "HK$"},
}

func lookupCountry(code string) (countryInfo, bool) {
	info, ok := countries[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// CountryName returns the display name for an ISO 3166-1 alpha-2 code,
// falling back to the United States.
func CountryName(code string) string {
	if info, ok := lookupCountry(code); ok {
		return info.Name
	}
	return defaultCountryName
}

// Currency returns the ISO 4217 code and display symbol for a country code.
func Currency(code string) (string, string) {
	if info, ok := lookupCountry(code); ok {
		return info.CurrencyCode, info.CurrencySymbol
	}
	return defaultCurrencyCode, defaultCurrencySymbol
}
