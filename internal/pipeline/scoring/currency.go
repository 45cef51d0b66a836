package scoring

var countryToCurrency = map[string]string{
	"US": "USD",
	"EU": "EUR",
	"GB": "GBP",
	"JP": "JPY",
	"AU": "AUD",
	"NZ": "NZD",
	"CA": "CAD",
	"CH": "CHF",
}

// CurrencyForCountry maps a provider country code to its currency. ok is false for
// unmapped countries, in which case the country code itself is returned.
func CurrencyForCountry(country string) (string, bool) {
	if c, ok := countryToCurrency[country]; ok {
		return c, true
	}
	return country, false
}

// TrackedCurrency reports whether currency belongs to a mapped country and so keeps an aggregate.
func TrackedCurrency(currency string) bool {
	for _, c := range countryToCurrency {
		if c == currency {
			return true
		}
	}
	return false
}
