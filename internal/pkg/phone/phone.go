// Package phone normalises user-entered numbers to E.164 for a selected country.
package phone

import (
	"fmt"
	"strings"

	"github.com/biteguide-api/internal/domain"
	"github.com/nyaruka/phonenumbers"
)

// Country is a selectable dialling country.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"` // ISO 3166-1 alpha-2
	DialCode string `json:"dial_code"`
}

// Countries is the picker list offered to clients.
var Countries = []Country{
	{"United States", "US", "+1"},
	{"United Kingdom", "GB", "+44"},
	{"France", "FR", "+33"},
	{"Spain", "ES", "+34"},
	{"Italy", "IT", "+39"},
	{"Germany", "DE", "+49"},
	{"Canada", "CA", "+1"},
	{"Australia", "AU", "+61"},
	{"Japan", "JP", "+81"},
	{"China", "CN", "+86"},
	{"Thailand", "TH", "+66"},
	{"Mexico", "MX", "+52"},
	{"Brazil", "BR", "+55"},
	{"United Arab Emirates", "AE", "+971"},
	{"South Korea", "KR", "+82"},
	{"Greece", "GR", "+30"},
	{"Switzerland", "CH", "+41"},
	{"Portugal", "PT", "+351"},
	{"India", "IN", "+91"},
	{"Indonesia", "ID", "+62"},
	{"Netherlands", "NL", "+31"},
	{"Turkey", "TR", "+90"},
	{"Egypt", "EG", "+20"},
	{"South Africa", "ZA", "+27"},
	{"Vietnam", "VN", "+84"},
}

const DefaultCountryCode = "GB"

// LookupCountry finds a supported country by ISO code, case-insensitively.
func LookupCountry(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// DefaultCountry returns the country for a locale region, falling back to GB
// and then to the first entry.
func DefaultCountry(region string) Country {
	if c, ok := LookupCountry(region); ok {
		return c
	}
	if c, ok := LookupCountry(DefaultCountryCode); ok {
		return c
	}
	return Countries[0]
}

// Normalize parses raw (national or international form) for countryCode and
// returns its E.164 form. The number must be valid for that country.
func Normalize(countryCode, raw string) (string, error) {
	c, ok := LookupCountry(countryCode)
	if !ok {
		return "", fmt.Errorf("unsupported country %q: %w", countryCode, domain.ErrValidation)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("phone number is empty: %w", domain.ErrValidation)
	}
	num, err := phonenumbers.Parse(raw, c.Code)
	if err != nil {
		return "", fmt.Errorf("parse phone number: %w", domain.ErrValidation)
	}
	if !phonenumbers.IsValidNumberForRegion(num, c.Code) {
		return "", fmt.Errorf("phone number is not valid for %s: %w", c.Code, domain.ErrValidation)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
