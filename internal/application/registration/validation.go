package registration

import (
	"strings"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/phone"
	"github.com/biteguide-api/internal/pkg/validate"
)

const (
	msgMinCuisines = "Please select at least 3 cuisines."
	msgDietary     = "Please select at least one dietary option."
	msgAllergies   = "Please select at least one allergy option, or 'none'."
	msgSpice       = "Please select your spice tolerance."
	msgExclusive   = "'none' cannot be combined with other options."
)

// validateIdentity checks name and phone and returns the E.164 number.
func validateIdentity(in ProfileInput, verr *domain.ValidationErrors) string {
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", domain.RuleRequired, "Please enter your name.")
	} else if !validate.Name(in.Name) {
		verr.Add("name", domain.RuleName, validate.NameMessage)
	}

	country := in.PhoneCountry
	if country == "" {
		country = phone.DefaultCountryCode
	}
	c, ok := phone.LookupCountry(country)
	if !ok {
		verr.Add("phone_country", domain.RuleCountry, "Please choose a supported country.")
		return ""
	}
	e164, err := phone.Normalize(c.Code, in.Phone)
	if err != nil {
		verr.Add("phone", domain.RulePhone, "Please enter a valid phone number for "+c.Name+".")
		return ""
	}
	return e164
}

// validateCuisines is the first wizard step on its own.
func validateCuisines(cuisines []string, verr *domain.ValidationErrors) []string {
	out := dedupe(cuisines)
	for _, c := range out {
		if !domain.Contains(domain.Cuisines, c) {
			verr.Add("preferred_cuisines", domain.RuleUnknownOption, "Unknown cuisine: "+c)
		}
	}
	if len(out) < domain.MinCuisines {
		verr.Add("preferred_cuisines", domain.RuleMinCuisines, msgMinCuisines)
	}
	return out
}

// validateDetails is the second wizard step on its own.
func validateDetails(in PreferencesInput, verr *domain.ValidationErrors) (dietary, allergies []string) {
	dietary = validateMulti("dietary_restrictions", in.DietaryRestrictions, domain.DietaryOptions, msgDietary, verr)
	allergies = validateMulti("allergies", in.Allergies, domain.AllergyOptions, msgAllergies, verr)
	if !domain.ValidSpice(in.SpiceTolerance) {
		verr.Add("spice_tolerance", domain.RuleSpiceTolerance, msgSpice)
	}
	return dietary, allergies
}

func validatePreferences(in PreferencesInput) (*domain.Preferences, error) {
	var verr domain.ValidationErrors
	cuisines := validateCuisines(in.PreferredCuisines, &verr)
	dietary, allergies := validateDetails(in, &verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &domain.Preferences{
		PreferredCuisines:   cuisines,
		DietaryRestrictions: dietary,
		Allergies:           allergies,
		SpiceTolerance:      in.SpiceTolerance,
	}, nil
}

func validateMulti(field string, picked, options []string, emptyMsg string, verr *domain.ValidationErrors) []string {
	out := dedupe(picked)
	if len(out) == 0 {
		verr.Add(field, domain.RuleRequired, emptyMsg)
		return out
	}
	for _, v := range out {
		if !domain.Contains(options, v) {
			verr.Add(field, domain.RuleUnknownOption, "Unknown option: "+v)
		}
	}
	if len(out) > 1 && domain.Contains(out, domain.OptionNone) {
		verr.Add(field, domain.RuleExclusiveNone, msgExclusive)
	}
	return out
}

// dedupe trims entries and drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
