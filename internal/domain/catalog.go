package domain

// Cuisines offered by the preferences wizard.
var Cuisines = []string{
	"Italian", "Chinese", "Japanese", "Mexican", "Indian", "Thai", "French",
	"Spanish", "Greek", "Lebanese", "Turkish", "Vietnamese", "Korean",
	"Caribbean", "Brazilian", "Argentinian", "Moroccan", "Ethiopian", "Russian",
	"German", "British", "American", "Cuban", "Peruvian", "Filipino",
	"Malaysian", "Indonesian", "Pakistani", "Bangladeshi", "Sri Lankan",
	"Nepalese", "Afghan", "Persian", "Portuguese", "Hungarian", "Polish",
	"Austrian", "Swedish", "Australian", "South African", "Kenyan", "Georgian",
}

var DietaryOptions = []string{OptionNone, "vegetarian", "vegan", "pescatarian", "gluten-free", "keto"}

var AllergyOptions = []string{OptionNone, "peanuts", "tree nuts", "shellfish", "dairy", "soy", "wheat"}

var SpiceLevels = []SpiceTolerance{SpiceNone, SpiceMild, SpiceMedium, SpiceHot, SpiceVeryHot}

// ValidSpice reports whether s is one of SpiceLevels.
func ValidSpice(s SpiceTolerance) bool {
	for _, l := range SpiceLevels {
		if l == s {
			return true
		}
	}
	return false
}

// Contains reports whether options holds v.
func Contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
