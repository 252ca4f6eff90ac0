package domain

import "time"

// Stage is a step of the onboarding wizard. Stages only ever advance.
type Stage string

const (
	StageUnverified            Stage = "unverified"
	StageProfileIncomplete     Stage = "profileIncomplete"
	StagePreferencesIncomplete Stage = "preferencesIncomplete"
	StageComplete              Stage = "complete"
)

var stageRank = map[Stage]int{
	StageUnverified:            0,
	StageProfileIncomplete:     1,
	StagePreferencesIncomplete: 2,
	StageComplete:              3,
}

// Rank orders stages; unknown stages rank below unverified.
func (s Stage) Rank() int {
	if r, ok := stageRank[s]; ok {
		return r
	}
	return -1
}

// Before reports whether s comes strictly earlier than other.
func (s Stage) Before(other Stage) bool { return s.Rank() < other.Rank() }

func (s Stage) Valid() bool { return s.Rank() >= 0 }

// SpiceTolerance is the single spice level a user picks.
type SpiceTolerance string

const (
	SpiceNone    SpiceTolerance = "none"
	SpiceMild    SpiceTolerance = "mild"
	SpiceMedium  SpiceTolerance = "medium"
	SpiceHot     SpiceTolerance = "hot"
	SpiceVeryHot SpiceTolerance = "very hot"
)

const (
	// OptionNone is the explicit "nothing applies" choice for dietary and allergy lists.
	OptionNone  = "none"
	MinCuisines = 3
)

// LocationSource records how a location was obtained.
type LocationSource string

const (
	LocationGeocoded LocationSource = "geocoded"
	LocationManual   LocationSource = "manual"
)

type Location struct {
	City      string         `json:"city" dynamodbav:"city"`
	Country   string         `json:"country" dynamodbav:"country"`
	Source    LocationSource `json:"source" dynamodbav:"source"`
	Latitude  *float64       `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`
}

type Profile struct {
	Name           string   `json:"name" dynamodbav:"name"`
	Phone          string   `json:"phone" dynamodbav:"phone"` // E.164
	PhoneCountry   string   `json:"phone_country" dynamodbav:"phone_country"`
	PhoneConfirmed bool     `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	Location       Location `json:"location" dynamodbav:"location"`
}

type Preferences struct {
	PreferredCuisines   []string       `json:"preferred_cuisines" dynamodbav:"preferred_cuisines"`
	DietaryRestrictions []string       `json:"dietary_restrictions" dynamodbav:"dietary_restrictions"`
	Allergies           []string       `json:"allergies" dynamodbav:"allergies"`
	SpiceTolerance      SpiceTolerance `json:"spice_tolerance" dynamodbav:"spice_tolerance"`
}

// Registration is the per-account onboarding record.
// PK: user_id.
type Registration struct {
	UserID      string       `json:"user_id" dynamodbav:"user_id"`
	Stage       Stage        `json:"stage" dynamodbav:"stage"`
	Profile     *Profile     `json:"profile,omitempty" dynamodbav:"profile,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty" dynamodbav:"preferences,omitempty"`
	CreatedAt   time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time    `json:"updated" dynamodbav:"updated_at"`
}
