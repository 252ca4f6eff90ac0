package registration

import (
	"github.com/biteguide-api/internal/domain"
)

// View is the registration record as seen at one stage. Each variant only
// carries the data that exists once that stage is reached.
type View interface {
	Stage() domain.Stage
	isView()
}

// UnverifiedView is returned for accounts that never finished email verification.
type UnverifiedView struct {
	UserID string `json:"user_id"`
}

// ProfileView is waiting on name, phone and location.
type ProfileView struct {
	UserID string `json:"user_id"`
}

// PreferencesView has a profile and is waiting on food preferences.
type PreferencesView struct {
	UserID  string         `json:"user_id"`
	Profile domain.Profile `json:"profile"`
}

// CompleteView unlocks the main application.
type CompleteView struct {
	UserID      string             `json:"user_id"`
	Profile     domain.Profile     `json:"profile"`
	Preferences domain.Preferences `json:"preferences"`
}

func (UnverifiedView) Stage() domain.Stage  { return domain.StageUnverified }
func (ProfileView) Stage() domain.Stage     { return domain.StageProfileIncomplete }
func (PreferencesView) Stage() domain.Stage { return domain.StagePreferencesIncomplete }
func (CompleteView) Stage() domain.Stage    { return domain.StageComplete }

func (UnverifiedView) isView()  {}
func (ProfileView) isView()     {}
func (PreferencesView) isView() {}
func (CompleteView) isView()    {}

// viewOf projects a stored record. A record whose stage claims data it does
// not hold is projected to the latest stage its data supports.
func viewOf(reg *domain.Registration) View {
	if reg == nil {
		return UnverifiedView{}
	}
	switch {
	case reg.Stage == domain.StageComplete && reg.Profile != nil && reg.Preferences != nil:
		return CompleteView{UserID: reg.UserID, Profile: *reg.Profile, Preferences: *reg.Preferences}
	case !reg.Stage.Before(domain.StagePreferencesIncomplete) && reg.Profile != nil:
		return PreferencesView{UserID: reg.UserID, Profile: *reg.Profile}
	case !reg.Stage.Before(domain.StageProfileIncomplete):
		return ProfileView{UserID: reg.UserID}
	default:
		return UnverifiedView{UserID: reg.UserID}
	}
}
