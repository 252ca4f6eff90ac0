package registration

import (
	"errors"

	"github.com/biteguide-api/internal/domain"
)

// WizardStep is a page of the two-step preferences wizard.
type WizardStep int

const (
	StepCuisines WizardStep = 1
	StepDetails  WizardStep = 2
)

var ErrWizardIncomplete = errors.New("wizard not finished")

// Wizard holds the preferences form across both steps. Moving back never
// clears what was entered on the other step.
type Wizard struct {
	step  WizardStep
	done  bool
	input PreferencesInput
}

// NewWizard starts at step one, prefilled from saved preferences when present.
func NewWizard(saved *domain.Preferences) *Wizard {
	w := &Wizard{step: StepCuisines}
	if saved != nil {
		w.input = PreferencesInput{
			PreferredCuisines:   append([]string(nil), saved.PreferredCuisines...),
			DietaryRestrictions: append([]string(nil), saved.DietaryRestrictions...),
			Allergies:           append([]string(nil), saved.Allergies...),
			SpiceTolerance:      saved.SpiceTolerance,
		}
	}
	return w
}

func (w *Wizard) Step() WizardStep { return w.step }

func (w *Wizard) SetCuisines(c []string) {
	w.input.PreferredCuisines = append([]string(nil), c...)
	w.done = false
}

func (w *Wizard) SetDetails(dietary, allergies []string, spice domain.SpiceTolerance) {
	w.input.DietaryRestrictions = append([]string(nil), dietary...)
	w.input.Allergies = append([]string(nil), allergies...)
	w.input.SpiceTolerance = spice
	w.done = false
}

// Next validates the current step. On step one it advances to step two; on
// step two it marks the wizard finished.
func (w *Wizard) Next() error {
	var verr domain.ValidationErrors
	switch w.step {
	case StepCuisines:
		validateCuisines(w.input.PreferredCuisines, &verr)
		if err := verr.Err(); err != nil {
			return err
		}
		w.step = StepDetails
	case StepDetails:
		validateDetails(w.input, &verr)
		if err := verr.Err(); err != nil {
			return err
		}
		w.done = true
	}
	return nil
}

// Back returns to step one.
func (w *Wizard) Back() {
	w.step = StepCuisines
	w.done = false
}

// Input returns the collected preferences once both steps have passed.
func (w *Wizard) Input() (PreferencesInput, error) {
	if !w.done {
		return PreferencesInput{}, ErrWizardIncomplete
	}
	return w.input, nil
}

// Draft returns whatever has been entered so far.
func (w *Wizard) Draft() PreferencesInput { return w.input }
