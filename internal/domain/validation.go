package domain

import "strings"

// Rule identifies which predicate a field failed.
type Rule string

const (
	RuleRequired       Rule = "required"
	RuleEmail          Rule = "email"
	RulePassword       Rule = "password"
	RuleName           Rule = "name"
	RulePhone          Rule = "phone"
	RuleCountry        Rule = "country"
	RuleLocation       Rule = "location"
	RuleMinCuisines    Rule = "min_cuisines"
	RuleUnknownOption  Rule = "unknown_option"
	RuleExclusiveNone  Rule = "exclusive_none"
	RuleSpiceTolerance Rule = "spice_tolerance"
	RuleCode           Rule = "code"
)

// FieldError is a single failed predicate on a named input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed field so callers can surface them together.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation_error: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match any collection.
func (v ValidationErrors) Unwrap() error { return ErrValidation }

// Add appends a field error.
func (v *ValidationErrors) Add(field string, rule Rule, msg string) {
	*v = append(*v, FieldError{Field: field, Rule: rule, Message: msg})
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Has reports whether field failed at least one rule.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}
