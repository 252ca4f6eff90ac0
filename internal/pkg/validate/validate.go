package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/biteguide-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

// PasswordSymbols is the fixed set of symbols a password may (and must) draw from.
const PasswordSymbols = "!@#$%^&*"

// User-facing messages for the credential and name rules.
const (
	EmailMessage    = "Please enter a valid email address."
	PasswordMessage = "Password must be at least 8 characters long and include uppercase, lowercase, a number, and a special character."
	NameMessage     = "Name may only contain letters, spaces, hyphens and apostrophes."
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("otpemail", func(fl validator.FieldLevel) bool { return Email(fl.Field().String()) })
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool { return Password(fl.Field().String()) })
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool { return Name(fl.Field().String()) })
}

// Email matches a permissive local@domain.tld shape.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Password requires at least 8 characters from [A-Za-z0-9] plus PasswordSymbols,
// with at least one lowercase, uppercase, digit and symbol.
func Password(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// Name accepts letters, spaces, hyphens and apostrophes, with at least one letter.
func Name(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case r == ' ' || r == '-' || r == '\'':
		default:
			return false
		}
	}
	return hasLetter
}

// Struct validates the given struct using its validate tags.
// Failures come back as domain.ValidationErrors, one entry per field.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	var out domain.ValidationErrors
	for _, fe := range ve {
		rule, msg := describe(fe)
		out.Add(fe.Field(), rule, msg)
	}
	return out
}

func describe(fe validator.FieldError) (domain.Rule, string) {
	switch fe.Tag() {
	case "required":
		return domain.RuleRequired, "is required"
	case "otpemail", "email":
		return domain.RuleEmail, EmailMessage
	case "strongpassword":
		return domain.RulePassword, PasswordMessage
	case "personname":
		return domain.RuleName, NameMessage
	case "len", "numeric":
		return domain.RuleCode, "must be a 6-digit code"
	default:
		return domain.Rule(fe.Tag()), "failed '" + fe.Tag() + "'"
	}
}
