package form

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var (
	upperRe         = regexp.MustCompile(`[A-Z]`)
	lowerRe         = regexp.MustCompile(`[a-z]`)
	digitOrSymbolRe = regexp.MustCompile(`[\d\W]`)
)

// Required rejects the empty value.
func Required(label string) Validator {
	return func(v string) string {
		if v == "" {
			return label + " is required"
		}
		return ""
	}
}

// MinLength rejects non-empty values shorter than n characters. Empty
// values are left to Required.
func MinLength(n int) Validator {
	return func(v string) string {
		if v != "" && utf8.RuneCountInString(v) < n {
			return fmt.Sprintf("Must be at least %d characters", n)
		}
		return ""
	}
}

// MaxLength rejects values longer than n characters.
func MaxLength(n int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) > n {
			return fmt.Sprintf("Must be no more than %d characters", n)
		}
		return ""
	}
}

// PasswordPattern requires an upper-case letter, a lower-case letter and a
// digit or symbol.
func PasswordPattern() Validator {
	return func(v string) string {
		if v == "" {
			return ""
		}
		if upperRe.MatchString(v) && lowerRe.MatchString(v) && digitOrSymbolRe.MatchString(v) {
			return ""
		}
		return "Password must contain uppercase, lowercase, and number/special character"
	}
}

// Matches requires the value to equal other's current value.
func Matches(other *Field) Validator {
	return func(v string) string {
		if v != other.Value() {
			return "Passwords do not match"
		}
		return ""
	}
}
