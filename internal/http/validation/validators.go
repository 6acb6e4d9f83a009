// Package validation checks browser input: query-string filters through
// small string validators and submitted forms through tagged structs.
package validation

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Validator returns a user-facing message for an invalid value, or "".
// Blank values are always accepted; filters are optional by nature.
type Validator func(v string) string

// MaxLength rejects values longer than n runes.
func MaxLength(label string, n int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) <= n {
			return ""
		}
		return fmt.Sprintf("%s cannot exceed %d characters.", label, n)
	}
}

// OneOf rejects values outside options.
func OneOf(label string, options []string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(options, v) {
			return ""
		}
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(options, ", "))
	}
}

// FieldValidator collects at most one message per query parameter.
type FieldValidator struct {
	errors map[string]string
}

// New returns an empty FieldValidator.
func New() *FieldValidator {
	return &FieldValidator{errors: map[string]string{}}
}

// Validate runs validators in order and records the first failure for field.
// Fields that already failed are skipped.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, check := range validators {
		if msg := check(value); msg != "" {
			return fv.Add(field, msg)
		}
	}
	return fv
}

// Each validates every value of a repeated parameter under one field.
func (fv *FieldValidator) Each(field string, values []string, validators ...Validator) *FieldValidator {
	for _, v := range values {
		fv.Validate(field, v, validators...)
	}
	return fv
}

// Add records msg for field unless the field already has a message.
func (fv *FieldValidator) Add(field, msg string) *FieldValidator {
	if _, taken := fv.errors[field]; !taken && msg != "" {
		fv.errors[field] = msg
	}
	return fv
}

// Errors returns the collected messages keyed by field.
func (fv *FieldValidator) Errors() map[string]string { return fv.errors }

// Valid reports whether nothing failed.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }
