// Package validate provides rule-based request validation producing
// field-keyed errors suitable for API responses.
package validate

import (
	"fmt"
	"strings"
)

// FieldError represents a single validation failure for a named field.
type FieldError struct {
	Field   string
	Message string
}

// Errors represents a collection of validation failures.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns failures grouped by field name.
func (ve Errors) Fields() map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, err := range ve {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}

// Rule represents a single validation rule.
type Rule struct {
	Check func() bool
	Error FieldError
}

// Apply executes the rules in order and returns the accumulated
// failures as an error, or nil when everything passed.
func Apply(rules ...Rule) error {
	var errs Errors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
