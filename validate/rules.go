package validate

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
)

// Required fails when the value is empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: FieldError{Field: field, Message: "is required"},
	}
}

// Email fails when the value is not an addr-spec per RFC 5322.
func Email(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			return err == nil && addr.Address == value
		},
		Error: FieldError{Field: field, Message: "must be a valid email address"},
	}
}

// MinLen fails when the value is shorter than n bytes.
func MinLen(field, value string, n int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= n },
		Error: FieldError{Field: field, Message: msgf("must be at least %d characters long", n)},
	}
}

// Min fails when the value is below n.
func Min[T int | int64 | float64](field string, value, n T) Rule {
	return Rule{
		Check: func() bool { return value >= n },
		Error: FieldError{Field: field, Message: msgf("must be at least %v", n)},
	}
}

// OneOf fails when the value is not in the allowed set.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: FieldError{Field: field, Message: msgf("must be one of %v", allowed)},
	}
}

// NonEmptySlice fails when the slice has no elements.
func NonEmptySlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool { return len(value) > 0 },
		Error: FieldError{Field: field, Message: "must not be empty"},
	}
}

func msgf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
