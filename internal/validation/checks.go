package validation

import (
	"fmt"
	"strings"
	"time"
)

// Named check constructors. Workflow schemas compose these instead of
// defining ad hoc closures at call sites, so the same constraint is reusable
// and testable in isolation.

// RequireAnyOf passes when the object value carries at least one non-absent
// key from the given list.
func RequireAnyOf(keys ...string) CheckFunc {
	return func(value any, _ Record) (bool, string) {
		obj, ok := value.(map[string]any)
		if !ok {
			return false, ""
		}
		for _, key := range keys {
			if !isAbsent(obj[key]) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("specify one of: %s", strings.Join(keys, ", "))
	}
}

// MinimumAge passes when the date value is at least years old relative to
// the injected clock.
func MinimumAge(years int, now func() time.Time) CheckFunc {
	return func(value any, _ Record) (bool, string) {
		birth, ok := asDate(value)
		if !ok {
			return false, ""
		}
		if birth.AddDate(years, 0, 0).After(now()) {
			return false, fmt.Sprintf("must be at least %d years old", years)
		}
		return true, ""
	}
}

// FutureDate passes when the date value is after the injected clock.
func FutureDate(now func() time.Time) CheckFunc {
	return func(value any, _ Record) (bool, string) {
		date, ok := asDate(value)
		if !ok {
			return false, ""
		}
		if !date.After(now()) {
			return false, "date must be in the future"
		}
		return true, ""
	}
}

// AfterField passes when the date value is after the date held by another
// field of the same record.
func AfterField(field string) CheckFunc {
	return func(value any, record Record) (bool, string) {
		date, ok := asDate(value)
		if !ok {
			return false, ""
		}
		other, ok := asDate(record[field])
		if !ok {
			return false, ""
		}
		if !date.After(other) {
			return false, fmt.Sprintf("must be after %s", field)
		}
		return true, ""
	}
}

// PositiveAmount passes for numbers strictly greater than zero.
func PositiveAmount() CheckFunc {
	return func(value any, _ Record) (bool, string) {
		number, ok := asNumber(value)
		if !ok {
			return false, ""
		}
		if number <= 0 {
			return false, "must be greater than zero"
		}
		return true, ""
	}
}
