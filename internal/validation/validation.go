// Package validation evaluates declarative rule schemas against decoded
// request records and aggregates per-field errors.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Record is a decoded request payload: field name to value, with the shapes
// produced by JSON decoding (string, float64, bool, []any, map[string]any)
// plus time.Time for dates.
type Record = map[string]any

// FieldType names the runtime shape a rule may require.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
	TypeDate    FieldType = "date"
)

// CheckFunc is a custom predicate over the field value and the whole record.
// Returning ok passes; otherwise msg (when non-empty) becomes the error
// message, falling back to the rule's static Message or a generated default.
type CheckFunc func(value any, record Record) (ok bool, msg string)

// Rule describes one field's constraints.
type Rule struct {
	Required   bool
	NotAllowed bool
	Type       FieldType
	Min        *float64
	Max        *float64
	MinLength  *int
	MaxLength  *int
	Pattern    *regexp.Regexp
	Enum       []any
	Custom     CheckFunc
	Message    string
}

// FieldRule pairs a field name with its rule.
type FieldRule struct {
	Field string
	Rule  Rule
}

// Schema is an ordered rule set: at most one rule per field, evaluated and
// reported in declaration order.
type Schema []FieldRule

// Int returns a pointer for length bounds.
func Int(v int) *int { return &v }

// Float returns a pointer for numeric bounds.
func Float(v float64) *float64 { return &v }

// Error aggregates field validation failures. A field contributes at most
// one message; Fields preserves schema declaration order.
type Error struct {
	Fields   []string
	Messages map[string]string
}

func newError() *Error {
	return &Error{Messages: make(map[string]string)}
}

func (e *Error) set(field, message string) {
	if _, seen := e.Messages[field]; !seen {
		e.Fields = append(e.Fields, field)
	}
	e.Messages[field] = message
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, e.Messages[field])
	}
	return strings.Join(parts, ", ")
}

// Details exposes the field→message map for error responses.
func (e *Error) Details() map[string]any {
	details := make(map[string]any, len(e.Messages))
	for field, msg := range e.Messages {
		details[field] = msg
	}
	return details
}

// Validate evaluates schema against record. It returns nil when every rule
// passes and a *Error with the full field→message map otherwise; partial
// results are never surfaced.
//
// Per field the stages run in order: notAllowed, required, absent-skip,
// type, length, range, pattern, enum, custom. The first four short-circuit
// the field; the remaining stages all run, each overwriting the field's
// message with a more specific one.
func Validate(record Record, schema Schema) error {
	verr := newError()

	for _, entry := range schema {
		field, rule := entry.Field, entry.Rule
		value := record[field]
		absent := isAbsent(value)

		if rule.NotAllowed && !absent {
			verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s is not allowed", field)))
			continue
		}
		if rule.Required && absent {
			verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s is required", field)))
			continue
		}
		if !rule.Required && absent {
			continue
		}
		if rule.Type != "" && !matchesType(value, rule.Type) {
			verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s must be of type %s", field, rule.Type)))
			continue
		}

		if length, ok := lengthOf(value); ok {
			if rule.MinLength != nil && length < *rule.MinLength {
				verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s must have at least %d characters", field, *rule.MinLength)))
			}
			if rule.MaxLength != nil && length > *rule.MaxLength {
				verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s must have at most %d characters", field, *rule.MaxLength)))
			}
		}

		if number, ok := asNumber(value); ok {
			if rule.Min != nil && number < *rule.Min {
				verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s must be greater than or equal to %v", field, *rule.Min)))
			}
			if rule.Max != nil && number > *rule.Max {
				verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s must be less than or equal to %v", field, *rule.Max)))
			}
		}

		if rule.Pattern != nil {
			if s, ok := value.(string); ok && !rule.Pattern.MatchString(s) {
				verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s does not match the required format", field)))
			}
		}

		if len(rule.Enum) > 0 && !enumContains(rule.Enum, value) {
			verr.set(field, ruleMessage(rule, fmt.Sprintf("field %s must be one of: %s", field, enumList(rule.Enum))))
		}

		if rule.Custom != nil {
			if ok, msg := rule.Custom(value, record); !ok {
				if msg == "" {
					msg = ruleMessage(rule, fmt.Sprintf("field %s failed custom validation", field))
				}
				verr.set(field, msg)
			}
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func ruleMessage(rule Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

// isAbsent treats missing keys, nil and the empty string as absent.
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func matchesType(value any, t FieldType) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		n, ok := asNumber(value)
		return ok && !math.IsNaN(n) && !math.IsInf(n, 0)
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		return reflect.ValueOf(value).Kind() == reflect.Slice
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	case TypeDate:
		_, ok := asDate(value)
		return ok
	}
	return false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, true
	}
	return 0, false
}

// asDate accepts a non-zero time.Time or a string parseable as RFC 3339 or
// a plain calendar date.
func asDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func lengthOf(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v), true
	case []any:
		return len(v), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		return rv.Len(), true
	}
	return 0, false
}

func enumContains(enum []any, value any) bool {
	valueNum, valueIsNum := asNumber(value)
	for _, candidate := range enum {
		if candidateNum, ok := asNumber(candidate); ok && valueIsNum {
			if candidateNum == valueNum {
				return true
			}
			continue
		}
		if reflect.DeepEqual(candidate, value) {
			return true
		}
	}
	return false
}

func enumList(enum []any) string {
	parts := make([]string, 0, len(enum))
	for _, candidate := range enum {
		parts = append(parts, fmt.Sprintf("%v", candidate))
	}
	return strings.Join(parts, ", ")
}
