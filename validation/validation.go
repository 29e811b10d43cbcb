// Package validation implements the input validation pipeline used by the
// request handlers. Each field runs through an ordered list of named rules;
// every failing rule contributes a field-keyed message, and the aggregate is
// converted into a single ValidationError once all fields have been checked.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/user/gotodo-api/apperror"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Rule is a single named predicate applied to a field value. It reports
// whether the value passes and, when it does not, the message to record.
type Rule func(value string) (ok bool, msg string)

// Required fails on the empty string.
func Required() Rule {
	return func(value string) (bool, string) {
		return value != "", "is required"
	}
}

// NonSpace fails when the value is empty after trimming all Unicode
// whitespace, including ideographic space.
func NonSpace() Rule {
	return func(value string) (bool, string) {
		return strings.TrimFunc(value, unicode.IsSpace) != "", "must not consist solely of whitespace"
	}
}

// MaxLen fails when the value exceeds n characters.
func MaxLen(n int) Rule {
	return func(value string) (bool, string) {
		return len([]rune(value)) <= n, fmt.Sprintf("must be at most %d characters", n)
	}
}

// Email fails when the value is not a syntactically valid email address.
func Email() Rule {
	return func(value string) (bool, string) {
		return emailRegexp.MatchString(value), "must be a valid email address"
	}
}

// Validator accumulates field-keyed validation messages. The zero value is
// not usable; create one with New.
type Validator struct {
	fields map[string][]string
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{fields: make(map[string][]string)}
}

// Field runs the rules against value in order and records a message for
// every rule that fails. A failing Required rule short-circuits the rest of
// the list, so an absent field reports only "is required".
func (v *Validator) Field(name, value string, rules ...Rule) {
	for i, rule := range rules {
		ok, msg := rule(value)
		if ok {
			continue
		}
		v.fields[name] = append(v.fields[name], msg)
		if i == 0 && value == "" {
			return
		}
	}
}

// Check records msg for the field when ok is false. It covers conditions
// that are not simple string predicates, such as a required boolean.
func (v *Validator) Check(name string, ok bool, msg string) {
	if !ok {
		v.fields[name] = append(v.fields[name], msg)
	}
}

// Valid reports whether no field has recorded a message.
func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

// Fields returns the accumulated field-keyed messages.
func (v *Validator) Fields() map[string][]string {
	return v.fields
}

// Err returns the aggregated ValidationError, or nil when everything
// passed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return apperror.NewValidationError("validation failed", nil).WithFields(v.fields)
}
