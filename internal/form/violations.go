package form

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// ErrValidationFailed is wrapped by every error returned from Violations.Err.
var ErrValidationFailed = errors.New("form validation failed")

// Rule names a violated validation rule.
type Rule string

const (
	RuleRequired Rule = "required"
	RuleEmail    Rule = "email"
	RuleConfirm  Rule = "confirm"
	RuleOneOf    Rule = "oneOf"
)

// Violations maps a field name to the rules it violates.
type Violations map[string][]Rule

// Add records a violated rule for field.
func (v Violations) Add(field string, rule Rule) {
	v[field] = append(v[field], rule)
}

// Valid reports whether no field violates a rule.
func (v Violations) Valid() bool {
	return len(v) == 0
}

// Fields returns the invalid field names in lexical order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Err returns nil when valid and a *ValidationError otherwise.
func (v Violations) Err() error {
	if v.Valid() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// ValidationError carries the violations that blocked a submission.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(e.Violations.Fields(), ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Present reports whether value has non-blank content.
func Present(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email reports whether value is a bare e-mail address.
func Email(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
