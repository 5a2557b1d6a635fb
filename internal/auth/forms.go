package auth

import (
	"fmt"
	"sync"

	"github.com/eugenenazirov/offer-desk/internal/form"
)

// Form field names.
const (
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldEmail         = "email"
	FieldCheckPassword = "checkPassword"
)

// LoginForm is the submitted login form.
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Validate requires a username and a password.
func (f LoginForm) Validate() form.Violations {
	violations := form.Violations{}
	if !form.Present(f.Username) {
		violations.Add(FieldUsername, form.RuleRequired)
	}
	if !form.Present(f.Password) {
		violations.Add(FieldPassword, form.RuleRequired)
	}
	return violations
}

// RegisterForm holds the registration fields. The confirmation field is
// re-validated whenever either password field changes.
type RegisterForm struct {
	mu      sync.Mutex
	values  map[string]string
	confirm []form.Rule

	watchers form.Watchers
	scope    form.Scope
}

// NewRegisterForm returns an empty form. Close it when done.
func NewRegisterForm() *RegisterForm {
	f := &RegisterForm{
		values:  map[string]string{FieldEmail: "", FieldPassword: "", FieldCheckPassword: ""},
		confirm: []form.Rule{form.RuleRequired},
	}
	revalidate := func(string, string) { f.revalidateConfirm() }
	f.scope.Watch(&f.watchers, FieldPassword, revalidate)
	f.scope.Watch(&f.watchers, FieldCheckPassword, revalidate)
	return f
}

// Set changes a field value.
func (f *RegisterForm) Set(field, value string) error {
	f.mu.Lock()
	if _, ok := f.values[field]; !ok {
		f.mu.Unlock()
		return fmt.Errorf("unknown register field %q", field)
	}
	f.values[field] = value
	f.mu.Unlock()

	f.watchers.Notify(field, value)
	return nil
}

// Value returns a field value.
func (f *RegisterForm) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// ConfirmRules returns the rules the confirmation field currently violates.
func (f *RegisterForm) ConfirmRules() []form.Rule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]form.Rule(nil), f.confirm...)
}

// Validate checks the e-mail and both password fields.
func (f *RegisterForm) Validate() form.Violations {
	f.mu.Lock()
	defer f.mu.Unlock()

	violations := form.Violations{}
	email := f.values[FieldEmail]
	switch {
	case !form.Present(email):
		violations.Add(FieldEmail, form.RuleRequired)
	case !form.Email(email):
		violations.Add(FieldEmail, form.RuleEmail)
	}
	if !form.Present(f.values[FieldPassword]) {
		violations.Add(FieldPassword, form.RuleRequired)
	}
	for _, rule := range f.confirm {
		violations.Add(FieldCheckPassword, rule)
	}
	return violations
}

// Close unregisters the form's listeners.
func (f *RegisterForm) Close() {
	f.scope.Close()
}

func (f *RegisterForm) revalidateConfirm() {
	f.mu.Lock()
	defer f.mu.Unlock()

	check := f.values[FieldCheckPassword]
	switch {
	case check == "":
		f.confirm = []form.Rule{form.RuleRequired}
	case check != f.values[FieldPassword]:
		f.confirm = []form.Rule{form.RuleConfirm}
	default:
		f.confirm = nil
	}
}
