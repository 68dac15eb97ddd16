// internal/widget/modelstate.go
//
// Per-invocation record of binding and validation failures.
//
// The binder never fails an invocation for bad user input.  It records a
// field-level message here and lets the widget decide whether to re-render
// its form, the way the forms subsystem reports []ErrorField.

package widget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one recorded failure.
type FieldError struct {
	Key     string
	Message string
}

// ModelState collects FieldErrors in insertion order.
type ModelState struct {
	errs []FieldError
}

// NewModelState returns an empty ModelState.
func NewModelState() *ModelState { return &ModelState{} }

// AddError records msg under key.
func (m *ModelState) AddError(key, msg string) {
	m.errs = append(m.errs, FieldError{Key: key, Message: msg})
}

// Valid reports whether nothing was recorded.
func (m *ModelState) Valid() bool { return m == nil || len(m.errs) == 0 }

// Errors returns the messages recorded under key.
func (m *ModelState) Errors(key string) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, e := range m.errs {
		if e.Key == key {
			out = append(out, e.Message)
		}
	}
	return out
}

// First returns the first message under key, or "".
func (m *ModelState) First(key string) string {
	if msgs := m.Errors(key); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// All returns every recorded failure.
func (m *ModelState) All() []FieldError {
	if m == nil {
		return nil
	}
	return append([]FieldError(nil), m.errs...)
}

// addValidation translates validator output.  Keys drop the root struct
// name, so ContactModel.Email is recorded as "Email".
func (m *ModelState) addValidation(param string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		m.AddError(param, err.Error())
		return
	}
	for _, fe := range verrs {
		key := param
		if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
			key = rest
		}
		m.AddError(key, validationMessage(fe))
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid e-mail address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "oneof":
		return "Invalid choice."
	default:
		return "Invalid input."
	}
}
