// internal/config/validator.go
//
// go-playground/validator setup for Config.
//
// Errors name fields by their config key (`http.listen_addr`), not the Go
// field path, so a failed boot points straight at the YAML line.  Besides
// the built-in rules, `dsntemplate` requires exactly one %s verb in the
// database DSN for the password.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("dsntemplate", func(fl validator.FieldLevel) bool {
		return strings.Count(fl.Field().String(), "%s") == 1
	})
	return val
}

// FieldError is one failed rule.
type FieldError struct {
	Key  string // config key, e.g. "database.password"
	Rule string // validator tag, e.g. "required_with"
}

// ValidationError lists every failed rule of one Load.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Key + " (" + f.Rule + ")"
	}
	return "config: invalid " + strings.Join(parts, ", ")
}

// validateStruct checks c and converts validator errors to *ValidationError.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		if err != nil {
			return fmt.Errorf("config: validate: %w", err)
		}
		return nil
	}
	out := &ValidationError{Fields: make([]FieldError, len(ve))}
	for i, fe := range ve {
		// Namespace is "Config.http.listen_addr"; drop the root.
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		out.Fields[i] = FieldError{Key: key, Rule: fe.Tag()}
	}
	return out
}
