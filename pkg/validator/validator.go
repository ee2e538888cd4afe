// Package validator wraps go-playground/validator with JSON-aware field
// names, so validation messages refer to the fields clients actually sent.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// ValidationError describes one failed rule on one field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// Message renders the failure as a sentence for API responses. Rules without
// a template fall back to naming the tag.
func (e ValidationError) Message() string {
	field := e.Field
	if field == "" {
		field = "field"
	}
	field = strings.ToLower(strings.ReplaceAll(field, "_", " "))

	switch e.Tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + e.Param + " characters"
	case "max":
		return field + " must be at most " + e.Param + " characters"
	case "uuid4":
		return field + " must be a valid UUID"
	}
	if e.Param != "" {
		return field + " failed validation: " + e.Tag + "=" + e.Param
	}
	return field + " failed validation: " + e.Tag
}

// ValidationErrors aggregates every failed rule from a single struct.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Message()
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct runs the registered rules against s. Failures come back as
// ValidationErrors keyed by JSON field name.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, len(ve))
	for i, fe := range ve {
		failures[i] = ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		}
	}
	return failures
}

// RegisterValidation adds a custom rule under the given tag.
func RegisterValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// jsonFieldName reports the name clients use for a field, falling back to
// the Go name when the json tag is absent or suppressed.
func jsonFieldName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if tag == "" {
		return fld.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
