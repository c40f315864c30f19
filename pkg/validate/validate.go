// Package validate runs struct-tag validation and reports one message per
// failing field, keyed by the field's JSON name.
//
// Rules are go-playground/validator tags. Every field is checked; a failure
// on one field never hides failures on another.
//
//	type Input struct {
//	    Name  string  `json:"name"  validate:"required"`
//	    Email string  `json:"email" validate:"required,email"`
//	    Phone *string `json:"phone" validate:"omitempty,min=1"`
//	    Role  string  `json:"role"  validate:"omitempty,oneof=vendor customer admin"`
//	}
//
//	errs := validate.Struct(in)
//	// errs["email"] == "The email must be a valid email address."
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once   sync.Once
	engine *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(jsonFieldName)
	})
	return engine
}

// Struct validates v and returns fieldName → message. An empty map means
// v is valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	err := instance().Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Not a struct: nothing to report per field.
		return errs
	}

	for _, fe := range fieldErrs {
		name := fieldKey(fe)
		if _, seen := errs[name]; seen {
			continue
		}
		errs[name] = message(fe, name)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// Merge copies src into dst without overwriting keys already present.
func Merge(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

func message(fe validator.FieldError, field string) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	case "max":
		if isNumeric(fe.Kind()) {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	case "len":
		return fmt.Sprintf("The %s must be exactly %s characters.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid. Expected one of: %s.", field, strings.Join(strings.Fields(param), ", "))
	case "alpha":
		return fmt.Sprintf("The %s field must contain only letters.", field)
	case "uppercase":
		return fmt.Sprintf("The %s must be uppercase.", field)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", field)
	default:
		return fmt.Sprintf("The %s format is invalid.", field)
	}
}

// fieldKey drops the root struct name from the namespace so nested fields
// read "address.city" rather than "Input.address.city".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
